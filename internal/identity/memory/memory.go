package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"fintrack/internal/identity"
)

const minPasswordLength = 8

// Provider is an in-process identity provider. It issues real HS256 access
// tokens so the rest of the stack sees the same token shapes a hosted
// provider would produce.
type Provider struct {
	mu          sync.Mutex
	secret      []byte
	tokenTTL    time.Duration
	accounts    map[string]*account
	nextID      int
	subscribers map[int]func(*identity.Session)
	nextSub     int
}

type account struct {
	id        string
	name      string
	password  string
	confirmed bool
}

func New(secret []byte) *Provider {
	return &Provider{
		secret:      secret,
		tokenTTL:    time.Hour,
		accounts:    make(map[string]*account),
		subscribers: make(map[int]func(*identity.Session)),
	}
}

func (p *Provider) SignUp(_ context.Context, name, email, password string) (identity.Identity, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return identity.Identity{}, identity.ErrInvalidCredentials
	}
	if len(password) < minPasswordLength {
		return identity.Identity{}, identity.ErrWeakPassword
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.accounts[email]; exists {
		return identity.Identity{}, identity.ErrDuplicateAccount
	}
	p.nextID++
	acct := &account{
		id:       fmt.Sprintf("user-%d", p.nextID),
		name:     name,
		password: password,
	}
	p.accounts[email] = acct
	return identity.Identity{ID: acct.id, Email: email, Name: name}, nil
}

// Confirm marks an account as confirmed, standing in for the provider's
// email confirmation step.
func (p *Provider) Confirm(email string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if acct, ok := p.accounts[strings.ToLower(email)]; ok {
		acct.confirmed = true
	}
}

func (p *Provider) SignIn(_ context.Context, email, password string) (identity.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	p.mu.Lock()
	acct, ok := p.accounts[email]
	p.mu.Unlock()

	if !ok || acct.password != password {
		return identity.Session{}, identity.ErrInvalidCredentials
	}
	if !acct.confirmed {
		return identity.Session{}, identity.ErrNotConfirmed
	}

	expires := time.Now().Add(p.tokenTTL)
	claims := jwt.MapClaims{
		"sub":   acct.id,
		"email": email,
		"name":  acct.name,
		"exp":   jwt.NewNumericDate(expires),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return identity.Session{}, fmt.Errorf("sign token: %w", err)
	}

	return identity.Session{
		AccessToken: token,
		ExpiresAt:   expires,
		Identity:    identity.Identity{ID: acct.id, Email: email, Name: acct.name},
	}, nil
}

func (p *Provider) SignOut(_ context.Context, _ string) error {
	p.notify(nil)
	return nil
}

// Resume validates a previously issued token. Expired or tampered tokens
// resolve to no session, not an error.
func (p *Provider) Resume(_ context.Context, token string) (*identity.Session, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return p.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, nil
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, nil
	}
	sess := &identity.Session{AccessToken: token}
	if sub, err := claims.GetSubject(); err == nil {
		sess.Identity.ID = sub
	}
	if email, ok := claims["email"].(string); ok {
		sess.Identity.Email = email
	}
	if name, ok := claims["name"].(string); ok {
		sess.Identity.Name = name
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		sess.ExpiresAt = exp.Time
	}
	return sess, nil
}

func (p *Provider) ResetPassword(_ context.Context, email string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.accounts[strings.ToLower(email)]; !ok {
		return identity.ErrInvalidCredentials
	}
	return nil
}

// Subscribe implements identity.Watcher.
func (p *Provider) Subscribe(fn func(*identity.Session)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextSub
	p.nextSub++
	p.subscribers[id] = fn
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.subscribers, id)
	}
}

// Push delivers an externally originated session event to subscribers,
// the way a hosted provider surfaces token refreshes and remote sign-outs.
func (p *Provider) Push(s *identity.Session) {
	p.notify(s)
}

func (p *Provider) notify(s *identity.Session) {
	p.mu.Lock()
	fns := make([]func(*identity.Session), 0, len(p.subscribers))
	for _, fn := range p.subscribers {
		fns = append(fns, fn)
	}
	p.mu.Unlock()
	for _, fn := range fns {
		fn(s)
	}
}
