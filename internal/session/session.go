// Package session tracks who is using the application: an authenticated
// identity, a guest, or nobody. It owns the transitions between those
// states and persists the bits that must survive a restart (guest marker,
// cached access token) through the preference store.
package session

import (
	"context"
	"sync"

	"fintrack/internal/identity"
	applog "fintrack/internal/log"
	"fintrack/internal/prefs"
)

type State int

const (
	Unauthenticated State = iota
	Guest
	Authenticated
)

func (s State) String() string {
	switch s {
	case Guest:
		return "guest"
	case Authenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

type Manager struct {
	provider identity.Provider
	prefs    *prefs.Store
	logger   *applog.Logger

	mu        sync.Mutex
	state     State
	ident     identity.Identity
	token     string
	listeners []func(State)

	unsubscribe func()
}

func NewManager(provider identity.Provider, store *prefs.Store, logger *applog.Logger) *Manager {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &Manager{
		provider: provider,
		prefs:    store,
		logger:   logger.WithComponent(applog.ComponentSession),
	}
}

// OnChange registers a listener invoked after every state transition.
// Register before Start so the initial resolution is observed too.
func (m *Manager) OnChange(fn func(State)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// Start resolves the initial state: a stored token that still names a
// session wins, then the persisted guest flag, then unauthenticated. It
// also subscribes to provider-pushed session events when available.
func (m *Manager) Start(ctx context.Context) error {
	state := Unauthenticated
	var ident identity.Identity
	var token string

	if stored, err := m.prefs.AccessToken(ctx); err != nil {
		return err
	} else if stored != "" {
		sess, err := m.provider.Resume(ctx, stored)
		if err != nil {
			// Transport trouble is not a reason to drop the stored
			// credential; resolve as signed out for now.
			m.logger.WarnContext(ctx, "session resume failed",
				applog.FieldOperation, applog.OpResume, applog.FieldError, err)
		} else if sess != nil {
			state = Authenticated
			ident = sess.Identity
			token = sess.AccessToken
		}
	}

	if state != Authenticated {
		guest, err := m.prefs.GuestFlag(ctx)
		if err != nil {
			return err
		}
		if guest {
			state = Guest
		}
	} else if err := m.prefs.ClearGuestFlag(ctx); err != nil {
		return err
	}

	m.mu.Lock()
	m.state = state
	m.ident = ident
	m.token = token
	m.mu.Unlock()

	if w, ok := m.provider.(identity.Watcher); ok {
		m.unsubscribe = w.Subscribe(m.HandleSessionEvent)
	}

	m.logger.InfoContext(ctx, "session resolved", applog.FieldSessionState, state.String())
	m.notify(state)
	return nil
}

// Stop detaches from provider events.
func (m *Manager) Stop() {
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
}

func (m *Manager) Login(ctx context.Context, email, password string) error {
	sess, err := m.provider.SignIn(ctx, email, password)
	if err != nil {
		return err
	}
	if err := m.prefs.SetAccessToken(ctx, sess.AccessToken); err != nil {
		return err
	}
	if err := m.prefs.ClearGuestFlag(ctx); err != nil {
		return err
	}

	m.mu.Lock()
	m.state = Authenticated
	m.ident = sess.Identity
	m.token = sess.AccessToken
	m.mu.Unlock()

	m.logger.InfoContext(ctx, "logged in",
		applog.FieldOperation, applog.OpLogin, applog.FieldEmail, sess.Identity.Email)
	m.notify(Authenticated)
	return nil
}

// Signup creates a pending identity. The session state does not change;
// the account still needs the provider's confirmation step.
func (m *Manager) Signup(ctx context.Context, name, email, password string) (identity.Identity, error) {
	ident, err := m.provider.SignUp(ctx, name, email, password)
	if err != nil {
		return identity.Identity{}, err
	}
	m.logger.InfoContext(ctx, "signup submitted",
		applog.FieldOperation, applog.OpSignup, applog.FieldEmail, ident.Email)
	return ident, nil
}

func (m *Manager) ContinueAsGuest(ctx context.Context) error {
	m.mu.Lock()
	token := m.token
	m.mu.Unlock()
	if token != "" {
		if err := m.provider.SignOut(ctx, token); err != nil {
			m.logger.WarnContext(ctx, "sign-out before guest mode failed", applog.FieldError, err)
		}
	}
	if err := m.prefs.ClearAccessToken(ctx); err != nil {
		return err
	}
	if err := m.prefs.SetGuestFlag(ctx); err != nil {
		return err
	}

	m.mu.Lock()
	m.state = Guest
	m.ident = identity.Identity{}
	m.token = ""
	m.mu.Unlock()

	m.logger.InfoContext(ctx, "continuing as guest")
	m.notify(Guest)
	return nil
}

func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	token := m.token
	m.mu.Unlock()
	if token != "" {
		if err := m.provider.SignOut(ctx, token); err != nil {
			m.logger.WarnContext(ctx, "provider sign-out failed", applog.FieldError, err)
		}
	}
	if err := m.prefs.ClearAccessToken(ctx); err != nil {
		return err
	}
	if err := m.prefs.ClearGuestFlag(ctx); err != nil {
		return err
	}

	m.mu.Lock()
	m.state = Unauthenticated
	m.ident = identity.Identity{}
	m.token = ""
	m.mu.Unlock()

	m.logger.InfoContext(ctx, "logged out", applog.FieldOperation, applog.OpLogout)
	m.notify(Unauthenticated)
	return nil
}

func (m *Manager) ResetPassword(ctx context.Context, email string) error {
	return m.provider.ResetPassword(ctx, email)
}

// HandleSessionEvent applies a provider-pushed session event. Events are
// idempotent: a session naming the identity already signed in refreshes
// the token without a state transition, so listeners never reload twice.
func (m *Manager) HandleSessionEvent(sess *identity.Session) {
	ctx := context.Background()

	m.mu.Lock()
	if sess != nil {
		if m.state == Authenticated && m.ident.ID == sess.Identity.ID {
			m.token = sess.AccessToken
			m.mu.Unlock()
			if err := m.prefs.SetAccessToken(ctx, sess.AccessToken); err != nil {
				m.logger.Warn("persist refreshed token failed", applog.FieldError, err)
			}
			return
		}
		m.state = Authenticated
		m.ident = sess.Identity
		m.token = sess.AccessToken
		m.mu.Unlock()

		if err := m.prefs.SetAccessToken(ctx, sess.AccessToken); err != nil {
			m.logger.Warn("persist token failed", applog.FieldError, err)
		}
		if err := m.prefs.ClearGuestFlag(ctx); err != nil {
			m.logger.Warn("clear guest flag failed", applog.FieldError, err)
		}
		m.notify(Authenticated)
		return
	}

	// Signed-out event only matters for an authenticated session; a guest
	// has no provider session to lose.
	if m.state != Authenticated {
		m.mu.Unlock()
		return
	}
	m.state = Unauthenticated
	m.ident = identity.Identity{}
	m.token = ""
	m.mu.Unlock()

	if err := m.prefs.ClearAccessToken(ctx); err != nil {
		m.logger.Warn("clear token failed", applog.FieldError, err)
	}
	m.notify(Unauthenticated)
}

// Token implements gateway.TokenSource. Guests and unauthenticated
// sessions carry no credential.
func (m *Manager) Token() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Authenticated {
		return "", false
	}
	return m.token, true
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Manager) Authenticated() bool {
	return m.State() == Authenticated
}

func (m *Manager) Identity() identity.Identity {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ident
}

func (m *Manager) notify(s State) {
	m.mu.Lock()
	listeners := make([]func(State), len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.Unlock()
	for _, fn := range listeners {
		fn(s)
	}
}
