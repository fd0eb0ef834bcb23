package identity

import (
	"context"
	"errors"
	"time"
)

// Ports for identity-provider adapters.
type (
	Identity struct {
		ID    string
		Email string
		Name  string
	}

	Session struct {
		AccessToken string
		ExpiresAt   time.Time
		Identity    Identity
	}

	Provider interface {
		// SignIn exchanges credentials for a session.
		SignIn(ctx context.Context, email, password string) (Session, error)
		// SignUp creates a pending identity. It never authenticates;
		// the account must be confirmed before SignIn succeeds.
		SignUp(ctx context.Context, name, email, password string) (Identity, error)
		// SignOut invalidates the given access token. A best-effort call;
		// an already-dead token is not an error.
		SignOut(ctx context.Context, token string) error
		// Resume validates a stored access token. It returns nil without
		// error when the token no longer names a session.
		Resume(ctx context.Context, token string) (*Session, error)
		// ResetPassword starts the provider's recovery flow.
		ResetPassword(ctx context.Context, email string) error
	}

	// Watcher is implemented by providers that push session events
	// (token refresh, external sign-out). A nil session means signed out.
	Watcher interface {
		Subscribe(fn func(*Session)) (unsubscribe func())
	}
)

var (
	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrWeakPassword       = errors.New("password too weak")
	ErrDuplicateAccount   = errors.New("account already registered")
	ErrNotConfirmed       = errors.New("email not confirmed")
)
