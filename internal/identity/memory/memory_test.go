package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"fintrack/internal/identity"
)

func signedUp(t *testing.T) (*Provider, identity.Identity) {
	t.Helper()
	p := New([]byte("test-secret"))
	ident, err := p.SignUp(context.Background(), "Ada", "ada@example.com", "long-enough")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	return p, ident
}

func TestSignUpValidation(t *testing.T) {
	p := New([]byte("s"))
	ctx := context.Background()

	if _, err := p.SignUp(ctx, "Ada", "ada@example.com", "short"); !errors.Is(err, identity.ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
	if _, err := p.SignUp(ctx, "Ada", "", "long-enough"); !errors.Is(err, identity.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for empty email, got %v", err)
	}

	if _, err := p.SignUp(ctx, "Ada", "ada@example.com", "long-enough"); err != nil {
		t.Fatalf("signup: %v", err)
	}
	if _, err := p.SignUp(ctx, "Ada2", "ADA@example.com", "long-enough"); !errors.Is(err, identity.ErrDuplicateAccount) {
		t.Fatalf("expected ErrDuplicateAccount, got %v", err)
	}
}

func TestSignUpDoesNotAuthenticate(t *testing.T) {
	p, _ := signedUp(t)
	_, err := p.SignIn(context.Background(), "ada@example.com", "long-enough")
	if !errors.Is(err, identity.ErrNotConfirmed) {
		t.Fatalf("expected ErrNotConfirmed before confirmation, got %v", err)
	}
}

func TestSignInAfterConfirm(t *testing.T) {
	p, ident := signedUp(t)
	p.Confirm("ada@example.com")

	sess, err := p.SignIn(context.Background(), "ada@example.com", "long-enough")
	if err != nil {
		t.Fatalf("signin: %v", err)
	}
	if sess.AccessToken == "" {
		t.Fatalf("expected an access token")
	}
	if sess.Identity.ID != ident.ID || sess.Identity.Email != "ada@example.com" {
		t.Fatalf("unexpected identity: %+v", sess.Identity)
	}
	if !sess.ExpiresAt.After(time.Now()) {
		t.Fatalf("token must not be pre-expired")
	}

	if _, err := p.SignIn(context.Background(), "ada@example.com", "wrong"); !errors.Is(err, identity.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestResume(t *testing.T) {
	p, _ := signedUp(t)
	p.Confirm("ada@example.com")
	sess, err := p.SignIn(context.Background(), "ada@example.com", "long-enough")
	if err != nil {
		t.Fatalf("signin: %v", err)
	}

	resumed, err := p.Resume(context.Background(), sess.AccessToken)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if resumed == nil || resumed.Identity.Email != "ada@example.com" {
		t.Fatalf("unexpected resumed session: %+v", resumed)
	}

	// Tampered token resolves to no session, not an error.
	bogus, err := p.Resume(context.Background(), sess.AccessToken+"x")
	if err != nil || bogus != nil {
		t.Fatalf("expected no session for tampered token, got %+v err=%v", bogus, err)
	}

	// A token from a different secret is rejected the same way.
	other := New([]byte("other-secret"))
	foreign, err := other.Resume(context.Background(), sess.AccessToken)
	if err != nil || foreign != nil {
		t.Fatalf("expected no session for foreign token, got %+v err=%v", foreign, err)
	}
}

func TestExpiredTokenResumesToNothing(t *testing.T) {
	p, _ := signedUp(t)
	p.Confirm("ada@example.com")
	p.tokenTTL = -time.Minute

	sess, err := p.SignIn(context.Background(), "ada@example.com", "long-enough")
	if err != nil {
		t.Fatalf("signin: %v", err)
	}
	resumed, err := p.Resume(context.Background(), sess.AccessToken)
	if err != nil || resumed != nil {
		t.Fatalf("expected expired token to resolve to nothing, got %+v err=%v", resumed, err)
	}
}

func TestSubscribeAndPush(t *testing.T) {
	p, _ := signedUp(t)

	var got []*identity.Session
	unsubscribe := p.Subscribe(func(s *identity.Session) {
		got = append(got, s)
	})

	s := &identity.Session{AccessToken: "tok", Identity: identity.Identity{ID: "user-1"}}
	p.Push(s)
	if len(got) != 1 || got[0] != s {
		t.Fatalf("expected pushed session, got %v", got)
	}

	if err := p.SignOut(context.Background(), "tok"); err != nil {
		t.Fatalf("signout: %v", err)
	}
	if len(got) != 2 || got[1] != nil {
		t.Fatalf("expected nil session on signout, got %v", got)
	}

	unsubscribe()
	p.Push(s)
	if len(got) != 2 {
		t.Fatalf("unsubscribed listener still notified")
	}
}

func TestResetPassword(t *testing.T) {
	p, _ := signedUp(t)
	if err := p.ResetPassword(context.Background(), "ada@example.com"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if err := p.ResetPassword(context.Background(), "nobody@example.com"); !errors.Is(err, identity.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}
