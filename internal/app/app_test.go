package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/config"
	"fintrack/internal/session"
)

func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/transactions", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"id":1,"type":"income","amount":100,"category":"Salary","date":"2025-06-30","description":"june salary"}]}`))
	})
	mux.HandleFunc("/categories", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"category":"Salary"}]}`))
	})
	mux.HandleFunc("/settings", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"darkMode":false}]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newApp(t *testing.T) *App {
	t.Helper()
	srv := newBackend(t)
	t.Setenv("FINTRACK_API_URL", srv.URL)
	t.Setenv("FINTRACK_DATA_DIR", t.TempDir())
	t.Setenv("FINTRACK_AUTH_PROVIDER", "memory")
	t.Setenv("FINTRACK_LOG_LEVEL", "error")

	a, err := New(context.Background(), config.Load())
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func TestStartWithNoStoredState(t *testing.T) {
	a := newApp(t)
	require.NoError(t, a.Start(context.Background()))

	assert.Equal(t, session.Unauthenticated, a.Session.State())
	assert.Empty(t, a.Store.Transactions())
}

func TestLoginLoadsStore(t *testing.T) {
	a := newApp(t)
	require.NoError(t, a.Start(context.Background()))

	ctx := context.Background()
	_, err := a.Session.Signup(ctx, "Ada", "ada@example.com", "long-enough")
	require.NoError(t, err)
	require.NotNil(t, a.Confirm)
	a.Confirm("ada@example.com")

	require.NoError(t, a.Session.Login(ctx, "ada@example.com", "long-enough"))
	assert.Equal(t, session.Authenticated, a.Session.State())
	assert.Len(t, a.Store.Transactions(), 1)
	assert.Len(t, a.Store.Categories(), 1)
}

func TestGuestLoadsStoreAndLogoutClearsIt(t *testing.T) {
	a := newApp(t)
	require.NoError(t, a.Start(context.Background()))

	ctx := context.Background()
	require.NoError(t, a.Session.ContinueAsGuest(ctx))
	assert.Equal(t, session.Guest, a.Session.State())
	assert.Len(t, a.Store.Transactions(), 1)

	require.NoError(t, a.Session.Logout(ctx))
	assert.Equal(t, session.Unauthenticated, a.Session.State())
	assert.Empty(t, a.Store.Transactions())
}

func TestInvalidConfigRejected(t *testing.T) {
	t.Setenv("FINTRACK_DATA_DIR", t.TempDir())
	cfg := config.Load()
	cfg.APIBaseURL = "ftp://nope"
	_, err := New(context.Background(), cfg)
	assert.Error(t, err)
}
