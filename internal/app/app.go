package app

import (
	"context"
	"fmt"
	"log/slog"

	"fintrack/internal/config"
	"fintrack/internal/gateway"
	"fintrack/internal/identity"
	"fintrack/internal/identity/gotrue"
	"fintrack/internal/identity/memory"
	applog "fintrack/internal/log"
	"fintrack/internal/prefs"
	"fintrack/internal/session"
	"fintrack/internal/store"
)

// App wires the configured identity provider, the backend gateway, the
// local preference store, the session manager and the transaction store
// into one running unit.
type App struct {
	Config  *config.Config
	Logger  *applog.Logger
	Prefs   *prefs.Store
	Session *session.Manager
	Store   *store.Store

	// Confirm stands in for the provider's email confirmation step when
	// running against the in-process provider. Nil for hosted providers.
	Confirm func(email string)
}

// New builds the application from configuration. Start must be called
// before any session or store operation.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := applog.New(applog.Config{
		Level:     parseLevel(cfg.LogLevel),
		Component: applog.ComponentApp,
	})
	applog.SetDefault(logger)

	prefStore, err := prefs.Open(cfg.PrefsPath())
	if err != nil {
		return nil, fmt.Errorf("open preference store: %w", err)
	}

	a := &App{
		Config: cfg,
		Logger: logger,
		Prefs:  prefStore,
	}

	var provider identity.Provider
	switch cfg.AuthProvider {
	case "gotrue":
		provider = gotrue.NewClient(cfg.GoTrueURL, cfg.GoTrueAnonKey, cfg.APITimeout, logger)
	default:
		// Tokens are checked against the prefs file across invocations,
		// so the signing secret has to be stable.
		mem := memory.New([]byte("fintrack-local-secret"))
		a.Confirm = mem.Confirm
		provider = mem
	}

	a.Session = session.NewManager(provider, prefStore, logger)

	client := gateway.NewClient(cfg.APIBaseURL, cfg.APITimeout, a.Session, logger)
	a.Store, err = store.New(ctx, client, prefStore, a.Session, logger)
	if err != nil {
		prefStore.Close()
		return nil, fmt.Errorf("build transaction store: %w", err)
	}

	// Session transitions drive the store: a usable session loads data,
	// losing one clears it.
	a.Session.OnChange(func(s session.State) {
		switch s {
		case session.Guest, session.Authenticated:
			if err := a.Store.Load(ctx); err != nil {
				logger.WarnContext(ctx, "load after session change failed",
					applog.FieldSessionState, s.String(), applog.FieldError, err)
			}
		case session.Unauthenticated:
			a.Store.Clear()
		}
	})

	return a, nil
}

// Start resolves the initial session state, which in turn triggers the
// first data load when a stored credential or guest flag is found.
func (a *App) Start(ctx context.Context) error {
	return a.Session.Start(ctx)
}

// Close releases everything New acquired. In-flight background saves
// are drained first.
func (a *App) Close() error {
	a.Session.Stop()
	a.Store.Wait()
	return a.Prefs.Close()
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
