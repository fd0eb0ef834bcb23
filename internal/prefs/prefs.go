// Package prefs persists the handful of per-device flags that must survive
// process restarts: the guest marker, the dark-mode preference and the
// cached access token. It is the local counterpart of the backend's
// settings record.
package prefs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const (
	keyGuest       = "guest"
	keyDarkMode    = "dark_mode"
	keyAccessToken = "access_token"
)

type Store struct {
	db *sql.DB
}

func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open preference database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// GuestFlag reports whether the device is marked for guest browsing.
func (s *Store) GuestFlag(ctx context.Context) (bool, error) {
	return s.getBool(ctx, keyGuest)
}

func (s *Store) SetGuestFlag(ctx context.Context) error {
	return s.set(ctx, keyGuest, "true")
}

func (s *Store) ClearGuestFlag(ctx context.Context) error {
	return s.delete(ctx, keyGuest)
}

// DarkMode returns the locally persisted theme flag, used before login and
// for guest sessions.
func (s *Store) DarkMode(ctx context.Context) (bool, error) {
	return s.getBool(ctx, keyDarkMode)
}

func (s *Store) SetDarkMode(ctx context.Context, on bool) error {
	if on {
		return s.set(ctx, keyDarkMode, "true")
	}
	return s.set(ctx, keyDarkMode, "false")
}

// AccessToken returns the cached credential, empty when none is stored.
func (s *Store) AccessToken(ctx context.Context) (string, error) {
	v, _, err := s.get(ctx, keyAccessToken)
	return v, err
}

func (s *Store) SetAccessToken(ctx context.Context, token string) error {
	return s.set(ctx, keyAccessToken, token)
}

func (s *Store) ClearAccessToken(ctx context.Context) error {
	return s.delete(ctx, keyAccessToken)
}

func (s *Store) getBool(ctx context.Context, key string) (bool, error) {
	v, ok, err := s.get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	return v == "true", nil
}

func (s *Store) get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM preferences WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read preference %s: %w", key, err)
	}
	return value, true, nil
}

func (s *Store) set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO preferences (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("write preference %s: %w", key, err)
	}
	return nil
}

func (s *Store) delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM preferences WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete preference %s: %w", key, err)
	}
	return nil
}
