package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type Config struct {
	// Backend REST API
	APIBaseURL string
	APITimeout time.Duration

	// Local state (guest flag, theme flag, cached token)
	DataDir string

	// Identity provider selection
	AuthProvider string

	// GoTrue specific
	GoTrueURL     string
	GoTrueAnonKey string

	// Logging
	LogLevel string
}

func Load() *Config {
	return &Config{
		APIBaseURL: getEnv("FINTRACK_API_URL", "http://localhost:5002"),
		APITimeout: getEnvDuration("FINTRACK_API_TIMEOUT", 15*time.Second),

		DataDir: getEnv("FINTRACK_DATA_DIR", defaultDataDir()),

		AuthProvider: getEnv("FINTRACK_AUTH_PROVIDER", "memory"),

		GoTrueURL:     getEnv("FINTRACK_GOTRUE_URL", ""),
		GoTrueAnonKey: getEnv("FINTRACK_GOTRUE_ANON_KEY", ""),

		LogLevel: getEnv("FINTRACK_LOG_LEVEL", "info"),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errs []string

	if u, err := url.Parse(c.APIBaseURL); err != nil {
		errs = append(errs, fmt.Sprintf("invalid API URL '%s': %v", c.APIBaseURL, err))
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errs = append(errs, fmt.Sprintf("invalid API URL scheme '%s': must be 'http' or 'https'", u.Scheme))
	}

	if c.APITimeout < time.Second {
		errs = append(errs, fmt.Sprintf("invalid API timeout %v: must be at least 1 second", c.APITimeout))
	} else if c.APITimeout > 5*time.Minute {
		errs = append(errs, fmt.Sprintf("invalid API timeout %v: must be at most 5 minutes", c.APITimeout))
	}

	if c.DataDir == "" {
		errs = append(errs, "data directory cannot be empty")
	} else if _, err := os.Stat(c.DataDir); os.IsNotExist(err) {
		if err := os.MkdirAll(c.DataDir, 0o755); err != nil {
			errs = append(errs, fmt.Sprintf("cannot create data directory '%s': %v", c.DataDir, err))
		}
	}

	validProviders := []string{"memory", "gotrue"}
	isValidProvider := false
	for _, p := range validProviders {
		if c.AuthProvider == p {
			isValidProvider = true
			break
		}
	}
	if !isValidProvider {
		errs = append(errs, fmt.Sprintf("invalid auth provider '%s': must be one of %v", c.AuthProvider, validProviders))
	}

	if c.AuthProvider == "gotrue" {
		if c.GoTrueURL == "" {
			errs = append(errs, "GoTrue URL is required when using the gotrue auth provider")
		} else if u, err := url.Parse(c.GoTrueURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid GoTrue URL '%s': %v", c.GoTrueURL, err))
		} else if u.Scheme != "http" && u.Scheme != "https" {
			errs = append(errs, fmt.Sprintf("invalid GoTrue URL scheme '%s': must be 'http' or 'https'", u.Scheme))
		}
		if c.GoTrueAnonKey == "" {
			errs = append(errs, "GoTrue anon key is required when using the gotrue auth provider")
		}
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("invalid log level '%s': must be one of [debug info warn error]", c.LogLevel))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

// PrefsPath returns the path of the local preference database.
func (c *Config) PrefsPath() string {
	return filepath.Join(c.DataDir, "fintrack.db")
}

func defaultDataDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".fintrack")
	}
	return ".fintrack"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
