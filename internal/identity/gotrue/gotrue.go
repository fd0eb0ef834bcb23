package gotrue

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"fintrack/internal/identity"
	applog "fintrack/internal/log"
)

// Client adapts a GoTrue-style auth service (the API behind Supabase auth)
// to the identity.Provider port.
type Client struct {
	baseURL string
	anonKey string
	http    *http.Client
	logger  *applog.Logger
}

func NewClient(baseURL, anonKey string, timeout time.Duration, logger *applog.Logger) *Client {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		anonKey: anonKey,
		http:    &http.Client{Timeout: timeout},
		logger:  logger.WithComponent(applog.ComponentIdentity),
	}
}

var _ identity.Provider = (*Client)(nil)

type userPayload struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	UserMetadata struct {
		FullName string `json:"full_name"`
	} `json:"user_metadata"`
}

func (u userPayload) identity() identity.Identity {
	return identity.Identity{ID: u.ID, Email: u.Email, Name: u.UserMetadata.FullName}
}

func (c *Client) SignIn(ctx context.Context, email, password string) (identity.Session, error) {
	body := map[string]string{"email": email, "password": password}

	var out struct {
		AccessToken string      `json:"access_token"`
		ExpiresIn   int64       `json:"expires_in"`
		User        userPayload `json:"user"`
	}
	if err := c.post(ctx, "/token?grant_type=password", "", body, &out); err != nil {
		return identity.Session{}, err
	}
	return identity.Session{
		AccessToken: out.AccessToken,
		ExpiresAt:   time.Now().Add(time.Duration(out.ExpiresIn) * time.Second),
		Identity:    out.User.identity(),
	}, nil
}

func (c *Client) SignUp(ctx context.Context, name, email, password string) (identity.Identity, error) {
	body := map[string]any{
		"email":    email,
		"password": password,
		"data":     map[string]string{"full_name": name},
	}

	var out userPayload
	if err := c.post(ctx, "/signup", "", body, &out); err != nil {
		return identity.Identity{}, err
	}
	return out.identity(), nil
}

func (c *Client) SignOut(ctx context.Context, token string) error {
	err := c.post(ctx, "/logout", token, nil, nil)
	// A token the service no longer recognises is already signed out.
	if errors.Is(err, errUnauthorized) {
		return nil
	}
	return err
}

// Resume asks the service who the stored token belongs to. A rejected token
// resolves to no session.
func (c *Client) Resume(ctx context.Context, token string) (*identity.Session, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/user", token, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, c.errorFrom(resp)
	}

	var user userPayload
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return &identity.Session{AccessToken: token, Identity: user.identity()}, nil
}

func (c *Client) ResetPassword(ctx context.Context, email string) error {
	return c.post(ctx, "/recover", "", map[string]string{"email": email}, nil)
}

var errUnauthorized = errors.New("unauthorized")

func (c *Client) post(ctx context.Context, path, token string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode body: %w", err)
		}
		rdr = bytes.NewReader(payload)
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, token, rdr)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.ErrorContext(ctx, "identity request failed", applog.FieldPath, path, applog.FieldError, err)
		return fmt.Errorf("identity request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return errUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.errorFrom(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path, token string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/auth/v1"+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", c.anonKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// errorFrom maps the service's error payload onto the port's sentinel
// errors; anything unrecognised keeps the provider's message so it can be
// shown to the user verbatim.
func (c *Client) errorFrom(resp *http.Response) error {
	var payload struct {
		Msg              string `json:"msg"`
		Message          string `json:"message"`
		ErrorDescription string `json:"error_description"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	_ = json.Unmarshal(raw, &payload)

	msg := payload.Msg
	if msg == "" {
		msg = payload.Message
	}
	if msg == "" {
		msg = payload.ErrorDescription
	}

	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "invalid login credentials"):
		return identity.ErrInvalidCredentials
	case strings.Contains(lower, "already registered"):
		return identity.ErrDuplicateAccount
	case strings.Contains(lower, "password"):
		return fmt.Errorf("%w: %s", identity.ErrWeakPassword, msg)
	case strings.Contains(lower, "not confirmed"):
		return identity.ErrNotConfirmed
	case msg != "":
		return errors.New(msg)
	default:
		return fmt.Errorf("identity service returned status %d", resp.StatusCode)
	}
}
