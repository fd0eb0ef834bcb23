package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
)

// ErrRequestFailed is the single condition every transport, status or
// decoding failure wraps. Callers retry by repeating the triggering action;
// the gateway itself never retries.
var ErrRequestFailed = errors.New("request failed")

// Client talks to the backend REST API. It is stateless: every call is a
// single request/response round trip with an optional bearer credential.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	logger  *applog.Logger
}

func NewClient(baseURL string, timeout time.Duration, tokens TokenSource, logger *applog.Logger) *Client {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
		logger:  logger.WithComponent(applog.ComponentGateway),
	}
}

var _ API = (*Client)(nil)

// envelope is the backend's uniform response shape.
type envelope struct {
	Data json.RawMessage `json:"data"`
}

func (c *Client) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	return c.listTransactions(ctx, nil)
}

func (c *Client) ListTransactionsSorted(ctx context.Context, order core.SortOrder) ([]core.Transaction, error) {
	var dir string
	switch order {
	case core.SortAscAmount:
		dir = "asc"
	case core.SortDescAmount:
		dir = "desc"
	default:
		return nil, core.ErrInvalidSortOrder
	}
	return c.listTransactions(ctx, url.Values{"sort": {dir}})
}

func (c *Client) listTransactions(ctx context.Context, query url.Values) ([]core.Transaction, error) {
	data, err := c.call(ctx, http.MethodGet, "/transactions", query, nil)
	if err != nil {
		return nil, err
	}
	var ts []core.Transaction
	if err := decodeData(data, &ts); err != nil {
		return nil, err
	}
	if ts == nil {
		ts = []core.Transaction{}
	}
	return ts, nil
}

func (c *Client) CreateTransaction(ctx context.Context, d core.Draft) (core.Transaction, error) {
	data, err := c.call(ctx, http.MethodPost, "/transactions", nil, d)
	if err != nil {
		return core.Transaction{}, err
	}
	var t core.Transaction
	if err := decodeData(data, &t); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}

func (c *Client) UpdateTransaction(ctx context.Context, id int64, d core.Draft) (core.Transaction, error) {
	body := struct {
		ID int64 `json:"id"`
		core.Draft
	}{ID: id, Draft: d}

	data, err := c.call(ctx, http.MethodPut, "/transactions/"+strconv.FormatInt(id, 10), nil, body)
	if err != nil {
		return core.Transaction{}, err
	}
	var t core.Transaction
	if err := decodeData(data, &t); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}

func (c *Client) DeleteTransactions(ctx context.Context, ids []int64) error {
	// The backend expects string identifiers in the delete body.
	strs := make([]string, len(ids))
	for i, id := range ids {
		strs[i] = strconv.FormatInt(id, 10)
	}
	body := struct {
		IDs []string `json:"ids"`
	}{IDs: strs}

	_, err := c.call(ctx, http.MethodDelete, "/transactions", nil, body)
	return err
}

func (c *Client) ListCategories(ctx context.Context) ([]core.Category, error) {
	data, err := c.call(ctx, http.MethodGet, "/categories", nil, nil)
	if err != nil {
		return nil, err
	}
	var cats []core.Category
	if err := decodeData(data, &cats); err != nil {
		return nil, err
	}
	if cats == nil {
		cats = []core.Category{}
	}
	return cats, nil
}

// GetSettings returns the per-user settings record. The backend wraps the
// single record in an array; an empty array means defaults.
func (c *Client) GetSettings(ctx context.Context) (core.Settings, error) {
	data, err := c.call(ctx, http.MethodGet, "/settings", nil, nil)
	if err != nil {
		return core.Settings{}, err
	}
	var records []core.Settings
	if err := decodeData(data, &records); err != nil {
		return core.Settings{}, err
	}
	if len(records) == 0 {
		return core.Settings{DarkMode: false}, nil
	}
	return records[0], nil
}

func (c *Client) SaveSettings(ctx context.Context, s core.Settings) error {
	_, err := c.call(ctx, http.MethodPut, "/settings", nil, s)
	return err
}

func (c *Client) call(ctx context.Context, method, path string, query url.Values, body any) (json.RawMessage, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rdr io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%w: encode body: %v", ErrRequestFailed, err)
		}
		rdr = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token, ok := c.tokens.Token(); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.ErrorContext(ctx, "backend call failed",
			applog.FieldMethod, method, applog.FieldPath, path, applog.FieldError, err)
		return nil, fmt.Errorf("%w: %s %s: %v", ErrRequestFailed, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.ErrorContext(ctx, "backend returned error status",
			applog.FieldMethod, method, applog.FieldPath, path, applog.FieldStatusCode, resp.StatusCode)
		return nil, fmt.Errorf("%w: %s %s: status %d: %s", ErrRequestFailed, method, path, resp.StatusCode, bytes.TrimSpace(detail))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrRequestFailed, err)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: malformed body: %v", ErrRequestFailed, err)
	}
	return env.Data, nil
}

func decodeData(data json.RawMessage, out any) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: malformed data: %v", ErrRequestFailed, err)
	}
	return nil
}
