// Package taiga wraps the Taiga project-management REST API.
package taiga

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	apierrors "github.com/alphaomegateam/taiga-bridge/internal/errors"
)

// Record is a raw entity as returned by Taiga. The remote record shape
// varies by entity kind and is never fully enumerated, so typed access
// happens at the edges (projection, validation) instead of via structs.
type Record map[string]any

// Pagination holds the paging metadata Taiga reports via response headers.
type Pagination map[string]int

// HTTPClient abstracts HTTP calls for testing.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client performs authenticated CRUD calls against a Taiga instance.
// It caches the bearer token and resolved user id for its own lifetime;
// the bridge builds a fresh client per inbound request, so every request
// re-authenticates.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient HTTPClient
	logger     zerolog.Logger

	authToken string
	userID    *int
}

// Factory builds an authenticated client for a single inbound request.
type Factory func(ctx context.Context) (*Client, error)

// NewClient creates an unauthenticated Taiga client.
func NewClient(baseURL, username, password string, logger zerolog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		username:   username,
		password:   password,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger.With().Str("component", "taiga").Logger(),
	}
}

// NewFactory returns a Factory that builds and authenticates a client
// per call.
func NewFactory(baseURL, username, password string, logger zerolog.Logger) Factory {
	return func(ctx context.Context) (*Client, error) {
		c := NewClient(baseURL, username, password, logger)
		if err := c.Authenticate(ctx); err != nil {
			return nil, err
		}
		return c, nil
	}
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(hc HTTPClient) {
	c.httpClient = hc
}

// BaseURL returns the base URL of the Taiga instance.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Authenticate logs in with the configured credentials and caches the
// bearer token. Calling it again on an authenticated client is a no-op.
func (c *Client) Authenticate(ctx context.Context) error {
	if c.authToken != "" {
		return nil
	}

	payload := Record{
		"type":     "normal",
		"username": c.username,
		"password": c.password,
	}
	resp, err := c.do(ctx, http.MethodPost, "/auth", nil, payload)
	if err != nil {
		return fmt.Errorf("authenticating against taiga: %w", err)
	}

	var data Record
	if err := decodeResponse(resp, &data); err != nil {
		return err
	}

	token, ok := data["auth_token"].(string)
	if !ok || token == "" {
		return apierrors.NewAPIError("taiga", 0, "authentication response did not contain auth_token")
	}
	c.authToken = token

	if id, ok := asInt(data["id"]); ok {
		c.userID = &id
	}

	return nil
}

// CurrentUserID returns the authenticated user's id, resolving it via
// /users/me when the login response did not carry it.
func (c *Client) CurrentUserID(ctx context.Context) (int, error) {
	if c.userID != nil {
		return *c.userID, nil
	}

	me, err := c.getRecord(ctx, "/users/me", nil)
	if err != nil {
		return 0, err
	}
	id, ok := asInt(me["id"])
	if !ok {
		return 0, apierrors.NewAPIError("taiga", 0, "API did not provide the authenticated user id")
	}
	c.userID = &id
	return id, nil
}

// do executes a request and converts non-2xx responses into APIErrors.
// The caller owns the response body.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (*http.Response, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		apiErr := apierrors.NewAPIError("taiga", resp.StatusCode, strings.TrimSpace(string(respBody)))
		var payload any
		if json.Unmarshal(respBody, &payload) == nil {
			apiErr.Payload = payload
		}
		c.logger.Debug().
			Str("method", method).
			Str("path", path).
			Int("status", resp.StatusCode).
			Msg("taiga request failed")
		return nil, apiErr
	}

	return resp, nil
}

// getRecord issues a GET and decodes the response into a single Record.
func (c *Client) getRecord(ctx context.Context, path string, query url.Values) (Record, error) {
	resp, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := decodeResponse(resp, &rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// listRecords issues a GET and decodes the response into a Record slice.
func (c *Client) listRecords(ctx context.Context, path string, query url.Values) ([]Record, error) {
	resp, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}
	var recs []Record
	if err := decodeResponse(resp, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

// submitRecord issues a write (POST/PATCH) and decodes the returned record.
func (c *Client) submitRecord(ctx context.Context, method, path string, payload Record) (Record, error) {
	resp, err := c.do(ctx, method, path, nil, payload)
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := decodeResponse(resp, &rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// delete issues a DELETE and discards the response body.
func (c *Client) delete(ctx context.Context, path string) error {
	resp, err := c.do(ctx, http.MethodDelete, path, nil, nil)
	if err != nil {
		return err
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return nil
}

// decodeResponse reads and decodes a JSON response body.
func decodeResponse(resp *http.Response, v any) error {
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// extractPagination reads Taiga's x-pagination-* headers.
func extractPagination(headers http.Header) Pagination {
	mapping := map[string]string{
		"x-pagination-page":      "page",
		"x-pagination-page-size": "page_size",
		"x-pagination-total":     "total",
		"x-pagination-pages":     "total_pages",
	}
	p := Pagination{}
	for header, field := range mapping {
		value := headers.Get(header)
		if value == "" {
			continue
		}
		if n, err := strconv.Atoi(value); err == nil {
			p[field] = n
		}
	}
	return p
}

// asInt coerces the numeric shapes JSON decoding can produce.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	default:
		return 0, false
	}
}
