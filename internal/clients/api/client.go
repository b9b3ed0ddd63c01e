// Package api is a typed HTTP client for the note-sage REST surface. It
// backs the workspace layer and the data seeder, and doubles as the
// reference consumer of the API contract in e2e tests.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"note-sage/internal/workspace"
)

const defaultTimeout = 15 * time.Second

// Client talks to a running note-sage server with a bearer token.
type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
}

// New creates a client for the given server. The token is the access token
// returned by sign-in/sign-up.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpc:   &http.Client{Timeout: defaultTimeout},
	}
}

// SetToken swaps the bearer token, e.g. after re-authentication.
func (c *Client) SetToken(token string) { c.token = token }

type apiError struct {
	Error string `json:"error"`
}

// do issues one request and decodes the response into out (when non-nil).
// Non-2xx responses are turned into errors carrying the server's message.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var ae apiError
		if jsonErr := json.Unmarshal(data, &ae); jsonErr == nil && ae.Error != "" {
			return fmt.Errorf("%s %s: %s (status %d)", method, path, ae.Error, resp.StatusCode)
		}
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// SignUp registers a new account and stores the returned token on the client.
func (c *Client) SignUp(ctx context.Context, email, password string) error {
	return c.authenticate(ctx, "/api/v1/auth/sign-up", email, password)
}

// SignIn authenticates an existing account and stores the returned token.
func (c *Client) SignIn(ctx context.Context, email, password string) error {
	return c.authenticate(ctx, "/api/v1/auth/sign-in", email, password)
}

func (c *Client) authenticate(ctx context.Context, path, email, password string) error {
	var res struct {
		Token string `json:"token"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, path, body, &res); err != nil {
		return err
	}
	c.token = res.Token
	return nil
}

// ListNotes returns the caller's notes, most recently updated first.
func (c *Client) ListNotes(ctx context.Context) ([]workspace.StoredNote, error) {
	var notes []workspace.StoredNote
	if err := c.do(ctx, http.MethodGet, "/api/notes", nil, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

// CreateNote creates a note. Empty title and content are allowed; the
// server fills in its defaults.
func (c *Client) CreateNote(ctx context.Context, title, content string) (workspace.StoredNote, error) {
	var note workspace.StoredNote
	body := map[string]string{"title": title, "content": content}
	if err := c.do(ctx, http.MethodPost, "/api/notes", body, &note); err != nil {
		return workspace.StoredNote{}, err
	}
	return note, nil
}

// UpdateNote patches a note. Nil fields are left unchanged server-side.
func (c *Client) UpdateNote(ctx context.Context, id string, title, content *string) (workspace.StoredNote, error) {
	var note workspace.StoredNote
	body := map[string]*string{"title": title, "content": content}
	if err := c.do(ctx, http.MethodPut, "/api/notes/"+id, body, &note); err != nil {
		return workspace.StoredNote{}, err
	}
	return note, nil
}

// DeleteNote removes a note by id.
func (c *Client) DeleteNote(ctx context.Context, id string) error {
	var res struct {
		Success bool `json:"success"`
	}
	return c.do(ctx, http.MethodDelete, "/api/notes/"+id, nil, &res)
}

// SummarizeNote invokes the summarize action. A failed summarization is
// reported inside the outcome, not as a Go error.
func (c *Client) SummarizeNote(ctx context.Context, id string) (workspace.SummarizeOutcome, error) {
	var out workspace.SummarizeOutcome
	if err := c.do(ctx, http.MethodPost, "/api/notes/"+id+"/summarize", nil, &out); err != nil {
		return workspace.SummarizeOutcome{}, err
	}
	return out, nil
}

var _ workspace.API = (*Client)(nil)
