package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/lox/potgame/internal/pot"
	"github.com/lox/potgame/internal/session"
)

// APIError is a non 2xx response from the server
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server returned %d %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("server returned %d %s", e.StatusCode, e.Code)
}

// Client talks to a running server
type Client struct {
	base   *url.URL
	http   *http.Client
	dialer *websocket.Dialer
}

// NewClient creates a client for the server at baseURL, for example
// "http://localhost:9000".
func NewClient(baseURL string) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid server URL %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server URL %q: scheme must be http or https", baseURL)
	}
	return &Client{
		base:   u,
		http:   &http.Client{},
		dialer: websocket.DefaultDialer,
	}, nil
}

// Hello fetches the greeting message
func (c *Client) Hello(ctx context.Context) (string, error) {
	var msg Message
	if err := c.do(ctx, http.MethodGet, "/hello", nil, &msg); err != nil {
		return "", err
	}
	return msg.Message, nil
}

// State fetches the current snapshot
func (c *Client) State(ctx context.Context) (pot.State, error) {
	var s pot.State
	if err := c.do(ctx, http.MethodGet, "/api/state", nil, &s); err != nil {
		return pot.State{}, err
	}
	return s, nil
}

// Dispatch sends an intent and returns the resulting snapshot. Rejections
// come back as *APIError carrying the rejection code.
func (c *Client) Dispatch(ctx context.Context, in session.Intent) (pot.State, error) {
	req := ActionRequest{
		Action: string(in.Kind),
		Name:   in.Name,
		Bet:    in.Bet,
	}
	if in.Kind == session.IntentRemovePlayer {
		req.Index = &in.Index
	}
	body, err := json.Marshal(req)
	if err != nil {
		return pot.State{}, fmt.Errorf("failed to encode action: %w", err)
	}
	var s pot.State
	if err := c.do(ctx, http.MethodPost, "/api/actions", body, &s); err != nil {
		return pot.State{}, err
	}
	return s, nil
}

// Watch calls fn with every snapshot the server publishes until ctx is
// done or the server closes the stream.
func (c *Client) Watch(ctx context.Context, fn func(pot.State)) error {
	wsURL := *c.base
	wsURL.Scheme = "ws"
	if c.base.Scheme == "https" {
		wsURL.Scheme = "wss"
	}
	wsURL.Path = c.base.Path + "/ws"

	conn, _, err := c.dialer.DialContext(ctx, wsURL.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", wsURL.String(), err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() {
		_ = conn.Close()
	})
	defer stop()

	for {
		var s pot.State
		if err := conn.ReadJSON(&s); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("failed to read snapshot: %w", err)
		}
		fn(s)
	}
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var er ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&er); err == nil {
			apiErr.Code = er.Error
			apiErr.Message = er.Message
		}
		return apiErr
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}

// RejectionCode returns the code of a rejected request, or "" when err is
// not a server rejection.
func RejectionCode(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnprocessableEntity {
		return apiErr.Code
	}
	return ""
}
