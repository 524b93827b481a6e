// Package api implements the REST client for the tour backend. Responses
// arrive in a {data, message, status} envelope; HTTP status codes are mapped
// into the shared error taxonomy.
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

	"github.com/sirupsen/logrus"
)

// TokenProvider supplies the current bearer token, or "" when logged out.
type TokenProvider func() string

// Client is the backend API client.
type Client struct {
	baseURL    string
	tokenFn    TokenProvider
	logger     *logrus.Logger
	httpClient *http.Client
}

// envelope is the backend's standard response shape.
type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Status  string          `json:"status"`
}

// NewClient creates a backend API client.
func NewClient(baseURL string, timeout time.Duration, logger *logrus.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// SetTokenProvider installs the bearer token source. Requests without a
// provider (or with an empty token) go out unauthenticated.
func (c *Client) SetTokenProvider(fn TokenProvider) {
	c.tokenFn = fn
}

// Get performs a GET and decodes the envelope's data into out.
func (c *Client) Get(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Post performs a POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

// Patch performs a PATCH with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPatch, path, body, out)
}

// Put performs a PUT with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

// Delete performs a DELETE.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokenFn != nil {
		if token := c.tokenFn(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WithFields(logrus.Fields{
			"method": method,
			"path":   path,
		}).WithError(err).Warn("Request failed without a response")
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Err: err}
	}

	c.logger.WithFields(logrus.Fields{
		"method": method,
		"path":   path,
		"status": resp.StatusCode,
	}).Debug("API response received")

	var env envelope
	if len(respBody) > 0 {
		// A non-envelope body is tolerated; the status code still decides.
		_ = json.Unmarshal(respBody, &env)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if out == nil {
			return nil
		}
		data := respBody
		if probe, ok := envelopeShaped(respBody); ok {
			// An explicit data:null decodes as a no-op; an envelope with no
			// data field at all means the server sent nothing to decode.
			inner, present := probe["data"]
			if !present {
				return fmt.Errorf("response contained no data")
			}
			data = inner
		}
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		return nil

	case resp.StatusCode == http.StatusBadRequest:
		message := env.Message
		if message == "" {
			message = "request rejected"
		}
		return &BusinessError{Message: message}

	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &AuthError{StatusCode: resp.StatusCode, Message: env.Message}

	case resp.StatusCode == http.StatusNotFound:
		return &NotFoundError{Message: env.Message}

	default:
		message := env.Message
		if message == "" {
			message = fmt.Sprintf("server returned status %d", resp.StatusCode)
		}
		return fmt.Errorf("%s", message)
	}
}

// envelopeShaped reports whether body is the standard envelope and nothing
// else. A bare domain object always carries fields beyond data, message,
// and status.
func envelopeShaped(body []byte) (map[string]json.RawMessage, bool) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(body, &probe); err != nil || len(probe) == 0 {
		return nil, false
	}
	for key := range probe {
		switch key {
		case "data", "message", "status":
		default:
			return nil, false
		}
	}
	return probe, true
}
