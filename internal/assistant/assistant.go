// Package assistant integrates the travel chat assistant. The assistant
// runs on a primary host with a fallback host for when the primary is
// unreachable; this is the only retry anywhere in the client.
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/visitamhara/tourapp/internal/api"
	"github.com/visitamhara/tourapp/internal/config"
)

// Client talks to the chat assistant service.
type Client struct {
	primaryURL  string
	fallbackURL string
	logger      *logrus.Logger
	httpClient  *http.Client
}

type askRequest struct {
	Prompt string `json:"prompt"`
}

type askResponse struct {
	Reply string `json:"reply"`
}

// NewClient creates an assistant client.
func NewClient(cfg *config.AssistantConfig, logger *logrus.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		primaryURL:  cfg.PrimaryURL,
		fallbackURL: cfg.FallbackURL,
		logger:      logger,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Ask sends a prompt to the assistant. When the primary host refuses the
// connection outright and a fallback is configured, the fallback is tried
// once. Timeouts and HTTP errors stay with the primary; after that the
// caller gets the error as-is.
func (c *Client) Ask(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", &api.ValidationError{Field: "prompt", Message: "prompt cannot be empty"}
	}

	reply, err := c.ask(ctx, c.primaryURL, prompt)
	if err == nil {
		return reply, nil
	}

	if c.fallbackURL == "" || !isConnectionError(err) {
		return "", err
	}

	c.logger.WithError(err).Warn("Assistant primary host unreachable, trying fallback")
	return c.ask(ctx, c.fallbackURL, prompt)
}

// isConnectionError reports whether the request never reached the host at
// the dial level. A request that timed out mid-flight does not qualify.
func isConnectionError(err error) bool {
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial" && !opErr.Timeout()
}

func (c *Client) ask(ctx context.Context, baseURL, prompt string) (string, error) {
	jsonBody, err := json.Marshal(&askRequest{Prompt: prompt})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/ask", bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &api.NetworkError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &api.NetworkError{Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("assistant returned status %d", resp.StatusCode)
	}

	var askResp askResponse
	if err := json.Unmarshal(body, &askResp); err != nil {
		return "", fmt.Errorf("failed to parse assistant response: %w", err)
	}

	return askResp.Reply, nil
}
