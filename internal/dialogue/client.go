// Package dialogue talks to the dialogue engine's REST channel.
package dialogue

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/wolfman30/coleta-bot/pkg/logging"
)

const (
	defaultWebhookURL = "http://localhost:5005/webhooks/rest/webhook"
	defaultTimeout    = 5 * time.Second
	maxErrorBody      = 512
)

// ErrUnexpectedStatus is returned when the engine answers with a non-2xx status.
var ErrUnexpectedStatus = errors.New("dialogue: unexpected status")

// Reply is one bot utterance. Text is empty for non-text replies (images, buttons).
type Reply struct {
	RecipientID string `json:"recipient_id"`
	Text        string `json:"text,omitempty"`
}

type request struct {
	Sender  string `json:"sender"`
	Message string `json:"message"`
}

// Config configures a Client.
type Config struct {
	WebhookURL string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *logging.Logger
}

// Client forwards user messages to the engine and returns its replies.
type Client struct {
	url        string
	timeout    time.Duration
	httpClient *http.Client
	logger     *logging.Logger
}

func NewClient(cfg Config) *Client {
	url := cfg.WebhookURL
	if url == "" {
		url = defaultWebhookURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{url: url, timeout: timeout, httpClient: httpClient, logger: logger}
}

// Send posts one user message and decodes the engine's replies.
func (c *Client) Send(ctx context.Context, sender, message string) ([]Reply, error) {
	payload, err := json.Marshal(request{Sender: sender, Message: message})
	if err != nil {
		return nil, fmt.Errorf("dialogue: marshal request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("dialogue: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("dialogue: send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Debug("dialogue error response", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	var replies []Reply
	if err := json.NewDecoder(resp.Body).Decode(&replies); err != nil {
		return nil, fmt.Errorf("dialogue: decode replies: %w", err)
	}
	c.logger.Debug("dialogue replied", "sender_id", sender, "replies", len(replies), "status", resp.StatusCode)
	return replies, nil
}
