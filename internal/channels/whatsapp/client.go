package whatsapp

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

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/coleta-bot/pkg/logging"
)

const (
	defaultGraphAPIBase = "https://graph.facebook.com/v16.0"
	defaultHTTPTimeout  = 10 * time.Second
)

// ErrSend is returned when the Graph API refuses an outbound message.
var ErrSend = errors.New("whatsapp: send rejected")

var tracer = otel.Tracer("coleta.internal.channels.whatsapp")

// ClientConfig configures a Client.
type ClientConfig struct {
	AccessToken   string
	PhoneNumberID string

	// APIKey is forwarded as the x_api_key header when set.
	APIKey string

	GraphAPIBase string
	Timeout      time.Duration
	HTTPClient   *http.Client
	Logger       *logging.Logger
}

// Client sends messages through the WhatsApp Cloud API.
type Client struct {
	accessToken   string
	phoneNumberID string
	apiKey        string
	graphAPIBase  string
	httpClient    *http.Client
	logger        *logging.Logger
}

// NewClient creates a Cloud API client.
func NewClient(cfg ClientConfig) *Client {
	base := strings.TrimRight(cfg.GraphAPIBase, "/")
	if base == "" {
		base = defaultGraphAPIBase
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		accessToken:   cfg.AccessToken,
		phoneNumberID: cfg.PhoneNumberID,
		apiKey:        cfg.APIKey,
		graphAPIBase:  base,
		httpClient:    httpClient,
		logger:        logger,
	}
}

// SendText sends a plain text message to the given WhatsApp number.
func (c *Client) SendText(ctx context.Context, to, body string) (*SendResponse, error) {
	ctx, span := tracer.Start(ctx, "whatsapp.send_text", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	resp, status, err := c.send(ctx, SendRequest{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "text",
		Text:             Text{Body: body},
	})
	span.SetAttributes(attribute.Int("http.status_code", status))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "send failed")
		return resp, err
	}
	c.logger.Debug("whatsapp message sent", "to", to, "status", status)
	return resp, nil
}

func (c *Client) send(ctx context.Context, req SendRequest) (*SendResponse, int, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, 0, fmt.Errorf("whatsapp: marshal send request: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", c.graphAPIBase, c.phoneNumberID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, 0, fmt.Errorf("whatsapp: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.accessToken)
	if c.apiKey != "" {
		httpReq.Header.Set("x_api_key", c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, 0, fmt.Errorf("whatsapp: send message: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("whatsapp: read response: %w", err)
	}

	var sendResp SendResponse
	decodeErr := json.Unmarshal(respBody, &sendResp)

	if sendResp.Error != nil {
		return &sendResp, resp.StatusCode, fmt.Errorf("%w: API error %d: %s", ErrSend, sendResp.Error.Code, sendResp.Error.Message)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Debug("whatsapp error response", "status", resp.StatusCode, "body", string(respBody))
		return &sendResp, resp.StatusCode, fmt.Errorf("%w: unexpected status %d", ErrSend, resp.StatusCode)
	}
	if decodeErr != nil {
		return nil, resp.StatusCode, fmt.Errorf("whatsapp: unmarshal response: %w", decodeErr)
	}
	return &sendResp, resp.StatusCode, nil
}
