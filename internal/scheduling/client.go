package scheduling

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/coleta-bot/internal/observability/metrics"
	"github.com/wolfman30/coleta-bot/pkg/logging"
)

const (
	defaultTimeout  = 10 * time.Second
	maxLoggedBody   = 300
	createNotes     = "Agendado via chatbot"
	rescheduleNotes = "Remarcado pelo chatbot"
)

var tracer = otel.Tracer("coleta.internal.scheduling")

// OutcomeKind classifies the result of a backend call.
type OutcomeKind string

const (
	OutcomeOK               OutcomeKind = "ok"
	OutcomeNotFound         OutcomeKind = "not_found"
	OutcomeClientError      OutcomeKind = "client_error"
	OutcomeUnexpectedStatus OutcomeKind = "unexpected_status"
	OutcomeTimeout          OutcomeKind = "timeout"
	OutcomeConnectionError  OutcomeKind = "connection_error"

	// OutcomeInvalidRequest means the call was never issued.
	OutcomeInvalidRequest OutcomeKind = "invalid_request"
)

// Outcome is the normalized result of one backend call. Body is set whenever
// the backend answered; Err is set for transport failures and undecodable
// success bodies.
type Outcome struct {
	Kind       OutcomeKind
	StatusCode int
	Body       []byte
	Err        error
}

// Detail is the operator-facing diagnostic for the outcome.
func (o Outcome) Detail() string {
	if o.Err != nil {
		return o.Err.Error()
	}
	return truncate(string(o.Body), maxLoggedBody)
}

// Config configures a Client.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *logging.Logger
	Metrics    *metrics.ActionMetrics
}

// Client calls the scheduling backend REST API. It keeps no state between calls
// and never retries.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	logger     *logging.Logger
	metrics    *metrics.ActionMetrics
}

// NewClient constructs a scheduling backend client.
func NewClient(cfg Config) *Client {
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
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		timeout:    timeout,
		httpClient: httpClient,
		logger:     logger,
		metrics:    cfg.Metrics,
	}
}

// LookupCustomer resolves the customer registered under phone.
func (c *Client) LookupCustomer(ctx context.Context, phone string) (CustomerLookup, Outcome) {
	out := c.Do(ctx, http.MethodGet, "clientes/consulta-cliente-telefone/"+url.PathEscape(phone), nil)
	if out.Kind != OutcomeOK {
		return CustomerLookup{}, out
	}
	var lookup CustomerLookup
	if err := json.Unmarshal(out.Body, &lookup); err != nil {
		out.Kind = OutcomeUnexpectedStatus
		out.Err = fmt.Errorf("scheduling: decode customer lookup: %w", err)
		return CustomerLookup{}, out
	}
	return lookup, out
}

// CreateAppointment books a pickup for the phone in req. Notes default to the
// chatbot marker when empty.
func (c *Client) CreateAppointment(ctx context.Context, req CreateRequest) Outcome {
	if req.Notes == "" {
		req.Notes = createNotes
	}
	return c.Do(ctx, http.MethodPost, "agendamentos/telefone", req)
}

// RescheduleAppointment moves the pending pickup registered under phone.
func (c *Client) RescheduleAppointment(ctx context.Context, phone string, req RescheduleRequest) Outcome {
	if req.Notes == "" {
		req.Notes = rescheduleNotes
	}
	return c.Do(ctx, http.MethodPut, "agendamentos/telefone/"+url.PathEscape(phone), req)
}

// CancelAppointment removes the pending pickup registered under phone.
func (c *Client) CancelAppointment(ctx context.Context, phone string) Outcome {
	return c.Do(ctx, http.MethodDelete, "agendamentos/telefone/"+url.PathEscape(phone), nil)
}

// Do issues one call against path (relative to the base URL) under the
// client's timeout and classifies the result.
func (c *Client) Do(ctx context.Context, method, path string, body any) Outcome {
	ctx, span := tracer.Start(ctx, "scheduling.backend."+strings.ToLower(method), trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.String("http.method", method))

	start := time.Now()
	out := c.do(ctx, method, path, body)
	c.metrics.ObserveBackendCall(method, string(out.Kind), time.Since(start).Seconds())

	span.SetAttributes(
		attribute.String("scheduling.outcome", string(out.Kind)),
		attribute.Int("http.status_code", out.StatusCode),
	)
	if out.Err != nil {
		span.RecordError(out.Err)
		span.SetStatus(codes.Error, string(out.Kind))
	}
	return out
}

func (c *Client) do(ctx context.Context, method, path string, body any) Outcome {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return Outcome{Kind: OutcomeInvalidRequest, Err: fmt.Errorf("scheduling: marshal request: %w", err)}
		}
		bodyReader = bytes.NewReader(payload)
	}

	endpoint := c.baseURL + "/" + strings.TrimLeft(path, "/")
	req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return Outcome{Kind: OutcomeInvalidRequest, Err: fmt.Errorf("scheduling: build request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.transportFailure(method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.transportFailure(method, path, err)
	}

	out := Outcome{StatusCode: resp.StatusCode, Body: respBody}
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode <= 299:
		out.Kind = OutcomeOK
		return out
	case resp.StatusCode == http.StatusNotFound:
		out.Kind = OutcomeNotFound
	case resp.StatusCode >= 400 && resp.StatusCode <= 499:
		out.Kind = OutcomeClientError
	default:
		out.Kind = OutcomeUnexpectedStatus
	}
	c.logger.Warn("scheduling backend non-2xx response",
		"method", method,
		"status", resp.StatusCode,
		"body", truncate(string(respBody), maxLoggedBody),
	)
	return out
}

func (c *Client) transportFailure(method, path string, err error) Outcome {
	kind := OutcomeConnectionError
	if isTimeout(err) {
		kind = OutcomeTimeout
	}
	c.logger.Error("scheduling backend call failed",
		"method", method,
		"kind", string(kind),
		"error", err,
	)
	return Outcome{Kind: kind, Err: fmt.Errorf("scheduling: %s %s: %w", method, routeOf(path), err)}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// routeOf names the route template that path was built from.
func routeOf(path string) string {
	if strings.HasPrefix(path, "agendamentos/telefone/") {
		return "agendamentos/telefone/{phone}"
	}
	if strings.HasPrefix(path, "clientes/consulta-cliente-telefone/") {
		return "clientes/consulta-cliente-telefone/{phone}"
	}
	return path
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
