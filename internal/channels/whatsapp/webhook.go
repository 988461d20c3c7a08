package whatsapp

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/wolfman30/coleta-bot/pkg/logging"
)

const maxWebhookBody = 1 << 20

// MessageFunc receives each inbound message of a webhook delivery.
type MessageFunc func(ctx context.Context, msg InboundMessage)

// WebhookHandler serves the WhatsApp Cloud API webhook.
type WebhookHandler struct {
	verifyToken string
	appSecret   string
	onMessage   MessageFunc
	logger      *logging.Logger
}

// NewWebhookHandler creates a webhook handler. When appSecret is empty the
// X-Hub-Signature-256 header is not checked.
func NewWebhookHandler(verifyToken, appSecret string, onMessage MessageFunc, logger *logging.Logger) *WebhookHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &WebhookHandler{
		verifyToken: verifyToken,
		appSecret:   appSecret,
		onMessage:   onMessage,
		logger:      logger,
	}
}

// HandleVerification answers Meta's GET subscription challenge.
func (h *WebhookHandler) HandleVerification(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode := q.Get("hub.mode")
	token := q.Get("hub.verify_token")

	if h.verifyToken != "" && token == h.verifyToken && (mode == "" || mode == "subscribe") {
		h.logger.Info("webhook verified")
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, q.Get("hub.challenge"))
		return
	}

	h.logger.Warn("webhook verification failed", "mode", mode)
	http.Error(w, "Token inválido", http.StatusForbidden)
}

// HandleInbound acknowledges a POST delivery and then hands every message to
// the callback in payload order.
func (h *WebhookHandler) HandleInbound(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if h.appSecret != "" && !VerifySignature(h.appSecret, body, r.Header.Get("X-Hub-Signature-256")) {
		h.logger.Warn("webhook signature mismatch")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var event WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		h.logger.Warn("malformed webhook payload", "error", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	messages := ParseWebhookEvent(event)
	h.logger.Debug("webhook payload received", "messages", len(messages), "payload", string(body))

	// Respond 200 before processing to avoid Meta retries.
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}

	if h.onMessage == nil {
		return
	}
	ctx := context.WithoutCancel(r.Context())
	for _, msg := range messages {
		h.onMessage(ctx, msg)
	}
}

// ParseWebhookEvent flattens entry[].changes[].value.messages[] into
// InboundMessages. Non-text messages are kept with an empty Body.
func ParseWebhookEvent(event WebhookEvent) []InboundMessage {
	var messages []InboundMessage
	for _, entry := range event.Entry {
		for _, change := range entry.Changes {
			for _, m := range change.Value.Messages {
				parsed := InboundMessage{
					From:      m.From,
					MessageID: m.ID,
					Type:      m.Type,
				}
				if m.Text != nil {
					parsed.Body = m.Text.Body
				}
				messages = append(messages, parsed)
			}
		}
	}
	return messages
}

// VerifySignature checks an X-Hub-Signature-256 header ("sha256=<hex>").
func VerifySignature(appSecret string, body []byte, signature string) bool {
	if appSecret == "" || signature == "" {
		return false
	}

	const prefix = "sha256="
	if len(signature) <= len(prefix) || signature[:len(prefix)] != prefix {
		return false
	}

	mac := hmac.New(sha256.New, []byte(appSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature[len(prefix):]))
}
