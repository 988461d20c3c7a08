// Package relay bridges WhatsApp messages to the dialogue engine and sends
// the engine's text replies back to the customer.
package relay

import (
	"context"
	"strings"
	"time"

	"github.com/wolfman30/coleta-bot/internal/channels/whatsapp"
	"github.com/wolfman30/coleta-bot/internal/dialogue"
	"github.com/wolfman30/coleta-bot/internal/observability/metrics"
	"github.com/wolfman30/coleta-bot/pkg/logging"
)

// Inbound outcome labels.
const (
	statusForwarded  = "forwarded"
	statusIncomplete = "incomplete"
	statusDuplicate  = "duplicate"
	statusFailed     = "dialogue_error"
)

// Dialogue forwards one user message to the engine.
type Dialogue interface {
	Send(ctx context.Context, sender, message string) ([]dialogue.Reply, error)
}

// Sender delivers text back to the channel.
type Sender interface {
	SendText(ctx context.Context, to, body string) (*whatsapp.SendResponse, error)
}

// Deduper reports whether a channel message id is seen for the first time.
type Deduper interface {
	FirstSeen(ctx context.Context, messageID string) (bool, error)
}

// Relay moves messages between the channel and the dialogue engine.
type Relay struct {
	dialogue Dialogue
	sender   Sender
	deduper  Deduper
	metrics  *metrics.RelayMetrics
	logger   *logging.Logger
}

// Option customizes a Relay.
type Option func(*Relay)

// WithDeduper drops redelivered message ids. Without it every delivery is forwarded.
func WithDeduper(d Deduper) Option {
	return func(r *Relay) { r.deduper = d }
}

// WithMetrics records relay counters.
func WithMetrics(m *metrics.RelayMetrics) Option {
	return func(r *Relay) { r.metrics = m }
}

func New(d Dialogue, s Sender, logger *logging.Logger, opts ...Option) *Relay {
	if logger == nil {
		logger = logging.Default()
	}
	r := &Relay{dialogue: d, sender: s, logger: logger}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// HandleMessage forwards msg and relays every text reply in order. Failures
// are logged and counted; they never reach the webhook response.
func (r *Relay) HandleMessage(ctx context.Context, msg whatsapp.InboundMessage) {
	sender := strings.TrimSpace(msg.From)
	body := strings.TrimSpace(msg.Body)
	if sender == "" || body == "" {
		r.logger.Warn("ignoring incomplete or non-text message",
			"message_id", msg.MessageID,
			"type", msg.Type,
			"sender_id", logging.MaskPhone(sender),
		)
		r.metrics.ObserveInbound(statusIncomplete)
		return
	}

	if r.deduper != nil && msg.MessageID != "" {
		first, err := r.deduper.FirstSeen(ctx, msg.MessageID)
		if err != nil {
			r.logger.Warn("dedup check failed, forwarding anyway", "message_id", msg.MessageID, "error", err)
		} else if !first {
			r.logger.Info("dropping redelivered message", "message_id", msg.MessageID)
			r.metrics.ObserveInbound(statusDuplicate)
			return
		}
	}

	r.logger.Debug("inbound message", "sender_id", sender, "body", body)

	start := time.Now()
	replies, err := r.dialogue.Send(ctx, sender, body)
	r.metrics.ObserveDialogueLatency(time.Since(start).Seconds())
	if err != nil {
		r.logger.Error("failed to forward message to dialogue engine",
			"sender_id", logging.MaskPhone(sender),
			"message_id", msg.MessageID,
			"error", err,
		)
		r.metrics.ObserveInbound(statusFailed)
		return
	}
	r.metrics.ObserveInbound(statusForwarded)
	r.logger.Info("message forwarded",
		"sender_id", logging.MaskPhone(sender),
		"message_id", msg.MessageID,
		"replies", len(replies),
	)

	for _, reply := range replies {
		if reply.Text == "" {
			continue
		}
		if _, err := r.sender.SendText(ctx, sender, reply.Text); err != nil {
			r.logger.Error("failed to send reply",
				"sender_id", logging.MaskPhone(sender),
				"error", err,
			)
			r.metrics.ObserveOutbound("error")
			continue
		}
		r.metrics.ObserveOutbound("sent")
	}
}
