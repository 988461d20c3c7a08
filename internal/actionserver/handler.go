// Package actionserver exposes the appointment actions over the dialogue
// engine's action-server protocol.
package actionserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/coleta-bot/internal/actions"
	"github.com/wolfman30/coleta-bot/internal/audit"
	"github.com/wolfman30/coleta-bot/pkg/logging"
)

const (
	maxRequestBody = 1 << 20
	maxAuditLimit  = 100
)

// AuditReader lists recorded action runs for a sender.
type AuditReader interface {
	Recent(ctx context.Context, senderID string, limit int) ([]audit.Entry, error)
}

// Handler serves the action-server endpoints.
type Handler struct {
	registry *actions.Registry
	audit    AuditReader
	logger   *logging.Logger
}

// Option customizes a Handler.
type Option func(*Handler)

// WithAuditReader enables GET /audit/{sender}.
func WithAuditReader(r AuditReader) Option {
	return func(h *Handler) { h.audit = r }
}

func NewHandler(registry *actions.Registry, logger *logging.Logger, opts ...Option) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	h := &Handler{registry: registry, logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes mounts POST /webhook, GET /actions and, with an audit reader, GET /audit/{sender}.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/webhook", h.Webhook)
	r.Get("/actions", h.ListActions)
	if h.audit != nil {
		r.Get("/audit/{sender}", h.AuditTrail)
	}
	return r
}

// Webhook runs the requested action and returns its events and replies.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		h.logger.Warn("failed to decode action request", "error", err)
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	if req.NextAction == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "next_action is required"})
		return
	}

	action, ok := h.registry.Get(req.NextAction)
	if !ok {
		h.logger.Warn("unknown action requested", "action", req.NextAction)
		writeJSON(w, http.StatusNotFound, ErrorResponse{
			Error:      fmt.Sprintf("No registered action found for name '%s'.", req.NextAction),
			ActionName: req.NextAction,
		})
		return
	}

	senderID := req.Tracker.SenderID
	if senderID == "" {
		senderID = req.SenderID
	}
	tracker := actions.Tracker{SenderID: senderID, Slots: req.Tracker.Slots}

	dispatcher := &actions.CollectingDispatcher{}
	sets := action.Run(r.Context(), dispatcher, tracker)

	writeJSON(w, http.StatusOK, Response{
		Events:    slotEvents(sets),
		Responses: encodeMessages(dispatcher.Messages),
	})
}

// ListActions returns the registered action names.
func (h *Handler) ListActions(w http.ResponseWriter, r *http.Request) {
	names := h.registry.Names()
	out := make([]ActionInfo, 0, len(names))
	for _, name := range names {
		out = append(out, ActionInfo{Name: name})
	}
	writeJSON(w, http.StatusOK, out)
}

// AuditTrail returns the latest recorded runs for a sender, newest first.
// The optional limit query parameter is capped at 100.
func (h *Handler) AuditTrail(w http.ResponseWriter, r *http.Request) {
	sender := chi.URLParam(r, "sender")
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = min(n, maxAuditLimit)
	}

	entries, err := h.audit.Recent(r.Context(), sender, limit)
	if err != nil {
		h.logger.Error("failed to read audit trail", "sender_id", logging.MaskPhone(sender), "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "audit trail unavailable"})
		return
	}
	if entries == nil {
		entries = []audit.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func slotEvents(sets []actions.SlotSet) []Event {
	events := make([]Event, 0, len(sets))
	for _, s := range sets {
		events = append(events, Event{Event: "slot", Name: s.Name, Value: s.Value})
	}
	return events
}

func encodeMessages(msgs []actions.Message) []map[string]any {
	out := make([]map[string]any, 0, len(msgs))
	for _, m := range msgs {
		entry := make(map[string]any, len(m.Args)+2)
		for k, v := range m.Args {
			entry[k] = v
		}
		if m.Template != "" {
			entry["response"] = m.Template
			entry["template"] = m.Template
		} else {
			entry["text"] = m.Text
		}
		out = append(out, entry)
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
