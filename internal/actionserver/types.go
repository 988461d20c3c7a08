package actionserver

import "encoding/json"

// Request is the action-server call the dialogue engine makes for each custom action.
type Request struct {
	NextAction string          `json:"next_action"`
	SenderID   string          `json:"sender_id"`
	Tracker    TrackerState    `json:"tracker"`
	Domain     json.RawMessage `json:"domain,omitempty"`
	Version    string          `json:"version,omitempty"`
}

// TrackerState is the part of the engine's tracker the actions read.
type TrackerState struct {
	SenderID string         `json:"sender_id"`
	Slots    map[string]any `json:"slots"`
}

// Response carries the slot events and bot messages produced by an action.
type Response struct {
	Events    []Event          `json:"events"`
	Responses []map[string]any `json:"responses"`
}

// Event is a tracker event. Only slot events are produced.
type Event struct {
	Event     string   `json:"event"`
	Timestamp *float64 `json:"timestamp"`
	Name      string   `json:"name"`
	Value     any      `json:"value"`
}

// ErrorResponse is returned when the requested action is not registered.
type ErrorResponse struct {
	Error      string `json:"error"`
	ActionName string `json:"action_name,omitempty"`
}

// ActionInfo describes one registered action.
type ActionInfo struct {
	Name string `json:"name"`
}
