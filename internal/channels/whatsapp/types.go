package whatsapp

// WebhookEvent is the top-level payload Meta posts for WhatsApp Business accounts.
type WebhookEvent struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

// Entry groups the changes for one business account.
type Entry struct {
	ID      string   `json:"id"`
	Changes []Change `json:"changes"`
}

// Change is one field update; inbound messages arrive under field "messages".
type Change struct {
	Field string `json:"field"`
	Value Value  `json:"value"`
}

// Value carries the messages and delivery statuses of a change.
type Value struct {
	MessagingProduct string    `json:"messaging_product"`
	Metadata         Metadata  `json:"metadata"`
	Contacts         []Contact `json:"contacts,omitempty"`
	Messages         []Message `json:"messages,omitempty"`
	Statuses         []Status  `json:"statuses,omitempty"`
}

// Metadata identifies the receiving business number.
type Metadata struct {
	DisplayPhoneNumber string `json:"display_phone_number"`
	PhoneNumberID      string `json:"phone_number_id"`
}

// Contact is the sender's profile as known to WhatsApp.
type Contact struct {
	WaID    string  `json:"wa_id"`
	Profile Profile `json:"profile"`
}

// Profile holds the sender's display name.
type Profile struct {
	Name string `json:"name"`
}

// Message is one inbound message. Text is only set for type "text".
type Message struct {
	From      string `json:"from"`
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`
	Text      *Text  `json:"text,omitempty"`
}

// Text is the body of a text message.
type Text struct {
	Body string `json:"body"`
}

// Status is a delivery receipt for a message the business sent.
type Status struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	RecipientID string `json:"recipient_id"`
}

// SendRequest is the Cloud API payload for an outbound text message.
type SendRequest struct {
	MessagingProduct string `json:"messaging_product"`
	To               string `json:"to"`
	Type             string `json:"type"`
	Text             Text   `json:"text"`
}

// SendResponse is the Cloud API answer to a send.
type SendResponse struct {
	MessagingProduct string           `json:"messaging_product"`
	Contacts         []SendContact    `json:"contacts,omitempty"`
	Messages         []SendMessageRef `json:"messages,omitempty"`
	Error            *SendError       `json:"error,omitempty"`
}

// SendContact echoes the resolved recipient.
type SendContact struct {
	Input string `json:"input"`
	WaID  string `json:"wa_id"`
}

// SendMessageRef identifies an accepted outbound message.
type SendMessageRef struct {
	ID string `json:"id"`
}

// SendError is an error returned by the Graph API.
type SendError struct {
	Message   string `json:"message"`
	Type      string `json:"type"`
	Code      int    `json:"code"`
	FBTraceID string `json:"fbtrace_id"`
}

// InboundMessage is the normalized form of one inbound message.
type InboundMessage struct {
	From      string
	MessageID string
	Type      string
	Body      string
}
