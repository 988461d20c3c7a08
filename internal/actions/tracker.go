package actions

import (
	"fmt"
	"strconv"
	"strings"
)

// Slot names shared with the dialogue domain.
const (
	SlotHasRegistration   = "tem_cadastro"
	SlotName              = "nome"
	SlotCustomerID        = "id_cliente"
	SlotActiveAppointment = "agendamento_ativo"
	SlotScheduledDate     = "data_agendada"
	SlotScheduledShift    = "turno_agendado"
	SlotNewDate           = "nova_data"
	SlotNewShift          = "novo_turno"
)

// Tracker is the read-only view of the dialogue session an action runs in.
// SenderID is the customer's phone number.
type Tracker struct {
	SenderID string
	Slots    map[string]any
}

// SlotString returns the slot as trimmed text, or "" when it is unset.
func (t Tracker) SlotString(name string) string {
	v, ok := t.Slots[name]
	if !ok || v == nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case bool:
		if !val {
			return ""
		}
		return "true"
	default:
		return strings.TrimSpace(fmt.Sprint(val))
	}
}

// SlotInt returns the slot as an integer, or 0 when unset or not numeric.
// JSON numbers arrive as float64.
func (t Tracker) SlotInt(name string) int {
	switch val := t.Slots[name].(type) {
	case int:
		return val
	case int64:
		return int(val)
	case float64:
		return int(val)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return 0
		}
		return n
	}
	return 0
}

// SlotSet instructs the dialogue engine to set Name to Value. A nil Value clears the slot.
type SlotSet struct {
	Name  string
	Value any
}

func setMirror(date, shift string) []SlotSet {
	return []SlotSet{
		{Name: SlotActiveAppointment, Value: true},
		{Name: SlotScheduledDate, Value: date},
		{Name: SlotScheduledShift, Value: shift},
	}
}

func clearMirror() []SlotSet {
	return []SlotSet{
		{Name: SlotActiveAppointment, Value: false},
		{Name: SlotScheduledDate, Value: nil},
		{Name: SlotScheduledShift, Value: nil},
	}
}

func clearPending() []SlotSet {
	return []SlotSet{
		{Name: SlotNewDate, Value: nil},
		{Name: SlotNewShift, Value: nil},
	}
}

// Message is one reply: either a named template rendered by the dialogue
// engine with Args, or literal Text.
type Message struct {
	Template string
	Text     string
	Args     map[string]any
}

// Dispatcher receives an action's reply.
type Dispatcher interface {
	Utter(Message)
}

// CollectingDispatcher buffers replies for the action server response.
type CollectingDispatcher struct {
	Messages []Message
}

// Utter appends m.
func (d *CollectingDispatcher) Utter(m Message) {
	d.Messages = append(d.Messages, m)
}

func utterText(d Dispatcher, text string) {
	d.Utter(Message{Text: text})
}

func utterTemplate(d Dispatcher, template string, args map[string]any) {
	d.Utter(Message{Template: template, Args: args})
}
