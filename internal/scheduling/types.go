package scheduling

import (
	"encoding/json"
	"strings"
)

// Shift is the part of day a pickup is scheduled for.
type Shift string

const (
	ShiftMorning   Shift = "Manhã"
	ShiftAfternoon Shift = "Tarde"
	ShiftNight     Shift = "Noite"
)

// ParseShift maps free-form user input onto a known shift. Unknown values are
// returned trimmed with ok=false so the backend can decide.
func ParseShift(value string) (Shift, bool) {
	trimmed := strings.TrimSpace(value)
	switch strings.ToLower(trimmed) {
	case "manhã", "manha", "de manhã", "de manha":
		return ShiftMorning, true
	case "tarde", "à tarde", "a tarde":
		return ShiftAfternoon, true
	case "noite", "à noite", "a noite":
		return ShiftNight, true
	}
	return Shift(trimmed), false
}

// Appointment is one pending pickup as returned by the customer lookup.
type Appointment struct {
	ScheduledDate  string `json:"dia_agendado"`
	ScheduledShift string `json:"turno_agendado"`
}

// CustomerLookup is the 200 body of GET clientes/consulta-cliente-telefone/{phone}.
type CustomerLookup struct {
	Name                 string        `json:"nome_cliente"`
	CustomerID           int           `json:"id_cliente"`
	HasActiveAppointment bool          `json:"tem_agendamento"`
	Appointments         []Appointment `json:"agendamentos"`
}

// ActiveAppointment returns the canonical active appointment. Backend ordering
// is trusted: the first entry wins.
func (c CustomerLookup) ActiveAppointment() (Appointment, bool) {
	if !c.HasActiveAppointment || len(c.Appointments) == 0 {
		return Appointment{}, false
	}
	return c.Appointments[0], true
}

// CreateRequest is the body of POST agendamentos/telefone.
type CreateRequest struct {
	Phone          string `json:"telefone_cliente"`
	ScheduledDate  string `json:"dia_agendado"`
	ScheduledShift Shift  `json:"turno_agendado"`
	CustomerID     int    `json:"id_cliente,omitempty"`
	UserID         int    `json:"id_usuario"`
	Notes          string `json:"observacoes"`
}

// RescheduleRequest is the body of PUT agendamentos/telefone/{phone}.
type RescheduleRequest struct {
	ScheduledDate  string `json:"dia_agendado"`
	ScheduledShift Shift  `json:"turno_agendado"`
	Notes          string `json:"observacoes"`
}

// UnknownErrorMessage is surfaced when a failure body carries no error field.
const UnknownErrorMessage = "Erro desconhecido"

// ErrorBody is the result of reading a non-2xx response body. Parsed is true
// only when the body was JSON carrying an "error" or "erro" key.
type ErrorBody struct {
	Message string
	Parsed  bool
}

// ParseErrorBody extracts the upstream error message from a failure body.
func ParseErrorBody(body []byte) ErrorBody {
	var wire struct {
		Error string `json:"error"`
		Erro  string `json:"erro"`
	}
	if len(body) == 0 || json.Unmarshal(body, &wire) != nil {
		return ErrorBody{Message: UnknownErrorMessage}
	}
	if msg := strings.TrimSpace(wire.Error); msg != "" {
		return ErrorBody{Message: msg, Parsed: true}
	}
	if msg := strings.TrimSpace(wire.Erro); msg != "" {
		return ErrorBody{Message: msg, Parsed: true}
	}
	return ErrorBody{Message: UnknownErrorMessage}
}
