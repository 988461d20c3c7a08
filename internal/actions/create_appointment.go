package actions

import (
	"context"
	"fmt"

	"github.com/wolfman30/coleta-bot/internal/scheduling"
)

// CreateAppointment books a pickup from the pending nova_data/novo_turno slots.
type CreateAppointment struct {
	base
}

func NewCreateAppointment(deps Deps) *CreateAppointment {
	return &CreateAppointment{base: newBase(deps)}
}

func (a *CreateAppointment) Name() string { return "action_agendar_coleta" }

func (a *CreateAppointment) Run(ctx context.Context, d Dispatcher, t Tracker) []SlotSet {
	date := t.SlotString(SlotNewDate)
	rawShift := t.SlotString(SlotNewShift)
	if date == "" || rawShift == "" {
		a.finish(ctx, a.Name(), t, outcomeSkipped, nil)
		utterText(d, msgCreateMissingSlots)
		return nil
	}
	shift, _ := scheduling.ParseShift(rawShift)

	out := a.deps.Backend.CreateAppointment(ctx, scheduling.CreateRequest{
		Phone:          t.SenderID,
		ScheduledDate:  date,
		ScheduledShift: shift,
		CustomerID:     t.SlotInt(SlotCustomerID),
		UserID:         a.deps.ChatbotUserID,
	})
	a.finish(ctx, a.Name(), t, string(out.Kind), &out)

	switch out.Kind {
	case scheduling.OutcomeOK:
		utterText(d, fmt.Sprintf(msgCreateSucceeded, date, shift))
		return append(setMirror(date, string(shift)), clearPending()...)

	case scheduling.OutcomeTimeout:
		// Pending slots stay so the user can retry the same request.
		utterText(d, msgCreateTimeout)
		return nil

	case scheduling.OutcomeConnectionError:
		utterText(d, msgConnectionError)
		return nil

	case scheduling.OutcomeClientError, scheduling.OutcomeNotFound:
		// The backend rejected this date/shift; drop it so it cannot resurface.
		utterText(d, fmt.Sprintf(msgCreateFailed, scheduling.ParseErrorBody(out.Body).Message))
		return clearPending()

	default:
		utterText(d, fmt.Sprintf(msgCreateFailed, scheduling.ParseErrorBody(out.Body).Message))
		return nil
	}
}
