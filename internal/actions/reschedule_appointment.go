package actions

import (
	"context"
	"fmt"

	"github.com/wolfman30/coleta-bot/internal/scheduling"
)

// RescheduleAppointment moves the sender's pending pickup to nova_data/novo_turno.
type RescheduleAppointment struct {
	base
}

func NewRescheduleAppointment(deps Deps) *RescheduleAppointment {
	return &RescheduleAppointment{base: newBase(deps)}
}

func (a *RescheduleAppointment) Name() string { return "action_remarcar_coleta" }

func (a *RescheduleAppointment) Run(ctx context.Context, d Dispatcher, t Tracker) []SlotSet {
	date := t.SlotString(SlotNewDate)
	rawShift := t.SlotString(SlotNewShift)
	if date == "" || rawShift == "" {
		a.finish(ctx, a.Name(), t, outcomeSkipped, nil)
		utterText(d, msgRescheduleMissingSlots)
		return nil
	}
	shift, _ := scheduling.ParseShift(rawShift)

	out := a.deps.Backend.RescheduleAppointment(ctx, t.SenderID, scheduling.RescheduleRequest{
		ScheduledDate:  date,
		ScheduledShift: shift,
	})
	a.finish(ctx, a.Name(), t, string(out.Kind), &out)

	switch out.Kind {
	case scheduling.OutcomeOK:
		utterText(d, fmt.Sprintf(msgRescheduleSucceeded, date, shift))
		return append(setMirror(date, string(shift)), clearPending()...)

	case scheduling.OutcomeNotFound:
		utterText(d, msgRescheduleNotFound)
		return nil

	case scheduling.OutcomeTimeout:
		utterText(d, msgRescheduleTimeout)
		return nil

	case scheduling.OutcomeConnectionError:
		utterText(d, msgConnectionError)
		return nil

	case scheduling.OutcomeClientError:
		utterText(d, msgRescheduleFailed)
		return clearPending()

	case scheduling.OutcomeUnexpectedStatus:
		utterText(d, msgRescheduleFailed)
		return nil

	default:
		utterText(d, fmt.Sprintf(msgRescheduleUnexpected, out.Detail()))
		return nil
	}
}
