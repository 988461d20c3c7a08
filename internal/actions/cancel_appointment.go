package actions

import (
	"context"
	"fmt"

	"github.com/wolfman30/coleta-bot/internal/scheduling"
)

// CancelAppointment cancels the pickup the session mirror believes is active.
type CancelAppointment struct {
	base
}

func NewCancelAppointment(deps Deps) *CancelAppointment {
	return &CancelAppointment{base: newBase(deps)}
}

func (a *CancelAppointment) Name() string { return "action_cancelar_coleta" }

func (a *CancelAppointment) Run(ctx context.Context, d Dispatcher, t Tracker) []SlotSet {
	date := t.SlotString(SlotScheduledDate)
	shift := t.SlotString(SlotScheduledShift)
	if date == "" || shift == "" {
		a.finish(ctx, a.Name(), t, outcomeSkipped, nil)
		utterText(d, msgCancelNoActive)
		return nil
	}

	out := a.deps.Backend.CancelAppointment(ctx, t.SenderID)
	a.finish(ctx, a.Name(), t, string(out.Kind), &out)

	switch out.Kind {
	case scheduling.OutcomeOK:
		utterText(d, fmt.Sprintf(msgCancelSucceeded, date, shift))
		return clearMirror()

	case scheduling.OutcomeNotFound:
		// The backend has nothing pending, so the mirror is stale.
		utterText(d, msgCancelNotFound)
		return clearMirror()

	case scheduling.OutcomeTimeout, scheduling.OutcomeConnectionError:
		utterText(d, msgConnectionError)
		return nil

	default:
		utterText(d, msgCancelFailed)
		return nil
	}
}
