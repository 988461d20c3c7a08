package actions

import (
	"context"

	"github.com/wolfman30/coleta-bot/internal/scheduling"
)

// CheckCustomer greets the sender according to their registration and
// pending pickup, and seeds the appointment mirror slots.
type CheckCustomer struct {
	base
}

func NewCheckCustomer(deps Deps) *CheckCustomer {
	return &CheckCustomer{base: newBase(deps)}
}

func (a *CheckCustomer) Name() string { return "action_verificar_cliente" }

func (a *CheckCustomer) Run(ctx context.Context, d Dispatcher, t Tracker) []SlotSet {
	lookup, out := a.deps.Backend.LookupCustomer(ctx, t.SenderID)
	a.finish(ctx, a.Name(), t, string(out.Kind), &out)

	switch out.Kind {
	case scheduling.OutcomeNotFound:
		utterTemplate(d, TemplateNoRegistration, nil)
		return []SlotSet{{Name: SlotHasRegistration, Value: false}}

	case scheduling.OutcomeOK:
		events := []SlotSet{
			{Name: SlotHasRegistration, Value: true},
			{Name: SlotName, Value: lookup.Name},
		}
		if lookup.CustomerID > 0 {
			events = append(events, SlotSet{Name: SlotCustomerID, Value: lookup.CustomerID})
		}
		args := map[string]any{SlotName: lookup.Name}
		if appt, ok := lookup.ActiveAppointment(); ok {
			utterTemplate(d, TemplateRegisteredWithPickup, args)
			return append(events, setMirror(appt.ScheduledDate, appt.ScheduledShift)...)
		}
		utterTemplate(d, TemplateRegisteredWithoutPickup, args)
		return append(events, clearMirror()...)

	case scheduling.OutcomeTimeout, scheduling.OutcomeConnectionError:
		utterText(d, msgConnectionError)
		return nil

	default:
		utterText(d, msgCheckFailed)
		return nil
	}
}
