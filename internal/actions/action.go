package actions

import (
	"context"
	"sort"

	"github.com/wolfman30/coleta-bot/internal/audit"
	"github.com/wolfman30/coleta-bot/internal/observability/metrics"
	"github.com/wolfman30/coleta-bot/internal/scheduling"
	"github.com/wolfman30/coleta-bot/pkg/logging"
)

// Action is one dialogue action. Run never fails: every backend problem is
// turned into a reply, and the returned slot updates are applied by the engine.
type Action interface {
	Name() string
	Run(ctx context.Context, d Dispatcher, t Tracker) []SlotSet
}

// Backend is the scheduling API the actions depend on.
type Backend interface {
	LookupCustomer(ctx context.Context, phone string) (scheduling.CustomerLookup, scheduling.Outcome)
	CreateAppointment(ctx context.Context, req scheduling.CreateRequest) scheduling.Outcome
	RescheduleAppointment(ctx context.Context, phone string, req scheduling.RescheduleRequest) scheduling.Outcome
	CancelAppointment(ctx context.Context, phone string) scheduling.Outcome
}

// Recorder persists operator diagnostics for each run.
type Recorder interface {
	Record(ctx context.Context, e audit.Entry) error
}

// Deps are the collaborators shared by all actions.
type Deps struct {
	Backend Backend

	// ChatbotUserID is the backend user that appointments booked by the bot are attributed to.
	ChatbotUserID int

	Recorder Recorder
	Metrics  *metrics.ActionMetrics
	Logger   *logging.Logger
}

// outcomeSkipped marks runs that stopped before calling the backend.
const outcomeSkipped = "skipped"

type base struct {
	deps Deps
}

func newBase(deps Deps) base {
	if deps.Logger == nil {
		deps.Logger = logging.Default()
	}
	return base{deps: deps}
}

// finish records metrics, logs, and the audit entry for one run.
func (b base) finish(ctx context.Context, action string, t Tracker, outcome string, out *scheduling.Outcome) {
	entry := audit.Entry{
		Action:   action,
		SenderID: t.SenderID,
		Outcome:  outcome,
	}
	if out != nil {
		entry.StatusCode = out.StatusCode
		if out.Kind != scheduling.OutcomeOK {
			entry.Detail = out.Detail()
		}
	}

	b.deps.Metrics.ObserveAction(action, outcome)
	b.deps.Logger.Info("action completed",
		"action", action,
		"sender_id", logging.MaskPhone(t.SenderID),
		"outcome", outcome,
		"status", entry.StatusCode,
	)
	if entry.Detail != "" {
		b.deps.Logger.Debug("action diagnostic", "action", action, "detail", entry.Detail)
	}

	if b.deps.Recorder == nil {
		return
	}
	if err := b.deps.Recorder.Record(ctx, entry); err != nil {
		b.deps.Logger.Warn("failed to record action audit entry", "action", action, "error", err)
	}
}

// Registry maps action names to actions.
type Registry struct {
	actions map[string]Action
}

// NewRegistry registers the appointment action set.
func NewRegistry(deps Deps) *Registry {
	r := &Registry{actions: make(map[string]Action)}
	r.Register(NewCheckCustomer(deps))
	r.Register(NewCreateAppointment(deps))
	r.Register(NewRescheduleAppointment(deps))
	r.Register(NewCancelAppointment(deps))
	return r
}

// Register adds a, replacing any action with the same name.
func (r *Registry) Register(a Action) {
	r.actions[a.Name()] = a
}

// Get looks up an action by name.
func (r *Registry) Get(name string) (Action, bool) {
	a, ok := r.actions[name]
	return a, ok
}

// Names lists registered actions in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.actions))
	for name := range r.actions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
