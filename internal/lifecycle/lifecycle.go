// Package lifecycle guards inspection status changes with a small state machine.
package lifecycle

import (
	"errors"
	"fmt"

	"github.com/felixgeelhaar/statekit"

	"github.com/abrezinsky/revista/internal/models"
	"github.com/abrezinsky/revista/pkg/scoring"
)

// Event is a requested status change
type Event string

const (
	submit  = "submit"
	certify = "certify"
	reopen  = "reopen"
	cancel  = "cancel"
)

const (
	EventSubmit  Event = submit
	EventCertify Event = certify
	EventReopen  Event = reopen
	EventCancel  Event = cancel
)

// Events lists every event in display order
func Events() []Event {
	return []Event{EventSubmit, EventCertify, EventReopen, EventCancel}
}

// ErrNotAllowed is wrapped by Fire when the event does not apply to the current status
var ErrNotAllowed = errors.New("transition not allowed")

// inspectionContext is what the guards look at
type inspectionContext struct {
	Complete bool
	Rejected bool
}

// Machine drives one inspection's status
type Machine struct {
	interpreter *statekit.Interpreter[inspectionContext]
}

// New builds a machine positioned at status, guarded by the inspection's current result
func New(status string, result scoring.Result) (*Machine, error) {
	switch status {
	case models.StatusDraft, models.StatusSubmitted, models.StatusCertified, models.StatusCancelled:
	default:
		return nil, fmt.Errorf("unknown inspection status %q", status)
	}

	builder := statekit.NewMachine[inspectionContext]("inspection").
		WithInitial(statekit.StateID(status)).
		WithContext(inspectionContext{
			Complete: result.Complete,
			Rejected: result.Rejected,
		}).
		// A rejected inspection is final as soon as it is recorded
		WithGuard("decided", func(ctx inspectionContext, e statekit.Event) bool {
			return ctx.Complete || ctx.Rejected
		}).
		WithGuard("certifiable", func(ctx inspectionContext, e statekit.Event) bool {
			return !ctx.Rejected
		})

	builder.State(models.StatusDraft).
		On(submit).Target(models.StatusSubmitted).Guard("decided").
		On(cancel).Target(models.StatusCancelled).
		Done()

	builder.State(models.StatusSubmitted).
		On(certify).Target(models.StatusCertified).Guard("certifiable").
		On(reopen).Target(models.StatusDraft).
		On(cancel).Target(models.StatusCancelled).
		Done()

	builder.State(models.StatusCertified).Done()
	builder.State(models.StatusCancelled).Done()

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build inspection state machine: %w", err)
	}

	interpreter := statekit.NewInterpreter(machine)
	interpreter.Start()

	return &Machine{interpreter: interpreter}, nil
}

// Status returns the current status
func (m *Machine) Status() string {
	return string(m.interpreter.State().Value)
}

// Fire sends the event. A rejected transition leaves the status unchanged and returns ErrNotAllowed.
func (m *Machine) Fire(event Event) error {
	before := m.Status()
	m.interpreter.Send(statekit.Event{Type: statekit.EventType(event)})
	if m.Status() != before {
		return nil
	}
	return fmt.Errorf("%w: cannot %s an inspection that is %s", ErrNotAllowed, event, before)
}

// Transition is a one-shot Fire from status
func Transition(status string, result scoring.Result, event Event) (string, error) {
	m, err := New(status, result)
	if err != nil {
		return status, err
	}
	if err := m.Fire(event); err != nil {
		return status, err
	}
	return m.Status(), nil
}

// Allowed lists the events that would currently succeed from status
func Allowed(status string, result scoring.Result) []Event {
	var allowed []Event
	for _, e := range Events() {
		if _, err := Transition(status, result, e); err == nil {
			allowed = append(allowed, e)
		}
	}
	return allowed
}
