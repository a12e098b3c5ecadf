// Package events implements the small synchronous dispatcher the job
// manager uses to notify listeners of state transitions, and to let a
// listener veto or redirect the transition before it is persisted.
package events

import (
	"context"

	"github.com/levuro/jobqueue/internal/domain"
)

// StateChangeEvent describes a job about to move from OldState to
// NewState. A Listener may mutate NewState before returning — the
// dispatcher's caller re-reads it after Dispatch returns — which is how
// the close() cascade lets a listener downgrade e.g. FINISHED to
// INCOMPLETE.
type StateChangeEvent struct {
	Job      *domain.Job
	OldState domain.JobState
	NewState domain.JobState
}

// Listener reacts to a state change. Returning an error aborts the
// transition; the caller is expected to surface it to its own caller
// rather than persist anything.
type Listener func(ctx context.Context, event *StateChangeEvent) error

// Dispatcher fans a StateChangeEvent out to every registered listener,
// in registration order.
type Dispatcher struct {
	listeners []Listener
}

// NewDispatcher returns an empty Dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// On registers a listener. Not safe to call concurrently with Dispatch.
func (d *Dispatcher) On(l Listener) {
	d.listeners = append(d.listeners, l)
}

// Dispatch invokes every registered listener in order, stopping at the
// first error.
func (d *Dispatcher) Dispatch(ctx context.Context, event *StateChangeEvent) error {
	for _, l := range d.listeners {
		if err := l(ctx, event); err != nil {
			return err
		}
	}
	return nil
}
