package domain

import "fmt"

// JobState is a validated, string-backed value object for a job's lifecycle
// state. It is a free-standing type, not a method set bolted onto an
// entity-framework base class.
type JobState string

const (
	StateNew        JobState = "NEW"
	StatePending    JobState = "PENDING"
	StateRunning    JobState = "RUNNING"
	StateFinished   JobState = "FINISHED"
	StateFailed     JobState = "FAILED"
	StateTerminated JobState = "TERMINATED"
	StateIncomplete JobState = "INCOMPLETE"
	StateCanceled   JobState = "CANCELED"
)

// NewJobState validates and returns a JobState, rejecting anything outside
// the fixed lifecycle vocabulary.
func NewJobState(s string) (JobState, error) {
	state := JobState(s)
	switch state {
	case StateNew, StatePending, StateRunning, StateFinished, StateFailed,
		StateTerminated, StateIncomplete, StateCanceled:
		return state, nil
	default:
		return "", fmt.Errorf("%w: unknown job state %q", ErrInvalidState, s)
	}
}

// String implements fmt.Stringer.
func (s JobState) String() string {
	return string(s)
}
