// Package statemachine holds the free-standing transition rules for
// domain.JobState: no entity carries this logic as a method, mirroring
// the teacher's preference for small, independently testable predicate
// functions over a fat aggregate.
package statemachine

import "github.com/levuro/jobqueue/internal/domain"

// IsFinal reports whether state has no further transitions.
func IsFinal(s domain.JobState) bool {
	switch s {
	case domain.StateFinished, domain.StateFailed, domain.StateTerminated,
		domain.StateIncomplete, domain.StateCanceled:
		return true
	default:
		return false
	}
}

// IsClosedNonSuccessful reports whether state is a final state other
// than FINISHED — the set that drives dependent-job cascading closes.
func IsClosedNonSuccessful(s domain.JobState) bool {
	switch s {
	case domain.StateFailed, domain.StateTerminated, domain.StateIncomplete, domain.StateCanceled:
		return true
	default:
		return false
	}
}

// IsStartable reports whether a job in state s is eligible to be
// claimed for execution.
func IsStartable(s domain.JobState) bool {
	return s == domain.StatePending
}
