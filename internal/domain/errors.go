// Package domain holds the job queue's core entities: jobs, dependency
// edges, related-entity links, and the sentinel errors returned by the
// store and job manager.
package domain

import "errors"

// Sentinel errors returned by the store and job manager. Callers should
// use errors.Is against these, never string comparison.
var (
	// ErrNotFound indicates the requested job (or related entity) does not exist.
	ErrNotFound = errors.New("job not found")

	// ErrInvalidArgument indicates a malformed related-entity identifier or
	// other caller-supplied value that fails validation before any storage
	// round-trip.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidState indicates close was called with a non-terminal state,
	// or a state transition was rejected by the state machine.
	ErrInvalidState = errors.New("invalid job state transition")

	// ErrConflict indicates getOrCreate lost the leader-election race but
	// could not re-fetch the winning row. This should be impossible under
	// normal operation; it surfaces storage corruption or a broken id
	// sequence.
	ErrConflict = errors.New("job creation conflict")

	// ErrStorage wraps an underlying database error. Transactional
	// operations always roll back before returning it.
	ErrStorage = errors.New("storage error")

	// ErrSerialization indicates an opaque column (args, related-entity id)
	// failed to decode.
	ErrSerialization = errors.New("serialization error")
)
