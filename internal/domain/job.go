package domain

import "time"

// Job is the primary entity: a durable record of a command invocation to be
// executed once. Ownership of a Job lives in the database; an in-process
// Job value is a short-lived view and must be re-fetched after any
// transaction boundary it did not itself commit.
type Job struct {
	ID      int64
	Command string
	Args    []string
	State   JobState
	Queue   string

	// Priority ranks pending jobs for claimNext; lower value runs first.
	Priority int

	CreatedAt    time.Time
	ExecuteAfter time.Time
	StartedAt    *time.Time
	CheckedAt    *time.Time
	ClosedAt     *time.Time

	// MaxRuntime is a hint to the worker loop; zero means unlimited. The
	// core never enforces it directly.
	MaxRuntime time.Duration

	// WorkerName is nil iff the job is unclaimed.
	WorkerName *string

	Output      *string
	ErrorOutput *string
	ExitCode    *int

	IsRetryJob bool

	// OriginalJobID is non-nil iff IsRetryJob. A retry chain never nests:
	// the original job referenced here always has IsRetryJob == false.
	OriginalJobID *int64

	// MaxRetries bounds how many retry jobs may be created from this job.
	MaxRetries int
}

// DefaultQueue is used when a submitted job does not specify one.
const DefaultQueue = "default"

// IsUnclaimed reports whether the job has no owning worker.
func (j *Job) IsUnclaimed() bool {
	return j.WorkerName == nil
}

// Dependency is a directed edge source -> dest meaning "source must finish
// FINISHED before dest may run". No self-loops; the transitive closure is
// never materialized.
type Dependency struct {
	SourceJobID int64
	DestJobID   int64
}

// RelatedEntity optionally associates a job with an external business
// object. (Class, IDJSON) is not unique across jobs.
type RelatedEntity struct {
	JobID   int64
	Class   string
	IDJSON  []byte // opaque JSON-encoded identifier
}
