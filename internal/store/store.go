// Package store defines the typed, transactional persistence contract the
// job manager, dependency graph, and cleanup runner depend on. Concrete
// implementations live in store/sql (PostgreSQL and SQLite over
// database/sql).
package store

import (
	"context"
	"time"

	"github.com/levuro/jobqueue/internal/domain"
)

// Tx is an open transaction. Callers must call exactly one of Commit or
// Rollback.
type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	// InsertJob persists a new job and assigns its ID.
	InsertJob(ctx context.Context, job *domain.Job) (int64, error)
	// UpdateJob persists all mutable fields of an already-inserted job.
	UpdateJob(ctx context.Context, job *domain.Job) error
	DeleteJob(ctx context.Context, id int64) error

	InsertDependency(ctx context.Context, dep domain.Dependency) error
	DeleteDependenciesByDest(ctx context.Context, destJobID int64) error

	InsertRelatedEntity(ctx context.Context, rel domain.RelatedEntity) error

	// RetryJobIDs returns the ids of every retry job whose originalJob is
	// originalJobID, in creation order.
	RetryJobIDs(ctx context.Context, originalJobID int64) ([]int64, error)

	// IncomingJobIDs returns the source job ids of every dependency edge
	// pointing at destJobID, read inside this transaction.
	IncomingJobIDs(ctx context.Context, destJobID int64) ([]int64, error)
	// OutgoingJobIDs returns the dest job ids of every dependency edge
	// originating at sourceJobID, read inside this transaction.
	OutgoingJobIDs(ctx context.Context, sourceJobID int64) ([]int64, error)

	// ClaimAtomic performs the single-statement conditional UPDATE that
	// grants exclusive execution rights: UPDATE jobs SET workerName = ?
	// WHERE id = ? AND workerName IS NULL. Returns the number of affected
	// rows (0 or 1).
	ClaimAtomic(ctx context.Context, id int64, workerName string) (int64, error)

	GetJob(ctx context.Context, id int64) (*domain.Job, error)
}

// Store is the top-level handle: it opens transactions and answers the
// read-only finder queries that don't need one.
type Store interface {
	Begin(ctx context.Context) (Tx, error)
	Close() error

	GetJob(ctx context.Context, id int64) (*domain.Job, error)

	// FindByCommand returns the first job (id ASC) with byte-exact matching
	// command+args, or nil.
	FindByCommand(ctx context.Context, command string, argsJSON []byte) (*domain.Job, error)

	// FindPending selects the single next PENDING candidate ordered by
	// (priority ASC, id ASC), matching the filters in spec.md §4.5.
	FindPending(ctx context.Context, excludedIDs []int64, excludedQueues, restrictedQueues []string, now time.Time) (*domain.Job, error)

	// IncomingJobIDs returns the source job ids of every dependency edge
	// pointing at destJobID.
	IncomingJobIDs(ctx context.Context, destJobID int64) ([]int64, error)
	// OutgoingJobIDs returns the dest job ids of every dependency edge
	// originating at sourceJobID.
	OutgoingJobIDs(ctx context.Context, sourceJobID int64) ([]int64, error)
	// GetJobs batch-fetches jobs by id, in no particular order.
	GetJobs(ctx context.Context, ids []int64) ([]*domain.Job, error)

	FindForRelatedEntity(ctx context.Context, command string, class string, idJSON []byte, states []domain.JobState) (*domain.Job, error)
	FindAllForRelatedEntity(ctx context.Context, class string, idJSON []byte) ([]*domain.Job, error)

	FindLastErrored(ctx context.Context, limit int) ([]*domain.Job, error)
	ListQueues(ctx context.Context) ([]string, error)
	AvailableCount(ctx context.Context, queue string, now time.Time) (int, error)

	// FindStaleRunning selects one RUNNING job whose checkedAt is older
	// than the stale threshold and whose id is not in excluded.
	FindStaleRunning(ctx context.Context, excluded []int64, staleBefore time.Time) (*domain.Job, error)

	// FindRetentionCandidates implements the three-pass retention scan
	// from spec.md §4.6. pass is 1, 2, or 3. excluded omits ids the
	// caller has already tried and failed to delete this run, so a
	// stuck candidate doesn't keep refilling the same batch forever.
	FindRetentionCandidates(ctx context.Context, pass int, cutoff time.Time, limit int, excluded []int64) ([]*domain.Job, error)

	// HasIncomingDependency reports whether destJobID is the dest of any
	// dependency edge, i.e. whether it depends on at least one other job.
	HasIncomingDependency(ctx context.Context, destJobID int64) (bool, error)

	// RetryJobIDs returns the ids of every retry job whose originalJob is
	// originalJobID, in creation order.
	RetryJobIDs(ctx context.Context, originalJobID int64) ([]int64, error)
}
