// Package cleanup implements the two periodic maintenance phases that
// keep the job table from accumulating dead weight: detecting RUNNING
// jobs whose worker has gone silent, and pruning closed jobs once their
// retention window has passed.
package cleanup

import (
	"context"
	"log/slog"
	"time"

	"github.com/levuro/jobqueue/internal/domain"
	"github.com/levuro/jobqueue/internal/jobmanager"
	"github.com/levuro/jobqueue/internal/observability"
	"github.com/levuro/jobqueue/internal/store"
)

const (
	// DefaultStaleThreshold is how long a RUNNING job may go unchecked
	// before it is considered abandoned by its worker.
	DefaultStaleThreshold = 5 * time.Minute
	// DefaultMaxRetentionSucceeded is how long a FINISHED job is kept.
	DefaultMaxRetentionSucceeded = 1 * time.Hour
	// DefaultMaxRetention is how long any other closed job is kept.
	DefaultMaxRetention = 7 * 24 * time.Hour
	// DefaultPerCall caps how many jobs a single Run deletes.
	DefaultPerCall = 1000

	retentionBatchSize = 100
)

// Config controls Runner's thresholds.
type Config struct {
	StaleThreshold        time.Duration
	MaxRetentionSucceeded time.Duration
	MaxRetention          time.Duration
	PerCall               int
}

func (c Config) withDefaults() Config {
	if c.StaleThreshold <= 0 {
		c.StaleThreshold = DefaultStaleThreshold
	}
	if c.MaxRetentionSucceeded <= 0 {
		c.MaxRetentionSucceeded = DefaultMaxRetentionSucceeded
	}
	if c.MaxRetention <= 0 {
		c.MaxRetention = DefaultMaxRetention
	}
	if c.PerCall <= 0 {
		c.PerCall = DefaultPerCall
	}
	return c
}

// Report summarizes one Run.
type Report struct {
	StaleClosed      int
	RetentionDeleted int
}

// Runner executes the stale-running sweep and the three-pass retention
// deletion against a Store, closing stale jobs through a Manager so the
// usual close cascade (retry creation, dependent cancellation) applies.
type Runner struct {
	store   store.Store
	manager *jobmanager.Manager
	logger  *slog.Logger
	cfg     Config
	metrics *observability.Metrics
}

// New builds a Runner. logger may be nil (falls back to slog.Default()).
func New(s store.Store, manager *jobmanager.Manager, logger *slog.Logger, cfg Config) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{store: s, manager: manager, logger: logger, cfg: cfg.withDefaults()}
}

// SetMetrics attaches the instruments Run records cleanup batch size
// against. A nil Runner metrics field (the zero value) records nothing.
func (r *Runner) SetMetrics(metrics *observability.Metrics) {
	r.metrics = metrics
}

// Run executes one full cleanup cycle: stale sweep, then retention
// deletion, returning how many jobs each phase touched.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	staleClosed, err := r.sweepStale(ctx)
	if err != nil {
		return Report{StaleClosed: staleClosed}, err
	}

	deleted, err := r.pruneRetention(ctx)
	report := Report{StaleClosed: staleClosed, RetentionDeleted: deleted}
	if err != nil {
		return report, err
	}

	if r.metrics != nil {
		r.metrics.CleanupBatch.Add(ctx, int64(deleted))
	}

	r.logger.Info("cleanup run complete", "stale_closed", staleClosed, "retention_deleted", deleted)
	return report, nil
}

// sweepStale repeatedly selects one stale RUNNING job and closes it as
// INCOMPLETE, clearing the in-process view between iterations.
func (r *Runner) sweepStale(ctx context.Context) (int, error) {
	var excluded []int64
	closed := 0
	staleBefore := time.Now().UTC().Add(-r.cfg.StaleThreshold)

	for {
		job, err := r.store.FindStaleRunning(ctx, excluded, staleBefore)
		if err != nil {
			return closed, err
		}
		if job == nil {
			return closed, nil
		}
		excluded = append(excluded, job.ID)

		workerName := "(unknown)"
		if job.WorkerName != nil {
			workerName = *job.WorkerName
		}
		r.logger.Warn("closing stale running job",
			"job_id", job.ID, "worker", workerName, "checked_at", job.CheckedAt)

		if err := r.manager.Close(ctx, job, domain.StateIncomplete); err != nil {
			r.logger.Warn("failed to close stale job, skipping", "job_id", job.ID, "error", err)
			continue
		}
		closed++
	}
}

// pruneRetention runs the three ordered retention passes, each batched
// and together capped at cfg.PerCall deletions.
func (r *Runner) pruneRetention(ctx context.Context) (int, error) {
	now := time.Now().UTC()
	passes := []struct {
		pass   int
		cutoff time.Time
	}{
		{1, now.Add(-r.cfg.MaxRetentionSucceeded)},
		{2, now.Add(-r.cfg.MaxRetention)},
		{3, now.Add(-r.cfg.MaxRetention)},
	}

	deleted := 0
	for _, p := range passes {
		var excluded []int64
		for {
			if deleted >= r.cfg.PerCall {
				return deleted, nil
			}
			limit := retentionBatchSize
			if remaining := r.cfg.PerCall - deleted; remaining < limit {
				limit = remaining
			}

			candidates, err := r.store.FindRetentionCandidates(ctx, p.pass, p.cutoff, limit, excluded)
			if err != nil {
				return deleted, err
			}
			if len(candidates) == 0 {
				break
			}

			for _, job := range candidates {
				if deleted >= r.cfg.PerCall {
					return deleted, nil
				}
				if err := r.deleteCandidate(ctx, job); err != nil {
					r.logger.Warn("failed to delete retention candidate, skipping", "job_id", job.ID, "error", err)
					excluded = append(excluded, job.ID)
					continue
				}
				deleted++
			}
		}
	}
	return deleted, nil
}

// deleteCandidate removes one closed job. If other jobs reference it as
// a dependency's dest_job_id, their non-final sources are first closed
// (FAILED if the candidate was RUNNING, CANCELED otherwise) so no
// dangling reference remains, then the dependency rows and the job row
// are deleted in one transaction.
func (r *Runner) deleteCandidate(ctx context.Context, job *domain.Job) error {
	hasIncoming, err := r.store.HasIncomingDependency(ctx, job.ID)
	if err != nil {
		return err
	}

	if hasIncoming {
		resolveState := domain.StateCanceled
		if job.State == domain.StateRunning {
			resolveState = domain.StateFailed
		}
		sourceIDs, err := r.store.IncomingJobIDs(ctx, job.ID)
		if err != nil {
			return err
		}
		for _, sourceID := range sourceIDs {
			source, err := r.store.GetJob(ctx, sourceID)
			if err != nil {
				return err
			}
			if source.State == domain.StateFinished || source.State == domain.StateFailed ||
				source.State == domain.StateTerminated || source.State == domain.StateIncomplete ||
				source.State == domain.StateCanceled {
				continue
			}
			if err := r.manager.Close(ctx, source, resolveState); err != nil {
				return err
			}
		}
	}

	tx, err := r.store.Begin(ctx)
	if err != nil {
		return err
	}
	if err := tx.DeleteDependenciesByDest(ctx, job.ID); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.DeleteJob(ctx, job.ID); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}
