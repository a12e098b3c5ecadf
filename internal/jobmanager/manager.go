// Package jobmanager implements the orchestration core: submission,
// deduplication, atomic claim, and the terminal-state close cascade.
// It is the thickest layer of the job queue, consulting the store,
// dependency graph, state machine, retry scheduler, and event
// dispatcher to keep the persisted job set consistent under contention.
package jobmanager

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/levuro/jobqueue/internal/depgraph"
	"github.com/levuro/jobqueue/internal/domain"
	"github.com/levuro/jobqueue/internal/events"
	"github.com/levuro/jobqueue/internal/observability"
	"github.com/levuro/jobqueue/internal/ptr"
	"github.com/levuro/jobqueue/internal/retry"
	"github.com/levuro/jobqueue/internal/statemachine"
	"github.com/levuro/jobqueue/internal/store"
)

// JobAvailableNotifier is told when a job becomes (or may become)
// immediately claimable, so a worker in another process can wake early
// instead of waiting out its poll interval. Optional: a
// *events.PostgresNotifier satisfies this; SQLite deployments have no
// equivalent and simply leave it unset.
type JobAvailableNotifier interface {
	NotifyJobAvailable(ctx context.Context, queue string) error
}

// Manager is the job queue's orchestration core.
type Manager struct {
	store      store.Store
	graph      *depgraph.Graph
	scheduler  retry.Scheduler
	dispatcher *events.Dispatcher
	logger     *slog.Logger
	metrics    *observability.Metrics
	notifier   JobAvailableNotifier
}

// New builds a Manager over its collaborators. dispatcher and logger may
// be nil; a nil dispatcher behaves as one with no listeners, and a nil
// logger falls back to slog.Default().
func New(s store.Store, scheduler retry.Scheduler, dispatcher *events.Dispatcher, logger *slog.Logger) *Manager {
	if dispatcher == nil {
		dispatcher = events.NewDispatcher()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		store:      s,
		graph:      depgraph.New(s),
		scheduler:  scheduler,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// SetMetrics attaches the instruments ClaimNext records claim latency
// and queue depth against. A nil Manager metrics field (the zero value)
// records nothing.
func (m *Manager) SetMetrics(metrics *observability.Metrics) {
	m.metrics = metrics
}

// SetNotifier attaches the collaborator Submit and Close use to announce
// newly-claimable jobs across processes. A nil Manager notifier (the
// zero value) announces nothing; ClaimNext's own polling still finds
// the job on its next tick regardless.
func (m *Manager) SetNotifier(notifier JobAvailableNotifier) {
	m.notifier = notifier
}

// notifyJobAvailable announces queue has a newly-claimable job, when a
// notifier is attached. Failures are logged, not propagated: a missed
// wake-up only costs the next poll interval, not correctness.
func (m *Manager) notifyJobAvailable(ctx context.Context, queue string) {
	if m.notifier == nil {
		return
	}
	if err := m.notifier.NotifyJobAvailable(ctx, queue); err != nil {
		m.logger.Warn("failed to publish job-available notification", "queue", queue, "error", err)
	}
}

// Submit persists a new job. It starts PENDING when it has no
// dependencies, or NEW when it does — promotion out of NEW once
// dependencies are satisfied is an external, worker-loop concern.
func (m *Manager) Submit(ctx context.Context, command string, args []string, opts ...SubmitOption) (*domain.Job, error) {
	if command == "" {
		return nil, fmt.Errorf("%w: command must not be empty", domain.ErrInvalidArgument)
	}

	o := defaultSubmitOptions()
	for _, opt := range opts {
		opt(&o)
	}

	initialState := domain.StatePending
	if len(o.dependencies) > 0 {
		initialState = domain.StateNew
	}

	job := &domain.Job{
		Command:      command,
		Args:         args,
		State:        initialState,
		Queue:        o.queue,
		Priority:     o.priority,
		CreatedAt:    time.Now().UTC(),
		ExecuteAfter: o.executeAfter,
		MaxRetries:   o.maxRetries,
	}

	tx, err := m.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	id, err := tx.InsertJob(ctx, job)
	if err != nil {
		_ = tx.Rollback(ctx)
		return nil, err
	}
	job.ID = id

	for _, depID := range o.dependencies {
		if depID == job.ID {
			_ = tx.Rollback(ctx)
			return nil, fmt.Errorf("%w: job cannot depend on itself", domain.ErrInvalidArgument)
		}
		if err := tx.InsertDependency(ctx, domain.Dependency{SourceJobID: depID, DestJobID: job.ID}); err != nil {
			_ = tx.Rollback(ctx)
			return nil, err
		}
	}

	for _, re := range o.relatedEntities {
		re.JobID = job.ID
		if err := tx.InsertRelatedEntity(ctx, re); err != nil {
			_ = tx.Rollback(ctx)
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	m.logger.Debug("job submitted", "job_id", job.ID, "command", command, "queue", job.Queue, "state", job.State)
	if job.State == domain.StatePending {
		m.notifyJobAvailable(ctx, job.Queue)
	}
	return job, nil
}

// Find returns the first job (id ASC) whose command and args match
// exactly, or nil if none does.
func (m *Manager) Find(ctx context.Context, command string, args []string) (*domain.Job, error) {
	argsJSON, err := domain.EncodeArgs(args)
	if err != nil {
		return nil, err
	}
	return m.store.FindByCommand(ctx, command, argsJSON)
}

// GetOrCreate returns the existing job matching (command, args), or
// atomically creates one. Exactly one concurrent caller wins the race
// to create; losers observe the winner. See the leader-election note in
// DESIGN.md for why this needs two transactions rather than one.
func (m *Manager) GetOrCreate(ctx context.Context, command string, args []string) (*domain.Job, error) {
	argsJSON, err := domain.EncodeArgs(args)
	if err != nil {
		return nil, err
	}

	candidate := &domain.Job{
		Command:      command,
		Args:         args,
		State:        domain.StateNew,
		Queue:        domain.DefaultQueue,
		CreatedAt:    time.Now().UTC(),
		ExecuteAfter: time.Now().UTC(),
	}

	tx, err := m.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	id, err := tx.InsertJob(ctx, candidate)
	if err != nil {
		_ = tx.Rollback(ctx)
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	candidate.ID = id

	winner, err := m.store.FindByCommand(ctx, command, argsJSON)
	if err != nil {
		return nil, err
	}
	if winner == nil {
		return nil, fmt.Errorf("%w: job %d vanished after insert", domain.ErrConflict, candidate.ID)
	}

	tx2, err := m.store.Begin(ctx)
	if err != nil {
		return nil, err
	}

	if winner.ID == candidate.ID {
		winner.State = domain.StatePending
		if err := tx2.UpdateJob(ctx, winner); err != nil {
			_ = tx2.Rollback(ctx)
			return nil, err
		}
		if err := tx2.Commit(ctx); err != nil {
			return nil, err
		}
		m.logger.Debug("getOrCreate created job", "job_id", winner.ID, "command", command)
		return winner, nil
	}

	if err := tx2.DeleteJob(ctx, candidate.ID); err != nil {
		_ = tx2.Rollback(ctx)
		return nil, err
	}
	if err := tx2.Commit(ctx); err != nil {
		return nil, err
	}
	m.logger.Debug("getOrCreate lost race, returning existing job", "job_id", winner.ID, "command", command)
	return winner, nil
}

// FindPending selects the single next PENDING candidate ordered by
// (priority ASC, id ASC) without claiming it.
func (m *Manager) FindPending(ctx context.Context, excludedIDs []int64, excludedQueues, restrictedQueues []string) (*domain.Job, error) {
	return m.store.FindPending(ctx, excludedIDs, excludedQueues, restrictedQueues, time.Now().UTC())
}

// ClaimNext finds and atomically claims the next eligible job for
// workerName. excludedIDs is both read and grown in place: candidates
// that turn out unstartable, or that lose the claim race, are appended
// so the caller can resume from where this call left off.
func (m *Manager) ClaimNext(ctx context.Context, workerName string, excludedIDs *[]int64, excludedQueues, restrictedQueues []string) (*domain.Job, error) {
	searchStarted := time.Now()
	for {
		candidate, err := m.store.FindPending(ctx, *excludedIDs, excludedQueues, restrictedQueues, time.Now().UTC())
		if err != nil {
			return nil, err
		}
		if candidate == nil {
			return nil, nil
		}

		startable, err := m.isStartable(ctx, candidate)
		if err != nil {
			return nil, err
		}
		if !startable {
			*excludedIDs = append(*excludedIDs, candidate.ID)
			continue
		}

		tx, err := m.store.Begin(ctx)
		if err != nil {
			return nil, err
		}
		affected, err := tx.ClaimAtomic(ctx, candidate.ID, workerName)
		if err != nil {
			_ = tx.Rollback(ctx)
			return nil, err
		}
		if affected == 0 {
			_ = tx.Rollback(ctx)
			*excludedIDs = append(*excludedIDs, candidate.ID)
			continue
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, err
		}

		claimed, err := m.store.GetJob(ctx, candidate.ID)
		if err != nil {
			return nil, err
		}
		m.recordClaimMetrics(ctx, claimed, searchStarted)
		m.logger.Info("job claimed", "job_id", claimed.ID, "worker", workerName, "queue", claimed.Queue)
		return claimed, nil
	}
}

// recordClaimMetrics reports claim latency and the claimed job's queue
// depth, when a Metrics provider is attached. A failure to sample queue
// depth does not fail the claim; it only skips that one observation.
func (m *Manager) recordClaimMetrics(ctx context.Context, claimed *domain.Job, searchStarted time.Time) {
	if m.metrics == nil {
		return
	}
	elapsedMS := float64(time.Since(searchStarted)) / float64(time.Millisecond)
	m.metrics.ClaimLatency.Record(ctx, elapsedMS)

	depth, err := m.store.AvailableCount(ctx, claimed.Queue, time.Now().UTC())
	if err != nil {
		m.logger.Warn("failed to sample queue depth for metrics", "queue", claimed.Queue, "error", err)
		return
	}
	m.metrics.QueueDepth.Record(ctx, int64(depth))
}

// isStartable reports whether job is PENDING and every job it depends
// on has reached FINISHED.
func (m *Manager) isStartable(ctx context.Context, job *domain.Job) (bool, error) {
	if !statemachine.IsStartable(job.State) {
		return false, nil
	}
	incoming, err := m.graph.Incoming(ctx, job)
	if err != nil {
		return false, err
	}
	for _, dep := range incoming {
		if dep.State != domain.StateFinished {
			return false, nil
		}
	}
	return true, nil
}

// Incoming returns the jobs job depends on.
func (m *Manager) Incoming(ctx context.Context, job *domain.Job) ([]*domain.Job, error) {
	return m.graph.Incoming(ctx, job)
}

// Outgoing returns the jobs that depend on job.
func (m *Manager) Outgoing(ctx context.Context, job *domain.Job) ([]*domain.Job, error) {
	return m.graph.Outgoing(ctx, job)
}

// FindForRelatedEntity returns the first job (id ASC) associated with
// the given (class, id) business entity, optionally filtered to states.
func (m *Manager) FindForRelatedEntity(ctx context.Context, command, class string, idJSON []byte, states []domain.JobState) (*domain.Job, error) {
	if class == "" || len(idJSON) == 0 {
		return nil, fmt.Errorf("%w: related entity class and id are required", domain.ErrInvalidArgument)
	}
	return m.store.FindForRelatedEntity(ctx, command, class, idJSON, states)
}

// FindAllForRelatedEntity returns every job associated with the given
// (class, id) business entity.
func (m *Manager) FindAllForRelatedEntity(ctx context.Context, class string, idJSON []byte) ([]*domain.Job, error) {
	if class == "" || len(idJSON) == 0 {
		return nil, fmt.Errorf("%w: related entity class and id are required", domain.ErrInvalidArgument)
	}
	return m.store.FindAllForRelatedEntity(ctx, class, idJSON)
}

// FindLastErrored returns up to n jobs in a non-successful terminal
// state, most recently closed first.
func (m *Manager) FindLastErrored(ctx context.Context, n int) ([]*domain.Job, error) {
	if n <= 0 {
		n = 10
	}
	return m.store.FindLastErrored(ctx, n)
}

// ListQueues returns the distinct queue names that currently have jobs.
func (m *Manager) ListQueues(ctx context.Context) ([]string, error) {
	return m.store.ListQueues(ctx)
}

// AvailableCount returns the number of PENDING, immediately-eligible
// jobs in queue.
func (m *Manager) AvailableCount(ctx context.Context, queue string) (int, error) {
	return m.store.AvailableCount(ctx, queue, time.Now().UTC())
}

// RecordResult persists a claimed job's output, error output, and exit
// code without changing its state. Callers invoke this before Close so
// the cascade's own re-fetch of the job sees the recorded result.
func (m *Manager) RecordResult(ctx context.Context, jobID int64, output, errorOutput string, exitCode int) error {
	tx, err := m.store.Begin(ctx)
	if err != nil {
		return err
	}
	job, err := tx.GetJob(ctx, jobID)
	if err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	job.Output = ptr.To(output)
	job.ErrorOutput = ptr.To(errorOutput)
	job.ExitCode = ptr.To(exitCode)
	if err := tx.UpdateJob(ctx, job); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}
