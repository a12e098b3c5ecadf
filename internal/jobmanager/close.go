package jobmanager

import (
	"context"
	"fmt"
	"time"

	"github.com/levuro/jobqueue/internal/domain"
	"github.com/levuro/jobqueue/internal/events"
	"github.com/levuro/jobqueue/internal/statemachine"
	"github.com/levuro/jobqueue/internal/store"
)

// Close runs the terminal-state cascade for job, entirely inside one
// transaction: either the whole cascade commits, or none of it does.
// finalState must be one of the allowed close-inputs (FINISHED, FAILED,
// TERMINATED, INCOMPLETE, CANCELED).
func (m *Manager) Close(ctx context.Context, job *domain.Job, finalState domain.JobState) error {
	if !statemachine.IsFinal(finalState) {
		return fmt.Errorf("%w: close called with non-terminal state %q", domain.ErrInvalidState, finalState)
	}

	tx, err := m.store.Begin(ctx)
	if err != nil {
		return err
	}

	visited := make(map[int64]bool)
	if err := m.closeJob(ctx, tx, visited, job.ID, finalState); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	m.logger.Info("job closed", "job_id", job.ID, "final_state", finalState)
	// A failed, retryable job leaves a new PENDING retry job behind in
	// the same queue; wake any idle worker rather than waiting for it to
	// notice on its next poll.
	m.notifyJobAvailable(ctx, job.Queue)
	return nil
}

// closeJob applies the recursion rules of the close cascade to the job
// identified by id, using visited to guard against cycles and diamonds.
func (m *Manager) closeJob(ctx context.Context, tx store.Tx, visited map[int64]bool, id int64, finalState domain.JobState) error {
	if visited[id] {
		return nil
	}
	visited[id] = true

	j, err := tx.GetJob(ctx, id)
	if err != nil {
		return err
	}
	if statemachine.IsFinal(j.State) {
		return nil
	}

	retryJobIDs, err := tx.RetryJobIDs(ctx, j.ID)
	if err != nil {
		return err
	}
	if j.IsRetryJob || len(retryJobIDs) == 0 {
		event := &events.StateChangeEvent{Job: j, OldState: j.State, NewState: finalState}
		if err := m.dispatcher.Dispatch(ctx, event); err != nil {
			return err
		}
		finalState = event.NewState
	}

	switch finalState {
	case domain.StateCanceled:
		return m.closeCanceled(ctx, tx, visited, j)
	case domain.StateFailed, domain.StateTerminated, domain.StateIncomplete:
		return m.closeFailure(ctx, tx, visited, j, finalState)
	case domain.StateFinished:
		return m.closeFinished(ctx, tx, j)
	default:
		return fmt.Errorf("%w: close called with unsupported final state %q", domain.ErrInvalidState, finalState)
	}
}

func (m *Manager) closeCanceled(ctx context.Context, tx store.Tx, visited map[int64]bool, j *domain.Job) error {
	if err := m.persistClosed(ctx, tx, j, domain.StateCanceled); err != nil {
		return err
	}

	if j.IsRetryJob {
		if j.OriginalJobID == nil {
			return fmt.Errorf("%w: retry job %d has no originalJob", domain.ErrStorage, j.ID)
		}
		return m.closeJob(ctx, tx, visited, *j.OriginalJobID, domain.StateCanceled)
	}

	dependentIDs, err := tx.OutgoingJobIDs(ctx, j.ID)
	if err != nil {
		return err
	}
	for _, dependentID := range dependentIDs {
		if err := m.closeJob(ctx, tx, visited, dependentID, domain.StateCanceled); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) closeFailure(ctx context.Context, tx store.Tx, visited map[int64]bool, j *domain.Job, finalState domain.JobState) error {
	if j.IsRetryJob {
		if err := m.persistClosed(ctx, tx, j, finalState); err != nil {
			return err
		}
		if j.OriginalJobID == nil {
			return fmt.Errorf("%w: retry job %d has no originalJob", domain.ErrStorage, j.ID)
		}
		return m.closeJob(ctx, tx, visited, *j.OriginalJobID, finalState)
	}

	retryJobIDs, err := tx.RetryJobIDs(ctx, j.ID)
	if err != nil {
		return err
	}

	if len(retryJobIDs) < j.MaxRetries {
		attempt := len(retryJobIDs)
		retryJob := &domain.Job{
			Command:       j.Command,
			Args:          j.Args,
			State:         domain.StatePending,
			Queue:         j.Queue,
			Priority:      j.Priority,
			CreatedAt:     time.Now().UTC(),
			ExecuteAfter:  m.scheduler.ScheduleNextRetry(attempt),
			MaxRuntime:    j.MaxRuntime,
			IsRetryJob:    true,
			OriginalJobID: &j.ID,
			MaxRetries:    j.MaxRetries,
		}
		if _, err := tx.InsertJob(ctx, retryJob); err != nil {
			return err
		}
		// j itself stays open: it remains observable as awaiting retry.
		return nil
	}

	if err := m.persistClosed(ctx, tx, j, finalState); err != nil {
		return err
	}

	dependentIDs, err := tx.OutgoingJobIDs(ctx, j.ID)
	if err != nil {
		return err
	}
	for _, dependentID := range dependentIDs {
		dependent, err := tx.GetJob(ctx, dependentID)
		if err != nil {
			return err
		}
		if dependent.State == domain.StatePending || dependent.State == domain.StateNew {
			if err := m.closeJob(ctx, tx, visited, dependentID, domain.StateCanceled); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *Manager) closeFinished(ctx context.Context, tx store.Tx, j *domain.Job) error {
	if j.IsRetryJob {
		if j.OriginalJobID == nil {
			return fmt.Errorf("%w: retry job %d has no originalJob", domain.ErrStorage, j.ID)
		}
		original, err := tx.GetJob(ctx, *j.OriginalJobID)
		if err != nil {
			return err
		}
		if err := m.persistClosed(ctx, tx, original, domain.StateFinished); err != nil {
			return err
		}
	}
	return m.persistClosed(ctx, tx, j, domain.StateFinished)
}

// persistClosed sets j's state to finalState, stamps closedAt, and
// writes it back inside tx.
func (m *Manager) persistClosed(ctx context.Context, tx store.Tx, j *domain.Job, finalState domain.JobState) error {
	j.State = finalState
	now := time.Now().UTC()
	j.ClosedAt = &now
	return tx.UpdateJob(ctx, j)
}
