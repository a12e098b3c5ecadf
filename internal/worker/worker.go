// Package worker drives the claim/execute/close loop that turns a stored
// job into an actual process invocation. It sits outside the job queue
// core's own scope (the core only stores and orchestrates state), but a
// binary that can only submit jobs and never run them is not a
// demonstrable system, so this package exists to close that gap.
package worker

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/levuro/jobqueue/internal/domain"
	"github.com/levuro/jobqueue/internal/jobmanager"
)

// Result is what a CommandRunner reports back about one invocation.
type Result struct {
	Output      string
	ErrorOutput string
	ExitCode    int
}

// CommandRunner executes a job's command. The default implementation
// shells out via os/exec; tests substitute a fake.
type CommandRunner interface {
	Run(ctx context.Context, command string, args []string) (Result, error)
}

// ExecRunner runs command as a child process via os/exec.
type ExecRunner struct{}

// Run implements CommandRunner.
func (ExecRunner) Run(ctx context.Context, command string, args []string) (Result, error) {
	cmd := exec.CommandContext(ctx, command, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
			err = nil // non-zero exit is a normal job failure, not a runner error
		}
	}

	return Result{
		Output:      stdout.String(),
		ErrorOutput: stderr.String(),
		ExitCode:    exitCode,
	}, err
}

// Config controls a Worker's polling behavior.
type Config struct {
	WorkerName       string
	Queue            string
	PollInterval     time.Duration
	ExcludedQueues   []string
	RestrictedQueues []string
}

func (c Config) withDefaults() Config {
	if c.WorkerName == "" {
		c.WorkerName = "worker-1"
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 2 * time.Second
	}
	return c
}

// JobAvailableListener receives job-available notifications published by
// a JobAvailableNotifier in another process. Optional: a
// *events.PostgresListener satisfies this.
type JobAvailableListener interface {
	Next(ctx context.Context) (string, error)
	Close(ctx context.Context) error
}

// Worker repeatedly claims and runs jobs from a Manager until its context
// is canceled.
type Worker struct {
	manager  *jobmanager.Manager
	runner   CommandRunner
	logger   *slog.Logger
	cfg      Config
	listener JobAvailableListener

	wg sync.WaitGroup
}

// New builds a Worker. runner and logger may be nil (ExecRunner,
// slog.Default() respectively).
func New(manager *jobmanager.Manager, runner CommandRunner, logger *slog.Logger, cfg Config) *Worker {
	if runner == nil {
		runner = ExecRunner{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{manager: manager, runner: runner, logger: logger, cfg: cfg.withDefaults()}
}

// SetListener attaches a JobAvailableListener. When set, Start wakes
// immediately on a notification instead of waiting for the next poll
// tick; the ticker still runs underneath as a fallback for notifications
// that never arrive (e.g. a dropped connection).
func (w *Worker) SetListener(listener JobAvailableListener) {
	w.listener = listener
}

// listenForWake relays listener notifications onto wake until ctx is
// done, then closes wake. wake is buffered 1: a notification arriving
// while Start is mid-job is retained, not lost, and coalesces with any
// notification already pending.
func (w *Worker) listenForWake(ctx context.Context, wake chan<- struct{}) {
	defer close(wake)
	for {
		queue, err := w.listener.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.logger.Error("job-available listener failed", "error", err)
			return
		}
		if w.cfg.Queue != "" && queue != w.cfg.Queue {
			continue
		}
		select {
		case wake <- struct{}{}:
		default: // already have a pending wake-up queued
		}
	}
}

// Start polls until ctx is canceled, running claimed jobs synchronously
// within each poll tick (one job in flight at a time per Worker; run
// multiple Workers for concurrency).
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("worker started", "worker_name", w.cfg.WorkerName, "queue", w.cfg.Queue, "poll_interval", w.cfg.PollInterval)

	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	var wake chan struct{}
	if w.listener != nil {
		wake = make(chan struct{}, 1)
		go w.listenForWake(ctx, wake)
	}

	for {
		ran, err := w.RunOnce(ctx)
		if err != nil {
			w.logger.Error("claim/run cycle failed", "error", err)
		}
		if ran {
			continue // keep draining without waiting for the next tick
		}

		select {
		case <-ctx.Done():
			w.wg.Wait()
			w.logger.Info("worker stopped")
			return ctx.Err()
		case <-ticker.C:
		case _, ok := <-wake: // nil wake (no listener attached) blocks forever and is never selected
			if !ok {
				wake = nil // listener stopped: poll on the ticker alone
			}
		}
	}
}

// RunOnce claims and, if a job was available, runs exactly one job to
// completion. It reports whether a job was claimed.
func (w *Worker) RunOnce(ctx context.Context) (bool, error) {
	var excluded []int64
	restrictedQueues := w.cfg.RestrictedQueues
	if w.cfg.Queue != "" {
		restrictedQueues = append(restrictedQueues, w.cfg.Queue)
	}

	job, err := w.manager.ClaimNext(ctx, w.cfg.WorkerName, &excluded, w.cfg.ExcludedQueues, restrictedQueues)
	if err != nil {
		return false, err
	}
	if job == nil {
		return false, nil
	}

	// The claimed job runs, records and closes even if ctx is canceled
	// meanwhile, so a stop request takes effect after the current job.
	w.runJob(context.WithoutCancel(ctx), job)
	return true, nil
}

func (w *Worker) runJob(ctx context.Context, job *domain.Job) {
	runID := uuid.New().String() // correlates claim/run/close log lines for this one attempt

	runCtx := ctx
	var cancel context.CancelFunc
	if job.MaxRuntime > 0 {
		runCtx, cancel = context.WithTimeout(ctx, job.MaxRuntime)
		defer cancel()
	}

	w.logger.Info("job run started", "run_id", runID, "job_id", job.ID, "command", job.Command)

	result, err := w.runner.Run(runCtx, job.Command, job.Args)

	finalState := domain.StateFinished
	switch {
	case err != nil:
		finalState = domain.StateFailed
	case runCtx.Err() == context.DeadlineExceeded:
		finalState = domain.StateTerminated
	case result.ExitCode != 0:
		finalState = domain.StateFailed
	}

	if err := w.manager.RecordResult(ctx, job.ID, result.Output, result.ErrorOutput, result.ExitCode); err != nil {
		w.logger.Error("failed to record job result", "run_id", runID, "job_id", job.ID, "error", err)
	}

	w.logger.Info("job run complete", "run_id", runID, "job_id", job.ID, "command", job.Command, "exit_code", result.ExitCode, "final_state", finalState)

	if err := w.manager.Close(ctx, job, finalState); err != nil {
		w.logger.Error("failed to close job after run", "run_id", runID, "job_id", job.ID, "error", err)
	}
}
