package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/levuro/jobqueue/internal/events"
	"github.com/levuro/jobqueue/internal/observability"
	storesql "github.com/levuro/jobqueue/internal/store/sql"
	jobworker "github.com/levuro/jobqueue/internal/worker"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Claim and run jobs until interrupted",
	Long: `worker polls for the next eligible job, runs its command via
os/exec, records its output and exit code, and closes it — driving the
retry/cascade logic in internal/jobmanager the same way a handwritten
integration would. Stops on SIGINT/SIGTERM after its current job.`,
	RunE: runWorker,
}

func init() {
	rootCmd.AddCommand(workerCmd)
	workerCmd.Flags().String("dsn", "", "database DSN (overrides JOBQUEUE_DB_DSN)")
	workerCmd.Flags().String("worker-name", "", "identifies this worker in claimed jobs (default: hostname)")
	workerCmd.Flags().String("queue", "", "restrict claims to this queue (default: JOBQUEUE_WORKER_QUEUE, else \"default\")")
	workerCmd.Flags().Duration("poll-interval", 0, "how often to poll when no job is available (default 2s)")
}

func runWorker(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	workerName, _ := cmd.Flags().GetString("worker-name")
	if workerName == "" {
		workerName = cfg.WorkerName
	}
	if workerName == "" {
		workerName, _ = os.Hostname()
	}
	queue, _ := cmd.Flags().GetString("queue")
	if queue == "" {
		queue = cfg.WorkerQueue
	}
	pollInterval, _ := cmd.Flags().GetDuration("poll-interval")
	if pollInterval == 0 {
		pollInterval = cfg.WorkerPollInterval
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer store.Close()

	manager := buildManager(store, cfg)

	provider, err := observability.NewProvider(ctx, observability.Config{
		Enabled:   cfg.OTelEnabled,
		Collector: cfg.OTelCollector,
	})
	if err != nil {
		return fmt.Errorf("starting metrics provider: %w", err)
	}
	defer func() { _ = provider.Shutdown(context.Background()) }()
	manager.SetMetrics(&provider.Metrics)

	w := jobworker.New(manager, jobworker.ExecRunner{}, nil, jobworker.Config{
		WorkerName:   workerName,
		Queue:        queue,
		PollInterval: pollInterval,
	})

	if cfg.DBDialect == string(storesql.DialectPostgres) {
		notifier, err := events.NewPostgresNotifier(ctx, cfg.DBDSN)
		if err != nil {
			return fmt.Errorf("starting job-available notifier: %w", err)
		}
		defer func() { _ = notifier.Close(context.Background()) }()
		manager.SetNotifier(notifier)

		listener, err := events.NewPostgresListener(ctx, cfg.DBDSN)
		if err != nil {
			return fmt.Errorf("starting job-available listener: %w", err)
		}
		defer func() { _ = listener.Close(context.Background()) }()
		w.SetListener(listener)
	}

	err = w.Start(ctx)
	if err != nil && ctx.Err() != nil {
		return nil // interrupted deliberately
	}
	return err
}
