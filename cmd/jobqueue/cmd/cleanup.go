package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/levuro/jobqueue/internal/cleanup"
	"github.com/levuro/jobqueue/internal/durationx"
	"github.com/levuro/jobqueue/internal/observability"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Run one stale-sweep and retention-prune cycle",
	Long: `cleanup closes RUNNING jobs whose worker has gone silent as
INCOMPLETE, then deletes closed jobs past their retention window in
three ordered passes. It runs once and exits; schedule it externally
(cron, a sidecar timer) or use "jobqueue serve" to run it on a ticker.`,
	RunE: runCleanup,
}

func init() {
	rootCmd.AddCommand(cleanupCmd)
	cleanupCmd.Flags().String("dsn", "", "database DSN (overrides JOBQUEUE_DB_DSN)")
	cleanupCmd.Flags().String("max-retention", "7 days", "how long non-succeeded closed jobs are kept")
	cleanupCmd.Flags().String("max-retention-succeeded", "1 hour", "how long FINISHED jobs are kept")
	cleanupCmd.Flags().Int("per-call", 1000, "maximum jobs deleted in one run")
}

func runCleanup(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	maxRetentionRaw, _ := cmd.Flags().GetString("max-retention")
	maxRetention, err := durationx.Parse(maxRetentionRaw)
	if err != nil {
		return fmt.Errorf("parsing --max-retention: %w", err)
	}
	maxRetentionSucceededRaw, _ := cmd.Flags().GetString("max-retention-succeeded")
	maxRetentionSucceeded, err := durationx.Parse(maxRetentionSucceededRaw)
	if err != nil {
		return fmt.Errorf("parsing --max-retention-succeeded: %w", err)
	}
	perCall, _ := cmd.Flags().GetInt("per-call")

	store, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer store.Close()

	manager := buildManager(store, cfg)
	runner := cleanup.New(store, manager, nil, cleanup.Config{
		StaleThreshold:        cfg.StaleThreshold,
		MaxRetentionSucceeded: maxRetentionSucceeded,
		MaxRetention:          maxRetention,
		PerCall:               perCall,
	})

	provider, err := observability.NewProvider(ctx, observability.Config{
		Enabled:   cfg.OTelEnabled,
		Collector: cfg.OTelCollector,
	})
	if err != nil {
		return fmt.Errorf("starting metrics provider: %w", err)
	}
	defer func() { _ = provider.Shutdown(ctx) }()
	manager.SetMetrics(&provider.Metrics)
	runner.SetMetrics(&provider.Metrics)

	report, err := runner.Run(ctx)
	if err != nil {
		return fmt.Errorf("cleanup run: %w", err)
	}

	fmt.Printf("stale_closed=%d retention_deleted=%d\n", report.StaleClosed, report.RetentionDeleted)
	return nil
}
