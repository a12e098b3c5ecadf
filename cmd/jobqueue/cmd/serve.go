package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/levuro/jobqueue/internal/cleanup"
	"github.com/levuro/jobqueue/internal/events"
	"github.com/levuro/jobqueue/internal/httpapi"
	"github.com/levuro/jobqueue/internal/httpapi/handler"
	"github.com/levuro/jobqueue/internal/observability"
	storesql "github.com/levuro/jobqueue/internal/store/sql"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and the cleanup ticker",
	Long: `serve starts the chi-routed JSON API (see internal/httpapi) and
a background ticker that runs one cleanup cycle every
JOBQUEUE_CLEANUP_INTERVAL, until interrupted.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("dsn", "", "database DSN (overrides JOBQUEUE_DB_DSN)")
	serveCmd.Flags().String("port", "", "HTTP listen port (overrides JOBQUEUE_HTTP_PORT)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	port := cfg.HTTPPort
	if p, _ := cmd.Flags().GetString("port"); p != "" {
		port = p
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
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = provider.Shutdown(shutdownCtx)
	}()
	manager.SetMetrics(&provider.Metrics)

	if cfg.DBDialect == string(storesql.DialectPostgres) {
		notifier, err := events.NewPostgresNotifier(ctx, cfg.DBDSN)
		if err != nil {
			return fmt.Errorf("starting job-available notifier: %w", err)
		}
		defer func() { _ = notifier.Close(context.Background()) }()
		manager.SetNotifier(notifier)
	}

	server := handler.NewServer(manager, store)
	router := httpapi.NewRouter(server, httpapi.Config{})

	httpServer := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	runner := cleanup.New(store, manager, nil, cleanup.Config{
		StaleThreshold:        cfg.StaleThreshold,
		MaxRetentionSucceeded: cfg.MaxRetentionSucceeded,
		MaxRetention:          cfg.MaxRetention,
		PerCall:               cfg.CleanupPerCall,
	})
	runner.SetMetrics(&provider.Metrics)

	go runCleanupTicker(ctx, runner, cfg.CleanupInterval)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http api listening", "addr", httpServer.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func runCleanupTicker(ctx context.Context, runner *cleanup.Runner, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := runner.Run(ctx); err != nil {
				slog.Error("cleanup tick failed", "error", err)
			}
		}
	}
}
