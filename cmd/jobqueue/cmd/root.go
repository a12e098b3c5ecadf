// Package cmd implements the jobqueue CLI's subcommands.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/levuro/jobqueue/internal/config"
	"github.com/levuro/jobqueue/internal/events"
	"github.com/levuro/jobqueue/internal/jobmanager"
	"github.com/levuro/jobqueue/internal/retry"
	storesql "github.com/levuro/jobqueue/internal/store/sql"
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "jobqueue",
	Short: "A persistent, dependency-aware job queue",
	Long: `jobqueue stores commands to be executed once, tracks their
dependencies, retries, and retention, and drives them to completion.

Configuration is via environment variables (JOBQUEUE_DB_DIALECT,
JOBQUEUE_DB_DSN, and friends); see internal/config for the full list.`,
}

// Execute adds all child commands to rootCmd and runs it.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		return initLogging(cmd)
	}
}

func initLogging(cmd *cobra.Command) error {
	level, _ := cmd.Flags().GetString("log-level")
	format, _ := cmd.Flags().GetString("log-format")

	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}

// loadConfig loads process configuration, letting --dsn override
// JOBQUEUE_DB_DSN when the flag was explicitly set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if cmd.Flags().Changed("dsn") {
		dsn, _ := cmd.Flags().GetString("dsn")
		cfg.DBDSN = dsn
	}
	return cfg, nil
}

// openStore opens the configured database and runs migrations.
func openStore(ctx context.Context, cfg *config.Config) (*storesql.Store, error) {
	return storesql.NewStore(ctx, storesql.DBConfig{
		Dialect:         storesql.Dialect(cfg.DBDialect),
		DSN:             cfg.DBDSN,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		ConnMaxIdleTime: cfg.DBConnIdleTime,
	})
}

// buildManager wires a jobmanager.Manager over store using cfg's retry
// base delay.
func buildManager(store *storesql.Store, cfg *config.Config) *jobmanager.Manager {
	scheduler := retry.NewExponentialScheduler(cfg.RetryBaseDelay)
	return jobmanager.New(store, scheduler, events.NewDispatcher(), slog.Default())
}
