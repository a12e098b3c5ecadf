// Package config loads process configuration from environment variables
// using the reflective env-tag loader in internal/env, the same pattern
// the teacher's own internal/config package uses.
package config

import (
	"fmt"
	"time"

	"github.com/levuro/jobqueue/internal/env"
)

// Config holds the process-wide configuration for every jobqueue
// entrypoint (the cleanup, worker, and serve subcommands).
type Config struct {
	// Env is "dev" or "prod" (default "dev"). Nothing else reads it; the
	// log format comes from the root --log-format flag.
	Env string `env:"JOBQUEUE_ENV"`

	// Storage
	DBDialect      string        `env:"JOBQUEUE_DB_DIALECT"`
	DBDSN          string        `env:"JOBQUEUE_DB_DSN"`
	DBMaxOpenConns int           `env:"JOBQUEUE_DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns int           `env:"JOBQUEUE_DB_MAX_IDLE_CONNS"`
	DBConnLifetime time.Duration `env:"JOBQUEUE_DB_CONN_LIFETIME"`
	DBConnIdleTime time.Duration `env:"JOBQUEUE_DB_CONN_IDLE_TIME"`

	// HTTP API
	HTTPPort string `env:"JOBQUEUE_HTTP_PORT"`

	// Retry scheduling
	RetryBaseDelay time.Duration `env:"JOBQUEUE_RETRY_BASE_DELAY"`

	// Cleanup
	StaleThreshold        time.Duration `env:"JOBQUEUE_STALE_THRESHOLD"`
	MaxRetentionSucceeded time.Duration `env:"JOBQUEUE_MAX_RETENTION_SUCCEEDED"`
	MaxRetention          time.Duration `env:"JOBQUEUE_MAX_RETENTION"`
	CleanupPerCall        int           `env:"JOBQUEUE_CLEANUP_PER_CALL"`
	CleanupInterval       time.Duration `env:"JOBQUEUE_CLEANUP_INTERVAL"`

	// Worker
	WorkerName         string        `env:"JOBQUEUE_WORKER_NAME"`
	WorkerQueue        string        `env:"JOBQUEUE_WORKER_QUEUE"`
	WorkerPollInterval time.Duration `env:"JOBQUEUE_WORKER_POLL_INTERVAL"`

	// Observability
	OTelEnabled   bool   `env:"JOBQUEUE_OTEL_ENABLED"`
	OTelCollector string `env:"JOBQUEUE_OTEL_COLLECTOR"`
}

// Load parses environment variables into a Config, then fills in every
// field still at its zero value with its documented default.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Load(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Env == "" {
		c.Env = "dev"
	}
	if c.DBDialect == "" {
		c.DBDialect = "sqlite"
	}
	if c.DBDSN == "" {
		c.DBDSN = "./jobqueue.db"
	}
	if c.DBMaxOpenConns == 0 {
		c.DBMaxOpenConns = 25
	}
	if c.DBMaxIdleConns == 0 {
		c.DBMaxIdleConns = 5
	}
	if c.DBConnLifetime == 0 {
		c.DBConnLifetime = 5 * time.Minute
	}
	if c.DBConnIdleTime == 0 {
		c.DBConnIdleTime = 1 * time.Minute
	}
	if c.HTTPPort == "" {
		c.HTTPPort = "8080"
	}
	if c.RetryBaseDelay == 0 {
		c.RetryBaseDelay = 5 * time.Second
	}
	if c.StaleThreshold == 0 {
		c.StaleThreshold = 5 * time.Minute
	}
	if c.MaxRetentionSucceeded == 0 {
		c.MaxRetentionSucceeded = 1 * time.Hour
	}
	if c.MaxRetention == 0 {
		c.MaxRetention = 7 * 24 * time.Hour
	}
	if c.CleanupPerCall == 0 {
		c.CleanupPerCall = 1000
	}
	if c.CleanupInterval == 0 {
		c.CleanupInterval = 1 * time.Minute
	}
	if c.WorkerQueue == "" {
		c.WorkerQueue = "default"
	}
	if c.WorkerPollInterval == 0 {
		c.WorkerPollInterval = 2 * time.Second
	}
	if c.OTelCollector == "" {
		c.OTelCollector = "localhost:4317"
	}
}

func (c *Config) validate() error {
	switch c.DBDialect {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unknown JOBQUEUE_DB_DIALECT: %s", c.DBDialect)
	}
	if c.DBDSN == "" {
		return fmt.Errorf("JOBQUEUE_DB_DSN must not be empty")
	}
	return nil
}
