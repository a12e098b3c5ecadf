// Package sql implements store.Store on top of database/sql, supporting
// both PostgreSQL (via pgx/v5/stdlib) and SQLite (via modernc.org/sqlite)
// behind the same query surface, exactly as the teacher's
// internal/storage/sql package supports both backends for its own
// generation-job queue.
package sql

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // SQLite driver
)

//go:embed migrations/postgres/*.sql
var postgresMigrations embed.FS

//go:embed migrations/sqlite/*.sql
var sqliteMigrations embed.FS

// Dialect identifies which SQL backend a DBConfig targets.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// DBConfig holds database connection configuration.
type DBConfig struct {
	Dialect         Dialect
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// NewStore opens a database/sql connection for cfg.Dialect, runs embedded
// goose migrations, and returns a Store.
func NewStore(ctx context.Context, cfg DBConfig) (*Store, error) {
	driverName, gooseDialect, migrationsFS, migrationsDir, err := driverFor(cfg.Dialect)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driverName, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	maxOpenConns := cfg.MaxOpenConns
	if maxOpenConns <= 0 {
		maxOpenConns = 25
	}
	maxIdleConns := cfg.MaxIdleConns
	if maxIdleConns <= 0 {
		maxIdleConns = 5
	}
	connMaxLifetime := cfg.ConnMaxLifetime
	if connMaxLifetime <= 0 {
		connMaxLifetime = 5 * time.Minute
	}
	connMaxIdleTime := cfg.ConnMaxIdleTime
	if connMaxIdleTime <= 0 {
		connMaxIdleTime = 1 * time.Minute
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)
	db.SetConnMaxIdleTime(connMaxIdleTime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := runMigrations(db, gooseDialect, migrationsFS, migrationsDir); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return newStore(db, cfg.Dialect), nil
}

// NewPostgresStore opens a PostgreSQL-backed store with default pool settings.
func NewPostgresStore(ctx context.Context, dsn string) (*Store, error) {
	return NewStore(ctx, DBConfig{Dialect: DialectPostgres, DSN: dsn})
}

// NewSQLiteStore opens a SQLite-backed store with recommended pragmas for
// concurrent readers and a single writer.
func NewSQLiteStore(ctx context.Context, path string) (*Store, error) {
	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path)
	return NewStore(ctx, DBConfig{Dialect: DialectSQLite, DSN: dsn, MaxOpenConns: 1})
}

func driverFor(d Dialect) (driverName, gooseDialect string, fsys embed.FS, dir string, err error) {
	switch d {
	case DialectPostgres:
		return "pgx", "postgres", postgresMigrations, "migrations/postgres", nil
	case DialectSQLite:
		return "sqlite", "sqlite3", sqliteMigrations, "migrations/sqlite", nil
	default:
		return "", "", embed.FS{}, "", fmt.Errorf("unknown dialect %q", d)
	}
}

func runMigrations(db *sql.DB, gooseDialect string, fsys embed.FS, dir string) error {
	if err := goose.SetDialect(gooseDialect); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	goose.SetBaseFS(fsys)
	defer goose.SetBaseFS(nil)
	if err := goose.Up(db, dir); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}
