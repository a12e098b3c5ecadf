package events

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// JobAvailableChannel is the Postgres NOTIFY channel a PostgresNotifier
// publishes to and a PostgresListener subscribes to when a job becomes
// claimable, letting workers in other processes wake immediately
// instead of waiting out their next poll tick.
const JobAvailableChannel = "jobqueue_job_available"

// PostgresNotifier publishes job-available signals over a dedicated
// pgx connection (LISTEN/NOTIFY has no database/sql equivalent, so this
// bypasses the store's connection pool deliberately). It is optional:
// a Manager with no notifier attached sends no notifications. A nil
// *PostgresNotifier is not usable: NotifyJobAvailable dereferences its
// connection.
type PostgresNotifier struct {
	conn *pgx.Conn
}

// NewPostgresNotifier dials a dedicated connection to dsn for NOTIFY.
func NewPostgresNotifier(ctx context.Context, dsn string) (*PostgresNotifier, error) {
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting job-available notifier: %w", err)
	}
	return &PostgresNotifier{conn: conn}, nil
}

// NotifyJobAvailable sends queue as the payload of a NOTIFY on
// JobAvailableChannel.
func (n *PostgresNotifier) NotifyJobAvailable(ctx context.Context, queue string) error {
	_, err := n.conn.Exec(ctx, "SELECT pg_notify($1, $2)", JobAvailableChannel, queue)
	return err
}

// Close releases the dedicated connection.
func (n *PostgresNotifier) Close(ctx context.Context) error {
	return n.conn.Close(ctx)
}

// PostgresListener subscribes to JobAvailableChannel on its own
// dedicated connection and hands notification payloads to the caller
// one at a time.
type PostgresListener struct {
	conn *pgx.Conn
}

// NewPostgresListener dials a dedicated connection to dsn and issues
// LISTEN for JobAvailableChannel.
func NewPostgresListener(ctx context.Context, dsn string) (*PostgresListener, error) {
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting job-available listener: %w", err)
	}
	if _, err := conn.Exec(ctx, "LISTEN "+JobAvailableChannel); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("issuing LISTEN: %w", err)
	}
	return &PostgresListener{conn: conn}, nil
}

// Next blocks until a notification arrives on JobAvailableChannel or ctx
// is done, returning the queue name carried as its payload.
func (l *PostgresListener) Next(ctx context.Context) (string, error) {
	notification, err := l.conn.WaitForNotification(ctx)
	if err != nil {
		return "", err
	}
	return notification.Payload, nil
}

// Close releases the dedicated connection.
func (l *PostgresListener) Close(ctx context.Context) error {
	return l.conn.Close(ctx)
}
