package sql

import (
	"fmt"
	"strings"

	"github.com/levuro/jobqueue/internal/domain"
)

// ph returns the dialect-appropriate positional placeholder for argument
// index n (1-based): "$n" for PostgreSQL, "?" for SQLite.
func ph(dialect Dialect, n int) string {
	if dialect == DialectPostgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// placeholders returns a comma-joined list of count placeholders starting
// at argument index `from` (1-based), and the next free index.
func placeholders(dialect Dialect, from, count int) (string, int) {
	parts := make([]string, count)
	for i := 0; i < count; i++ {
		parts[i] = ph(dialect, from+i)
	}
	return strings.Join(parts, ", "), from + count
}

const jobColumns = `id, command, args, state, queue, priority, created_at, execute_after,
	started_at, checked_at, closed_at, max_runtime_ms, worker_name, output, error_output,
	exit_code, is_retry_job, original_job_id, max_retries`

// rowScanner abstracts *sql.Row and *sql.Rows for scanJob.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*domain.Job, error) {
	var (
		j             domain.Job
		argsRaw       string
		maxRuntimeMS  int64
		startedAt     sqlNullTime
		checkedAt     sqlNullTime
		closedAt      sqlNullTime
		workerName    sqlNullString
		output        sqlNullString
		errorOutput   sqlNullString
		exitCode      sqlNullInt64
		isRetryJob    bool
		originalJobID sqlNullInt64
	)

	if err := row.Scan(
		&j.ID, &j.Command, &argsRaw, &j.State, &j.Queue, &j.Priority,
		&j.CreatedAt, &j.ExecuteAfter,
		&startedAt, &checkedAt, &closedAt,
		&maxRuntimeMS, &workerName, &output, &errorOutput, &exitCode,
		&isRetryJob, &originalJobID, &j.MaxRetries,
	); err != nil {
		return nil, err
	}

	args, err := domain.DecodeArgs([]byte(argsRaw))
	if err != nil {
		return nil, err
	}
	j.Args = args
	j.MaxRuntime = nsFromMillis(maxRuntimeMS)
	j.IsRetryJob = isRetryJob

	if startedAt.Valid {
		t := startedAt.Time
		j.StartedAt = &t
	}
	if checkedAt.Valid {
		t := checkedAt.Time
		j.CheckedAt = &t
	}
	if closedAt.Valid {
		t := closedAt.Time
		j.ClosedAt = &t
	}
	if workerName.Valid {
		v := workerName.String
		j.WorkerName = &v
	}
	if output.Valid {
		v := output.String
		j.Output = &v
	}
	if errorOutput.Valid {
		v := errorOutput.String
		j.ErrorOutput = &v
	}
	if exitCode.Valid {
		v := int(exitCode.Int64)
		j.ExitCode = &v
	}
	if originalJobID.Valid {
		v := originalJobID.Int64
		j.OriginalJobID = &v
	}

	return &j, nil
}
