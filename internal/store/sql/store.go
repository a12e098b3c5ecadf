package sql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/levuro/jobqueue/internal/domain"
	"github.com/levuro/jobqueue/internal/store"
)

// execer is satisfied by both *sql.DB and *sql.Tx, letting the read-only
// finder queries below run unmodified inside or outside a transaction.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// base holds the query surface shared between the top-level Store and an
// open Tx: every read-only finder is defined once here and promoted by
// both wrapper types.
type base struct {
	ex      execer
	dialect Dialect
}

// Store is a database/sql-backed store.Store implementation. It is safe
// for concurrent use by multiple goroutines.
type Store struct {
	base
	db *sql.DB
}

func newStore(db *sql.DB, dialect Dialect) *Store {
	return &Store{base: base{ex: db, dialect: dialect}, db: db}
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Begin opens a new transaction.
func (s *Store) Begin(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: begin transaction: %v", domain.ErrStorage, err)
	}
	return &txImpl{base: base{ex: tx, dialect: s.dialect}, tx: tx}, nil
}

// txImpl is a database/sql-backed store.Tx implementation.
type txImpl struct {
	base
	tx *sql.Tx
}

func (t *txImpl) Commit(ctx context.Context) error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit transaction: %v", domain.ErrStorage, err)
	}
	return nil
}

func (t *txImpl) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(); err != nil && err != sql.ErrTxDone {
		return fmt.Errorf("%w: rollback transaction: %v", domain.ErrStorage, err)
	}
	return nil
}

// InsertJob persists a new job and assigns its ID.
func (t *txImpl) InsertJob(ctx context.Context, job *domain.Job) (int64, error) {
	argsRaw, err := domain.EncodeArgs(job.Args)
	if err != nil {
		return 0, err
	}

	cols := []string{
		"command", "args", "state", "queue", "priority", "execute_after",
		"max_runtime_ms", "is_retry_job", "original_job_id", "max_retries",
	}
	vals := []any{
		job.Command, string(argsRaw), string(job.State), job.Queue, job.Priority, job.ExecuteAfter,
		millisFromNs(job.MaxRuntime), job.IsRetryJob, nullableInt64(job.OriginalJobID), job.MaxRetries,
	}

	placeholderList, _ := placeholders(t.dialect, 1, len(cols))
	query := fmt.Sprintf(
		"INSERT INTO jobs (%s) VALUES (%s)",
		strings.Join(cols, ", "), placeholderList,
	)

	if t.dialect == DialectPostgres {
		query += " RETURNING id"
		var id int64
		if err := t.ex.QueryRowContext(ctx, query, vals...).Scan(&id); err != nil {
			return 0, fmt.Errorf("%w: insert job: %v", domain.ErrStorage, err)
		}
		return id, nil
	}

	res, err := t.ex.ExecContext(ctx, query, vals...)
	if err != nil {
		return 0, fmt.Errorf("%w: insert job: %v", domain.ErrStorage, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%w: insert job: %v", domain.ErrStorage, err)
	}
	return id, nil
}

// UpdateJob persists all mutable fields of an already-inserted job.
func (t *txImpl) UpdateJob(ctx context.Context, job *domain.Job) error {
	argsRaw, err := domain.EncodeArgs(job.Args)
	if err != nil {
		return err
	}

	cols := []string{
		"command", "args", "state", "queue", "priority", "execute_after",
		"started_at", "checked_at", "closed_at", "max_runtime_ms", "worker_name",
		"output", "error_output", "exit_code", "is_retry_job", "original_job_id", "max_retries",
	}
	vals := []any{
		job.Command, string(argsRaw), string(job.State), job.Queue, job.Priority, job.ExecuteAfter,
		nullableTime(job.StartedAt), nullableTime(job.CheckedAt), nullableTime(job.ClosedAt),
		millisFromNs(job.MaxRuntime), nullableString(job.WorkerName),
		nullableString(job.Output), nullableString(job.ErrorOutput), nullableInt(job.ExitCode),
		job.IsRetryJob, nullableInt64(job.OriginalJobID), job.MaxRetries,
	}

	setClauses := make([]string, len(cols))
	idx := 1
	for i, c := range cols {
		setClauses[i] = fmt.Sprintf("%s = %s", c, ph(t.dialect, idx))
		idx++
	}
	vals = append(vals, job.ID)
	query := fmt.Sprintf(
		"UPDATE jobs SET %s WHERE id = %s",
		strings.Join(setClauses, ", "), ph(t.dialect, idx),
	)

	if _, err := t.ex.ExecContext(ctx, query, vals...); err != nil {
		return fmt.Errorf("%w: update job %d: %v", domain.ErrStorage, job.ID, err)
	}
	return nil
}

func (t *txImpl) DeleteJob(ctx context.Context, id int64) error {
	query := fmt.Sprintf("DELETE FROM jobs WHERE id = %s", ph(t.dialect, 1))
	if _, err := t.ex.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("%w: delete job %d: %v", domain.ErrStorage, id, err)
	}
	return nil
}

func (t *txImpl) InsertDependency(ctx context.Context, dep domain.Dependency) error {
	query := fmt.Sprintf(
		"INSERT INTO job_dependencies (source_job_id, dest_job_id) VALUES (%s, %s)",
		ph(t.dialect, 1), ph(t.dialect, 2),
	)
	if _, err := t.ex.ExecContext(ctx, query, dep.SourceJobID, dep.DestJobID); err != nil {
		if isForeignKeyViolation(err, "source_job_id") || isForeignKeyViolation(err, "dest_job_id") {
			return fmt.Errorf("%w: dependency %d -> %d references a nonexistent job: %v", domain.ErrNotFound, dep.SourceJobID, dep.DestJobID, err)
		}
		return fmt.Errorf("%w: insert dependency %d -> %d: %v", domain.ErrStorage, dep.SourceJobID, dep.DestJobID, err)
	}
	return nil
}

func (t *txImpl) DeleteDependenciesByDest(ctx context.Context, destJobID int64) error {
	query := fmt.Sprintf("DELETE FROM job_dependencies WHERE dest_job_id = %s", ph(t.dialect, 1))
	if _, err := t.ex.ExecContext(ctx, query, destJobID); err != nil {
		return fmt.Errorf("%w: delete dependencies for %d: %v", domain.ErrStorage, destJobID, err)
	}
	return nil
}

func (t *txImpl) InsertRelatedEntity(ctx context.Context, rel domain.RelatedEntity) error {
	query := fmt.Sprintf(
		"INSERT INTO job_related_entities (job_id, related_class, related_id) VALUES (%s, %s, %s)",
		ph(t.dialect, 1), ph(t.dialect, 2), ph(t.dialect, 3),
	)
	if _, err := t.ex.ExecContext(ctx, query, rel.JobID, rel.Class, string(rel.IDJSON)); err != nil {
		return fmt.Errorf("%w: insert related entity for job %d: %v", domain.ErrStorage, rel.JobID, err)
	}
	return nil
}

// ClaimAtomic is the single conditional UPDATE that grants exclusive
// execution rights to one worker. It never reads before writing: the
// WHERE clause itself is the compare-and-swap.
func (t *txImpl) ClaimAtomic(ctx context.Context, id int64, workerName string) (int64, error) {
	query := fmt.Sprintf(
		"UPDATE jobs SET worker_name = %s, state = %s, started_at = %s, checked_at = %s WHERE id = %s AND worker_name IS NULL",
		ph(t.dialect, 1), ph(t.dialect, 2), ph(t.dialect, 3), ph(t.dialect, 4), ph(t.dialect, 5),
	)
	now := time.Now().UTC()
	res, err := t.ex.ExecContext(ctx, query, workerName, string(domain.StateRunning), now, now, id)
	if err != nil {
		return 0, fmt.Errorf("%w: claim job %d: %v", domain.ErrStorage, id, err)
	}
	return res.RowsAffected()
}

func (t *txImpl) GetJob(ctx context.Context, id int64) (*domain.Job, error) {
	return t.base.GetJob(ctx, id)
}

// GetJob fetches a single job by id. It is shared by Store and Tx.
func (b *base) GetJob(ctx context.Context, id int64) (*domain.Job, error) {
	query := fmt.Sprintf("SELECT %s FROM jobs WHERE id = %s", jobColumns, ph(b.dialect, 1))
	row := b.ex.QueryRowContext(ctx, query, id)
	job, err := scanJob(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: job %d", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get job %d: %v", domain.ErrStorage, id, err)
	}
	return job, nil
}

// FindByCommand returns the first job (id ASC) with byte-exact matching
// command+args, or nil.
func (b *base) FindByCommand(ctx context.Context, command string, argsJSON []byte) (*domain.Job, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM jobs WHERE command = %s AND args = %s ORDER BY id ASC LIMIT 1",
		jobColumns, ph(b.dialect, 1), ph(b.dialect, 2),
	)
	row := b.ex.QueryRowContext(ctx, query, command, string(argsJSON))
	job, err := scanJob(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: find by command %q: %v", domain.ErrStorage, command, err)
	}
	return job, nil
}

// FindPending selects the single next PENDING candidate ordered by
// (priority ASC, id ASC), excluding the given ids/queues and, if
// restrictedQueues is non-empty, limited to those queues.
func (b *base) FindPending(ctx context.Context, excludedIDs []int64, excludedQueues, restrictedQueues []string, now time.Time) (*domain.Job, error) {
	var (
		conds []string
		args  []any
		idx   = 1
	)
	conds = append(conds, fmt.Sprintf("state = %s", ph(b.dialect, idx)))
	args = append(args, string(domain.StatePending))
	idx++

	conds = append(conds, fmt.Sprintf("execute_after <= %s", ph(b.dialect, idx)))
	args = append(args, now)
	idx++

	if len(excludedIDs) > 0 {
		list, next := placeholders(b.dialect, idx, len(excludedIDs))
		conds = append(conds, fmt.Sprintf("id NOT IN (%s)", list))
		for _, id := range excludedIDs {
			args = append(args, id)
		}
		idx = next
	}
	if len(excludedQueues) > 0 {
		list, next := placeholders(b.dialect, idx, len(excludedQueues))
		conds = append(conds, fmt.Sprintf("queue NOT IN (%s)", list))
		for _, q := range excludedQueues {
			args = append(args, q)
		}
		idx = next
	}
	if len(restrictedQueues) > 0 {
		list, next := placeholders(b.dialect, idx, len(restrictedQueues))
		conds = append(conds, fmt.Sprintf("queue IN (%s)", list))
		for _, q := range restrictedQueues {
			args = append(args, q)
		}
		idx = next
	}

	query := fmt.Sprintf(
		"SELECT %s FROM jobs WHERE %s ORDER BY priority ASC, id ASC LIMIT 1",
		jobColumns, strings.Join(conds, " AND "),
	)
	row := b.ex.QueryRowContext(ctx, query, args...)
	job, err := scanJob(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: find pending: %v", domain.ErrStorage, err)
	}
	return job, nil
}

func (b *base) IncomingJobIDs(ctx context.Context, destJobID int64) ([]int64, error) {
	query := fmt.Sprintf(
		"SELECT source_job_id FROM job_dependencies WHERE dest_job_id = %s ORDER BY source_job_id ASC",
		ph(b.dialect, 1),
	)
	return b.queryIDs(ctx, query, destJobID)
}

func (b *base) OutgoingJobIDs(ctx context.Context, sourceJobID int64) ([]int64, error) {
	query := fmt.Sprintf(
		"SELECT dest_job_id FROM job_dependencies WHERE source_job_id = %s ORDER BY dest_job_id ASC",
		ph(b.dialect, 1),
	)
	return b.queryIDs(ctx, query, sourceJobID)
}

func (b *base) queryIDs(ctx context.Context, query string, arg any) ([]int64, error) {
	rows, err := b.ex.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("%w: query ids: %v", domain.ErrStorage, err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: scan id: %v", domain.ErrStorage, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate ids: %v", domain.ErrStorage, err)
	}
	return ids, nil
}

func (b *base) GetJobs(ctx context.Context, ids []int64) ([]*domain.Job, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	list, _ := placeholders(b.dialect, 1, len(ids))
	query := fmt.Sprintf("SELECT %s FROM jobs WHERE id IN (%s)", jobColumns, list)
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return b.queryJobs(ctx, query, args...)
}

func (b *base) queryJobs(ctx context.Context, query string, args ...any) ([]*domain.Job, error) {
	rows, err := b.ex.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: query jobs: %v", domain.ErrStorage, err)
	}
	defer rows.Close()

	var jobs []*domain.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan job: %v", domain.ErrStorage, err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate jobs: %v", domain.ErrStorage, err)
	}
	return jobs, nil
}

func (b *base) FindForRelatedEntity(ctx context.Context, command string, class string, idJSON []byte, states []domain.JobState) (*domain.Job, error) {
	conds := []string{
		fmt.Sprintf("j.command = %s", ph(b.dialect, 1)),
		fmt.Sprintf("r.related_class = %s", ph(b.dialect, 2)),
		fmt.Sprintf("r.related_id = %s", ph(b.dialect, 3)),
	}
	args := []any{command, class, string(idJSON)}
	idx := 4
	if len(states) > 0 {
		list, next := placeholders(b.dialect, idx, len(states))
		conds = append(conds, fmt.Sprintf("j.state IN (%s)", list))
		for _, s := range states {
			args = append(args, string(s))
		}
		idx = next
	}

	query := fmt.Sprintf(
		`SELECT %s FROM jobs j
		 JOIN job_related_entities r ON r.job_id = j.id
		 WHERE %s ORDER BY j.id ASC LIMIT 1`,
		prefixedJobColumns("j"), strings.Join(conds, " AND "),
	)
	row := b.ex.QueryRowContext(ctx, query, args...)
	job, err := scanJob(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: find for related entity: %v", domain.ErrStorage, err)
	}
	return job, nil
}

func (b *base) FindAllForRelatedEntity(ctx context.Context, class string, idJSON []byte) ([]*domain.Job, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM jobs j
		 JOIN job_related_entities r ON r.job_id = j.id
		 WHERE r.related_class = %s AND r.related_id = %s
		 ORDER BY j.id ASC`,
		prefixedJobColumns("j"), ph(b.dialect, 1), ph(b.dialect, 2),
	)
	return b.queryJobs(ctx, query, class, string(idJSON))
}

func (b *base) FindLastErrored(ctx context.Context, limit int) ([]*domain.Job, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM jobs WHERE state IN (%s, %s, %s)
		 ORDER BY closed_at DESC LIMIT %s`,
		jobColumns, ph(b.dialect, 1), ph(b.dialect, 2), ph(b.dialect, 3), ph(b.dialect, 4),
	)
	return b.queryJobs(ctx, query,
		string(domain.StateFailed), string(domain.StateTerminated), string(domain.StateIncomplete), limit)
}

func (b *base) ListQueues(ctx context.Context) ([]string, error) {
	query := "SELECT DISTINCT queue FROM jobs ORDER BY queue ASC"
	rows, err := b.ex.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: list queues: %v", domain.ErrStorage, err)
	}
	defer rows.Close()

	var queues []string
	for rows.Next() {
		var q string
		if err := rows.Scan(&q); err != nil {
			return nil, fmt.Errorf("%w: scan queue: %v", domain.ErrStorage, err)
		}
		queues = append(queues, q)
	}
	return queues, rows.Err()
}

func (b *base) AvailableCount(ctx context.Context, queue string, now time.Time) (int, error) {
	query := fmt.Sprintf(
		"SELECT COUNT(*) FROM jobs WHERE queue = %s AND state = %s AND execute_after <= %s",
		ph(b.dialect, 1), ph(b.dialect, 2), ph(b.dialect, 3),
	)
	var count int
	err := b.ex.QueryRowContext(ctx, query, queue, string(domain.StatePending), now).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%w: available count for queue %q: %v", domain.ErrStorage, queue, err)
	}
	return count, nil
}

// FindStaleRunning selects one RUNNING job whose checkedAt predates
// staleBefore and whose id is not in excluded.
func (b *base) FindStaleRunning(ctx context.Context, excluded []int64, staleBefore time.Time) (*domain.Job, error) {
	conds := []string{
		fmt.Sprintf("state = %s", ph(b.dialect, 1)),
		fmt.Sprintf("checked_at < %s", ph(b.dialect, 2)),
	}
	args := []any{string(domain.StateRunning), staleBefore}
	idx := 3
	if len(excluded) > 0 {
		list, next := placeholders(b.dialect, idx, len(excluded))
		conds = append(conds, fmt.Sprintf("id NOT IN (%s)", list))
		for _, id := range excluded {
			args = append(args, id)
		}
		idx = next
	}
	query := fmt.Sprintf(
		"SELECT %s FROM jobs WHERE %s ORDER BY id ASC LIMIT 1",
		jobColumns, strings.Join(conds, " AND "),
	)
	row := b.ex.QueryRowContext(ctx, query, args...)
	job, err := scanJob(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: find stale running: %v", domain.ErrStorage, err)
	}
	return job, nil
}

// FindRetentionCandidates implements the three-pass retention scan, all
// three restricted to non-retry jobs (a retry job is retained as long as
// its original is observable):
//
// Pass 1: FINISHED jobs with closedAt < cutoff (maxRetentionSucceeded).
// Pass 2: the other closed states (FAILED/TERMINATED/INCOMPLETE/CANCELED)
// with closedAt < cutoff (maxRetention).
// Pass 3: CANCELED jobs with createdAt < cutoff — covers jobs canceled
// before ever running, which may have no closedAt.
//
// excluded lets a caller re-run the same pass without getting the same
// stuck candidate back, the same role excluded plays in FindStaleRunning.
func (b *base) FindRetentionCandidates(ctx context.Context, pass int, cutoff time.Time, limit int, excluded []int64) ([]*domain.Job, error) {
	nonSuccess := []any{
		string(domain.StateFailed), string(domain.StateTerminated),
		string(domain.StateIncomplete), string(domain.StateCanceled),
	}

	switch pass {
	case 1:
		conds := []string{
			fmt.Sprintf("state = %s", ph(b.dialect, 1)),
			fmt.Sprintf("closed_at < %s", ph(b.dialect, 2)),
			fmt.Sprintf("is_retry_job = %s", ph(b.dialect, 3)),
		}
		args := []any{string(domain.StateFinished), cutoff, falseValue(b.dialect)}
		idx := 4
		if len(excluded) > 0 {
			list, next := placeholders(b.dialect, idx, len(excluded))
			conds = append(conds, fmt.Sprintf("id NOT IN (%s)", list))
			for _, id := range excluded {
				args = append(args, id)
			}
			idx = next
		}
		query := fmt.Sprintf(
			"SELECT %s FROM jobs WHERE %s ORDER BY id ASC LIMIT %s",
			jobColumns, strings.Join(conds, " AND "), ph(b.dialect, idx),
		)
		args = append(args, limit)
		return b.queryJobs(ctx, query, args...)
	case 2:
		statesList, next := placeholders(b.dialect, 1, len(nonSuccess))
		conds := []string{
			fmt.Sprintf("state IN (%s)", statesList),
			fmt.Sprintf("closed_at < %s", ph(b.dialect, next)),
			fmt.Sprintf("is_retry_job = %s", ph(b.dialect, next+1)),
		}
		args := append(append([]any{}, nonSuccess...), cutoff, falseValue(b.dialect))
		idx := next + 2
		if len(excluded) > 0 {
			list, next2 := placeholders(b.dialect, idx, len(excluded))
			conds = append(conds, fmt.Sprintf("id NOT IN (%s)", list))
			for _, id := range excluded {
				args = append(args, id)
			}
			idx = next2
		}
		query := fmt.Sprintf(
			"SELECT %s FROM jobs WHERE %s ORDER BY id ASC LIMIT %s",
			jobColumns, strings.Join(conds, " AND "), ph(b.dialect, idx),
		)
		args = append(args, limit)
		return b.queryJobs(ctx, query, args...)
	case 3:
		conds := []string{
			fmt.Sprintf("state = %s", ph(b.dialect, 1)),
			fmt.Sprintf("created_at < %s", ph(b.dialect, 2)),
			fmt.Sprintf("is_retry_job = %s", ph(b.dialect, 3)),
		}
		args := []any{string(domain.StateCanceled), cutoff, falseValue(b.dialect)}
		idx := 4
		if len(excluded) > 0 {
			list, next := placeholders(b.dialect, idx, len(excluded))
			conds = append(conds, fmt.Sprintf("id NOT IN (%s)", list))
			for _, id := range excluded {
				args = append(args, id)
			}
			idx = next
		}
		query := fmt.Sprintf(
			"SELECT %s FROM jobs WHERE %s ORDER BY id ASC LIMIT %s",
			jobColumns, strings.Join(conds, " AND "), ph(b.dialect, idx),
		)
		args = append(args, limit)
		return b.queryJobs(ctx, query, args...)
	default:
		return nil, fmt.Errorf("%w: unknown retention pass %d", domain.ErrInvalidArgument, pass)
	}
}

// falseValue returns a dialect-appropriate literal for a boolean false
// comparison: SQLite has no native boolean and stores 0/1.
func falseValue(d Dialect) any {
	if d == DialectSQLite {
		return 0
	}
	return false
}

// RetryJobIDs returns the ids of every retry job recorded against
// originalJobID, in creation (id ASC) order.
func (b *base) RetryJobIDs(ctx context.Context, originalJobID int64) ([]int64, error) {
	query := fmt.Sprintf(
		"SELECT id FROM jobs WHERE original_job_id = %s ORDER BY id ASC",
		ph(b.dialect, 1),
	)
	return b.queryIDs(ctx, query, originalJobID)
}

func (b *base) HasIncomingDependency(ctx context.Context, destJobID int64) (bool, error) {
	query := fmt.Sprintf(
		"SELECT EXISTS (SELECT 1 FROM job_dependencies WHERE dest_job_id = %s)",
		ph(b.dialect, 1),
	)
	var exists bool
	if err := b.ex.QueryRowContext(ctx, query, destJobID).Scan(&exists); err != nil {
		return false, fmt.Errorf("%w: has incoming dependency for %d: %v", domain.ErrStorage, destJobID, err)
	}
	return exists, nil
}

func prefixedJobColumns(alias string) string {
	cols := strings.Split(strings.Join(strings.Fields(jobColumns), " "), ", ")
	for i, c := range cols {
		cols[i] = alias + "." + strings.TrimSuffix(c, ",")
	}
	return strings.Join(cols, ", ")
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullableInt(i *int) any {
	if i == nil {
		return nil
	}
	return *i
}

func nullableInt64(i *int64) any {
	if i == nil {
		return nil
	}
	return *i
}
