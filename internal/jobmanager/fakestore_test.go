package jobmanager_test

import (
	"context"
	"sort"
	"time"

	"github.com/levuro/jobqueue/internal/domain"
	"github.com/levuro/jobqueue/internal/store"
)

// fakeStore is a minimal, non-concurrent in-memory store.Store used to
// exercise the job manager's orchestration logic without a database.
// Begin returns a Tx that mutates the same maps directly; Rollback is a
// no-op, so tests must not depend on partial-write rollback.
type fakeStore struct {
	jobs    map[int64]*domain.Job
	deps    []domain.Dependency
	related []domain.RelatedEntity
	nextID  int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{jobs: make(map[int64]*domain.Job)}
}

func copyJob(j *domain.Job) *domain.Job {
	if j == nil {
		return nil
	}
	cp := *j
	return &cp
}

func (s *fakeStore) Begin(context.Context) (store.Tx, error) { return &fakeTx{s: s}, nil }
func (s *fakeStore) Close() error                            { return nil }

func (s *fakeStore) GetJob(_ context.Context, id int64) (*domain.Job, error) {
	j, ok := s.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyJob(j), nil
}

func (s *fakeStore) FindByCommand(_ context.Context, command string, argsJSON []byte) (*domain.Job, error) {
	var ids []int64
	for id, j := range s.jobs {
		args, err := domain.EncodeArgs(j.Args)
		if err != nil {
			return nil, err
		}
		if j.Command == command && string(args) == string(argsJSON) {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}
	sort.Slice(ids, func(i, k int) bool { return ids[i] < ids[k] })
	return copyJob(s.jobs[ids[0]]), nil
}

func (s *fakeStore) FindPending(_ context.Context, excludedIDs []int64, excludedQueues, restrictedQueues []string, now time.Time) (*domain.Job, error) {
	excluded := toSet(excludedIDs)
	excludedQ := toStrSet(excludedQueues)
	restrictedQ := toStrSet(restrictedQueues)

	var candidates []*domain.Job
	for _, j := range s.jobs {
		if j.State != domain.StatePending {
			continue
		}
		if excluded[j.ID] {
			continue
		}
		if excludedQ[j.Queue] {
			continue
		}
		if len(restrictedQ) > 0 && !restrictedQ[j.Queue] {
			continue
		}
		if j.ExecuteAfter.After(now) {
			continue
		}
		candidates = append(candidates, j)
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	sort.Slice(candidates, func(i, k int) bool {
		if candidates[i].Priority != candidates[k].Priority {
			return candidates[i].Priority < candidates[k].Priority
		}
		return candidates[i].ID < candidates[k].ID
	})
	return copyJob(candidates[0]), nil
}

func (s *fakeStore) IncomingJobIDs(_ context.Context, destJobID int64) ([]int64, error) {
	var ids []int64
	for _, d := range s.deps {
		if d.DestJobID == destJobID {
			ids = append(ids, d.SourceJobID)
		}
	}
	return ids, nil
}

func (s *fakeStore) OutgoingJobIDs(_ context.Context, sourceJobID int64) ([]int64, error) {
	var ids []int64
	for _, d := range s.deps {
		if d.SourceJobID == sourceJobID {
			ids = append(ids, d.DestJobID)
		}
	}
	return ids, nil
}

func (s *fakeStore) GetJobs(_ context.Context, ids []int64) ([]*domain.Job, error) {
	out := make([]*domain.Job, 0, len(ids))
	for _, id := range ids {
		if j, ok := s.jobs[id]; ok {
			out = append(out, copyJob(j))
		}
	}
	return out, nil
}

func (s *fakeStore) FindForRelatedEntity(_ context.Context, command, class string, idJSON []byte, states []domain.JobState) (*domain.Job, error) {
	allowed := toJobStateSet(states)
	var ids []int64
	for _, re := range s.related {
		if re.Class != class || string(re.IDJSON) != string(idJSON) {
			continue
		}
		j, ok := s.jobs[re.JobID]
		if !ok || j.Command != command {
			continue
		}
		if len(allowed) > 0 && !allowed[j.State] {
			continue
		}
		ids = append(ids, j.ID)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	sort.Slice(ids, func(i, k int) bool { return ids[i] < ids[k] })
	return copyJob(s.jobs[ids[0]]), nil
}

func (s *fakeStore) FindAllForRelatedEntity(_ context.Context, class string, idJSON []byte) ([]*domain.Job, error) {
	var out []*domain.Job
	for _, re := range s.related {
		if re.Class != class || string(re.IDJSON) != string(idJSON) {
			continue
		}
		if j, ok := s.jobs[re.JobID]; ok {
			out = append(out, copyJob(j))
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ID < out[k].ID })
	return out, nil
}

func toJobStateSet(states []domain.JobState) map[domain.JobState]bool {
	m := make(map[domain.JobState]bool, len(states))
	for _, s := range states {
		m[s] = true
	}
	return m
}

func (s *fakeStore) FindLastErrored(_ context.Context, limit int) ([]*domain.Job, error) {
	var out []*domain.Job
	for _, j := range s.jobs {
		switch j.State {
		case domain.StateFailed, domain.StateTerminated, domain.StateIncomplete, domain.StateCanceled:
			out = append(out, copyJob(j))
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ID > out[k].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *fakeStore) ListQueues(context.Context) ([]string, error) {
	set := map[string]bool{}
	for _, j := range s.jobs {
		set[j.Queue] = true
	}
	var out []string
	for q := range set {
		out = append(out, q)
	}
	sort.Strings(out)
	return out, nil
}

func (s *fakeStore) AvailableCount(_ context.Context, queue string, now time.Time) (int, error) {
	n := 0
	for _, j := range s.jobs {
		if j.Queue == queue && j.State == domain.StatePending && !j.ExecuteAfter.After(now) {
			n++
		}
	}
	return n, nil
}

func (s *fakeStore) FindStaleRunning(_ context.Context, excluded []int64, staleBefore time.Time) (*domain.Job, error) {
	ex := toSet(excluded)
	var candidates []*domain.Job
	for _, j := range s.jobs {
		if j.State != domain.StateRunning || ex[j.ID] {
			continue
		}
		if j.CheckedAt == nil || j.CheckedAt.After(staleBefore) {
			continue
		}
		candidates = append(candidates, j)
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	sort.Slice(candidates, func(i, k int) bool { return candidates[i].ID < candidates[k].ID })
	return copyJob(candidates[0]), nil
}

func (s *fakeStore) FindRetentionCandidates(_ context.Context, pass int, cutoff time.Time, limit int, excluded []int64) ([]*domain.Job, error) {
	ex := toSet(excluded)
	var out []*domain.Job
	for _, j := range s.jobs {
		if ex[j.ID] || j.ClosedAt == nil || j.ClosedAt.After(cutoff) {
			continue
		}
		switch pass {
		case 1:
			if j.State != domain.StateFinished {
				continue
			}
		case 2, 3:
			if j.State == domain.StateFinished {
				continue
			}
		}
		out = append(out, copyJob(j))
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ID < out[k].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *fakeStore) HasIncomingDependency(_ context.Context, destJobID int64) (bool, error) {
	for _, d := range s.deps {
		if d.DestJobID == destJobID {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) RetryJobIDs(_ context.Context, originalJobID int64) ([]int64, error) {
	var ids []int64
	var jobs []*domain.Job
	for _, j := range s.jobs {
		if j.IsRetryJob && j.OriginalJobID != nil && *j.OriginalJobID == originalJobID {
			jobs = append(jobs, j)
		}
	}
	sort.Slice(jobs, func(i, k int) bool { return jobs[i].ID < jobs[k].ID })
	for _, j := range jobs {
		ids = append(ids, j.ID)
	}
	return ids, nil
}

// fakeTx mutates fakeStore's maps directly; Rollback is a no-op.
type fakeTx struct{ s *fakeStore }

func (t *fakeTx) Commit(context.Context) error   { return nil }
func (t *fakeTx) Rollback(context.Context) error { return nil }

func (t *fakeTx) InsertJob(_ context.Context, job *domain.Job) (int64, error) {
	t.s.nextID++
	job.ID = t.s.nextID
	t.s.jobs[job.ID] = copyJob(job)
	return job.ID, nil
}

func (t *fakeTx) UpdateJob(_ context.Context, job *domain.Job) error {
	if _, ok := t.s.jobs[job.ID]; !ok {
		return domain.ErrNotFound
	}
	t.s.jobs[job.ID] = copyJob(job)
	return nil
}

func (t *fakeTx) DeleteJob(_ context.Context, id int64) error {
	delete(t.s.jobs, id)
	return nil
}

func (t *fakeTx) InsertDependency(_ context.Context, dep domain.Dependency) error {
	if _, ok := t.s.jobs[dep.SourceJobID]; !ok {
		return domain.ErrNotFound
	}
	if _, ok := t.s.jobs[dep.DestJobID]; !ok {
		return domain.ErrNotFound
	}
	t.s.deps = append(t.s.deps, dep)
	return nil
}

func (t *fakeTx) DeleteDependenciesByDest(_ context.Context, destJobID int64) error {
	kept := t.s.deps[:0]
	for _, d := range t.s.deps {
		if d.DestJobID != destJobID {
			kept = append(kept, d)
		}
	}
	t.s.deps = kept
	return nil
}

func (t *fakeTx) InsertRelatedEntity(_ context.Context, re domain.RelatedEntity) error {
	if _, ok := t.s.jobs[re.JobID]; !ok {
		return domain.ErrNotFound
	}
	t.s.related = append(t.s.related, re)
	return nil
}

func (t *fakeTx) RetryJobIDs(ctx context.Context, originalJobID int64) ([]int64, error) {
	return t.s.RetryJobIDs(ctx, originalJobID)
}

func (t *fakeTx) IncomingJobIDs(ctx context.Context, destJobID int64) ([]int64, error) {
	return t.s.IncomingJobIDs(ctx, destJobID)
}

func (t *fakeTx) OutgoingJobIDs(ctx context.Context, sourceJobID int64) ([]int64, error) {
	return t.s.OutgoingJobIDs(ctx, sourceJobID)
}

func (t *fakeTx) ClaimAtomic(_ context.Context, id int64, workerName string) (int64, error) {
	j, ok := t.s.jobs[id]
	if !ok {
		return 0, domain.ErrNotFound
	}
	if j.WorkerName != nil {
		return 0, nil
	}
	name := workerName
	j.WorkerName = &name
	j.State = domain.StateRunning
	now := time.Now().UTC()
	j.StartedAt = &now
	j.CheckedAt = &now
	return 1, nil
}

func (t *fakeTx) GetJob(ctx context.Context, id int64) (*domain.Job, error) {
	return t.s.GetJob(ctx, id)
}

func toSet(ids []int64) map[int64]bool {
	m := make(map[int64]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}

func toStrSet(ss []string) map[string]bool {
	m := make(map[string]bool, len(ss))
	for _, s := range ss {
		m[s] = true
	}
	return m
}
