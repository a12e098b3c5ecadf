// Package depgraph resolves the dependency edges stored alongside jobs
// into the two directions the job manager's close() cascade needs:
// which jobs feed into a given job (incoming), and which jobs a given
// job feeds (outgoing).
package depgraph

import (
	"context"
	"fmt"

	"github.com/levuro/jobqueue/internal/domain"
	"github.com/levuro/jobqueue/internal/store"
)

// Graph resolves dependency edges against a store.Store.
type Graph struct {
	store store.Store
}

// New builds a Graph backed by s.
func New(s store.Store) *Graph {
	return &Graph{store: s}
}

// Incoming returns the jobs that job depends on (its prerequisites).
func (g *Graph) Incoming(ctx context.Context, job *domain.Job) ([]*domain.Job, error) {
	ids, err := g.store.IncomingJobIDs(ctx, job.ID)
	if err != nil {
		return nil, fmt.Errorf("incoming dependencies of job %d: %w", job.ID, err)
	}
	return g.store.GetJobs(ctx, ids)
}

// Outgoing returns the jobs that depend on job.
func (g *Graph) Outgoing(ctx context.Context, job *domain.Job) ([]*domain.Job, error) {
	ids, err := g.store.OutgoingJobIDs(ctx, job.ID)
	if err != nil {
		return nil, fmt.Errorf("outgoing dependents of job %d: %w", job.ID, err)
	}
	return g.store.GetJobs(ctx, ids)
}

// HasIncoming reports whether job is the dest of any dependency edge,
// i.e. whether job itself depends on at least one other job (the same
// check the retention guard makes before deleting a closed job).
func (g *Graph) HasIncoming(ctx context.Context, job *domain.Job) (bool, error) {
	return g.store.HasIncomingDependency(ctx, job.ID)
}
