// Package handler implements the job queue's HTTP handlers, following the
// teacher's internal/http/handler split: one Server struct holding the
// collaborator, one file per resource group.
package handler

import (
	"context"

	"github.com/levuro/jobqueue/internal/domain"
	"github.com/levuro/jobqueue/internal/jobmanager"
)

// jobManager is the subset of *jobmanager.Manager the handlers call. It
// exists so handler tests can substitute a fake without a real store.
type jobManager interface {
	Submit(ctx context.Context, command string, args []string, opts ...jobmanager.SubmitOption) (*domain.Job, error)
	Find(ctx context.Context, command string, args []string) (*domain.Job, error)
	GetOrCreate(ctx context.Context, command string, args []string) (*domain.Job, error)
	Incoming(ctx context.Context, job *domain.Job) ([]*domain.Job, error)
	Outgoing(ctx context.Context, job *domain.Job) ([]*domain.Job, error)
	FindForRelatedEntity(ctx context.Context, command, class string, idJSON []byte, states []domain.JobState) (*domain.Job, error)
	FindAllForRelatedEntity(ctx context.Context, class string, idJSON []byte) ([]*domain.Job, error)
	FindLastErrored(ctx context.Context, n int) ([]*domain.Job, error)
	ListQueues(ctx context.Context) ([]string, error)
	AvailableCount(ctx context.Context, queue string) (int, error)
}

// jobGetter is the read-only store method handlers need directly, since
// jobManager has no bare GetJob(id) by design (the store does).
type jobGetter interface {
	GetJob(ctx context.Context, id int64) (*domain.Job, error)
}

// Server holds the job queue API's collaborators and implements every
// route registered in NewRouter.
type Server struct {
	manager jobManager
	getter  jobGetter
}

// NewServer builds a Server. getter is typically the same store.Store the
// manager was built over.
func NewServer(manager jobManager, getter jobGetter) *Server {
	return &Server{manager: manager, getter: getter}
}
