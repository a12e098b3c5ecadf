package jobmanager

import (
	"time"

	"github.com/levuro/jobqueue/internal/domain"
)

// submitOptions collects the optional parameters of Submit.
type submitOptions struct {
	queue           string
	priority        int
	maxRetries      int
	dependencies    []int64
	executeAfter    time.Time
	relatedEntities []domain.RelatedEntity
}

// SubmitOption customizes a Submit call.
type SubmitOption func(*submitOptions)

// WithQueue overrides the default queue ("default").
func WithQueue(queue string) SubmitOption {
	return func(o *submitOptions) { o.queue = queue }
}

// WithPriority sets the job's priority; lower values run first.
func WithPriority(priority int) SubmitOption {
	return func(o *submitOptions) { o.priority = priority }
}

// WithMaxRetries sets the number of retry attempts permitted on failure.
func WithMaxRetries(maxRetries int) SubmitOption {
	return func(o *submitOptions) { o.maxRetries = maxRetries }
}

// WithDependencies records the ids of jobs that must reach FINISHED
// before the submitted job may run.
func WithDependencies(ids ...int64) SubmitOption {
	return func(o *submitOptions) { o.dependencies = ids }
}

// WithExecuteAfter delays eligibility until t.
func WithExecuteAfter(t time.Time) SubmitOption {
	return func(o *submitOptions) { o.executeAfter = t }
}

// WithRelatedEntity associates the submitted job with an external
// business object identified by (class, idJSON). A job may carry more
// than one related entity; call WithRelatedEntity once per association.
func WithRelatedEntity(class string, idJSON []byte) SubmitOption {
	return func(o *submitOptions) {
		o.relatedEntities = append(o.relatedEntities, domain.RelatedEntity{Class: class, IDJSON: idJSON})
	}
}

func defaultSubmitOptions() submitOptions {
	return submitOptions{
		queue:        domain.DefaultQueue,
		priority:     0,
		maxRetries:   0,
		executeAfter: time.Now().UTC(),
	}
}
