package handler

import (
	"time"

	"github.com/levuro/jobqueue/internal/domain"
)

// jobDTO is the wire representation of a domain.Job.
type jobDTO struct {
	ID            int64      `json:"id"`
	Command       string     `json:"command"`
	Args          []string   `json:"args"`
	State         string     `json:"state"`
	Queue         string     `json:"queue"`
	Priority      int        `json:"priority"`
	CreatedAt     time.Time  `json:"createdAt"`
	ExecuteAfter  time.Time  `json:"executeAfter"`
	StartedAt     *time.Time `json:"startedAt,omitempty"`
	CheckedAt     *time.Time `json:"checkedAt,omitempty"`
	ClosedAt      *time.Time `json:"closedAt,omitempty"`
	MaxRuntimeMs  int64      `json:"maxRuntimeMs,omitempty"`
	WorkerName    *string    `json:"workerName,omitempty"`
	Output        *string    `json:"output,omitempty"`
	ErrorOutput   *string    `json:"errorOutput,omitempty"`
	ExitCode      *int       `json:"exitCode,omitempty"`
	IsRetryJob    bool       `json:"isRetryJob"`
	OriginalJobID *int64     `json:"originalJobId,omitempty"`
	MaxRetries    int        `json:"maxRetries"`
}

func mapJob(j *domain.Job) jobDTO {
	return jobDTO{
		ID:            j.ID,
		Command:       j.Command,
		Args:          j.Args,
		State:         j.State.String(),
		Queue:         j.Queue,
		Priority:      j.Priority,
		CreatedAt:     j.CreatedAt,
		ExecuteAfter:  j.ExecuteAfter,
		StartedAt:     j.StartedAt,
		CheckedAt:     j.CheckedAt,
		ClosedAt:      j.ClosedAt,
		MaxRuntimeMs:  j.MaxRuntime.Milliseconds(),
		WorkerName:    j.WorkerName,
		Output:        j.Output,
		ErrorOutput:   j.ErrorOutput,
		ExitCode:      j.ExitCode,
		IsRetryJob:    j.IsRetryJob,
		OriginalJobID: j.OriginalJobID,
		MaxRetries:    j.MaxRetries,
	}
}

func mapJobs(jobs []*domain.Job) []jobDTO {
	out := make([]jobDTO, len(jobs))
	for i, j := range jobs {
		out[i] = mapJob(j)
	}
	return out
}

// jobDetailDTO adds the dependency edges to a job detail response.
type jobDetailDTO struct {
	jobDTO
	Incoming []jobDTO `json:"incoming"`
	Outgoing []jobDTO `json:"outgoing"`
}
