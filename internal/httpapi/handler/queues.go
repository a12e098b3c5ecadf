package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/levuro/jobqueue/internal/httpapi/response"
)

// ListQueues handles GET /queues.
func (s *Server) ListQueues(w http.ResponseWriter, r *http.Request) {
	queues, err := s.manager.ListQueues(r.Context())
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	if queues == nil {
		queues = []string{}
	}
	response.OK(w, queues)
}

// availableCountDTO is the GET /queues/{queue}/available-count body.
type availableCountDTO struct {
	Queue     string `json:"queue"`
	Available int    `json:"available"`
}

// AvailableCount handles GET /queues/{queue}/available-count.
func (s *Server) AvailableCount(w http.ResponseWriter, r *http.Request) {
	queue := chi.URLParam(r, "queue")
	if queue == "" {
		response.ValidationError(w, "queue", "required path segment missing")
		return
	}

	count, err := s.manager.AvailableCount(r.Context(), queue)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	response.OK(w, availableCountDTO{Queue: queue, Available: count})
}
