// Package httpapi assembles the job queue's chi-routed JSON API: submit,
// find, getOrCreate, job detail, last-errored, related-entity lookup, and
// the queue-level listing/available-count endpoints from the core API,
// reachable over HTTP instead of only as Go function calls.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/levuro/jobqueue/internal/httpapi/handler"
)

// DefaultMaxBodyBytes caps request bodies at 1MB, preventing clients from
// accidentally or maliciously sending oversized payloads.
const DefaultMaxBodyBytes = 1 << 20

// Config holds configuration for the HTTP router.
type Config struct {
	MaxBodyBytes int64
}

// NewRouter builds the chi router with the standard middleware stack and
// every job-queue route mounted under server. The returned handler is
// already wrapped with otelhttp span/metric instrumentation.
func NewRouter(server *handler.Server, config Config) http.Handler {
	if config.MaxBodyBytes <= 0 {
		config.MaxBodyBytes = DefaultMaxBodyBytes
	}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(maxBodyBytes(config.MaxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/jobs", func(r chi.Router) {
		r.Post("/", server.Submit)
		r.Get("/find", server.Find)
		r.Post("/get-or-create", server.GetOrCreate)
		r.Get("/last-errored", server.LastErrored)
		r.Get("/find-for-related-entity", server.FindForRelatedEntity)
		r.Get("/find-all-for-related-entity", server.FindAllForRelatedEntity)
		r.Get("/{id}", server.Detail)
	})

	r.Route("/queues", func(r chi.Router) {
		r.Get("/", server.ListQueues)
		r.Get("/{queue}/available-count", server.AvailableCount)
	})

	return otelhttp.NewHandler(r, "jobqueue-api")
}

// maxBodyBytes rejects request bodies larger than limit.
func maxBodyBytes(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
