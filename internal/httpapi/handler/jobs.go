package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/levuro/jobqueue/internal/domain"
	"github.com/levuro/jobqueue/internal/httpapi/response"
	"github.com/levuro/jobqueue/internal/jobmanager"
)

// submitRequest is the POST /jobs body.
type submitRequest struct {
	Command         string                 `json:"command"`
	Args            []string               `json:"args"`
	Queue           string                 `json:"queue"`
	Priority        int                    `json:"priority"`
	MaxRetries      int                    `json:"maxRetries"`
	Dependencies    []int64                `json:"dependencies"`
	RelatedEntities []relatedEntityRequest `json:"relatedEntities"`
}

// relatedEntityRequest is one (class, id) association to attach to a
// submitted job. ID carries whatever JSON value the caller's business
// object is identified by; it is stored opaquely.
type relatedEntityRequest struct {
	Class string          `json:"class"`
	ID    json.RawMessage `json:"id"`
}

// Submit handles POST /jobs.
func (s *Server) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON")
		return
	}

	opts := []jobmanager.SubmitOption{
		jobmanager.WithPriority(req.Priority),
		jobmanager.WithMaxRetries(req.MaxRetries),
	}
	if req.Queue != "" {
		opts = append(opts, jobmanager.WithQueue(req.Queue))
	}
	if len(req.Dependencies) > 0 {
		opts = append(opts, jobmanager.WithDependencies(req.Dependencies...))
	}
	for _, re := range req.RelatedEntities {
		if re.Class == "" || len(re.ID) == 0 {
			response.ValidationError(w, "relatedEntities", "class and id are required for every entry")
			return
		}
		opts = append(opts, jobmanager.WithRelatedEntity(re.Class, []byte(re.ID)))
	}

	job, err := s.manager.Submit(r.Context(), req.Command, req.Args, opts...)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	response.Created(w, mapJob(job))
}

// Find handles GET /jobs/find?command=&args=a,b,c.
func (s *Server) Find(w http.ResponseWriter, r *http.Request) {
	command := r.URL.Query().Get("command")
	if command == "" {
		response.ValidationError(w, "command", "required query parameter missing")
		return
	}
	args := splitArgs(r.URL.Query().Get("args"))

	job, err := s.manager.Find(r.Context(), command, args)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	if job == nil {
		response.NotFound(w, "job")
		return
	}
	response.OK(w, mapJob(job))
}

// getOrCreateRequest is the POST /jobs/get-or-create body.
type getOrCreateRequest struct {
	Command string   `json:"command"`
	Args    []string `json:"args"`
}

// GetOrCreate handles POST /jobs/get-or-create.
func (s *Server) GetOrCreate(w http.ResponseWriter, r *http.Request) {
	var req getOrCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON")
		return
	}
	if req.Command == "" {
		response.ValidationError(w, "command", "required field missing")
		return
	}

	job, err := s.manager.GetOrCreate(r.Context(), req.Command, req.Args)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	response.OK(w, mapJob(job))
}

// Detail handles GET /jobs/{id}, including the job's dependency edges.
func (s *Server) Detail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.ValidationError(w, "id", "must be an integer")
		return
	}

	job, err := s.getter.GetJob(r.Context(), id)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	incoming, err := s.manager.Incoming(r.Context(), job)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	outgoing, err := s.manager.Outgoing(r.Context(), job)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.OK(w, jobDetailDTO{
		jobDTO:   mapJob(job),
		Incoming: mapJobs(incoming),
		Outgoing: mapJobs(outgoing),
	})
}

// FindForRelatedEntity handles
// GET /jobs/find-for-related-entity?command=&class=&id=&states=a,b.
func (s *Server) FindForRelatedEntity(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	command := q.Get("command")
	class := q.Get("class")
	id := q.Get("id")
	if command == "" || class == "" || id == "" {
		response.ValidationError(w, "command,class,id", "required query parameters missing")
		return
	}

	states, err := parseJobStates(splitArgs(q.Get("states")))
	if err != nil {
		response.ValidationError(w, "states", err.Error())
		return
	}

	job, err := s.manager.FindForRelatedEntity(r.Context(), command, class, []byte(id), states)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	if job == nil {
		response.NotFound(w, "job")
		return
	}
	response.OK(w, mapJob(job))
}

// FindAllForRelatedEntity handles
// GET /jobs/find-all-for-related-entity?class=&id=.
func (s *Server) FindAllForRelatedEntity(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	class := q.Get("class")
	id := q.Get("id")
	if class == "" || id == "" {
		response.ValidationError(w, "class,id", "required query parameters missing")
		return
	}

	jobs, err := s.manager.FindAllForRelatedEntity(r.Context(), class, []byte(id))
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	response.OK(w, mapJobs(jobs))
}

func parseJobStates(raw []string) ([]domain.JobState, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	states := make([]domain.JobState, 0, len(raw))
	for _, s := range raw {
		state, err := domain.NewJobState(s)
		if err != nil {
			return nil, err
		}
		states = append(states, state)
	}
	return states, nil
}

// LastErrored handles GET /jobs/last-errored?limit=.
func (s *Server) LastErrored(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			response.ValidationError(w, "limit", "must be a positive integer")
			return
		}
		limit = n
	}

	jobs, err := s.manager.FindLastErrored(r.Context(), limit)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	response.OK(w, mapJobs(jobs))
}

func splitArgs(raw string) []string {
	if raw == "" {
		return []string{}
	}
	var args []string
	start := 0
	for i := 0; i <= len(raw); i++ {
		if i == len(raw) || raw[i] == ',' {
			args = append(args, raw[start:i])
			start = i + 1
		}
	}
	return args
}
