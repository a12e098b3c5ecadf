package response_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/levuro/jobqueue/internal/domain"
	"github.com/levuro/jobqueue/internal/httpapi/response"
)

func TestFromDomainError_MapsSentinelsToStatusCodes(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"invalid argument", fmt.Errorf("%w: bad", domain.ErrInvalidArgument), http.StatusBadRequest},
		{"invalid state", fmt.Errorf("%w: bad transition", domain.ErrInvalidState), http.StatusBadRequest},
		{"not found", fmt.Errorf("%w: job 1", domain.ErrNotFound), http.StatusNotFound},
		{"conflict", fmt.Errorf("%w: race", domain.ErrConflict), http.StatusConflict},
		{"storage", fmt.Errorf("%w: db down", domain.ErrStorage), http.StatusInternalServerError},
		{"serialization", fmt.Errorf("%w: bad json", domain.ErrSerialization), http.StatusInternalServerError},
		{"unknown", fmt.Errorf("something else"), http.StatusInternalServerError},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			response.FromDomainError(rec, req, c.err)
			assert.Equal(t, c.want, rec.Code)
		})
	}
}

func TestInternalError_NeverLeaksCauseToClient(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	response.InternalError(rec, req, fmt.Errorf("connection string password=hunter2"))
	assert.NotContains(t, rec.Body.String(), "hunter2")
	assert.Contains(t, rec.Body.String(), "an internal error occurred")
}

func TestOK_WritesStatusAndBody(t *testing.T) {
	rec := httptest.NewRecorder()
	response.OK(rec, map[string]string{"hello": "world"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"hello":"world"}`, rec.Body.String())
}

func TestCreated_WritesStatus201(t *testing.T) {
	rec := httptest.NewRecorder()
	response.Created(rec, map[string]int{"id": 1})
	assert.Equal(t, http.StatusCreated, rec.Code)
}
