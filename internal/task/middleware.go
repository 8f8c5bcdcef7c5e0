package task

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/uptask-dev/uptask/internal/httputil"
	"github.com/uptask-dev/uptask/internal/project"
)

type contextKey string

const taskContextKey contextKey = "task"

// Middleware resolves tasks from URL path parameters
type Middleware struct {
	repo *Repository
}

func NewMiddleware(repo *Repository) *Middleware {
	return &Middleware{repo: repo}
}

// TaskCtx resolves the {taskID} path parameter into a task and attaches it
// to the request context. The task must belong to the project resolved
// earlier in the chain; a task reached through the wrong project's URL is
// rejected rather than served.
func (m *Middleware) TaskCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		taskID, err := uuid.Parse(chi.URLParam(r, "taskID"))
		if err != nil {
			httputil.RespondValidationErrors(w, []httputil.FieldError{
				{Field: "taskID", Message: "must be a valid id"},
			})
			return
		}

		t, err := m.repo.GetByID(r.Context(), taskID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				httputil.RespondErrorWithCode(w, "task not found", httputil.CodeTaskNotFound, http.StatusNotFound)
				return
			}
			httputil.RespondErrorWithCode(w, "something went wrong", httputil.CodeInternalError, http.StatusInternalServerError)
			return
		}

		p, ok := project.FromContext(r.Context())
		if !ok || t.ProjectID != p.ID {
			httputil.RespondErrorWithCode(w, "invalid action", httputil.CodeInvalidAction, http.StatusBadRequest)
			return
		}

		ctx := context.WithValue(r.Context(), taskContextKey, t)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// FromContext extracts the resolved task from the request context
func FromContext(ctx context.Context) (*Task, bool) {
	t, ok := ctx.Value(taskContextKey).(*Task)
	return t, ok
}
