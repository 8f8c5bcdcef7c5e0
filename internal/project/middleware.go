package project

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/uptask-dev/uptask/internal/auth"
	"github.com/uptask-dev/uptask/internal/httputil"
)

type contextKey string

const projectContextKey contextKey = "project"

// Middleware resolves and authorizes projects from URL path parameters
type Middleware struct {
	repo *Repository
}

func NewMiddleware(repo *Repository) *Middleware {
	return &Middleware{repo: repo}
}

// ProjectCtx resolves the {projectID} path parameter into a project and
// attaches it to the request context. A miss halts the chain with 404.
func (m *Middleware) ProjectCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		projectID, err := uuid.Parse(chi.URLParam(r, "projectID"))
		if err != nil {
			httputil.RespondValidationErrors(w, []httputil.FieldError{
				{Field: "projectID", Message: "must be a valid id"},
			})
			return
		}

		p, err := m.repo.GetByID(r.Context(), projectID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				httputil.RespondErrorWithCode(w, "project not found", httputil.CodeProjectNotFound, http.StatusNotFound)
				return
			}
			httputil.RespondErrorWithCode(w, "something went wrong", httputil.CodeInternalError, http.StatusInternalServerError)
			return
		}

		ctx := context.WithValue(r.Context(), projectContextKey, p)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireManager halts the chain unless the authenticated user is the
// resolved project's manager. Applied to mutation routes only.
func (m *Middleware) RequireManager(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		currentUser, ok := auth.CurrentUser(r.Context())
		if !ok {
			httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
			return
		}

		p, ok := FromContext(r.Context())
		if !ok {
			httputil.RespondErrorWithCode(w, "project not found", httputil.CodeProjectNotFound, http.StatusNotFound)
			return
		}

		if currentUser.ID != p.ManagerID {
			httputil.RespondErrorWithCode(w, "invalid action", httputil.CodeInvalidAction, http.StatusBadRequest)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// FromContext extracts the resolved project from the request context
func FromContext(ctx context.Context) (*Project, bool) {
	p, ok := ctx.Value(projectContextKey).(*Project)
	return p, ok
}
