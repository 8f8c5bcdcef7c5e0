package project

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/uptask-dev/uptask/internal/auth"
	"github.com/uptask-dev/uptask/internal/httputil"
	"github.com/uptask-dev/uptask/internal/user"
)

func requestWithURLParam(method, key, value string) *http.Request {
	req := httptest.NewRequest(method, "/projects/"+value, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// The repository is only consulted once the path parameter parses, so the
// malformed-id rejection runs without a database.
func TestProjectCtxMalformedID(t *testing.T) {
	mw := NewMiddleware(nil)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next handler should not run")
	})

	req := requestWithURLParam(http.MethodGet, "projectID", "not-a-uuid")
	rec := httptest.NewRecorder()

	mw.ProjectCtx(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("got status %d, want 400", rec.Code)
	}

	var body httputil.ValidationErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(body.Fields) != 1 || body.Fields[0].Field != "projectID" {
		t.Errorf("got fields %v", body.Fields)
	}
}

func TestRequireManager(t *testing.T) {
	managerID := uuid.New()
	memberID := uuid.New()
	p := &Project{ID: uuid.New(), ManagerID: managerID}

	tests := []struct {
		name       string
		callerID   uuid.UUID
		wantStatus int
		wantNext   bool
	}{
		{name: "manager passes", callerID: managerID, wantStatus: http.StatusOK, wantNext: true},
		{name: "member rejected", callerID: memberID, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mw := NewMiddleware(nil)

			nextRan := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextRan = true
			})

			req := httptest.NewRequest(http.MethodPut, "/projects/"+p.ID.String(), nil)
			ctx := auth.WithCurrentUser(req.Context(), &user.Summary{ID: tt.callerID})
			ctx = context.WithValue(ctx, projectContextKey, p)
			rec := httptest.NewRecorder()

			mw.RequireManager(next).ServeHTTP(rec, req.WithContext(ctx))

			if nextRan != tt.wantNext {
				t.Errorf("next ran = %v, want %v", nextRan, tt.wantNext)
			}
			if !tt.wantNext && rec.Code != tt.wantStatus {
				t.Errorf("got status %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestRequireManagerUnauthenticated(t *testing.T) {
	mw := NewMiddleware(nil)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next handler should not run")
	})

	p := &Project{ID: uuid.New(), ManagerID: uuid.New()}
	req := httptest.NewRequest(http.MethodPut, "/projects/"+p.ID.String(), nil)
	ctx := context.WithValue(req.Context(), projectContextKey, p)
	rec := httptest.NewRecorder()

	mw.RequireManager(next).ServeHTTP(rec, req.WithContext(ctx))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("got status %d, want 401", rec.Code)
	}
}

func TestFromContext(t *testing.T) {
	if _, ok := FromContext(context.Background()); ok {
		t.Error("FromContext should report absence on a bare context")
	}

	p := &Project{ID: uuid.New()}
	ctx := context.WithValue(context.Background(), projectContextKey, p)
	got, ok := FromContext(ctx)
	if !ok || got.ID != p.ID {
		t.Errorf("got %+v, ok=%v", got, ok)
	}
}
