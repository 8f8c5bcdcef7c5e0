package task

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func TestTaskCtxMalformedID(t *testing.T) {
	mw := NewMiddleware(nil)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next handler should not run")
	})

	req := httptest.NewRequest(http.MethodGet, "/tasks/not-a-uuid", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("taskID", "not-a-uuid")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	rec := httptest.NewRecorder()

	mw.TaskCtx(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("got status %d, want 400", rec.Code)
	}
}

func TestFromContext(t *testing.T) {
	if _, ok := FromContext(context.Background()); ok {
		t.Error("FromContext should report absence on a bare context")
	}

	task := &Task{ID: uuid.New(), Status: StatusPending}
	ctx := context.WithValue(context.Background(), taskContextKey, task)
	got, ok := FromContext(ctx)
	if !ok || got.ID != task.ID {
		t.Errorf("got %+v, ok=%v", got, ok)
	}
}
