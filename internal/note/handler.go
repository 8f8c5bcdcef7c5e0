package note

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/uptask-dev/uptask/internal/auth"
	"github.com/uptask-dev/uptask/internal/httputil"
	"github.com/uptask-dev/uptask/internal/logging"
	"github.com/uptask-dev/uptask/internal/task"
	"github.com/uptask-dev/uptask/internal/validate"
)

// Handler contains HTTP handlers for note endpoints
type Handler struct {
	service *Service
	logger  *logging.Logger
}

func NewHandler(service *Service, logger *logging.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

type NoteRequest struct {
	Content string `json:"content" validate:"required"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// Create attaches a note to the task
// @Summary      Create a note
// @Tags         notes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        projectID path string true "Project ID"
// @Param        taskID path string true "Task ID"
// @Param        request body NoteRequest true "Note content"
// @Success      201 {object} Note
// @Failure      400 {object} httputil.ValidationErrorResponse
// @Router       /projects/{projectID}/tasks/{taskID}/notes [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	currentUser, ok := auth.CurrentUser(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	t, ok := task.FromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "task not found", httputil.CodeTaskNotFound, http.StatusNotFound)
		return
	}

	var req NoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}
	if fields := validate.Struct(&req); fields != nil {
		httputil.RespondValidationErrors(w, fields)
		return
	}

	n, err := h.service.Create(r.Context(), t.ID, currentUser.ID, req.Content)
	if err != nil {
		logger.Error("failed to create note", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to create note", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, n, http.StatusCreated)
}

// List returns the task's notes
// @Summary      List notes
// @Tags         notes
// @Produce      json
// @Security     BearerAuth
// @Param        projectID path string true "Project ID"
// @Param        taskID path string true "Task ID"
// @Success      200 {array} Note
// @Router       /projects/{projectID}/tasks/{taskID}/notes [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	t, ok := task.FromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "task not found", httputil.CodeTaskNotFound, http.StatusNotFound)
		return
	}

	notes, err := h.service.ListForTask(r.Context(), t.ID)
	if err != nil {
		logger.Error("failed to list notes", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to list notes", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, notes, http.StatusOK)
}

// Delete removes a note. Only its author may delete it.
// @Summary      Delete a note
// @Tags         notes
// @Produce      json
// @Security     BearerAuth
// @Param        projectID path string true "Project ID"
// @Param        taskID path string true "Task ID"
// @Param        noteID path string true "Note ID"
// @Success      200 {object} MessageResponse
// @Failure      401 {object} httputil.ErrorResponse "Not the author"
// @Failure      404 {object} httputil.ErrorResponse "Unknown note"
// @Router       /projects/{projectID}/tasks/{taskID}/notes/{noteID} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	currentUser, ok := auth.CurrentUser(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	t, ok := task.FromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "task not found", httputil.CodeTaskNotFound, http.StatusNotFound)
		return
	}

	noteID, err := uuid.Parse(chi.URLParam(r, "noteID"))
	if err != nil {
		httputil.RespondValidationErrors(w, []httputil.FieldError{
			{Field: "noteID", Message: "must be a valid id"},
		})
		return
	}

	if err := h.service.Delete(r.Context(), noteID, t.ID, currentUser.ID); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			httputil.RespondErrorWithCode(w, "note not found", httputil.CodeNoteNotFound, http.StatusNotFound)
		case errors.Is(err, ErrNotOwner):
			httputil.RespondErrorWithCode(w, "invalid action", httputil.CodeInvalidAction, http.StatusUnauthorized)
		default:
			logger.Error("failed to delete note", "error", err.Error())
			httputil.RespondErrorWithCode(w, "failed to delete note", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	httputil.RespondJSON(w, MessageResponse{Message: "Note deleted."}, http.StatusOK)
}
