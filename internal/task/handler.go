package task

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/uptask-dev/uptask/internal/auth"
	"github.com/uptask-dev/uptask/internal/httputil"
	"github.com/uptask-dev/uptask/internal/logging"
	"github.com/uptask-dev/uptask/internal/project"
	"github.com/uptask-dev/uptask/internal/validate"
)

// Handler contains HTTP handlers for task endpoints
type Handler struct {
	service *Service
	logger  *logging.Logger
}

func NewHandler(service *Service, logger *logging.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

type TaskRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description" validate:"required"`
}

type StatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending onHold inProgress underReview completed"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// Create adds a task to the project (manager only, enforced upstream)
// @Summary      Create a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        projectID path string true "Project ID"
// @Param        request body TaskRequest true "Task data"
// @Success      201 {object} Task
// @Failure      400 {object} httputil.ValidationErrorResponse
// @Router       /projects/{projectID}/tasks [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	p, ok := project.FromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "project not found", httputil.CodeProjectNotFound, http.StatusNotFound)
		return
	}

	var req TaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	t, err := h.service.Create(r.Context(), p.ID, req.Name, req.Description)
	if err != nil {
		logger.Error("failed to create task", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to create task", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, t, http.StatusCreated)
}

// List returns the project's tasks
// @Summary      List tasks
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        projectID path string true "Project ID"
// @Success      200 {array} Task
// @Router       /projects/{projectID}/tasks [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	p, ok := project.FromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "project not found", httputil.CodeProjectNotFound, http.StatusNotFound)
		return
	}

	tasks, err := h.service.ListForProject(r.Context(), p.ID)
	if err != nil {
		logger.Error("failed to list tasks", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to list tasks", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, tasks, http.StatusOK)
}

// Get returns one task with its status history and notes
// @Summary      Get a task
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        projectID path string true "Project ID"
// @Param        taskID path string true "Task ID"
// @Success      200 {object} Task
// @Failure      404 {object} httputil.ErrorResponse "Unknown task"
// @Router       /projects/{projectID}/tasks/{taskID} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	t, ok := FromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "task not found", httputil.CodeTaskNotFound, http.StatusNotFound)
		return
	}

	detailed, err := h.service.Get(r.Context(), t.ID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "task not found", httputil.CodeTaskNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to get task", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to get task", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, detailed, http.StatusOK)
}

// Update changes a task's name and description (manager only, enforced upstream)
// @Summary      Update a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        projectID path string true "Project ID"
// @Param        taskID path string true "Task ID"
// @Param        request body TaskRequest true "Task data"
// @Success      200 {object} MessageResponse
// @Router       /projects/{projectID}/tasks/{taskID} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	t, ok := FromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "task not found", httputil.CodeTaskNotFound, http.StatusNotFound)
		return
	}

	var req TaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.service.Update(r.Context(), t.ID, req.Name, req.Description); err != nil {
		logger.Error("failed to update task", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to update task", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("task updated", "task_id", t.ID)

	httputil.RespondJSON(w, MessageResponse{Message: "Task updated."}, http.StatusOK)
}

// UpdateStatus moves the task through the workflow. Any project participant
// may change status, not just the manager.
// @Summary      Update a task's status
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        projectID path string true "Project ID"
// @Param        taskID path string true "Task ID"
// @Param        request body StatusRequest true "New status"
// @Success      200 {object} MessageResponse
// @Failure      400 {object} httputil.ValidationErrorResponse
// @Router       /projects/{projectID}/tasks/{taskID}/status [patch]
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	currentUser, ok := auth.CurrentUser(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	t, ok := FromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "task not found", httputil.CodeTaskNotFound, http.StatusNotFound)
		return
	}

	var req StatusRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.service.UpdateStatus(r.Context(), t.ID, currentUser.ID, Status(req.Status)); err != nil {
		switch {
		case errors.Is(err, ErrInvalidStatus):
			httputil.RespondErrorWithCode(w, "invalid task status", httputil.CodeInvalidStatus, http.StatusBadRequest)
		case errors.Is(err, ErrNotFound):
			httputil.RespondErrorWithCode(w, "task not found", httputil.CodeTaskNotFound, http.StatusNotFound)
		default:
			logger.Error("failed to update task status", "error", err.Error())
			httputil.RespondErrorWithCode(w, "failed to update task status", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	httputil.RespondJSON(w, MessageResponse{Message: "Task status updated."}, http.StatusOK)
}

// Delete removes a task (manager only, enforced upstream)
// @Summary      Delete a task
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        projectID path string true "Project ID"
// @Param        taskID path string true "Task ID"
// @Success      200 {object} MessageResponse
// @Router       /projects/{projectID}/tasks/{taskID} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	t, ok := FromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "task not found", httputil.CodeTaskNotFound, http.StatusNotFound)
		return
	}

	if err := h.service.Delete(r.Context(), t.ID); err != nil {
		logger.Error("failed to delete task", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to delete task", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("task deleted", "task_id", t.ID)

	httputil.RespondJSON(w, MessageResponse{Message: "Task deleted."}, http.StatusOK)
}

func decodeAndValidate(w http.ResponseWriter, r *http.Request, req any) bool {
	logger := logging.GetLoggerFromContext(r.Context())

	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		logger.Warn("invalid request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return false
	}

	if fields := validate.Struct(req); fields != nil {
		logger.Warn("request validation failed")
		httputil.RespondValidationErrors(w, fields)
		return false
	}

	return true
}
