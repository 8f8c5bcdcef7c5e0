package project

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/uptask-dev/uptask/internal/auth"
	"github.com/uptask-dev/uptask/internal/httputil"
	"github.com/uptask-dev/uptask/internal/logging"
	"github.com/uptask-dev/uptask/internal/validate"
)

// Handler contains HTTP handlers for project endpoints
type Handler struct {
	service *Service
	logger  *logging.Logger
}

func NewHandler(service *Service, logger *logging.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

type ProjectRequest struct {
	ProjectName string `json:"project_name" validate:"required"`
	ClientName  string `json:"client_name" validate:"required"`
	Description string `json:"description" validate:"required"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// List returns the caller's projects
// @Summary      List projects
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} Project
// @Router       /projects [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	currentUser, ok := auth.CurrentUser(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	projects, err := h.service.ListForUser(r.Context(), currentUser.ID)
	if err != nil {
		logger.Error("failed to list projects", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to list projects", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, projects, http.StatusOK)
}

// Create makes a new project with the caller as manager
// @Summary      Create a project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body ProjectRequest true "Project data"
// @Success      201 {object} Project
// @Failure      400 {object} httputil.ValidationErrorResponse
// @Router       /projects [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	currentUser, ok := auth.CurrentUser(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	var req ProjectRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	p, err := h.service.Create(r.Context(), currentUser.ID, req.ProjectName, req.ClientName, req.Description)
	if err != nil {
		logger.Error("failed to create project", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to create project", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("project created", "project_id", p.ID)

	httputil.RespondJSON(w, p, http.StatusCreated)
}

// Get returns one project with its tasks
// @Summary      Get a project
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Param        projectID path string true "Project ID"
// @Success      200 {object} Project
// @Failure      404 {object} httputil.ErrorResponse "Unknown project or no access"
// @Router       /projects/{projectID} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

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

	resolved, err := h.service.Get(r.Context(), p.ID, currentUser.ID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "project not found", httputil.CodeProjectNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to get project", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to get project", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, resolved, http.StatusOK)
}

// Update changes a project's fields (manager only, enforced upstream)
// @Summary      Update a project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        projectID path string true "Project ID"
// @Param        request body ProjectRequest true "Project data"
// @Success      200 {object} MessageResponse
// @Failure      400 {object} httputil.ErrorResponse "Not the manager"
// @Router       /projects/{projectID} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	p, ok := FromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "project not found", httputil.CodeProjectNotFound, http.StatusNotFound)
		return
	}

	var req ProjectRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.service.Update(r.Context(), p.ID, req.ProjectName, req.ClientName, req.Description); err != nil {
		logger.Error("failed to update project", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to update project", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("project updated", "project_id", p.ID)

	httputil.RespondJSON(w, MessageResponse{Message: "Project updated."}, http.StatusOK)
}

// Delete removes a project and cascades over its tasks and notes
// @Summary      Delete a project
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Param        projectID path string true "Project ID"
// @Success      200 {object} MessageResponse
// @Failure      400 {object} httputil.ErrorResponse "Not the manager"
// @Router       /projects/{projectID} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	p, ok := FromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "project not found", httputil.CodeProjectNotFound, http.StatusNotFound)
		return
	}

	if err := h.service.Delete(r.Context(), p.ID); err != nil {
		logger.Error("failed to delete project", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to delete project", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("project deleted", "project_id", p.ID)

	httputil.RespondJSON(w, MessageResponse{Message: "Project deleted."}, http.StatusOK)
}

// decodeAndValidate decodes the JSON body and runs field validation,
// writing the error response itself.
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
