package project

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/uptask-dev/uptask/internal/httputil"
	"github.com/uptask-dev/uptask/internal/logging"
	"github.com/uptask-dev/uptask/internal/user"
)

type FindMemberRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type AddMemberRequest struct {
	ID string `json:"id" validate:"required,uuid"`
}

// FindMember looks up a user by email for the add-member search
// @Summary      Find a user by email
// @Tags         team
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        projectID path string true "Project ID"
// @Param        request body FindMemberRequest true "Email to search"
// @Success      200 {object} user.Summary
// @Failure      404 {object} httputil.ErrorResponse "Unknown email"
// @Router       /projects/{projectID}/team/find [post]
func (h *Handler) FindMember(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req FindMemberRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	summary, err := h.service.FindMemberByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			httputil.RespondErrorWithCode(w, "user not found", httputil.CodeUserNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to find user", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to find user", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, summary, http.StatusOK)
}

// AddMember puts a user on the project's team
// @Summary      Add a team member
// @Tags         team
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        projectID path string true "Project ID"
// @Param        request body AddMemberRequest true "User to add"
// @Success      200 {object} MessageResponse
// @Failure      404 {object} httputil.ErrorResponse "Unknown user"
// @Failure      409 {object} httputil.ErrorResponse "Manager or duplicate member"
// @Router       /projects/{projectID}/team [post]
func (h *Handler) AddMember(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	p, ok := FromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "project not found", httputil.CodeProjectNotFound, http.StatusNotFound)
		return
	}

	var req AddMemberRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	memberID, err := uuid.Parse(req.ID)
	if err != nil {
		httputil.RespondValidationErrors(w, []httputil.FieldError{
			{Field: "id", Message: "must be a valid id"},
		})
		return
	}

	if err := h.service.AddMember(r.Context(), p, memberID); err != nil {
		switch {
		case errors.Is(err, user.ErrNotFound):
			httputil.RespondErrorWithCode(w, "user not found", httputil.CodeUserNotFound, http.StatusNotFound)
		case errors.Is(err, ErrManagerOnTeam):
			httputil.RespondErrorWithCode(w, "the manager cannot be a team member", httputil.CodeManagerOnTeam, http.StatusConflict)
		case errors.Is(err, ErrAlreadyOnTeam):
			httputil.RespondErrorWithCode(w, "user already on the team", httputil.CodeAlreadyOnTeam, http.StatusConflict)
		default:
			logger.Error("failed to add team member", "error", err.Error())
			httputil.RespondErrorWithCode(w, "failed to add team member", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	httputil.RespondJSON(w, MessageResponse{Message: "Team member added."}, http.StatusOK)
}

// ListTeam returns the project's team members
// @Summary      List team members
// @Tags         team
// @Produce      json
// @Security     BearerAuth
// @Param        projectID path string true "Project ID"
// @Success      200 {array} user.Summary
// @Router       /projects/{projectID}/team [get]
func (h *Handler) ListTeam(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	p, ok := FromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "project not found", httputil.CodeProjectNotFound, http.StatusNotFound)
		return
	}

	team, err := h.service.ListTeam(r.Context(), p.ID)
	if err != nil {
		logger.Error("failed to list team", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to list team", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, team, http.StatusOK)
}

// RemoveMember takes a user off the project's team
// @Summary      Remove a team member
// @Tags         team
// @Produce      json
// @Security     BearerAuth
// @Param        projectID path string true "Project ID"
// @Param        userID path string true "User ID"
// @Success      200 {object} MessageResponse
// @Failure      409 {object} httputil.ErrorResponse "Not on the team"
// @Router       /projects/{projectID}/team/{userID} [delete]
func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	p, ok := FromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "project not found", httputil.CodeProjectNotFound, http.StatusNotFound)
		return
	}

	memberID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		httputil.RespondValidationErrors(w, []httputil.FieldError{
			{Field: "userID", Message: "must be a valid id"},
		})
		return
	}

	if err := h.service.RemoveMember(r.Context(), p, memberID); err != nil {
		if errors.Is(err, ErrNotOnTeam) {
			httputil.RespondErrorWithCode(w, "user not on the team", httputil.CodeNotOnTeam, http.StatusConflict)
			return
		}
		logger.Error("failed to remove team member", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to remove team member", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, MessageResponse{Message: "Team member removed."}, http.StatusOK)
}
