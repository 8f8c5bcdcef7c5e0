package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/uptask-dev/uptask/internal/httputil"
	"github.com/uptask-dev/uptask/internal/logging"
	"github.com/uptask-dev/uptask/internal/ratelimit"
	"github.com/uptask-dev/uptask/internal/user"
	"github.com/uptask-dev/uptask/internal/validate"
)

// Handler contains HTTP handlers for account and session endpoints
type Handler struct {
	service     *Service
	rateLimiter *ratelimit.Limiter
	logger      *logging.Logger
}

func NewHandler(service *Service, rateLimiter *ratelimit.Limiter, logger *logging.Logger) *Handler {
	return &Handler{
		service:     service,
		rateLimiter: rateLimiter,
		logger:      logger,
	}
}

type CreateAccountRequest struct {
	Name                 string `json:"name" validate:"required"`
	Email                string `json:"email" validate:"required,email"`
	Password             string `json:"password" validate:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}

type ConfirmAccountRequest struct {
	Token string `json:"token" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type EmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ValidateTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

type NewPasswordRequest struct {
	Password             string `json:"password" validate:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}

type UpdateProfileRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

type UpdatePasswordRequest struct {
	CurrentPassword      string `json:"current_password" validate:"required"`
	Password             string `json:"password" validate:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}

type CheckPasswordRequest struct {
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// CreateAccount handles user registration
// @Summary      Register a new account
// @Description  Create an unconfirmed account; a confirmation code is mailed.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body CreateAccountRequest true "Registration data"
// @Success      201 {object} MessageResponse
// @Failure      400 {object} httputil.ValidationErrorResponse
// @Failure      409 {object} httputil.ErrorResponse "Email already registered"
// @Router       /auth/create-account [post]
func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	if h.rateLimited(w, r, "register") {
		return
	}

	var req CreateAccountRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	newUser, err := h.service.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			logger.Warn("registration failed: email already exists")
			httputil.RespondErrorWithCode(w, "email already registered", httputil.CodeEmailAlreadyExists, http.StatusConflict)
			return
		}
		logger.Error("registration failed: internal error", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to create account", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("account created", "user_id", newUser.ID)

	httputil.RespondJSON(w, MessageResponse{
		Message: "Account created, check your email to confirm it.",
	}, http.StatusCreated)
}

// ConfirmAccount redeems a confirmation code
// @Summary      Confirm an account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body ConfirmAccountRequest true "Confirmation code"
// @Success      200 {object} MessageResponse
// @Failure      404 {object} httputil.ErrorResponse "Unknown or expired code"
// @Router       /auth/confirm-account [post]
func (h *Handler) ConfirmAccount(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req ConfirmAccountRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.service.ConfirmAccount(r.Context(), req.Token); err != nil {
		if errors.Is(err, ErrCodeNotFound) {
			logger.Warn("confirmation failed: unknown or expired code")
			httputil.RespondErrorWithCode(w, "invalid code", httputil.CodeCodeNotFound, http.StatusNotFound)
			return
		}
		logger.Error("confirmation failed: internal error", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to confirm account", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("account confirmed")

	httputil.RespondJSON(w, MessageResponse{Message: "Account confirmed."}, http.StatusOK)
}

// Login authenticates a user and returns a session token
// @Summary      Log in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Credentials"
// @Success      200 {object} LoginResponse
// @Failure      401 {object} httputil.ErrorResponse "Wrong password or unconfirmed account"
// @Failure      404 {object} httputil.ErrorResponse "Email not registered"
// @Router       /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	if h.rateLimited(w, r, "login") {
		return
	}

	var req LoginRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrNotFound):
			logger.Warn("login failed: email not registered")
			httputil.RespondErrorWithCode(w, "email not registered", httputil.CodeUserNotFound, http.StatusNotFound)
		case errors.Is(err, ErrAccountNotConfirmed):
			logger.Warn("login failed: account not confirmed")
			httputil.RespondErrorWithCode(w, "account not confirmed, a new code was sent to your email", httputil.CodeAccountNotConfirmed, http.StatusUnauthorized)
		case errors.Is(err, ErrInvalidCredentials):
			logger.Warn("login failed: wrong password")
			httputil.RespondErrorWithCode(w, "wrong password", httputil.CodeInvalidCredentials, http.StatusUnauthorized)
		default:
			logger.Error("login failed: internal error", "error", err.Error())
			httputil.RespondErrorWithCode(w, "failed to log in", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	logger.Info("user logged in")

	httputil.RespondJSON(w, LoginResponse{Token: token}, http.StatusOK)
}

// RequestCode re-issues a confirmation code
// @Summary      Request a new confirmation code
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body EmailRequest true "Email address"
// @Success      200 {object} MessageResponse
// @Failure      403 {object} httputil.ErrorResponse "Account already confirmed"
// @Failure      404 {object} httputil.ErrorResponse "Email not registered"
// @Router       /auth/request-code [post]
func (h *Handler) RequestCode(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req EmailRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	if h.rateLimited(w, r, "request-code") || h.emailOnCooldown(w, r, req.Email) {
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	if err := h.service.RequestConfirmationCode(r.Context(), req.Email); err != nil {
		switch {
		case errors.Is(err, user.ErrNotFound):
			logger.Warn("code request failed: email not registered")
			httputil.RespondErrorWithCode(w, "email not registered", httputil.CodeUserNotFound, http.StatusNotFound)
		case errors.Is(err, ErrAlreadyConfirmed):
			logger.Warn("code request failed: already confirmed")
			httputil.RespondErrorWithCode(w, "account already confirmed", httputil.CodeAlreadyConfirmed, http.StatusForbidden)
		default:
			logger.Error("code request failed: internal error", "error", err.Error())
			httputil.RespondErrorWithCode(w, "failed to send code", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	logger.Info("confirmation code re-issued")

	httputil.RespondJSON(w, MessageResponse{Message: "Check your inbox for the new code."}, http.StatusOK)
}

// ForgetPassword issues a password reset code
// @Summary      Request a password reset code
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body EmailRequest true "Email address"
// @Success      200 {object} MessageResponse
// @Failure      404 {object} httputil.ErrorResponse "Email not registered"
// @Router       /auth/forget-password [post]
func (h *Handler) ForgetPassword(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req EmailRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	if h.rateLimited(w, r, "forget-password") || h.emailOnCooldown(w, r, req.Email) {
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	if err := h.service.ForgotPassword(r.Context(), req.Email); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			logger.Warn("reset request failed: email not registered")
			httputil.RespondErrorWithCode(w, "email not registered", httputil.CodeUserNotFound, http.StatusNotFound)
			return
		}
		logger.Error("reset request failed: internal error", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to send code", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("password reset code issued")

	httputil.RespondJSON(w, MessageResponse{Message: "A reset code was sent to your email."}, http.StatusOK)
}

// ValidateToken checks a reset code without consuming it
// @Summary      Validate a password reset code
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body ValidateTokenRequest true "Reset code"
// @Success      200 {object} MessageResponse
// @Failure      404 {object} httputil.ErrorResponse "Unknown or expired code"
// @Router       /auth/validate-token [post]
func (h *Handler) ValidateToken(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req ValidateTokenRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.service.ValidateResetCode(r.Context(), req.Token); err != nil {
		if errors.Is(err, ErrCodeNotFound) {
			logger.Warn("code validation failed: unknown or expired code")
			httputil.RespondErrorWithCode(w, "invalid code", httputil.CodeCodeNotFound, http.StatusNotFound)
			return
		}
		logger.Error("code validation failed: internal error", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to validate code", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, MessageResponse{Message: "Valid code, choose your new password."}, http.StatusOK)
}

// UpdatePasswordWithToken redeems a reset code and sets the new password
// @Summary      Reset password with a code
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        token   path string true "Reset code"
// @Param        request body NewPasswordRequest true "New password"
// @Success      200 {object} MessageResponse
// @Failure      404 {object} httputil.ErrorResponse "Unknown or expired code"
// @Router       /auth/update-password/{token} [post]
func (h *Handler) UpdatePasswordWithToken(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	code := chi.URLParam(r, "token")

	var req NewPasswordRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.service.ResetPassword(r.Context(), code, req.Password); err != nil {
		if errors.Is(err, ErrCodeNotFound) {
			logger.Warn("password reset failed: unknown or expired code")
			httputil.RespondErrorWithCode(w, "invalid code", httputil.CodeCodeNotFound, http.StatusNotFound)
			return
		}
		logger.Error("password reset failed: internal error", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to reset password", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("password reset")

	httputil.RespondJSON(w, MessageResponse{Message: "Password updated."}, http.StatusOK)
}

// User returns the authenticated identity
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} user.Summary
// @Router       /auth/user [get]
func (h *Handler) User(w http.ResponseWriter, r *http.Request) {
	currentUser, ok := CurrentUser(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	httputil.RespondJSON(w, currentUser, http.StatusOK)
}

// UpdateProfile changes the authenticated user's name and email
// @Summary      Update profile
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body UpdateProfileRequest true "Profile"
// @Success      200 {object} MessageResponse
// @Failure      409 {object} httputil.ErrorResponse "Email taken by another account"
// @Router       /auth/profile [put]
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	currentUser, ok := CurrentUser(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	var req UpdateProfileRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.service.UpdateProfile(r.Context(), currentUser.ID, req.Name, req.Email); err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			logger.Warn("profile update failed: email taken")
			httputil.RespondErrorWithCode(w, "email already registered", httputil.CodeEmailAlreadyExists, http.StatusConflict)
			return
		}
		logger.Error("profile update failed: internal error", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to update profile", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("profile updated", "user_id", currentUser.ID)

	httputil.RespondJSON(w, MessageResponse{Message: "Profile updated."}, http.StatusOK)
}

// UpdatePassword replaces the authenticated user's password
// @Summary      Change password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body UpdatePasswordRequest true "Passwords"
// @Success      200 {object} MessageResponse
// @Failure      401 {object} httputil.ErrorResponse "Current password is wrong"
// @Router       /auth/update-password [post]
func (h *Handler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	currentUser, ok := CurrentUser(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	var req UpdatePasswordRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.service.UpdateCurrentPassword(r.Context(), currentUser.ID, req.CurrentPassword, req.Password); err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			logger.Warn("password change failed: wrong current password")
			httputil.RespondErrorWithCode(w, "current password is wrong", httputil.CodeInvalidCredentials, http.StatusUnauthorized)
			return
		}
		logger.Error("password change failed: internal error", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to change password", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("password changed", "user_id", currentUser.ID)

	httputil.RespondJSON(w, MessageResponse{Message: "Password changed."}, http.StatusOK)
}

// CheckPassword verifies the password before destructive actions
// @Summary      Check password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CheckPasswordRequest true "Password"
// @Success      200 {object} MessageResponse
// @Failure      401 {object} httputil.ErrorResponse "Wrong password"
// @Router       /auth/check-password [post]
func (h *Handler) CheckPassword(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	currentUser, ok := CurrentUser(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	var req CheckPasswordRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.service.CheckPassword(r.Context(), currentUser.ID, req.Password); err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			logger.Warn("password check failed")
			httputil.RespondErrorWithCode(w, "wrong password", httputil.CodeInvalidCredentials, http.StatusUnauthorized)
			return
		}
		logger.Error("password check failed: internal error", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to check password", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, MessageResponse{Message: "Correct password."}, http.StatusOK)
}

// decodeAndValidate decodes the JSON body into req and runs field
// validation, writing the error response itself. Returns false when the
// handler should stop.
func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, req any) bool {
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

// rateLimited applies the per-IP window for the given purpose and writes
// the 429 itself when exceeded.
func (h *Handler) rateLimited(w http.ResponseWriter, r *http.Request, purpose string) bool {
	logger := logging.GetLoggerFromContext(r.Context())
	ip := getClientIP(r)

	exceeded, err := h.rateLimiter.CheckIPRateLimitWithPurpose(r.Context(), ip, purpose)
	if err != nil {
		// do not block legitimate requests on limiter failures
		logger.Error("failed to check IP rate limit", "error", err.Error())
	} else if exceeded {
		logger.Warn("IP rate limit exceeded", "ip", ip, "purpose", purpose)
		httputil.RespondErrorWithCode(w, "too many requests, please try again later", httputil.CodeTooManyRequests, http.StatusTooManyRequests)
		return true
	}

	if err := h.rateLimiter.RecordIPRequestWithPurpose(r.Context(), ip, purpose); err != nil {
		logger.Error("failed to record IP request", "error", err.Error())
	}

	return false
}

// emailOnCooldown applies the per-email cooldown for code re-issue
// endpoints and writes the 429 itself when active.
func (h *Handler) emailOnCooldown(w http.ResponseWriter, r *http.Request, email string) bool {
	logger := logging.GetLoggerFromContext(r.Context())

	onCooldown, err := h.rateLimiter.CheckEmailCooldown(r.Context(), email)
	if err != nil {
		logger.Error("failed to check email cooldown", "error", err.Error())
		return false
	}
	if onCooldown {
		logger.Warn("email on cooldown")
		httputil.RespondErrorWithCode(w, "please wait before requesting another code", httputil.CodeCooldownActive, http.StatusTooManyRequests)
		return true
	}

	if err := h.rateLimiter.SetEmailCooldown(r.Context(), email); err != nil {
		logger.Error("failed to set email cooldown", "error", err.Error())
	}

	return false
}

// getClientIP extracts the client IP address from the request
func getClientIP(r *http.Request) string {
	xff := r.Header.Get("X-Forwarded-For")
	if xff != "" {
		// X-Forwarded-For can contain multiple IPs, take the first one
		ips := strings.Split(xff, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	xri := r.Header.Get("X-Real-IP")
	if xri != "" {
		return strings.TrimSpace(xri)
	}

	// RemoteAddr format is "IP:port"
	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}
