package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/uptask-dev/uptask/internal/httputil"
	"github.com/uptask-dev/uptask/internal/user"
)

// ContextKey is a type for context keys to avoid collisions
type ContextKey string

const currentUserContextKey ContextKey = "current_user"

// Middleware handles authentication for protected routes
type Middleware struct {
	tokenService TokenService
	userRepo     *user.Repository
}

func NewMiddleware(tokenService TokenService, userRepo *user.Repository) *Middleware {
	return &Middleware{tokenService: tokenService, userRepo: userRepo}
}

// RequireAuth validates the bearer token, resolves the account behind it and
// attaches its id/name/email projection to the request context. Every
// failure on this path is a 401; the password hash is never loaded.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			httputil.RespondErrorWithCode(w, "invalid authorization header format", httputil.CodeInvalidAuthHeader, http.StatusUnauthorized)
			return
		}

		claims, err := m.tokenService.VerifyToken(parts[1])
		if err != nil {
			if errors.Is(err, ErrExpiredToken) {
				httputil.RespondErrorWithCode(w, "token has expired", httputil.CodeTokenExpired, http.StatusUnauthorized)
				return
			}
			httputil.RespondErrorWithCode(w, "invalid token", httputil.CodeInvalidToken, http.StatusUnauthorized)
			return
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			httputil.RespondErrorWithCode(w, "invalid token", httputil.CodeInvalidToken, http.StatusUnauthorized)
			return
		}

		currentUser, err := m.userRepo.GetSummaryByID(r.Context(), userID)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				httputil.RespondErrorWithCode(w, "invalid token", httputil.CodeInvalidToken, http.StatusUnauthorized)
				return
			}
			httputil.RespondErrorWithCode(w, "something went wrong", httputil.CodeInternalError, http.StatusInternalServerError)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithCurrentUser(r.Context(), currentUser)))
	})
}

// WithCurrentUser attaches an authenticated identity to the context
func WithCurrentUser(ctx context.Context, u *user.Summary) context.Context {
	return context.WithValue(ctx, currentUserContextKey, u)
}

// CurrentUser extracts the authenticated identity from the request context
func CurrentUser(ctx context.Context) (*user.Summary, bool) {
	u, ok := ctx.Value(currentUserContextKey).(*user.Summary)
	return u, ok
}
