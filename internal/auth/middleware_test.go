package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/uptask-dev/uptask/internal/httputil"
)

type stubTokenService struct {
	claims *SessionClaims
	err    error
}

func (s *stubTokenService) CreateToken(userID uuid.UUID, duration time.Duration) (string, error) {
	return "stub-token", nil
}

func (s *stubTokenService) VerifyToken(tokenStr string) (*SessionClaims, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.claims, nil
}

// The user repository is only reached once the token verifies, so these
// rejection paths run without a database behind the middleware.
func TestRequireAuthRejections(t *testing.T) {
	tests := []struct {
		name       string
		authHeader string
		tokenErr   error
		wantCode   string
	}{
		{
			name:     "missing header",
			wantCode: httputil.CodeMissingAuth,
		},
		{
			name:       "malformed header",
			authHeader: "Token abc",
			wantCode:   httputil.CodeInvalidAuthHeader,
		},
		{
			name:       "expired token",
			authHeader: "Bearer expired",
			tokenErr:   ErrExpiredToken,
			wantCode:   httputil.CodeTokenExpired,
		},
		{
			name:       "invalid token",
			authHeader: "Bearer garbage",
			tokenErr:   ErrInvalidToken,
			wantCode:   httputil.CodeInvalidToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mw := NewMiddleware(&stubTokenService{err: tt.tokenErr}, nil)

			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Error("next handler should not run")
			})

			req := httptest.NewRequest(http.MethodGet, "/auth/user", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()

			mw.RequireAuth(next).ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("got status %d, want 401", rec.Code)
			}

			var body httputil.ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if body.Code != tt.wantCode {
				t.Errorf("got code %q, want %q", body.Code, tt.wantCode)
			}
		})
	}
}

func TestRequireAuthBadSubject(t *testing.T) {
	mw := NewMiddleware(&stubTokenService{claims: &SessionClaims{UserID: "not-a-uuid"}}, nil)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next handler should not run")
	})

	req := httptest.NewRequest(http.MethodGet, "/auth/user", nil)
	req.Header.Set("Authorization", "Bearer whatever")
	rec := httptest.NewRecorder()

	mw.RequireAuth(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("got status %d, want 401", rec.Code)
	}
}

func TestCurrentUserMissing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	if _, ok := CurrentUser(req.Context()); ok {
		t.Error("CurrentUser should report absence on a bare context")
	}
}
