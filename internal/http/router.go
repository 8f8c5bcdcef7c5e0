package http

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/uptask-dev/uptask/internal/auth"
	"github.com/uptask-dev/uptask/internal/config"
	"github.com/uptask-dev/uptask/internal/httputil"
	"github.com/uptask-dev/uptask/internal/logging"
	"github.com/uptask-dev/uptask/internal/metrics"
	"github.com/uptask-dev/uptask/internal/note"
	"github.com/uptask-dev/uptask/internal/project"
	"github.com/uptask-dev/uptask/internal/task"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth           *auth.Handler
	AuthMiddleware *auth.Middleware

	Project           *project.Handler
	ProjectMiddleware *project.Middleware

	Task           *task.Handler
	TaskMiddleware *task.Middleware

	Note *note.Handler
}

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, h *Handlers, logger *logging.Logger) *chi.Mux {
	r := chi.NewRouter()

	// CORS - must be first
	if len(cfg.Server.TrustedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.Server.TrustedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           300, // 5 minutes
		}))
	}

	// Global middleware
	r.Use(SecurityHeaders)               // Security headers on all responses
	r.Use(middleware.Recoverer)          // Recover from panics
	r.Use(middleware.RequestID)          // Add request ID
	r.Use(middleware.RealIP)             // Set RemoteAddr to real IP
	r.Use(logging.RequestLogger(logger)) // Structured logging with request context
	r.Use(metrics.Middleware)            // Request duration histogram
	r.Use(middleware.Compress(5))        // Compress responses

	// Public routes
	r.Get("/health", handleHealth)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	// Swagger UI - only in development
	// Production builds will not have this route at all
	if cfg.Server.IsDevelopment() {
		log.Println("Swagger UI enabled at /swagger/*")
		r.Get("/swagger/*", httpSwagger.WrapHandler)
	} else {
		log.Println("Swagger UI disabled (production mode)")
	}

	r.Route("/auth", func(r chi.Router) {
		// Public account routes
		r.Post("/create-account", h.Auth.CreateAccount)
		r.Post("/confirm-account", h.Auth.ConfirmAccount)
		r.Post("/login", h.Auth.Login)
		r.Post("/request-code", h.Auth.RequestCode)
		r.Post("/forget-password", h.Auth.ForgetPassword)
		r.Post("/validate-token", h.Auth.ValidateToken)
		r.Post("/update-password/{token}", h.Auth.UpdatePasswordWithToken)

		// Authenticated account routes
		r.Group(func(r chi.Router) {
			r.Use(h.AuthMiddleware.RequireAuth)
			r.Get("/user", h.Auth.User)
			r.Put("/profile", h.Auth.UpdateProfile)
			r.Post("/update-password", h.Auth.UpdatePassword)
			r.Post("/check-password", h.Auth.CheckPassword)
		})
	})

	r.Route("/projects", func(r chi.Router) {
		r.Use(h.AuthMiddleware.RequireAuth)

		r.Get("/", h.Project.List)
		r.Post("/", h.Project.Create)

		r.Route("/{projectID}", func(r chi.Router) {
			r.Use(h.ProjectMiddleware.ProjectCtx)

			r.Get("/", h.Project.Get)
			r.With(h.ProjectMiddleware.RequireManager).Put("/", h.Project.Update)
			r.With(h.ProjectMiddleware.RequireManager).Delete("/", h.Project.Delete)

			r.Route("/team", func(r chi.Router) {
				r.Get("/", h.Project.ListTeam)
				r.Post("/find", h.Project.FindMember)
				r.With(h.ProjectMiddleware.RequireManager).Post("/", h.Project.AddMember)
				r.With(h.ProjectMiddleware.RequireManager).Delete("/{userID}", h.Project.RemoveMember)
			})

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", h.Task.List)
				r.With(h.ProjectMiddleware.RequireManager).Post("/", h.Task.Create)

				r.Route("/{taskID}", func(r chi.Router) {
					r.Use(h.TaskMiddleware.TaskCtx)

					r.Get("/", h.Task.Get)
					r.With(h.ProjectMiddleware.RequireManager).Put("/", h.Task.Update)
					r.With(h.ProjectMiddleware.RequireManager).Delete("/", h.Task.Delete)
					r.Patch("/status", h.Task.UpdateStatus)

					r.Route("/notes", func(r chi.Router) {
						r.Get("/", h.Note.List)
						r.Post("/", h.Note.Create)
						r.Delete("/{noteID}", h.Note.Delete)
					})
				})
			})
		})
	})

	return r
}

// handleHealth is a simple health check endpoint
// @Summary      Health check
// @Description  Check if the API is running
// @Tags         health
// @Produce      json
// @Success      200 {object} map[string]string
// @Router       /health [get]
func handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, map[string]string{"status": "api is running"}, http.StatusOK)
}
