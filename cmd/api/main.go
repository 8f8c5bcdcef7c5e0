package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"

	"github.com/uptask-dev/uptask/internal/auth"
	"github.com/uptask-dev/uptask/internal/config"
	"github.com/uptask-dev/uptask/internal/database"
	"github.com/uptask-dev/uptask/internal/email"
	httpServer "github.com/uptask-dev/uptask/internal/http"
	"github.com/uptask-dev/uptask/internal/logging"
	"github.com/uptask-dev/uptask/internal/note"
	"github.com/uptask-dev/uptask/internal/project"
	"github.com/uptask-dev/uptask/internal/ratelimit"
	"github.com/uptask-dev/uptask/internal/task"
	"github.com/uptask-dev/uptask/internal/user"
)

// @title           UpTask API
// @version         1.0
// @description     Multi-tenant project and task management REST API with account confirmation and team collaboration.

// @contact.name   API Support
// @contact.email  support@uptask.com

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger := logging.NewLogger(cfg.Server.IsDevelopment())
	logger.Info("starting application",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
	)

	// Initialize database connection
	db, err := initDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	// Initialize Redis connection
	redisClient, err := initRedis(cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to initialize Redis: %w", err)
	}
	defer redisClient.Close()

	// Initialize repositories
	userRepo := user.NewRepository(db)
	codeRepo := auth.NewCodeRepository(redisClient, cfg.Auth.ConfirmationTokenTTL)
	projectRepo := project.NewRepository(db)
	taskRepo := task.NewRepository(db)
	noteRepo := note.NewRepository(db)

	// Initialize rate limiter
	rateLimiter := ratelimit.NewLimiter(redisClient)

	// Initialize session token service
	tokenService, err := newTokenService(cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to initialize token service: %w", err)
	}

	// Initialize email service
	emailService := email.NewService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.FromAddress,
		cfg.Email.FrontendURL,
	)

	// Initialize services
	authService := auth.NewService(
		userRepo,
		codeRepo,
		tokenService,
		emailService,
		logger,
		cfg.Auth.SessionDuration,
	)
	projectService := project.NewService(projectRepo, userRepo, logger)
	taskService := task.NewService(taskRepo, logger)
	noteService := note.NewService(noteRepo, logger)

	// Initialize HTTP handlers and middleware
	handlers := &httpServer.Handlers{
		Auth:              auth.NewHandler(authService, rateLimiter, logger),
		AuthMiddleware:    auth.NewMiddleware(tokenService, userRepo),
		Project:           project.NewHandler(projectService, logger),
		ProjectMiddleware: project.NewMiddleware(projectRepo),
		Task:              task.NewHandler(taskService, logger),
		TaskMiddleware:    task.NewMiddleware(taskRepo),
		Note:              note.NewHandler(noteService, logger),
	}

	// Initialize router
	router := httpServer.NewRouter(cfg, handlers, logger)

	// Initialize HTTP server
	serverAddr := ":" + cfg.Server.Port
	server := httpServer.NewServer(
		serverAddr,
		router,
		cfg.Server.ReadTimeout,
		cfg.Server.WriteTimeout,
	)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	// Wait for interrupt signal or server error
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Printf("Received signal: %v", sig)

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// newTokenService builds the configured session token implementation
func newTokenService(cfg config.AuthConfig) (auth.TokenService, error) {
	switch cfg.TokenDriver {
	case "jwt":
		return auth.NewJWTService(cfg.JWTSecret)
	case "paseto":
		return auth.NewPasetoService(cfg.PasetoKey)
	default:
		return nil, fmt.Errorf("unknown token driver %q", cfg.TokenDriver)
	}
}

// initDB initializes the database connection and returns a Bun DB instance
func initDB(cfg config.DatabaseConfig) (*bun.DB, error) {
	sqlDB, err := sql.Open("postgres", cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Verify connection
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Set connection pool settings
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	return database.NewBunDB(sqlDB), nil
}

// initRedis initializes the Redis connection and returns a Redis client
func initRedis(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Verify connection
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}
