package task

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/uptask-dev/uptask/internal/logging"
)

// ErrInvalidStatus is returned when a status value is outside the workflow.
var ErrInvalidStatus = errors.New("invalid task status")

// Service handles task business logic
type Service struct {
	repo   *Repository
	logger *logging.Logger
}

func NewService(repo *Repository, logger *logging.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Create adds a pending task to the project
func (s *Service) Create(ctx context.Context, projectID uuid.UUID, name, description string) (*Task, error) {
	t, err := s.repo.Create(ctx, projectID, name, description)
	if err != nil {
		return nil, err
	}

	s.logger.Info("task created", "task_id", t.ID, "project_id", projectID)
	return t, nil
}

// ListForProject returns the project's tasks
func (s *Service) ListForProject(ctx context.Context, projectID uuid.UUID) ([]*Task, error) {
	return s.repo.ListForProject(ctx, projectID)
}

// Get returns a task with its status history and notes
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Task, error) {
	return s.repo.GetByIDWithDetails(ctx, id)
}

// Update changes a task's name and description
func (s *Service) Update(ctx context.Context, id uuid.UUID, name, description string) error {
	return s.repo.Update(ctx, id, name, description)
}

// UpdateStatus moves the task through the workflow and records who did it
func (s *Service) UpdateStatus(ctx context.Context, id, userID uuid.UUID, status Status) error {
	if !ValidStatus(status) {
		return ErrInvalidStatus
	}

	if err := s.repo.UpdateStatus(ctx, id, userID, status); err != nil {
		return err
	}

	s.logger.Info("task status changed", "task_id", id, "status", status, "user_id", userID)
	return nil
}

// Delete removes a task and everything attached to it
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
