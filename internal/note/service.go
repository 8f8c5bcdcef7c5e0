package note

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/uptask-dev/uptask/internal/logging"
)

// ErrNotOwner is returned when someone other than the note's author tries
// to delete it.
var ErrNotOwner = errors.New("note belongs to another user")

// Service handles note business logic
type Service struct {
	repo   *Repository
	logger *logging.Logger
}

func NewService(repo *Repository, logger *logging.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Create attaches a note to the task, authored by the caller
func (s *Service) Create(ctx context.Context, taskID, createdBy uuid.UUID, content string) (*Note, error) {
	n, err := s.repo.Create(ctx, taskID, createdBy, content)
	if err != nil {
		return nil, err
	}

	s.logger.Info("note created", "note_id", n.ID, "task_id", taskID)
	return n, nil
}

// ListForTask returns the task's notes
func (s *Service) ListForTask(ctx context.Context, taskID uuid.UUID) ([]*Note, error) {
	return s.repo.ListForTask(ctx, taskID)
}

// Delete removes a note. Only the author may delete it, and only through
// the task it is attached to; a note addressed through the wrong task
// reads as not found.
func (s *Service) Delete(ctx context.Context, id, taskID, callerID uuid.UUID) error {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if n.TaskID != taskID {
		return ErrNotFound
	}

	if n.CreatedBy != callerID {
		return ErrNotOwner
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("note deleted", "note_id", id, "task_id", taskID)
	return nil
}
