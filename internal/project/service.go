package project

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/uptask-dev/uptask/internal/logging"
	"github.com/uptask-dev/uptask/internal/user"
)

// ErrManagerOnTeam is returned when the manager is added as their own
// team member.
var ErrManagerOnTeam = errors.New("manager cannot join the team")

// Service handles project and team business logic
type Service struct {
	repo     *Repository
	userRepo *user.Repository
	logger   *logging.Logger
}

func NewService(repo *Repository, userRepo *user.Repository, logger *logging.Logger) *Service {
	return &Service{repo: repo, userRepo: userRepo, logger: logger}
}

// Create makes the caller the manager of a new project
func (s *Service) Create(ctx context.Context, managerID uuid.UUID, projectName, clientName, description string) (*Project, error) {
	return s.repo.Create(ctx, managerID, projectName, clientName, description)
}

// ListForUser returns every project the user manages or belongs to
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID) ([]*Project, error) {
	return s.repo.ListForUser(ctx, userID)
}

// Get returns a project with tasks populated. Callers outside the project
// (neither manager nor member) get ErrNotFound, not a permission error, so
// the response does not leak the project's existence.
func (s *Service) Get(ctx context.Context, id, callerID uuid.UUID) (*Project, error) {
	p, err := s.repo.GetByIDWithTasks(ctx, id)
	if err != nil {
		return nil, err
	}

	if p.ManagerID != callerID {
		isMember, err := s.repo.IsMember(ctx, id, callerID)
		if err != nil {
			return nil, err
		}
		if !isMember {
			return nil, ErrNotFound
		}
	}

	return p, nil
}

// Update changes a project's descriptive fields
func (s *Service) Update(ctx context.Context, id uuid.UUID, projectName, clientName, description string) error {
	return s.repo.Update(ctx, id, projectName, clientName, description)
}

// Delete removes a project and everything it owns
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// FindMemberByEmail looks up a user for the team-member search box
func (s *Service) FindMemberByEmail(ctx context.Context, email string) (*user.Summary, error) {
	return s.userRepo.GetSummaryByEmail(ctx, email)
}

// AddMember puts a user on the project's team. The manager is never a team
// member; duplicates are rejected.
func (s *Service) AddMember(ctx context.Context, p *Project, memberID uuid.UUID) error {
	if _, err := s.userRepo.GetSummaryByID(ctx, memberID); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.ErrNotFound
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}

	if p.ManagerID == memberID {
		return ErrManagerOnTeam
	}

	if err := s.repo.AddMember(ctx, p.ID, memberID); err != nil {
		return err
	}

	s.logger.Info("team member added", "project_id", p.ID, "user_id", memberID)
	return nil
}

// RemoveMember takes a user off the project's team
func (s *Service) RemoveMember(ctx context.Context, p *Project, memberID uuid.UUID) error {
	if err := s.repo.RemoveMember(ctx, p.ID, memberID); err != nil {
		return err
	}

	s.logger.Info("team member removed", "project_id", p.ID, "user_id", memberID)
	return nil
}

// ListTeam returns the project's team members
func (s *Service) ListTeam(ctx context.Context, projectID uuid.UUID) ([]*user.Summary, error) {
	return s.repo.ListTeam(ctx, projectID)
}
