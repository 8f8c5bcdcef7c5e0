package project

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/uptask-dev/uptask/internal/database"
	"github.com/uptask-dev/uptask/internal/user"
)

var (
	ErrNotFound      = errors.New("project not found")
	ErrAlreadyOnTeam = errors.New("user already on the team")
	ErrNotOnTeam     = errors.New("user not on the team")
)

// Repository handles project and team persistence
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new project managed by the given user
func (r *Repository) Create(ctx context.Context, managerID uuid.UUID, projectName, clientName, description string) (*Project, error) {
	dbProject := &database.Project{
		ProjectName: projectName,
		ClientName:  clientName,
		Description: description,
		ManagerID:   managerID,
	}

	_, err := r.db.NewInsert().
		Model(dbProject).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return mapDBProjectToModel(dbProject), nil
}

// ListForUser returns the projects where the user is the manager or a team
// member (disjunction over ownership and membership).
func (r *Repository) ListForUser(ctx context.Context, userID uuid.UUID) ([]*Project, error) {
	var dbProjects []*database.Project

	err := r.db.NewSelect().
		Model(&dbProjects).
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where("p.manager_id = ?", userID).
				WhereOr("EXISTS (SELECT 1 FROM project_members pm WHERE pm.project_id = p.id AND pm.user_id = ?)", userID)
		}).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	projects := make([]*Project, 0, len(dbProjects))
	for _, dbp := range dbProjects {
		projects = append(projects, mapDBProjectToModel(dbp))
	}
	return projects, nil
}

// GetByID performs the point lookup used by the resolution middleware
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Project, error) {
	dbProject := new(database.Project)
	err := r.db.NewSelect().
		Model(dbProject).
		Where("p.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return mapDBProjectToModel(dbProject), nil
}

// GetByIDWithTasks returns a project with its tasks relation populated
func (r *Repository) GetByIDWithTasks(ctx context.Context, id uuid.UUID) (*Project, error) {
	dbProject := new(database.Project)
	err := r.db.NewSelect().
		Model(dbProject).
		Relation("Tasks").
		Where("p.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	project := mapDBProjectToModel(dbProject)
	for _, dbt := range dbProject.Tasks {
		project.Tasks = append(project.Tasks, TaskSummary{
			ID:          dbt.ID,
			Name:        dbt.Name,
			Description: dbt.Description,
			Status:      dbt.Status,
		})
	}
	return project, nil
}

// Update changes a project's descriptive fields
func (r *Repository) Update(ctx context.Context, id uuid.UUID, projectName, clientName, description string) error {
	result, err := r.db.NewUpdate().
		Model((*database.Project)(nil)).
		Set("project_name = ?", projectName).
		Set("client_name = ?", clientName).
		Set("description = ?", description).
		Set("updated_at = NOW()").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes a project and cascades over its entire ownership graph:
// notes of the project's tasks, status history, tasks, memberships, then the
// project itself. Everything runs in one transaction so a partial failure
// rolls back instead of leaving orphans.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		taskIDs := tx.NewSelect().
			Model((*database.Task)(nil)).
			Column("id").
			Where("project_id = ?", id)

		if _, err := tx.NewDelete().
			Model((*database.Note)(nil)).
			Where("task_id IN (?)", taskIDs).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to delete notes: %w", err)
		}

		if _, err := tx.NewDelete().
			Model((*database.TaskStatusChange)(nil)).
			Where("task_id IN (?)", taskIDs).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to delete status history: %w", err)
		}

		if _, err := tx.NewDelete().
			Model((*database.Task)(nil)).
			Where("project_id = ?", id).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to delete tasks: %w", err)
		}

		if _, err := tx.NewDelete().
			Model((*database.ProjectMember)(nil)).
			Where("project_id = ?", id).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to delete memberships: %w", err)
		}

		result, err := tx.NewDelete().
			Model((*database.Project)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to delete project: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return ErrNotFound
		}

		return nil
	})
}

// IsMember reports whether the user belongs to the project's team
func (r *Repository) IsMember(ctx context.Context, projectID, userID uuid.UUID) (bool, error) {
	count, err := r.db.NewSelect().
		Model((*database.ProjectMember)(nil)).
		Where("project_id = ?", projectID).
		Where("user_id = ?", userID).
		Count(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}

	return count > 0, nil
}

// AddMember inserts a team membership row
func (r *Repository) AddMember(ctx context.Context, projectID, userID uuid.UUID) error {
	member := &database.ProjectMember{
		ProjectID: projectID,
		UserID:    userID,
	}

	_, err := r.db.NewInsert().
		Model(member).
		Exec(ctx)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
			return ErrAlreadyOnTeam
		}
		return fmt.Errorf("failed to add member: %w", err)
	}

	return nil
}

// RemoveMember deletes a team membership row
func (r *Repository) RemoveMember(ctx context.Context, projectID, userID uuid.UUID) error {
	result, err := r.db.NewDelete().
		Model((*database.ProjectMember)(nil)).
		Where("project_id = ?", projectID).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotOnTeam
	}

	return nil
}

// ListTeam returns the id/name/email projection of the project's members
func (r *Repository) ListTeam(ctx context.Context, projectID uuid.UUID) ([]*user.Summary, error) {
	var dbUsers []*database.User

	err := r.db.NewSelect().
		Model(&dbUsers).
		Column("u.id", "u.name", "u.email").
		Join("JOIN project_members AS pm ON pm.user_id = u.id").
		Where("pm.project_id = ?", projectID).
		Order("u.name ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list team: %w", err)
	}

	team := make([]*user.Summary, 0, len(dbUsers))
	for _, dbu := range dbUsers {
		team = append(team, &user.Summary{ID: dbu.ID, Name: dbu.Name, Email: dbu.Email})
	}
	return team, nil
}

func mapDBProjectToModel(dbp *database.Project) *Project {
	return &Project{
		ID:          dbp.ID,
		ProjectName: dbp.ProjectName,
		ClientName:  dbp.ClientName,
		Description: dbp.Description,
		ManagerID:   dbp.ManagerID,
		CreatedAt:   dbp.CreatedAt,
		UpdatedAt:   dbp.UpdatedAt,
	}
}
