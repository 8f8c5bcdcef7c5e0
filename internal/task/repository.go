package task

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/uptask-dev/uptask/internal/database"
	"github.com/uptask-dev/uptask/internal/user"
)

var ErrNotFound = errors.New("task not found")

// Repository handles task persistence
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new task in the pending status
func (r *Repository) Create(ctx context.Context, projectID uuid.UUID, name, description string) (*Task, error) {
	dbTask := &database.Task{
		ProjectID:   projectID,
		Name:        name,
		Description: description,
		Status:      string(StatusPending),
	}

	_, err := r.db.NewInsert().
		Model(dbTask).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return mapDBTaskToModel(dbTask), nil
}

// ListForProject returns the project's tasks, oldest first
func (r *Repository) ListForProject(ctx context.Context, projectID uuid.UUID) ([]*Task, error) {
	var dbTasks []*database.Task

	err := r.db.NewSelect().
		Model(&dbTasks).
		Where("t.project_id = ?", projectID).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	tasks := make([]*Task, 0, len(dbTasks))
	for _, dbt := range dbTasks {
		tasks = append(tasks, mapDBTaskToModel(dbt))
	}
	return tasks, nil
}

// GetByID performs the point lookup used by the resolution middleware
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Task, error) {
	dbTask := new(database.Task)
	err := r.db.NewSelect().
		Model(dbTask).
		Where("t.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	return mapDBTaskToModel(dbTask), nil
}

// GetByIDWithDetails returns a task with its status history and notes
// populated, each row carrying the id/name/email projection of its author.
func (r *Repository) GetByIDWithDetails(ctx context.Context, id uuid.UUID) (*Task, error) {
	dbTask := new(database.Task)
	err := r.db.NewSelect().
		Model(dbTask).
		Relation("StatusChanges", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("changed_at ASC")
		}).
		Relation("StatusChanges.User", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Column("id", "name", "email")
		}).
		Relation("Notes", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("created_at ASC")
		}).
		Relation("Notes.Creator", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Column("id", "name", "email")
		}).
		Where("t.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	t := mapDBTaskToModel(dbTask)
	for _, dbc := range dbTask.StatusChanges {
		change := StatusChange{
			ID:        dbc.ID,
			Status:    Status(dbc.Status),
			ChangedAt: dbc.ChangedAt,
		}
		if dbc.User != nil {
			change.User = &user.Summary{ID: dbc.User.ID, Name: dbc.User.Name, Email: dbc.User.Email}
		}
		t.StatusChanges = append(t.StatusChanges, change)
	}
	for _, dbn := range dbTask.Notes {
		note := Note{
			ID:        dbn.ID,
			Content:   dbn.Content,
			CreatedBy: dbn.CreatedBy,
			CreatedAt: dbn.CreatedAt,
		}
		if dbn.Creator != nil {
			note.Creator = &user.Summary{ID: dbn.Creator.ID, Name: dbn.Creator.Name, Email: dbn.Creator.Email}
		}
		t.Notes = append(t.Notes, note)
	}
	return t, nil
}

// Update changes a task's name and description
func (r *Repository) Update(ctx context.Context, id uuid.UUID, name, description string) error {
	result, err := r.db.NewUpdate().
		Model((*database.Task)(nil)).
		Set("name = ?", name).
		Set("description = ?", description).
		Set("updated_at = NOW()").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	return requireRowsAffected(result)
}

// UpdateStatus moves the task to a new status and appends the change to the
// audit trail. Both writes run in one transaction so the trail never drifts
// from the task's actual status.
func (r *Repository) UpdateStatus(ctx context.Context, id, userID uuid.UUID, status Status) error {
	return r.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		result, err := tx.NewUpdate().
			Model((*database.Task)(nil)).
			Set("status = ?", string(status)).
			Set("updated_at = NOW()").
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to update task status: %w", err)
		}

		if err := requireRowsAffected(result); err != nil {
			return err
		}

		change := &database.TaskStatusChange{
			TaskID: id,
			UserID: userID,
			Status: string(status),
		}
		if _, err := tx.NewInsert().Model(change).Exec(ctx); err != nil {
			return fmt.Errorf("failed to record status change: %w", err)
		}

		return nil
	})
}

// Delete removes a task along with its notes and status history, all in one
// transaction.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*database.Note)(nil)).
			Where("task_id = ?", id).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to delete notes: %w", err)
		}

		if _, err := tx.NewDelete().
			Model((*database.TaskStatusChange)(nil)).
			Where("task_id = ?", id).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to delete status history: %w", err)
		}

		result, err := tx.NewDelete().
			Model((*database.Task)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to delete task: %w", err)
		}

		return requireRowsAffected(result)
	})
}

func requireRowsAffected(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func mapDBTaskToModel(dbt *database.Task) *Task {
	return &Task{
		ID:          dbt.ID,
		ProjectID:   dbt.ProjectID,
		Name:        dbt.Name,
		Description: dbt.Description,
		Status:      Status(dbt.Status),
		CreatedAt:   dbt.CreatedAt,
		UpdatedAt:   dbt.UpdatedAt,
	}
}
