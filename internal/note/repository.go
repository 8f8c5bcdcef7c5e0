package note

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

var ErrNotFound = errors.New("note not found")

// Repository handles note persistence
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// Create attaches a note to a task
func (r *Repository) Create(ctx context.Context, taskID, createdBy uuid.UUID, content string) (*Note, error) {
	dbNote := &database.Note{
		TaskID:    taskID,
		CreatedBy: createdBy,
		Content:   content,
	}

	_, err := r.db.NewInsert().
		Model(dbNote).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}

	return mapDBNoteToModel(dbNote), nil
}

// ListForTask returns the task's notes with author projections, oldest first
func (r *Repository) ListForTask(ctx context.Context, taskID uuid.UUID) ([]*Note, error) {
	var dbNotes []*database.Note

	err := r.db.NewSelect().
		Model(&dbNotes).
		Relation("Creator", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Column("id", "name", "email")
		}).
		Where("n.task_id = ?", taskID).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}

	notes := make([]*Note, 0, len(dbNotes))
	for _, dbn := range dbNotes {
		n := mapDBNoteToModel(dbn)
		if dbn.Creator != nil {
			n.Creator = &user.Summary{ID: dbn.Creator.ID, Name: dbn.Creator.Name, Email: dbn.Creator.Email}
		}
		notes = append(notes, n)
	}
	return notes, nil
}

// GetByID returns one note
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Note, error) {
	dbNote := new(database.Note)
	err := r.db.NewSelect().
		Model(dbNote).
		Where("n.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get note: %w", err)
	}

	return mapDBNoteToModel(dbNote), nil
}

// Delete removes a note
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.NewDelete().
		Model((*database.Note)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
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

func mapDBNoteToModel(dbn *database.Note) *Note {
	return &Note{
		ID:        dbn.ID,
		TaskID:    dbn.TaskID,
		Content:   dbn.Content,
		CreatedBy: dbn.CreatedBy,
		CreatedAt: dbn.CreatedAt,
	}
}
