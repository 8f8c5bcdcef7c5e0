package task

import (
	"time"

	"github.com/google/uuid"

	"github.com/uptask-dev/uptask/internal/user"
)

// Status is a task's place in the workflow.
type Status string

const (
	StatusPending     Status = "pending"
	StatusOnHold      Status = "onHold"
	StatusInProgress  Status = "inProgress"
	StatusUnderReview Status = "underReview"
	StatusCompleted   Status = "completed"
)

// ValidStatus reports whether s is one of the workflow statuses.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusOnHold, StatusInProgress, StatusUnderReview, StatusCompleted:
		return true
	}
	return false
}

type Task struct {
	ID          uuid.UUID `json:"id"`
	ProjectID   uuid.UUID `json:"project_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// StatusChanges and Notes are populated on single-task reads
	StatusChanges []StatusChange `json:"status_changes,omitempty"`
	Notes         []Note         `json:"notes,omitempty"`
}

// StatusChange is one entry of a task's append-only status audit trail.
type StatusChange struct {
	ID        uuid.UUID     `json:"id"`
	Status    Status        `json:"status"`
	ChangedAt time.Time     `json:"changed_at"`
	User      *user.Summary `json:"user,omitempty"`
}

// Note is a comment attached to a task, bound to its author.
type Note struct {
	ID        uuid.UUID     `json:"id"`
	Content   string        `json:"content"`
	CreatedBy uuid.UUID     `json:"created_by"`
	CreatedAt time.Time     `json:"created_at"`
	Creator   *user.Summary `json:"creator,omitempty"`
}
