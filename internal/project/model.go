package project

import (
	"time"

	"github.com/google/uuid"
)

type Project struct {
	ID          uuid.UUID `json:"id"`
	ProjectName string    `json:"project_name"`
	ClientName  string    `json:"client_name"`
	Description string    `json:"description"`
	ManagerID   uuid.UUID `json:"manager_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Tasks is populated on single-project reads
	Tasks []TaskSummary `json:"tasks,omitempty"`
}

// TaskSummary is the projection of a task embedded in a project response.
type TaskSummary struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
}
