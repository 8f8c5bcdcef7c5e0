package note

import (
	"time"

	"github.com/google/uuid"

	"github.com/uptask-dev/uptask/internal/user"
)

type Note struct {
	ID        uuid.UUID     `json:"id"`
	TaskID    uuid.UUID     `json:"task_id"`
	Content   string        `json:"content"`
	CreatedBy uuid.UUID     `json:"created_by"`
	CreatedAt time.Time     `json:"created_at"`
	Creator   *user.Summary `json:"creator,omitempty"`
}
