package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the bun table model backing registered accounts.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Email        string    `bun:"email,notnull,unique"`
	PasswordHash string    `bun:"password_hash,notnull"`
	Name         string    `bun:"name,notnull"`
	Confirmed    bool      `bun:"confirmed,notnull,default:false"`
	CreatedAt    time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt    time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// Project owns tasks and carries exactly one manager plus a team of members.
type Project struct {
	bun.BaseModel `bun:"table:projects,alias:p"`

	ID          uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	ProjectName string    `bun:"project_name,notnull"`
	ClientName  string    `bun:"client_name,notnull"`
	Description string    `bun:"description,notnull"`
	ManagerID   uuid.UUID `bun:"manager_id,notnull,type:uuid"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt   time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`

	Manager *User   `bun:"rel:belongs-to,join:manager_id=id"`
	Tasks   []*Task `bun:"rel:has-many,join:id=project_id"`
	Team    []*User `bun:"m2m:project_members,join:Project=User"`
}

// ProjectMember is the m2m join between projects and their team members.
// The manager is never stored here; that invariant is enforced by the
// team service.
type ProjectMember struct {
	bun.BaseModel `bun:"table:project_members,alias:pm"`

	ProjectID uuid.UUID `bun:"project_id,pk,type:uuid"`
	UserID    uuid.UUID `bun:"user_id,pk,type:uuid"`

	Project *Project `bun:"rel:belongs-to,join:project_id=id"`
	User    *User    `bun:"rel:belongs-to,join:user_id=id"`
}

// Task belongs to exactly one project.
type Task struct {
	bun.BaseModel `bun:"table:tasks,alias:t"`

	ID          uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	ProjectID   uuid.UUID `bun:"project_id,notnull,type:uuid"`
	Name        string    `bun:"name,notnull"`
	Description string    `bun:"description,notnull"`
	Status      string    `bun:"status,notnull,default:'pending'"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt   time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`

	Project       *Project            `bun:"rel:belongs-to,join:project_id=id"`
	StatusChanges []*TaskStatusChange `bun:"rel:has-many,join:id=task_id"`
	Notes         []*Note             `bun:"rel:has-many,join:id=task_id"`
}

// TaskStatusChange is one row of a task's append-only status audit trail.
// Rows are only ever inserted, never updated or pruned.
type TaskStatusChange struct {
	bun.BaseModel `bun:"table:task_status_changes,alias:tsc"`

	ID        uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	TaskID    uuid.UUID `bun:"task_id,notnull,type:uuid"`
	UserID    uuid.UUID `bun:"user_id,notnull,type:uuid"`
	Status    string    `bun:"status,notnull"`
	ChangedAt time.Time `bun:"changed_at,nullzero,notnull,default:current_timestamp"`

	User *User `bun:"rel:belongs-to,join:user_id=id"`
}

// Note is attached to a task and bound to its author.
type Note struct {
	bun.BaseModel `bun:"table:notes,alias:n"`

	ID        uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	TaskID    uuid.UUID `bun:"task_id,notnull,type:uuid"`
	CreatedBy uuid.UUID `bun:"created_by,notnull,type:uuid"`
	Content   string    `bun:"content,notnull"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`

	Creator *User `bun:"rel:belongs-to,join:created_by=id"`
}
