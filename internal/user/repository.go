package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/uptask-dev/uptask/internal/database"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

// Repository handles user persistence
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new user. Emails are stored lowercased so uniqueness is
// case-insensitive.
func (r *Repository) Create(ctx context.Context, email, passwordHash, name string) (*User, error) {
	dbUser := &database.User{
		Email:        strings.ToLower(email),
		PasswordHash: passwordHash,
		Name:         name,
	}

	_, err := r.db.NewInsert().
		Model(dbUser).
		Returning("*").
		Exec(ctx)

	if err != nil {
		if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// GetByEmail retrieves a user by email (case-insensitive)
func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where("email = ?", strings.ToLower(email)).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// GetByID retrieves a user by ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where("id = ?", id).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// GetSummaryByID retrieves only id, name and email for a user. The password
// hash never leaves the store on this path; it backs the authentication
// middleware.
func (r *Repository) GetSummaryByID(ctx context.Context, id uuid.UUID) (*Summary, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Column("id", "name", "email").
		Where("id = ?", id).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user summary: %w", err)
	}

	return &Summary{ID: dbUser.ID, Name: dbUser.Name, Email: dbUser.Email}, nil
}

// GetSummaryByEmail retrieves only id, name and email, used by the team
// member search.
func (r *Repository) GetSummaryByEmail(ctx context.Context, email string) (*Summary, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Column("id", "name", "email").
		Where("email = ?", strings.ToLower(email)).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user summary by email: %w", err)
	}

	return &Summary{ID: dbUser.ID, Name: dbUser.Name, Email: dbUser.Email}, nil
}

// Confirm flips the confirmed flag after a successful code redemption
func (r *Repository) Confirm(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("confirmed = ?", true).
		Set("updated_at = NOW()").
		Where("id = ?", id).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to confirm user: %w", err)
	}

	return requireRowsAffected(result)
}

// UpdateProfile changes a user's name and email
func (r *Repository) UpdateProfile(ctx context.Context, id uuid.UUID, name, email string) error {
	result, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("name = ?", name).
		Set("email = ?", strings.ToLower(email)).
		Set("updated_at = NOW()").
		Where("id = ?", id).
		Exec(ctx)

	if err != nil {
		if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to update profile: %w", err)
	}

	return requireRowsAffected(result)
}

// UpdatePassword replaces a user's password hash
func (r *Repository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	result, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("password_hash = ?", passwordHash).
		Set("updated_at = NOW()").
		Where("id = ?", id).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return requireRowsAffected(result)
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

// mapDBUserToModel converts the database model to the domain model
func mapDBUserToModel(dbu *database.User) *User {
	return &User{
		ID:           dbu.ID,
		Email:        dbu.Email,
		Name:         dbu.Name,
		PasswordHash: dbu.PasswordHash,
		Confirmed:    dbu.Confirmed,
		CreatedAt:    dbu.CreatedAt,
		UpdatedAt:    dbu.UpdatedAt,
	}
}
