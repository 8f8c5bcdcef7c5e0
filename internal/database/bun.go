package database

import (
	"database/sql"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
)

// NewBunDB creates a new Bun DB instance from an existing sql.DB connection
func NewBunDB(sqlDB *sql.DB) *bun.DB {
	db := bun.NewDB(sqlDB, pgdialect.New())

	// m2m join model for project teams must be registered before use
	db.RegisterModel((*ProjectMember)(nil))

	return db
}
