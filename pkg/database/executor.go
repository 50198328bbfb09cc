package database

import (
	"context"

	"gorm.io/gorm"
)

// Executor runs assembled statements through GORM's raw interface. Raw
// passes the SQL and bind arguments to the driver verbatim, so numbered
// placeholders work against PostgreSQL and positional ones against SQLite.
type Executor struct {
	db *gorm.DB
}

func NewExecutor(db *gorm.DB) *Executor {
	return &Executor{db: db}
}

func (e *Executor) Select(ctx context.Context, dest any, query string, args ...any) error {
	return e.db.WithContext(ctx).Raw(query, args...).Scan(dest).Error
}

func (e *Executor) Get(ctx context.Context, dest any, query string, args ...any) error {
	return e.db.WithContext(ctx).Raw(query, args...).Scan(dest).Error
}
