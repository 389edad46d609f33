package repo

import (
	"context"

	"gorm.io/gorm"
)

// Base carries the gorm handle shared by the domain repositories. Repos
// embed it and reach the database through DB, which keeps context
// propagation in one place.
type Base struct {
	db *gorm.DB
}

// NewBase wraps a gorm connection for embedding in a domain repository.
func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the connection bound to ctx. A nil ctx yields the raw handle.
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// Rebind returns a copy of the base scoped to the given transaction, for
// repositories that expose a WithTx variant. A nil tx keeps the original
// connection.
func (b Base) Rebind(tx *gorm.DB) Base {
	if tx == nil {
		return b
	}
	return Base{db: tx}
}
