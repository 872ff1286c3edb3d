// Package repo holds the embedding base shared by the gorm-backed domain
// repositories.
package repo

import (
	"context"

	"gorm.io/gorm"
)

// Base carries the gorm handle a domain repository operates on. Repositories
// embed it and swap the handle through their WithTx implementations.
type Base struct {
	conn *gorm.DB
}

func NewBase(conn *gorm.DB) Base {
	return Base{conn: conn}
}

// DB binds the handle to ctx so cancellation propagates into queries.
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.conn
	}
	return b.conn.WithContext(ctx)
}
