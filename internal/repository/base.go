// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"

	"foodgram/internal/models"

	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"
)

type primaryCtxKey struct{}

// WithPrimary marks ctx so that repository reads go to the primary database
// instead of a read replica. Used to read back a row right after writing it.
func WithPrimary(ctx context.Context) context.Context {
	return context.WithValue(ctx, primaryCtxKey{}, true)
}

// session returns db bound to ctx, pinned to the primary when ctx asks for it.
func session(ctx context.Context, db *gorm.DB) *gorm.DB {
	q := db.WithContext(ctx)
	if pinned, _ := ctx.Value(primaryCtxKey{}).(bool); pinned {
		q = q.Clauses(dbresolver.Write)
	}
	return q
}

// notFoundOr maps gorm.ErrRecordNotFound to a NOT_FOUND AppError and wraps
// anything else as INTERNAL_ERROR.
func notFoundOr(err error, resource string, id interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	return models.NewInternalError(err)
}

// missingIDs returns the members of want absent from have, preserving the
// order of want.
func missingIDs(want, have []uint) []uint {
	found := make(map[uint]struct{}, len(have))
	for _, id := range have {
		found[id] = struct{}{}
	}
	var missing []uint
	for _, id := range want {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}
