package repository

import (
	"context"
	"errors"
	"fmt"

	"foodgram/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MembershipStore is a set of unique (owner, target) pairs.
type MembershipStore interface {
	Add(ctx context.Context, ownerID, targetID uint) error
	Remove(ctx context.Context, ownerID, targetID uint) error
	Contains(ctx context.Context, ownerID, targetID uint) (bool, error)
	TargetsAmong(ctx context.Context, ownerID uint, targetIDs []uint) (map[uint]bool, error)
}

// RelationSet stores unique (owner, target) pairs in the table of T. Duplicate
// detection relies on the table's unique index, so concurrent adds of the same
// pair resolve to exactly one row and one CONFLICT.
type RelationSet[T any] struct {
	db              *gorm.DB
	ownerColumn     string
	targetColumn    string
	newRow          func(ownerID, targetID uint) *T
	conflictMessage string
	missingMessage  string
}

// RelationSetConfig describes one relation table.
type RelationSetConfig[T any] struct {
	OwnerColumn     string
	TargetColumn    string
	NewRow          func(ownerID, targetID uint) *T
	ConflictMessage string
	MissingMessage  string
}

// NewRelationSet creates a relation set over the table of T.
func NewRelationSet[T any](db *gorm.DB, cfg RelationSetConfig[T]) *RelationSet[T] {
	return &RelationSet[T]{
		db:              db,
		ownerColumn:     cfg.OwnerColumn,
		targetColumn:    cfg.TargetColumn,
		newRow:          cfg.NewRow,
		conflictMessage: cfg.ConflictMessage,
		missingMessage:  cfg.MissingMessage,
	}
}

func (s *RelationSet[T]) pair(ownerID, targetID uint) (string, []interface{}) {
	return fmt.Sprintf("%s = ? AND %s = ?", s.ownerColumn, s.targetColumn), []interface{}{ownerID, targetID}
}

// Add inserts the pair. An existing pair yields CONFLICT; a dangling owner or
// target yields NOT_FOUND.
func (s *RelationSet[T]) Add(ctx context.Context, ownerID, targetID uint) error {
	err := s.db.WithContext(ctx).Omit(clause.Associations).Create(s.newRow(ownerID, targetID)).Error
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return models.NewConflictError(s.conflictMessage)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return &models.AppError{Code: models.CodeNotFound, Message: s.missingMessage, Err: err}
	default:
		return models.NewInternalError(err)
	}
}

// Remove deletes the pair, or reports NOT_FOUND when it was absent.
func (s *RelationSet[T]) Remove(ctx context.Context, ownerID, targetID uint) error {
	where, args := s.pair(ownerID, targetID)
	res := s.db.WithContext(ctx).Where(where, args...).Delete(new(T))
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return &models.AppError{Code: models.CodeNotFound, Message: s.missingMessage}
	}
	return nil
}

func (s *RelationSet[T]) Contains(ctx context.Context, ownerID, targetID uint) (bool, error) {
	if ownerID == 0 {
		return false, nil
	}
	where, args := s.pair(ownerID, targetID)
	var count int64
	if err := session(ctx, s.db).Model(new(T)).Where(where, args...).Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// TargetsAmong reports which of targetIDs are paired with ownerID. An
// anonymous owner (0) is paired with nothing.
func (s *RelationSet[T]) TargetsAmong(ctx context.Context, ownerID uint, targetIDs []uint) (map[uint]bool, error) {
	result := make(map[uint]bool, len(targetIDs))
	if ownerID == 0 || len(targetIDs) == 0 {
		return result, nil
	}

	var found []uint
	if err := session(ctx, s.db).Model(new(T)).
		Where(fmt.Sprintf("%s = ? AND %s IN ?", s.ownerColumn, s.targetColumn), ownerID, targetIDs).
		Pluck(s.targetColumn, &found).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, id := range found {
		result[id] = true
	}
	return result, nil
}

// NewFavoriteSet is the favorites relation: user -> recipe.
func NewFavoriteSet(db *gorm.DB) *RelationSet[models.Favorite] {
	return NewRelationSet(db, RelationSetConfig[models.Favorite]{
		OwnerColumn:  "user_id",
		TargetColumn: "recipe_id",
		NewRow: func(ownerID, targetID uint) *models.Favorite {
			return &models.Favorite{UserID: ownerID, RecipeID: targetID}
		},
		ConflictMessage: "Recipe is already in favorites",
		MissingMessage:  "Recipe is not in favorites",
	})
}

// NewCartSet is the shopping cart relation: user -> recipe.
func NewCartSet(db *gorm.DB) *RelationSet[models.CartEntry] {
	return NewRelationSet(db, RelationSetConfig[models.CartEntry]{
		OwnerColumn:  "user_id",
		TargetColumn: "recipe_id",
		NewRow: func(ownerID, targetID uint) *models.CartEntry {
			return &models.CartEntry{UserID: ownerID, RecipeID: targetID}
		},
		ConflictMessage: "Recipe is already in the shopping cart",
		MissingMessage:  "Recipe is not in the shopping cart",
	})
}

// NewSubscriptionSet is the subscription relation: subscriber -> author.
func NewSubscriptionSet(db *gorm.DB) *RelationSet[models.Subscription] {
	return NewRelationSet(db, RelationSetConfig[models.Subscription]{
		OwnerColumn:  "user_id",
		TargetColumn: "author_id",
		NewRow: func(ownerID, targetID uint) *models.Subscription {
			return &models.Subscription{UserID: ownerID, AuthorID: targetID}
		},
		ConflictMessage: "You are already subscribed to this author",
		MissingMessage:  "You are not subscribed to this author",
	})
}
