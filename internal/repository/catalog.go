package repository

import (
	"context"
	"strings"
	"unicode/utf8"

	"foodgram/internal/models"

	"gorm.io/gorm"
)

// CatalogRepository reads tag and ingredient reference data.
type CatalogRepository interface {
	ListTags(ctx context.Context) ([]models.Tag, error)
	GetTag(ctx context.Context, id uint) (*models.Tag, error)
	MissingTagIDs(ctx context.Context, ids []uint) ([]uint, error)
	SearchIngredients(ctx context.Context, namePrefix string) ([]models.Ingredient, error)
	GetIngredient(ctx context.Context, id uint) (*models.Ingredient, error)
	MissingIngredientIDs(ctx context.Context, ids []uint) ([]uint, error)
}

type catalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository creates a new catalog repository
func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) ListTags(ctx context.Context) ([]models.Tag, error) {
	tags := make([]models.Tag, 0)
	if err := session(ctx, r.db).Order("name ASC, id ASC").Find(&tags).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return tags, nil
}

func (r *catalogRepository) GetTag(ctx context.Context, id uint) (*models.Tag, error) {
	var tag models.Tag
	if err := session(ctx, r.db).First(&tag, id).Error; err != nil {
		return nil, notFoundOr(err, "Tag", id)
	}
	return &tag, nil
}

func (r *catalogRepository) MissingTagIDs(ctx context.Context, ids []uint) ([]uint, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var found []uint
	if err := session(ctx, r.db).Model(&models.Tag{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return missingIDs(ids, found), nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SearchIngredients returns ingredients whose name starts with namePrefix,
// compared case-sensitively. An empty prefix lists the whole catalog.
func (r *catalogRepository) SearchIngredients(ctx context.Context, namePrefix string) ([]models.Ingredient, error) {
	ingredients := make([]models.Ingredient, 0)
	q := session(ctx, r.db).Order("name ASC, id ASC")
	if namePrefix != "" {
		// LIKE serves the index; the substr comparison pins case sensitivity
		// on engines whose LIKE folds ASCII case.
		q = q.Where(`name LIKE ? ESCAPE '\' AND substr(name, 1, ?) = ?`,
			likeEscaper.Replace(namePrefix)+"%",
			utf8.RuneCountInString(namePrefix),
			namePrefix,
		)
	}
	if err := q.Find(&ingredients).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return ingredients, nil
}

func (r *catalogRepository) GetIngredient(ctx context.Context, id uint) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := session(ctx, r.db).First(&ingredient, id).Error; err != nil {
		return nil, notFoundOr(err, "Ingredient", id)
	}
	return &ingredient, nil
}

func (r *catalogRepository) MissingIngredientIDs(ctx context.Context, ids []uint) ([]uint, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var found []uint
	if err := session(ctx, r.db).Model(&models.Ingredient{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return missingIDs(ids, found), nil
}
