package repository

import (
	"context"
	"errors"
	"time"

	"foodgram/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecipeFilter narrows a recipe listing. Zero values mean "no filter".
type RecipeFilter struct {
	TagSlugs    []string
	AuthorID    uint
	FavoritedBy uint
	InCartOf    uint
	Limit       int
	Offset      int
}

// RecipeRepository persists the recipe aggregate: the recipe row, its
// ingredient lines and its tag links.
type RecipeRepository interface {
	CreateWithAssociations(ctx context.Context, recipe *models.Recipe, tagIDs []uint, lines []models.IngredientAmount) error
	ReplaceWithAssociations(ctx context.Context, recipe *models.Recipe, tagIDs []uint, lines []models.IngredientAmount) error
	GetByID(ctx context.Context, id uint, viewerID uint) (*models.Recipe, error)
	GetAuthorID(ctx context.Context, id uint) (uint, error)
	List(ctx context.Context, filter RecipeFilter, viewerID uint) ([]*models.Recipe, int64, error)
	ListByAuthor(ctx context.Context, authorID uint, limit int) ([]*models.Recipe, error)
	CountByAuthors(ctx context.Context, authorIDs []uint) (map[uint]int64, error)
	Delete(ctx context.Context, id uint) error
}

type recipeRepository struct {
	db *gorm.DB
}

// NewRecipeRepository creates a new recipe repository
func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{db: db}
}

// CreateWithAssociations inserts the recipe, its lines and its tag links in
// one transaction. Any failure leaves no rows behind.
func (r *recipeRepository) CreateWithAssociations(ctx context.Context, recipe *models.Recipe, tagIDs []uint, lines []models.IngredientAmount) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(recipe).Error; err != nil {
			return err
		}
		return insertAssociations(tx, recipe.ID, tagIDs, lines)
	})
	return translateWriteError(err)
}

// ReplaceWithAssociations updates the scalar fields of an existing recipe and
// replaces its lines and tag links wholesale, in one transaction.
func (r *recipeRepository) ReplaceWithAssociations(ctx context.Context, recipe *models.Recipe, tagIDs []uint, lines []models.IngredientAmount) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		recipe.UpdatedAt = time.Now()
		res := tx.Model(&models.Recipe{}).Where("id = ?", recipe.ID).Updates(map[string]interface{}{
			"name":         recipe.Name,
			"text":         recipe.Text,
			"cooking_time": recipe.CookingTime,
			"image":        recipe.Image,
			"updated_at":   recipe.UpdatedAt,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Recipe", recipe.ID)
		}

		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeTag{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		return insertAssociations(tx, recipe.ID, tagIDs, lines)
	})
	return translateWriteError(err)
}

// insertAssociations writes lines in submission order so that line ids keep
// that order for reads.
func insertAssociations(tx *gorm.DB, recipeID uint, tagIDs []uint, lines []models.IngredientAmount) error {
	if len(lines) > 0 {
		rows := make([]models.RecipeIngredient, 0, len(lines))
		for _, line := range lines {
			rows = append(rows, models.RecipeIngredient{
				RecipeID:     recipeID,
				IngredientID: line.ID,
				Amount:       line.Amount,
			})
		}
		if err := tx.Omit(clause.Associations).Create(&rows).Error; err != nil {
			return err
		}
	}

	if len(tagIDs) > 0 {
		links := make([]models.RecipeTag, 0, len(tagIDs))
		for _, tagID := range tagIDs {
			links = append(links, models.RecipeTag{RecipeID: recipeID, TagID: tagID})
		}
		if err := tx.Create(&links).Error; err != nil {
			return err
		}
	}
	return nil
}

// translateWriteError keeps AppErrors raised inside the transaction and maps
// store constraint errors onto the error taxonomy.
func translateWriteError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *models.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return &models.AppError{
			Code:    models.CodeValidation,
			Reason:  models.ReasonUnknownReference,
			Message: "Recipe references an ingredient or tag that does not exist",
			Err:     err,
		}
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return models.NewFieldError("ingredients", models.ReasonDuplicateIngredient, "Ingredients must not repeat")
	case isOutOfRange(err):
		return &models.AppError{
			Code:    models.CodeValidation,
			Reason:  models.ReasonInvalidField,
			Message: "A numeric value is out of range",
			Err:     err,
		}
	default:
		return models.NewInternalError(err)
	}
}

// isOutOfRange matches SQLSTATE 22003 (numeric_value_out_of_range).
func isOutOfRange(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "22003"
}

// withDetails preloads the read model and computes the viewer-relative flags
// in the same query.
func withDetails(db *gorm.DB, viewerID uint) *gorm.DB {
	q := db.
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB {
			return db.Order("tags.name ASC")
		}).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
			return db.Order("recipe_ingredients.id ASC")
		}).
		Preload("Ingredients.Ingredient")

	if viewerID == 0 {
		return q.Select("recipes.*, false AS is_favorited, false AS is_in_shopping_cart")
	}
	return q.Select("recipes.*, "+
		"EXISTS(SELECT 1 FROM favorites WHERE favorites.recipe_id = recipes.id AND favorites.user_id = ?) AS is_favorited, "+
		"EXISTS(SELECT 1 FROM shopping_cart WHERE shopping_cart.recipe_id = recipes.id AND shopping_cart.user_id = ?) AS is_in_shopping_cart",
		viewerID, viewerID)
}

func (r *recipeRepository) GetByID(ctx context.Context, id uint, viewerID uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := withDetails(session(ctx, r.db), viewerID).Where("recipes.id = ?", id).First(&recipe).Error; err != nil {
		return nil, notFoundOr(err, "Recipe", id)
	}
	return &recipe, nil
}

func (r *recipeRepository) GetAuthorID(ctx context.Context, id uint) (uint, error) {
	var recipe models.Recipe
	if err := session(ctx, r.db).Select("id", "author_id").First(&recipe, id).Error; err != nil {
		return 0, notFoundOr(err, "Recipe", id)
	}
	return recipe.AuthorID, nil
}

func applyRecipeFilter(db *gorm.DB, f RecipeFilter) *gorm.DB {
	if len(f.TagSlugs) > 0 {
		db = db.Where("recipes.id IN (?)",
			db.Session(&gorm.Session{NewDB: true}).
				Table("recipe_tags").
				Select("recipe_tags.recipe_id").
				Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
				Where("tags.slug IN ?", f.TagSlugs),
		)
	}
	if f.AuthorID != 0 {
		db = db.Where("recipes.author_id = ?", f.AuthorID)
	}
	if f.FavoritedBy != 0 {
		db = db.Where("recipes.id IN (SELECT recipe_id FROM favorites WHERE user_id = ?)", f.FavoritedBy)
	}
	if f.InCartOf != 0 {
		db = db.Where("recipes.id IN (SELECT recipe_id FROM shopping_cart WHERE user_id = ?)", f.InCartOf)
	}
	return db
}

// List returns one page of recipes newest first plus the unpaginated count.
func (r *recipeRepository) List(ctx context.Context, filter RecipeFilter, viewerID uint) ([]*models.Recipe, int64, error) {
	var total int64
	if err := applyRecipeFilter(session(ctx, r.db).Model(&models.Recipe{}), filter).Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	recipes := make([]*models.Recipe, 0)
	if total == 0 {
		return recipes, 0, nil
	}

	q := applyRecipeFilter(withDetails(session(ctx, r.db), viewerID), filter).
		Order("recipes.created_at DESC, recipes.id DESC")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}
	if err := q.Find(&recipes).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return recipes, total, nil
}

// ListByAuthor returns the author's newest recipes; limit <= 0 means all.
func (r *recipeRepository) ListByAuthor(ctx context.Context, authorID uint, limit int) ([]*models.Recipe, error) {
	recipes := make([]*models.Recipe, 0)
	q := session(ctx, r.db).
		Where("author_id = ?", authorID).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&recipes).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return recipes, nil
}

func (r *recipeRepository) CountByAuthors(ctx context.Context, authorIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(authorIDs))
	if len(authorIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		AuthorID uint
		Total    int64
	}
	if err := session(ctx, r.db).Model(&models.Recipe{}).
		Select("author_id, COUNT(*) AS total").
		Where("author_id IN ?", authorIDs).
		Group("author_id").
		Scan(&rows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, row := range rows {
		counts[row.AuthorID] = row.Total
	}
	return counts, nil
}

// Delete removes the recipe together with everything that hangs off it.
func (r *recipeRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, owned := range []interface{}{
			&models.RecipeTag{},
			&models.RecipeIngredient{},
			&models.Favorite{},
			&models.CartEntry{},
		} {
			if err := tx.Where("recipe_id = ?", id).Delete(owned).Error; err != nil {
				return err
			}
		}
		res := tx.Delete(&models.Recipe{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Recipe", id)
		}
		return nil
	})
	return translateWriteError(err)
}
