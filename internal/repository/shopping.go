package repository

import (
	"context"

	"foodgram/internal/models"

	"gorm.io/gorm"
)

// ShoppingListRepository aggregates ingredient lines across a user's cart.
type ShoppingListRepository interface {
	Aggregate(ctx context.Context, userID uint) ([]models.ShoppingItem, error)
}

type shoppingListRepository struct {
	db *gorm.DB
}

// NewShoppingListRepository creates a new shopping list repository
func NewShoppingListRepository(db *gorm.DB) ShoppingListRepository {
	return &shoppingListRepository{db: db}
}

// Aggregate sums line amounts per ingredient over every recipe in the user's
// cart, ordered by ingredient name. An empty cart yields an empty slice.
func (r *shoppingListRepository) Aggregate(ctx context.Context, userID uint) ([]models.ShoppingItem, error) {
	items := make([]models.ShoppingItem, 0)
	err := session(ctx, r.db).
		Table("recipe_ingredients").
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, SUM(recipe_ingredients.amount) AS total_amount").
		Joins("JOIN shopping_cart ON shopping_cart.recipe_id = recipe_ingredients.recipe_id").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Where("shopping_cart.user_id = ?", userID).
		Group("ingredients.id, ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name ASC, ingredients.id ASC").
		Scan(&items).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if items == nil {
		items = []models.ShoppingItem{}
	}
	return items, nil
}
