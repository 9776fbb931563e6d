package repository

import (
	"context"
	"testing"

	"foodgram/internal/models"
	"foodgram/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShoppingListRepository_Aggregate(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()
	fx := newRecipeFixture(t, db)
	milk := testutil.CreateIngredient(t, db, "milk", "ml")
	repo := NewShoppingListRepository(db)
	cart := NewCartSet(db)

	pancakes := testutil.CreateRecipe(t, db, fx.author, "Pancakes", []uint{fx.vegan.ID},
		models.IngredientAmount{ID: fx.flour.ID, Amount: 200},
		models.IngredientAmount{ID: milk.ID, Amount: 300},
	)
	cake := testutil.CreateRecipe(t, db, fx.author, "Cake", []uint{fx.vegan.ID},
		models.IngredientAmount{ID: fx.flour.ID, Amount: 150},
		models.IngredientAmount{ID: fx.sugar.ID, Amount: 100},
	)
	notInCart := testutil.CreateRecipe(t, db, fx.author, "Bread", []uint{fx.vegan.ID},
		models.IngredientAmount{ID: fx.flour.ID, Amount: 1000},
	)
	_ = notInCart

	t.Run("empty cart", func(t *testing.T) {
		items, err := repo.Aggregate(ctx, fx.viewer.ID)
		require.NoError(t, err)
		assert.NotNil(t, items)
		assert.Empty(t, items)
	})

	require.NoError(t, cart.Add(ctx, fx.viewer.ID, pancakes.ID))
	require.NoError(t, cart.Add(ctx, fx.viewer.ID, cake.ID))

	items, err := repo.Aggregate(ctx, fx.viewer.ID)
	require.NoError(t, err)
	assert.Equal(t, []models.ShoppingItem{
		{Name: "flour", TotalAmount: 350, MeasurementUnit: "g"},
		{Name: "milk", TotalAmount: 300, MeasurementUnit: "ml"},
		{Name: "sugar", TotalAmount: 100, MeasurementUnit: "g"},
	}, items)

	// another user's cart is unaffected
	items, err = repo.Aggregate(ctx, fx.author.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}
