package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"foodgram/internal/models"
	"foodgram/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

type recipeFixture struct {
	author, viewer *models.User
	vegan, lunch   *models.Tag
	flour, sugar   *models.Ingredient
}

func newRecipeFixture(t *testing.T, db *gorm.DB) recipeFixture {
	return recipeFixture{
		author: testutil.CreateUser(t, db, "author"),
		viewer: testutil.CreateUser(t, db, "viewer"),
		vegan:  testutil.CreateTag(t, db, "Vegan", "vegan"),
		lunch:  testutil.CreateTag(t, db, "Lunch", "lunch"),
		flour:  testutil.CreateIngredient(t, db, "flour", "g"),
		sugar:  testutil.CreateIngredient(t, db, "sugar", "g"),
	}
}

func TestRecipeRepository_CreateAndGet(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewRecipeRepository(db)
	ctx := context.Background()
	fx := newRecipeFixture(t, db)

	recipe := &models.Recipe{AuthorID: fx.author.ID, Name: "Pancakes", Text: "Mix", CookingTime: 15}
	lines := []models.IngredientAmount{{ID: fx.sugar.ID, Amount: 3}, {ID: fx.flour.ID, Amount: 200}}
	require.NoError(t, repo.CreateWithAssociations(ctx, recipe, []uint{fx.vegan.ID, fx.lunch.ID}, lines))
	require.NotZero(t, recipe.ID)

	got, err := repo.GetByID(ctx, recipe.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, "Pancakes", got.Name)
	assert.Equal(t, "author", got.Author.Username)
	require.Len(t, got.Tags, 2)
	assert.Equal(t, "Lunch", got.Tags[0].Name)
	require.Len(t, got.Ingredients, 2)
	// submission order, not name order
	assert.Equal(t, "sugar", got.Ingredients[0].Ingredient.Name)
	assert.Equal(t, 3, got.Ingredients[0].Amount)
	assert.Equal(t, "flour", got.Ingredients[1].Ingredient.Name)
	assert.False(t, got.IsFavorited)
	assert.False(t, got.IsInShoppingCart)

	authorID, err := repo.GetAuthorID(ctx, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, fx.author.ID, authorID)

	_, err = repo.GetByID(ctx, 999, 0)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestRecipeRepository_ViewerFlags(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewRecipeRepository(db)
	ctx := context.Background()
	fx := newRecipeFixture(t, db)

	recipe := testutil.CreateRecipe(t, db, fx.author, "Soup", []uint{fx.vegan.ID}, models.IngredientAmount{ID: fx.flour.ID, Amount: 1})
	require.NoError(t, NewFavoriteSet(db).Add(ctx, fx.viewer.ID, recipe.ID))

	got, err := repo.GetByID(ctx, recipe.ID, fx.viewer.ID)
	require.NoError(t, err)
	assert.True(t, got.IsFavorited)
	assert.False(t, got.IsInShoppingCart)

	require.NoError(t, NewCartSet(db).Add(ctx, fx.viewer.ID, recipe.ID))
	got, err = repo.GetByID(ctx, recipe.ID, fx.viewer.ID)
	require.NoError(t, err)
	assert.True(t, got.IsInShoppingCart)

	got, err = repo.GetByID(ctx, recipe.ID, fx.author.ID)
	require.NoError(t, err)
	assert.False(t, got.IsFavorited)
}

func TestRecipeRepository_CreateRejectsUnknownIngredient(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewRecipeRepository(db)
	fx := newRecipeFixture(t, db)

	recipe := &models.Recipe{AuthorID: fx.author.ID, Name: "Ghost", Text: "Boo", CookingTime: 1}
	err := repo.CreateWithAssociations(context.Background(), recipe, []uint{fx.vegan.ID}, []models.IngredientAmount{{ID: 999, Amount: 1}})
	require.Error(t, err)
	assert.True(t, models.HasReason(err, models.ReasonUnknownReference))

	var count int64
	require.NoError(t, db.Model(&models.Recipe{}).Count(&count).Error)
	assert.Zero(t, count, "failed create must not leave a recipe row")
}

func TestRecipeRepository_CreateRollsBackOnLineFailure(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewRecipeRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "recipes"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "recipe_ingredients"`)).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	recipe := &models.Recipe{AuthorID: 1, Name: "Pie", Text: "Bake", CookingTime: 30}
	err := repo.CreateWithAssociations(context.Background(), recipe, []uint{1}, []models.IngredientAmount{{ID: 1, Amount: 2}})
	require.Error(t, err)
	assert.True(t, models.HasCode(err, models.CodeInternal))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTranslateWriteError_OutOfRange(t *testing.T) {
	err := translateWriteError(&pgconn.PgError{Code: "22003", Message: "value out of range for type smallint"})
	require.Error(t, err)
	assert.True(t, models.HasCode(err, models.CodeValidation))
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.ReasonInvalidField, appErr.Reason)
	assert.Equal(t, 400, appErr.Status())

	err = translateWriteError(&pgconn.PgError{Code: "08006"})
	assert.True(t, models.HasCode(err, models.CodeInternal))
}

func TestRecipeRepository_ReplaceWithAssociations(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewRecipeRepository(db)
	ctx := context.Background()
	fx := newRecipeFixture(t, db)

	recipe := testutil.CreateRecipe(t, db, fx.author, "Bread", []uint{fx.vegan.ID, fx.lunch.ID},
		models.IngredientAmount{ID: fx.flour.ID, Amount: 500},
		models.IngredientAmount{ID: fx.sugar.ID, Amount: 10},
	)

	dinner := testutil.CreateTag(t, db, "Dinner", "dinner")

	recipe.Name = "Sweet bread"
	recipe.CookingTime = 45
	require.NoError(t, repo.ReplaceWithAssociations(ctx, recipe, []uint{fx.lunch.ID, dinner.ID},
		[]models.IngredientAmount{{ID: fx.sugar.ID, Amount: 50}}))

	got, err := repo.GetByID(ctx, recipe.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, "Sweet bread", got.Name)
	assert.Equal(t, 45, got.CookingTime)
	slugs := make([]string, 0, len(got.Tags))
	for _, tag := range got.Tags {
		slugs = append(slugs, tag.Slug)
	}
	assert.ElementsMatch(t, []string{"lunch", "dinner"}, slugs)

	var links int64
	require.NoError(t, db.Model(&models.RecipeTag{}).Where("recipe_id = ?", recipe.ID).Count(&links).Error)
	assert.EqualValues(t, 2, links)
	require.Len(t, got.Ingredients, 1)
	assert.Equal(t, 50, got.Ingredients[0].Amount)

	var lines int64
	require.NoError(t, db.Model(&models.RecipeIngredient{}).Where("recipe_id = ?", recipe.ID).Count(&lines).Error)
	assert.EqualValues(t, 1, lines)

	missing := &models.Recipe{ID: 999, Name: "x", Text: "y", CookingTime: 1}
	err = repo.ReplaceWithAssociations(ctx, missing, []uint{fx.lunch.ID}, []models.IngredientAmount{{ID: fx.sugar.ID, Amount: 1}})
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestRecipeRepository_ListFilters(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewRecipeRepository(db)
	ctx := context.Background()
	fx := newRecipeFixture(t, db)
	line := models.IngredientAmount{ID: fx.flour.ID, Amount: 1}

	first := testutil.CreateRecipe(t, db, fx.author, "First", []uint{fx.vegan.ID}, line)
	second := testutil.CreateRecipe(t, db, fx.author, "Second", []uint{fx.lunch.ID}, line)
	third := testutil.CreateRecipe(t, db, fx.viewer, "Third", []uint{fx.vegan.ID, fx.lunch.ID}, line)

	ids := func(recipes []*models.Recipe) []uint {
		out := make([]uint, 0, len(recipes))
		for _, r := range recipes {
			out = append(out, r.ID)
		}
		return out
	}

	t.Run("newest first with count", func(t *testing.T) {
		got, total, err := repo.List(ctx, RecipeFilter{Limit: 2}, 0)
		require.NoError(t, err)
		assert.EqualValues(t, 3, total)
		assert.Equal(t, []uint{third.ID, second.ID}, ids(got))
	})

	t.Run("offset", func(t *testing.T) {
		got, total, err := repo.List(ctx, RecipeFilter{Limit: 2, Offset: 2}, 0)
		require.NoError(t, err)
		assert.EqualValues(t, 3, total)
		assert.Equal(t, []uint{first.ID}, ids(got))
	})

	t.Run("tags are OR-ed and do not duplicate rows", func(t *testing.T) {
		got, total, err := repo.List(ctx, RecipeFilter{TagSlugs: []string{"vegan", "lunch"}}, 0)
		require.NoError(t, err)
		assert.EqualValues(t, 3, total)
		assert.Len(t, got, 3)

		got, total, err = repo.List(ctx, RecipeFilter{TagSlugs: []string{"vegan"}}, 0)
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
		assert.Equal(t, []uint{third.ID, first.ID}, ids(got))
	})

	t.Run("author", func(t *testing.T) {
		got, _, err := repo.List(ctx, RecipeFilter{AuthorID: fx.viewer.ID}, 0)
		require.NoError(t, err)
		assert.Equal(t, []uint{third.ID}, ids(got))
	})

	t.Run("favorited and cart", func(t *testing.T) {
		require.NoError(t, NewFavoriteSet(db).Add(ctx, fx.viewer.ID, first.ID))
		require.NoError(t, NewCartSet(db).Add(ctx, fx.viewer.ID, second.ID))

		got, total, err := repo.List(ctx, RecipeFilter{FavoritedBy: fx.viewer.ID}, fx.viewer.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		require.Len(t, got, 1)
		assert.True(t, got[0].IsFavorited)

		got, _, err = repo.List(ctx, RecipeFilter{InCartOf: fx.viewer.ID}, fx.viewer.ID)
		require.NoError(t, err)
		assert.Equal(t, []uint{second.ID}, ids(got))
		assert.True(t, got[0].IsInShoppingCart)
	})

	t.Run("no matches", func(t *testing.T) {
		got, total, err := repo.List(ctx, RecipeFilter{TagSlugs: []string{"dessert"}}, 0)
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})
}

func TestRecipeRepository_AuthorQueries(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewRecipeRepository(db)
	ctx := context.Background()
	fx := newRecipeFixture(t, db)
	line := models.IngredientAmount{ID: fx.flour.ID, Amount: 1}

	testutil.CreateRecipe(t, db, fx.author, "A", []uint{fx.vegan.ID}, line)
	newest := testutil.CreateRecipe(t, db, fx.author, "B", []uint{fx.vegan.ID}, line)

	got, err := repo.ListByAuthor(ctx, fx.author.ID, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, newest.ID, got[0].ID)

	counts, err := repo.CountByAuthors(ctx, []uint{fx.author.ID, fx.viewer.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 2, counts[fx.author.ID])
	assert.EqualValues(t, 0, counts[fx.viewer.ID])
}

func TestRecipeRepository_DeleteCascades(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewRecipeRepository(db)
	ctx := context.Background()
	fx := newRecipeFixture(t, db)

	recipe := testutil.CreateRecipe(t, db, fx.author, "Gone", []uint{fx.vegan.ID}, models.IngredientAmount{ID: fx.flour.ID, Amount: 5})
	require.NoError(t, NewFavoriteSet(db).Add(ctx, fx.viewer.ID, recipe.ID))
	require.NoError(t, NewCartSet(db).Add(ctx, fx.viewer.ID, recipe.ID))

	require.NoError(t, repo.Delete(ctx, recipe.ID))

	for _, model := range []interface{}{&models.RecipeIngredient{}, &models.RecipeTag{}, &models.Favorite{}, &models.CartEntry{}} {
		var count int64
		require.NoError(t, db.Model(model).Count(&count).Error)
		assert.Zero(t, count)
	}

	var tags int64
	require.NoError(t, db.Model(&models.Tag{}).Count(&tags).Error)
	assert.EqualValues(t, 2, tags, "shared catalog rows survive")

	err := repo.Delete(ctx, recipe.ID)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}
