package seed

import (
	"context"
	"testing"

	"foodgram/internal/models"
	"foodgram/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestDefaultCatalogParses(t *testing.T) {
	c, err := DefaultCatalog()
	require.NoError(t, err)
	assert.NotEmpty(t, c.Tags)
	assert.NotEmpty(t, c.Ingredients)

	slugs := map[string]bool{}
	for _, tag := range c.Tags {
		assert.False(t, slugs[tag.Slug], "duplicate slug %s", tag.Slug)
		slugs[tag.Slug] = true
	}
}

func TestParseCatalog_RejectsIncompleteRows(t *testing.T) {
	_, err := ParseCatalog([]byte("tags:\n  - name: Lunch\n"))
	assert.ErrorContains(t, err, "slug")

	_, err = ParseCatalog([]byte("ingredients:\n  - name: salt\n"))
	assert.ErrorContains(t, err, "measurement_unit")

	_, err = ParseCatalog([]byte("tags: [oops"))
	assert.Error(t, err)
}

func TestParseCatalog_RejectsMalformedTags(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "named colour",
			yaml:    "tags: [{name: Vegan, color: red, slug: \"has space\"}]",
			wantErr: "color",
		},
		{
			name:    "short hex",
			yaml:    "tags: [{name: Vegan, color: \"#fff\", slug: vegan}]",
			wantErr: "color",
		},
		{
			name:    "slug with space",
			yaml:    "tags: [{name: Vegan, color: \"#49B64E\", slug: \"has space\"}]",
			wantErr: "slug",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tt.yaml))
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}

	c, err := ParseCatalog([]byte("tags: [{name: Vegan, color: \"#49b64e\", slug: vegan_food}]"))
	require.NoError(t, err)
	assert.Len(t, c.Tags, 1)
}

func TestSeedCatalog_Idempotent(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()
	c, err := DefaultCatalog()
	require.NoError(t, err)

	first, err := SeedCatalog(ctx, db, c)
	require.NoError(t, err)
	assert.Equal(t, len(c.Tags), first.TagsCreated)
	assert.Equal(t, len(c.Ingredients), first.IngredientsCreated)

	second, err := SeedCatalog(ctx, db, c)
	require.NoError(t, err)
	assert.Zero(t, second.TagsCreated)
	assert.Zero(t, second.IngredientsCreated)

	var tags, ingredients int64
	require.NoError(t, db.Model(&models.Tag{}).Count(&tags).Error)
	require.NoError(t, db.Model(&models.Ingredient{}).Count(&ingredients).Error)
	assert.EqualValues(t, len(c.Tags), tags)
	assert.EqualValues(t, len(c.Ingredients), ingredients)
}

func TestSeedDemo(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()
	c, err := DefaultCatalog()
	require.NoError(t, err)
	_, err = SeedCatalog(ctx, db, c)
	require.NoError(t, err)

	result, err := NewFactory(db, 42).SeedDemo(ctx, DemoOptions{
		Users:          4,
		RecipesPerUser: 2,
		HashCost:       bcrypt.MinCost,
	})
	require.NoError(t, err)
	assert.Equal(t, 4, result.Users)
	assert.Equal(t, 8, result.Recipes)
	assert.Positive(t, result.Favorites)

	var lines []models.RecipeIngredient
	require.NoError(t, db.Find(&lines).Error)
	seen := map[[2]uint]bool{}
	for _, l := range lines {
		key := [2]uint{l.RecipeID, l.IngredientID}
		assert.False(t, seen[key], "ingredient repeated within recipe %d", l.RecipeID)
		seen[key] = true
		assert.GreaterOrEqual(t, l.Amount, 1)
	}

	var selfSubs int64
	require.NoError(t, db.Model(&models.Subscription{}).Where("user_id = author_id").Count(&selfSubs).Error)
	assert.Zero(t, selfSubs)

	require.NoError(t, ClearDemo(ctx, db))
	var users, recipes, tags int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	require.NoError(t, db.Model(&models.Recipe{}).Count(&recipes).Error)
	require.NoError(t, db.Model(&models.Tag{}).Count(&tags).Error)
	assert.Zero(t, users)
	assert.Zero(t, recipes)
	assert.EqualValues(t, len(c.Tags), tags)
}

func TestSeedDemo_RequiresCatalog(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	_, err := NewFactory(db, 1).SeedDemo(context.Background(), DemoOptions{Users: 1})
	assert.ErrorContains(t, err, "catalog is empty")
}
