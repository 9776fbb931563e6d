// Package testutil provides shared test databases and fixtures for backend tests.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"foodgram/internal/database"
	"foodgram/internal/models"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var dbSeq atomic.Int64

// NewSQLiteDB opens a private in-memory SQLite database with foreign keys on
// and the full schema migrated.
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:foodgram_%d_%d?mode=memory&cache=shared&_foreign_keys=on",
		time.Now().UnixNano(), dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), database.GormConfig())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	return db
}

// TestPassword is the plaintext password of users created by CreateUser.
const TestPassword = "SecurePass12"

var passwordHash = func() string {
	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return string(hash)
}()

// CreateUser inserts a user whose password is TestPassword.
func CreateUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Email:     username + "@example.com",
		Username:  username,
		FirstName: "First",
		LastName:  "Last",
		Password:  passwordHash,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateTag inserts a tag with a fixed colour.
func CreateTag(t *testing.T, db *gorm.DB, name, slug string) *models.Tag {
	t.Helper()
	tag := &models.Tag{Name: name, Color: "#49B64E", Slug: slug}
	require.NoError(t, db.Create(tag).Error)
	return tag
}

// CreateIngredient inserts a catalog ingredient.
func CreateIngredient(t *testing.T, db *gorm.DB, name, unit string) *models.Ingredient {
	t.Helper()
	ingredient := &models.Ingredient{Name: name, MeasurementUnit: unit}
	require.NoError(t, db.Create(ingredient).Error)
	return ingredient
}

// CreateRecipe inserts a recipe with the given lines and tags directly,
// bypassing composer validation.
func CreateRecipe(t *testing.T, db *gorm.DB, author *models.User, name string, tagIDs []uint, lines ...models.IngredientAmount) *models.Recipe {
	t.Helper()
	recipe := &models.Recipe{
		AuthorID:    author.ID,
		Name:        name,
		Text:        name + " instructions",
		CookingTime: 10,
	}
	require.NoError(t, db.Omit("Author", "Tags", "Ingredients").Create(recipe).Error)
	for _, line := range lines {
		require.NoError(t, db.Omit("Ingredient").Create(&models.RecipeIngredient{
			RecipeID:     recipe.ID,
			IngredientID: line.ID,
			Amount:       line.Amount,
		}).Error)
	}
	for _, tagID := range tagIDs {
		require.NoError(t, db.Create(&models.RecipeTag{RecipeID: recipe.ID, TagID: tagID}).Error)
	}
	return recipe
}
