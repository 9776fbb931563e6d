package database

import (
	"foodgram/internal/models"

	"gorm.io/gorm"
)

// PersistentModels returns the authoritative set of schema-managed GORM models.
// Order matters for AutoMigrate: referenced tables first.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Tag{},
		&models.Ingredient{},
		&models.Recipe{},
		&models.RecipeIngredient{},
		&models.RecipeTag{},
		&models.Favorite{},
		&models.CartEntry{},
		&models.Subscription{},
	}
}

// AutoMigrate creates or updates every persistent table.
func AutoMigrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&models.Recipe{}, "Tags", &models.RecipeTag{}); err != nil {
		return err
	}
	return db.AutoMigrate(PersistentModels()...)
}
