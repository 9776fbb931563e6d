package models

import (
	"time"
)

// Recipe is the root of the recipe aggregate: the row itself plus its owned
// ingredient lines and its tag links.
type Recipe struct {
	ID          uint               `gorm:"primaryKey"`
	AuthorID    uint               `gorm:"not null;index"`
	Author      User               `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	Name        string             `gorm:"size:200;not null"`
	Image       string             `gorm:"size:512;not null;default:''"`
	Text        string             `gorm:"type:text;not null"`
	CookingTime int                `gorm:"not null;check:chk_recipes_cooking_time,cooking_time >= 1"`
	Tags        []Tag              `gorm:"many2many:recipe_tags;constraint:OnDelete:CASCADE"`
	Ingredients []RecipeIngredient `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
	// IsFavorited is not persisted; computed per viewer at query time
	IsFavorited bool `gorm:"->;-:migration"`
	// IsInShoppingCart is not persisted; computed per viewer at query time
	IsInShoppingCart bool `gorm:"->;-:migration"`
	CreatedAt        time.Time `gorm:"index"`
	UpdatedAt        time.Time
}

// TableName specifies the table name for GORM
func (Recipe) TableName() string {
	return "recipes"
}

// RecipeIngredient is one (ingredient, amount) line of a recipe.
type RecipeIngredient struct {
	ID           uint       `gorm:"primaryKey"`
	RecipeID     uint       `gorm:"not null;uniqueIndex:idx_recipe_ingredient"`
	IngredientID uint       `gorm:"not null;uniqueIndex:idx_recipe_ingredient;index"`
	Ingredient   Ingredient `gorm:"foreignKey:IngredientID;constraint:OnDelete:CASCADE"`
	Amount       int        `gorm:"not null;check:chk_recipe_ingredients_amount,amount >= 1"`
}

// TableName specifies the table name for GORM
func (RecipeIngredient) TableName() string {
	return "recipe_ingredients"
}

// RecipeTag is the join row between a recipe and a tag.
type RecipeTag struct {
	RecipeID uint `gorm:"primaryKey;autoIncrement:false"`
	TagID    uint `gorm:"primaryKey;autoIncrement:false;index"`
}

// TableName specifies the table name for GORM
func (RecipeTag) TableName() string {
	return "recipe_tags"
}

// IngredientAmount is one submitted ingredient line of a recipe write.
type IngredientAmount struct {
	ID     uint `json:"id"`
	Amount int  `json:"amount"`
}
