package models

import "time"

// Favorite marks a recipe as favorited by a user.
type Favorite struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_favorite_user_recipe"`
	RecipeID  uint      `gorm:"not null;uniqueIndex:idx_favorite_user_recipe;index"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Recipe    Recipe    `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
}

// TableName specifies the table name for GORM
func (Favorite) TableName() string {
	return "favorites"
}

// CartEntry places a recipe into a user's shopping cart.
type CartEntry struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_cart_user_recipe"`
	RecipeID  uint      `gorm:"not null;uniqueIndex:idx_cart_user_recipe;index"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Recipe    Recipe    `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
}

// TableName specifies the table name for GORM
func (CartEntry) TableName() string {
	return "shopping_cart"
}

// Subscription records that UserID follows AuthorID's recipes.
type Subscription struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_subscription_pair;check:chk_subscriptions_not_self,user_id <> author_id"`
	AuthorID  uint      `gorm:"not null;uniqueIndex:idx_subscription_pair;index"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Author    User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `gorm:"index"`
}

// TableName specifies the table name for GORM
func (Subscription) TableName() string {
	return "subscriptions"
}
