// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User represents a registered account. Recipes, favorites, cart entries and
// subscriptions all hang off a user.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"size:254;uniqueIndex;not null" json:"email"`
	Username  string    `gorm:"size:150;uniqueIndex;not null" json:"username"`
	FirstName string    `gorm:"size:150;not null;default:''" json:"first_name"`
	LastName  string    `gorm:"size:150;not null;default:''" json:"last_name"`
	Password  string    `gorm:"not null" json:"-"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}
