// Package validation holds the field rules shared by request DTOs and the seed loader.
package validation

import (
	"fmt"
	"regexp"
	"unicode"
)

var (
	usernameRegex = regexp.MustCompile(`^[\w.@+-]+$`)
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	hexColorRegex = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)
	slugRegex     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
	digitRegex    = regexp.MustCompile(`[0-9]`)
)

// Usernames that collide with /api/users/<segment>/ routes.
var reservedUsernames = map[string]struct{}{
	"me":            {},
	"subscriptions": {},
	"set_password":  {},
}

// ValidatePassword checks if a password meets strength requirements
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}
	if len(password) > 128 {
		return fmt.Errorf("password must not exceed 128 characters")
	}

	var hasUpper, hasLower bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		}
	}
	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !digitRegex.MatchString(password) {
		return fmt.Errorf("password must contain at least one digit")
	}

	return nil
}

// ValidateUsername checks if a username meets requirements
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("username is required")
	}
	if len(username) > 150 {
		return fmt.Errorf("username must not exceed 150 characters")
	}
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("username can only contain letters, digits and @/./+/-/_")
	}
	if _, reserved := reservedUsernames[username]; reserved {
		return fmt.Errorf("username %q is reserved", username)
	}
	return nil
}

// ValidateEmail checks basic email format
func ValidateEmail(email string) error {
	if len(email) > 254 {
		return fmt.Errorf("email must not exceed 254 characters")
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// ValidateHexColor accepts #RRGGBB only.
func ValidateHexColor(color string) error {
	if !hexColorRegex.MatchString(color) {
		return fmt.Errorf("color must be a hex value like #49B64E")
	}
	return nil
}

// ValidateSlug checks tag slug format.
func ValidateSlug(slug string) error {
	if len(slug) == 0 || len(slug) > 200 {
		return fmt.Errorf("slug must be 1-200 characters")
	}
	if !slugRegex.MatchString(slug) {
		return fmt.Errorf("slug can only contain letters, digits, hyphens and underscores")
	}
	return nil
}
