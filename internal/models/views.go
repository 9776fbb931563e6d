package models

import "time"

// UserView is the public representation of a user relative to a viewer.
type UserView struct {
	ID           uint   `json:"id"`
	Email        string `json:"email"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsSubscribed bool   `json:"is_subscribed"`
}

// NewUserView projects a user for a viewer.
func NewUserView(u User, subscribed bool) UserView {
	return UserView{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: subscribed,
	}
}

// IngredientLineView is a recipe line with the ingredient denormalized.
type IngredientLineView struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

// RecipeView is the full read model of a recipe.
type RecipeView struct {
	ID               uint                 `json:"id"`
	Tags             []Tag                `json:"tags"`
	Author           UserView             `json:"author"`
	Ingredients      []IngredientLineView `json:"ingredients"`
	IsFavorited      bool                 `json:"is_favorited"`
	IsInShoppingCart bool                 `json:"is_in_shopping_cart"`
	Name             string               `json:"name"`
	Image            string               `json:"image"`
	Text             string               `json:"text"`
	CookingTime      int                  `json:"cooking_time"`
	CreatedAt        time.Time            `json:"created_at"`
}

// NewRecipeView projects a loaded recipe. Flags on the recipe are taken as
// already computed for the viewer.
func NewRecipeView(r *Recipe, authorSubscribed bool) RecipeView {
	tags := make([]Tag, len(r.Tags))
	copy(tags, r.Tags)

	lines := make([]IngredientLineView, 0, len(r.Ingredients))
	for _, line := range r.Ingredients {
		lines = append(lines, IngredientLineView{
			ID:              line.IngredientID,
			Name:            line.Ingredient.Name,
			MeasurementUnit: line.Ingredient.MeasurementUnit,
			Amount:          line.Amount,
		})
	}

	return RecipeView{
		ID:               r.ID,
		Tags:             tags,
		Author:           NewUserView(r.Author, authorSubscribed),
		Ingredients:      lines,
		IsFavorited:      r.IsFavorited,
		IsInShoppingCart: r.IsInShoppingCart,
		Name:             r.Name,
		Image:            r.Image,
		Text:             r.Text,
		CookingTime:      r.CookingTime,
		CreatedAt:        r.CreatedAt,
	}
}

// RecipeShortView is the compact recipe form used in membership responses
// and subscription feeds.
type RecipeShortView struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

// NewRecipeShortView projects a recipe into its compact form.
func NewRecipeShortView(r *Recipe) RecipeShortView {
	return RecipeShortView{
		ID:          r.ID,
		Name:        r.Name,
		Image:       r.Image,
		CookingTime: r.CookingTime,
	}
}

// AuthorFeed is one followed author with a capped preview of their recipes.
type AuthorFeed struct {
	UserView
	Recipes      []RecipeShortView `json:"recipes"`
	RecipesCount int64             `json:"recipes_count"`
}

// ShoppingItem is one aggregated line of a shopping list.
type ShoppingItem struct {
	Name            string `json:"name"`
	TotalAmount     int64  `json:"total_amount"`
	MeasurementUnit string `json:"measurement_unit"`
}

// Page is a counted slice of results.
type Page[T any] struct {
	Count   int64 `json:"count"`
	Results []T   `json:"results"`
}
