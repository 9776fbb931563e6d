package seed

import (
	"context"
	"fmt"
	"strings"

	"foodgram/internal/models"
	"foodgram/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DemoPassword is the password of every generated user.
const DemoPassword = "Foodgram2024"

// DemoOptions sizes the generated data set.
type DemoOptions struct {
	Users          int
	RecipesPerUser int
	// Seed makes the generated data reproducible. Zero picks a random seed.
	Seed int64
	// HashCost is the bcrypt cost for DemoPassword; tests use bcrypt.MinCost.
	HashCost int
}

// DemoResult reports what SeedDemo created.
type DemoResult struct {
	Users         int
	Recipes       int
	Favorites     int
	CartEntries   int
	Subscriptions int
}

// Factory generates demo users, recipes and memberships on top of an
// already seeded catalog. Recipes go through the recipe repository so they get
// the same transactional write path as the API.
type Factory struct {
	db      *gorm.DB
	faker   *gofakeit.Faker
	recipes repository.RecipeRepository
	favs    repository.MembershipStore
	cart    repository.MembershipStore
	subs    repository.MembershipStore
}

func NewFactory(db *gorm.DB, seed int64) *Factory {
	return &Factory{
		db:      db,
		faker:   gofakeit.New(seed),
		recipes: repository.NewRecipeRepository(db),
		favs:    repository.NewFavoriteSet(db),
		cart:    repository.NewCartSet(db),
		subs:    repository.NewSubscriptionSet(db),
	}
}

// SeedDemo fills the database with opts.Users users, their recipes, and a
// random web of favorites, cart entries and subscriptions.
func (f *Factory) SeedDemo(ctx context.Context, opts DemoOptions) (DemoResult, error) {
	var result DemoResult

	var tags []models.Tag
	if err := f.db.WithContext(ctx).Find(&tags).Error; err != nil {
		return result, err
	}
	var ingredients []models.Ingredient
	if err := f.db.WithContext(ctx).Find(&ingredients).Error; err != nil {
		return result, err
	}
	if len(tags) == 0 || len(ingredients) == 0 {
		return result, fmt.Errorf("catalog is empty; seed tags and ingredients first")
	}

	users, err := f.CreateUsers(ctx, opts.Users, opts.HashCost)
	if err != nil {
		return result, err
	}
	result.Users = len(users)

	var recipeIDs []uint
	for _, u := range users {
		for i := 0; i < opts.RecipesPerUser; i++ {
			recipe, err := f.CreateRecipe(ctx, u, tags, ingredients)
			if err != nil {
				return result, err
			}
			recipeIDs = append(recipeIDs, recipe.ID)
		}
	}
	result.Recipes = len(recipeIDs)

	for _, u := range users {
		for _, id := range f.pick(recipeIDs, 3) {
			if added, err := addIgnoringConflict(ctx, f.favs, u.ID, id); err != nil {
				return result, err
			} else if added {
				result.Favorites++
			}
		}
		for _, id := range f.pick(recipeIDs, 2) {
			if added, err := addIgnoringConflict(ctx, f.cart, u.ID, id); err != nil {
				return result, err
			} else if added {
				result.CartEntries++
			}
		}
		for _, author := range f.pickUsers(users, 2) {
			if author.ID == u.ID {
				continue
			}
			if added, err := addIgnoringConflict(ctx, f.subs, u.ID, author.ID); err != nil {
				return result, err
			} else if added {
				result.Subscriptions++
			}
		}
	}

	return result, nil
}

// CreateUsers inserts n users with unique usernames and DemoPassword.
func (f *Factory) CreateUsers(ctx context.Context, n, hashCost int) ([]*models.User, error) {
	if hashCost == 0 {
		hashCost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), hashCost)
	if err != nil {
		return nil, err
	}

	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		first := f.faker.FirstName()
		last := f.faker.LastName()
		username := fmt.Sprintf("%s%s%d", strings.ToLower(first), strings.ToLower(last[:1]), f.faker.Number(100, 99999))
		u := &models.User{
			Email:     username + "@example.com",
			Username:  username,
			FirstName: first,
			LastName:  last,
			Password:  string(hash),
		}
		if err := f.db.WithContext(ctx).Create(u).Error; err != nil {
			return nil, fmt.Errorf("create user %s: %w", username, err)
		}
		users = append(users, u)
	}
	return users, nil
}

// CreateRecipe stores one generated recipe authored by author, with one or
// two tags and two to five distinct ingredients.
func (f *Factory) CreateRecipe(ctx context.Context, author *models.User, tags []models.Tag, ingredients []models.Ingredient) (*models.Recipe, error) {
	recipe := &models.Recipe{
		AuthorID:    author.ID,
		Name:        f.recipeName(),
		Text:        f.faker.Paragraph(1, 4, 12, "\n"),
		CookingTime: f.faker.Number(5, 180),
	}

	tagIDs := make([]uint, 0, 2)
	for _, i := range f.shuffled(len(tags))[:min(len(tags), f.faker.Number(1, 2))] {
		tagIDs = append(tagIDs, tags[i].ID)
	}

	count := min(len(ingredients), f.faker.Number(2, 5))
	lines := make([]models.IngredientAmount, 0, count)
	for _, i := range f.shuffled(len(ingredients))[:count] {
		lines = append(lines, models.IngredientAmount{ID: ingredients[i].ID, Amount: f.faker.Number(1, 500)})
	}

	if err := f.recipes.CreateWithAssociations(ctx, recipe, tagIDs, lines); err != nil {
		return nil, fmt.Errorf("create recipe %q: %w", recipe.Name, err)
	}
	return recipe, nil
}

func (f *Factory) recipeName() string {
	switch f.faker.Number(0, 3) {
	case 0:
		return f.faker.Breakfast()
	case 1:
		return f.faker.Lunch()
	case 2:
		return f.faker.Dinner()
	default:
		return f.faker.Dessert()
	}
}

func (f *Factory) pick(ids []uint, n int) []uint {
	if len(ids) == 0 {
		return nil
	}
	out := make([]uint, 0, n)
	for _, i := range f.shuffled(len(ids))[:min(n, len(ids))] {
		out = append(out, ids[i])
	}
	return out
}

func (f *Factory) pickUsers(users []*models.User, n int) []*models.User {
	out := make([]*models.User, 0, n)
	for _, i := range f.shuffled(len(users))[:min(n, len(users))] {
		out = append(out, users[i])
	}
	return out
}

// shuffled returns a random permutation of 0..n-1.
func (f *Factory) shuffled(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	f.faker.ShuffleInts(out)
	return out
}

func addIgnoringConflict(ctx context.Context, set repository.MembershipStore, ownerID, targetID uint) (bool, error) {
	err := set.Add(ctx, ownerID, targetID)
	switch {
	case err == nil:
		return true, nil
	case models.HasCode(err, models.CodeConflict):
		return false, nil
	default:
		return false, err
	}
}

// ClearDemo removes every user and everything hanging off them. The catalog
// is kept.
func ClearDemo(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{
			&models.Favorite{},
			&models.CartEntry{},
			&models.Subscription{},
			&models.RecipeTag{},
			&models.RecipeIngredient{},
			&models.Recipe{},
			&models.User{},
		} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
