package service

import (
	"context"
	"fmt"
	"strings"

	"foodgram/internal/middleware"
	"foodgram/internal/models"
	"foodgram/internal/observability"
	"foodgram/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// RecipeInput is a fully submitted recipe. Image holds raw image bytes, or
// nil when the client sent none.
type RecipeInput struct {
	AuthorID    uint
	Name        string
	Text        string
	CookingTime int
	Image       []byte
	TagIDs      []uint
	Ingredients []models.IngredientAmount
}

// Composer validates recipe submissions and writes the recipe together with
// its ingredient lines and tag links. Callers must already be authorized.
type Composer struct {
	recipes repository.RecipeRepository
	catalog repository.CatalogRepository
	images  ImageStore
}

func NewComposer(recipes repository.RecipeRepository, catalog repository.CatalogRepository, images ImageStore) *Composer {
	return &Composer{recipes: recipes, catalog: catalog, images: images}
}

// Create validates in, stores its image and inserts the recipe. The returned
// recipe is read back with the author's viewer flags.
func (c *Composer) Create(ctx context.Context, in RecipeInput) (recipe *models.Recipe, err error) {
	ctx, span := observability.StartSpan(ctx, "recipe.compose.create",
		attribute.Int64("recipe.author_id", int64(in.AuthorID)))
	defer func() { observability.EndSpan(span, err) }()

	tagIDs, err := c.validate(ctx, &in)
	if err != nil {
		return nil, err
	}

	row := &models.Recipe{
		AuthorID:    in.AuthorID,
		Name:        in.Name,
		Text:        in.Text,
		CookingTime: in.CookingTime,
	}
	if in.Image != nil {
		if row.Image, err = c.saveImage(ctx, in.Image); err != nil {
			return nil, err
		}
	}

	if err = c.recipes.CreateWithAssociations(ctx, row, tagIDs, in.Ingredients); err != nil {
		return nil, err
	}
	middleware.RecipeWrites.WithLabelValues("create").Inc()

	return c.recipes.GetByID(repository.WithPrimary(ctx), row.ID, in.AuthorID)
}

// Update replaces the recipe's fields, lines and tags with in. The stored
// image is kept unless in carries new image data.
func (c *Composer) Update(ctx context.Context, recipeID uint, in RecipeInput) (recipe *models.Recipe, err error) {
	ctx, span := observability.StartSpan(ctx, "recipe.compose.update",
		attribute.Int64("recipe.id", int64(recipeID)))
	defer func() { observability.EndSpan(span, err) }()

	tagIDs, err := c.validate(ctx, &in)
	if err != nil {
		return nil, err
	}

	current, err := c.recipes.GetByID(ctx, recipeID, 0)
	if err != nil {
		return nil, err
	}

	row := &models.Recipe{
		ID:          recipeID,
		AuthorID:    current.AuthorID,
		Name:        in.Name,
		Text:        in.Text,
		CookingTime: in.CookingTime,
		Image:       current.Image,
	}
	if in.Image != nil {
		if row.Image, err = c.saveImage(ctx, in.Image); err != nil {
			return nil, err
		}
	}

	if err = c.recipes.ReplaceWithAssociations(ctx, row, tagIDs, in.Ingredients); err != nil {
		return nil, err
	}
	middleware.RecipeWrites.WithLabelValues("update").Inc()

	return c.recipes.GetByID(repository.WithPrimary(ctx), recipeID, in.AuthorID)
}

func (c *Composer) saveImage(ctx context.Context, data []byte) (string, error) {
	if c.images == nil {
		return "", models.NewInternalError(fmt.Errorf("no image store configured"))
	}
	return c.images.Save(ctx, data)
}

const (
	MaxRecipeNameLength = 200
	// MaxSmallPositive bounds cooking_time and ingredient amounts.
	MaxSmallPositive = 32767
)

// validate checks in and returns the de-duplicated tag ids, in submission
// order. The first failing rule wins.
func (c *Composer) validate(ctx context.Context, in *RecipeInput) ([]uint, error) {
	in.Name = strings.TrimSpace(in.Name)
	switch {
	case in.Name == "":
		return nil, models.NewFieldError("name", models.ReasonMissingField, "This field is required.")
	case strings.TrimSpace(in.Text) == "":
		return nil, models.NewFieldError("text", models.ReasonMissingField, "This field is required.")
	case in.CookingTime == 0:
		return nil, models.NewFieldError("cooking_time", models.ReasonMissingField, "This field is required.")
	case in.CookingTime < 1:
		return nil, models.NewFieldError("cooking_time", models.ReasonMissingField, "Ensure this value is greater than or equal to 1.")
	case len([]rune(in.Name)) > MaxRecipeNameLength:
		return nil, models.NewFieldError("name", models.ReasonInvalidField,
			fmt.Sprintf("Ensure this field has no more than %d characters.", MaxRecipeNameLength))
	case in.CookingTime > MaxSmallPositive:
		return nil, models.NewFieldError("cooking_time", models.ReasonInvalidField,
			fmt.Sprintf("Ensure this value is less than or equal to %d.", MaxSmallPositive))
	}

	if len(in.TagIDs) == 0 {
		return nil, models.NewFieldError("tags", models.ReasonNoTags, "At least one tag is required.")
	}
	if len(in.Ingredients) == 0 {
		return nil, models.NewFieldError("ingredients", models.ReasonNoIngredients, "At least one ingredient is required.")
	}

	seen := make(map[uint]struct{}, len(in.Ingredients))
	ingredientIDs := make([]uint, 0, len(in.Ingredients))
	for _, line := range in.Ingredients {
		if _, dup := seen[line.ID]; dup {
			return nil, models.NewFieldError("ingredients", models.ReasonDuplicateIngredient,
				fmt.Sprintf("Ingredient %d is listed more than once.", line.ID))
		}
		seen[line.ID] = struct{}{}
		ingredientIDs = append(ingredientIDs, line.ID)
	}
	for _, line := range in.Ingredients {
		if line.Amount < 1 {
			return nil, models.NewFieldError("ingredients", models.ReasonInvalidAmount,
				fmt.Sprintf("Amount of ingredient %d must be at least 1.", line.ID))
		}
		if line.Amount > MaxSmallPositive {
			return nil, models.NewFieldError("ingredients", models.ReasonInvalidAmount,
				fmt.Sprintf("Amount of ingredient %d must be at most %d.", line.ID, MaxSmallPositive))
		}
	}

	tagIDs := dedupeIDs(in.TagIDs)

	missing, err := c.catalog.MissingIngredientIDs(ctx, ingredientIDs)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		return nil, models.NewFieldError("ingredients", models.ReasonUnknownReference,
			fmt.Sprintf("Unknown ingredient id(s): %s.", joinIDs(missing)))
	}

	missing, err = c.catalog.MissingTagIDs(ctx, tagIDs)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		return nil, models.NewFieldError("tags", models.ReasonUnknownReference,
			fmt.Sprintf("Unknown tag id(s): %s.", joinIDs(missing)))
	}

	return tagIDs, nil
}

func dedupeIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func joinIDs(ids []uint) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	return strings.Join(parts, ", ")
}
