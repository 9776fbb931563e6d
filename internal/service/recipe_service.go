package service

import (
	"context"

	"foodgram/internal/middleware"
	"foodgram/internal/models"
	"foodgram/internal/repository"
)

type RecipeService struct {
	recipes       repository.RecipeRepository
	subscriptions repository.MembershipStore
	composer      *Composer
}

type ListRecipesInput struct {
	ViewerID         uint
	TagSlugs         []string
	AuthorID         uint
	IsFavorited      bool
	IsInShoppingCart bool
	Limit            int
	Offset           int
}

func NewRecipeService(
	recipes repository.RecipeRepository,
	subscriptions repository.MembershipStore,
	composer *Composer,
) *RecipeService {
	return &RecipeService{
		recipes:       recipes,
		subscriptions: subscriptions,
		composer:      composer,
	}
}

// List returns one page of recipes, newest first. The favorites and cart
// filters only apply to signed-in viewers.
func (s *RecipeService) List(ctx context.Context, in ListRecipesInput) (*models.Page[models.RecipeView], error) {
	filter := repository.RecipeFilter{
		TagSlugs: in.TagSlugs,
		AuthorID: in.AuthorID,
		Limit:    in.Limit,
		Offset:   in.Offset,
	}
	if in.ViewerID != 0 {
		if in.IsFavorited {
			filter.FavoritedBy = in.ViewerID
		}
		if in.IsInShoppingCart {
			filter.InCartOf = in.ViewerID
		}
	}

	recipes, total, err := s.recipes.List(ctx, filter, in.ViewerID)
	if err != nil {
		return nil, err
	}

	views, err := s.views(ctx, in.ViewerID, recipes)
	if err != nil {
		return nil, err
	}
	return &models.Page[models.RecipeView]{Count: total, Results: views}, nil
}

func (s *RecipeService) Get(ctx context.Context, id, viewerID uint) (*models.RecipeView, error) {
	recipe, err := s.recipes.GetByID(ctx, id, viewerID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, viewerID, recipe)
}

func (s *RecipeService) Create(ctx context.Context, in RecipeInput) (*models.RecipeView, error) {
	recipe, err := s.composer.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	middleware.Logger.InfoContext(ctx, "recipe created", "recipe_id", recipe.ID)
	return s.view(ctx, in.AuthorID, recipe)
}

// Update lets the recipe's author replace it.
func (s *RecipeService) Update(ctx context.Context, recipeID uint, in RecipeInput) (*models.RecipeView, error) {
	if err := s.authorize(ctx, recipeID, in.AuthorID); err != nil {
		return nil, err
	}
	recipe, err := s.composer.Update(ctx, recipeID, in)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, in.AuthorID, recipe)
}

// Delete lets the recipe's author remove it.
func (s *RecipeService) Delete(ctx context.Context, recipeID, userID uint) error {
	if err := s.authorize(ctx, recipeID, userID); err != nil {
		return err
	}
	if err := s.recipes.Delete(ctx, recipeID); err != nil {
		return err
	}
	middleware.RecipeWrites.WithLabelValues("delete").Inc()
	middleware.Logger.InfoContext(ctx, "recipe deleted", "recipe_id", recipeID)
	return nil
}

func (s *RecipeService) authorize(ctx context.Context, recipeID, userID uint) error {
	authorID, err := s.recipes.GetAuthorID(ctx, recipeID)
	if err != nil {
		return err
	}
	if authorID != userID {
		return models.NewForbiddenError("Only the author can change this recipe")
	}
	return nil
}

func (s *RecipeService) view(ctx context.Context, viewerID uint, recipe *models.Recipe) (*models.RecipeView, error) {
	views, err := s.views(ctx, viewerID, []*models.Recipe{recipe})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *RecipeService) views(ctx context.Context, viewerID uint, recipes []*models.Recipe) ([]models.RecipeView, error) {
	authorIDs := make([]uint, 0, len(recipes))
	for _, r := range recipes {
		authorIDs = append(authorIDs, r.AuthorID)
	}
	subscribed, err := s.subscriptions.TargetsAmong(ctx, viewerID, dedupeIDs(authorIDs))
	if err != nil {
		return nil, err
	}

	views := make([]models.RecipeView, 0, len(recipes))
	for _, r := range recipes {
		views = append(views, models.NewRecipeView(r, subscribed[r.AuthorID]))
	}
	return views, nil
}
