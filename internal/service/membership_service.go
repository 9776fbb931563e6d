package service

import (
	"context"

	"foodgram/internal/models"
	"foodgram/internal/repository"
)

// RecipeMembershipService manages one user -> recipe set: favorites or the
// shopping cart.
type RecipeMembershipService struct {
	set     repository.MembershipStore
	recipes repository.RecipeRepository
}

func NewRecipeMembershipService(set repository.MembershipStore, recipes repository.RecipeRepository) *RecipeMembershipService {
	return &RecipeMembershipService{set: set, recipes: recipes}
}

// Add puts the recipe into the user's set and returns its short form.
func (s *RecipeMembershipService) Add(ctx context.Context, userID, recipeID uint) (*models.RecipeShortView, error) {
	recipe, err := s.recipes.GetByID(ctx, recipeID, 0)
	if err != nil {
		return nil, err
	}
	if err := s.set.Add(ctx, userID, recipeID); err != nil {
		return nil, err
	}
	view := models.NewRecipeShortView(recipe)
	return &view, nil
}

func (s *RecipeMembershipService) Remove(ctx context.Context, userID, recipeID uint) error {
	if _, err := s.recipes.GetAuthorID(ctx, recipeID); err != nil {
		return err
	}
	return s.set.Remove(ctx, userID, recipeID)
}

// SubscriptionService manages who follows which author and builds the
// subscriptions feed.
type SubscriptionService struct {
	subscriptions repository.MembershipStore
	users         repository.UserRepository
	recipes       repository.RecipeRepository
}

func NewSubscriptionService(
	subscriptions repository.MembershipStore,
	users repository.UserRepository,
	recipes repository.RecipeRepository,
) *SubscriptionService {
	return &SubscriptionService{
		subscriptions: subscriptions,
		users:         users,
		recipes:       recipes,
	}
}

// Subscribe makes userID follow authorID and returns the author's feed entry
// with up to recipesLimit recipes (all when recipesLimit <= 0).
func (s *SubscriptionService) Subscribe(ctx context.Context, userID, authorID uint, recipesLimit int) (*models.AuthorFeed, error) {
	if userID == authorID {
		return nil, models.NewFieldError("author", models.ReasonSelfSubscription, "You cannot subscribe to yourself")
	}
	author, err := s.users.GetByID(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if err := s.subscriptions.Add(ctx, userID, authorID); err != nil {
		return nil, err
	}

	counts, err := s.recipes.CountByAuthors(ctx, []uint{authorID})
	if err != nil {
		return nil, err
	}
	return s.feedEntry(repository.WithPrimary(ctx), *author, counts[authorID], recipesLimit)
}

func (s *SubscriptionService) Unsubscribe(ctx context.Context, userID, authorID uint) error {
	if _, err := s.users.GetByID(ctx, authorID); err != nil {
		return err
	}
	return s.subscriptions.Remove(ctx, userID, authorID)
}

// Subscriptions pages through the authors userID follows, most recent
// subscription first.
func (s *SubscriptionService) Subscriptions(ctx context.Context, userID uint, limit, offset, recipesLimit int) (*models.Page[models.AuthorFeed], error) {
	authors, total, err := s.users.ListSubscribedAuthors(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, len(authors))
	for i, a := range authors {
		ids[i] = a.ID
	}
	counts, err := s.recipes.CountByAuthors(ctx, ids)
	if err != nil {
		return nil, err
	}

	results := make([]models.AuthorFeed, 0, len(authors))
	for _, author := range authors {
		entry, err := s.feedEntry(ctx, author, counts[author.ID], recipesLimit)
		if err != nil {
			return nil, err
		}
		results = append(results, *entry)
	}
	return &models.Page[models.AuthorFeed]{Count: total, Results: results}, nil
}

func (s *SubscriptionService) feedEntry(ctx context.Context, author models.User, count int64, recipesLimit int) (*models.AuthorFeed, error) {
	recipes, err := s.recipes.ListByAuthor(ctx, author.ID, recipesLimit)
	if err != nil {
		return nil, err
	}
	short := make([]models.RecipeShortView, 0, len(recipes))
	for _, r := range recipes {
		short = append(short, models.NewRecipeShortView(r))
	}
	return &models.AuthorFeed{
		UserView:     models.NewUserView(author, true),
		Recipes:      short,
		RecipesCount: count,
	}, nil
}
