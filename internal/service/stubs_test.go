package service

import (
	"context"

	"foodgram/internal/models"
	"foodgram/internal/repository"
)

type catalogRepoStub struct {
	missingIngredientsFn func(ctx context.Context, ids []uint) ([]uint, error)
	missingTagsFn        func(ctx context.Context, ids []uint) ([]uint, error)
}

func (s *catalogRepoStub) ListTags(context.Context) ([]models.Tag, error) { return nil, nil }
func (s *catalogRepoStub) GetTag(_ context.Context, id uint) (*models.Tag, error) {
	return nil, models.NewNotFoundError("Tag", id)
}
func (s *catalogRepoStub) SearchIngredients(context.Context, string) ([]models.Ingredient, error) {
	return nil, nil
}
func (s *catalogRepoStub) GetIngredient(_ context.Context, id uint) (*models.Ingredient, error) {
	return nil, models.NewNotFoundError("Ingredient", id)
}

func (s *catalogRepoStub) MissingTagIDs(ctx context.Context, ids []uint) ([]uint, error) {
	if s.missingTagsFn != nil {
		return s.missingTagsFn(ctx, ids)
	}
	return nil, nil
}

func (s *catalogRepoStub) MissingIngredientIDs(ctx context.Context, ids []uint) ([]uint, error) {
	if s.missingIngredientsFn != nil {
		return s.missingIngredientsFn(ctx, ids)
	}
	return nil, nil
}

type recipeRepoStub struct {
	createFn      func(ctx context.Context, recipe *models.Recipe, tagIDs []uint, lines []models.IngredientAmount) error
	replaceFn     func(ctx context.Context, recipe *models.Recipe, tagIDs []uint, lines []models.IngredientAmount) error
	getByIDFn     func(ctx context.Context, id, viewerID uint) (*models.Recipe, error)
	getAuthorIDFn func(ctx context.Context, id uint) (uint, error)
	deleteFn      func(ctx context.Context, id uint) error
}

func (s *recipeRepoStub) CreateWithAssociations(ctx context.Context, recipe *models.Recipe, tagIDs []uint, lines []models.IngredientAmount) error {
	if s.createFn != nil {
		return s.createFn(ctx, recipe, tagIDs, lines)
	}
	recipe.ID = 1
	return nil
}

func (s *recipeRepoStub) ReplaceWithAssociations(ctx context.Context, recipe *models.Recipe, tagIDs []uint, lines []models.IngredientAmount) error {
	if s.replaceFn != nil {
		return s.replaceFn(ctx, recipe, tagIDs, lines)
	}
	return nil
}

func (s *recipeRepoStub) GetByID(ctx context.Context, id, viewerID uint) (*models.Recipe, error) {
	if s.getByIDFn != nil {
		return s.getByIDFn(ctx, id, viewerID)
	}
	return &models.Recipe{ID: id}, nil
}

func (s *recipeRepoStub) GetAuthorID(ctx context.Context, id uint) (uint, error) {
	if s.getAuthorIDFn != nil {
		return s.getAuthorIDFn(ctx, id)
	}
	return 0, models.NewNotFoundError("Recipe", id)
}

func (s *recipeRepoStub) List(context.Context, repository.RecipeFilter, uint) ([]*models.Recipe, int64, error) {
	return nil, 0, nil
}

func (s *recipeRepoStub) ListByAuthor(context.Context, uint, int) ([]*models.Recipe, error) {
	return nil, nil
}

func (s *recipeRepoStub) CountByAuthors(context.Context, []uint) (map[uint]int64, error) {
	return map[uint]int64{}, nil
}

func (s *recipeRepoStub) Delete(ctx context.Context, id uint) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, id)
	}
	return nil
}

type imageStoreStub struct {
	calls int
	ref   string
	err   error
}

func (s *imageStoreStub) Save(context.Context, []byte) (string, error) {
	s.calls++
	return s.ref, s.err
}

type membershipStub struct {
	added   [][2]uint
	removed [][2]uint
	addErr  error
}

func (s *membershipStub) Add(_ context.Context, owner, target uint) error {
	if s.addErr != nil {
		return s.addErr
	}
	s.added = append(s.added, [2]uint{owner, target})
	return nil
}

func (s *membershipStub) Remove(_ context.Context, owner, target uint) error {
	s.removed = append(s.removed, [2]uint{owner, target})
	return nil
}

func (s *membershipStub) Contains(context.Context, uint, uint) (bool, error) { return false, nil }

func (s *membershipStub) TargetsAmong(context.Context, uint, []uint) (map[uint]bool, error) {
	return map[uint]bool{}, nil
}
