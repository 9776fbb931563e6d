package service

import (
	"context"

	"foodgram/internal/models"
	"foodgram/internal/repository"
)

// CatalogService serves the read-only tag and ingredient reference data.
type CatalogService struct {
	repo repository.CatalogRepository
}

func NewCatalogService(repo repository.CatalogRepository) *CatalogService {
	return &CatalogService{repo: repo}
}

func (s *CatalogService) ListTags(ctx context.Context) ([]models.Tag, error) {
	return s.repo.ListTags(ctx)
}

func (s *CatalogService) GetTag(ctx context.Context, id uint) (*models.Tag, error) {
	return s.repo.GetTag(ctx, id)
}

// SearchIngredients matches namePrefix case-sensitively against the start of
// ingredient names.
func (s *CatalogService) SearchIngredients(ctx context.Context, namePrefix string) ([]models.Ingredient, error) {
	return s.repo.SearchIngredients(ctx, namePrefix)
}

func (s *CatalogService) GetIngredient(ctx context.Context, id uint) (*models.Ingredient, error) {
	return s.repo.GetIngredient(ctx, id)
}
