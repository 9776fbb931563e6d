package service

import (
	"context"
	"fmt"
	"strings"

	"foodgram/internal/models"
	"foodgram/internal/repository"
)

// ShoppingListHeader opens every downloaded shopping list. Its first letter
// is a Latin "C"; clients match the header byte for byte.
const ShoppingListHeader = "Cписок покупок:"

type ShoppingListService struct {
	repo repository.ShoppingListRepository
}

func NewShoppingListService(repo repository.ShoppingListRepository) *ShoppingListService {
	return &ShoppingListService{repo: repo}
}

// Aggregate sums the user's cart by ingredient, sorted by name.
func (s *ShoppingListService) Aggregate(ctx context.Context, userID uint) ([]models.ShoppingItem, error) {
	return s.repo.Aggregate(ctx, userID)
}

// Download renders the user's aggregated cart as a plain-text list.
func (s *ShoppingListService) Download(ctx context.Context, userID uint) (string, error) {
	items, err := s.Aggregate(ctx, userID)
	if err != nil {
		return "", err
	}
	return RenderShoppingList(items), nil
}

// RenderShoppingList formats items one per line under ShoppingListHeader.
// The header line is always terminated, so an empty cart yields the header
// and a newline.
func RenderShoppingList(items []models.ShoppingItem) string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("%s - %d %s.", item.Name, item.TotalAmount, item.MeasurementUnit))
	}
	return ShoppingListHeader + "\n" + strings.Join(lines, "\n")
}
