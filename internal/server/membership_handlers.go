package server

import (
	"foodgram/internal/models"
	"foodgram/internal/service"

	"github.com/gofiber/fiber/v2"
)

func (s *Server) addMembership(c *fiber.Ctx, svc *service.RecipeMembershipService) error {
	recipeID, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}
	view, err := svc.Add(c.UserContext(), currentUserID(c), recipeID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(view)
}

func (s *Server) removeMembership(c *fiber.Ctx, svc *service.RecipeMembershipService) error {
	recipeID, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}
	if err := svc.Remove(c.UserContext(), currentUserID(c), recipeID); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AddFavorite handles POST /api/recipes/:id/favorite
// @Summary Add a recipe to favorites
// @Tags recipes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Recipe ID"
// @Success 201 {object} models.RecipeShortView
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /recipes/{id}/favorite [post]
func (s *Server) AddFavorite(c *fiber.Ctx) error {
	return s.addMembership(c, s.favoriteService)
}

// RemoveFavorite handles DELETE /api/recipes/:id/favorite
func (s *Server) RemoveFavorite(c *fiber.Ctx) error {
	return s.removeMembership(c, s.favoriteService)
}

// AddToCart handles POST /api/recipes/:id/shopping_cart
// @Summary Add a recipe to the shopping cart
// @Tags recipes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Recipe ID"
// @Success 201 {object} models.RecipeShortView
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /recipes/{id}/shopping_cart [post]
func (s *Server) AddToCart(c *fiber.Ctx) error {
	return s.addMembership(c, s.cartService)
}

// RemoveFromCart handles DELETE /api/recipes/:id/shopping_cart
func (s *Server) RemoveFromCart(c *fiber.Ctx) error {
	return s.removeMembership(c, s.cartService)
}

func recipesLimit(c *fiber.Ctx) int {
	limit := c.QueryInt("recipes_limit", 0)
	if limit < 0 {
		return 0
	}
	return limit
}

// Subscribe handles POST /api/users/:id/subscribe
// @Summary Follow an author
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "Author ID"
// @Param recipes_limit query int false "Max recipes in the response"
// @Success 201 {object} models.AuthorFeed
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id}/subscribe [post]
func (s *Server) Subscribe(c *fiber.Ctx) error {
	authorID, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}
	entry, err := s.subscriptionService.Subscribe(c.UserContext(), currentUserID(c), authorID, recipesLimit(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}

// Unsubscribe handles DELETE /api/users/:id/subscribe
func (s *Server) Unsubscribe(c *fiber.Ctx) error {
	authorID, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}
	if err := s.subscriptionService.Unsubscribe(c.UserContext(), currentUserID(c), authorID); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListSubscriptions handles GET /api/users/subscriptions
// @Summary Authors the caller follows
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param recipes_limit query int false "Max recipes per author"
// @Param limit query int false "Page size"
// @Param page query int false "Page number"
// @Success 200 {object} models.Page[models.AuthorFeed]
// @Router /users/subscriptions [get]
func (s *Server) ListSubscriptions(c *fiber.Ctx) error {
	page := parsePagination(c, defaultPageSize)
	result, err := s.subscriptionService.Subscriptions(c.UserContext(), currentUserID(c), page.Limit, page.Offset, recipesLimit(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(result)
}
