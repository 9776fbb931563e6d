package server

import (
	"foodgram/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ListTags handles GET /api/tags
// @Summary List tags
// @Tags catalog
// @Produce json
// @Success 200 {array} models.Tag
// @Router /tags [get]
func (s *Server) ListTags(c *fiber.Ctx) error {
	tags, err := s.catalogService.ListTags(c.UserContext())
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(tags)
}

func (s *Server) GetTag(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}
	tag, err := s.catalogService.GetTag(c.UserContext(), id)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(tag)
}

// SearchIngredients handles GET /api/ingredients
// @Summary List ingredients
// @Description name is a case-sensitive prefix.
// @Tags catalog
// @Produce json
// @Param name query string false "Name prefix"
// @Success 200 {array} models.Ingredient
// @Router /ingredients [get]
func (s *Server) SearchIngredients(c *fiber.Ctx) error {
	ingredients, err := s.catalogService.SearchIngredients(c.UserContext(), c.Query("name"))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(ingredients)
}

func (s *Server) GetIngredient(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}
	ingredient, err := s.catalogService.GetIngredient(c.UserContext(), id)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(ingredient)
}
