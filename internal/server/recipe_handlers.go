package server

import (
	"foodgram/internal/models"
	"foodgram/internal/service"

	"github.com/gofiber/fiber/v2"
)

type recipeRequest struct {
	Ingredients []models.IngredientAmount `json:"ingredients"`
	Tags        []uint                    `json:"tags"`
	Image       string                    `json:"image"`
	Name        string                    `json:"name"`
	Text        string                    `json:"text"`
	CookingTime int                       `json:"cooking_time"`
}

func (r recipeRequest) toInput(authorID uint) (service.RecipeInput, error) {
	in := service.RecipeInput{
		AuthorID:    authorID,
		Name:        r.Name,
		Text:        r.Text,
		CookingTime: r.CookingTime,
		TagIDs:      r.Tags,
		Ingredients: r.Ingredients,
	}
	if r.Image != "" {
		data, err := service.DecodeImageDataURI(r.Image)
		if err != nil {
			return in, err
		}
		in.Image = data
	}
	return in, nil
}

func parseRecipeBody(c *fiber.Ctx) (service.RecipeInput, error) {
	var req recipeRequest
	if err := c.BodyParser(&req); err != nil {
		return service.RecipeInput{}, models.NewValidationError("Invalid request body")
	}
	return req.toInput(currentUserID(c))
}

// ListRecipes handles GET /api/recipes
// @Summary List recipes
// @Description Newest first. Filters: tags (repeatable slug), author, is_favorited, is_in_shopping_cart.
// @Tags recipes
// @Produce json
// @Param tags query []string false "Tag slugs" collectionFormat(multi)
// @Param author query int false "Author ID"
// @Param is_favorited query int false "1 to show only favorites"
// @Param is_in_shopping_cart query int false "1 to show only recipes in the cart"
// @Param limit query int false "Page size"
// @Param page query int false "Page number"
// @Success 200 {object} models.Page[models.RecipeView]
// @Router /recipes [get]
func (s *Server) ListRecipes(c *fiber.Ctx) error {
	page := parsePagination(c, defaultPageSize)
	authorID := c.QueryInt("author", 0)
	if authorID < 0 {
		authorID = 0
	}

	result, err := s.recipeService.List(c.UserContext(), service.ListRecipesInput{
		ViewerID:         s.optionalUserID(c),
		TagSlugs:         queryAll(c, "tags"),
		AuthorID:         uint(authorID),
		IsFavorited:      queryFlag(c, "is_favorited"),
		IsInShoppingCart: queryFlag(c, "is_in_shopping_cart"),
		Limit:            page.Limit,
		Offset:           page.Offset,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(result)
}

// GetRecipe handles GET /api/recipes/:id
// @Summary Get a recipe
// @Tags recipes
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 200 {object} models.RecipeView
// @Failure 404 {object} models.ErrorResponse
// @Router /recipes/{id} [get]
func (s *Server) GetRecipe(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}
	view, err := s.recipeService.Get(c.UserContext(), id, s.optionalUserID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(view)
}

// CreateRecipe handles POST /api/recipes
// @Summary Create a recipe
// @Tags recipes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body recipeRequest true "Recipe"
// @Success 201 {object} models.RecipeView
// @Failure 400 {object} models.ErrorResponse
// @Router /recipes [post]
func (s *Server) CreateRecipe(c *fiber.Ctx) error {
	in, err := parseRecipeBody(c)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	view, err := s.recipeService.Create(c.UserContext(), in)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(view)
}

// UpdateRecipe handles PATCH /api/recipes/:id. The body carries the full
// recipe; image may be omitted to keep the current one.
func (s *Server) UpdateRecipe(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}
	in, err := parseRecipeBody(c)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	view, err := s.recipeService.Update(c.UserContext(), id, in)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(view)
}

func (s *Server) DeleteRecipe(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}
	if err := s.recipeService.Delete(c.UserContext(), id, currentUserID(c)); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DownloadShoppingCart handles GET /api/recipes/download_shopping_cart
// @Summary Download the aggregated shopping list
// @Tags recipes
// @Produce plain
// @Security BearerAuth
// @Success 200 {string} string
// @Router /recipes/download_shopping_cart [get]
func (s *Server) DownloadShoppingCart(c *fiber.Ctx) error {
	body, err := s.shoppingService.Download(c.UserContext(), currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	c.Set(fiber.HeaderContentType, "text/plain; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, "attachment; filename=foodgram_shopping_cart.txt")
	return c.SendString(body)
}
