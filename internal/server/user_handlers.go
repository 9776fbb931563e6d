package server

import (
	"foodgram/internal/models"
	"foodgram/internal/service"

	"github.com/gofiber/fiber/v2"
)

type signupResponse struct {
	ID        uint   `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Signup handles POST /api/users
// @Summary Register a user
// @Tags users
// @Accept json
// @Produce json
// @Param request body service.SignupInput true "Signup request"
// @Success 201 {object} signupResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /users [post]
func (s *Server) Signup(c *fiber.Ctx) error {
	var req service.SignupInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.Signup(c.UserContext(), req)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(signupResponse{
		ID:        user.ID,
		Email:     user.Email,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	})
}

// ListUsers handles GET /api/users
// @Summary List users
// @Tags users
// @Produce json
// @Param limit query int false "Page size"
// @Param page query int false "Page number"
// @Success 200 {object} models.Page[models.UserView]
// @Router /users [get]
func (s *Server) ListUsers(c *fiber.Ctx) error {
	page := parsePagination(c, defaultPageSize)
	result, err := s.userService.List(c.UserContext(), s.optionalUserID(c), page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(result)
}

func (s *Server) GetUser(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}
	view, err := s.userService.Get(c.UserContext(), id, s.optionalUserID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(view)
}

// GetMe handles GET /api/users/me
func (s *Server) GetMe(c *fiber.Ctx) error {
	userID := currentUserID(c)
	view, err := s.userService.Get(c.UserContext(), userID, userID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(view)
}

// SetPassword handles POST /api/users/set_password
// @Summary Change the caller's password
// @Tags users
// @Accept json
// @Security BearerAuth
// @Param request body service.SetPasswordInput true "Passwords"
// @Success 204
// @Failure 400 {object} models.ErrorResponse
// @Router /users/set_password [post]
func (s *Server) SetPassword(c *fiber.Ctx) error {
	var req service.SetPasswordInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}
	req.UserID = currentUserID(c)

	if err := s.userService.SetPassword(c.UserContext(), req); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
