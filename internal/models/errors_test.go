package models

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorStatus(t *testing.T) {
	tests := []struct {
		err  *AppError
		want int
	}{
		{NewValidationError("bad"), fiber.StatusBadRequest},
		{NewConflictError("dup"), fiber.StatusBadRequest},
		{NewNotFoundError("Recipe", 1), fiber.StatusNotFound},
		{NewUnauthorizedError("who"), fiber.StatusUnauthorized},
		{NewForbiddenError("no"), fiber.StatusForbidden},
		{NewInternalError(errors.New("boom")), fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.Status(), tt.err.Code)
	}
}

func TestAppErrorHelpers(t *testing.T) {
	err := NewFieldError("tags", ReasonNoTags, "At least one tag is required.")
	wrapped := errors.Join(errors.New("context"), err)

	assert.True(t, HasCode(wrapped, CodeValidation))
	assert.True(t, HasReason(wrapped, ReasonNoTags))
	assert.False(t, HasReason(wrapped, ReasonNoIngredients))
	assert.Equal(t, []string{"At least one tag is required."}, err.Fields["tags"])

	cause := errors.New("disk full")
	internal := NewInternalError(cause)
	assert.ErrorIs(t, internal, cause)
	assert.Equal(t, "Internal server error: disk full", internal.Error())
}

func respond(t *testing.T, err error) (int, ErrorResponse) {
	t.Helper()
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error { return RespondWithError(c, err) })

	resp, testErr := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, testErr)
	defer resp.Body.Close()

	body, readErr := io.ReadAll(resp.Body)
	require.NoError(t, readErr)
	var out ErrorResponse
	require.NoError(t, json.Unmarshal(body, &out))
	return resp.StatusCode, out
}

func TestRespondWithError(t *testing.T) {
	status, body := respond(t, NewFieldError("ingredients", ReasonDuplicateIngredient, "Ingredient 1 is listed more than once."))
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, CodeValidation, body.Code)
	assert.Equal(t, ReasonDuplicateIngredient, body.Reason)
	assert.Contains(t, body.Fields, "ingredients")

	status, body = respond(t, NewConflictError("Recipe is already in favorites"))
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Recipe is already in favorites", body.Error)

	status, body = respond(t, fiber.NewError(fiber.StatusMethodNotAllowed, "Method Not Allowed"))
	assert.Equal(t, fiber.StatusMethodNotAllowed, status)
	assert.Equal(t, "Method Not Allowed", body.Error)

	status, body = respond(t, errors.New("raw failure"))
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, CodeInternal, body.Code)
}
