package server

import (
	"strconv"
	"strings"

	"foodgram/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Pagination holds parsed limit/offset query parameters.
type Pagination struct {
	Limit  int
	Offset int
}

const (
	defaultPageSize    = 6
	maxPaginationLimit = 100
)

// parsePagination reads limit plus either offset or a 1-based page number.
func parsePagination(c *fiber.Ctx, defaultLimit int) Pagination {
	limit := c.QueryInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxPaginationLimit {
		limit = maxPaginationLimit
	}

	offset := c.QueryInt("offset", 0)
	if page := c.QueryInt("page", 0); page > 1 {
		offset = (page - 1) * limit
	}
	if offset < 0 {
		offset = 0
	}

	return Pagination{
		Limit:  limit,
		Offset: offset,
	}
}

// parseID extracts a route parameter by name as a positive uint.
func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(param), 10, 32)
	if err != nil || id == 0 {
		return 0, models.NewValidationError("Invalid " + humanizeParam(param))
	}
	return uint(id), nil
}

// humanizeParam converts a route param name into a human-readable label.
// Examples: "id" -> "ID", "userId" -> "user ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if strings.HasSuffix(param, "Id") {
		return strings.ToLower(param[:len(param)-2]) + " ID"
	}
	return param
}

// queryFlag reads boolean query flags sent as 1/0 or true/false.
func queryFlag(c *fiber.Ctx, key string) bool {
	switch strings.ToLower(c.Query(key)) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}

// queryAll returns every value of a repeated query parameter.
func queryAll(c *fiber.Ctx, key string) []string {
	var values []string
	c.Context().QueryArgs().VisitAll(func(k, v []byte) {
		if string(k) == key && len(v) > 0 {
			values = append(values, string(v))
		}
	})
	return values
}
