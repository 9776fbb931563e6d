package server

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"foodgram/internal/middleware"
	"foodgram/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenIssuer   = "foodgram-api"
	tokenAudience = "foodgram-client"
)

// tokenClaims is what AuthRequired leaves in c.Locals("token") for handlers
// that need more than the user id.
type tokenClaims struct {
	UserID    uint
	JTI       string
	ExpiresAt time.Time
}

// generateToken creates a signed JWT for the given user.
func (s *Server) generateToken(userID uint) (string, error) {
	if s.config.JWTSecret == "" {
		return "", fmt.Errorf("JWT secret not configured")
	}

	ttl := time.Duration(s.config.JWTTTLHours) * time.Hour
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		Issuer:    tokenIssuer,
		Audience:  jwt.ClaimStrings{tokenAudience},
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ID:        uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

// bearerToken extracts the token from "Bearer <jwt>" or "Token <jwt>".
func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok {
		return ""
	}
	switch strings.ToLower(scheme) {
	case "bearer", "token":
		return strings.TrimSpace(token)
	default:
		return ""
	}
}

// parseToken validates signature, issuer, audience and lifetime, then checks
// the revocation list when Redis is available.
func (s *Server) parseToken(ctx context.Context, raw string) (*tokenClaims, error) {
	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(raw, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(s.config.JWTSecret), nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, models.NewUnauthorizedError("Invalid or expired token")
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 32)
	if err != nil || userID == 0 {
		return nil, models.NewUnauthorizedError("Invalid user ID in token")
	}

	if claims.ID != "" && s.redis != nil {
		revoked, err := s.redis.Exists(ctx, "blacklist:"+claims.ID).Result()
		if err == nil && revoked > 0 {
			return nil, models.NewUnauthorizedError("Token has been revoked")
		}
	}

	return &tokenClaims{
		UserID:    uint(userID),
		JTI:       claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func (s *Server) setPrincipal(c *fiber.Ctx, claims *tokenClaims) {
	c.Locals("userID", claims.UserID)
	c.Locals("token", claims)
	ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, claims.UserID)
	c.SetUserContext(ctx)
}

// AuthRequired returns the authentication middleware
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := bearerToken(c.Get(fiber.HeaderAuthorization))
		if raw == "" {
			return models.RespondWithError(c, models.NewUnauthorizedError("Authorization required"))
		}

		claims, err := s.parseToken(c.UserContext(), raw)
		if err != nil {
			return models.RespondWithError(c, err)
		}

		s.setPrincipal(c, claims)
		return c.Next()
	}
}

// optionalUserID resolves the viewer on public routes. Anonymous or invalid
// credentials yield 0.
func (s *Server) optionalUserID(c *fiber.Ctx) uint {
	if id, ok := c.Locals("userID").(uint); ok {
		return id
	}
	raw := bearerToken(c.Get(fiber.HeaderAuthorization))
	if raw == "" {
		return 0
	}
	claims, err := s.parseToken(c.UserContext(), raw)
	if err != nil {
		return 0
	}
	s.setPrincipal(c, claims)
	return claims.UserID
}

func currentUserID(c *fiber.Ctx) uint {
	id, _ := c.Locals("userID").(uint)
	return id
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/auth/token/login
// @Summary Obtain an auth token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body loginRequest true "Credentials"
// @Success 200 {object} object{auth_token=string}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/token/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}
	if req.Email == "" || req.Password == "" {
		return models.RespondWithError(c, models.NewValidationError("Email and password are required"))
	}

	user, err := s.userService.Authenticate(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	token, err := s.generateToken(user.ID)
	if err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{"auth_token": token})
}

// Logout handles POST /api/auth/token/logout
// @Summary Revoke the current auth token
// @Tags auth
// @Security BearerAuth
// @Success 204
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/token/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	claims, ok := c.Locals("token").(*tokenClaims)
	if !ok || claims.JTI == "" {
		return models.RespondWithError(c, models.NewUnauthorizedError("Invalid token claims"))
	}
	if s.redis == nil {
		return models.RespondWithError(c, fiber.NewError(fiber.StatusServiceUnavailable, "Token revocation unavailable"))
	}

	ttl := time.Until(claims.ExpiresAt)
	if ttl > 0 {
		if err := s.redis.Set(c.UserContext(), "blacklist:"+claims.JTI, "1", ttl).Err(); err != nil {
			return models.RespondWithError(c, models.NewInternalError(err))
		}
	}

	return c.SendStatus(fiber.StatusNoContent)
}
