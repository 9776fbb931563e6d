// Package server contains the HTTP handlers for the recipe API.
package server

import (
	"context"
	"fmt"
	"strings"
	"time"

	_ "foodgram/docs" // swagger docs
	"foodgram/internal/cache"
	"foodgram/internal/config"
	"foodgram/internal/database"
	"foodgram/internal/middleware"
	"foodgram/internal/models"
	"foodgram/internal/repository"
	"foodgram/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus

	recipeService       *service.RecipeService
	favoriteService     *service.RecipeMembershipService
	cartService         *service.RecipeMembershipService
	subscriptionService *service.SubscriptionService
	shoppingService     *service.ShoppingListService
	catalogService      *service.CatalogService
	userService         *service.UserService
}

// NewServer connects to the database, brings the schema up to date, connects
// Redis and builds the server.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	if err := database.ApplySchema(ctx, db, cfg); err != nil {
		return nil, fmt.Errorf("schema apply failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)

	images, err := service.NewImageStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("image store: %w", err)
	}

	return NewServerWithDeps(cfg, db, cache.GetClient(), images), nil
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Tests pass an in-memory database and, optionally, a miniredis client.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, images service.ImageStore) *Server {
	recipes := repository.NewRecipeRepository(db)
	catalog := repository.NewCatalogRepository(db)
	users := repository.NewUserRepository(db)
	subscriptions := repository.NewSubscriptionSet(db)

	composer := service.NewComposer(recipes, catalog, images)

	return &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("foodgram-api"),

		recipeService:       service.NewRecipeService(recipes, subscriptions, composer),
		favoriteService:     service.NewRecipeMembershipService(repository.NewFavoriteSet(db), recipes),
		cartService:         service.NewRecipeMembershipService(repository.NewCartSet(db), recipes),
		subscriptionService: service.NewSubscriptionService(subscriptions, users, recipes),
		shoppingService:     service.NewShoppingListService(repository.NewShoppingListRepository(db)),
		catalogService:      service.NewCatalogService(catalog),
		userService:         service.NewUserService(users, subscriptions),
	}
}

// NewApp builds the fiber application with middleware and routes attached.
func (s *Server) NewApp() *fiber.App {
	bodyLimit := s.config.ImageMaxUploadSizeMB
	if bodyLimit <= 0 {
		bodyLimit = service.DefaultImageMaxUploadSizeMB
	}

	app := fiber.New(fiber.Config{
		AppName:       "Foodgram API",
		StrictRouting: false,
		// base64 inflates images by a third
		BodyLimit: bodyLimit * 1024 * 1024 * 4 / 3,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled request error", "error", err)
			return models.RespondWithError(c, err)
		},
	})

	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so throttled responses still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:3000,http://127.0.0.1:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,PATCH,DELETE,OPTIONS",
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || !s.config.IsProduction()
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	if s.servesLocalMedia() {
		app.Static(s.config.MediaURLPrefix, s.config.MediaDir)
	}

	api := app.Group("/api")
	api.Get("/swagger/*", swagger.HandlerDefault)

	auth := api.Group("/auth/token")
	auth.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/logout", s.AuthRequired(), s.Logout)

	api.Get("/tags", s.ListTags)
	api.Get("/tags/:id", s.GetTag)
	api.Get("/ingredients", s.SearchIngredients)
	api.Get("/ingredients/:id", s.GetIngredient)

	// Static segments are registered before /:id so they win the match.
	recipes := api.Group("/recipes")
	recipes.Get("/", s.ListRecipes)
	recipes.Post("/", s.AuthRequired(), s.CreateRecipe)
	recipes.Get("/download_shopping_cart", s.AuthRequired(), s.DownloadShoppingCart)
	recipes.Post("/:id/favorite", s.AuthRequired(), s.AddFavorite)
	recipes.Delete("/:id/favorite", s.AuthRequired(), s.RemoveFavorite)
	recipes.Post("/:id/shopping_cart", s.AuthRequired(), s.AddToCart)
	recipes.Delete("/:id/shopping_cart", s.AuthRequired(), s.RemoveFromCart)
	recipes.Get("/:id", s.GetRecipe)
	recipes.Patch("/:id", s.AuthRequired(), s.UpdateRecipe)
	recipes.Delete("/:id", s.AuthRequired(), s.DeleteRecipe)

	users := api.Group("/users")
	users.Post("/", middleware.RateLimit(s.redis, 5, 10*time.Minute, "signup"), s.Signup)
	users.Get("/", s.ListUsers)
	users.Get("/me", s.AuthRequired(), s.GetMe)
	users.Post("/set_password", s.AuthRequired(), s.SetPassword)
	users.Get("/subscriptions", s.AuthRequired(), s.ListSubscriptions)
	users.Post("/:id/subscribe", s.AuthRequired(), s.Subscribe)
	users.Delete("/:id/subscribe", s.AuthRequired(), s.Unsubscribe)
	users.Get("/:id", s.GetUser)
}

func (s *Server) servesLocalMedia() bool {
	local := s.config.ImageStore == "" || s.config.ImageStore == "local"
	return local && s.config.MediaDir != "" && strings.Trim(s.config.MediaURLPrefix, "/") != ""
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck reports database and Redis health. Redis only gates rate
// limiting and token revocation, so its absence degrades but does not fail
// readiness.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis == nil {
		redisStatus = "unavailable"
	} else if err := s.redis.Ping(ctx).Err(); err != nil {
		redisStatus = "unhealthy"
	}

	status := fiber.StatusOK
	overall := "healthy"
	switch {
	case dbStatus != "healthy":
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	case redisStatus != "healthy":
		overall = "degraded"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start builds the app and listens on the configured port.
func (s *Server) Start() error {
	s.app = s.NewApp()
	middleware.Logger.Info("Server starting", "port", s.config.Port)
	return s.app.Listen(":" + strings.TrimPrefix(s.config.Port, ":"))
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", "error", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", "error", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", "error", rerr)
		}
	}

	middleware.Logger.Info("Server shutdown complete")
	return nil
}
