// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"wanderlog/internal/bootstrap"
	"wanderlog/internal/cache"
	"wanderlog/internal/config"
	"wanderlog/internal/middleware"
	"wanderlog/internal/models"
	"wanderlog/internal/repository"
	"wanderlog/internal/security"
	"wanderlog/internal/service"
	"wanderlog/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
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
	rateLimiter    *middleware.RateLimiter
	tokens         *security.TokenIssuer
	localUploads   *storage.LocalStore

	authService       *service.AuthService
	apiKeyService     *service.APIKeyService
	userService       *service.UserService
	followService     *service.FollowService
	engagementService *service.EngagementService
	commentService    *service.CommentService
	postService       *service.PostService
	feedService       *service.FeedService
	countryService    *service.CountryService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, redisClient, err := bootstrap.InitRuntime(cfg)
	if err != nil {
		return nil, err
	}

	store, err := storage.New(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("image storage: %w", err)
	}

	return NewServerWithDeps(cfg, db, redisClient, store)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// A nil redisClient runs without cache and with rate limits failing open.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, store storage.Store) (*Server, error) {
	csrf, err := security.NewCSRFTokens(cfg.CSRFSecret)
	if err != nil {
		return nil, err
	}
	tokens, err := security.NewTokenIssuer(cfg.JWTSecret, csrf, cfg.SessionTTL())
	if err != nil {
		return nil, err
	}

	c := cache.New(redisClient)
	userRepo := repository.NewUserRepository(db, c)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	engagementRepo := repository.NewEngagementRepository(db)
	followRepo := repository.NewFollowRepository(db)
	apiKeyRepo := repository.NewAPIKeyRepository(db)

	images := service.NewImageService(store, cfg.ImageMaxUploadMB)

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("wanderlog-api"),
		rateLimiter:    middleware.NewRateLimiter(redisClient, cfg.Env, middleware.FailOpen),
		tokens:         tokens,
	}
	if local, ok := store.(*storage.LocalStore); ok {
		s.localUploads = local
	}

	s.apiKeyService = service.NewAPIKeyService(apiKeyRepo)
	s.authService = service.NewAuthService(userRepo, s.apiKeyService, tokens)
	s.userService = service.NewUserService(userRepo, images)
	s.followService = service.NewFollowService(followRepo, userRepo)
	s.engagementService = service.NewEngagementService(engagementRepo)
	s.commentService = service.NewCommentService(commentRepo)
	s.postService = service.NewPostService(postRepo, images)
	s.feedService = service.NewFeedService(postRepo, userRepo, followRepo, engagementRepo, commentRepo)
	s.countryService = service.NewCountryService(service.CountryOptions{
		BaseURL: cfg.CountriesBaseURL,
		Timeout: cfg.CountriesRequestTimeout(),
	}, c)

	return s, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Spans first so the trace ID reaches the logging context.
	app.Use(middleware.TracingMiddleware())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New(helmet.Config{CrossOriginResourcePolicy: "cross-origin"}))

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, " + middleware.CSRFHeaderName + ", " + middleware.APIKeyHeaderName,
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests or local development and tests.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || !s.rateLimitsEnabled()
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

func (s *Server) rateLimitsEnabled() bool {
	switch s.config.Env {
	case "", "test", "development", "stress":
		return false
	}
	return true
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	api.Get("/health", s.LivenessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	if s.localUploads != nil {
		app.Static(s.localUploads.Prefix(), s.localUploads.Dir(), fiber.Static{MaxAge: 3600})
	}

	session := middleware.SessionRequired(s.authService)
	csrf := middleware.CSRFProtection(s.tokens.CSRF())
	protected := []fiber.Handler{session, csrf}

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", s.rateLimiter.Limit("register", 5, 10*time.Minute), s.Register)
	auth.Post("/login", s.rateLimiter.Limit("login", 10, 5*time.Minute), s.Login)
	auth.Post("/logout", s.Logout)
	auth.Post("/reset-password", s.rateLimiter.Limit("reset_password", 5, 10*time.Minute), s.ResetPassword)

	// Follow routes. GETs need a session only; mutations also need the CSRF pair.
	follow := api.Group("/follow", protected...)
	follow.Post("/follow/:followingId", s.FollowUser)
	follow.Post("/unfollow/:followingId", s.UnfollowUser)
	follow.Get("/followers", s.GetFollowers)
	follow.Get("/following", s.GetFollowing)
	follow.Get("/unfollowing-users", s.GetNotFollowing)
	follow.Get("/counts/:userId", s.GetFollowCounts)

	// Engagement routes
	likes := api.Group("/likes", protected...)
	likes.Post("/like/:postId", s.LikePost)
	likes.Post("/dislike/:postId", s.DislikePost)

	// Comment routes
	comments := api.Group("/comments", protected...)
	comments.Post("/add/:postId", s.rateLimiter.Limit("create_comment", 10, time.Minute), s.AddComment)
	comments.Get("/:postId", s.GetComments)

	// Blog post routes. Listings are public; specific paths before /:postId.
	posts := api.Group("/blogposts")
	posts.Get("/", s.GetAllPosts)
	posts.Get("/recent", s.GetRecentPosts)
	posts.Get("/popular", s.GetPopularPosts)
	posts.Get("/mostCommented", s.GetMostCommentedPosts)
	posts.Get("/search", s.SearchPosts)
	posts.Get("/following/blogposts", session, s.GetFollowingFeed)
	posts.Get("/user/:userId", session, s.GetUserPosts)
	posts.Post("/create", append(protected, s.rateLimiter.Limit("create_post", 5, 5*time.Minute), s.CreatePost)...)
	posts.Put("/update/:postId", append(protected, s.UpdatePost)...)
	posts.Delete("/delete/:postId", append(protected, s.DeletePost)...)
	posts.Get("/:postId", s.GetPost)

	// Country reference data is guarded by API key instead of session.
	countries := api.Group("/countries", middleware.APIKeyRequired(s.apiKeyService))
	countries.Get("/", s.GetCountries)
	countries.Get("/:name", s.GetCountry)

	// User routes
	users := api.Group("/user", protected...)
	users.Get("/profile", s.GetProfile)
	users.Put("/profile/edit", s.EditProfile)
	users.Get("/all", s.GetAllUsers)

	// API key routes
	apiKeys := api.Group("/apikeys", protected...)
	apiKeys.Get("/", s.ListAPIKeys)
	apiKeys.Post("/generate", s.GenerateAPIKey)
	apiKeys.Delete("/delete", s.DeleteAPIKey)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. Redis is optional: its
// absence is reported without failing the probe.
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
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	} else if redisStatus != "healthy" {
		overallStatus = "degraded"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// App builds the fiber application with middleware and routes installed.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}
	app := fiber.New(fiber.Config{
		AppName:   "Wanderlog API",
		BodyLimit: int(s.uploadBodyLimit()),
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok && fe.Code < fiber.StatusInternalServerError {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

// uploadBodyLimit leaves room for form fields next to the largest image.
func (s *Server) uploadBodyLimit() int64 {
	return int64(s.config.ImageMaxUploadMB+1) * 1024 * 1024
}

// Start starts the server
func (s *Server) Start() error {
	app := s.App()
	middleware.Logger.Info("Server starting", slog.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	// Close database connection
	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}

	// Close Redis connection
	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	middleware.Logger.Info("Server shutdown complete")
	return nil
}
