// Package server contains HTTP handlers for the application's endpoints.
package server

import (
	"context"
	"log"
	"time"

	"inkwell/internal/cache"
	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/middleware"
	"inkwell/internal/repository"
	"inkwell/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// indexCacheTTL is how long the post listing page is served from cache.
// Writes do not invalidate it; staleness up to the TTL is accepted.
const indexCacheTTL = 20 * time.Second

// Server holds all dependencies and provides handlers
type Server struct {
	config      *config.Config
	db          *gorm.DB
	redis       *redis.Client
	userRepo    repository.UserRepository
	groupRepo   repository.GroupRepository
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	followRepo  repository.FollowRepository
	pageCache   cache.PageCache
	images      storage.ImageStore
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}

	cache.InitRedis(cfg.RedisURL)
	redisClient := cache.GetClient()

	minioStore, err := storage.NewMinioStore(cfg)
	if err != nil {
		return nil, err
	}
	var images storage.ImageStore
	if minioStore != nil {
		images = minioStore
	}

	return &Server{
		config:      cfg,
		db:          db,
		redis:       redisClient,
		userRepo:    repository.NewUserRepository(db),
		groupRepo:   repository.NewGroupRepository(db),
		postRepo:    repository.NewPostRepository(db),
		commentRepo: repository.NewCommentRepository(db),
		followRepo:  repository.NewFollowRepository(db),
		pageCache:   cache.NewPageCache(redisClient, "index_page"),
		images:      images,
	}, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(requestid.New())
	app.Use(helmet.New())
	app.Use(middleware.Identity(s.config.JWTSecret))
	app.Use(middleware.StructuredLogger())

	prom := fiberprometheus.New("inkwell")
	prom.RegisterAt(app, "/metrics")
	app.Use(prom.Middleware)

	app.Use(cors.New(cors.Config{
		AllowOrigins: s.config.AllowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	// Auth entry points
	auth := app.Group("/auth")
	auth.Get("/login", s.LoginPrompt)
	auth.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/signup", middleware.RateLimit(s.redis, 3, 10*time.Minute, "signup"), s.Signup)

	// Public reads
	app.Get("/", s.ListPosts)
	app.Get("/group/:slug", s.ListGroupPosts)
	app.Get("/posts/:id", s.PostDetail)

	// Guarded routes; anonymous callers are redirected to the login entry
	// point with a return path.
	protected := app.Group("", middleware.LoginRequired())
	protected.Get("/create", s.NewPost)
	protected.Post("/create", middleware.RateLimit(s.redis, 5, time.Minute, "create_post"), s.CreatePost)
	protected.Get("/posts/:id/edit", s.EditPost)
	protected.Post("/posts/:id/edit", s.EditPost)
	protected.Post("/posts/:id/comment", middleware.RateLimit(s.redis, 10, time.Minute, "create_comment"), s.AddComment)
	protected.Get("/follow", s.FollowIndex)
	protected.Get("/profile/:username/follow", s.ProfileFollow)
	protected.Get("/profile/:username/unfollow", s.ProfileUnfollow)

	// Generic profile route registered after its /follow and /unfollow
	// siblings.
	app.Get("/profile/:username", s.Profile)

	app.Get("/healthz", s.HealthCheck)
}

// HealthCheck handles health check requests
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
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
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
	}

	return c.Status(status).JSON(fiber.Map{
		"status": "ok",
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Shutdown releases the server's external connections.
func (s *Server) Shutdown(ctx context.Context) error {
	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
