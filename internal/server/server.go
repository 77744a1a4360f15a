package server

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"tienda-catalog/internal/cloudinary"
	"tienda-catalog/internal/config"
	custommiddleware "tienda-catalog/internal/middleware"
	"tienda-catalog/internal/repository"
	"tienda-catalog/internal/service"
	"tienda-catalog/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     *sql.DB
	redis  *redis.Client
}

func NewServer(cfg *config.Config, logger *zap.Logger, db *sql.DB) *Server {
	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(custommiddleware.CORSMiddleware(cfg.Server.AllowedOrigins, cfg.Server.Env == "development"))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Initialize repositories
	productRepo := repository.NewProductRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)

	// Media host client
	mediaClient := cloudinary.NewClient(cfg.Cloudinary)

	// Initialize services
	productService := service.NewProductService(productRepo, mediaClient, logger)
	categoryService := service.NewCategoryService(categoryRepo)
	authService := service.NewAuthService(
		cfg.Auth.AdminPasswordHash,
		cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.TokenExpiry)*time.Minute,
	)

	// Initialize handlers
	productHandler := transport.NewProductHandler(productService, logger)
	categoryHandler := transport.NewCategoryHandler(categoryService, logger)
	uploadHandler := transport.NewUploadHandler(mediaClient, logger)
	authHandler := transport.NewAuthHandler(authService, logger)

	// Admin guard for every mutating route
	adminOnly := []func(http.Handler) http.Handler{
		custommiddleware.AuthMiddleware(cfg.Auth.JWTSecret, logger),
		custommiddleware.RequireAdmin(logger),
	}

	// Rate limiting protects credential checks and signature minting when
	// Redis is configured; without it those routes are unthrottled.
	var redisClient *redis.Client
	var throttled []func(http.Handler) http.Handler
	if cfg.Redis.Host != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		throttled = append(throttled, custommiddleware.RateLimitMiddleware(
			redisClient,
			custommiddleware.RateLimitConfig{
				RequestsPerWindow: 30,
				Window:            time.Minute,
				KeyPrefix:         "ratelimit",
			},
			logger,
		))
	}

	// Register routes
	authHandler.RegisterRoutes(router, throttled...)
	productHandler.RegisterRoutes(router, adminOnly...)
	categoryHandler.RegisterRoutes(router, adminOnly...)
	uploadHandler.RegisterRoutes(router, append(throttled, adminOnly...)...)

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		db:     db,
		redis:  redisClient,
	}

	return server
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	// Close database connection
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
