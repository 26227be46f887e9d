package main

import (
	"log"

	"github.com/tulendi/cafe-directory/internal/audit"
	"github.com/tulendi/cafe-directory/internal/config"
	"github.com/tulendi/cafe-directory/internal/database"
	"github.com/tulendi/cafe-directory/internal/handler"
	"github.com/tulendi/cafe-directory/internal/middleware"
	"github.com/tulendi/cafe-directory/internal/repository"
	"github.com/tulendi/cafe-directory/internal/service"
	"github.com/tulendi/cafe-directory/internal/session"
	"github.com/tulendi/cafe-directory/pkg/logger"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()
	log.Println("Config loaded successfully")

	if err := logger.Init(!cfg.IsProduction()); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	database.Connect(cfg)
	database.Migrate()

	// Audit trail for admin mutations
	trail, err := audit.Open(cfg.AuditLogPath)
	if err != nil {
		log.Fatalf("Failed to open audit trail: %v", err)
	}
	defer trail.Close()

	// Redis-backed session store
	sessions, err := session.NewStore(cfg.RedisURL, cfg.SessionTTL)
	if err != nil {
		log.Fatalf("Failed to connect session store: %v", err)
	}
	defer sessions.Close()

	// Initialize repositories
	userRepo := repository.NewUserRepository(database.DB)
	cafeRepo := repository.NewCafeRepository(database.DB)

	// Initialize services
	authService := service.NewAuthService(userRepo, trail, cfg.AdminPromotionCode)
	cafeService := service.NewCafeService(cafeRepo, trail)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService, sessions, cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	cafeHandler := handler.NewCafeHandler(cafeService)
	adminHandler := handler.NewAdminHandler(cafeService, authService, trail)

	// Auth endpoints share the session store's Redis client
	rateLimiter := middleware.NewRateLimiter(sessions.Client(), middleware.RateLimiterConfig{
		MaxRequests: cfg.RateLimitMaxRequests,
		Window:      cfg.RateLimitWindow,
		BlockTime:   cfg.RateLimitBlockTime,
	})

	// Setup Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.HSTS(cfg.IsProduction()))
	router.Use(cors.Default())
	router.Use(middleware.Session(sessions, userRepo, cfg.SessionSecret))

	// Public routes
	router.GET("/", cafeHandler.List)
	router.GET("/cafe/:id", cafeHandler.Detail)
	router.GET("/random", cafeHandler.Random)
	router.GET("/search", cafeHandler.Search)
	router.POST("/search", cafeHandler.Search)
	router.GET("/choose-cafe", cafeHandler.Choose)
	router.GET("/logout", authHandler.Logout)

	limited := router.Group("/")
	limited.Use(rateLimiter.Middleware())
	{
		limited.GET("/register", authHandler.Register)
		limited.POST("/register", authHandler.Register)
		limited.GET("/login", authHandler.Login)
		limited.POST("/login", authHandler.Login)
	}

	// Admin-only routes
	admin := router.Group("/")
	admin.Use(middleware.RequireAdmin())
	{
		admin.GET("/add", adminHandler.AddCafe)
		admin.POST("/add", adminHandler.AddCafe)
		admin.GET("/update-price/:id", adminHandler.UpdatePrice)
		admin.POST("/update-price/:id", adminHandler.UpdatePrice)
		admin.PATCH("/update-price/:id", adminHandler.UpdatePrice)
		admin.GET("/delete-cafe", adminHandler.DeleteCafe)
		admin.POST("/delete-cafe", adminHandler.DeleteCafe)
		admin.GET("/delete-user", adminHandler.DeleteUser)
		admin.POST("/delete-user", adminHandler.DeleteUser)
		admin.GET("/admin/audit", adminHandler.AuditLog)
	}

	// Start server
	log.Printf("Server starting on %s", cfg.ServerPort)
	if err := router.Run(cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
