package api

import (
	"net/http" // HTTP status codes
	"time"     // Durations

	"learnshop/internal/config"     // Application configuration
	"learnshop/internal/middleware" // Custom middleware
	"learnshop/internal/ratelimit"  // Rate limit tiers and stores
	"learnshop/internal/utils"      // Response envelope

	"github.com/gin-contrib/cors"  // CORS middleware
	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
	"gorm.io/gorm"                 // GORM ORM library
)

// Deps are the shared resources the router wires into handlers
type Deps struct {
	DB       *gorm.DB                   // Database connection
	Redis    *redis.Client              // Optional, nil disables caching and shared limits
	Config   *config.Config             // Application configuration
	Limiters map[string]ratelimit.Store // Stores by tier name, missing tiers are created
}

// NewLimiters creates one store per tier
func NewLimiters(rdb *redis.Client) map[string]ratelimit.Store {
	limiters := make(map[string]ratelimit.Store)
	for _, tier := range ratelimit.Tiers() {
		limiters[tier.Name] = ratelimit.NewStore(rdb, tier)
	}
	return limiters
}

// SetupRouter builds the HTTP router with every route
func SetupRouter(d Deps) *gin.Engine {
	RegisterValidators()
	cfg := d.Config
	db := d.DB
	if d.Limiters == nil {
		d.Limiters = NewLimiters(d.Redis)
	}
	limit := func(tier ratelimit.Tier) gin.HandlerFunc {
		store, ok := d.Limiters[tier.Name]
		if !ok {
			store = ratelimit.NewStore(d.Redis, tier)
		}
		return middleware.RateLimit(store, tier)
	}
	cache := Cache{Client: d.Redis, TTL: time.Duration(cfg.CacheTTLSec) * time.Second}
	tokenTTL := time.Duration(cfg.JWTTTLHours) * time.Hour
	uploadMax := int64(cfg.UploadMaxMB) << 20

	r := gin.New() // Gin router instance
	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.WithError(err).Warn("Failed to set trusted proxies")
	}
	r.Use(middleware.Recovery(), middleware.RequestID(), middleware.RequestLogger(), middleware.ErrorHandler())
	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
			ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	r.Static("/uploads", cfg.UploadDir) // Uploaded images

	r.GET("/health", func(c *gin.Context) {
		status := gin.H{"status": "ok", "database": "up"}
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			status["status"], status["database"] = "degraded", "down"
			c.JSON(http.StatusServiceUnavailable, status)
			return
		}
		c.JSON(http.StatusOK, status)
	})

	jwt := middleware.JWTAuthMiddleware(cfg.JWTSecret)
	upload := middleware.UploadImage("image", cfg.UploadDir, uploadMax)

	api := r.Group("/api", limit(ratelimit.General), middleware.OptionalAuth(cfg.JWTSecret))
	user := api.Group("", jwt)                                                              // Authenticated routes
	admin := api.Group("", limit(ratelimit.Admin), jwt, middleware.AdminOnlyMiddleware(db)) // Admin routes

	// Auth routes
	api.POST("/auth/register", limit(ratelimit.Auth), RegisterHandler(db, cfg.JWTSecret, tokenTTL)) // Registration endpoint
	api.POST("/auth/login", limit(ratelimit.Auth), LoginHandler(db, cfg.JWTSecret, tokenTTL))       // Login endpoint
	user.GET("/auth/me", MeHandler(db))                                                             // Current user endpoint

	// Course and lesson routes
	api.GET("/courses", ListCoursesHandler(db))
	api.GET("/courses/:id", GetCourseHandler(db))
	api.GET("/courses/:id/lessons", ListCourseLessonsHandler(db))
	user.POST("/courses/:id/enroll", EnrollHandler(db))
	admin.POST("/courses", CreateCourseHandler(db))
	admin.PUT("/courses/:id", UpdateCourseHandler(db))
	admin.POST("/courses/:id/chapters", CreateChapterHandler(db))
	admin.POST("/courses/:id/lessons", CreateLessonHandler(db))
	api.GET("/lessons/:id", GetLessonHandler(db))
	admin.PUT("/lessons/:id", UpdateLessonHandler(db))
	admin.DELETE("/lessons/:id", DeleteLessonHandler(db))

	// Progress routes
	user.POST("/progress/lessons/:id/complete", CompleteLessonHandler(db))
	user.PUT("/progress/lessons/:id", UpdateWatchTimeHandler(db))
	user.GET("/progress/courses/:id", GetCourseProgressHandler(db))
	user.DELETE("/progress/courses/:id", ResetCourseProgressHandler(db))

	// Quiz routes
	api.GET("/quizzes", ListQuizzesHandler(db))
	api.GET("/quizzes/:id", GetQuizHandler(db))
	user.POST("/quizzes/:id/submit", SubmitQuizHandler(db))
	user.GET("/quizzes/:id/attempts", ListAttemptsHandler(db))
	admin.POST("/quizzes", CreateQuizHandler(db))
	admin.PUT("/quizzes/:id", UpdateQuizHandler(db))
	admin.DELETE("/quizzes/:id", DeleteQuizHandler(db))

	// Product and review routes
	api.GET("/products", ListProductsHandler(db, cache))
	api.GET("/products/:id", GetProductHandler(db))
	api.GET("/products/:id/reviews", ListReviewsHandler(db))
	user.POST("/products/:id/reviews", CreateReviewHandler(db, cache))
	user.PUT("/reviews/:id", UpdateReviewHandler(db, cache))
	user.DELETE("/reviews/:id", DeleteReviewHandler(db, cache))
	admin.POST("/products", CreateProductHandler(db, cache))
	admin.PUT("/products/:id", UpdateProductHandler(db, cache))
	admin.DELETE("/products/:id", DeleteProductHandler(db, cache))

	// Order routes
	api.POST("/orders", limit(ratelimit.Payment), jwt, CreateOrderHandler(db, cache))
	user.GET("/orders", ListOrdersHandler(db))
	user.GET("/orders/:id", GetOrderHandler(db))
	admin.PATCH("/orders/:id/status", UpdateOrderStatusHandler(db, cache))

	// Gallery routes
	api.GET("/gallery", ListGalleryHandler(db, cache))
	api.GET("/gallery/categories", GalleryCategoriesHandler(db))
	api.GET("/gallery/:id", GetGalleryHandler(db))
	admin.POST("/gallery", upload, CreateGalleryHandler(db, cache))
	admin.PUT("/gallery/:id", upload, UpdateGalleryHandler(db, cache, cfg.UploadDir))
	admin.DELETE("/gallery/:id", DeleteGalleryHandler(db, cache, cfg.UploadDir))

	// Blog routes
	api.GET("/blogs", ListBlogsHandler(db))
	api.GET("/blogs/:id", GetBlogHandler(db))
	admin.POST("/blogs", CreateBlogHandler(db))
	user.PUT("/blogs/:id", UpdateBlogHandler(db))
	user.DELETE("/blogs/:id", DeleteBlogHandler(db))

	// Contact routes
	api.POST("/contact", limit(ratelimit.Strict), SubmitContactHandler(db))
	admin.GET("/contact", ListContactsHandler(db))
	admin.GET("/contact/:id", GetContactHandler(db))
	admin.PATCH("/contact/:id/status", UpdateContactStatusHandler(db))
	admin.DELETE("/contact/:id", DeleteContactHandler(db))

	r.NoRoute(func(c *gin.Context) {
		utils.Fail(c, http.StatusNotFound, "Route not found")
	})
	return r
}
