package main

import (
	"context" // context package is needed for Redis operations
	"log"     // log package is needed for logging

	"flowcast/internal/api"        // Custom package for API handlers
	"flowcast/internal/config"     // Custom package for configuration
	"flowcast/internal/domain"     // Domain models and role names
	"flowcast/internal/middleware" // Custom package for middleware
	"flowcast/internal/model"      // Serialized pricing model
	"flowcast/internal/providers"  // External data providers

	"github.com/gin-contrib/cors"  // CORS middleware
	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
	"gorm.io/driver/sqlite"        // SQLite driver for GORM
	"gorm.io/gorm"                 // GORM ORM library
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Connect to the local database file
	db, err := gorm.Open(sqlite.Open(cfg.DBPath), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err)
	}

	// Setup Redis client for the session cart cache
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})

	// Test Redis connection
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Load the serialized pricing model
	pricer, err := model.Load(cfg.ModelPath)
	if err != nil {
		logrus.Fatalf("failed to load pricing model: %v", err)
	}

	// External providers
	weather := providers.NewWeatherClient()
	holidays := providers.NewHolidayClient(cfg.HolidayAPIKey)

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.Default()
	r.Use(cors.Default())

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	// Inject Redis client into context for cache invalidation
	withRedis := func(c *gin.Context) {
		c.Set("redisClient", redisClient)
		c.Next()
	}

	// Auth routes
	r.POST("/auth/signup", api.SignupHandler(db))
	r.POST("/auth/login", api.LoginHandler(db, cfg.JWTSecret))
	r.POST("/auth/logout", middleware.JWTAuthMiddleware(cfg.JWTSecret), api.LogoutHandler(redisClient))

	// Retailer routes (protected, Retailer role only)
	retailerGroup := r.Group("/retailer")
	retailerGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret), middleware.RequireRole(db, domain.RoleRetailer), withRedis)
	retailerGroup.POST("/forecast", api.GenerateForecastHandler(db, weather, holidays, pricer, cfg.ForecastDays))

	// Forecast viewing routes (protected, User role only)
	forecastGroup := r.Group("/forecast")
	forecastGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret), middleware.RequireRole(db, domain.RoleUser))
	forecastGroup.GET("/products", api.ListProductsHandler(db, redisClient))
	forecastGroup.GET("", api.GetForecastHandler(db))

	// Cart routes (protected, User role only)
	cartGroup := r.Group("/cart")
	cartGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret), middleware.RequireRole(db, domain.RoleUser), withRedis)
	cartGroup.GET("", api.GetCartHandler(db, redisClient))
	cartGroup.POST("", api.AddToCartHandler(db))
	cartGroup.POST("/increment", api.IncrementCartHandler(db))
	cartGroup.POST("/decrement", api.DecrementCartHandler(db))
	cartGroup.POST("/lock", api.LockPriceHandler(db))

	log.Println("Server running on " + cfg.AppPort) // Log server start
	r.Run(":" + cfg.AppPort)                        // Start the server on port cfg.AppPort
}
