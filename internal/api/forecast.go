package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"time"     // Time durations

	"flowcast/internal/domain"   // Importing domain models
	"flowcast/internal/forecast" // Pure forecast core
	"flowcast/internal/utils"    // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

// ProductRef is one selectable (category, product) pair
type ProductRef struct {
	Category string `json:"category"`
	Product  string `json:"product"`
}

// fetchRun loads a product's forecast rows ordered by day.
func fetchRun(db *gorm.DB, category, product string) ([]domain.Forecast, error) {
	var rows []domain.Forecast
	err := db.Where("category = ? AND product = ?", category, product).
		Order("forecast_day asc").
		Find(&rows).Error
	return rows, err
}

// ListProductsHandler returns the distinct products with forecasts,
// cached for a minute
func ListProductsHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()
		var cached []ProductRef
		found, err := utils.GetCache(ctx, rdb, utils.ProductsKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{"products": cached, "cached": true})
			return
		}
		var products []ProductRef
		if err := db.Model(&domain.Forecast{}).
			Distinct("category", "product").
			Order("category asc, product asc").
			Find(&products).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load products"})
			return
		}
		if len(products) == 0 {
			// Informational empty state, not an error
			c.JSON(http.StatusOK, gin.H{"products": []ProductRef{}, "message": "No forecasts available yet. Please check back later."})
			return
		}
		_ = utils.SetCache(ctx, rdb, utils.ProductsKey, products, 60*time.Second)
		c.JSON(http.StatusOK, gin.H{"products": products, "cached": false})
	}
}

// GetForecastHandler returns a product's run plus its confidence-window
// summary
func GetForecastHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		category := c.Query("category")
		product := c.Query("product")
		if category == "" || product == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "category and product are required"})
			return
		}
		rows, err := fetchRun(db, category, product)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load forecast"})
			return
		}
		if len(rows) == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "No forecast data found for the selected product."})
			return
		}
		window := forecast.BuildWindow(rows, domain.IsDairy(category), time.Now())
		if window == nil {
			c.JSON(http.StatusOK, gin.H{
				"forecast": rows,
				"warning":  "No valid forecasted prices available.",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"forecast": rows, "window": window})
	}
}
