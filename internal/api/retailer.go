package api

import (
	"context"  // Context for Redis operations
	"errors"   // Sentinel error checks
	"net/http" // HTTP status codes
	"time"     // Timestamps

	"flowcast/internal/domain"    // Importing domain models
	"flowcast/internal/forecast"  // Pure forecast core
	"flowcast/internal/model"     // Pricing model contract
	"flowcast/internal/providers" // External data providers
	"flowcast/internal/utils"     // Utility functions

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// GenerateRequest carries the retailer's input panel for one product run
type GenerateRequest struct {
	Category     string  `json:"category" binding:"required"`          // Product category
	Product      string  `json:"product" binding:"required"`           // Product name
	City         string  `json:"city" binding:"required"`              // Location for the weather series
	Country      string  `json:"country"`                              // ISO country code for holidays, defaults to IN
	State        string  `json:"state"`                                // Optional state/region for holidays
	Stock        int     `json:"stock" binding:"required,gt=0"`        // Stock level
	Discount     float64 `json:"discount" binding:"gte=0,lte=1"`       // Discount fraction
	DaysToExpiry float64 `json:"days_to_expiry" binding:"gte=0"`       // Remaining shelf life today
	MRP          float64 `json:"mrp" binding:"required,gt=0"`          // Base price
}

// dayOne pairs a feature with its day-1 contribution for the response.
type dayOne struct {
	Feature      string  `json:"feature"`
	Contribution float64 `json:"contribution"`
}

// GenerateForecastHandler runs the whole generation workflow: providers,
// model, business rules, then an atomic replace of the product's run. Any
// provider or model error aborts with a visible message and persists
// nothing.
func GenerateForecastHandler(db *gorm.DB, weather *providers.WeatherClient, holidays *providers.HolidayClient, pricer model.Pricer, horizon int) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req GenerateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		if req.Country == "" {
			req.Country = "IN"
		}

		ctx := c.Request.Context()
		lat, lon, err := weather.Geocode(ctx, req.City)
		if err != nil {
			if errors.Is(err, providers.ErrUnknownCity) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported city for weather forecast."})
				return
			}
			c.JSON(http.StatusBadGateway, gin.H{"error": "Geocoding failed: " + err.Error()})
			return
		}

		weatherDays, err := weather.DailyForecast(ctx, lat, lon, horizon)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "Insufficient forecast data: " + err.Error()})
			return
		}

		start := weatherDays[0].Day
		holidayFlags, fellBack := holidays.Flags(ctx, req.Country, req.State, start, horizon)
		if fellBack {
			logrus.WithFields(logrus.Fields{
				"country": req.Country,
				"state":   req.State,
			}).Warn("Holiday API unavailable, using weekends-only fallback")
		}

		run, attribution, err := forecast.BuildRun(forecast.Inputs{
			Category:     req.Category,
			Product:      req.Product,
			Stock:        req.Stock,
			Discount:     req.Discount,
			DaysToExpiry: req.DaysToExpiry,
			MRP:          req.MRP,
		}, weatherDays, holidayFlags, pricer)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "Forecast generation failed: " + err.Error()})
			return
		}

		// Replace the product's whole run: delete then insert, only after
		// all computation succeeded
		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("category = ? AND product = ?", req.Category, req.Product).
				Delete(&domain.Forecast{}).Error; err != nil {
				return err
			}
			return tx.Create(&run).Error
		})
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"category": req.Category,
				"product":  req.Product,
				"error":    err.Error(),
			}).Error("Forecast save failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save forecast"})
			return
		}

		logrus.WithFields(logrus.Fields{
			"category":  req.Category,
			"product":   req.Product,
			"city":      req.City,
			"days":      len(run),
			"timestamp": time.Now().Format(time.RFC3339),
		}).Info("Forecast saved")

		// The product listing changed, drop its cache
		invalidateProducts(c)

		breakdown := make([]dayOne, len(model.FeatureNames))
		for j, name := range model.FeatureNames {
			breakdown[j] = dayOne{Feature: name, Contribution: attribution.Contributions[0][j]}
		}
		c.JSON(http.StatusOK, gin.H{
			"message":          "Forecast saved for " + req.Product + " in " + req.City + " (" + req.Category + ")",
			"forecast":         run,
			"holiday_fallback": fellBack,
			"attribution": gin.H{
				"baseline":       attribution.Baseline,
				"importance":     attribution.Summary(),
				"day1_breakdown": breakdown,
			},
		})
	}
}

// invalidateProducts drops the cached product listing when a run changes.
func invalidateProducts(c *gin.Context) {
	if rdb := cacheClient(c); rdb != nil {
		_ = utils.DeleteCache(context.Background(), rdb, utils.ProductsKey)
	}
}
