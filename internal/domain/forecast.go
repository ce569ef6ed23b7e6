package domain

import (
	"strings"
	"time"
)

// Forecast Model: one row per day of a generated price run. A
// (category, product) pair owns a contiguous run of days; regenerating
// replaces the whole run.
type Forecast struct {
	ID              uint      `gorm:"primaryKey"`    // Primary key
	Category        string    `gorm:"index:idx_run"` // Product category
	Product         string    `gorm:"index:idx_run"` // Product name
	ForecastDay     time.Time // Calendar day the price applies to
	ForecastedPrice float64   // Price after floor/cap/spoilage rules
	Stock           int       // Stock level used for the run
	Discount        float64   // Discount fraction, 0..1
	Holiday         int       // 1 when the day is a holiday (weekends included)
	Rain            float64   // Precipitation sum, mm
	Temp            float64   // Max temperature, °C
	DaysToExpiry    float64   // Remaining shelf life on that day
}

// IsDairy reports whether a category follows the dairy spoilage rules
// (expired days priced at exactly zero and excluded from windows).
func IsDairy(category string) bool {
	return strings.Contains(strings.ToLower(category), "dairy")
}
