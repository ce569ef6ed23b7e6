package forecast

import (
	"errors"
	"fmt"
	"math"

	"flowcast/internal/domain"
	"flowcast/internal/model"
	"flowcast/internal/providers"
)

// FloorMultiplier is the minimum allowed price as a fraction of MRP.
const FloorMultiplier = 0.60

// Inputs are the retailer's panel values for one product run.
type Inputs struct {
	Category     string
	Product      string
	Stock        int
	Discount     float64
	DaysToExpiry float64
	MRP          float64
}

// BuildRun combines retailer inputs, the weather series, the holiday
// flags and the pricing model into a persist-ready forecast run plus its
// feature attribution. The horizon is len(weather); holidays must cover
// the same days. Nothing is persisted here, so a failure leaves no
// partial run behind.
func BuildRun(in Inputs, weather []providers.WeatherDay, holidays []int, pricer model.Pricer) ([]domain.Forecast, *model.Attribution, error) {
	if len(weather) == 0 {
		return nil, nil, errors.New("empty weather series")
	}
	if len(holidays) != len(weather) {
		return nil, nil, fmt.Errorf("holiday series covers %d days, weather covers %d", len(holidays), len(weather))
	}
	if in.MRP <= 0 {
		return nil, nil, errors.New("base price must be positive")
	}

	rows := make([]model.FeatureRow, len(weather))
	for i, w := range weather {
		expiry := math.Max(in.DaysToExpiry-float64(i), 0) // Shelf life shrinks one day per forecast day
		rows[i] = model.FeatureRow{
			StockLevel:          float64(in.Stock),
			Holiday:             float64(holidays[i]),
			Rain:                w.Rain,
			Temperature:         w.Temp,
			DaysToExpiry:        expiry,
			StockExpiryRatio:    float64(in.Stock) / (expiry + 1),
			RainTempInteraction: w.Rain * w.Temp,
		}
	}

	multipliers, err := pricer.Predict(rows)
	if err != nil {
		return nil, nil, fmt.Errorf("model prediction failed: %w", err)
	}
	if len(multipliers) != len(rows) {
		return nil, nil, fmt.Errorf("model returned %d multipliers for %d rows", len(multipliers), len(rows))
	}
	attribution, err := pricer.Explain(rows)
	if err != nil {
		return nil, nil, fmt.Errorf("model attribution failed: %w", err)
	}

	dairy := domain.IsDairy(in.Category)
	run := make([]domain.Forecast, len(rows))
	for i, row := range rows {
		raw := multipliers[i] * in.MRP
		var price float64
		if dairy {
			price = math.Max(raw, FloorMultiplier*in.MRP)
			if row.DaysToExpiry <= 0 {
				price = 0 // Spoilage cutoff overrides the floor
			}
		} else {
			price = math.Max(math.Min(raw, in.MRP), FloorMultiplier*in.MRP)
		}
		run[i] = domain.Forecast{
			Category:        in.Category,
			Product:         in.Product,
			ForecastDay:     weather[i].Day,
			ForecastedPrice: price,
			Stock:           in.Stock,
			Discount:        in.Discount,
			Holiday:         holidays[i],
			Rain:            row.Rain,
			Temp:            row.Temperature,
			DaysToExpiry:    row.DaysToExpiry,
		}
	}
	return run, attribution, nil
}
