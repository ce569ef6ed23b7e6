package forecast

import (
	"math"
	"sort"
	"time"

	"flowcast/internal/domain"
)

// windowDays is the rolling window the confidence interval is computed
// over: the first three forecast days on or after today.
const windowDays = 3

// zScore widens the interval to roughly an 80% band under normality.
// Heuristic width only, not a statistical guarantee.
const zScore = 1.28

// Insight texts, emitted in this fixed order.
const (
	insightDiscount = "Retailer is offering a high discount."
	insightStock    = "Stock is in excess, likely causing markdowns."
	insightExpiry   = "Product is nearing expiry."
	insightRain     = "Rain may reduce foot traffic or demand."
	insightTemp     = "Extreme temperatures predicted on that day."
	insightHoliday  = "Holiday pricing behavior has been applied."
	insightDefault  = "Standard price adjustment by the retailer."
)

// Window summarizes the near-term price behavior of one product run.
type Window struct {
	Days           int       `json:"days"`      // Rows actually in the window (<= 3)
	Mean           float64   `json:"mean"`      // Mean forecasted price
	StdDev         float64   `json:"std_dev"`   // Sample standard deviation
	Low            float64   `json:"ci_low"`    // Mean - 1.28 sigma
	High           float64   `json:"ci_high"`   // Mean + 1.28 sigma
	Volatility     float64   `json:"volatility"` // StdDev / Mean, 0 when mean is 0
	Confidence     string    `json:"confidence"` // Discrete label, e.g. "~80%"
	HighVolatility bool      `json:"high_volatility"`
	BestDay        time.Time `json:"best_day"`   // Cheapest day, earliest wins ties
	BestPrice      float64   `json:"best_price"`
	Insights       []string  `json:"insights"`
}

// EligibleRows returns the rows usable for window statistics, ordered by
// day. Dairy rows priced at zero are spoiled days and never count.
func EligibleRows(rows []domain.Forecast, dairy bool) []domain.Forecast {
	out := make([]domain.Forecast, 0, len(rows))
	for _, r := range rows {
		if dairy && r.ForecastedPrice == 0 {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ForecastDay.Before(out[j].ForecastDay)
	})
	return out
}

// BuildWindow computes the confidence window for a product's run. Rows
// before today are ignored; at most windowDays rows are used. Returns
// nil when no usable row remains.
func BuildWindow(rows []domain.Forecast, dairy bool, today time.Time) *Window {
	cutoff := dayKey(today)
	eligible := EligibleRows(rows, dairy)
	window := make([]domain.Forecast, 0, windowDays)
	for _, r := range eligible {
		if dayKey(r.ForecastDay) < cutoff {
			continue
		}
		window = append(window, r)
		if len(window) == windowDays {
			break
		}
	}
	if len(window) == 0 {
		return nil
	}

	mean := 0.0
	for _, r := range window {
		mean += r.ForecastedPrice
	}
	mean /= float64(len(window))

	std := 0.0
	if len(window) > 1 {
		var ss float64
		for _, r := range window {
			d := r.ForecastedPrice - mean
			ss += d * d
		}
		std = math.Sqrt(ss / float64(len(window)-1))
	}

	volatility := 0.0
	if mean != 0 {
		volatility = std / mean
	}

	best := window[0]
	for _, r := range window[1:] {
		if r.ForecastedPrice < best.ForecastedPrice { // Strict: earliest day wins ties
			best = r
		}
	}

	return &Window{
		Days:           len(window),
		Mean:           mean,
		StdDev:         std,
		Low:            mean - zScore*std,
		High:           mean + zScore*std,
		Volatility:     volatility,
		Confidence:     confidenceLabel(volatility),
		HighVolatility: volatility > 0.3,
		BestDay:        best.ForecastDay,
		BestPrice:      best.ForecastedPrice,
		Insights:       insightsFor(best),
	}
}

// confidenceLabel maps the volatility ratio to a discrete band. The
// bands are monotone: more volatility, less confidence.
func confidenceLabel(ratio float64) string {
	switch {
	case ratio < 0.05:
		return "~95%"
	case ratio < 0.10:
		return "~90%"
	case ratio < 0.20:
		return "~80%"
	case ratio < 0.30:
		return "~70%"
	case ratio < 0.40:
		return "~60%"
	case ratio < 0.50:
		return "~50%"
	default:
		return "~40%"
	}
}

// insightsFor runs the independent threshold checks against the best
// day's covariates, in fixed order. Multiple insights may co-occur; a
// generic fallback is emitted when none apply.
func insightsFor(day domain.Forecast) []string {
	var insights []string
	if day.Discount > 0.2 {
		insights = append(insights, insightDiscount)
	}
	if day.Stock > 150 {
		insights = append(insights, insightStock)
	}
	if day.DaysToExpiry < 5 {
		insights = append(insights, insightExpiry)
	}
	if day.Rain > 8 {
		insights = append(insights, insightRain)
	}
	if day.Temp < 10 || day.Temp > 35 {
		insights = append(insights, insightTemp)
	}
	if day.Holiday == 1 {
		insights = append(insights, insightHoliday)
	}
	if len(insights) == 0 {
		insights = append(insights, insightDefault)
	}
	return insights
}

// dayKey reduces a timestamp to its calendar date as rendered in its
// own zone. Rows sit at UTC midnight while callers pass a wall clock,
// so comparing absolute instants would drop today's row for clocks
// behind UTC.
func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
