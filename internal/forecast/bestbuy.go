package forecast

import (
	"time"

	"flowcast/internal/domain"
)

// CartLine is one cart entry joined with its product's forecast run.
type CartLine struct {
	Quantity int
	Dairy    bool
	Rows     []domain.Forecast
}

// BestBuyDay returns the calendar day that minimizes the cart's total
// cost (price times quantity, summed across products), restricted to the
// days every product has a usable forecast for. ok is false when the
// cart is empty or no common day exists; callers must report that rather
// than pick an arbitrary day.
func BestBuyDay(lines []CartLine) (day time.Time, ok bool) {
	if len(lines) == 0 {
		return time.Time{}, false
	}

	totals := make(map[string]float64)
	counts := make(map[string]int)
	dayByKey := make(map[string]time.Time)

	for _, line := range lines {
		eligible := EligibleRows(line.Rows, line.Dairy)
		if len(eligible) == 0 {
			return time.Time{}, false // A product with no valid days empties the intersection
		}
		seen := make(map[string]bool, len(eligible))
		for _, r := range eligible {
			d := truncateDay(r.ForecastDay)
			key := dayKey(d)
			if seen[key] {
				continue // First row per day wins, duplicates never double-count
			}
			seen[key] = true
			totals[key] += r.ForecastedPrice * float64(line.Quantity)
			counts[key]++
			dayByKey[key] = d
		}
	}

	var bestKey string
	var bestTotal float64
	for key, n := range counts {
		if n != len(lines) {
			continue // Day missing from at least one product's run
		}
		if bestKey == "" || totals[key] < bestTotal ||
			(totals[key] == bestTotal && key < bestKey) {
			bestKey = key
			bestTotal = totals[key]
		}
	}
	if bestKey == "" {
		return time.Time{}, false
	}
	return dayByKey[bestKey], true
}
