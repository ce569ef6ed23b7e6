package forecast

import (
	"testing"
	"time"

	"flowcast/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runRows(prices map[int]float64) []domain.Forecast {
	rows := make([]domain.Forecast, 0, len(prices))
	for offset, price := range prices {
		rows = append(rows, domain.Forecast{
			ForecastDay:     day(offset),
			ForecastedPrice: price,
		})
	}
	return rows
}

func TestBestBuyDayCommonDayIntersection(t *testing.T) {
	// A has days {0,1,2}, B has {1,2,3}; only 1 and 2 are common.
	a := CartLine{Quantity: 2, Rows: runRows(map[int]float64{0: 10, 1: 20, 2: 30})}
	b := CartLine{Quantity: 1, Rows: runRows(map[int]float64{1: 5, 2: 1, 3: 1})}

	// Day 1 total: 2*20 + 5 = 45. Day 2 total: 2*30 + 1 = 61.
	got, ok := BestBuyDay([]CartLine{a, b})
	require.True(t, ok)
	assert.Equal(t, day(1), got)
}

func TestBestBuyDayQuantityShiftsWinner(t *testing.T) {
	a := CartLine{Quantity: 1, Rows: runRows(map[int]float64{0: 10, 1: 12})}
	b := CartLine{Quantity: 1, Rows: runRows(map[int]float64{0: 10, 1: 7})}

	// Equal quantities: day 0 costs 20, day 1 costs 19.
	got, ok := BestBuyDay([]CartLine{a, b})
	require.True(t, ok)
	assert.Equal(t, day(1), got)

	// Tripling A's quantity makes its cheap day dominate: day 0 = 40, day 1 = 43.
	a.Quantity = 3
	got, ok = BestBuyDay([]CartLine{a, b})
	require.True(t, ok)
	assert.Equal(t, day(0), got)
}

func TestBestBuyDayNoCommonDay(t *testing.T) {
	a := CartLine{Quantity: 1, Rows: runRows(map[int]float64{0: 10, 1: 10})}
	b := CartLine{Quantity: 1, Rows: runRows(map[int]float64{2: 10, 3: 10})}

	_, ok := BestBuyDay([]CartLine{a, b})
	assert.False(t, ok)
}

func TestBestBuyDayEmptyCart(t *testing.T) {
	_, ok := BestBuyDay(nil)
	assert.False(t, ok)
}

func TestBestBuyDayProductWithoutValidDays(t *testing.T) {
	a := CartLine{Quantity: 1, Rows: runRows(map[int]float64{0: 10})}
	empty := CartLine{Quantity: 1}

	_, ok := BestBuyDay([]CartLine{a, empty})
	assert.False(t, ok)

	// A dairy product whose whole run is spoiled behaves the same way.
	spoiled := CartLine{Quantity: 1, Dairy: true, Rows: runRows(map[int]float64{0: 0, 1: 0})}
	_, ok = BestBuyDay([]CartLine{a, spoiled})
	assert.False(t, ok)
}

func TestBestBuyDayDairySpoiledDaysLeaveIntersection(t *testing.T) {
	// The dairy product's day-0 row is spoiled, so day 0 is not common
	// even though it would be the cheapest total.
	veg := CartLine{Quantity: 1, Rows: runRows(map[int]float64{0: 1, 1: 50})}
	dairy := CartLine{Quantity: 1, Dairy: true, Rows: runRows(map[int]float64{0: 0, 1: 30})}

	got, ok := BestBuyDay([]CartLine{veg, dairy})
	require.True(t, ok)
	assert.Equal(t, day(1), got)
}

func TestBestBuyDayReportedDayIsCommon(t *testing.T) {
	a := CartLine{Quantity: 1, Rows: runRows(map[int]float64{0: 3, 1: 2, 2: 1})}
	b := CartLine{Quantity: 1, Rows: runRows(map[int]float64{1: 1, 2: 9})}

	got, ok := BestBuyDay([]CartLine{a, b})
	require.True(t, ok)
	// Day 2 has the cheapest row for A but day 1 wins on the common set.
	assert.Equal(t, day(1), got)

	common := map[time.Time]bool{day(1): true, day(2): true}
	assert.True(t, common[got])
}

func TestBestBuyDayDuplicateRowsCountOnce(t *testing.T) {
	// Two rows for the same day contribute a single total, not a doubled
	// one that would push the winner to a pricier day.
	line := CartLine{Quantity: 1, Rows: []domain.Forecast{
		{ForecastDay: day(0), ForecastedPrice: 10},
		{ForecastDay: day(0), ForecastedPrice: 10},
		{ForecastDay: day(1), ForecastedPrice: 15},
	}}

	got, ok := BestBuyDay([]CartLine{line})
	require.True(t, ok)
	assert.Equal(t, day(0), got)
}
