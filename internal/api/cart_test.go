package api

import (
	"net/http"
	"testing"

	"flowcast/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func cartRouter(db *gorm.DB, username string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	g := r.Group("/cart", asUser(username))
	g.GET("", GetCartHandler(db, deadRedis()))
	g.POST("", AddToCartHandler(db))
	g.POST("/increment", IncrementCartHandler(db))
	g.POST("/decrement", DecrementCartHandler(db))
	g.POST("/lock", LockPriceHandler(db))
	return r
}

func tomato() map[string]any {
	return map[string]any{"category": "Vegetables", "product": "Tomato"}
}

func cartItem(t *testing.T, db *gorm.DB, username string) *domain.CartItem {
	t.Helper()
	var item domain.CartItem
	require.NoError(t, db.First(&item, "username = ?", username).Error)
	return &item
}

func TestAddToCart(t *testing.T) {
	db := setupDB(t)
	seedRun(t, db, "Vegetables", "Tomato", []float64{40, 55, 48})
	r := cartRouter(db, "alice")

	w := doJSON(t, r, http.MethodPost, "/cart", tomato())
	require.Equal(t, http.StatusCreated, w.Code)

	item := cartItem(t, db, "alice")
	assert.Equal(t, 1, item.Quantity) // Quantity defaults to 1
	assert.False(t, item.Locked())

	// Duplicate membership is rejected.
	w = doJSON(t, r, http.MethodPost, "/cart", tomato())
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "already in the cart")
}

func TestAddToCartRequiresForecast(t *testing.T) {
	db := setupDB(t)
	r := cartRouter(db, "alice")

	w := doJSON(t, r, http.MethodPost, "/cart", tomato())
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "No forecast data found")
}

func TestIncrementAndDecrement(t *testing.T) {
	db := setupDB(t)
	seedRun(t, db, "Vegetables", "Tomato", []float64{40, 55, 48})
	r := cartRouter(db, "alice")

	require.Equal(t, http.StatusCreated, doJSON(t, r, http.MethodPost, "/cart", tomato()).Code)

	w := doJSON(t, r, http.MethodPost, "/cart/increment", tomato())
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, cartItem(t, db, "alice").Quantity)

	w = doJSON(t, r, http.MethodPost, "/cart/decrement", tomato())
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, cartItem(t, db, "alice").Quantity)

	// Decrement at quantity one removes the entry.
	w = doJSON(t, r, http.MethodPost, "/cart/decrement", tomato())
	require.Equal(t, http.StatusOK, w.Code)
	var count int64
	require.NoError(t, db.Model(&domain.CartItem{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)

	// Mutating an absent membership is an error.
	w = doJSON(t, r, http.MethodPost, "/cart/increment", tomato())
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLockLifecycle(t *testing.T) {
	db := setupDB(t)
	seedRun(t, db, "Vegetables", "Tomato", []float64{40, 55, 48})
	r := cartRouter(db, "alice")

	// Locking before the product is in the cart is refused.
	w := doJSON(t, r, http.MethodPost, "/cart/lock", tomato())
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Add the product to your cart")

	require.Equal(t, http.StatusCreated, doJSON(t, r, http.MethodPost, "/cart", tomato()).Code)

	w = doJSON(t, r, http.MethodPost, "/cart/lock", tomato())
	require.Equal(t, http.StatusOK, w.Code)

	item := cartItem(t, db, "alice")
	require.True(t, item.Locked())
	// The snapshot is the window's best day and price: the 40 day.
	assert.Equal(t, 40.0, *item.LockedPrice)
	assert.Equal(t, testDay(0).Format("2006-01-02"), item.LockedDate.Format("2006-01-02"))

	// A second lock is refused; the snapshot is untouched.
	w = doJSON(t, r, http.MethodPost, "/cart/lock", tomato())
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "already locked")
}

func TestLockSurvivesQuantityChanges(t *testing.T) {
	db := setupDB(t)
	seedRun(t, db, "Vegetables", "Tomato", []float64{40, 55, 48})
	r := cartRouter(db, "alice")

	require.Equal(t, http.StatusCreated, doJSON(t, r, http.MethodPost, "/cart", tomato()).Code)
	require.Equal(t, http.StatusOK, doJSON(t, r, http.MethodPost, "/cart/increment", tomato()).Code)
	require.Equal(t, http.StatusOK, doJSON(t, r, http.MethodPost, "/cart/lock", tomato()).Code)

	locked := cartItem(t, db, "alice")
	require.True(t, locked.Locked())
	lockedPrice := *locked.LockedPrice

	// Regenerating the forecast with new prices must not move the lock.
	require.NoError(t, db.Where("category = ? AND product = ?", "Vegetables", "Tomato").
		Delete(&domain.Forecast{}).Error)
	seedRun(t, db, "Vegetables", "Tomato", []float64{10, 12, 11})

	require.Equal(t, http.StatusOK, doJSON(t, r, http.MethodPost, "/cart/increment", tomato()).Code)
	require.Equal(t, http.StatusOK, doJSON(t, r, http.MethodPost, "/cart/decrement", tomato()).Code)

	after := cartItem(t, db, "alice")
	require.True(t, after.Locked())
	assert.Equal(t, lockedPrice, *after.LockedPrice)

	// Removal clears the lock; re-adding starts a fresh unlocked cycle.
	require.Equal(t, http.StatusOK, doJSON(t, r, http.MethodPost, "/cart/decrement", tomato()).Code)
	require.Equal(t, http.StatusOK, doJSON(t, r, http.MethodPost, "/cart/decrement", tomato()).Code)
	require.Equal(t, http.StatusCreated, doJSON(t, r, http.MethodPost, "/cart", tomato()).Code)
	fresh := cartItem(t, db, "alice")
	assert.False(t, fresh.Locked())
}

func TestGetCartBestBuyWindow(t *testing.T) {
	db := setupDB(t)
	// A has days {0,1,2}, B has {1,2}: common days are 1 and 2.
	seedRun(t, db, "Vegetables", "Tomato", []float64{10, 20, 30})
	for i, p := range []float64{5, 1} {
		require.NoError(t, db.Create(&domain.Forecast{
			Category: "Fruits", Product: "Mango",
			ForecastDay: testDay(i + 1), ForecastedPrice: p,
			Stock: 100, DaysToExpiry: 10, Temp: 25,
		}).Error)
	}
	r := cartRouter(db, "alice")

	require.Equal(t, http.StatusCreated, doJSON(t, r, http.MethodPost, "/cart",
		map[string]any{"category": "Vegetables", "product": "Tomato", "quantity": 2}).Code)
	require.Equal(t, http.StatusCreated, doJSON(t, r, http.MethodPost, "/cart",
		map[string]any{"category": "Fruits", "product": "Mango"}).Code)

	w := doJSON(t, r, http.MethodGet, "/cart", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	cart := body["cart"].(map[string]any)

	// Day 1 total: 2*20 + 5 = 45. Day 2 total: 2*30 + 1 = 61.
	require.NotNil(t, cart["best_buy_day"])
	assert.Contains(t, cart["best_buy_day"].(string), testDay(1).Format("2006-01-02"))
	assert.Len(t, cart["items"].([]any), 2)
}

func TestGetCartNoCommonDay(t *testing.T) {
	db := setupDB(t)
	seedRun(t, db, "Vegetables", "Tomato", []float64{10})
	for i, p := range []float64{5, 6} {
		require.NoError(t, db.Create(&domain.Forecast{
			Category: "Fruits", Product: "Mango",
			ForecastDay: testDay(i + 1), ForecastedPrice: p,
			Stock: 100, DaysToExpiry: 10, Temp: 25,
		}).Error)
	}
	r := cartRouter(db, "alice")

	require.Equal(t, http.StatusCreated, doJSON(t, r, http.MethodPost, "/cart", tomato()).Code)
	require.Equal(t, http.StatusCreated, doJSON(t, r, http.MethodPost, "/cart",
		map[string]any{"category": "Fruits", "product": "Mango"}).Code)

	w := doJSON(t, r, http.MethodGet, "/cart", nil)
	require.Equal(t, http.StatusOK, w.Code)
	cart := decodeBody(t, w)["cart"].(map[string]any)

	assert.Nil(t, cart["best_buy_day"])
	assert.Contains(t, cart["note"], "No common valid forecasted days")
}

func TestGetCartEmpty(t *testing.T) {
	db := setupDB(t)
	r := cartRouter(db, "alice")

	w := doJSON(t, r, http.MethodGet, "/cart", nil)
	require.Equal(t, http.StatusOK, w.Code)
	cart := decodeBody(t, w)["cart"].(map[string]any)
	assert.Empty(t, cart["items"])
	assert.Contains(t, cart["note"], "empty")
}
