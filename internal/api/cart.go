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
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// CartItemRequest identifies one cart membership
type CartItemRequest struct {
	Category string `json:"category" binding:"required"`
	Product  string `json:"product" binding:"required"`
}

// AddToCartRequest additionally carries the initial quantity
type AddToCartRequest struct {
	Category string `json:"category" binding:"required"`
	Product  string `json:"product" binding:"required"`
	Quantity int    `json:"quantity" binding:"gte=0"` // 0 means default of 1
}

// CartEntry is one cart row in API responses
type CartEntry struct {
	Category    string     `json:"category"`
	Product     string     `json:"product"`
	Quantity    int        `json:"quantity"`
	Locked      bool       `json:"locked"`
	LockedDate  *time.Time `json:"locked_date,omitempty"`
	LockedPrice *float64   `json:"locked_price,omitempty"`
}

// CartView is the whole hydrated cart, including the cart-wide best-buy
// window
type CartView struct {
	Items      []CartEntry `json:"items"`
	BestBuyDay *time.Time  `json:"best_buy_day"` // nil when no common valid day exists
	Note       string      `json:"note,omitempty"`
}

// sessionUser pulls the authenticated username from the context.
func sessionUser(c *gin.Context) (string, bool) {
	v, exists := c.Get("username")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Access denied. Please log in."})
		return "", false
	}
	return v.(string), true
}

// findCartItem loads one membership row for a user.
func findCartItem(db *gorm.DB, username, category, product string) (*domain.CartItem, error) {
	var item domain.CartItem
	err := db.Where("username = ? AND category = ? AND product = ?", username, category, product).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// AddToCartHandler moves a product from ABSENT to IN_CART with an
// initial quantity. Products without forecasts and duplicate memberships
// are rejected.
func AddToCartHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		username, ok := sessionUser(c)
		if !ok {
			return
		}
		var req AddToCartRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		if req.Quantity == 0 {
			req.Quantity = 1
		}
		rows, err := fetchRun(db, req.Category, req.Product)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to validate product"})
			return
		}
		if len(rows) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No forecast data found for the selected product."})
			return
		}
		if _, err := findCartItem(db, username, req.Category, req.Product); err == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Product is already in the cart."})
			return
		}
		item := domain.CartItem{
			Username: username,
			Category: req.Category,
			Product:  req.Product,
			Quantity: req.Quantity,
		}
		if err := db.Create(&item).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add item to cart"})
			return
		}
		logrus.WithFields(logrus.Fields{
			"username": username,
			"category": req.Category,
			"product":  req.Product,
			"quantity": req.Quantity,
		}).Info("Cart item added")
		invalidateCart(c, username)
		c.JSON(http.StatusCreated, gin.H{"message": "Added to cart"})
	}
}

// IncrementCartHandler bumps a membership's quantity by one. An existing
// lock is never touched by quantity changes.
func IncrementCartHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		username, ok := sessionUser(c)
		if !ok {
			return
		}
		var req CartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		item, err := findCartItem(db, username, req.Category, req.Product)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product is not in the cart."})
			return
		}
		if err := db.Model(item).Update("quantity", gorm.Expr("quantity + ?", 1)).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart item"})
			return
		}
		invalidateCart(c, username)
		c.JSON(http.StatusOK, gin.H{"message": "Quantity updated", "quantity": item.Quantity + 1})
	}
}

// DecrementCartHandler lowers a membership's quantity by one. At
// quantity one the entry is removed entirely, which also clears any lock
// state; re-adding starts a fresh unlocked cycle.
func DecrementCartHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		username, ok := sessionUser(c)
		if !ok {
			return
		}
		var req CartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		item, err := findCartItem(db, username, req.Category, req.Product)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product is not in the cart."})
			return
		}
		if item.Quantity > 1 {
			if err := db.Model(item).Update("quantity", gorm.Expr("quantity - ?", 1)).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart item"})
				return
			}
			invalidateCart(c, username)
			c.JSON(http.StatusOK, gin.H{"message": "Quantity updated", "quantity": item.Quantity - 1})
			return
		}
		// Removing the row drops the lock with it
		if err := db.Delete(item).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove cart item"})
			return
		}
		logrus.WithFields(logrus.Fields{
			"username": username,
			"category": req.Category,
			"product":  req.Product,
		}).Info("Cart item removed")
		invalidateCart(c, username)
		c.JSON(http.StatusOK, gin.H{"message": "Removed from cart"})
	}
}

// LockPriceHandler snapshots the current best day and price for a cart
// membership. A lock is one-way: once set it can only disappear by
// removing the item from the cart.
func LockPriceHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		username, ok := sessionUser(c)
		if !ok {
			return
		}
		var req CartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		item, err := findCartItem(db, username, req.Category, req.Product)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Add the product to your cart before locking the price."})
			return
		}
		if item.Locked() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Price already locked. Modify the cart to unlock again."})
			return
		}
		rows, err := fetchRun(db, req.Category, req.Product)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load forecast"})
			return
		}
		window := forecast.BuildWindow(rows, domain.IsDairy(req.Category), time.Now())
		if window == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No valid forecasted prices available."})
			return
		}
		if err := db.Model(item).Updates(map[string]any{
			"locked_date":  window.BestDay,
			"locked_price": window.BestPrice,
		}).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to lock price"})
			return
		}
		logrus.WithFields(logrus.Fields{
			"username":     username,
			"category":     req.Category,
			"product":      req.Product,
			"locked_date":  window.BestDay.Format("2006-01-02"),
			"locked_price": window.BestPrice,
		}).Info("Price locked")
		invalidateCart(c, username)
		c.JSON(http.StatusOK, gin.H{
			"message":      "Price locked",
			"locked_date":  window.BestDay,
			"locked_price": window.BestPrice,
		})
	}
}

// GetCartHandler returns the hydrated cart with lock info and the
// cart-wide best-buy window, served through the session cache.
func GetCartHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		username, ok := sessionUser(c)
		if !ok {
			return
		}
		ctx := context.Background()
		cacheKey := utils.CartKey(username)
		var cached CartView
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{"cart": cached, "cached": true})
			return
		}

		var items []domain.CartItem
		if err := db.Where("username = ?", username).
			Order("category asc, product asc").
			Find(&items).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load cart"})
			return
		}

		view := CartView{Items: make([]CartEntry, 0, len(items))}
		lines := make([]forecast.CartLine, 0, len(items))
		for _, item := range items {
			view.Items = append(view.Items, CartEntry{
				Category:    item.Category,
				Product:     item.Product,
				Quantity:    item.Quantity,
				Locked:      item.Locked(),
				LockedDate:  item.LockedDate,
				LockedPrice: item.LockedPrice,
			})
			rows, err := fetchRun(db, item.Category, item.Product)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load cart forecasts"})
				return
			}
			lines = append(lines, forecast.CartLine{
				Quantity: item.Quantity,
				Dairy:    domain.IsDairy(item.Category),
				Rows:     rows,
			})
		}

		if len(items) == 0 {
			view.Note = "Your cart is empty."
		} else if day, ok := forecast.BestBuyDay(lines); ok {
			view.BestBuyDay = &day
		} else {
			view.Note = "No common valid forecasted days found."
		}

		_ = utils.SetCache(ctx, rdb, cacheKey, view, 60*time.Second)
		c.JSON(http.StatusOK, gin.H{"cart": view, "cached": false})
	}
}
