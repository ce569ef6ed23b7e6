package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"flowcast/internal/domain" // Importing domain models
	"flowcast/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"golang.org/x/crypto/bcrypt"   // Password hashing
	"gorm.io/gorm"                 // GORM ORM library
)

// SignupRequest carries a new account's fields
type SignupRequest struct {
	Username        string `json:"username" binding:"required"`         // Username must be provided
	Password        string `json:"password" binding:"required"`         // Password must be provided
	ConfirmPassword string `json:"confirm_password" binding:"required"` // Confirmation must be provided
	Name            string `json:"name" binding:"required"`             // Display name must be provided
	Role            string `json:"role" binding:"required"`             // Role must be provided
}

// LoginRequest carries credentials plus the role being logged into
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

// AuthResponse is returned on a successful login
type AuthResponse struct {
	Token   string `json:"token"`   // JWT token
	Name    string `json:"name"`    // Display name
	Role    string `json:"role"`    // Session role
	Landing string `json:"landing"` // Role-appropriate landing view
}

// landingView names the view a freshly authenticated session is sent to.
func landingView(role string) string {
	if role == domain.RoleRetailer {
		return "retailer"
	}
	return "forecast"
}

// SignupHandler creates a new account after validating the form
func SignupHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SignupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "All fields are required."})
			return
		}
		if req.Password != req.ConfirmPassword {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Passwords do not match."})
			return
		}
		if len(req.Password) < 4 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Password too short."})
			return
		}
		if !domain.ValidRole(req.Role) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Role must be User or Retailer."})
			return
		}
		// Hash the password before storing
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}
		// Lowercase the username to ensure uniqueness
		user := domain.User{
			Username: strings.ToLower(req.Username),
			Password: string(hash),
			Name:     req.Name,
			Role:     req.Role,
		}
		if err := db.Create(&user).Error; err != nil {
			// Duplicate primary key
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username already exists."})
			return
		}
		logrus.WithFields(logrus.Fields{
			"username": user.Username,
			"role":     user.Role,
		}).Info("Account created")
		c.JSON(http.StatusCreated, gin.H{"message": "Account created! Please log in."})
	}
}

// LoginHandler authenticates a user for a specific role and returns a JWT
func LoginHandler(db *gorm.DB, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		var user domain.User
		if err := db.First(&user, "username = ?", strings.ToLower(req.Username)).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials or role."})
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials or role."})
			return
		}
		// The credential row's role must match the role being logged into
		if user.Role != req.Role {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials or role."})
			return
		}
		token, err := utils.GenerateJWT(user.Username, user.Name, user.Role, jwtSecret)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
			return
		}
		c.JSON(http.StatusOK, AuthResponse{
			Token:   token,
			Name:    user.Name,
			Role:    user.Role,
			Landing: landingView(user.Role),
		})
	}
}

// LogoutHandler drops the user's cached session cart. The cart table is
// written on every mutation, so there is nothing left to save here.
func LogoutHandler(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		username, exists := c.Get("username")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Access denied. Please log in."})
			return
		}
		_ = utils.DeleteCache(context.Background(), rdb, utils.CartKey(username.(string)))
		c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
	}
}
