package middleware

import (
	"net/http" // HTTP status codes

	"flowcast/internal/domain" // Importing domain models

	"github.com/gin-gonic/gin" // Gin web framework
	"gorm.io/gorm"             // GORM ORM library
)

// RequireRole checks the user's stored role from the database on each
// request. A missing session or a role mismatch is a hard stop, never a
// redirect.
func RequireRole(db *gorm.DB, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		username, exists := c.Get("username") // Get username from context
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Access denied. Please log in."})
			return
		}
		var user domain.User // Fetch user from database
		if err := db.First(&user, "username = ?", username).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied. This page is for " + role + "s only."})
			return
		}
		if user.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied. This page is for " + role + "s only."})
			return
		}
		c.Next()
	}
}
