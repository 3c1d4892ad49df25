package middleware

import (
	"net/http" // HTTP status codes
	"slices"   // Membership checks

	"learnshop/internal/domain" // Importing domain models
	"learnshop/internal/utils"  // Response envelope

	"github.com/gin-gonic/gin" // Gin web framework
	"gorm.io/gorm"             // GORM ORM library
)

// RequireRole checks the user's role from the database on each request
func RequireRole(db *gorm.DB, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := CurrentUserID(c) // Get userID from context
		if !ok {
			// If not, abort with unauthorized status
			utils.Fail(c, http.StatusUnauthorized, "Unauthorized")
			return
		}
		var user domain.User // Fetch user from database
		if err := db.WithContext(c.Request.Context()).First(&user, userID).Error; err != nil {
			// If user not found or any error, abort with forbidden status
			utils.Fail(c, http.StatusForbidden, "Access denied")
			return
		}
		// Stored role wins over the token claim
		if !slices.Contains(roles, user.Role) {
			utils.Fail(c, http.StatusForbidden, "Insufficient permissions")
			return
		}
		c.Set(UserRoleKey, user.Role)
		c.Next()
	}
}

// AdminOnlyMiddleware allows only administrators
func AdminOnlyMiddleware(db *gorm.DB) gin.HandlerFunc {
	return RequireRole(db, domain.RoleAdmin)
}
