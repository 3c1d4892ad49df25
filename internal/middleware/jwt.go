package middleware

import (
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"learnshop/internal/domain" // Roles
	"learnshop/internal/utils"  // JWT utility functions

	"github.com/gin-gonic/gin" // Gin web framework
)

// Context keys set by the auth middleware
const (
	UserIDKey   = "userID"   // uint
	UserRoleKey = "userRole" // string
)

// JWTAuthMiddleware validates JWT tokens and extracts user information
func JWTAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, ok := bearerToken(c) // Extract the token string
		if !ok {
			// If not, abort with unauthorized status
			utils.Fail(c, http.StatusUnauthorized, "Missing or invalid Authorization header")
			return
		}
		claims, err := utils.ParseJWT(tokenStr, secret) // Parse the JWT token
		if err != nil {
			// If parsing fails, abort with unauthorized status
			utils.Fail(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		c.Set(UserIDKey, claims.UserID) // Store userID in context
		c.Set(UserRoleKey, claims.Role) // Store role in context
		c.Next()                        // Proceed to the next handler
	}
}

// OptionalAuth attaches the user when a valid token is sent and never rejects
func OptionalAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenStr, ok := bearerToken(c); ok {
			if claims, err := utils.ParseJWT(tokenStr, secret); err == nil {
				c.Set(UserIDKey, claims.UserID)
				c.Set(UserRoleKey, claims.Role)
			}
		}
		c.Next()
	}
}

// CurrentUserID returns the authenticated user's ID, if any
func CurrentUserID(c *gin.Context) (uint, bool) {
	v, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok && id != 0
}

// IsAdmin reports whether the request carries the admin role
func IsAdmin(c *gin.Context) bool {
	return c.GetString(UserRoleKey) == domain.RoleAdmin
}

// CanModify reports whether the requester owns the resource or is an admin
func CanModify(c *gin.Context, ownerID uint) bool {
	if IsAdmin(c) {
		return true
	}
	userID, ok := CurrentUserID(c)
	return ok && userID == ownerID
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization") // Get Authorization header
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	return token, token != ""
}
