package api

import (
	"net/http" // HTTP status codes
	"strings"  // String manipulation
	"time"     // Token lifetime

	"learnshop/internal/domain"     // Importing domain models
	"learnshop/internal/middleware" // Auth context helpers
	"learnshop/internal/utils"      // Utility functions

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logrus for structured logging
	"golang.org/x/crypto/bcrypt" // Password hashing
	"gorm.io/gorm"               // GORM ORM library
)

// RegisterRequest is the body of POST /api/auth/register
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`    // Display name
	Email    string `json:"email" binding:"required,email,max=191"`   // Login email
	Password string `json:"password" binding:"required,min=8,max=72"` // bcrypt ignores bytes past 72
}

// LoginRequest is the body of POST /api/auth/login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"` // Login email
	Password string `json:"password" binding:"required"`    // Plain password
}

// AuthResponse carries the issued token and the user
type AuthResponse struct {
	Token string      `json:"token"` // JWT token
	User  domain.User `json:"user"`  // Authenticated user
}

// RegisterHandler creates a USER account and returns a token
func RegisterHandler(db *gorm.DB, jwtSecret string, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if !bindJSON(c, &req) {
			return
		}
		email := strings.ToLower(strings.TrimSpace(req.Email)) // Emails are unique case-insensitively
		// Reject duplicates before hashing
		taken, err := exists(db.WithContext(c.Request.Context()), &domain.User{}, "email = ?", email)
		if err != nil {
			serverError(c, "check email", err)
			return
		}
		if taken {
			utils.ValidationFailed(c, []utils.FieldError{{Field: "email", Message: "is already registered"}})
			return
		}
		// Hash the password and create the user
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			serverError(c, "hash password", err)
			return
		}
		user := domain.User{Name: utils.SanitizeLine(req.Name), Email: email, Password: string(hash), Role: domain.RoleUser}
		if err := db.WithContext(c.Request.Context()).Create(&user).Error; err != nil {
			serverError(c, "create user", err)
			return
		}
		token, err := utils.GenerateJWT(user.ID, user.Role, jwtSecret, ttl) // Issue token right away
		if err != nil {
			serverError(c, "generate token", err)
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id": user.ID, // User ID
			"type":    "register",
		}).Info("User registered")
		utils.OK(c, http.StatusCreated, AuthResponse{Token: token, User: user}, "User registered successfully")
	}
}

// LoginHandler authenticates a user and returns a JWT token
func LoginHandler(db *gorm.DB, jwtSecret string, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if !bindJSON(c, &req) {
			return
		}
		var user domain.User // Fetch user from database
		if err := db.WithContext(c.Request.Context()).Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&user).Error; err != nil {
			if !isNotFound(err) {
				serverError(c, "load user", err)
				return
			}
			// If user not found, return unauthorized
			utils.Fail(c, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		// Compare provided password with stored hash
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
			utils.Fail(c, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		// Generate JWT token
		token, err := utils.GenerateJWT(user.ID, user.Role, jwtSecret, ttl)
		if err != nil {
			serverError(c, "generate token", err)
			return
		}
		utils.OK(c, http.StatusOK, AuthResponse{Token: token, User: user}, "Login successful")
	}
}

// MeHandler returns the authenticated user
func MeHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _ := middleware.CurrentUserID(c)
		var user domain.User
		if err := db.WithContext(c.Request.Context()).First(&user, userID).Error; err != nil {
			if isNotFound(err) {
				utils.Fail(c, http.StatusNotFound, "User not found")
				return
			}
			serverError(c, "load user", err)
			return
		}
		utils.OK(c, http.StatusOK, user, "")
	}
}
