package db

import (
	"errors"  // Error matching
	"fmt"     // Error wrapping
	"strings" // String manipulation

	"learnshop/internal/domain" // Importing domain models

	"github.com/sirupsen/logrus" // Logrus for structured logging
	"golang.org/x/crypto/bcrypt" // Password hashing
	"gorm.io/gorm"               // GORM ORM library
)

// EnsureAdmin creates an ADMIN account, or promotes and resets an existing user with that email
func EnsureAdmin(db *gorm.DB, name, email, password string) (domain.User, error) {
	var user domain.User
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || len(password) < 8 {
		return user, errors.New("email and a password of at least 8 characters are required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return user, fmt.Errorf("hash password: %w", err)
	}

	err = db.Where("email = ?", email).First(&user).Error
	switch {
	case err == nil:
		user.Role = domain.RoleAdmin
		user.Password = string(hash)
		if name != "" {
			user.Name = name
		}
		err = db.Save(&user).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		if name == "" {
			name = "Administrator"
		}
		user = domain.User{Name: name, Email: email, Password: string(hash), Role: domain.RoleAdmin}
		err = db.Create(&user).Error
	}
	if err != nil {
		return user, fmt.Errorf("save admin: %w", err)
	}
	logrus.WithFields(logrus.Fields{
		"user_id": user.ID, // User ID
		"email":   email,   // Admin email
	}).Info("Admin account ready")
	return user, nil
}
