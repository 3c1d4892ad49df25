// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"learnshop/internal/config"
	"learnshop/internal/db"
	"learnshop/internal/domain"
	"learnshop/internal/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// JWTSecret signs tokens issued by test fixtures
const JWTSecret = "test-secret-0123456789"

// NewTestDB opens a fresh, migrated in-memory SQLite database
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gdb, err := db.Open(&config.Config{DBDriver: config.DriverSQLite, DBDSN: name})
	require.NoError(t, err, "Failed to create database connection")
	gdb.Logger = logger.Discard
	require.NoError(t, db.Migrate(gdb), "Failed to migrate test database")

	t.Cleanup(func() {
		_ = db.Close(gdb)
	})
	return gdb
}

// CreateUser inserts a user with the given role
func CreateUser(t *testing.T, gdb *gorm.DB, email, role string) domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	user := domain.User{Name: "Test " + role, Email: email, Password: string(hash), Role: role}
	require.NoError(t, gdb.Create(&user).Error)
	return user
}

// Token issues a bearer token for the user
func Token(t *testing.T, user domain.User) string {
	t.Helper()
	token, err := utils.GenerateJWT(user.ID, user.Role, JWTSecret, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}
