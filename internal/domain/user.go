package domain

import "time"

// Roles
const (
	RoleUser  = "USER"  // Regular customer / student
	RoleAdmin = "ADMIN" // Platform administrator
)

// User Model
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`                       // Primary key
	Name      string    `gorm:"size:100;not null" json:"name"`              // Display name
	Email     string    `gorm:"size:191;uniqueIndex;not null" json:"email"` // Unique email
	Password  string    `gorm:"not null" json:"-"`                          // Hashed password
	Role      string    `gorm:"size:16;default:USER;not null" json:"role"`  // Role: USER or ADMIN
	CreatedAt time.Time `json:"createdAt"`                                  // Creation time
	UpdatedAt time.Time `json:"updatedAt"`                                  // Last update time
}

// IsAdmin reports whether the user holds the admin role
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// PublicUser is the subset of a user shown next to reviews and posts
type PublicUser struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// TableName maps PublicUser onto the users table
func (PublicUser) TableName() string { return "users" }
