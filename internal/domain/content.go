package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Gallery statuses
const (
	GalleryActive   = "active"
	GalleryInactive = "inactive"
)

// Blog statuses
const (
	BlogDraft     = "draft"
	BlogPublished = "published"
	BlogArchived  = "archived"
)

// Contact statuses
const (
	ContactNew      = "new"
	ContactRead     = "read"
	ContactReplied  = "replied"
	ContactArchived = "archived"
)

// GalleryItem Model
type GalleryItem struct {
	ID           uint                        `gorm:"primaryKey" json:"id"`
	Title        string                      `gorm:"size:200;not null" json:"title"`
	Description  string                      `gorm:"type:text" json:"description"`
	ImageURL     string                      `gorm:"not null" json:"imageUrl"`
	Category     string                      `gorm:"size:100;index" json:"category"`
	Tags         datatypes.JSONSlice[string] `json:"tags"`
	Status       string                      `gorm:"size:16;default:active;not null" json:"status"`
	UploadedByID uint                        `gorm:"index" json:"uploadedBy"`
	CreatedAt    time.Time                   `json:"createdAt"`
	UpdatedAt    time.Time                   `json:"updatedAt"`
}

// Blog Model
type Blog struct {
	ID          uint                        `gorm:"primaryKey" json:"id"`
	Title       string                      `gorm:"size:200;not null" json:"title"`
	Slug        string                      `gorm:"size:191;uniqueIndex;not null" json:"slug"`
	Excerpt     string                      `gorm:"size:500" json:"excerpt"`
	Content     string                      `gorm:"type:text;not null" json:"content"`
	CoverImage  string                      `json:"coverImage"`
	Tags        datatypes.JSONSlice[string] `json:"tags"`
	Status      string                      `gorm:"size:16;default:draft;not null" json:"status"`
	AuthorID    uint                        `gorm:"index;not null" json:"authorId"`
	Author      *PublicUser                 `json:"author,omitempty"`
	PublishedAt *time.Time                  `json:"publishedAt"`
	ViewCount   int                         `gorm:"default:0" json:"viewCount"`
	CreatedAt   time.Time                   `json:"createdAt"`
	UpdatedAt   time.Time                   `json:"updatedAt"`
}

// Contact is a contact form submission
type Contact struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Email     string    `gorm:"size:191;not null" json:"email"`
	Phone     string    `gorm:"size:32" json:"phone"`
	Subject   string    `gorm:"size:200;not null" json:"subject"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Status    string    `gorm:"size:16;default:new;not null;index" json:"status"`
	IPAddress string    `gorm:"size:64" json:"ipAddress"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
