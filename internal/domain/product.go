package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Order statuses
const (
	OrderPending   = "pending"
	OrderPaid      = "paid"
	OrderShipped   = "shipped"
	OrderDelivered = "delivered"
	OrderCancelled = "cancelled"
)

// Product Model
type Product struct {
	ID            uint                        `gorm:"primaryKey" json:"id"`
	Name          string                      `gorm:"size:200;not null" json:"name"`
	Slug          string                      `gorm:"size:191;uniqueIndex;not null" json:"slug"`          // Unique slug
	SKU           string                      `gorm:"column:sku;size:64;uniqueIndex;not null" json:"sku"` // Unique stock keeping unit
	Description   string                      `gorm:"type:text" json:"description"`
	Price         float64                     `gorm:"not null" json:"price"`
	ComparePrice  *float64                    `json:"comparePrice,omitempty"`
	Stock         int                         `gorm:"not null;default:0" json:"stock"`
	Category      string                      `gorm:"size:100;index" json:"category"`
	Images        datatypes.JSONSlice[string] `json:"images"`
	IsActive      bool                        `gorm:"not null;index" json:"isActive"`
	AverageRating float64                     `gorm:"default:0" json:"averageRating"`
	ReviewCount   int                         `gorm:"default:0" json:"reviewCount"`
	Reviews       []Review                    `gorm:"constraint:OnDelete:CASCADE;" json:"reviews,omitempty"`
	CreatedAt     time.Time                   `json:"createdAt"`
	UpdatedAt     time.Time                   `json:"updatedAt"`
}

// Review Model, one per user per product
type Review struct {
	ID                 uint        `gorm:"primaryKey" json:"id"`
	ProductID          uint        `gorm:"uniqueIndex:idx_review_user_product;not null" json:"productId"`
	UserID             uint        `gorm:"uniqueIndex:idx_review_user_product;not null" json:"userId"`
	User               *PublicUser `json:"user,omitempty"`
	Rating             int         `gorm:"not null" json:"rating"` // 1..5
	Title              string      `gorm:"size:200" json:"title"`
	Comment            string      `gorm:"type:text" json:"comment"`
	IsVerifiedPurchase bool        `gorm:"default:false" json:"isVerifiedPurchase"`
	CreatedAt          time.Time   `json:"createdAt"`
	UpdatedAt          time.Time   `json:"updatedAt"`
}

// Order Model
type Order struct {
	ID              uint        `gorm:"primaryKey" json:"id"`
	UserID          uint        `gorm:"index;not null" json:"userId"`
	Status          string      `gorm:"size:16;default:pending;not null" json:"status"`
	Total           float64     `gorm:"not null" json:"total"`
	ShippingAddress string      `gorm:"type:text" json:"shippingAddress"`
	Items           []OrderItem `gorm:"constraint:OnDelete:CASCADE;" json:"items"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

// OrderItem is one line of an order
type OrderItem struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	OrderID   uint    `gorm:"index;not null" json:"orderId"`
	ProductID uint    `gorm:"index;not null" json:"productId"`
	Quantity  int     `gorm:"not null" json:"quantity"`
	UnitPrice float64 `gorm:"not null" json:"unitPrice"`
}
