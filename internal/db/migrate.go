package db

import (
	"learnshop/internal/domain" // Importing domain models

	"gorm.io/gorm" // GORM ORM library
)

// Models lists every persisted entity in migration order
func Models() []any {
	return []any{
		&domain.User{},
		&domain.Course{},
		&domain.Chapter{},
		&domain.Lesson{},
		&domain.Enrollment{},
		&domain.LessonProgress{},
		&domain.Quiz{},
		&domain.Question{},
		&domain.QuizAttempt{},
		&domain.Product{},
		&domain.Review{},
		&domain.Order{},
		&domain.OrderItem{},
		&domain.GalleryItem{},
		&domain.Blog{},
		&domain.Contact{},
	}
}

// Migrate performs automatic migration for the database schema
func Migrate(db *gorm.DB) error {
	// AutoMigrate will create tables, missing foreign keys, constraints, columns and indexes
	return db.AutoMigrate(Models()...)
}
