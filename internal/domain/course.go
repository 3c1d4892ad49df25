package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Enrollment statuses
const (
	EnrollmentActive   = "active"
	EnrollmentInactive = "inactive"
)

// Course Model
type Course struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Slug        string    `gorm:"size:191;uniqueIndex;not null" json:"slug"`
	Description string    `gorm:"type:text" json:"description"`
	Thumbnail   string    `json:"thumbnail"`
	Price       float64   `gorm:"not null;default:0" json:"price"`
	IsPublished bool      `gorm:"default:false" json:"isPublished"`
	Chapters    []Chapter `gorm:"constraint:OnDelete:CASCADE;" json:"chapters,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Chapter groups lessons inside a course
type Chapter struct {
	ID       uint     `gorm:"primaryKey" json:"id"`
	CourseID uint     `gorm:"index;not null" json:"courseId"`
	Title    string   `gorm:"size:200;not null" json:"title"`
	Order    int      `gorm:"column:sort_order;default:0" json:"order"`
	Lessons  []Lesson `gorm:"constraint:OnDelete:CASCADE;" json:"lessons,omitempty"`
}

// Lesson Model
type Lesson struct {
	ID                 uint                      `gorm:"primaryKey" json:"id"`
	CourseID           uint                      `gorm:"index;not null" json:"courseId"`
	ChapterID          uint                      `gorm:"index;not null" json:"chapterId"`
	Title              string                    `gorm:"size:200;not null" json:"title"`
	Slug               string                    `gorm:"size:191;index" json:"slug"`
	Content            string                    `gorm:"type:text" json:"content,omitempty"`
	VideoURL           string                    `json:"videoUrl,omitempty"`
	Duration           int                       `gorm:"default:0" json:"duration"` // Seconds
	Order              int                       `gorm:"column:sort_order;default:0" json:"order"`
	IsPreview          bool                      `gorm:"default:false" json:"isPreview"`
	IsLocked           bool                      `gorm:"default:false" json:"isLocked"`
	UnlockRequirements datatypes.JSONSlice[uint] `json:"unlockRequirements"` // Lesson IDs that must be completed first
	CreatedAt          time.Time                 `json:"createdAt"`
	UpdatedAt          time.Time                 `json:"updatedAt"`
}

// Enrollment links a user to a course
type Enrollment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex:idx_enrollment_user_course;not null" json:"userId"`
	CourseID  uint      `gorm:"uniqueIndex:idx_enrollment_user_course;not null" json:"courseId"`
	Status    string    `gorm:"size:16;default:active;not null" json:"status"` // active or inactive
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// LessonProgress tracks a user's completion of a lesson
type LessonProgress struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"uniqueIndex:idx_progress_user_lesson;not null" json:"userId"`
	LessonID    uint       `gorm:"uniqueIndex:idx_progress_user_lesson;not null" json:"lessonId"`
	CourseID    uint       `gorm:"index;not null" json:"courseId"`
	IsCompleted bool       `gorm:"default:false" json:"isCompleted"`
	WatchTime   int        `gorm:"default:0" json:"watchTime"` // Seconds
	CompletedAt *time.Time `json:"completedAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// TableName keeps the progress table name singular
func (LessonProgress) TableName() string {
	return "lesson_progress"
}
