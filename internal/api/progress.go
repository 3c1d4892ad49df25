package api

import (
	"net/http" // HTTP status codes
	"time"     // Completion timestamps

	"learnshop/internal/domain"     // Importing domain models
	"learnshop/internal/learning"   // Completion percentage
	"learnshop/internal/middleware" // Auth context helpers
	"learnshop/internal/utils"      // Utility functions

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logrus for structured logging
	"gorm.io/gorm"               // GORM ORM library
)

// WatchTimeRequest is the body of PUT /api/progress/lessons/:id
type WatchTimeRequest struct {
	WatchTime *int `json:"watchTime" binding:"required,gte=0"` // Seconds watched
}

// CourseProgress summarizes a user's progress in one course
type CourseProgress struct {
	CourseID         uint    `json:"courseId"`
	IsEnrolled       bool    `json:"isEnrolled"`
	CompletedLessons []uint  `json:"completedLessons"`
	CompletedCount   int     `json:"completedCount"`
	TotalLessons     int     `json:"totalLessons"`
	Percentage       float64 `json:"percentage"`
	TotalWatchTime   int     `json:"totalWatchTime"` // Seconds
}

// CompleteLessonHandler marks an accessible lesson as completed
func CompleteLessonHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		lesson, progress, ok := accessibleProgress(c, db)
		if !ok {
			return
		}
		if !progress.IsCompleted {
			now := time.Now()
			progress.IsCompleted = true
			progress.CompletedAt = &now
		}
		if err := db.WithContext(c.Request.Context()).Save(&progress).Error; err != nil {
			serverError(c, "save progress", err)
			return
		}
		summary, err := courseProgress(c, db, progress.UserID, lesson.CourseID)
		if err != nil {
			serverError(c, "load course progress", err)
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id":   progress.UserID, // User ID
			"lesson_id": lesson.ID,       // Lesson ID
		}).Info("Lesson completed")
		utils.OK(c, http.StatusOK, gin.H{"progress": progress, "course": summary}, "Lesson completed")
	}
}

// UpdateWatchTimeHandler records how long the caller has watched a lesson
func UpdateWatchTimeHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req WatchTimeRequest
		if !bindJSON(c, &req) {
			return
		}
		_, progress, ok := accessibleProgress(c, db)
		if !ok {
			return
		}
		progress.WatchTime = *req.WatchTime
		if err := db.WithContext(c.Request.Context()).Save(&progress).Error; err != nil {
			serverError(c, "save progress", err)
			return
		}
		utils.OK(c, http.StatusOK, progress, "Progress updated")
	}
}

// GetCourseProgressHandler returns the caller's progress in a course
func GetCourseProgressHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		course, ok := loadCourse(c, db)
		if !ok {
			return
		}
		userID, _ := middleware.CurrentUserID(c)
		summary, err := courseProgress(c, db, userID, course.ID)
		if err != nil {
			serverError(c, "load course progress", err)
			return
		}
		utils.OK(c, http.StatusOK, summary, "")
	}
}

// ResetCourseProgressHandler clears the caller's progress in a course
func ResetCourseProgressHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		course, ok := loadCourse(c, db)
		if !ok {
			return
		}
		userID, _ := middleware.CurrentUserID(c)
		res := db.WithContext(c.Request.Context()).
			Where("user_id = ? AND course_id = ?", userID, course.ID).
			Delete(&domain.LessonProgress{})
		if res.Error != nil {
			serverError(c, "reset progress", res.Error)
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id":   userID,           // User ID
			"course_id": course.ID,        // Course ID
			"removed":   res.RowsAffected, // Progress rows removed
		}).Info("Course progress reset")
		utils.OK(c, http.StatusOK, nil, "Progress reset")
	}
}

// accessibleProgress loads the lesson, checks access and returns the caller's progress row
func accessibleProgress(c *gin.Context, db *gorm.DB) (domain.Lesson, domain.LessonProgress, bool) {
	var progress domain.LessonProgress
	lesson, ok := loadLesson(c, db)
	if !ok {
		return lesson, progress, false
	}
	access, _, err := lessonAccess(c, db, lesson)
	if err != nil {
		serverError(c, "check lesson access", err)
		return lesson, progress, false
	}
	if !access.Accessible {
		utils.FailWithData(c, http.StatusForbidden, access.Message(), access)
		return lesson, progress, false
	}
	userID, _ := middleware.CurrentUserID(c)
	err = db.WithContext(c.Request.Context()).
		Where(domain.LessonProgress{UserID: userID, LessonID: lesson.ID}).
		Attrs(domain.LessonProgress{CourseID: lesson.CourseID}).
		FirstOrInit(&progress).Error
	if err != nil {
		serverError(c, "load progress", err)
		return lesson, progress, false
	}
	return lesson, progress, true
}

// courseProgress counts completed lessons against the lessons the course still has
func courseProgress(c *gin.Context, db *gorm.DB, userID, courseID uint) (CourseProgress, error) {
	db = db.WithContext(c.Request.Context())
	summary := CourseProgress{CourseID: courseID, CompletedLessons: []uint{}}

	var total int64
	if err := db.Model(&domain.Lesson{}).Where("course_id = ?", courseID).Count(&total).Error; err != nil {
		return summary, err
	}
	summary.TotalLessons = int(total)

	var rows []domain.LessonProgress
	if err := db.Joins("JOIN lessons ON lessons.id = lesson_progress.lesson_id").
		Where("lesson_progress.user_id = ? AND lesson_progress.course_id = ?", userID, courseID).
		Find(&rows).Error; err != nil {
		return summary, err
	}
	for _, p := range rows {
		summary.TotalWatchTime += p.WatchTime
		if p.IsCompleted {
			summary.CompletedLessons = append(summary.CompletedLessons, p.LessonID)
		}
	}
	summary.CompletedCount = len(summary.CompletedLessons)
	summary.Percentage = learning.CompletionPercentage(summary.CompletedCount, summary.TotalLessons)

	enrolled, err := exists(db, &domain.Enrollment{}, "user_id = ? AND course_id = ? AND status = ?", userID, courseID, domain.EnrollmentActive)
	if err != nil {
		return summary, err
	}
	summary.IsEnrolled = enrolled
	return summary, nil
}
