package api

import (
	"learnshop/internal/domain"     // Importing domain models
	"learnshop/internal/learning"   // Lesson access rules
	"learnshop/internal/middleware" // Auth context helpers

	"github.com/gin-gonic/gin" // Gin web framework
	"gorm.io/gorm"             // GORM ORM library
)

// learner is what access decisions need to know about the caller in one course
type learner struct {
	admin     bool
	enrolled  bool
	completed map[uint]bool // Completed lesson IDs
}

// loadLearner reads the caller's enrollment and completed lessons for a course
func loadLearner(c *gin.Context, db *gorm.DB, courseID uint) (learner, error) {
	l := learner{admin: middleware.IsAdmin(c), completed: map[uint]bool{}}
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return l, nil // Anonymous callers only see previews
	}
	db = db.WithContext(c.Request.Context())
	enrolled, err := exists(db, &domain.Enrollment{}, "user_id = ? AND course_id = ? AND status = ?", userID, courseID, domain.EnrollmentActive)
	if err != nil {
		return l, err
	}
	l.enrolled = enrolled

	var ids []uint
	if err := db.Model(&domain.LessonProgress{}).
		Where("user_id = ? AND course_id = ? AND is_completed = ?", userID, courseID, true).
		Pluck("lesson_id", &ids).Error; err != nil {
		return l, err
	}
	for _, id := range ids {
		l.completed[id] = true
	}
	return l, nil
}

// access evaluates one lesson for the learner
func (l learner) access(lesson domain.Lesson) learning.Access {
	if l.admin {
		return learning.Bypass()
	}
	return learning.CheckAccess(lesson, l.enrolled, l.completed)
}

// lessonAccess loads the learner state and evaluates a single lesson
func lessonAccess(c *gin.Context, db *gorm.DB, lesson domain.Lesson) (learning.Access, learner, error) {
	l, err := loadLearner(c, db, lesson.CourseID)
	if err != nil {
		return learning.Access{}, l, err
	}
	return l.access(lesson), l, nil
}
