package api

import (
	"net/http" // HTTP status codes
	"strconv"  // String conversion

	"learnshop/internal/domain"     // Importing domain models
	"learnshop/internal/learning"   // Lesson access rules
	"learnshop/internal/middleware" // Auth context helpers
	"learnshop/internal/utils"      // Utility functions

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logrus for structured logging
	"gorm.io/datatypes"          // JSON columns
	"gorm.io/gorm"               // GORM ORM library
)

// lessonSummaryColumns are the lesson columns shown without access
var lessonSummaryColumns = []string{
	"lessons.id", "lessons.course_id", "lessons.chapter_id", "lessons.title", "lessons.slug",
	"lessons.duration", "lessons.sort_order", "lessons.is_preview", "lessons.is_locked",
	"lessons.unlock_requirements", "lessons.created_at", "lessons.updated_at",
}

// CourseRequest is the body for creating or replacing a course
type CourseRequest struct {
	Title       string   `json:"title" binding:"required,min=3,max=200"`
	Slug        string   `json:"slug" binding:"omitempty,max=180,slug"`
	Description string   `json:"description" binding:"max=20000"`
	Thumbnail   string   `json:"thumbnail" binding:"omitempty,max=500"`
	Price       *float64 `json:"price" binding:"omitempty,gte=0"`
	IsPublished bool     `json:"isPublished"`
}

// ChapterRequest is the body of POST /api/courses/:id/chapters
type ChapterRequest struct {
	Title string `json:"title" binding:"required,min=2,max=200"`
	Order int    `json:"order" binding:"gte=0"`
}

// LessonRequest is the body of POST /api/courses/:id/lessons
type LessonRequest struct {
	ChapterID          uint   `json:"chapterId" binding:"required"`
	Title              string `json:"title" binding:"required,min=2,max=200"`
	Slug               string `json:"slug" binding:"omitempty,max=180,slug"`
	Content            string `json:"content"`
	VideoURL           string `json:"videoUrl" binding:"omitempty,max=500"`
	Duration           int    `json:"duration" binding:"gte=0"`
	Order              int    `json:"order" binding:"gte=0"`
	IsPreview          bool   `json:"isPreview"`
	IsLocked           bool   `json:"isLocked"`
	UnlockRequirements []uint `json:"unlockRequirements" binding:"omitempty,max=50"`
}

// LessonUpdateRequest is the body of PUT /api/lessons/:id
type LessonUpdateRequest struct {
	ChapterID          *uint   `json:"chapterId"`
	Title              *string `json:"title" binding:"omitempty,min=2,max=200"`
	Slug               *string `json:"slug" binding:"omitempty,max=180,slug"`
	Content            *string `json:"content"`
	VideoURL           *string `json:"videoUrl" binding:"omitempty,max=500"`
	Duration           *int    `json:"duration" binding:"omitempty,gte=0"`
	Order              *int    `json:"order" binding:"omitempty,gte=0"`
	IsPreview          *bool   `json:"isPreview"`
	IsLocked           *bool   `json:"isLocked"`
	UnlockRequirements *[]uint `json:"unlockRequirements" binding:"omitempty,max=50"`
}

// LessonSummary is a lesson in a course listing with the caller's access
type LessonSummary struct {
	domain.Lesson
	IsAccessible bool   `json:"isAccessible"`
	IsCompleted  bool   `json:"isCompleted"`
	Reason       string `json:"reason"`
	Missing      []uint `json:"missingPrerequisites,omitempty"`
}

// LessonDetail is a lesson opened by the caller
type LessonDetail struct {
	Lesson   domain.Lesson          `json:"lesson"`
	Access   learning.Access        `json:"access"`
	Progress *domain.LessonProgress `json:"progress"`
}

// ListCoursesHandler returns a page of courses, published only for the public
func ListCoursesHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page := utils.ParsePagination(c)
		query := db.WithContext(c.Request.Context()).Model(&domain.Course{})
		if !middleware.IsAdmin(c) {
			query = query.Where("is_published = ?", true)
		}
		if search := c.Query("search"); search != "" {
			clause, args := utils.LikeClause(search, "title", "description")
			query = query.Where(clause, args...)
		}
		var courses []domain.Course
		total, err := findPage(query, page, "created_at desc, id desc", &courses)
		if err != nil {
			serverError(c, "list courses", err)
			return
		}
		utils.Paginated(c, courses, page.Result(total))
	}
}

// GetCourseHandler returns a course, by ID or slug, with its chapter outline
func GetCourseHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := db.WithContext(c.Request.Context()).
			Preload("Chapters", func(tx *gorm.DB) *gorm.DB {
				return tx.Order("sort_order asc, id asc")
			}).
			Preload("Chapters.Lessons", func(tx *gorm.DB) *gorm.DB {
				return tx.Select(lessonSummaryColumns).Order("sort_order asc, id asc") // Outline only
			})
		key := c.Param("id")
		if id, err := strconv.ParseUint(key, 10, 64); err == nil {
			query = query.Where("id = ?", id)
		} else {
			query = query.Where("slug = ?", key)
		}
		var course domain.Course
		if err := query.First(&course).Error; err != nil {
			if isNotFound(err) {
				utils.Fail(c, http.StatusNotFound, "Course not found")
				return
			}
			serverError(c, "load course", err)
			return
		}
		if !course.IsPublished && !middleware.IsAdmin(c) {
			utils.Fail(c, http.StatusNotFound, "Course not found")
			return
		}
		utils.OK(c, http.StatusOK, course, "")
	}
}

// CreateCourseHandler creates a course
func CreateCourseHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CourseRequest
		if !bindJSON(c, &req) {
			return
		}
		var course domain.Course
		applyCourse(&course, req)
		if course.Slug == "" {
			utils.ValidationFailed(c, []utils.FieldError{{Field: "slug", Message: "could not be derived from title"}})
			return
		}
		db := db.WithContext(c.Request.Context())
		taken, err := exists(db, &domain.Course{}, "slug = ?", course.Slug)
		if err != nil {
			serverError(c, "check course slug", err)
			return
		}
		if taken {
			utils.ValidationFailed(c, []utils.FieldError{{Field: "slug", Message: "is already in use"}})
			return
		}
		if err := db.Create(&course).Error; err != nil {
			serverError(c, "create course", err)
			return
		}
		logrus.WithField("course_id", course.ID).Info("Course created")
		utils.OK(c, http.StatusCreated, course, "Course created")
	}
}

// UpdateCourseHandler replaces the editable fields of a course
func UpdateCourseHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		course, ok := loadCourse(c, db)
		if !ok {
			return
		}
		var req CourseRequest
		if !bindJSON(c, &req) {
			return
		}
		applyCourse(&course, req)
		db := db.WithContext(c.Request.Context())
		taken, err := exists(db, &domain.Course{}, "slug = ? AND id <> ?", course.Slug, course.ID)
		if err != nil {
			serverError(c, "check course slug", err)
			return
		}
		if taken {
			utils.ValidationFailed(c, []utils.FieldError{{Field: "slug", Message: "is already in use"}})
			return
		}
		if err := db.Save(&course).Error; err != nil {
			serverError(c, "update course", err)
			return
		}
		utils.OK(c, http.StatusOK, course, "Course updated")
	}
}

// CreateChapterHandler adds a chapter to a course
func CreateChapterHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		course, ok := loadCourse(c, db)
		if !ok {
			return
		}
		var req ChapterRequest
		if !bindJSON(c, &req) {
			return
		}
		chapter := domain.Chapter{CourseID: course.ID, Title: utils.SanitizeLine(req.Title), Order: req.Order}
		if err := db.WithContext(c.Request.Context()).Create(&chapter).Error; err != nil {
			serverError(c, "create chapter", err)
			return
		}
		utils.OK(c, http.StatusCreated, chapter, "Chapter created")
	}
}

// CreateLessonHandler adds a lesson to a chapter of the course
func CreateLessonHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		course, ok := loadCourse(c, db)
		if !ok {
			return
		}
		var req LessonRequest
		if !bindJSON(c, &req) {
			return
		}
		lesson := domain.Lesson{
			CourseID:           course.ID,
			ChapterID:          req.ChapterID,
			Title:              utils.SanitizeLine(req.Title),
			Slug:               req.Slug,
			Content:            req.Content,
			VideoURL:           req.VideoURL,
			Duration:           req.Duration,
			Order:              req.Order,
			IsPreview:          req.IsPreview,
			IsLocked:           req.IsLocked,
			UnlockRequirements: dedupeIDs(req.UnlockRequirements),
		}
		if lesson.Slug == "" {
			lesson.Slug = utils.Slugify(lesson.Title)
		}
		db := db.WithContext(c.Request.Context())
		if errs, err := lessonReferenceErrors(db, lesson); err != nil {
			serverError(c, "check lesson references", err)
			return
		} else if len(errs) > 0 {
			utils.ValidationFailed(c, errs)
			return
		}
		if err := db.Create(&lesson).Error; err != nil {
			serverError(c, "create lesson", err)
			return
		}
		logrus.WithFields(logrus.Fields{
			"course_id": course.ID, // Course ID
			"lesson_id": lesson.ID, // Lesson ID
		}).Info("Lesson created")
		utils.OK(c, http.StatusCreated, lesson, "Lesson created")
	}
}

// UpdateLessonHandler applies a partial update to a lesson
func UpdateLessonHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		lesson, ok := loadLesson(c, db)
		if !ok {
			return
		}
		var req LessonUpdateRequest
		if !bindJSON(c, &req) {
			return
		}
		if req.ChapterID != nil {
			lesson.ChapterID = *req.ChapterID
		}
		if req.Title != nil {
			lesson.Title = utils.SanitizeLine(*req.Title)
		}
		if req.Slug != nil {
			lesson.Slug = *req.Slug
		}
		if req.Content != nil {
			lesson.Content = *req.Content
		}
		if req.VideoURL != nil {
			lesson.VideoURL = *req.VideoURL
		}
		if req.Duration != nil {
			lesson.Duration = *req.Duration
		}
		if req.Order != nil {
			lesson.Order = *req.Order
		}
		if req.IsPreview != nil {
			lesson.IsPreview = *req.IsPreview
		}
		if req.IsLocked != nil {
			lesson.IsLocked = *req.IsLocked
		}
		if req.UnlockRequirements != nil {
			lesson.UnlockRequirements = dedupeIDs(*req.UnlockRequirements)
		}
		db := db.WithContext(c.Request.Context())
		if errs, err := lessonReferenceErrors(db, lesson); err != nil {
			serverError(c, "check lesson references", err)
			return
		} else if len(errs) > 0 {
			utils.ValidationFailed(c, errs)
			return
		}
		if err := db.Save(&lesson).Error; err != nil {
			serverError(c, "update lesson", err)
			return
		}
		utils.OK(c, http.StatusOK, lesson, "Lesson updated")
	}
}

// DeleteLessonHandler removes a lesson with its progress and prerequisite references
func DeleteLessonHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		lesson, ok := loadLesson(c, db)
		if !ok {
			return
		}
		err := db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("lesson_id = ?", lesson.ID).Delete(&domain.LessonProgress{}).Error; err != nil {
				return err // Return error to rollback
			}
			if err := tx.Model(&domain.Quiz{}).Where("lesson_id = ?", lesson.ID).Update("lesson_id", nil).Error; err != nil {
				return err
			}
			// Drop the lesson from other lessons' prerequisites
			var siblings []domain.Lesson
			if err := tx.Where("course_id = ? AND id <> ?", lesson.CourseID, lesson.ID).Find(&siblings).Error; err != nil {
				return err
			}
			for _, s := range siblings {
				kept := removeID(s.UnlockRequirements, lesson.ID)
				if len(kept) == len(s.UnlockRequirements) {
					continue
				}
				if err := tx.Model(&s).Update("unlock_requirements", datatypes.JSONSlice[uint](kept)).Error; err != nil {
					return err
				}
			}
			return tx.Delete(&lesson).Error
		})
		if err != nil {
			serverError(c, "delete lesson", err)
			return
		}
		logrus.WithField("lesson_id", lesson.ID).Info("Lesson deleted")
		utils.OK(c, http.StatusOK, nil, "Lesson deleted")
	}
}

// EnrollHandler activates the caller's enrollment in a course
func EnrollHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		course, ok := loadCourse(c, db)
		if !ok {
			return
		}
		if !course.IsPublished && !middleware.IsAdmin(c) {
			utils.Fail(c, http.StatusNotFound, "Course not found")
			return
		}
		userID, _ := middleware.CurrentUserID(c)
		db := db.WithContext(c.Request.Context())
		var enrollment domain.Enrollment
		err := db.Where("user_id = ? AND course_id = ?", userID, course.ID).First(&enrollment).Error
		switch {
		case err == nil && enrollment.Status == domain.EnrollmentActive:
			utils.OK(c, http.StatusOK, enrollment, "Already enrolled")
			return
		case err == nil:
			// Reactivate a previous enrollment
			enrollment.Status = domain.EnrollmentActive
			if err := db.Save(&enrollment).Error; err != nil {
				serverError(c, "reactivate enrollment", err)
				return
			}
		case isNotFound(err):
			enrollment = domain.Enrollment{UserID: userID, CourseID: course.ID, Status: domain.EnrollmentActive}
			if err := db.Create(&enrollment).Error; err != nil {
				serverError(c, "create enrollment", err)
				return
			}
		default:
			serverError(c, "load enrollment", err)
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id":   userID,    // User ID
			"course_id": course.ID, // Course ID
		}).Info("User enrolled")
		utils.OK(c, http.StatusCreated, enrollment, "Enrolled successfully")
	}
}

// ListCourseLessonsHandler returns the ordered lessons of a course with the caller's access
func ListCourseLessonsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		course, ok := loadCourse(c, db)
		if !ok {
			return
		}
		if !course.IsPublished && !middleware.IsAdmin(c) {
			utils.Fail(c, http.StatusNotFound, "Course not found")
			return
		}
		var lessons []domain.Lesson
		if err := db.WithContext(c.Request.Context()).
			Select(lessonSummaryColumns).
			Joins("JOIN chapters ON chapters.id = lessons.chapter_id").
			Where("lessons.course_id = ?", course.ID).
			Order("chapters.sort_order asc, chapters.id asc, lessons.sort_order asc, lessons.id asc").
			Find(&lessons).Error; err != nil {
			serverError(c, "list lessons", err)
			return
		}
		l, err := loadLearner(c, db, course.ID)
		if err != nil {
			serverError(c, "load learner", err)
			return
		}
		out := make([]LessonSummary, 0, len(lessons))
		for _, lesson := range lessons {
			a := l.access(lesson)
			out = append(out, LessonSummary{
				Lesson:       lesson,
				IsAccessible: a.Accessible,
				IsCompleted:  l.completed[lesson.ID],
				Reason:       a.Reason,
				Missing:      a.Missing,
			})
		}
		utils.OK(c, http.StatusOK, out, "")
	}
}

// GetLessonHandler opens a lesson when the caller may access it
func GetLessonHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		lesson, ok := loadLesson(c, db)
		if !ok {
			return
		}
		db := db.WithContext(c.Request.Context())
		if !middleware.IsAdmin(c) {
			published, err := exists(db, &domain.Course{}, "id = ? AND is_published = ?", lesson.CourseID, true)
			if err != nil {
				serverError(c, "load course", err)
				return
			}
			if !published {
				utils.Fail(c, http.StatusNotFound, "Lesson not found")
				return
			}
		}
		access, _, err := lessonAccess(c, db, lesson)
		if err != nil {
			serverError(c, "check lesson access", err)
			return
		}
		if !access.Accessible {
			utils.FailWithData(c, http.StatusForbidden, access.Message(), access)
			return
		}
		detail := LessonDetail{Lesson: lesson, Access: access}
		if userID, ok := middleware.CurrentUserID(c); ok {
			var progress domain.LessonProgress
			err := db.Where("user_id = ? AND lesson_id = ?", userID, lesson.ID).First(&progress).Error
			if err == nil {
				detail.Progress = &progress
			} else if !isNotFound(err) {
				serverError(c, "load progress", err)
				return
			}
		}
		utils.OK(c, http.StatusOK, detail, "")
	}
}

func loadCourse(c *gin.Context, db *gorm.DB) (domain.Course, bool) {
	var course domain.Course
	id, ok := pathID(c, "Course")
	if !ok {
		return course, false
	}
	if err := db.WithContext(c.Request.Context()).First(&course, id).Error; err != nil {
		if isNotFound(err) {
			utils.Fail(c, http.StatusNotFound, "Course not found")
			return course, false
		}
		serverError(c, "load course", err)
		return course, false
	}
	return course, true
}

func loadLesson(c *gin.Context, db *gorm.DB) (domain.Lesson, bool) {
	var lesson domain.Lesson
	id, ok := pathID(c, "Lesson")
	if !ok {
		return lesson, false
	}
	if err := db.WithContext(c.Request.Context()).First(&lesson, id).Error; err != nil {
		if isNotFound(err) {
			utils.Fail(c, http.StatusNotFound, "Lesson not found")
			return lesson, false
		}
		serverError(c, "load lesson", err)
		return lesson, false
	}
	return lesson, true
}

func applyCourse(course *domain.Course, req CourseRequest) {
	course.Title = utils.SanitizeLine(req.Title)
	course.Slug = req.Slug
	if course.Slug == "" {
		course.Slug = utils.Slugify(course.Title)
	}
	course.Description = utils.SanitizeText(req.Description)
	course.Thumbnail = req.Thumbnail
	if req.Price != nil {
		course.Price = *req.Price
	}
	course.IsPublished = req.IsPublished
}

// lessonReferenceErrors checks the chapter and prerequisites belong to the lesson's course
func lessonReferenceErrors(db *gorm.DB, lesson domain.Lesson) ([]utils.FieldError, error) {
	var errs []utils.FieldError
	ok, err := exists(db, &domain.Chapter{}, "id = ? AND course_id = ?", lesson.ChapterID, lesson.CourseID)
	if err != nil {
		return nil, err
	}
	if !ok {
		errs = append(errs, utils.FieldError{Field: "chapterId", Message: "must be a chapter of this course"})
	}
	if len(lesson.UnlockRequirements) == 0 {
		return errs, nil
	}
	for _, id := range lesson.UnlockRequirements {
		if id == lesson.ID && id != 0 {
			return append(errs, utils.FieldError{Field: "unlockRequirements", Message: "cannot include the lesson itself"}), nil
		}
	}
	var n int64
	if err := db.Model(&domain.Lesson{}).
		Where("course_id = ? AND id IN ?", lesson.CourseID, []uint(lesson.UnlockRequirements)).
		Count(&n).Error; err != nil {
		return nil, err
	}
	if int(n) != len(lesson.UnlockRequirements) {
		errs = append(errs, utils.FieldError{Field: "unlockRequirements", Message: "must reference lessons of this course"})
	}
	return errs, nil
}

func dedupeIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func removeID(ids []uint, target uint) []uint {
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}
