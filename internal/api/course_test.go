package api

import (
	"net/http"
	"testing"

	"learnshop/internal/domain"
	"learnshop/internal/learning"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// courseFixture is a published course with one chapter:
// intro is a preview, basics is plain, advanced requires basics, bonus is locked.
type courseFixture struct {
	course   domain.Course
	chapter  domain.Chapter
	intro    domain.Lesson
	basics   domain.Lesson
	advanced domain.Lesson
	bonus    domain.Lesson
}

func seedCourse(t *testing.T, s *testServer) courseFixture {
	t.Helper()
	f := courseFixture{course: domain.Course{Title: "Go Basics", Slug: "go-basics", IsPublished: true}}
	require.NoError(t, s.db.Create(&f.course).Error)
	f.chapter = domain.Chapter{CourseID: f.course.ID, Title: "Start", Order: 1}
	require.NoError(t, s.db.Create(&f.chapter).Error)

	lesson := func(title string, order int, mut func(*domain.Lesson)) domain.Lesson {
		l := domain.Lesson{CourseID: f.course.ID, ChapterID: f.chapter.ID, Title: title, Content: title + " content", Order: order}
		if mut != nil {
			mut(&l)
		}
		require.NoError(t, s.db.Create(&l).Error)
		return l
	}
	f.intro = lesson("Intro", 1, func(l *domain.Lesson) { l.IsPreview = true })
	f.basics = lesson("Basics", 2, nil)
	f.advanced = lesson("Advanced", 3, func(l *domain.Lesson) { l.UnlockRequirements = []uint{f.basics.ID} })
	f.bonus = lesson("Bonus", 4, func(l *domain.Lesson) { l.IsLocked = true })
	return f
}

func enroll(t *testing.T, s *testServer, courseID uint) {
	t.Helper()
	w := s.do(http.MethodPost, "/api/courses/"+itoa(courseID)+"/enroll", s.userToken(), nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestCourseCRUD(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/courses", s.adminToken(), gin.H{"title": "Go Basics", "isPublished": false})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var course domain.Course
	decode(t, w, &course)
	assert.Equal(t, "go-basics", course.Slug)

	w = s.do(http.MethodPost, "/api/courses", s.adminToken(), gin.H{"title": "Go basics!"})
	assert.Equal(t, http.StatusBadRequest, w.Code, "slug collision")

	// Drafts are hidden from the public
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/courses/go-basics", "", nil).Code)
	assert.Equal(t, int64(0), decode(t, s.do(http.MethodGet, "/api/courses", "", nil), nil).Pagination.Total)

	w = s.do(http.MethodPut, "/api/courses/"+itoa(course.ID), s.adminToken(), gin.H{"title": "Go Basics", "isPublished": true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/courses/go-basics", "", nil).Code)

	w = s.do(http.MethodPost, "/api/courses/"+itoa(course.ID)+"/chapters", s.adminToken(), gin.H{"title": "Start", "order": 1})
	require.Equal(t, http.StatusCreated, w.Code)
	var chapter domain.Chapter
	decode(t, w, &chapter)

	w = s.do(http.MethodPost, "/api/courses/"+itoa(course.ID)+"/lessons", s.adminToken(), gin.H{
		"chapterId": chapter.ID,
		"title":     "Hello World",
		"content":   "package main",
		"isPreview": true,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var lesson domain.Lesson
	decode(t, w, &lesson)
	assert.Equal(t, "hello-world", lesson.Slug)

	w = s.do(http.MethodGet, "/api/courses/"+itoa(course.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &course)
	require.Len(t, course.Chapters, 1)
	require.Len(t, course.Chapters[0].Lessons, 1)
	assert.Empty(t, course.Chapters[0].Lessons[0].Content, "outline omits content")
}

func TestCreateLesson_References(t *testing.T) {
	s := newTestServer(t)
	f := seedCourse(t, s)
	other := domain.Course{Title: "Other", Slug: "other", IsPublished: true}
	require.NoError(t, s.db.Create(&other).Error)
	otherChapter := domain.Chapter{CourseID: other.ID, Title: "Elsewhere"}
	require.NoError(t, s.db.Create(&otherChapter).Error)
	foreign := domain.Lesson{CourseID: other.ID, ChapterID: otherChapter.ID, Title: "Foreign"}
	require.NoError(t, s.db.Create(&foreign).Error)
	path := "/api/courses/" + itoa(f.course.ID) + "/lessons"

	w := s.do(http.MethodPost, path, s.adminToken(), gin.H{"chapterId": f.chapter.ID, "title": "Next", "unlockRequirements": []uint{foreign.ID}})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"unlockRequirements"}, fieldNames(decode(t, w, nil).Errors))

	w = s.do(http.MethodPost, path, s.adminToken(), gin.H{"chapterId": otherChapter.ID, "title": "Next"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"chapterId"}, fieldNames(decode(t, w, nil).Errors))

	w = s.do(http.MethodPost, path, s.adminToken(), gin.H{"chapterId": f.chapter.ID, "title": "Next", "unlockRequirements": []uint{f.basics.ID, f.advanced.ID}})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = s.do(http.MethodPut, "/api/lessons/"+itoa(f.basics.ID), s.adminToken(), gin.H{"unlockRequirements": []uint{f.basics.ID}})
	assert.Equal(t, http.StatusBadRequest, w.Code, "a lesson cannot require itself")
}

func TestEnroll_Idempotent(t *testing.T) {
	s := newTestServer(t)
	f := seedCourse(t, s)

	enroll(t, s, f.course.ID)
	w := s.do(http.MethodPost, "/api/courses/"+itoa(f.course.ID)+"/enroll", s.userToken(), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var count int64
	require.NoError(t, s.db.Model(&domain.Enrollment{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodPost, "/api/courses/"+itoa(f.course.ID)+"/enroll", "", nil).Code)
}

func TestGetLesson_Access(t *testing.T) {
	s := newTestServer(t)
	f := seedCourse(t, s)
	get := func(l domain.Lesson, token string) (int, learning.Access) {
		w := s.do(http.MethodGet, "/api/lessons/"+itoa(l.ID), token, nil)
		if w.Code == http.StatusOK {
			var detail LessonDetail
			decode(t, w, &detail)
			assert.NotEmpty(t, detail.Lesson.Content)
			return w.Code, detail.Access
		}
		var access learning.Access
		decode(t, w, &access)
		return w.Code, access
	}

	// Previews are open to everyone
	code, access := get(f.intro, "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, learning.ReasonPreview, access.Reason)

	code, access = get(f.basics, s.userToken())
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, learning.ReasonNotEnrolled, access.Reason)

	enroll(t, s, f.course.ID)
	code, _ = get(f.basics, s.userToken())
	assert.Equal(t, http.StatusOK, code)

	code, access = get(f.advanced, s.userToken())
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, learning.ReasonPrerequisites, access.Reason)
	assert.Equal(t, []uint{f.basics.ID}, access.Missing)

	code, access = get(f.bonus, s.userToken())
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, learning.ReasonLocked, access.Reason)

	// Admins bypass every rule
	code, access = get(f.bonus, s.adminToken())
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, learning.ReasonAdmin, access.Reason)
}

func TestProgressFlow(t *testing.T) {
	s := newTestServer(t)
	f := seedCourse(t, s)
	complete := func(l domain.Lesson) int {
		return s.do(http.MethodPost, "/api/progress/lessons/"+itoa(l.ID)+"/complete", s.userToken(), nil).Code
	}

	assert.Equal(t, http.StatusForbidden, complete(f.basics))
	enroll(t, s, f.course.ID)
	assert.Equal(t, http.StatusForbidden, complete(f.advanced))
	require.Equal(t, http.StatusOK, complete(f.basics))
	require.Equal(t, http.StatusOK, complete(f.basics), "completing twice is harmless")
	require.Equal(t, http.StatusOK, complete(f.advanced))

	w := s.do(http.MethodPut, "/api/progress/lessons/"+itoa(f.intro.ID), s.userToken(), gin.H{"watchTime": 90})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/api/progress/courses/"+itoa(f.course.ID), s.userToken(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var summary CourseProgress
	decode(t, w, &summary)
	assert.True(t, summary.IsEnrolled)
	assert.Equal(t, 2, summary.CompletedCount)
	assert.Equal(t, 4, summary.TotalLessons)
	assert.Equal(t, 50.0, summary.Percentage)
	assert.Equal(t, 90, summary.TotalWatchTime)
	assert.ElementsMatch(t, []uint{f.basics.ID, f.advanced.ID}, summary.CompletedLessons)

	// The listing reflects progress
	w = s.do(http.MethodGet, "/api/courses/"+itoa(f.course.ID)+"/lessons", s.userToken(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var lessons []LessonSummary
	decode(t, w, &lessons)
	require.Len(t, lessons, 4)
	assert.Equal(t, []string{"Intro", "Basics", "Advanced", "Bonus"}, []string{lessons[0].Title, lessons[1].Title, lessons[2].Title, lessons[3].Title})
	assert.True(t, lessons[1].IsCompleted)
	assert.True(t, lessons[2].IsAccessible)
	assert.False(t, lessons[3].IsAccessible)
	assert.Empty(t, lessons[1].Content)

	w = s.do(http.MethodDelete, "/api/progress/courses/"+itoa(f.course.ID), s.userToken(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(http.MethodGet, "/api/progress/courses/"+itoa(f.course.ID), s.userToken(), nil)
	decode(t, w, &summary)
	assert.Zero(t, summary.CompletedCount)
	assert.Zero(t, summary.Percentage)
}

func TestListCourseLessons_Anonymous(t *testing.T) {
	s := newTestServer(t)
	f := seedCourse(t, s)

	w := s.do(http.MethodGet, "/api/courses/"+itoa(f.course.ID)+"/lessons", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var lessons []LessonSummary
	decode(t, w, &lessons)
	require.Len(t, lessons, 4)
	assert.True(t, lessons[0].IsAccessible)
	for _, l := range lessons[1:] {
		assert.False(t, l.IsAccessible)
		assert.Equal(t, learning.ReasonNotEnrolled, l.Reason)
	}
}

func TestDeleteLesson_CleansPrerequisites(t *testing.T) {
	s := newTestServer(t)
	f := seedCourse(t, s)

	w := s.do(http.MethodDelete, "/api/lessons/"+itoa(f.basics.ID), s.adminToken(), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var advanced domain.Lesson
	require.NoError(t, s.db.First(&advanced, f.advanced.ID).Error)
	assert.Empty(t, advanced.UnlockRequirements)
}
