package api

import (
	"net/http"
	"testing"

	"learnshop/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createQuiz(t *testing.T, s *testServer, lessonID *uint, maxAttempts int) domain.Quiz {
	t.Helper()
	w := s.do(http.MethodPost, "/api/quizzes", s.adminToken(), gin.H{
		"lessonId":     lessonID,
		"title":        "Basics check",
		"passingScore": 60,
		"maxAttempts":  maxAttempts,
		"questions": []gin.H{
			{"text": "Is Go compiled?", "type": "true_false", "correctAnswer": "true", "points": 1},
			{"text": "Pick the keyword", "options": []string{"func", "def", "fn"}, "correctAnswer": "func", "points": 2, "explanation": "Go uses func"},
			{"text": "Name the zero value of int", "type": "short_answer", "correctAnswer": "0", "points": 2},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var quiz domain.Quiz
	decode(t, w, &quiz)
	require.Len(t, quiz.Questions, 3)
	return quiz
}

func TestCreateQuiz_Validation(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/quizzes", s.adminToken(), gin.H{
		"title": "Broken",
		"questions": []gin.H{
			{"text": "Pick one", "options": []string{"a", "b"}, "correctAnswer": "c"},
			{"text": "True?", "type": "true_false", "correctAnswer": "yes"},
		},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"questions[0].correctAnswer", "questions[1].correctAnswer"}, fieldNames(decode(t, w, nil).Errors))

	w = s.do(http.MethodPost, "/api/quizzes", s.adminToken(), gin.H{"title": "Empty", "questions": []gin.H{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	missing := uint(999)
	w = s.do(http.MethodPost, "/api/quizzes", s.adminToken(), gin.H{
		"title":     "Orphan",
		"lessonId":  missing,
		"questions": []gin.H{{"text": "True?", "type": "true_false", "correctAnswer": "true"}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetQuiz_HidesAnswers(t *testing.T) {
	s := newTestServer(t)
	quiz := createQuiz(t, s, nil, 0)
	path := "/api/quizzes/" + itoa(quiz.ID)

	w := s.do(http.MethodGet, path, s.userToken(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "correctAnswer")
	assert.NotContains(t, w.Body.String(), "Go uses func")

	w = s.do(http.MethodGet, path, s.adminToken(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"correctAnswer":"func"`)
}

func TestSubmitQuiz(t *testing.T) {
	s := newTestServer(t)
	f := seedCourse(t, s)
	quiz := createQuiz(t, s, &f.basics.ID, 2)
	q := quiz.Questions
	path := "/api/quizzes/" + itoa(quiz.ID) + "/submit"
	answers := gin.H{"answers": gin.H{itoa(q[0].ID): "true", itoa(q[1].ID): "func", itoa(q[2].ID): "zero"}, "timeTaken": 42}

	// The quiz follows its lesson's access rules
	w := s.do(http.MethodPost, path, s.userToken(), answers)
	require.Equal(t, http.StatusForbidden, w.Code)

	enroll(t, s, f.course.ID)
	w = s.do(http.MethodPost, path, s.userToken(), answers)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var res SubmitQuizResponse
	decode(t, w, &res)
	assert.Equal(t, 3.0, res.TotalScore)
	assert.Equal(t, 5.0, res.MaxScore)
	assert.Equal(t, 60.0, res.Percentage)
	assert.True(t, res.IsPassed)
	assert.Equal(t, 2, res.Correct)
	require.Len(t, res.Questions, 3)
	assert.False(t, res.Questions[2].IsCorrect)
	assert.Equal(t, "0", res.Questions[2].CorrectAnswer)
	require.NotNil(t, res.AttemptsLeft)
	assert.Equal(t, 1, *res.AttemptsLeft)

	// Unanswered questions score nothing
	w = s.do(http.MethodPost, path, s.userToken(), gin.H{"answers": gin.H{itoa(q[0].ID): "true"}})
	require.Equal(t, http.StatusCreated, w.Code)
	decode(t, w, &res)
	assert.Equal(t, 20.0, res.Percentage)
	assert.False(t, res.IsPassed)

	w = s.do(http.MethodPost, path, s.userToken(), answers)
	assert.Equal(t, http.StatusBadRequest, w.Code, "attempt limit reached")

	w = s.do(http.MethodGet, "/api/quizzes/"+itoa(quiz.ID)+"/attempts", s.userToken(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var history struct {
		Attempts  []domain.QuizAttempt `json:"attempts"`
		BestScore float64              `json:"bestScore"`
		HasPassed bool                 `json:"hasPassed"`
		Count     int                  `json:"count"`
	}
	decode(t, w, &history)
	assert.Equal(t, 2, history.Count)
	assert.Equal(t, 60.0, history.BestScore)
	assert.True(t, history.HasPassed)
	assert.Equal(t, "true", history.Attempts[0].Answers[itoa(q[0].ID)])
}

func TestSubmitQuiz_InactiveOrBadKeys(t *testing.T) {
	s := newTestServer(t)
	quiz := createQuiz(t, s, nil, 0)
	path := "/api/quizzes/" + itoa(quiz.ID) + "/submit"

	w := s.do(http.MethodPost, path, s.userToken(), gin.H{"answers": gin.H{"first": "true"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	require.NoError(t, s.db.Model(&domain.Quiz{}).Where("id = ?", quiz.ID).Update("is_active", false).Error)
	w = s.do(http.MethodPost, path, s.userToken(), gin.H{"answers": gin.H{}})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodGet, "/api/quizzes", s.userToken(), nil)
	assert.Equal(t, int64(0), decode(t, w, nil).Pagination.Total)
}

func TestSubmitQuiz_AnswersMatchExactly(t *testing.T) {
	s := newTestServer(t)
	quiz := createQuiz(t, s, nil, 0)
	q := quiz.Questions
	path := "/api/quizzes/" + itoa(quiz.ID) + "/submit"

	padded := gin.H{"answers": gin.H{itoa(q[0].ID): "  true", itoa(q[1].ID): "func  ", itoa(q[2].ID): " 0 "}}
	w := s.do(http.MethodPost, path, s.userToken(), padded)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var res SubmitQuizResponse
	decode(t, w, &res)
	assert.Equal(t, 0.0, res.TotalScore)
	assert.Equal(t, 0.0, res.Percentage)
	assert.False(t, res.IsPassed)

	var attempt domain.QuizAttempt
	require.NoError(t, s.db.First(&attempt, res.AttemptID).Error)
	assert.Equal(t, "  true", attempt.Answers[itoa(q[0].ID)])
}

func TestCreateQuiz_OptionsKeptVerbatim(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/quizzes", s.adminToken(), gin.H{
		"title":     "Spacing",
		"questions": []gin.H{{"text": "Pick the padded one", "options": []string{" A", "B"}, "correctAnswer": " A"}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var quiz domain.Quiz
	decode(t, w, &quiz)
	require.Len(t, quiz.Questions, 1)

	path := "/api/quizzes/" + itoa(quiz.ID) + "/submit"
	w = s.do(http.MethodPost, path, s.userToken(), gin.H{"answers": gin.H{itoa(quiz.Questions[0].ID): " A"}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var res SubmitQuizResponse
	decode(t, w, &res)
	assert.Equal(t, 100.0, res.Percentage)

	w = s.do(http.MethodPost, "/api/quizzes", s.adminToken(), gin.H{
		"title":     "Spacing",
		"questions": []gin.H{{"text": "Pick the padded one", "options": []string{" A", "B"}, "correctAnswer": "A"}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateQuiz_ReplacesQuestions(t *testing.T) {
	s := newTestServer(t)
	quiz := createQuiz(t, s, nil, 0)

	w := s.do(http.MethodPut, "/api/quizzes/"+itoa(quiz.ID), s.adminToken(), gin.H{
		"title":     "Shorter",
		"questions": []gin.H{{"text": "Is Go fun?", "type": "true_false", "correctAnswer": "true"}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var count int64
	require.NoError(t, s.db.Model(&domain.Question{}).Where("quiz_id = ?", quiz.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	w = s.do(http.MethodDelete, "/api/quizzes/"+itoa(quiz.ID), s.adminToken(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/quizzes/"+itoa(quiz.ID), s.adminToken(), nil).Code)
}
