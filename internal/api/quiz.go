package api

import (
	"net/http" // HTTP status codes
	"slices"   // Option membership
	"strconv"  // String conversion

	"learnshop/internal/domain"     // Importing domain models
	"learnshop/internal/learning"   // Quiz scoring
	"learnshop/internal/middleware" // Auth context helpers
	"learnshop/internal/utils"      // Utility functions

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logrus for structured logging
	"gorm.io/datatypes"          // JSON columns
	"gorm.io/gorm"               // GORM ORM library
)

// QuestionRequest is one question of a quiz request
type QuestionRequest struct {
	Text          string   `json:"text" binding:"required,min=3"`
	Type          string   `json:"type" binding:"omitempty,oneof=multiple_choice true_false short_answer"`
	Options       []string `json:"options" binding:"omitempty,max=10,dive,required,max=500"`
	CorrectAnswer string   `json:"correctAnswer" binding:"required,max=500"`
	Points        *float64 `json:"points" binding:"omitempty,gt=0,lte=100"`
	Order         int      `json:"order" binding:"gte=0"`
	Explanation   string   `json:"explanation" binding:"max=5000"`
}

// QuizRequest is the body for creating or replacing a quiz
type QuizRequest struct {
	LessonID     *uint             `json:"lessonId"`
	Title        string            `json:"title" binding:"required,min=3,max=200"`
	Description  string            `json:"description" binding:"max=5000"`
	PassingScore *float64          `json:"passingScore" binding:"omitempty,gte=0,lte=100"`
	TimeLimit    int               `json:"timeLimit" binding:"gte=0"`   // Minutes
	MaxAttempts  int               `json:"maxAttempts" binding:"gte=0"` // 0 means unlimited
	IsActive     *bool             `json:"isActive"`
	Questions    []QuestionRequest `json:"questions" binding:"required,min=1,max=100,dive"`
}

// SubmitQuizRequest carries answers keyed by question ID
type SubmitQuizRequest struct {
	Answers   map[string]string `json:"answers" binding:"required"`
	TimeTaken int               `json:"timeTaken" binding:"gte=0"` // Seconds
}

// SubmitQuizResponse is the scored attempt
type SubmitQuizResponse struct {
	AttemptID uint `json:"attemptId"`
	learning.Result
	AttemptsUsed int  `json:"attemptsUsed"`
	AttemptsLeft *int `json:"attemptsLeft,omitempty"` // Omitted when attempts are unlimited
}

// ListQuizzesHandler returns a page of quizzes
func ListQuizzesHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page := utils.ParsePagination(c)
		query := db.WithContext(c.Request.Context()).Model(&domain.Quiz{})
		if !middleware.IsAdmin(c) {
			query = query.Where("is_active = ?", true)
		}
		if lessonID, err := strconv.ParseUint(c.Query("lessonId"), 10, 64); err == nil {
			query = query.Where("lesson_id = ?", lessonID)
		}
		var quizzes []domain.Quiz
		total, err := findPage(query, page, "created_at desc, id desc", &quizzes)
		if err != nil {
			serverError(c, "list quizzes", err)
			return
		}
		utils.Paginated(c, quizzes, page.Result(total))
	}
}

// GetQuizHandler returns a quiz, hiding answers from non-admins
func GetQuizHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		quiz, ok := loadQuiz(c, db, true)
		if !ok {
			return
		}
		if !middleware.IsAdmin(c) {
			if !quiz.IsActive {
				utils.Fail(c, http.StatusNotFound, "Quiz not found")
				return
			}
			for i := range quiz.Questions {
				quiz.Questions[i].CorrectAnswer = ""
				quiz.Questions[i].Explanation = ""
			}
		}
		utils.OK(c, http.StatusOK, quiz, "")
	}
}

// CreateQuizHandler creates a quiz with its questions
func CreateQuizHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req QuizRequest
		if !bindJSON(c, &req) {
			return
		}
		db := db.WithContext(c.Request.Context())
		if errs, err := quizErrors(db, req); err != nil {
			serverError(c, "check quiz", err)
			return
		} else if len(errs) > 0 {
			utils.ValidationFailed(c, errs)
			return
		}
		var quiz domain.Quiz
		applyQuiz(&quiz, req)
		if err := db.Create(&quiz).Error; err != nil {
			serverError(c, "create quiz", err)
			return
		}
		logrus.WithFields(logrus.Fields{
			"quiz_id":   quiz.ID,             // Quiz ID
			"questions": len(quiz.Questions), // Question count
		}).Info("Quiz created")
		utils.OK(c, http.StatusCreated, quiz, "Quiz created")
	}
}

// UpdateQuizHandler replaces a quiz and its questions
func UpdateQuizHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		quiz, ok := loadQuiz(c, db, false)
		if !ok {
			return
		}
		var req QuizRequest
		if !bindJSON(c, &req) {
			return
		}
		db := db.WithContext(c.Request.Context())
		if errs, err := quizErrors(db, req); err != nil {
			serverError(c, "check quiz", err)
			return
		} else if len(errs) > 0 {
			utils.ValidationFailed(c, errs)
			return
		}
		applyQuiz(&quiz, req)
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("quiz_id = ?", quiz.ID).Delete(&domain.Question{}).Error; err != nil {
				return err // Return error to rollback
			}
			if err := tx.Omit("Questions").Save(&quiz).Error; err != nil {
				return err
			}
			for i := range quiz.Questions {
				quiz.Questions[i].QuizID = quiz.ID
			}
			return tx.Create(&quiz.Questions).Error
		})
		if err != nil {
			serverError(c, "update quiz", err)
			return
		}
		utils.OK(c, http.StatusOK, quiz, "Quiz updated")
	}
}

// DeleteQuizHandler removes a quiz with its questions and attempts
func DeleteQuizHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		quiz, ok := loadQuiz(c, db, false)
		if !ok {
			return
		}
		err := db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("quiz_id = ?", quiz.ID).Delete(&domain.QuizAttempt{}).Error; err != nil {
				return err // Return error to rollback
			}
			if err := tx.Where("quiz_id = ?", quiz.ID).Delete(&domain.Question{}).Error; err != nil {
				return err
			}
			return tx.Delete(&quiz).Error
		})
		if err != nil {
			serverError(c, "delete quiz", err)
			return
		}
		logrus.WithField("quiz_id", quiz.ID).Info("Quiz deleted")
		utils.OK(c, http.StatusOK, nil, "Quiz deleted")
	}
}

// SubmitQuizHandler scores the caller's answers and stores the attempt
func SubmitQuizHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		quiz, ok := loadQuiz(c, db, true)
		if !ok {
			return
		}
		if !quiz.IsActive {
			utils.Fail(c, http.StatusNotFound, "Quiz not found")
			return
		}
		var req SubmitQuizRequest
		if !bindJSON(c, &req) {
			return
		}
		answers := make(map[uint]string, len(req.Answers))
		for key, answer := range req.Answers {
			id, err := strconv.ParseUint(key, 10, 64)
			if err != nil {
				utils.ValidationFailed(c, []utils.FieldError{{Field: "answers", Message: "keys must be question IDs"}})
				return
			}
			answers[uint(id)] = answer // Scored as sent
		}
		db := db.WithContext(c.Request.Context())

		// Quizzes attached to a lesson follow the lesson's access rules
		if quiz.LessonID != nil {
			var lesson domain.Lesson
			if err := db.First(&lesson, *quiz.LessonID).Error; err != nil && !isNotFound(err) {
				serverError(c, "load quiz lesson", err)
				return
			} else if err == nil {
				access, _, err := lessonAccess(c, db, lesson)
				if err != nil {
					serverError(c, "check lesson access", err)
					return
				}
				if !access.Accessible {
					utils.FailWithData(c, http.StatusForbidden, access.Message(), access)
					return
				}
			}
		}

		userID, _ := middleware.CurrentUserID(c)
		var used int64
		if err := db.Model(&domain.QuizAttempt{}).Where("user_id = ? AND quiz_id = ?", userID, quiz.ID).Count(&used).Error; err != nil {
			serverError(c, "count attempts", err)
			return
		}
		if quiz.MaxAttempts > 0 && int(used) >= quiz.MaxAttempts {
			utils.Fail(c, http.StatusBadRequest, "Maximum number of attempts reached")
			return
		}

		result := learning.ScoreQuiz(quiz.Questions, answers, quiz.PassingScore)
		stored := make(datatypes.JSONMap, len(answers))
		for id, answer := range answers {
			stored[strconv.FormatUint(uint64(id), 10)] = answer
		}
		attempt := domain.QuizAttempt{
			UserID:     userID,
			QuizID:     quiz.ID,
			Answers:    stored,
			Results:    result.Questions,
			TotalScore: result.TotalScore,
			MaxScore:   result.MaxScore,
			Percentage: result.Percentage,
			IsPassed:   result.IsPassed,
			TimeTaken:  req.TimeTaken,
		}
		if err := db.Create(&attempt).Error; err != nil {
			serverError(c, "save attempt", err)
			return
		}
		resp := SubmitQuizResponse{AttemptID: attempt.ID, Result: result, AttemptsUsed: int(used) + 1}
		if quiz.MaxAttempts > 0 {
			left := quiz.MaxAttempts - resp.AttemptsUsed
			resp.AttemptsLeft = &left
		}
		logrus.WithFields(logrus.Fields{
			"quiz_id":    quiz.ID,           // Quiz ID
			"user_id":    userID,            // User ID
			"percentage": result.Percentage, // Score
			"passed":     result.IsPassed,   // Outcome
		}).Info("Quiz submitted")
		utils.OK(c, http.StatusCreated, resp, "Quiz submitted")
	}
}

// ListAttemptsHandler returns the caller's attempts at a quiz, newest first
func ListAttemptsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		quiz, ok := loadQuiz(c, db, false)
		if !ok {
			return
		}
		userID, _ := middleware.CurrentUserID(c)
		var attempts []domain.QuizAttempt
		if err := db.WithContext(c.Request.Context()).
			Where("user_id = ? AND quiz_id = ?", userID, quiz.ID).
			Order("created_at desc, id desc").
			Find(&attempts).Error; err != nil {
			serverError(c, "list attempts", err)
			return
		}
		var best float64
		passed := false
		for _, a := range attempts {
			if a.Percentage > best {
				best = a.Percentage
			}
			passed = passed || a.IsPassed
		}
		utils.OK(c, http.StatusOK, gin.H{
			"attempts":  attempts,
			"bestScore": best,
			"hasPassed": passed,
			"count":     len(attempts),
		}, "")
	}
}

func loadQuiz(c *gin.Context, db *gorm.DB, withQuestions bool) (domain.Quiz, bool) {
	var quiz domain.Quiz
	id, ok := pathID(c, "Quiz")
	if !ok {
		return quiz, false
	}
	query := db.WithContext(c.Request.Context())
	if withQuestions {
		query = query.Preload("Questions", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("sort_order asc, id asc")
		})
	}
	if err := query.First(&quiz, id).Error; err != nil {
		if isNotFound(err) {
			utils.Fail(c, http.StatusNotFound, "Quiz not found")
			return quiz, false
		}
		serverError(c, "load quiz", err)
		return quiz, false
	}
	return quiz, true
}

// quizErrors validates what binding tags cannot express
func quizErrors(db *gorm.DB, req QuizRequest) ([]utils.FieldError, error) {
	var errs []utils.FieldError
	if req.LessonID != nil {
		ok, err := exists(db, &domain.Lesson{}, "id = ?", *req.LessonID)
		if err != nil {
			return nil, err
		}
		if !ok {
			errs = append(errs, utils.FieldError{Field: "lessonId", Message: "lesson does not exist"})
		}
	}
	for i, q := range req.Questions {
		field := "questions[" + strconv.Itoa(i) + "]"
		switch q.Type {
		case "", domain.QuestionMultipleChoice:
			if len(q.Options) < 2 {
				errs = append(errs, utils.FieldError{Field: field + ".options", Message: "needs at least 2 options"})
			} else if !slices.Contains(q.Options, q.CorrectAnswer) {
				errs = append(errs, utils.FieldError{Field: field + ".correctAnswer", Message: "must be one of the options"})
			}
		case domain.QuestionTrueFalse:
			if q.CorrectAnswer != "true" && q.CorrectAnswer != "false" {
				errs = append(errs, utils.FieldError{Field: field + ".correctAnswer", Message: "must be true or false"})
			}
		}
	}
	return errs, nil
}

func applyQuiz(quiz *domain.Quiz, req QuizRequest) {
	quiz.LessonID = req.LessonID
	quiz.Title = utils.SanitizeLine(req.Title)
	quiz.Description = utils.SanitizeText(req.Description)
	quiz.PassingScore = 70
	if req.PassingScore != nil {
		quiz.PassingScore = *req.PassingScore
	}
	quiz.TimeLimit = req.TimeLimit
	quiz.MaxAttempts = req.MaxAttempts
	quiz.IsActive = req.IsActive == nil || *req.IsActive
	quiz.Questions = make([]domain.Question, 0, len(req.Questions))
	for i, q := range req.Questions {
		question := domain.Question{
			Text:          q.Text,
			Type:          q.Type,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			Points:        1,
			Order:         q.Order,
			Explanation:   q.Explanation,
		}
		if question.Type == "" {
			question.Type = domain.QuestionMultipleChoice
		}
		if q.Points != nil {
			question.Points = *q.Points
		}
		if question.Order == 0 {
			question.Order = i + 1 // Keep request order by default
		}
		quiz.Questions = append(quiz.Questions, question)
	}
}
