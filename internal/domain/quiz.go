package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Question types
const (
	QuestionMultipleChoice = "multiple_choice"
	QuestionTrueFalse      = "true_false"
	QuestionShortAnswer    = "short_answer"
)

// Quiz Model
type Quiz struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	LessonID     *uint      `gorm:"index" json:"lessonId"` // Optional lesson the quiz belongs to
	Title        string     `gorm:"size:200;not null" json:"title"`
	Description  string     `gorm:"type:text" json:"description"`
	PassingScore float64    `gorm:"not null" json:"passingScore"` // Percentage needed to pass
	TimeLimit    int        `gorm:"default:0" json:"timeLimit"`   // Minutes, 0 means none
	MaxAttempts  int        `gorm:"default:0" json:"maxAttempts"` // 0 means unlimited
	IsActive     bool       `gorm:"not null" json:"isActive"`
	Questions    []Question `gorm:"constraint:OnDelete:CASCADE;" json:"questions,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// Question belongs to a quiz
type Question struct {
	ID            uint                        `gorm:"primaryKey" json:"id"`
	QuizID        uint                        `gorm:"index;not null" json:"quizId"`
	Text          string                      `gorm:"type:text;not null" json:"text"`
	Type          string                      `gorm:"size:32;default:multiple_choice" json:"type"`
	Options       datatypes.JSONSlice[string] `json:"options"`
	CorrectAnswer string                      `gorm:"not null" json:"correctAnswer,omitempty"`
	Points        float64                     `gorm:"not null;default:1" json:"points"`
	Order         int                         `gorm:"column:sort_order;default:0" json:"order"`
	Explanation   string                      `gorm:"type:text" json:"explanation,omitempty"`
}

// QuestionResult is the per-question outcome of an attempt
type QuestionResult struct {
	QuestionID    uint    `json:"questionId"`
	Answer        string  `json:"answer"`
	CorrectAnswer string  `json:"correctAnswer"`
	IsCorrect     bool    `json:"isCorrect"`
	Points        float64 `json:"points"`    // Points earned
	MaxPoints     float64 `json:"maxPoints"` // Points available
	Explanation   string  `json:"explanation,omitempty"`
}

// QuizAttempt records one submission of a quiz
type QuizAttempt struct {
	ID         uint                                `gorm:"primaryKey" json:"id"`
	UserID     uint                                `gorm:"index;not null" json:"userId"`
	QuizID     uint                                `gorm:"index;not null" json:"quizId"`
	Answers    datatypes.JSONMap                   `json:"answers"`
	Results    datatypes.JSONSlice[QuestionResult] `json:"results"`
	TotalScore float64                             `json:"totalScore"`
	MaxScore   float64                             `json:"maxScore"`
	Percentage float64                             `json:"percentage"`
	IsPassed   bool                                `json:"isPassed"`
	TimeTaken  int                                 `json:"timeTaken"` // Seconds
	CreatedAt  time.Time                           `json:"createdAt"`
}
