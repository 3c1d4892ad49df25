// Package learning holds the course rules that do not touch the database:
// quiz scoring and lesson access.
package learning

import (
	"learnshop/internal/domain" // Lesson and question models
	"learnshop/internal/utils"  // Rounding
)

// Result is the outcome of scoring one quiz submission
type Result struct {
	TotalScore float64                 `json:"totalScore"`   // Points earned
	MaxScore   float64                 `json:"maxScore"`     // Points available
	Percentage float64                 `json:"percentage"`   // TotalScore/MaxScore*100, two decimals
	IsPassed   bool                    `json:"isPassed"`     // Percentage reached the passing score
	Correct    int                     `json:"correctCount"` // Correctly answered questions
	Questions  []domain.QuestionResult `json:"results"`      // Per question breakdown
}

// ScoreQuiz scores answers, keyed by question ID, against the quiz questions.
// A question earns its points only when the answer equals the stored one exactly.
func ScoreQuiz(questions []domain.Question, answers map[uint]string, passingScore float64) Result {
	res := Result{Questions: make([]domain.QuestionResult, 0, len(questions))}
	for _, q := range questions {
		answer, answered := answers[q.ID]                // Missing answers score nothing
		correct := answered && answer == q.CorrectAnswer // Exact match only

		qr := domain.QuestionResult{
			QuestionID:    q.ID,
			Answer:        answer,
			CorrectAnswer: q.CorrectAnswer,
			IsCorrect:     correct,
			MaxPoints:     q.Points,
			Explanation:   q.Explanation,
		}
		if correct {
			qr.Points = q.Points
			res.TotalScore += q.Points
			res.Correct++
		}
		res.MaxScore += q.Points // Counted whether answered or not
		res.Questions = append(res.Questions, qr)
	}
	if res.MaxScore > 0 { // A quiz worth nothing scores 0%
		res.Percentage = utils.Round2(res.TotalScore / res.MaxScore * 100)
	}
	res.IsPassed = res.Percentage >= passingScore
	return res
}
