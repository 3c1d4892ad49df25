package learning

import (
	"testing"

	"learnshop/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func questions() []domain.Question {
	return []domain.Question{
		{ID: 1, CorrectAnswer: "B", Points: 2},
		{ID: 2, CorrectAnswer: "true", Points: 1},
		{ID: 3, CorrectAnswer: "Paris", Points: 3, Explanation: "Capital of France"},
	}
}

func TestScoreQuiz_SumsExactMatches(t *testing.T) {
	res := ScoreQuiz(questions(), map[uint]string{1: "B", 2: "false", 3: "Paris"}, 70)

	assert.Equal(t, 5.0, res.TotalScore)
	assert.Equal(t, 6.0, res.MaxScore)
	assert.Equal(t, 83.33, res.Percentage)
	assert.True(t, res.IsPassed)
	assert.Equal(t, 2, res.Correct)

	require.Len(t, res.Questions, 3)
	assert.True(t, res.Questions[0].IsCorrect)
	assert.Equal(t, 2.0, res.Questions[0].Points)
	assert.False(t, res.Questions[1].IsCorrect)
	assert.Equal(t, 0.0, res.Questions[1].Points)
	assert.Equal(t, 1.0, res.Questions[1].MaxPoints)
	assert.Equal(t, "Capital of France", res.Questions[2].Explanation)
}

func TestScoreQuiz_ExactMatchOnly(t *testing.T) {
	// No trimming or case folding, unanswered questions score zero
	res := ScoreQuiz(questions(), map[uint]string{1: "b", 3: "Paris "}, 50)
	assert.Equal(t, 0.0, res.TotalScore)
	assert.Equal(t, 0.0, res.Percentage)
	assert.False(t, res.IsPassed)
	assert.Equal(t, "", res.Questions[1].Answer)
}

func TestScoreQuiz_PassingBoundary(t *testing.T) {
	qs := []domain.Question{{ID: 1, CorrectAnswer: "a", Points: 1}, {ID: 2, CorrectAnswer: "b", Points: 1}}

	res := ScoreQuiz(qs, map[uint]string{1: "a"}, 50)
	assert.Equal(t, 50.0, res.Percentage)
	assert.True(t, res.IsPassed, "percentage equal to the passing score passes")

	res = ScoreQuiz(qs, map[uint]string{1: "a"}, 50.01)
	assert.False(t, res.IsPassed)
}

func TestScoreQuiz_RoundsToTwoDecimals(t *testing.T) {
	qs := []domain.Question{
		{ID: 1, CorrectAnswer: "x", Points: 1},
		{ID: 2, CorrectAnswer: "x", Points: 1},
		{ID: 3, CorrectAnswer: "x", Points: 1},
	}
	res := ScoreQuiz(qs, map[uint]string{1: "x", 2: "x"}, 66.67)
	assert.Equal(t, 66.67, res.Percentage)
	assert.True(t, res.IsPassed)
}

func TestScoreQuiz_NoQuestions(t *testing.T) {
	res := ScoreQuiz(nil, map[uint]string{9: "x"}, 0)
	assert.Equal(t, 0.0, res.MaxScore)
	assert.Equal(t, 0.0, res.Percentage)
	assert.True(t, res.IsPassed)
	assert.Empty(t, res.Questions)
}

func TestCheckAccess(t *testing.T) {
	completed := map[uint]bool{1: true, 2: true}

	cases := []struct {
		name     string
		lesson   domain.Lesson
		enrolled bool
		want     Access
	}{
		{"preview without enrollment", domain.Lesson{IsPreview: true, IsLocked: true, UnlockRequirements: []uint{99}}, false, Access{Accessible: true, Reason: ReasonPreview}},
		{"not enrolled", domain.Lesson{}, false, Access{Reason: ReasonNotEnrolled}},
		{"locked", domain.Lesson{IsLocked: true}, true, Access{Reason: ReasonLocked}},
		{"prerequisites met", domain.Lesson{UnlockRequirements: []uint{1, 2}}, true, Access{Accessible: true, Reason: ReasonEnrolled}},
		{"prerequisites unmet", domain.Lesson{UnlockRequirements: []uint{1, 3, 4}}, true, Access{Reason: ReasonPrerequisites, Missing: []uint{3, 4}}},
		{"no requirements", domain.Lesson{}, true, Access{Accessible: true, Reason: ReasonEnrolled}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CheckAccess(tc.lesson, tc.enrolled, completed))
		})
	}
}

func TestAccessMessage(t *testing.T) {
	assert.NotEmpty(t, Access{Reason: ReasonPrerequisites}.Message())
	assert.Empty(t, Access{Accessible: true, Reason: ReasonEnrolled}.Message())
}

func TestCompletionPercentage(t *testing.T) {
	assert.Equal(t, 0.0, CompletionPercentage(0, 0))
	assert.Equal(t, 33.33, CompletionPercentage(1, 3))
	assert.Equal(t, 66.67, CompletionPercentage(2, 3))
	assert.Equal(t, 100.0, CompletionPercentage(4, 4))
}
