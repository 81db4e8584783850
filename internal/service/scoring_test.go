package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/Ayushant/skillspan-hub/internal/model"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name    string
		correct int
		total   int
		want    int
	}{
		{"all correct", 10, 10, 100},
		{"none correct", 0, 10, 0},
		{"half", 5, 10, 50},
		{"rounds half up", 1, 8, 13},   // 12.5
		{"rounds down", 1, 3, 33},      // 33.33
		{"rounds up", 2, 3, 67},        // 66.67
		{"empty question set", 0, 0, 0},
		{"negative total", 3, -1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(tt.correct, tt.total))
		})
	}
}

func TestGrade(t *testing.T) {
	q1 := uuid.New()
	q2 := uuid.New()
	q3 := uuid.New()
	q4 := uuid.New()

	answerKey := map[uuid.UUID]model.AnswerOption{
		q1: model.OptionA,
		q2: model.OptionB,
		q3: model.OptionC,
		q4: model.OptionD,
	}

	sel := func(o model.AnswerOption) *model.AnswerOption { return &o }

	answers := []model.Answer{
		{QuestionID: q1, SelectedAnswer: sel(model.OptionA)}, // correct
		{QuestionID: q2, SelectedAnswer: sel(model.OptionC)}, // wrong
		{QuestionID: q3, MarkedForReview: true},              // review only, no selection
		// q4 never answered
	}

	ids, verdicts, out := Grade(answers, answerKey, model.SessionStatusCompleted)

	assert.Equal(t, []uuid.UUID{q1, q2}, ids)
	assert.Equal(t, []bool{true, false}, verdicts)
	assert.Equal(t, model.SessionStatusCompleted, out.Status)
	assert.Equal(t, 4, out.TotalQuestions)
	assert.Equal(t, 1, out.CorrectAnswers)
	assert.Equal(t, 25, out.Score)
}

func TestGradeEmptyLedger(t *testing.T) {
	answerKey := map[uuid.UUID]model.AnswerOption{
		uuid.New(): model.OptionA,
		uuid.New(): model.OptionB,
	}

	ids, verdicts, out := Grade(nil, answerKey, model.SessionStatusExpired)

	assert.Empty(t, ids)
	assert.Empty(t, verdicts)
	assert.Equal(t, 2, out.TotalQuestions)
	assert.Equal(t, 0, out.CorrectAnswers)
	assert.Equal(t, 0, out.Score)
}

func TestGradeEmptyQuestionSet(t *testing.T) {
	_, _, out := Grade(nil, nil, model.SessionStatusCompleted)

	assert.Equal(t, 0, out.TotalQuestions)
	assert.Equal(t, 0, out.Score)
}

func TestGradeKeepsCallerStatus(t *testing.T) {
	// Grade records the terminal status it is handed; the submit path always
	// hands it completed, the deadline sweep expired.
	for _, status := range []model.SessionStatus{model.SessionStatusCompleted, model.SessionStatusExpired} {
		_, _, out := Grade(nil, nil, status)
		assert.Equal(t, status, out.Status)
	}
}

func TestGradableAnswerKey(t *testing.T) {
	key := map[uuid.UUID]model.AnswerOption{uuid.New(): model.OptionA}

	t.Run("passes key through", func(t *testing.T) {
		got, err := gradableAnswerKey(key, nil)
		assert.NoError(t, err)
		assert.Equal(t, key, got)
	})

	t.Run("unauthored set grades as empty key", func(t *testing.T) {
		got, err := gradableAnswerKey(nil, ErrQuestionSetEmpty)
		assert.NoError(t, err)
		assert.Nil(t, got)

		// The terminal transition proceeds with a zero score.
		_, _, out := Grade(nil, got, model.SessionStatusCompleted)
		assert.Equal(t, model.SessionStatusCompleted, out.Status)
		assert.Equal(t, 0, out.Score)
	})

	t.Run("other errors propagate", func(t *testing.T) {
		_, err := gradableAnswerKey(nil, assert.AnError)
		assert.ErrorIs(t, err, assert.AnError)
	})
}
