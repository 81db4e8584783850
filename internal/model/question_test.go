package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnswerOptionValid(t *testing.T) {
	for _, o := range []AnswerOption{OptionA, OptionB, OptionC, OptionD} {
		assert.True(t, o.Valid(), "option %s", o)
	}

	assert.False(t, AnswerOption("E").Valid())
	assert.False(t, AnswerOption("a").Valid())
	assert.False(t, AnswerOption("").Valid())
}

func TestQuestionForStudentStripsAnswer(t *testing.T) {
	q := &QuizQuestion{
		Title:         "Launch window alignment",
		OptionA:       "first",
		OptionB:       "second",
		CorrectAnswer: OptionB,
		Category:      "mission-planning",
	}

	public := q.ForStudent()

	assert.Equal(t, q.Title, public.Title)
	assert.Equal(t, q.OptionB, public.OptionB)
	assert.Equal(t, q.Category, public.Category)

	// The sanitized shape must not carry the key at all.
	b, err := json.Marshal(public)
	assert.NoError(t, err)
	assert.NotContains(t, string(b), "correct_answer")
}
