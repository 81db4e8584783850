package model

import (
	"time"

	"github.com/google/uuid"
)

// AnswerOption is one of the four labeled choices of a question.
type AnswerOption string

const (
	OptionA AnswerOption = "A"
	OptionB AnswerOption = "B"
	OptionC AnswerOption = "C"
	OptionD AnswerOption = "D"
)

// Valid reports whether the option is one of the four labels.
func (o AnswerOption) Valid() bool {
	switch o {
	case OptionA, OptionB, OptionC, OptionD:
		return true
	}
	return false
}

// QuizQuestion represents a single multiple-choice question. Questions are
// immutable once created; authoring is restricted to super admins.
type QuizQuestion struct {
	ID            uuid.UUID    `json:"id"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	OptionA       string       `json:"option_a"`
	OptionB       string       `json:"option_b"`
	OptionC       string       `json:"option_c"`
	OptionD       string       `json:"option_d"`
	CorrectAnswer AnswerOption `json:"correct_answer"`
	Category      string       `json:"category"`
	Difficulty    int          `json:"difficulty"`
	CreatedAt     time.Time    `json:"created_at"`
}

// QuestionForStudent is a question with the correct answer stripped,
// safe to send to an active session.
type QuestionForStudent struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	OptionA     string    `json:"option_a"`
	OptionB     string    `json:"option_b"`
	OptionC     string    `json:"option_c"`
	OptionD     string    `json:"option_d"`
	Category    string    `json:"category"`
}

// ForStudent strips the correct answer from a question.
func (q *QuizQuestion) ForStudent() QuestionForStudent {
	return QuestionForStudent{
		ID:          q.ID,
		Title:       q.Title,
		Description: q.Description,
		OptionA:     q.OptionA,
		OptionB:     q.OptionB,
		OptionC:     q.OptionC,
		OptionD:     q.OptionD,
		Category:    q.Category,
	}
}

// CreateQuestionRequest is the payload for authoring a new question.
type CreateQuestionRequest struct {
	Title         string `json:"title" binding:"required,min=1,max=500"`
	Description   string `json:"description" binding:"required,min=1,max=4000"`
	OptionA       string `json:"option_a" binding:"required,min=1,max=1000"`
	OptionB       string `json:"option_b" binding:"required,min=1,max=1000"`
	OptionC       string `json:"option_c" binding:"required,min=1,max=1000"`
	OptionD       string `json:"option_d" binding:"required,min=1,max=1000"`
	CorrectAnswer string `json:"correct_answer" binding:"required,oneof=A B C D"`
	Category      string `json:"category" binding:"required,min=1,max=100"`
	Difficulty    int    `json:"difficulty" binding:"omitempty,min=1,max=5"`
}
