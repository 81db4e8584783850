package model

import (
	"time"

	"github.com/google/uuid"
)

// Answer is one ledger row: the student's current response to a question
// within a session. The ledger guarantees at most one row per
// (session, question) pair; writes are last-write-wins upserts.
type Answer struct {
	ID              uuid.UUID     `json:"id"`
	SessionID       uuid.UUID     `json:"session_id"`
	QuestionID      uuid.UUID     `json:"question_id"`
	SelectedAnswer  *AnswerOption `json:"selected_answer,omitempty"`
	MarkedForReview bool          `json:"marked_for_review"`
	IsCorrect       *bool         `json:"is_correct,omitempty"`
	AnsweredAt      *time.Time    `json:"answered_at,omitempty"`
}
