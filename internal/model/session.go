package model

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus enumerates quiz session states. Transitions:
//
//	not_started → active → completed  (submit, force-stop)
//	not_started → active → expired    (deadline sweep)
//
// "paused" exists in the schema for forward compatibility but no flow
// currently produces it.
type SessionStatus string

const (
	SessionStatusNotStarted SessionStatus = "not_started"
	SessionStatusActive     SessionStatus = "active"
	SessionStatusPaused     SessionStatus = "paused"
	SessionStatusCompleted  SessionStatus = "completed"
	SessionStatusExpired    SessionStatus = "expired"
)

// Terminal reports whether the status permits no further transitions.
func (s SessionStatus) Terminal() bool {
	return s == SessionStatusCompleted || s == SessionStatusExpired
}

// QuizSession represents one student's timed attempt at the question set.
// Score fields are defined only once the session reaches a terminal state.
type QuizSession struct {
	ID               uuid.UUID     `json:"id"`
	StudentID        uuid.UUID     `json:"student_id"`
	UniversityID     uuid.UUID     `json:"university_id"`
	Status           SessionStatus `json:"status"`
	StartedAt        *time.Time    `json:"started_at,omitempty"`
	CompletedAt      *time.Time    `json:"completed_at,omitempty"`
	DurationMinutes  int           `json:"duration_minutes"`
	TotalQuestions   *int          `json:"total_questions,omitempty"`
	CorrectAnswers   *int          `json:"correct_answers,omitempty"`
	Score            *int          `json:"score,omitempty"`
	TimeTakenMinutes *int          `json:"time_taken_minutes,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
}

// CanStart reports whether the start transition is allowed.
func (s *QuizSession) CanStart() bool {
	return s.Status == SessionStatusNotStarted
}

// CanSubmit reports whether the submit transition is allowed. The automatic
// zero-time submit goes through the same guard as a user submit.
func (s *QuizSession) CanSubmit() bool {
	return s.Status == SessionStatusActive
}

// Deadline returns the wall-clock moment the session times out. The zero time
// is returned for sessions that have not started.
func (s *QuizSession) Deadline() time.Time {
	if s.StartedAt == nil {
		return time.Time{}
	}
	return s.StartedAt.Add(time.Duration(s.DurationMinutes) * time.Minute)
}

// Remaining returns the time left on the countdown at the given instant,
// clamped at zero. Sessions that have not started have their full allotment.
func (s *QuizSession) Remaining(now time.Time) time.Duration {
	if s.StartedAt == nil {
		return time.Duration(s.DurationMinutes) * time.Minute
	}
	rem := s.Deadline().Sub(now)
	if rem < 0 {
		return 0
	}
	return rem
}

// SessionState is the rehydration read model sent to a reconnecting client:
// everything needed to restore the quiz UI mid-attempt.
type SessionState struct {
	SessionID        uuid.UUID               `json:"session_id"`
	Status           SessionStatus           `json:"status"`
	RemainingSeconds float64                 `json:"remaining_seconds"`
	Answers          map[string]AnswerOption `json:"answers"`
	MarkedForReview  []string                `json:"marked_for_review"`
}

// RecordAnswerRequest is the payload for selecting an option.
type RecordAnswerRequest struct {
	QuestionID     uuid.UUID `json:"question_id" binding:"required"`
	SelectedAnswer string    `json:"selected_answer" binding:"required,oneof=A B C D"`
}
