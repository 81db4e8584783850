package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionAnswer Action = "answer"
	ActionReview Action = "review"
	ActionSubmit Action = "submit"
	ActionPing   Action = "ping"
)

// RequestPayload is the single client message shape. Fields beyond Action
// are meaningful only for the actions that use them.
type RequestPayload struct {
	Action     Action `json:"action"`
	QuestionID string `json:"question_id,omitempty"`
	Answer     string `json:"answer,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError  Event = "error"
	EventSaved  Event = "saved"
	EventReview Event = "review"
	EventGraded Event = "graded"
	EventTick   Event = "tick"
	EventPong   Event = "pong"
)

// SavedResponse acknowledges a recorded selection.
type SavedResponse struct {
	Event      Event  `json:"event"`
	QuestionID string `json:"question_id"`
}

// ReviewResponse carries the new review flag value after a toggle.
type ReviewResponse struct {
	Event      Event  `json:"event"`
	QuestionID string `json:"question_id"`
	Marked     bool   `json:"marked"`
}

// GradedResponse delivers the final result after a submit, including the
// automatic submit fired when the countdown reaches zero.
type GradedResponse struct {
	Event          Event  `json:"event"`
	Status         string `json:"status"`
	Score          int    `json:"score"`
	CorrectAnswers int    `json:"correct_answers"`
	TotalQuestions int    `json:"total_questions"`
}

// TickResponse is the once-per-second server countdown broadcast.
type TickResponse struct {
	Event            Event   `json:"event"`
	RemainingSeconds float64 `json:"remaining_seconds"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
