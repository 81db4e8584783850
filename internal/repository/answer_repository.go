package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Ayushant/skillspan-hub/internal/model"
)

// AnswerRepository is the answer ledger: one row per (session, question),
// maintained with last-write-wins upserts.
type AnswerRepository struct {
	pool *pgxpool.Pool
}

// NewAnswerRepository creates a new AnswerRepository.
func NewAnswerRepository(pool *pgxpool.Pool) *AnswerRepository {
	return &AnswerRepository{pool: pool}
}

// UpsertSelection records the selected option for a question. Repeating the
// call overwrites the selection but preserves the review flag.
func (r *AnswerRepository) UpsertSelection(ctx context.Context, sessionID, questionID uuid.UUID, option model.AnswerOption) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO quiz_answers (session_id, question_id, selected_answer, answered_at)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (session_id, question_id) DO UPDATE
		 SET selected_answer = EXCLUDED.selected_answer, answered_at = NOW()`,
		sessionID, questionID, option)
	return err
}

// ToggleReview flips the review flag for a question, preserving any existing
// selection. A row is created if the question was never touched.
func (r *AnswerRepository) ToggleReview(ctx context.Context, sessionID, questionID uuid.UUID) (bool, error) {
	var marked bool
	err := r.pool.QueryRow(ctx,
		`INSERT INTO quiz_answers (session_id, question_id, marked_for_review)
		 VALUES ($1, $2, TRUE)
		 ON CONFLICT (session_id, question_id) DO UPDATE
		 SET marked_for_review = NOT quiz_answers.marked_for_review
		 RETURNING marked_for_review`,
		sessionID, questionID,
	).Scan(&marked)
	return marked, err
}

// ListBySession retrieves all ledger rows of a session. Order is irrelevant
// to scoring; the unique index guarantees one row per question.
func (r *AnswerRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]model.Answer, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, session_id, question_id, selected_answer, marked_for_review, is_correct, answered_at
		 FROM quiz_answers
		 WHERE session_id = $1`,
		sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var answers []model.Answer
	for rows.Next() {
		var a model.Answer
		if err := rows.Scan(&a.ID, &a.SessionID, &a.QuestionID, &a.SelectedAnswer, &a.MarkedForReview, &a.IsCorrect, &a.AnsweredAt); err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

// BulkUpsertSelections writes a whole set of selections in one round trip,
// used at submit time to make the ledger authoritative before grading
// verdicts are stamped. Review flags on existing rows are preserved.
func (r *AnswerRepository) BulkUpsertSelections(ctx context.Context, sessionID uuid.UUID, questionIDs []uuid.UUID, options []string) error {
	if len(questionIDs) == 0 {
		return nil
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO quiz_answers (session_id, question_id, selected_answer, answered_at)
		 SELECT $1, u.question_id, u.selected_answer, NOW()
		 FROM UNNEST($2::uuid[], $3::text[]) AS u (question_id, selected_answer)
		 ON CONFLICT (session_id, question_id) DO UPDATE
		 SET selected_answer = EXCLUDED.selected_answer, answered_at = NOW()`,
		sessionID, questionIDs, options)
	return err
}

// StampCorrectness bulk-writes the per-answer correctness verdicts computed
// at submit time, using the UNNEST pattern for a single round trip.
func (r *AnswerRepository) StampCorrectness(ctx context.Context, sessionID uuid.UUID, questionIDs []uuid.UUID, verdicts []bool) error {
	if len(questionIDs) == 0 {
		return nil
	}
	_, err := r.pool.Exec(ctx,
		`UPDATE quiz_answers AS a
		 SET is_correct = v.is_correct
		 FROM (
			SELECT u.question_id, u.is_correct
			FROM UNNEST($1::uuid[], $2::bool[]) AS u (question_id, is_correct)
		 ) AS v
		 WHERE a.session_id = $3 AND a.question_id = v.question_id`,
		questionIDs, verdicts, sessionID)
	return err
}
