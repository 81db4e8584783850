package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Ayushant/skillspan-hub/internal/model"
)

const questionColumns = `id, title, description, option_a, option_b, option_c, option_d, correct_answer, category, difficulty, created_at`

// QuestionRepository handles quiz question data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// List retrieves the fixed question set in authoring order. Every session
// works against this same ordered set.
func (r *QuestionRepository) List(ctx context.Context) ([]model.QuizQuestion, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+questionColumns+` FROM quiz_questions ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.QuizQuestion
	for rows.Next() {
		var q model.QuizQuestion
		if err := rows.Scan(&q.ID, &q.Title, &q.Description, &q.OptionA, &q.OptionB, &q.OptionC, &q.OptionD,
			&q.CorrectAnswer, &q.Category, &q.Difficulty, &q.CreatedAt); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// GetByID retrieves a single question.
func (r *QuestionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.QuizQuestion, error) {
	q := &model.QuizQuestion{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+questionColumns+` FROM quiz_questions WHERE id = $1`, id,
	).Scan(&q.ID, &q.Title, &q.Description, &q.OptionA, &q.OptionB, &q.OptionC, &q.OptionD,
		&q.CorrectAnswer, &q.Category, &q.Difficulty, &q.CreatedAt)
	if err != nil {
		return nil, err
	}
	return q, nil
}

// Create inserts a new question. Questions are immutable afterwards.
func (r *QuestionRepository) Create(ctx context.Context, q *model.QuizQuestion) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO quiz_questions (title, description, option_a, option_b, option_c, option_d, correct_answer, category, difficulty)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, created_at`,
		q.Title, q.Description, q.OptionA, q.OptionB, q.OptionC, q.OptionD, q.CorrectAnswer, q.Category, q.Difficulty,
	).Scan(&q.ID, &q.CreatedAt)
}

// Delete removes a question that is not yet referenced by any answer.
func (r *QuestionRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := r.pool.Exec(ctx, `DELETE FROM quiz_questions WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() > 0, nil
}

// Count returns the size of the question set.
func (r *QuestionRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM quiz_questions`).Scan(&n)
	return n, err
}
