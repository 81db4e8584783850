package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Ayushant/skillspan-hub/internal/model"
)

const sessionColumns = `id, student_id, university_id, status, started_at, completed_at, duration_minutes,
	total_questions, correct_answers, score, time_taken_minutes, created_at`

// SessionResult combines a session with the attempting student's identity,
// as listed on admin screens.
type SessionResult struct {
	model.QuizSession
	StudentName  string `json:"student_name"`
	StudentEmail string `json:"student_email"`
}

// SessionRepository handles quiz session data access.
type SessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

func scanSession(row interface{ Scan(...any) error }) (*model.QuizSession, error) {
	s := &model.QuizSession{}
	err := row.Scan(&s.ID, &s.StudentID, &s.UniversityID, &s.Status, &s.StartedAt, &s.CompletedAt,
		&s.DurationMinutes, &s.TotalQuestions, &s.CorrectAnswers, &s.Score, &s.TimeTakenMinutes, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetByID retrieves a session by its UUID.
func (r *SessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.QuizSession, error) {
	return scanSession(r.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM quiz_sessions WHERE id = $1`, id))
}

// GetCurrentByStudent retrieves the student's single non-terminal session.
// A partial unique index guarantees at most one exists.
func (r *SessionRepository) GetCurrentByStudent(ctx context.Context, studentID uuid.UUID) (*model.QuizSession, error) {
	return scanSession(r.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+`
		 FROM quiz_sessions
		 WHERE student_id = $1 AND status IN ($2, $3)`,
		studentID, model.SessionStatusNotStarted, model.SessionStatusActive))
}

// Grant creates a not_started session for one student. The partial unique
// index on (student_id) over non-terminal states makes the grant idempotent:
// a second grant while one is open is silently skipped.
func (r *SessionRepository) Grant(ctx context.Context, studentID, universityID uuid.UUID, durationMinutes int) (*model.QuizSession, error) {
	return scanSession(r.pool.QueryRow(ctx,
		`INSERT INTO quiz_sessions (student_id, university_id, status, duration_minutes)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (student_id) WHERE status IN ('not_started', 'active') DO NOTHING
		 RETURNING `+sessionColumns,
		studentID, universityID, model.SessionStatusNotStarted, durationMinutes))
}

// GrantForUniversity creates not_started sessions for every actively licensed
// student of a university, skipping students who already hold an open session.
// Returns the number of sessions created.
func (r *SessionRepository) GrantForUniversity(ctx context.Context, universityID uuid.UUID, durationMinutes int) (int64, error) {
	res, err := r.pool.Exec(ctx,
		`INSERT INTO quiz_sessions (student_id, university_id, status, duration_minutes)
		 SELECT l.student_id, l.university_id, $1, $2
		 FROM student_licenses l
		 WHERE l.university_id = $3 AND l.is_active
		 ON CONFLICT (student_id) WHERE status IN ('not_started', 'active') DO NOTHING`,
		model.SessionStatusNotStarted, durationMinutes, universityID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected(), nil
}

// Start transitions a session from not_started to active and stamps
// started_at. Returns false if the session was not in not_started.
func (r *SessionRepository) Start(ctx context.Context, id uuid.UUID) (*time.Time, bool, error) {
	var startedAt time.Time
	err := r.pool.QueryRow(ctx,
		`UPDATE quiz_sessions
		 SET status = $1, started_at = NOW()
		 WHERE id = $2 AND status = $3
		 RETURNING started_at`,
		model.SessionStatusActive, id, model.SessionStatusNotStarted,
	).Scan(&startedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return &startedAt, true, nil
}

// Outcome carries the result fields written by a terminal transition.
type Outcome struct {
	Status         model.SessionStatus
	TotalQuestions int
	CorrectAnswers int
	Score          int
}

// Finish moves an active session to the terminal state in the outcome and
// records its result fields. The guard on status='active' makes a second
// submit a no-op: ok is false when no transition happened.
func (r *SessionRepository) Finish(ctx context.Context, id uuid.UUID, out Outcome) (*model.QuizSession, bool, error) {
	s, err := scanSession(r.pool.QueryRow(ctx,
		`UPDATE quiz_sessions
		 SET status = $1, completed_at = NOW(),
		     total_questions = $2, correct_answers = $3, score = $4,
		     time_taken_minutes = CEIL(EXTRACT(EPOCH FROM (NOW() - started_at)) / 60)
		 WHERE id = $5 AND status = $6
		 RETURNING `+sessionColumns,
		out.Status, out.TotalQuestions, out.CorrectAnswers, out.Score, id, model.SessionStatusActive))
	if err != nil {
		if isNoRows(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return s, true, nil
}

// ListOverdue retrieves active sessions whose deadline has passed, oldest
// first, for the expiry sweep.
func (r *SessionRepository) ListOverdue(ctx context.Context, limit int) ([]model.QuizSession, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+sessionColumns+`
		 FROM quiz_sessions
		 WHERE status = $1 AND started_at + duration_minutes * INTERVAL '1 minute' < NOW()
		 ORDER BY started_at ASC
		 LIMIT $2`,
		model.SessionStatusActive, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []model.QuizSession
	for rows.Next() {
		var s model.QuizSession
		if err := rows.Scan(&s.ID, &s.StudentID, &s.UniversityID, &s.Status, &s.StartedAt, &s.CompletedAt,
			&s.DurationMinutes, &s.TotalQuestions, &s.CorrectAnswers, &s.Score, &s.TimeTakenMinutes, &s.CreatedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// ListActiveByUniversity retrieves every active session of one university,
// used by the bulk force-stop.
func (r *SessionRepository) ListActiveByUniversity(ctx context.Context, universityID uuid.UUID) ([]model.QuizSession, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+sessionColumns+`
		 FROM quiz_sessions
		 WHERE university_id = $1 AND status = $2`,
		universityID, model.SessionStatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []model.QuizSession
	for rows.Next() {
		var s model.QuizSession
		if err := rows.Scan(&s.ID, &s.StudentID, &s.UniversityID, &s.Status, &s.StartedAt, &s.CompletedAt,
			&s.DurationMinutes, &s.TotalQuestions, &s.CorrectAnswers, &s.Score, &s.TimeTakenMinutes, &s.CreatedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// ListByUniversity retrieves sessions of one university with student names,
// optionally filtered by status, newest first, paginated.
func (r *SessionRepository) ListByUniversity(ctx context.Context, universityID uuid.UUID, status *model.SessionStatus, page, perPage int) ([]SessionResult, int64, error) {
	offset := (page - 1) * perPage

	baseQuery := `
		FROM quiz_sessions s
		JOIN profiles p ON s.student_id = p.id
		WHERE s.university_id = $1
	`
	args := []any{universityID}

	if status != nil {
		args = append(args, *status)
		baseQuery += fmt.Sprintf(" AND s.status = $%d", len(args))
	}

	var total int64
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) "+baseQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT s.id, s.student_id, s.university_id, s.status, s.started_at, s.completed_at, s.duration_minutes,
		       s.total_questions, s.correct_answers, s.score, s.time_taken_minutes, s.created_at,
		       p.full_name, p.email
		` + baseQuery + `
		ORDER BY s.created_at DESC
		LIMIT $` + fmt.Sprintf("%d", len(args)+1) + ` OFFSET $` + fmt.Sprintf("%d", len(args)+2)
	args = append(args, perPage, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	results := []SessionResult{}
	for rows.Next() {
		var res SessionResult
		if err := rows.Scan(
			&res.ID, &res.StudentID, &res.UniversityID, &res.Status, &res.StartedAt, &res.CompletedAt,
			&res.DurationMinutes, &res.TotalQuestions, &res.CorrectAnswers, &res.Score, &res.TimeTakenMinutes,
			&res.CreatedAt, &res.StudentName, &res.StudentEmail,
		); err != nil {
			return nil, 0, err
		}
		results = append(results, res)
	}
	return results, total, rows.Err()
}

// ListFinishedByStudent retrieves a student's terminal attempts, newest
// first. Both completed and expired rows count: a late submit that lost the
// race against the deadline sweep must still find its graded result.
func (r *SessionRepository) ListFinishedByStudent(ctx context.Context, studentID uuid.UUID) ([]model.QuizSession, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+sessionColumns+`
		 FROM quiz_sessions
		 WHERE student_id = $1 AND status IN ($2, $3)
		 ORDER BY completed_at DESC`,
		studentID, model.SessionStatusCompleted, model.SessionStatusExpired)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []model.QuizSession
	for rows.Next() {
		var s model.QuizSession
		if err := rows.Scan(&s.ID, &s.StudentID, &s.UniversityID, &s.Status, &s.StartedAt, &s.CompletedAt,
			&s.DurationMinutes, &s.TotalQuestions, &s.CorrectAnswers, &s.Score, &s.TimeTakenMinutes, &s.CreatedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}
