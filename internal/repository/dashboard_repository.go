package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Ayushant/skillspan-hub/internal/model"
)

// DashboardRepository handles aggregate queries backing the dashboards.
type DashboardRepository struct {
	pool *pgxpool.Pool
}

// NewDashboardRepository creates a new DashboardRepository.
func NewDashboardRepository(pool *pgxpool.Pool) *DashboardRepository {
	return &DashboardRepository{pool: pool}
}

// GetUniversityCounts retrieves the head-count metrics for one university.
func (r *DashboardRepository) GetUniversityCounts(ctx context.Context, universityID uuid.UUID) (totalStudents, activeLicenses int, err error) {
	err = r.pool.QueryRow(ctx,
		`SELECT
			(SELECT COUNT(*) FROM profiles WHERE university_id = $1 AND role = $2),
			(SELECT COUNT(*) FROM student_licenses WHERE university_id = $1 AND is_active)`,
		universityID, model.RoleStudent,
	).Scan(&totalStudents, &activeLicenses)
	return
}

// GetSessionStatusCounts retrieves the distribution of a university's
// sessions by status.
func (r *DashboardRepository) GetSessionStatusCounts(ctx context.Context, universityID uuid.UUID) (map[model.SessionStatus]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT status, COUNT(*) FROM quiz_sessions WHERE university_id = $1 GROUP BY status`,
		universityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[model.SessionStatus]int)
	for rows.Next() {
		var status model.SessionStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

// GetAverageScore retrieves the mean score over a university's completed
// sessions; nil when nothing has completed yet.
func (r *DashboardRepository) GetAverageScore(ctx context.Context, universityID uuid.UUID) (*float64, error) {
	var avg *float64
	err := r.pool.QueryRow(ctx,
		`SELECT AVG(score) FROM quiz_sessions WHERE university_id = $1 AND status = $2`,
		universityID, model.SessionStatusCompleted,
	).Scan(&avg)
	return avg, err
}

// GetLicenseUsage sums the seat pool of a university's active packages.
func (r *DashboardRepository) GetLicenseUsage(ctx context.Context, universityID uuid.UUID) (total, used int, err error) {
	err = r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(total_licenses), 0), COALESCE(SUM(used_licenses), 0)
		 FROM license_packages
		 WHERE university_id = $1 AND status = $2`,
		universityID, model.UniversityStatusActive,
	).Scan(&total, &used)
	return
}

// PlatformStats is the super-admin roll-up across all universities.
type PlatformStats struct {
	TotalUniversities int      `json:"total_universities"`
	TotalStudents     int      `json:"total_students"`
	TotalQuestions    int      `json:"total_questions"`
	CompletedSessions int      `json:"completed_sessions"`
	ActiveSessions    int      `json:"active_sessions"`
	AverageScore      *float64 `json:"average_score"`
}

// GetPlatformStats retrieves the platform-wide aggregates in one round trip.
func (r *DashboardRepository) GetPlatformStats(ctx context.Context) (*PlatformStats, error) {
	stats := &PlatformStats{}
	err := r.pool.QueryRow(ctx,
		`SELECT
			(SELECT COUNT(*) FROM universities),
			(SELECT COUNT(*) FROM profiles WHERE role = $1),
			(SELECT COUNT(*) FROM quiz_questions),
			(SELECT COUNT(*) FROM quiz_sessions WHERE status = $2),
			(SELECT COUNT(*) FROM quiz_sessions WHERE status = $3),
			(SELECT AVG(score) FROM quiz_sessions WHERE status = $2)`,
		model.RoleStudent, model.SessionStatusCompleted, model.SessionStatusActive,
	).Scan(&stats.TotalUniversities, &stats.TotalStudents, &stats.TotalQuestions,
		&stats.CompletedSessions, &stats.ActiveSessions, &stats.AverageScore)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// StudentStats summarizes one student's completed attempts.
type StudentStats struct {
	BestScore       *int     `json:"best_score"`
	AverageScore    *float64 `json:"average_score"`
	CompletedCount  int      `json:"completed_count"`
	LastCompletedAt *string  `json:"last_completed_at,omitempty"`
}

// GetStudentStats aggregates a student's finished sessions.
func (r *DashboardRepository) GetStudentStats(ctx context.Context, studentID uuid.UUID) (*StudentStats, error) {
	stats := &StudentStats{}
	err := r.pool.QueryRow(ctx,
		`SELECT MAX(score), ROUND(AVG(score)::numeric, 1), COUNT(*), TO_CHAR(MAX(completed_at), 'YYYY-MM-DD"T"HH24:MI:SS"Z"')
		 FROM quiz_sessions
		 WHERE student_id = $1 AND status = $2`,
		studentID, model.SessionStatusCompleted,
	).Scan(&stats.BestScore, &stats.AverageScore, &stats.CompletedCount, &stats.LastCompletedAt)
	if err != nil {
		return nil, err
	}
	return stats, nil
}
