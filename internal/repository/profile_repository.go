package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Ayushant/skillspan-hub/internal/model"
)

var ErrDuplicateEmail = errors.New("profile with this email already exists")

const profileColumns = `id, email, full_name, role, university_id, password_hash, created_at, updated_at`

// ProfileRepository handles user profile data access.
type ProfileRepository struct {
	pool *pgxpool.Pool
}

// NewProfileRepository creates a new ProfileRepository.
func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

func scanProfile(row interface{ Scan(...any) error }) (*model.Profile, error) {
	p := &model.Profile{}
	err := row.Scan(&p.ID, &p.Email, &p.FullName, &p.Role, &p.UniversityID, &p.PasswordHash, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetByID retrieves a profile by its UUID.
func (r *ProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	return scanProfile(r.pool.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id))
}

// GetByEmail retrieves a profile by its unique email.
func (r *ProfileRepository) GetByEmail(ctx context.Context, email string) (*model.Profile, error) {
	return scanProfile(r.pool.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE email = $1`, email))
}

// Create inserts a new profile.
func (r *ProfileRepository) Create(ctx context.Context, p *model.Profile) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO profiles (email, full_name, role, university_id, password_hash)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		p.Email, p.FullName, p.Role, p.UniversityID, p.PasswordHash,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	return err
}

// ListStudentsByUniversity retrieves student profiles of one university with
// their license usernames, paginated.
type StudentRow struct {
	model.Profile
	Username      string `json:"username"`
	LicenseActive bool   `json:"license_active"`
}

func (r *ProfileRepository) ListStudentsByUniversity(ctx context.Context, universityID uuid.UUID, limit, offset int) ([]StudentRow, int, error) {
	var total int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM profiles WHERE university_id = $1 AND role = $2`,
		universityID, model.RoleStudent,
	).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT p.id, p.email, p.full_name, p.role, p.university_id, p.password_hash, p.created_at, p.updated_at,
		        COALESCE(l.username, ''), COALESCE(l.is_active, FALSE)
		 FROM profiles p
		 LEFT JOIN student_licenses l ON l.student_id = p.id
		 WHERE p.university_id = $1 AND p.role = $2
		 ORDER BY p.full_name ASC
		 LIMIT $3 OFFSET $4`,
		universityID, model.RoleStudent, limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	students := []StudentRow{}
	for rows.Next() {
		var s StudentRow
		if err := rows.Scan(
			&s.ID, &s.Email, &s.FullName, &s.Role, &s.UniversityID, &s.PasswordHash, &s.CreatedAt, &s.UpdatedAt,
			&s.Username, &s.LicenseActive,
		); err != nil {
			return nil, 0, err
		}
		students = append(students, s)
	}
	return students, total, rows.Err()
}

// TouchLastLogin stamps the student's license row on successful login.
func (r *ProfileRepository) TouchLastLogin(ctx context.Context, studentID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE student_licenses SET last_login = NOW() WHERE student_id = $1`, studentID)
	return err
}

// isUniqueViolation reports whether err is a PostgreSQL unique constraint error.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
