package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Ayushant/skillspan-hub/internal/model"
)

const universityColumns = `id, name, admin_id, license_limit, license_expiry, status, created_at, updated_at`

// UniversityRepository handles university data access.
type UniversityRepository struct {
	pool *pgxpool.Pool
}

// NewUniversityRepository creates a new UniversityRepository.
func NewUniversityRepository(pool *pgxpool.Pool) *UniversityRepository {
	return &UniversityRepository{pool: pool}
}

func scanUniversity(row interface{ Scan(...any) error }) (*model.University, error) {
	u := &model.University{}
	err := row.Scan(&u.ID, &u.Name, &u.AdminID, &u.LicenseLimit, &u.LicenseExpiry, &u.Status, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// GetByID retrieves a university by its UUID.
func (r *UniversityRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.University, error) {
	return scanUniversity(r.pool.QueryRow(ctx,
		`SELECT `+universityColumns+` FROM universities WHERE id = $1`, id))
}

// GetByAdmin retrieves the university administered by the given profile.
func (r *UniversityRepository) GetByAdmin(ctx context.Context, adminID uuid.UUID) (*model.University, error) {
	return scanUniversity(r.pool.QueryRow(ctx,
		`SELECT `+universityColumns+` FROM universities WHERE admin_id = $1`, adminID))
}

// List retrieves all universities ordered by name, paginated.
func (r *UniversityRepository) List(ctx context.Context, limit, offset int) ([]model.University, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM universities`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+universityColumns+` FROM universities ORDER BY name ASC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	universities := []model.University{}
	for rows.Next() {
		var u model.University
		if err := rows.Scan(&u.ID, &u.Name, &u.AdminID, &u.LicenseLimit, &u.LicenseExpiry, &u.Status, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, 0, err
		}
		universities = append(universities, u)
	}
	return universities, total, rows.Err()
}

// Update applies the mutable fields of a university.
func (r *UniversityRepository) Update(ctx context.Context, u *model.University) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE universities
		 SET name = $1, license_limit = $2, status = $3, updated_at = NOW()
		 WHERE id = $4`,
		u.Name, u.LicenseLimit, u.Status, u.ID)
	return err
}

// SetStatus changes only the license standing of a university.
func (r *UniversityRepository) SetStatus(ctx context.Context, id uuid.UUID, status model.UniversityStatus) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE universities SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	return err
}

// Delete removes a university. Fails on FK violations if dependants exist.
func (r *UniversityRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := r.pool.Exec(ctx, `DELETE FROM universities WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() > 0, nil
}
