package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Ayushant/skillspan-hub/internal/model"
)

const packageColumns = `id, university_id, total_licenses, used_licenses, price_per_license, status, expires_at, created_by, created_at`

// LicenseRepository handles license package and seat data access. The
// seat-consuming provisioning path runs inside a transaction owned by the
// license service; this repository covers the plain reads and issuance.
type LicenseRepository struct {
	pool *pgxpool.Pool
}

// NewLicenseRepository creates a new LicenseRepository.
func NewLicenseRepository(pool *pgxpool.Pool) *LicenseRepository {
	return &LicenseRepository{pool: pool}
}

// CreatePackage issues a new block of seats to a university.
func (r *LicenseRepository) CreatePackage(ctx context.Context, p *model.LicensePackage) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO license_packages (university_id, total_licenses, used_licenses, price_per_license, status, expires_at, created_by)
		 VALUES ($1, $2, 0, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		p.UniversityID, p.TotalLicenses, p.PricePerLicense, model.UniversityStatusActive, p.ExpiresAt, p.CreatedBy,
	).Scan(&p.ID, &p.CreatedAt)
}

// ListPackages retrieves a university's packages, newest first.
func (r *LicenseRepository) ListPackages(ctx context.Context, universityID uuid.UUID) ([]model.LicensePackage, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+packageColumns+`
		 FROM license_packages
		 WHERE university_id = $1
		 ORDER BY created_at DESC`,
		universityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	packages := []model.LicensePackage{}
	for rows.Next() {
		var p model.LicensePackage
		if err := rows.Scan(&p.ID, &p.UniversityID, &p.TotalLicenses, &p.UsedLicenses, &p.PricePerLicense,
			&p.Status, &p.ExpiresAt, &p.CreatedBy, &p.CreatedAt); err != nil {
			return nil, err
		}
		packages = append(packages, p)
	}
	return packages, rows.Err()
}

// GetLicenseByStudent retrieves a student's seat, if any.
func (r *LicenseRepository) GetLicenseByStudent(ctx context.Context, studentID uuid.UUID) (*model.StudentLicense, error) {
	l := &model.StudentLicense{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, student_id, university_id, license_package_id, username, is_active, last_login, created_at
		 FROM student_licenses WHERE student_id = $1`,
		studentID,
	).Scan(&l.ID, &l.StudentID, &l.UniversityID, &l.LicensePackageID, &l.Username, &l.IsActive, &l.LastLogin, &l.CreatedAt)
	if err != nil {
		return nil, err
	}
	return l, nil
}
