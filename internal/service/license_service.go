package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Ayushant/skillspan-hub/internal/model"
	"github.com/Ayushant/skillspan-hub/internal/repository"
)

// Common licensing errors.
var (
	ErrNoLicensePackage  = errors.New("university has no usable license package")
	ErrLicensesExhausted = errors.New("all licenses of the package are in use")
	ErrEmailTaken        = errors.New("email is already registered")
	ErrUsernameTaken     = errors.New("username is already taken")
)

// LicenseService handles license packages and student provisioning. Creating
// a student consumes one seat; the whole sequence runs in a single
// transaction so a failure never leaves a half-provisioned account or a
// phantom-consumed seat.
type LicenseService struct {
	pool        *pgxpool.Pool
	licenseRepo *repository.LicenseRepository
	profileRepo *repository.ProfileRepository
	authService *AuthService
}

// NewLicenseService creates a new LicenseService.
func NewLicenseService(
	pool *pgxpool.Pool,
	licenseRepo *repository.LicenseRepository,
	profileRepo *repository.ProfileRepository,
	authService *AuthService,
) *LicenseService {
	return &LicenseService{pool: pool, licenseRepo: licenseRepo, profileRepo: profileRepo, authService: authService}
}

// ListStudents returns a university's provisioned students with their seat
// usernames, paginated.
func (s *LicenseService) ListStudents(ctx context.Context, universityID uuid.UUID, limit, offset int) ([]repository.StudentRow, int, error) {
	return s.profileRepo.ListStudentsByUniversity(ctx, universityID, limit, offset)
}

// IssuePackage grants a university a new block of seats.
func (s *LicenseService) IssuePackage(ctx context.Context, universityID, createdBy uuid.UUID, req *model.IssueLicensePackageRequest) (*model.LicensePackage, error) {
	p := &model.LicensePackage{
		UniversityID:    universityID,
		TotalLicenses:   req.TotalLicenses,
		PricePerLicense: req.PricePerLicense,
		Status:          model.UniversityStatusActive,
		ExpiresAt:       time.Now().AddDate(0, 0, req.ExpiryDays),
		CreatedBy:       &createdBy,
	}
	if err := s.licenseRepo.CreatePackage(ctx, p); err != nil {
		return nil, fmt.Errorf("create license package: %w", err)
	}
	return p, nil
}

// ListPackages returns a university's packages.
func (s *LicenseService) ListPackages(ctx context.Context, universityID uuid.UUID) ([]model.LicensePackage, error) {
	return s.licenseRepo.ListPackages(ctx, universityID)
}

// ProvisionStudent creates a student account against the university's oldest
// usable license package. Profile creation, seat assignment, and the used
// counter increment commit together or not at all.
func (s *LicenseService) ProvisionStudent(ctx context.Context, universityID uuid.UUID, req *model.ProvisionStudentRequest) (*model.Profile, error) {
	passwordHash, err := s.authService.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin provisioning: %w", err)
	}
	defer tx.Rollback(ctx)

	// Lock the oldest package that still has seats. FOR UPDATE serializes
	// concurrent provisioning against the same package.
	var packageID uuid.UUID
	err = tx.QueryRow(ctx,
		`SELECT id FROM license_packages
		 WHERE university_id = $1 AND status = $2
		   AND used_licenses < total_licenses
		   AND (expires_at IS NULL OR expires_at > NOW())
		 ORDER BY created_at ASC
		 LIMIT 1
		 FOR UPDATE`,
		universityID, model.UniversityStatusActive,
	).Scan(&packageID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Distinguish "no package" from "all seats taken" for the
			// admin-facing error.
			var exists bool
			if checkErr := s.pool.QueryRow(ctx,
				`SELECT EXISTS(
					SELECT 1 FROM license_packages
					WHERE university_id = $1 AND status = $2
					  AND (expires_at IS NULL OR expires_at > NOW())
				)`,
				universityID, model.UniversityStatusActive,
			).Scan(&exists); checkErr == nil && exists {
				return nil, ErrLicensesExhausted
			}
			return nil, ErrNoLicensePackage
		}
		return nil, fmt.Errorf("lock license package: %w", err)
	}

	profile := &model.Profile{
		Email:        req.Email,
		FullName:     req.FullName,
		Role:         model.RoleStudent,
		UniversityID: &universityID,
		PasswordHash: passwordHash,
	}
	err = tx.QueryRow(ctx,
		`INSERT INTO profiles (email, full_name, role, university_id, password_hash)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		profile.Email, profile.FullName, profile.Role, profile.UniversityID, profile.PasswordHash,
	).Scan(&profile.ID, &profile.CreatedAt, &profile.UpdatedAt)
	if err != nil {
		if constraintViolated(err, "profiles_email_key") {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create profile: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO student_licenses (student_id, university_id, license_package_id, username, is_active)
		 VALUES ($1, $2, $3, $4, TRUE)`,
		profile.ID, universityID, packageID, req.Username)
	if err != nil {
		if constraintViolated(err, "student_licenses_username_key") {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("assign seat: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE license_packages SET used_licenses = used_licenses + 1 WHERE id = $1`,
		packageID); err != nil {
		return nil, fmt.Errorf("consume seat: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit provisioning: %w", err)
	}
	return profile, nil
}

// StudentLicense returns a student's seat, scoped to the acting admin's
// university so one admin never reaches into another's roster.
func (s *LicenseService) StudentLicense(ctx context.Context, universityID, studentID uuid.UUID) (*model.StudentLicense, error) {
	license, err := s.licenseRepo.GetLicenseByStudent(ctx, studentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get student license: %w", err)
	}
	if license.UniversityID != universityID {
		return nil, repository.ErrNotFound
	}
	return license, nil
}

// RemoveStudent deletes a student account and frees its seat, again in one
// transaction. The student's sessions and answers go with it.
func (s *LicenseService) RemoveStudent(ctx context.Context, universityID, studentID uuid.UUID) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin removal: %w", err)
	}
	defer tx.Rollback(ctx)

	var packageID uuid.UUID
	err = tx.QueryRow(ctx,
		`DELETE FROM student_licenses
		 WHERE student_id = $1 AND university_id = $2
		 RETURNING license_package_id`,
		studentID, universityID,
	).Scan(&packageID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.ErrNotFound
		}
		return fmt.Errorf("release seat: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE license_packages
		 SET used_licenses = GREATEST(used_licenses - 1, 0)
		 WHERE id = $1`,
		packageID); err != nil {
		return fmt.Errorf("free seat counter: %w", err)
	}

	res, err := tx.Exec(ctx,
		`DELETE FROM profiles WHERE id = $1 AND university_id = $2 AND role = $3`,
		studentID, universityID, model.RoleStudent)
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	// Kick the account off any device it is still logged in on.
	return s.authService.ResetStudentSession(ctx, studentID)
}

// constraintViolated reports whether err is a unique violation on the named
// constraint.
func constraintViolated(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == constraint
}
