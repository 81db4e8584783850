package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Ayushant/skillspan-hub/internal/model"
	"github.com/Ayushant/skillspan-hub/internal/repository"
)

// DefaultTrialDays is the license window granted when creation omits one.
const DefaultTrialDays = 7

// UniversityService handles the super-admin university lifecycle. Creation
// provisions the university, its admin account, and the initial license
// package in a single transaction.
type UniversityService struct {
	pool           *pgxpool.Pool
	universityRepo *repository.UniversityRepository
	authService    *AuthService
}

// NewUniversityService creates a new UniversityService.
func NewUniversityService(pool *pgxpool.Pool, universityRepo *repository.UniversityRepository, authService *AuthService) *UniversityService {
	return &UniversityService{pool: pool, universityRepo: universityRepo, authService: authService}
}

// Create provisions a new university with its admin and first seat block.
func (s *UniversityService) Create(ctx context.Context, createdBy uuid.UUID, req *model.CreateUniversityRequest) (*model.University, error) {
	passwordHash, err := s.authService.HashPassword(req.AdminPassword)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	expiryDays := req.ExpiryDays
	if expiryDays == 0 {
		expiryDays = DefaultTrialDays
	}
	licenseExpiry := time.Now().AddDate(0, 0, expiryDays)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin creation: %w", err)
	}
	defer tx.Rollback(ctx)

	u := &model.University{
		Name:          req.Name,
		LicenseLimit:  req.LicenseLimit,
		LicenseExpiry: licenseExpiry,
		Status:        model.UniversityStatusActive,
	}
	err = tx.QueryRow(ctx,
		`INSERT INTO universities (name, license_limit, license_expiry, status)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		u.Name, u.LicenseLimit, u.LicenseExpiry, u.Status,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create university: %w", err)
	}

	var adminID uuid.UUID
	err = tx.QueryRow(ctx,
		`INSERT INTO profiles (email, full_name, role, university_id, password_hash)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		req.AdminEmail, req.AdminName, model.RoleUniversityAdmin, u.ID, passwordHash,
	).Scan(&adminID)
	if err != nil {
		if constraintViolated(err, "profiles_email_key") {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create admin: %w", err)
	}
	u.AdminID = &adminID

	if _, err := tx.Exec(ctx,
		`UPDATE universities SET admin_id = $1 WHERE id = $2`, adminID, u.ID); err != nil {
		return nil, fmt.Errorf("bind admin: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO license_packages (university_id, total_licenses, used_licenses, status, expires_at, created_by)
		 VALUES ($1, $2, 0, $3, $4, $5)`,
		u.ID, req.LicenseLimit, model.UniversityStatusActive, licenseExpiry, createdBy); err != nil {
		return nil, fmt.Errorf("issue initial package: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit creation: %w", err)
	}
	return u, nil
}

// Get retrieves one university.
func (s *UniversityService) Get(ctx context.Context, id uuid.UUID) (*model.University, error) {
	return s.universityRepo.GetByID(ctx, id)
}

// List retrieves all universities, paginated.
func (s *UniversityService) List(ctx context.Context, limit, offset int) ([]model.University, int, error) {
	return s.universityRepo.List(ctx, limit, offset)
}

// Update applies mutable fields. Empty request fields keep their stored value.
func (s *UniversityService) Update(ctx context.Context, id uuid.UUID, req *model.UpdateUniversityRequest) (*model.University, error) {
	u, err := s.universityRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		u.Name = req.Name
	}
	if req.LicenseLimit != nil {
		u.LicenseLimit = *req.LicenseLimit
	}
	if req.Status != "" {
		u.Status = req.Status
	}

	if err := s.universityRepo.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("update university: %w", err)
	}
	return u, nil
}

// Delete removes a university and everything under it. The whole subtree
// (admin, students, licenses, sessions, answers) goes in one transaction.
func (s *UniversityService) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin deletion: %w", err)
	}
	defer tx.Rollback(ctx)

	// Sessions and answers cascade from profiles; license rows cascade from
	// packages. Profiles must go first because universities.admin_id
	// restricts deletion.
	if _, err := tx.Exec(ctx,
		`UPDATE universities SET admin_id = NULL WHERE id = $1`, id); err != nil {
		return fmt.Errorf("unbind admin: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`DELETE FROM profiles WHERE university_id = $1`, id); err != nil {
		return fmt.Errorf("delete profiles: %w", err)
	}

	res, err := tx.Exec(ctx, `DELETE FROM universities WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete university: %w", err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return tx.Commit(ctx)
}

// ExpireOverdue flips every active university whose license window has
// passed to expired. Returns the number changed; the licensing sweep calls
// this periodically.
func (s *UniversityService) ExpireOverdue(ctx context.Context) (int64, error) {
	res, err := s.pool.Exec(ctx,
		`UPDATE universities
		 SET status = $1, updated_at = NOW()
		 WHERE status = $2 AND license_expiry < NOW()`,
		model.UniversityStatusExpired, model.UniversityStatusActive)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected(), nil
}
