package model

import (
	"time"

	"github.com/google/uuid"
)

// LicensePackage represents a block of purchased student seats.
type LicensePackage struct {
	ID              uuid.UUID        `json:"id"`
	UniversityID    uuid.UUID        `json:"university_id"`
	TotalLicenses   int              `json:"total_licenses"`
	UsedLicenses    int              `json:"used_licenses"`
	PricePerLicense float64          `json:"price_per_license"`
	Status          UniversityStatus `json:"status"`
	ExpiresAt       time.Time        `json:"expires_at"`
	CreatedBy       *uuid.UUID       `json:"created_by,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
}

// Available returns the number of unassigned seats in this package.
func (p *LicensePackage) Available() int {
	return p.TotalLicenses - p.UsedLicenses
}

// StudentLicense is one consumed seat, binding a student profile to a package.
type StudentLicense struct {
	ID               uuid.UUID  `json:"id"`
	StudentID        uuid.UUID  `json:"student_id"`
	UniversityID     uuid.UUID  `json:"university_id"`
	LicensePackageID uuid.UUID  `json:"license_package_id"`
	Username         string     `json:"username"`
	IsActive         bool       `json:"is_active"`
	LastLogin        *time.Time `json:"last_login,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// IssueLicensePackageRequest is the payload for issuing seats to a university.
type IssueLicensePackageRequest struct {
	TotalLicenses   int     `json:"total_licenses" binding:"required,min=1,max=100000"`
	PricePerLicense float64 `json:"price_per_license" binding:"omitempty,min=0"`
	ExpiryDays      int     `json:"expiry_days" binding:"required,min=1,max=3650"`
}

// ProvisionStudentRequest is the payload for creating a licensed student.
type ProvisionStudentRequest struct {
	FullName string `json:"full_name" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=128"`
	Username string `json:"username" binding:"required,min=4,max=40"`
}
