package model

import (
	"time"

	"github.com/google/uuid"
)

// UniversityStatus enumerates the license standing of a university.
type UniversityStatus string

const (
	UniversityStatusActive    UniversityStatus = "active"
	UniversityStatusExpired   UniversityStatus = "expired"
	UniversityStatusSuspended UniversityStatus = "suspended"
)

// University represents a customer organization holding a license pool.
type University struct {
	ID            uuid.UUID        `json:"id"`
	Name          string           `json:"name"`
	AdminID       *uuid.UUID       `json:"admin_id,omitempty"`
	LicenseLimit  int              `json:"license_limit"`
	LicenseExpiry time.Time        `json:"license_expiry"`
	Status        UniversityStatus `json:"status"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// CreateUniversityRequest provisions a university together with its admin
// account in a single transaction.
type CreateUniversityRequest struct {
	Name          string `json:"name" binding:"required,min=2,max=255"`
	AdminEmail    string `json:"admin_email" binding:"required,email,max=255"`
	AdminName     string `json:"admin_name" binding:"required,min=2,max=100"`
	AdminPassword string `json:"admin_password" binding:"required,min=6,max=128"`
	LicenseLimit  int    `json:"license_limit" binding:"required,min=1,max=100000"`
	// ExpiryDays defaults to 7 when omitted, matching the trial window
	// granted on creation.
	ExpiryDays int `json:"expiry_days" binding:"omitempty,min=1,max=3650"`
}

// UpdateUniversityRequest is the payload for updating an existing university.
type UpdateUniversityRequest struct {
	Name         string           `json:"name" binding:"omitempty,min=2,max=255"`
	LicenseLimit *int             `json:"license_limit" binding:"omitempty,min=1,max=100000"`
	Status       UniversityStatus `json:"status" binding:"omitempty,oneof=active expired suspended"`
}
