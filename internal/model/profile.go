package model

import (
	"time"

	"github.com/google/uuid"
)

// Profile represents a platform user of any role.
type Profile struct {
	ID           uuid.UUID  `json:"id"`
	Email        string     `json:"email"`
	FullName     string     `json:"full_name"`
	Role         Role       `json:"role"`
	UniversityID *uuid.UUID `json:"university_id,omitempty"`
	PasswordHash string     `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Principal derives the explicit principal object for this profile.
func (p *Profile) Principal() Principal {
	return Principal{
		ID:           p.ID,
		Role:         p.Role,
		UniversityID: p.UniversityID,
	}
}

// LoginRequest is the payload for authentication, any role.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

// LoginResponse is returned after successful login.
type LoginResponse struct {
	Token   string  `json:"token"`
	Profile Profile `json:"profile"`
}
