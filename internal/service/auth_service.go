package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/Ayushant/skillspan-hub/internal/config"
	"github.com/Ayushant/skillspan-hub/internal/model"
	"github.com/Ayushant/skillspan-hub/internal/repository"
)

// Common auth errors.
var (
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrSessionAlreadyActive = errors.New("another session is already active, please contact admin to reset")
	ErrAccountSuspended     = errors.New("account is suspended")
)

// Claims extends JWT standard claims with app-specific fields.
type Claims struct {
	jwt.RegisteredClaims
	Role         model.Role `json:"role"`
	UserID       uuid.UUID  `json:"user_id"`
	UniversityID *uuid.UUID `json:"university_id,omitempty"` // Empty for super admins
}

// Principal converts the token claims into an explicit request principal.
func (c *Claims) Principal() model.Principal {
	return model.Principal{
		ID:           c.UserID,
		Role:         c.Role,
		UniversityID: c.UniversityID,
	}
}

// AuthService handles authentication, JWT, and login session management.
type AuthService struct {
	cfg          *config.Config
	rdb          *redis.Client
	profiles     *repository.ProfileRepository
	universities *repository.UniversityRepository
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	cfg *config.Config,
	rdb *redis.Client,
	profiles *repository.ProfileRepository,
	universities *repository.UniversityRepository,
) *AuthService {
	return &AuthService{cfg: cfg, rdb: rdb, profiles: profiles, universities: universities}
}

// HashPassword hashes a password with the configured bcrypt cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	return string(hash), err
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func (s *AuthService) CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// Login verifies credentials and issues a JWT. Students get a single-device
// session registered in Redis; admin logins are stateless.
func (s *AuthService) Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	profile, err := s.profiles.GetByEmail(ctx, req.Email)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}

	if err := s.CheckPassword(profile.PasswordHash, req.Password); err != nil {
		return nil, err
	}

	// Suspension is university-wide: a suspended or expired university
	// blocks both its admin and its students.
	if profile.UniversityID != nil {
		university, err := s.universities.GetByID(ctx, *profile.UniversityID)
		if err != nil {
			return nil, fmt.Errorf("get university: %w", err)
		}
		if university.Status != model.UniversityStatusActive {
			return nil, ErrAccountSuspended
		}
	}

	var token string
	if profile.Role == model.RoleStudent {
		token, err = s.generateStudentToken(ctx, profile)
	} else {
		token, err = s.generateAdminToken(profile)
	}
	if err != nil {
		return nil, err
	}

	if profile.Role == model.RoleStudent {
		if err := s.profiles.TouchLastLogin(ctx, profile.ID); err != nil {
			return nil, fmt.Errorf("touch last login: %w", err)
		}
	}

	return &model.LoginResponse{Token: token, Profile: *profile}, nil
}

// generateStudentToken creates a JWT for a student and registers the session
// in Redis. Returns an error if a session already exists (new logins are
// rejected until an admin resets the session).
func (s *AuthService) generateStudentToken(ctx context.Context, profile *model.Profile) (string, error) {
	sessionKey := config.CacheKey.StudentLoginKey(profile.ID.String())

	existing, err := s.rdb.Get(ctx, sessionKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("check session: %w", err)
	}
	if existing != "" {
		return "", ErrSessionAlreadyActive
	}

	jti := uuid.New().String()
	signed, err := s.sign(profile, jti)
	if err != nil {
		return "", err
	}

	// Store session in Redis with same expiry as JWT.
	if err := s.rdb.Set(ctx, sessionKey, jti, s.cfg.JWTExpiry).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}

	return signed, nil
}

// generateAdminToken creates a JWT for a university or super admin.
func (s *AuthService) generateAdminToken(profile *model.Profile) (string, error) {
	return s.sign(profile, uuid.New().String())
}

func (s *AuthService) sign(profile *model.Profile, jti string) (string, error) {
	now := time.Now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   profile.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
		},
		Role:         profile.Role,
		UserID:       profile.ID,
		UniversityID: profile.UniversityID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and validates a JWT, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}

// ValidateStudentSession checks that the token's JTI matches the active
// login session in Redis.
func (s *AuthService) ValidateStudentSession(ctx context.Context, studentID uuid.UUID, jti string) error {
	sessionKey := config.CacheKey.StudentLoginKey(studentID.String())
	stored, err := s.rdb.Get(ctx, sessionKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return errors.New("no active session")
		}
		return fmt.Errorf("check session: %w", err)
	}
	if stored != jti {
		return errors.New("session invalidated")
	}
	return nil
}

// Logout removes a student's login session from Redis, allowing a new login.
// Admin tokens are stateless, so logout is a no-op for them.
func (s *AuthService) Logout(ctx context.Context, principal model.Principal) error {
	if principal.Role != model.RoleStudent {
		return nil
	}
	return s.ResetStudentSession(ctx, principal.ID)
}

// ResetStudentSession removes a student's login session, allowing a new login.
func (s *AuthService) ResetStudentSession(ctx context.Context, studentID uuid.UUID) error {
	return s.rdb.Del(ctx, config.CacheKey.StudentLoginKey(studentID.String())).Err()
}

// GetProfile returns the caller's own profile.
func (s *AuthService) GetProfile(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	return s.profiles.GetByID(ctx, id)
}
