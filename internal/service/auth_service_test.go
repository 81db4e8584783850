package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ayushant/skillspan-hub/internal/config"
	"github.com/Ayushant/skillspan-hub/internal/model"
)

func newTestAuthService(t *testing.T) (*AuthService, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	cfg := &config.Config{
		JWTSecret:  "test-secret",
		JWTExpiry:  time.Hour,
		BcryptCost: 4,
	}

	return NewAuthService(cfg, rdb, nil, nil), mr
}

func TestPasswordHashRoundTrip(t *testing.T) {
	svc, _ := newTestAuthService(t)

	hash, err := svc.HashPassword("correct horse battery")
	require.NoError(t, err)

	assert.NoError(t, svc.CheckPassword(hash, "correct horse battery"))
	assert.ErrorIs(t, svc.CheckPassword(hash, "wrong password"), ErrInvalidCredentials)
}

func TestStudentTokenRoundTrip(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	universityID := uuid.New()
	profile := &model.Profile{
		ID:           uuid.New(),
		Role:         model.RoleStudent,
		UniversityID: &universityID,
	}

	token, err := svc.generateStudentToken(ctx, profile)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, profile.ID, claims.UserID)
	assert.Equal(t, model.RoleStudent, claims.Role)
	require.NotNil(t, claims.UniversityID)
	assert.Equal(t, universityID, *claims.UniversityID)

	// The JTI registered in Redis must match the one in the token.
	assert.NoError(t, svc.ValidateStudentSession(ctx, profile.ID, claims.ID))
	assert.Error(t, svc.ValidateStudentSession(ctx, profile.ID, "some-other-jti"))
}

func TestSecondStudentLoginRejected(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	profile := &model.Profile{ID: uuid.New(), Role: model.RoleStudent}

	_, err := svc.generateStudentToken(ctx, profile)
	require.NoError(t, err)

	// Device two is locked out until an admin resets the session.
	_, err = svc.generateStudentToken(ctx, profile)
	assert.ErrorIs(t, err, ErrSessionAlreadyActive)

	require.NoError(t, svc.ResetStudentSession(ctx, profile.ID))

	_, err = svc.generateStudentToken(ctx, profile)
	assert.NoError(t, err)
}

func TestLogoutIsStudentOnly(t *testing.T) {
	svc, mr := newTestAuthService(t)
	ctx := context.Background()

	student := &model.Profile{ID: uuid.New(), Role: model.RoleStudent}
	_, err := svc.generateStudentToken(ctx, student)
	require.NoError(t, err)

	// Admin logout must not touch any student session keys.
	require.NoError(t, svc.Logout(ctx, model.Principal{ID: uuid.New(), Role: model.RoleUniversityAdmin}))
	assert.True(t, mr.Exists(config.CacheKey.StudentLoginKey(student.ID.String())))

	require.NoError(t, svc.Logout(ctx, student.Principal()))
	assert.False(t, mr.Exists(config.CacheKey.StudentLoginKey(student.ID.String())))
}

func TestValidateTokenRejectsForgery(t *testing.T) {
	svc, _ := newTestAuthService(t)

	admin := &model.Profile{ID: uuid.New(), Role: model.RoleSuperAdmin}
	token, err := svc.generateAdminToken(admin)
	require.NoError(t, err)

	other := NewAuthService(&config.Config{JWTSecret: "different-secret", JWTExpiry: time.Hour}, nil, nil, nil)
	_, err = other.ValidateToken(token)
	assert.Error(t, err)

	_, err = svc.ValidateToken("not.a.token")
	assert.Error(t, err)
}

func TestTokenExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	cfg := &config.Config{JWTSecret: "test-secret", JWTExpiry: -time.Minute, BcryptCost: 4}
	svc := NewAuthService(cfg, rdb, nil, nil)

	token, err := svc.generateAdminToken(&model.Profile{ID: uuid.New(), Role: model.RoleSuperAdmin})
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}
