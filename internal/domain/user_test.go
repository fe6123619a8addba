package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sigma/auth/internal/domain"
)

func newTestUser(t *testing.T) *domain.User {
	t.Helper()
	email, err := domain.NewEmail("ana@example.com")
	require.NoError(t, err)
	phone, err := domain.NewPhone("+34612345678")
	require.NoError(t, err)
	return domain.NewProfessionalUser(
		"user-1", email, domain.PasswordFromHash("hash"), phone,
		"Ana Lopez", "ES", "Madrid",
	)
}

func TestNewUser_StartsPendingVerification(t *testing.T) {
	user := newTestUser(t)

	assert.Equal(t, domain.UserStatusPendingVerification, user.Status)
	assert.Equal(t, domain.TenantProfessional, user.TenantType)
	assert.Equal(t, 1, user.Version)
	assert.True(t, user.IsPendingVerification())
	assert.False(t, user.IsActive())
}

func TestUser_VerifyActivatesPendingOnly(t *testing.T) {
	user := newTestUser(t)

	user.Verify()
	assert.Equal(t, domain.UserStatusActive, user.Status)
	assert.True(t, user.IsActive())

	user.Suspend()
	user.Verify()
	assert.Equal(t, domain.UserStatusSuspended, user.Status)
}

func TestUser_LocksAfterFiveFailedLogins(t *testing.T) {
	user := newTestUser(t)
	user.Verify()

	for i := 0; i < 4; i++ {
		user.RecordFailedLogin()
		assert.False(t, user.IsLocked(), "must not lock before the fifth failure")
	}

	user.RecordFailedLogin()
	require.True(t, user.IsLocked())
	require.NotNil(t, user.LockedUntil)
	assert.False(t, user.IsActive())
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), *user.LockedUntil, 5*time.Second)
}

func TestUser_SuccessfulLoginResetsFailureState(t *testing.T) {
	user := newTestUser(t)
	user.Verify()

	user.RecordFailedLogin()
	user.RecordFailedLogin()
	user.RecordSuccessfulLogin()

	assert.Zero(t, user.FailedLoginAttempts)
	assert.Nil(t, user.LockedUntil)
	assert.NotNil(t, user.LastLoginAt)
}

func TestUser_ActivateClearsLockout(t *testing.T) {
	user := newTestUser(t)
	user.Verify()
	for i := 0; i < 5; i++ {
		user.RecordFailedLogin()
	}
	require.True(t, user.IsLocked())

	user.Activate()

	assert.False(t, user.IsLocked())
	assert.Zero(t, user.FailedLoginAttempts)
	assert.True(t, user.IsActive())
}

func TestUser_ExpiredLockIsNotLocked(t *testing.T) {
	user := newTestUser(t)
	user.Verify()
	past := time.Now().Add(-time.Minute)
	user.LockedUntil = &past

	assert.False(t, user.IsLocked())
	assert.True(t, user.IsActive())
}

func TestParseTenantType(t *testing.T) {
	for _, raw := range []string{"profesional", "empresa"} {
		parsed, err := domain.ParseTenantType(raw)
		require.NoError(t, err)
		assert.Equal(t, domain.TenantType(raw), parsed)
	}

	_, err := domain.ParseTenantType("individual")
	require.Error(t, err)

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_TENANT_TYPE", domainErr.Code)
}
