package usecase_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sigma/auth/internal/usecase"
)

func TestLogin_SucceedsForVerifiedUser(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	userID := registerVerified(t, e)

	result, err := e.login.Execute(ctx, loginCmd("device-1"))
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.NotEmpty(t, result.AccessToken)
	assert.Len(t, result.RefreshToken, 64)
	assert.Equal(t, 900, result.ExpiresIn)
	assert.Equal(t, userID, result.User.ID)
	assert.Equal(t, "active", result.User.Status)

	claims, err := e.tokens.VerifyAccessToken(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)

	user := e.users.users[userID]
	assert.NotNil(t, user.LastLoginAt)
}

func TestLogin_UnknownUserIs404(t *testing.T) {
	e := newEnv()

	_, err := e.login.Execute(context.Background(), loginCmd("device-1"))
	requireDomainError(t, err, "USER_NOT_FOUND")
}

func TestLogin_PendingUserIsRejected(t *testing.T) {
	e := newEnv()
	_, _ = registerPending(t, e)

	_, err := e.login.Execute(context.Background(), loginCmd("device-1"))
	domainErr := requireDomainError(t, err, "USER_NOT_VERIFIED")
	assert.Equal(t, http.StatusForbidden, domainErr.Status)
}

func TestLogin_WrongPasswordCountsAndLocksAfterFive(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	userID := registerVerified(t, e)

	bad := loginCmd("device-1")
	bad.Password = "Wr0ng&Secure!pw"

	for i := 0; i < 5; i++ {
		_, err := e.login.Execute(ctx, bad)
		requireDomainError(t, err, "AUTH_INVALID_CREDENTIALS")
	}

	user := e.users.users[userID]
	assert.Equal(t, 5, user.FailedLoginAttempts)
	require.True(t, user.IsLocked())

	// even the correct password is refused while the lock holds
	_, err := e.login.Execute(ctx, loginCmd("device-1"))
	domainErr := requireDomainError(t, err, "ACCOUNT_LOCKED")
	assert.Equal(t, http.StatusLocked, domainErr.Status)
	assert.Contains(t, domainErr.Details, "unlocksAt")
	assert.NotEmpty(t, e.mailer.lockNotices)
}

func TestLogin_SuspendedUserIs403(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	userID := registerVerified(t, e)
	e.users.users[userID].Suspend()

	_, err := e.login.Execute(ctx, loginCmd("device-1"))
	domainErr := requireDomainError(t, err, "ACCOUNT_SUSPENDED")
	assert.Equal(t, http.StatusForbidden, domainErr.Status)
}

func TestLogin_SameDeviceRotatesInsteadOfCreating(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	registerVerified(t, e)

	first, err := e.login.Execute(ctx, loginCmd("device-1"))
	require.NoError(t, err)

	second, err := e.login.Execute(ctx, loginCmd("device-1"))
	require.NoError(t, err)

	assert.Equal(t, "session updated successfully", second.Message)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
	assert.Len(t, e.sessions.sessions, 1, "re-login on the same device must not add a session")
}

func TestLogin_FifthDeviceIsRefused(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	registerVerified(t, e)

	for i := 1; i <= usecase.DefaultMaxConcurrentSessions; i++ {
		_, err := e.login.Execute(ctx, loginCmd(fmt.Sprintf("device-%d", i)))
		require.NoError(t, err)
	}

	_, err := e.login.Execute(ctx, loginCmd("device-5"))
	domainErr := requireDomainError(t, err, "MAX_SESSIONS_EXCEEDED")
	assert.Equal(t, http.StatusTooManyRequests, domainErr.Status)
	assert.Equal(t, usecase.DefaultMaxConcurrentSessions, domainErr.Details["maxSessions"])

	// an existing device still gets in via rotation
	_, err = e.login.Execute(ctx, loginCmd("device-2"))
	assert.NoError(t, err)
}

func TestLogin_SecondDeviceTriggersNotification(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	registerVerified(t, e)

	_, err := e.login.Execute(ctx, loginCmd("device-1"))
	require.NoError(t, err)
	assert.Empty(t, e.mailer.newSessions, "first session must not notify")

	_, err = e.login.Execute(ctx, loginCmd("device-2"))
	require.NoError(t, err)
	assert.Len(t, e.mailer.newSessions, 1)
}

func TestLogin_SuccessResetsFailureCounter(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	userID := registerVerified(t, e)

	bad := loginCmd("device-1")
	bad.Password = "Wr0ng&Secure!pw"
	for i := 0; i < 3; i++ {
		_, err := e.login.Execute(ctx, bad)
		requireDomainError(t, err, "AUTH_INVALID_CREDENTIALS")
	}

	_, err := e.login.Execute(ctx, loginCmd("device-1"))
	require.NoError(t, err)

	assert.Zero(t, e.users.users[userID].FailedLoginAttempts)
}

func TestLogin_ExpiredLockReopensAccess(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	userID := registerVerified(t, e)

	user := e.users.users[userID]
	for i := 0; i < 5; i++ {
		user.RecordFailedLogin()
	}
	past := time.Now().Add(-time.Minute)
	user.LockedUntil = &past

	result, err := e.login.Execute(ctx, loginCmd("device-1"))
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Nil(t, e.users.users[userID].LockedUntil)
}

func TestLogin_DomainStatusStaysInWire(t *testing.T) {
	e := newEnv()
	registerVerified(t, e)

	result, err := e.login.Execute(context.Background(), loginCmd("device-1"))
	require.NoError(t, err)
	assert.Equal(t, "profesional", result.User.TenantType)
}
