package domain_test

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sigma/auth/internal/domain"
)

var fiveDigits = regexp.MustCompile(`^\d{5}$`)

func newTestCode(t *testing.T, ttl time.Duration) *domain.VerificationCode {
	t.Helper()
	email, err := domain.NewEmail("ana@example.com")
	require.NoError(t, err)
	code, err := domain.NewVerificationCode("code-1", email, ttl)
	require.NoError(t, err)
	return code
}

func TestNewVerificationCode_GeneratesFiveDigits(t *testing.T) {
	code := newTestCode(t, 15*time.Minute)

	assert.Regexp(t, fiveDigits, code.Code)
	assert.False(t, code.Used)
	assert.Zero(t, code.Attempts)
	assert.True(t, code.IsValid())
}

func TestVerificationCode_DefaultTTL(t *testing.T) {
	code := newTestCode(t, 0)
	assert.WithinDuration(t, time.Now().Add(domain.DefaultVerificationCodeTTL), code.ExpiresAt, 5*time.Second)
}

func TestVerificationCode_UseIsSingleShot(t *testing.T) {
	code := newTestCode(t, 15*time.Minute)

	require.NoError(t, code.Use())
	assert.True(t, code.Used)
	assert.False(t, code.IsValid())
	assert.Error(t, code.Use())
}

func TestVerificationCode_AttemptCapInvalidates(t *testing.T) {
	code := newTestCode(t, 15*time.Minute)

	code.IncrementAttempts()
	code.IncrementAttempts()
	assert.True(t, code.IsValid())

	code.IncrementAttempts()
	assert.False(t, code.IsValid())
	assert.Error(t, code.Use())
}

func TestVerificationCode_ExpiredIsInvalid(t *testing.T) {
	code := newTestCode(t, 15*time.Minute)
	code.ExpiresAt = time.Now().Add(-time.Second)

	assert.True(t, code.IsExpired())
	assert.False(t, code.IsValid())
	assert.Error(t, code.Use())
}
