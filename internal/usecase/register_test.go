package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sigma/auth/internal/domain"
	"sigma/auth/internal/usecase"
)

func TestRegister_CreatesPendingUserAndSendsCode(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	result, err := e.register.Execute(ctx, registerCmd())
	require.NoError(t, err)
	assert.True(t, result.Success)
	require.NotEmpty(t, result.UserID)

	user := e.users.users[result.UserID]
	require.NotNil(t, user)
	assert.Equal(t, domain.UserStatusPendingVerification, user.Status)
	assert.Equal(t, "ana@example.com", user.Email.Value())
	assert.Equal(t, domain.TenantProfessional, user.TenantType)
	assert.NotEqual(t, testPassword, user.HashedPassword.Value())

	require.Len(t, e.mailer.verificationCodes, 1)
	assert.Regexp(t, `^\d{5}$`, e.mailer.verificationCodes[0])
}

func TestRegister_CompanyTenant(t *testing.T) {
	e := newEnv()
	cmd := registerCmd()
	cmd.TenantType = "empresa"
	cmd.Name = "Acme SL"

	result, err := e.register.Execute(context.Background(), cmd)
	require.NoError(t, err)

	user := e.users.users[result.UserID]
	require.NotNil(t, user)
	assert.Equal(t, domain.TenantCompany, user.TenantType)
}

func TestRegister_DuplicateEmailConflicts(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	_, err := e.register.Execute(ctx, registerCmd())
	require.NoError(t, err)

	_, err = e.register.Execute(ctx, registerCmd())
	domainErr := requireDomainError(t, err, "USER_ALREADY_EXISTS")
	assert.Equal(t, http.StatusConflict, domainErr.Status)
}

func TestRegister_RejectsInvalidInput(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	cases := []struct {
		mutate func(*usecase.RegisterCommand)
		code   string
	}{
		{func(c *usecase.RegisterCommand) { c.TenantType = "individual" }, "INVALID_TENANT_TYPE"},
		{func(c *usecase.RegisterCommand) { c.Email = "not-an-email" }, "INVALID_EMAIL"},
		{func(c *usecase.RegisterCommand) { c.Phone = "12345" }, "INVALID_PHONE"},
		{func(c *usecase.RegisterCommand) { c.Password = "weak" }, "INVALID_PASSWORD"},
	}

	for _, tc := range cases {
		cmd := registerCmd()
		tc.mutate(&cmd)
		_, err := e.register.Execute(ctx, cmd)
		requireDomainError(t, err, tc.code)
	}

	assert.Empty(t, e.users.users, "no user may be created from invalid input")
}

func TestRegister_EnqueueFailureSurfacesAs500(t *testing.T) {
	e := newEnv()
	e.mailer.verificationErr = errors.New("redis: connection refused")

	_, err := e.register.Execute(context.Background(), registerCmd())
	domainErr := requireDomainError(t, err, "REGISTRATION_FAILED")
	assert.Equal(t, http.StatusInternalServerError, domainErr.Status)
}

func TestRegister_UserSaveFailureSurfacesAs500(t *testing.T) {
	e := newEnv()
	e.users.saveErr = errors.New("pq: connection refused")

	_, err := e.register.Execute(context.Background(), registerCmd())
	requireDomainError(t, err, "REGISTRATION_FAILED")
}
