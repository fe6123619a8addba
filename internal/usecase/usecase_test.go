package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sigma/auth/internal/domain"
	"sigma/auth/internal/security"
	"sigma/auth/internal/usecase"
)

const (
	testEmail    = "ana@example.com"
	testPassword = "Str0ng&Secure!"
)

type env struct {
	users     *fakeUserRepo
	sessions  *fakeSessionRepo
	codes     *fakeCodeRepo
	mailer    *fakeMailer
	tokens    *security.JWTTokenService
	register  *usecase.RegisterUser
	verify    *usecase.VerifyUser
	login     *usecase.LoginUser
	refresh   *usecase.RefreshToken
	logout    *usecase.Logout
	logoutAll *usecase.LogoutAll
}

func newEnv() *env {
	users := newFakeUserRepo()
	sessions := newFakeSessionRepo()
	codes := newFakeCodeRepo()
	mailer := &fakeMailer{}
	passwords := security.NewArgon2PasswordService()
	tokens := security.NewJWTTokenService("test-secret", "sigma-auth", "sigma-clients", 15*time.Minute)
	log := zerolog.Nop()

	return &env{
		users:    users,
		sessions: sessions,
		codes:    codes,
		mailer:   mailer,
		tokens:   tokens,
		register: usecase.NewRegisterUser(users, codes, passwords, mailer, 15*time.Minute, log),
		verify:   usecase.NewVerifyUser(users, codes, mailer, log),
		login: usecase.NewLoginUser(
			users, sessions, passwords, tokens, mailer,
			usecase.DefaultMaxConcurrentSessions, 7*24*time.Hour, 15*time.Minute,
			log,
		),
		refresh:   usecase.NewRefreshToken(sessions, tokens, 15*time.Minute, log),
		logout:    usecase.NewLogout(sessions, log),
		logoutAll: usecase.NewLogoutAll(sessions, log),
	}
}

func registerCmd() usecase.RegisterCommand {
	return usecase.RegisterCommand{
		Email:      testEmail,
		Phone:      "+34612345678",
		Name:       "Ana Lopez",
		Country:    "ES",
		City:       "Madrid",
		Password:   testPassword,
		TenantType: "profesional",
	}
}

func loginCmd(deviceID string) usecase.LoginCommand {
	return usecase.LoginCommand{
		Email:    testEmail,
		Password: testPassword,
		DeviceID: deviceID,
		DeviceMeta: domain.DeviceMeta{
			UserAgent: "test-agent",
			IPAddress: "10.0.0.1",
			Browser:   "Firefox",
			OS:        "Linux",
		},
	}
}

// registerVerified drives a user through registration and verification.
func registerVerified(t *testing.T, e *env) string {
	t.Helper()
	ctx := context.Background()

	reg, err := e.register.Execute(ctx, registerCmd())
	require.NoError(t, err)

	require.NotEmpty(t, e.mailer.verificationCodes)
	code := e.mailer.verificationCodes[len(e.mailer.verificationCodes)-1]

	_, err = e.verify.Execute(ctx, usecase.VerifyCommand{Code: code})
	require.NoError(t, err)

	return reg.UserID
}

func requireDomainError(t *testing.T, err error, code string) *domain.DomainError {
	t.Helper()
	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, code, domainErr.Code)
	return domainErr
}
