package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"sigma/auth/internal/domain"
	"sigma/auth/internal/ids"
)

const DefaultMaxConcurrentSessions = 4

// LoginUser authenticates credentials and binds the session to the calling
// device: a known device refreshes its session in place, a new device gets a
// fresh session as long as the concurrency cap allows.
type LoginUser struct {
	users       domain.UserRepository
	sessions    domain.SessionRepository
	passwords   domain.PasswordService
	tokens      domain.TokenService
	mailer      domain.EmailService
	maxSessions int
	sessionTTL  time.Duration
	accessTTL   time.Duration
	log         zerolog.Logger
}

func NewLoginUser(
	users domain.UserRepository,
	sessions domain.SessionRepository,
	passwords domain.PasswordService,
	tokens domain.TokenService,
	mailer domain.EmailService,
	maxSessions int,
	sessionTTL time.Duration,
	accessTTL time.Duration,
	log zerolog.Logger,
) *LoginUser {
	if maxSessions <= 0 {
		maxSessions = DefaultMaxConcurrentSessions
	}
	if sessionTTL <= 0 {
		sessionTTL = 7 * 24 * time.Hour
	}
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	return &LoginUser{
		users:       users,
		sessions:    sessions,
		passwords:   passwords,
		tokens:      tokens,
		mailer:      mailer,
		maxSessions: maxSessions,
		sessionTTL:  sessionTTL,
		accessTTL:   accessTTL,
		log:         log,
	}
}

type LoginCommand struct {
	Email      string
	Password   string
	DeviceID   string
	DeviceMeta domain.DeviceMeta
}

type LoginUserInfo struct {
	ID         string
	Email      string
	Name       string
	TenantType string
	Status     string
}

type LoginResult struct {
	Success      bool
	Message      string
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
	User         LoginUserInfo
}

func (uc *LoginUser) Execute(ctx context.Context, cmd LoginCommand) (LoginResult, error) {
	result, err := uc.execute(ctx, cmd)
	if err != nil {
		return LoginResult{}, domain.WrapInternal(err, "LOGIN_FAILED", "internal error during login")
	}
	return result, nil
}

func (uc *LoginUser) execute(ctx context.Context, cmd LoginCommand) (LoginResult, error) {
	email, err := domain.NewEmail(cmd.Email)
	if err != nil {
		return LoginResult{}, err
	}
	password, err := domain.NewPassword(cmd.Password, nil)
	if err != nil {
		return LoginResult{}, err
	}

	user, err := uc.users.FindByEmail(ctx, email)
	if err != nil {
		return LoginResult{}, err
	}
	if user == nil {
		return LoginResult{}, domain.ErrUserNotFound(cmd.Email)
	}

	ok, err := uc.passwords.Verify(password, user.HashedPassword)
	if err != nil || !ok {
		// A failed attempt mutates the aggregate: the counter and any
		// resulting lockout must survive this request.
		user.RecordFailedLogin()
		if updateErr := uc.users.Update(ctx, user); updateErr != nil {
			uc.log.Error().Err(updateErr).Str("user_id", user.ID).Msg("record failed login")
		}
		return LoginResult{}, domain.ErrInvalidCredentials()
	}

	if user.IsPendingVerification() {
		return LoginResult{}, domain.ErrUserNotVerified()
	}

	if !user.IsActive() {
		if user.IsLocked() {
			if err := uc.mailer.SendAccountLockedNotification(ctx, email, *user.LockedUntil); err != nil {
				uc.log.Warn().Err(err).Str("user_id", user.ID).Msg("lock notification failed")
			}
			return LoginResult{}, domain.ErrAccountLocked(*user.LockedUntil)
		}
		return LoginResult{}, domain.ErrAccountSuspended()
	}

	activeSessions, err := uc.sessions.FindActiveByUserID(ctx, user.ID)
	if err != nil {
		return LoginResult{}, err
	}

	existing, err := uc.sessions.FindByUserIDAndDeviceID(ctx, user.ID, cmd.DeviceID)
	if err != nil {
		return LoginResult{}, err
	}

	// Hashes produced under older argon2 parameters are upgraded while the
	// plaintext is at hand.
	if uc.passwords.NeedsRehash(user.HashedPassword) {
		if rehashed, hashErr := uc.passwords.Hash(password); hashErr == nil {
			user.UpdatePassword(rehashed)
		}
	}

	if existing != nil {
		return uc.refreshExistingSession(ctx, user, existing)
	}

	if len(activeSessions) >= uc.maxSessions {
		return LoginResult{}, domain.ErrMaxSessionsExceeded(uc.maxSessions)
	}

	return uc.createSession(ctx, user, cmd, len(activeSessions))
}

// refreshExistingSession is the same-device path: rotate the refresh token
// and extend expiry without changing the session identity or the active
// session count.
func (uc *LoginUser) refreshExistingSession(ctx context.Context, user *domain.User, session *domain.Session) (LoginResult, error) {
	newRefreshToken, err := uc.tokens.GenerateRefreshToken()
	if err != nil {
		return LoginResult{}, err
	}

	session.UpdateRefreshToken(newRefreshToken, time.Now().Add(uc.sessionTTL))
	if err := uc.sessions.Update(ctx, session); err != nil {
		return LoginResult{}, err
	}

	accessToken, err := uc.tokens.GenerateAccessToken(user.ID, session.ID)
	if err != nil {
		return LoginResult{}, err
	}

	if err := uc.recordLogin(ctx, user); err != nil {
		return LoginResult{}, err
	}

	uc.log.Info().
		Str("user_id", user.ID).
		Str("session_id", session.ID).
		Str("device_id", session.DeviceID).
		Msg("session refreshed on re-login")

	return uc.result(user, "session updated successfully", accessToken, newRefreshToken), nil
}

func (uc *LoginUser) createSession(ctx context.Context, user *domain.User, cmd LoginCommand, otherActive int) (LoginResult, error) {
	refreshToken, err := uc.tokens.GenerateRefreshToken()
	if err != nil {
		return LoginResult{}, err
	}

	session := domain.NewSession(
		ids.New(),
		user.ID,
		cmd.DeviceID,
		cmd.DeviceMeta,
		refreshToken,
		time.Now().Add(uc.sessionTTL),
	)
	if err := uc.sessions.Save(ctx, session); err != nil {
		return LoginResult{}, err
	}

	accessToken, err := uc.tokens.GenerateAccessToken(user.ID, session.ID)
	if err != nil {
		return LoginResult{}, err
	}

	if err := uc.recordLogin(ctx, user); err != nil {
		return LoginResult{}, err
	}

	if otherActive > 0 {
		deviceInfo := fmt.Sprintf("%s on %s", cmd.DeviceMeta.Browser, cmd.DeviceMeta.OS)
		if err := uc.mailer.SendNewSessionNotification(ctx, user.Email, deviceInfo, cmd.DeviceMeta.IPAddress); err != nil {
			uc.log.Warn().Err(err).Str("user_id", user.ID).Msg("new session notification failed")
		}
	}

	uc.log.Info().
		Str("user_id", user.ID).
		Str("session_id", session.ID).
		Str("device_id", cmd.DeviceID).
		Msg("session created")

	return uc.result(user, "login successful", accessToken, refreshToken), nil
}

func (uc *LoginUser) recordLogin(ctx context.Context, user *domain.User) error {
	user.RecordSuccessfulLogin()
	return uc.users.Update(ctx, user)
}

func (uc *LoginUser) result(user *domain.User, message, accessToken, refreshToken string) LoginResult {
	return LoginResult{
		Success:      true,
		Message:      message,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(uc.accessTTL.Seconds()),
		User: LoginUserInfo{
			ID:         user.ID,
			Email:      user.Email.Value(),
			Name:       user.Name,
			TenantType: string(user.TenantType),
			Status:     string(user.Status),
		},
	}
}
