package domain

import (
	"context"
	"time"
)

// Repositories return (nil, nil) when the entity is absent; use cases decide
// which typed error that becomes. Update implementations reject stale writes
// with ErrConcurrentModification.

type UserRepository interface {
	FindByEmail(ctx context.Context, email Email) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	Save(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id string) error
	ExistsByEmail(ctx context.Context, email Email) (bool, error)
	CountActiveByTenantType(ctx context.Context, tenantType TenantType) (int, error)
	FindLockedUsersToUnlock(ctx context.Context) ([]*User, error)
}

type SessionRepository interface {
	Save(ctx context.Context, session *Session) error
	FindByID(ctx context.Context, id string) (*Session, error)
	FindByRefreshToken(ctx context.Context, refreshToken string) (*Session, error)
	FindActiveByUserID(ctx context.Context, userID string) ([]*Session, error)
	FindByUserIDAndDeviceID(ctx context.Context, userID, deviceID string) (*Session, error)
	Update(ctx context.Context, session *Session) error
	Delete(ctx context.Context, id string) error
	RevokeAllByUserID(ctx context.Context, userID string) error
	RevokeOldestSessions(ctx context.Context, userID string, keepCount int) error
	CountActiveByUserID(ctx context.Context, userID string) (int, error)
	DeleteExpired(ctx context.Context) (int64, error)
	FindExpiringInNext(ctx context.Context, window time.Duration) ([]*Session, error)
}

type VerificationCodeRepository interface {
	Save(ctx context.Context, code *VerificationCode) error
	FindByCode(ctx context.Context, code string) (*VerificationCode, error)
	FindByEmailAndCode(ctx context.Context, email Email, code string) (*VerificationCode, error)
	FindActiveByEmail(ctx context.Context, email Email) ([]*VerificationCode, error)
	Update(ctx context.Context, code *VerificationCode) error
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context) (int64, error)
	RevokeAllByEmail(ctx context.Context, email Email) error
}

type PasswordService interface {
	Hash(plain Password) (Password, error)
	Verify(plain, hashed Password) (bool, error)
	GenerateTemporaryPassword() (Password, error)
	NeedsRehash(hashed Password) bool
}

type TokenClaims struct {
	UserID    string
	SessionID string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Issuer    string
	Audience  string
}

type TokenService interface {
	GenerateAccessToken(userID, sessionID string) (string, error)
	GenerateRefreshToken() (string, error)
	VerifyAccessToken(token string) (*TokenClaims, error)
	// VerifyRefreshToken is a shape check only; refresh tokens carry no
	// embedded claims and are authenticated by repository lookup.
	VerifyRefreshToken(token string) bool
	DecodeToken(token string) (*TokenClaims, error)
	TokenExpirationTime(token string) (time.Duration, bool)
}

type EmailService interface {
	SendVerificationCode(ctx context.Context, email Email, code *VerificationCode) error
	SendWelcomeEmail(ctx context.Context, email Email, userName string) error
	SendNewSessionNotification(ctx context.Context, email Email, deviceInfo, ipAddress string) error
	SendAccountLockedNotification(ctx context.Context, email Email, unlocksAt time.Time) error
	SendPasswordChangedNotification(ctx context.Context, email Email) error
	VerifyConfiguration(ctx context.Context) error
}
