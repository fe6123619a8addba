package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"sigma/auth/internal/domain"
)

// Logout revokes a single session, resolved by session id, refresh token or
// (user, device) pair, in that order of preference.
type Logout struct {
	sessions domain.SessionRepository
	log      zerolog.Logger
}

func NewLogout(sessions domain.SessionRepository, log zerolog.Logger) *Logout {
	return &Logout{sessions: sessions, log: log}
}

type LogoutCommand struct {
	SessionID    string
	RefreshToken string
	DeviceID     string
	UserID       string
}

type LogoutResult struct {
	Success bool
	Message string
}

func (uc *Logout) Execute(ctx context.Context, cmd LogoutCommand) (LogoutResult, error) {
	result, err := uc.execute(ctx, cmd)
	if err != nil {
		return LogoutResult{}, domain.WrapInternal(err, "LOGOUT_FAILED", "internal error during logout")
	}
	return result, nil
}

func (uc *Logout) execute(ctx context.Context, cmd LogoutCommand) (LogoutResult, error) {
	var (
		session *domain.Session
		err     error
	)

	switch {
	case cmd.SessionID != "":
		session, err = uc.sessions.FindByID(ctx, cmd.SessionID)
	case cmd.RefreshToken != "":
		session, err = uc.sessions.FindByRefreshToken(ctx, cmd.RefreshToken)
	case cmd.DeviceID != "" && cmd.UserID != "":
		session, err = uc.sessions.FindByUserIDAndDeviceID(ctx, cmd.UserID, cmd.DeviceID)
	}
	if err != nil {
		return LogoutResult{}, err
	}
	if session == nil {
		return LogoutResult{}, domain.ErrSessionNotFound()
	}

	session.Revoke()
	if err := uc.sessions.Update(ctx, session); err != nil {
		return LogoutResult{}, err
	}

	uc.log.Info().
		Str("user_id", session.UserID).
		Str("session_id", session.ID).
		Msg("session revoked")

	return LogoutResult{Success: true, Message: "session closed successfully"}, nil
}

// LogoutAll bulk-revokes every active session a user holds. It succeeds even
// when there is nothing to revoke.
type LogoutAll struct {
	sessions domain.SessionRepository
	log      zerolog.Logger
}

func NewLogoutAll(sessions domain.SessionRepository, log zerolog.Logger) *LogoutAll {
	return &LogoutAll{sessions: sessions, log: log}
}

type LogoutAllCommand struct {
	UserID string
}

func (uc *LogoutAll) Execute(ctx context.Context, cmd LogoutAllCommand) (LogoutResult, error) {
	if err := uc.sessions.RevokeAllByUserID(ctx, cmd.UserID); err != nil {
		return LogoutResult{}, domain.WrapInternal(err, "LOGOUT_ALL_FAILED", "internal error during bulk logout")
	}

	uc.log.Info().Str("user_id", cmd.UserID).Msg("all sessions revoked")

	return LogoutResult{Success: true, Message: "all sessions closed successfully"}, nil
}
