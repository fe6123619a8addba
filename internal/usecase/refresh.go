package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"sigma/auth/internal/domain"
)

// RefreshToken exchanges a live session's refresh token for a new access
// token. The refresh token itself is not rotated here; only a login from the
// same device rotates it.
type RefreshToken struct {
	sessions  domain.SessionRepository
	tokens    domain.TokenService
	accessTTL time.Duration
	log       zerolog.Logger
}

func NewRefreshToken(sessions domain.SessionRepository, tokens domain.TokenService, accessTTL time.Duration, log zerolog.Logger) *RefreshToken {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	return &RefreshToken{sessions: sessions, tokens: tokens, accessTTL: accessTTL, log: log}
}

type RefreshCommand struct {
	RefreshToken string
}

type RefreshResult struct {
	Success     bool
	Message     string
	AccessToken string
	ExpiresIn   int
}

func (uc *RefreshToken) Execute(ctx context.Context, cmd RefreshCommand) (RefreshResult, error) {
	result, err := uc.execute(ctx, cmd)
	if err != nil {
		return RefreshResult{}, domain.WrapInternal(err, "REFRESH_FAILED", "internal error during token refresh")
	}
	return result, nil
}

func (uc *RefreshToken) execute(ctx context.Context, cmd RefreshCommand) (RefreshResult, error) {
	if cmd.RefreshToken == "" || !uc.tokens.VerifyRefreshToken(cmd.RefreshToken) {
		return RefreshResult{}, domain.ErrTokenNotFound()
	}

	session, err := uc.sessions.FindByRefreshToken(ctx, cmd.RefreshToken)
	if err != nil {
		return RefreshResult{}, err
	}
	if session == nil {
		return RefreshResult{}, domain.ErrSessionNotFound()
	}

	if !session.IsActive() {
		return RefreshResult{}, domain.ErrSessionExpired()
	}

	accessToken, err := uc.tokens.GenerateAccessToken(session.UserID, session.ID)
	if err != nil {
		return RefreshResult{}, err
	}

	session.UpdateLastAccess()
	if err := uc.sessions.Update(ctx, session); err != nil {
		return RefreshResult{}, err
	}

	uc.log.Debug().
		Str("user_id", session.UserID).
		Str("session_id", session.ID).
		Msg("access token refreshed")

	return RefreshResult{
		Success:     true,
		Message:     "token refreshed successfully",
		AccessToken: accessToken,
		ExpiresIn:   int(uc.accessTTL.Seconds()),
	}, nil
}
