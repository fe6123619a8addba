package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"sigma/auth/internal/domain"
)

// VerifyUser consumes an email verification code and activates the account.
// Lookup is by code alone; the owning email comes from the code record.
type VerifyUser struct {
	users  domain.UserRepository
	codes  domain.VerificationCodeRepository
	mailer domain.EmailService
	log    zerolog.Logger
}

func NewVerifyUser(
	users domain.UserRepository,
	codes domain.VerificationCodeRepository,
	mailer domain.EmailService,
	log zerolog.Logger,
) *VerifyUser {
	return &VerifyUser{users: users, codes: codes, mailer: mailer, log: log}
}

type VerifyCommand struct {
	Code string
}

type VerifyResult struct {
	Success bool
	Message string
	UserID  string
}

func (uc *VerifyUser) Execute(ctx context.Context, cmd VerifyCommand) (VerifyResult, error) {
	result, err := uc.execute(ctx, cmd)
	if err != nil {
		return VerifyResult{}, domain.WrapInternal(err, "VERIFICATION_FAILED", "internal error during verification")
	}
	return result, nil
}

func (uc *VerifyUser) execute(ctx context.Context, cmd VerifyCommand) (VerifyResult, error) {
	code, err := uc.codes.FindByCode(ctx, cmd.Code)
	if err != nil {
		return VerifyResult{}, err
	}
	if code == nil {
		return VerifyResult{}, domain.ErrVerificationCodeNotFound()
	}

	// The attempt is spent and persisted before any validity check so that
	// guessing against an expired or used code still burns the cap.
	code.IncrementAttempts()
	if err := uc.codes.Update(ctx, code); err != nil {
		return VerifyResult{}, err
	}

	if code.IsExpired() {
		return VerifyResult{}, domain.ErrVerificationCodeExpired()
	}
	if !code.IsValid() {
		return VerifyResult{}, domain.ErrInvalidVerificationCode()
	}

	if err := code.Use(); err != nil {
		return VerifyResult{}, err
	}
	if err := uc.codes.Update(ctx, code); err != nil {
		return VerifyResult{}, err
	}

	user, err := uc.users.FindByEmail(ctx, code.Email)
	if err != nil {
		return VerifyResult{}, err
	}
	if user == nil {
		return VerifyResult{}, domain.ErrUserNotFound(code.Email.Value())
	}

	user.Verify()
	if err := uc.users.Update(ctx, user); err != nil {
		return VerifyResult{}, err
	}

	if err := uc.codes.RevokeAllByEmail(ctx, code.Email); err != nil {
		return VerifyResult{}, err
	}

	if err := uc.mailer.SendWelcomeEmail(ctx, code.Email, user.Name); err != nil {
		uc.log.Warn().Err(err).Str("user_id", user.ID).Msg("welcome email failed")
	}

	uc.log.Info().Str("user_id", user.ID).Msg("user verified")

	return VerifyResult{
		Success: true,
		Message: "account verified successfully",
		UserID:  user.ID,
	}, nil
}
