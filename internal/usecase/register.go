package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"sigma/auth/internal/domain"
	"sigma/auth/internal/ids"
)

type RegisterUser struct {
	users     domain.UserRepository
	codes     domain.VerificationCodeRepository
	passwords domain.PasswordService
	mailer    domain.EmailService
	codeTTL   time.Duration
	log       zerolog.Logger
}

func NewRegisterUser(
	users domain.UserRepository,
	codes domain.VerificationCodeRepository,
	passwords domain.PasswordService,
	mailer domain.EmailService,
	codeTTL time.Duration,
	log zerolog.Logger,
) *RegisterUser {
	if codeTTL <= 0 {
		codeTTL = domain.DefaultVerificationCodeTTL
	}
	return &RegisterUser{
		users:     users,
		codes:     codes,
		passwords: passwords,
		mailer:    mailer,
		codeTTL:   codeTTL,
		log:       log,
	}
}

type RegisterCommand struct {
	Email      string
	Phone      string
	Name       string
	Country    string
	City       string
	Password   string
	TenantType string
}

type RegisterResult struct {
	Success bool
	Message string
	UserID  string
}

func (uc *RegisterUser) Execute(ctx context.Context, cmd RegisterCommand) (RegisterResult, error) {
	result, err := uc.execute(ctx, cmd)
	if err != nil {
		return RegisterResult{}, domain.WrapInternal(err, "REGISTRATION_FAILED", "internal error during registration")
	}
	return result, nil
}

func (uc *RegisterUser) execute(ctx context.Context, cmd RegisterCommand) (RegisterResult, error) {
	tenantType, err := domain.ParseTenantType(cmd.TenantType)
	if err != nil {
		return RegisterResult{}, err
	}

	email, err := domain.NewEmail(cmd.Email)
	if err != nil {
		return RegisterResult{}, err
	}
	phone, err := domain.NewPhone(cmd.Phone)
	if err != nil {
		return RegisterResult{}, err
	}
	password, err := domain.NewPassword(cmd.Password, nil)
	if err != nil {
		return RegisterResult{}, err
	}

	existing, err := uc.users.FindByEmail(ctx, email)
	if err != nil {
		return RegisterResult{}, err
	}
	if existing != nil {
		return RegisterResult{}, domain.ErrUserAlreadyExists(email.Value())
	}

	hashed, err := uc.passwords.Hash(password)
	if err != nil {
		return RegisterResult{}, err
	}

	var user *domain.User
	if tenantType == domain.TenantProfessional {
		user = domain.NewProfessionalUser(ids.New(), email, hashed, phone, cmd.Name, cmd.Country, cmd.City)
	} else {
		user = domain.NewCompanyUser(ids.New(), email, hashed, phone, cmd.Name, cmd.Country, cmd.City)
	}

	if err := uc.users.Save(ctx, user); err != nil {
		return RegisterResult{}, err
	}

	code, err := domain.NewVerificationCode(ids.New(), email, uc.codeTTL)
	if err != nil {
		return RegisterResult{}, err
	}
	if err := uc.codes.Save(ctx, code); err != nil {
		return RegisterResult{}, err
	}

	if err := uc.mailer.SendVerificationCode(ctx, email, code); err != nil {
		return RegisterResult{}, err
	}

	uc.log.Info().
		Str("user_id", user.ID).
		Str("tenant_type", string(tenantType)).
		Msg("user registered")

	return RegisterResult{
		Success: true,
		Message: "user registered successfully, a verification code has been sent to your email",
		UserID:  user.ID,
	}, nil
}
