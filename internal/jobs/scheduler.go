package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"sigma/auth/internal/domain"
	"sigma/auth/internal/repository"
)

type Scheduler struct {
	cron     *cron.Cron
	users    *repository.UserRepository
	sessions *repository.SessionRepository
	codes    *repository.VerificationCodeRepository
	log      zerolog.Logger
}

func NewScheduler(
	users *repository.UserRepository,
	sessions *repository.SessionRepository,
	codes *repository.VerificationCodeRepository,
	log zerolog.Logger,
) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds()),
		users:    users,
		sessions: sessions,
		codes:    codes,
		log:      log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("0 0 0 * * *", s.purgeExpired); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("0 */5 * * * *", s.unlockAccounts); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("0 0 */1 * * *", s.reportStats); err != nil { // hourly
		return err
	}

	s.cron.Start()
	return nil
}

func (s *Scheduler) Stop() context.CancelFunc {
	_, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	go func() {
		s.cron.Stop()
		cancel()
	}()
	return cancel
}

func (s *Scheduler) purgeExpired() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	sessionCount, err := s.sessions.DeleteExpired(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("session purge failed")
	}

	codeCount, err := s.codes.DeleteExpired(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("verification code purge failed")
	}

	s.log.Info().
		Int64("sessions", sessionCount).
		Int64("codes", codeCount).
		Msg("expired rows purged")
}

// unlockAccounts reactivates users whose lock window has elapsed so a later
// login does not depend on the lazy unlock path.
func (s *Scheduler) unlockAccounts() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	locked, err := s.users.FindLockedUsersToUnlock(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("locked user scan failed")
		return
	}

	for _, user := range locked {
		user.Activate()
		if err := s.users.Update(ctx, user); err != nil {
			s.log.Error().Err(err).Str("user_id", user.ID).Msg("unlock failed")
			continue
		}
		s.log.Info().Str("user_id", user.ID).Msg("account unlocked")
	}
}

func (s *Scheduler) reportStats() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	professionals, err := s.users.CountActiveByTenantType(ctx, domain.TenantProfessional)
	if err != nil {
		s.log.Error().Err(err).Msg("tenant stats failed")
		return
	}
	companies, err := s.users.CountActiveByTenantType(ctx, domain.TenantCompany)
	if err != nil {
		s.log.Error().Err(err).Msg("tenant stats failed")
		return
	}

	expiring, err := s.sessions.FindExpiringInNext(ctx, time.Hour)
	if err != nil {
		s.log.Error().Err(err).Msg("expiring session scan failed")
		return
	}

	s.log.Info().
		Int("professionals", professionals).
		Int("companies", companies).
		Int("sessions_expiring_1h", len(expiring)).
		Msg("hourly stats")
}
