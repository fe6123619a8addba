package email

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"sigma/auth/internal/domain"
)

// Message types carried on the outbox stream.
const (
	TypeVerificationCode = "verification_code"
	TypeWelcome          = "welcome"
	TypeNewSession       = "new_session"
	TypeAccountLocked    = "account_locked"
	TypePasswordChanged  = "password_changed"
)

// Outbox implements domain.EmailService by enqueueing messages onto a redis
// stream. Delivery happens out of band in the Sender, so use-case outcomes
// never depend on SMTP availability.
type Outbox struct {
	client *redis.Client
	stream string
	log    zerolog.Logger
}

func NewOutbox(client *redis.Client, stream string, log zerolog.Logger) *Outbox {
	return &Outbox{client: client, stream: stream, log: log}
}

func (o *Outbox) SendVerificationCode(ctx context.Context, email domain.Email, code *domain.VerificationCode) error {
	return o.enqueue(ctx, map[string]any{
		"type":       TypeVerificationCode,
		"to":         email.Value(),
		"code":       code.Code,
		"expires_at": code.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

func (o *Outbox) SendWelcomeEmail(ctx context.Context, email domain.Email, userName string) error {
	return o.enqueue(ctx, map[string]any{
		"type": TypeWelcome,
		"to":   email.Value(),
		"name": userName,
	})
}

func (o *Outbox) SendNewSessionNotification(ctx context.Context, email domain.Email, deviceInfo, ipAddress string) error {
	return o.enqueue(ctx, map[string]any{
		"type":   TypeNewSession,
		"to":     email.Value(),
		"device": deviceInfo,
		"ip":     ipAddress,
	})
}

func (o *Outbox) SendAccountLockedNotification(ctx context.Context, email domain.Email, unlocksAt time.Time) error {
	return o.enqueue(ctx, map[string]any{
		"type":       TypeAccountLocked,
		"to":         email.Value(),
		"unlocks_at": unlocksAt.UTC().Format(time.RFC3339),
	})
}

func (o *Outbox) SendPasswordChangedNotification(ctx context.Context, email domain.Email) error {
	return o.enqueue(ctx, map[string]any{
		"type": TypePasswordChanged,
		"to":   email.Value(),
	})
}

func (o *Outbox) VerifyConfiguration(ctx context.Context) error {
	return o.client.Ping(ctx).Err()
}

func (o *Outbox) enqueue(ctx context.Context, values map[string]any) error {
	id, err := o.client.XAdd(ctx, &redis.XAddArgs{
		Stream: o.stream,
		Values: values,
	}).Result()
	if err != nil {
		return err
	}

	o.log.Debug().
		Str("message_id", id).
		Str("type", values["type"].(string)).
		Msg("mail enqueued")
	return nil
}
