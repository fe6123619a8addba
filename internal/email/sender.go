package email

import (
	"context"
	"fmt"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"sigma/auth/internal/config"
)

const maxDeliveryAttempts = 2

// Sender drains the outbox stream through a consumer group and delivers via
// SMTP. A failed delivery is re-enqueued once, then dropped with a log line.
type Sender struct {
	client *redis.Client
	cfg    config.MailConfig
	log    zerolog.Logger
}

func NewSender(client *redis.Client, cfg config.MailConfig, log zerolog.Logger) *Sender {
	return &Sender{client: client, cfg: cfg, log: log}
}

func (s *Sender) Start(ctx context.Context) error {
	err := s.client.XGroupCreateMkStream(ctx, s.cfg.Stream, s.cfg.Group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("create consumer group: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := s.read(ctx); err != nil && ctx.Err() == nil {
			s.log.Error().Err(err).Msg("outbox read error")
			time.Sleep(2 * time.Second)
		}
	}
}

func (s *Sender) read(ctx context.Context) error {
	result, err := s.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    s.cfg.Group,
		Consumer: s.cfg.Consumer,
		Streams:  []string{s.cfg.Stream, ">"},
		Count:    10,
		Block:    5 * time.Second,
	}).Result()
	if err != nil && err != redis.Nil {
		return err
	}

	for _, stream := range result {
		for _, msg := range stream.Messages {
			s.handle(ctx, msg)
		}
	}
	return nil
}

func (s *Sender) handle(ctx context.Context, msg redis.XMessage) {
	if err := s.deliver(msg); err != nil {
		attempt := 1
		if raw, ok := msg.Values["attempt"].(string); ok {
			if n, convErr := strconv.Atoi(raw); convErr == nil {
				attempt = n + 1
			}
		}

		if attempt < maxDeliveryAttempts {
			values := make(map[string]any, len(msg.Values)+1)
			for k, v := range msg.Values {
				values[k] = v
			}
			values["attempt"] = strconv.Itoa(attempt)
			if reqErr := s.client.XAdd(ctx, &redis.XAddArgs{Stream: s.cfg.Stream, Values: values}).Err(); reqErr != nil {
				s.log.Error().Err(reqErr).Str("message_id", msg.ID).Msg("requeue failed")
			}
		} else {
			s.log.Error().
				Err(err).
				Str("message_id", msg.ID).
				Msg("mail dropped after retries")
		}
	}

	if err := s.client.XAck(ctx, s.cfg.Stream, s.cfg.Group, msg.ID).Err(); err != nil {
		s.log.Error().Err(err).Str("message_id", msg.ID).Msg("ack failed")
	}
}

func (s *Sender) deliver(msg redis.XMessage) error {
	msgType, _ := msg.Values["type"].(string)
	to, _ := msg.Values["to"].(string)
	if msgType == "" || to == "" {
		return fmt.Errorf("malformed outbox message %s", msg.ID)
	}

	subject, body, err := render(msgType, msg.Values)
	if err != nil {
		return err
	}

	if err := s.send(to, subject, body); err != nil {
		return err
	}

	s.log.Info().
		Str("type", msgType).
		Str("message_id", msg.ID).
		Msg("mail sent")
	return nil
}

func (s *Sender) send(to, subject, htmlBody string) error {
	fromHeader := fmt.Sprintf("%s <%s>", s.cfg.FromName, s.cfg.From)

	payload := strings.Join([]string{
		fmt.Sprintf("From: %s", fromHeader),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		`Content-Type: text/html; charset="UTF-8"`,
		"",
		htmlBody,
	}, "\r\n")

	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.SMTPHost)

	return smtp.SendMail(addr, auth, s.cfg.From, []string{to}, []byte(payload))
}

// VerifyConfiguration dials the SMTP host and quits without sending.
func (s *Sender) VerifyConfiguration(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)

	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	return client.Quit()
}
