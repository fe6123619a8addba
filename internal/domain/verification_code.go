package domain

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const (
	verificationCodeLength = 5
	maxCodeAttempts        = 3

	DefaultVerificationCodeTTL = 15 * time.Minute
)

// VerificationCode is a single-use 5-digit email challenge. Every check
// consumes an attempt regardless of outcome.
type VerificationCode struct {
	ID        string
	Email     Email
	Code      string
	ExpiresAt time.Time
	Used      bool
	Attempts  int
	CreatedAt time.Time
	UpdatedAt time.Time
	Version   int
}

func NewVerificationCode(id string, email Email, ttl time.Duration) (*VerificationCode, error) {
	if ttl <= 0 {
		ttl = DefaultVerificationCodeTTL
	}
	code, err := generateNumericCode(verificationCodeLength)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	return &VerificationCode{
		ID:        id,
		Email:     email,
		Code:      code,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
		UpdatedAt: now,
		Version:   1,
	}, nil
}

func (c *VerificationCode) IsExpired() bool {
	return time.Now().After(c.ExpiresAt)
}

func (c *VerificationCode) IsValid() bool {
	return !c.Used && !c.IsExpired() && c.Attempts < maxCodeAttempts
}

// Use consumes the code. Once used a code never becomes valid again.
func (c *VerificationCode) Use() error {
	if !c.IsValid() {
		return ErrInvalidVerificationCode()
	}
	c.Used = true
	c.touch()
	return nil
}

func (c *VerificationCode) IncrementAttempts() {
	c.Attempts++
	c.touch()
}

func (c *VerificationCode) touch() {
	c.UpdatedAt = time.Now()
}

func generateNumericCode(length int) (string, error) {
	digits := make([]byte, length)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("generate verification code: %w", err)
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits), nil
}
