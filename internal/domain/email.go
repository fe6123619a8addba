package domain

import (
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const maxEmailLength = 320

// Email is a normalized, validated address. The zero value is invalid.
type Email struct {
	value string
}

func NewEmail(raw string) (Email, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if len(normalized) > maxEmailLength || !emailPattern.MatchString(normalized) {
		return Email{}, ErrInvalidEmail(raw)
	}
	return Email{value: normalized}, nil
}

// StoredEmail rehydrates an address already normalized at creation time.
func StoredEmail(value string) Email {
	return Email{value: value}
}

func (e Email) Value() string {
	return e.value
}

func (e Email) Equals(other Email) bool {
	return e.value == other.value
}

func (e Email) String() string {
	return e.value
}
