package domain

import (
	"fmt"
	"strings"
	"unicode"
)

type PasswordPolicy struct {
	MinLength        int
	RequireUppercase bool
	RequireLowercase bool
	RequireNumbers   bool
	RequireSymbols   bool
}

func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinLength:        12,
		RequireUppercase: true,
		RequireLowercase: true,
		RequireNumbers:   true,
		RequireSymbols:   true,
	}
}

const passwordSymbols = `!@#$%^&*()_+-=[]{};':"\|,.<>/?`

var commonPasswords = map[string]struct{}{
	"123456789012": {},
	"password1234": {},
	"qwerty123456": {},
	"admin1234567": {},
	"letmein12345": {},
	"welcome12345": {},
	"monkey123456": {},
	"dragon123456": {},
}

// Password holds either a plaintext secret (NewPassword) or an encoded hash
// (PasswordFromHash). The type does not track which; callers must.
type Password struct {
	value string
}

func NewPassword(raw string, policy *PasswordPolicy) (Password, error) {
	active := DefaultPasswordPolicy()
	if policy != nil {
		active = *policy
	}
	if err := validatePassword(raw, active); err != nil {
		return Password{}, err
	}
	return Password{value: raw}, nil
}

// PasswordFromHash wraps an already-hashed value without validation.
func PasswordFromHash(hash string) Password {
	return Password{value: hash}
}

func (p Password) Value() string {
	return p.value
}

func (p Password) Equals(other Password) bool {
	return p.value == other.value
}

func (p Password) String() string {
	return "[PROTECTED]"
}

func validatePassword(raw string, policy PasswordPolicy) error {
	if len(raw) < policy.MinLength {
		return ErrInvalidPassword(fmt.Sprintf("must be at least %d characters long", policy.MinLength))
	}
	if policy.RequireUppercase && !strings.ContainsFunc(raw, unicode.IsUpper) {
		return ErrInvalidPassword("must contain at least one uppercase letter")
	}
	if policy.RequireLowercase && !strings.ContainsFunc(raw, unicode.IsLower) {
		return ErrInvalidPassword("must contain at least one lowercase letter")
	}
	if policy.RequireNumbers && !strings.ContainsFunc(raw, unicode.IsDigit) {
		return ErrInvalidPassword("must contain at least one digit")
	}
	if policy.RequireSymbols && !strings.ContainsAny(raw, passwordSymbols) {
		return ErrInvalidPassword("must contain at least one special symbol")
	}
	if strings.ContainsFunc(raw, unicode.IsSpace) {
		return ErrInvalidPassword("must not contain whitespace")
	}
	if _, ok := commonPasswords[strings.ToLower(raw)]; ok {
		return ErrInvalidPassword("is too common, choose a stronger one")
	}
	return nil
}
