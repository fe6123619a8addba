package domain

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// DomainError is the single error shape the service exposes to callers.
// Code is stable and machine-readable; Details carries optional diagnostics.
type DomainError struct {
	Status  int
	Code    string
	Message string
	Details map[string]any
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is matches two domain errors by code so errors.Is works against the
// constructor values below.
func (e *DomainError) Is(target error) bool {
	var de *DomainError
	if !errors.As(target, &de) {
		return false
	}
	return de.Code == e.Code
}

func NewDomainError(status int, code, message string, details map[string]any) *DomainError {
	return &DomainError{Status: status, Code: code, Message: message, Details: details}
}

func ErrInvalidEmail(email string) *DomainError {
	return NewDomainError(http.StatusBadRequest, "INVALID_EMAIL", "invalid email format", map[string]any{"email": email})
}

func ErrInvalidPassword(reason string) *DomainError {
	return NewDomainError(http.StatusBadRequest, "INVALID_PASSWORD", fmt.Sprintf("invalid password: %s", reason), nil)
}

func ErrInvalidPhone(phone string) *DomainError {
	return NewDomainError(http.StatusBadRequest, "INVALID_PHONE", "invalid phone format", map[string]any{"phone": phone})
}

func ErrInvalidTenantType(tenantType string) *DomainError {
	return NewDomainError(http.StatusBadRequest, "INVALID_TENANT_TYPE", "invalid tenant type", map[string]any{"tenantType": tenantType})
}

func ErrInvalidVerificationCode() *DomainError {
	return NewDomainError(http.StatusBadRequest, "INVALID_VERIFICATION_CODE", "invalid verification code", nil)
}

func ErrUserNotFound(email string) *DomainError {
	details := map[string]any{}
	if email != "" {
		details["email"] = email
	}
	return NewDomainError(http.StatusNotFound, "USER_NOT_FOUND", "user not found", details)
}

func ErrVerificationCodeNotFound() *DomainError {
	return NewDomainError(http.StatusNotFound, "VERIFICATION_CODE_NOT_FOUND", "verification code not found", nil)
}

func ErrSessionNotFound() *DomainError {
	return NewDomainError(http.StatusNotFound, "SESSION_NOT_FOUND", "session not found", nil)
}

func ErrUserAlreadyExists(email string) *DomainError {
	return NewDomainError(http.StatusConflict, "USER_ALREADY_EXISTS", "user already exists", map[string]any{"email": email})
}

func ErrConcurrentModification() *DomainError {
	return NewDomainError(http.StatusConflict, "CONCURRENT_MODIFICATION", "entity was modified concurrently", nil)
}

func ErrInvalidCredentials() *DomainError {
	return NewDomainError(http.StatusUnauthorized, "AUTH_INVALID_CREDENTIALS", "invalid credentials", nil)
}

func ErrInvalidToken() *DomainError {
	return NewDomainError(http.StatusUnauthorized, "INVALID_TOKEN", "invalid token", nil)
}

func ErrTokenExpired() *DomainError {
	return NewDomainError(http.StatusUnauthorized, "TOKEN_EXPIRED", "token expired", nil)
}

func ErrTokenNotFound() *DomainError {
	return NewDomainError(http.StatusUnauthorized, "TOKEN_NOT_FOUND", "token not found", nil)
}

func ErrSessionExpired() *DomainError {
	return NewDomainError(http.StatusUnauthorized, "SESSION_EXPIRED", "session expired", nil)
}

func ErrUserNotVerified() *DomainError {
	return NewDomainError(http.StatusForbidden, "USER_NOT_VERIFIED", "user not verified", nil)
}

func ErrAccountSuspended() *DomainError {
	return NewDomainError(http.StatusForbidden, "ACCOUNT_SUSPENDED", "account suspended", nil)
}

func ErrAccountLocked(unlocksAt time.Time) *DomainError {
	return NewDomainError(
		http.StatusLocked,
		"ACCOUNT_LOCKED",
		fmt.Sprintf("account locked until %s after repeated failed login attempts", unlocksAt.UTC().Format(time.RFC3339)),
		map[string]any{"unlocksAt": unlocksAt.UTC().Format(time.RFC3339)},
	)
}

func ErrVerificationCodeExpired() *DomainError {
	return NewDomainError(http.StatusGone, "VERIFICATION_CODE_EXPIRED", "verification code expired", nil)
}

func ErrMaxSessionsExceeded(maxSessions int) *DomainError {
	return NewDomainError(
		http.StatusTooManyRequests,
		"MAX_SESSIONS_EXCEEDED",
		fmt.Sprintf("maximum of %d concurrent sessions reached", maxSessions),
		map[string]any{"maxSessions": maxSessions},
	)
}

// WrapInternal leaves domain errors untouched and folds anything else into a
// per-use-case 500 so callers never see raw internals.
func WrapInternal(err error, code, message string) error {
	if err == nil {
		return nil
	}
	var de *DomainError
	if errors.As(err, &de) {
		return err
	}
	return NewDomainError(http.StatusInternalServerError, code, message, map[string]any{
		"originalError": err.Error(),
	})
}
