package domain

import "time"

type TenantType string

const (
	TenantProfessional TenantType = "profesional"
	TenantCompany      TenantType = "empresa"
)

func ParseTenantType(raw string) (TenantType, error) {
	switch TenantType(raw) {
	case TenantProfessional, TenantCompany:
		return TenantType(raw), nil
	default:
		return "", ErrInvalidTenantType(raw)
	}
}

type UserStatus string

const (
	UserStatusPendingVerification UserStatus = "pending_verification"
	UserStatusActive              UserStatus = "active"
	UserStatusSuspended           UserStatus = "suspended"
	UserStatusDeleted             UserStatus = "deleted"
)

const (
	maxFailedLoginAttempts = 5
	accountLockDuration    = 30 * time.Minute
)

// User is the aggregate root of the authentication domain. Version reflects
// the persisted revision; the storage layer bumps it with a compare-and-swap
// on every update.
type User struct {
	ID                  string
	Email               Email
	HashedPassword      Password
	Phone               Phone
	Name                string
	Country             string
	City                string
	TenantType          TenantType
	Status              UserStatus
	LastLoginAt         *time.Time
	FailedLoginAttempts int
	LockedUntil         *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
	Version             int
}

func newUser(id string, email Email, hashedPassword Password, phone Phone, name, country, city string, tenantType TenantType) *User {
	now := time.Now()
	return &User{
		ID:             id,
		Email:          email,
		HashedPassword: hashedPassword,
		Phone:          phone,
		Name:           name,
		Country:        country,
		City:           city,
		TenantType:     tenantType,
		Status:         UserStatusPendingVerification,
		CreatedAt:      now,
		UpdatedAt:      now,
		Version:        1,
	}
}

func NewProfessionalUser(id string, email Email, hashedPassword Password, phone Phone, name, country, city string) *User {
	return newUser(id, email, hashedPassword, phone, name, country, city, TenantProfessional)
}

func NewCompanyUser(id string, email Email, hashedPassword Password, phone Phone, companyName, country, city string) *User {
	return newUser(id, email, hashedPassword, phone, companyName, country, city, TenantCompany)
}

// Verify transitions a pending user to active; a no-op in any other state.
func (u *User) Verify() {
	if u.Status == UserStatusPendingVerification {
		u.Status = UserStatusActive
		u.touch()
	}
}

func (u *User) Suspend() {
	u.Status = UserStatusSuspended
	u.touch()
}

// Activate forces the user into the active state and clears any lockout.
func (u *User) Activate() {
	u.Status = UserStatusActive
	u.FailedLoginAttempts = 0
	u.LockedUntil = nil
	u.touch()
}

func (u *User) MarkAsDeleted() {
	u.Status = UserStatusDeleted
	u.touch()
}

func (u *User) RecordSuccessfulLogin() {
	now := time.Now()
	u.LastLoginAt = &now
	u.FailedLoginAttempts = 0
	u.LockedUntil = nil
	u.touch()
}

func (u *User) RecordFailedLogin() {
	u.FailedLoginAttempts++
	if u.FailedLoginAttempts >= maxFailedLoginAttempts {
		until := time.Now().Add(accountLockDuration)
		u.LockedUntil = &until
	}
	u.touch()
}

func (u *User) IsLocked() bool {
	return u.LockedUntil != nil && time.Now().Before(*u.LockedUntil)
}

func (u *User) IsActive() bool {
	return u.Status == UserStatusActive && !u.IsLocked()
}

func (u *User) IsPendingVerification() bool {
	return u.Status == UserStatusPendingVerification
}

func (u *User) UpdatePassword(newHashedPassword Password) {
	u.HashedPassword = newHashedPassword
	u.touch()
}

func (u *User) UpdateProfile(name string, phone Phone, country, city string) {
	u.Name = name
	u.Phone = phone
	u.Country = country
	u.City = city
	u.touch()
}

func (u *User) touch() {
	u.UpdatedAt = time.Now()
}
