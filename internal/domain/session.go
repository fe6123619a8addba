package domain

import "time"

type SessionStatus string

const (
	SessionStatusActive  SessionStatus = "active"
	SessionStatusExpired SessionStatus = "expired"
	SessionStatusRevoked SessionStatus = "revoked"
)

type DeviceMeta struct {
	UserAgent string
	IPAddress string
	Platform  string
	Browser   string
	OS        string
}

// Session binds a refresh token to one (user, device) pair. Its ID never
// changes across refresh-token rotation; ExpiresAt is a hard boundary
// independent of Status.
type Session struct {
	ID           string
	UserID       string
	DeviceID     string
	DeviceMeta   DeviceMeta
	Status       SessionStatus
	ExpiresAt    time.Time
	RefreshToken string
	LastAccessAt time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Version      int
}

func NewSession(id, userID, deviceID string, meta DeviceMeta, refreshToken string, expiresAt time.Time) *Session {
	now := time.Now()
	return &Session{
		ID:           id,
		UserID:       userID,
		DeviceID:     deviceID,
		DeviceMeta:   meta,
		Status:       SessionStatusActive,
		ExpiresAt:    expiresAt,
		RefreshToken: refreshToken,
		LastAccessAt: now,
		CreatedAt:    now,
		UpdatedAt:    now,
		Version:      1,
	}
}

func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

func (s *Session) IsActive() bool {
	return s.Status == SessionStatusActive && !s.IsExpired()
}

func (s *Session) Revoke() {
	s.Status = SessionStatusRevoked
	s.touch()
}

func (s *Session) MarkAsExpired() {
	s.Status = SessionStatusExpired
	s.touch()
}

func (s *Session) UpdateLastAccess() {
	s.LastAccessAt = time.Now()
	s.touch()
}

// UpdateRefreshToken rotates the token and extends the expiry in place.
func (s *Session) UpdateRefreshToken(newRefreshToken string, newExpiresAt time.Time) {
	s.RefreshToken = newRefreshToken
	s.ExpiresAt = newExpiresAt
	s.UpdateLastAccess()
}

func (s *Session) touch() {
	s.UpdatedAt = time.Now()
}
