package usecase_test

import (
	"context"
	"sort"
	"time"

	"sigma/auth/internal/domain"
)

// In-memory repository fakes mirroring the postgres implementations: absent
// entities come back as (nil, nil) and lookups filter the way the SQL does.

type fakeUserRepo struct {
	users   map[string]*domain.User
	saveErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*domain.User{}}
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email domain.Email) (*domain.User, error) {
	for _, user := range r.users {
		if user.Email.Equals(email) {
			return user, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	return r.users[id], nil
}

func (r *fakeUserRepo) Save(_ context.Context, user *domain.User) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	r.users[user.ID] = user
	user.Version++
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id string) error {
	if user, ok := r.users[id]; ok {
		user.MarkAsDeleted()
	}
	return nil
}

func (r *fakeUserRepo) ExistsByEmail(ctx context.Context, email domain.Email) (bool, error) {
	user, err := r.FindByEmail(ctx, email)
	return user != nil, err
}

func (r *fakeUserRepo) CountActiveByTenantType(_ context.Context, tenantType domain.TenantType) (int, error) {
	count := 0
	for _, user := range r.users {
		if user.TenantType == tenantType && user.Status == domain.UserStatusActive {
			count++
		}
	}
	return count, nil
}

func (r *fakeUserRepo) FindLockedUsersToUnlock(_ context.Context) ([]*domain.User, error) {
	var out []*domain.User
	for _, user := range r.users {
		if user.LockedUntil != nil && !user.IsLocked() {
			out = append(out, user)
		}
	}
	return out, nil
}

type fakeSessionRepo struct {
	sessions map[string]*domain.Session
	saveErr  error
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: map[string]*domain.Session{}}
}

func (r *fakeSessionRepo) Save(_ context.Context, session *domain.Session) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.sessions[session.ID] = session
	return nil
}

func (r *fakeSessionRepo) FindByID(_ context.Context, id string) (*domain.Session, error) {
	return r.sessions[id], nil
}

func (r *fakeSessionRepo) FindByRefreshToken(_ context.Context, refreshToken string) (*domain.Session, error) {
	for _, session := range r.sessions {
		if session.RefreshToken == refreshToken {
			return session, nil
		}
	}
	return nil, nil
}

func (r *fakeSessionRepo) FindActiveByUserID(_ context.Context, userID string) ([]*domain.Session, error) {
	var out []*domain.Session
	for _, session := range r.sessions {
		if session.UserID == userID && session.IsActive() {
			out = append(out, session)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastAccessAt.After(out[j].LastAccessAt) })
	return out, nil
}

func (r *fakeSessionRepo) FindByUserIDAndDeviceID(_ context.Context, userID, deviceID string) (*domain.Session, error) {
	for _, session := range r.sessions {
		if session.UserID == userID && session.DeviceID == deviceID && session.IsActive() {
			return session, nil
		}
	}
	return nil, nil
}

func (r *fakeSessionRepo) Update(_ context.Context, session *domain.Session) error {
	r.sessions[session.ID] = session
	session.Version++
	return nil
}

func (r *fakeSessionRepo) Delete(_ context.Context, id string) error {
	delete(r.sessions, id)
	return nil
}

func (r *fakeSessionRepo) RevokeAllByUserID(_ context.Context, userID string) error {
	for _, session := range r.sessions {
		if session.UserID == userID && session.Status == domain.SessionStatusActive {
			session.Revoke()
		}
	}
	return nil
}

func (r *fakeSessionRepo) RevokeOldestSessions(ctx context.Context, userID string, keepCount int) error {
	active, _ := r.FindActiveByUserID(ctx, userID)
	for i := keepCount; i < len(active); i++ {
		active[i].Revoke()
	}
	return nil
}

func (r *fakeSessionRepo) CountActiveByUserID(ctx context.Context, userID string) (int, error) {
	active, _ := r.FindActiveByUserID(ctx, userID)
	return len(active), nil
}

func (r *fakeSessionRepo) DeleteExpired(_ context.Context) (int64, error) {
	var count int64
	for id, session := range r.sessions {
		if session.IsExpired() || session.Status != domain.SessionStatusActive {
			delete(r.sessions, id)
			count++
		}
	}
	return count, nil
}

func (r *fakeSessionRepo) FindExpiringInNext(_ context.Context, window time.Duration) ([]*domain.Session, error) {
	limit := time.Now().Add(window)
	var out []*domain.Session
	for _, session := range r.sessions {
		if session.IsActive() && session.ExpiresAt.Before(limit) {
			out = append(out, session)
		}
	}
	return out, nil
}

type fakeCodeRepo struct {
	codes   map[string]*domain.VerificationCode
	saveErr error
}

func newFakeCodeRepo() *fakeCodeRepo {
	return &fakeCodeRepo{codes: map[string]*domain.VerificationCode{}}
}

func (r *fakeCodeRepo) Save(_ context.Context, code *domain.VerificationCode) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.codes[code.ID] = code
	return nil
}

func (r *fakeCodeRepo) FindByCode(_ context.Context, code string) (*domain.VerificationCode, error) {
	var latest *domain.VerificationCode
	for _, candidate := range r.codes {
		if candidate.Code != code || candidate.Used {
			continue
		}
		if latest == nil || candidate.CreatedAt.After(latest.CreatedAt) {
			latest = candidate
		}
	}
	return latest, nil
}

func (r *fakeCodeRepo) FindByEmailAndCode(_ context.Context, email domain.Email, code string) (*domain.VerificationCode, error) {
	for _, candidate := range r.codes {
		if candidate.Email.Equals(email) && candidate.Code == code && !candidate.Used {
			return candidate, nil
		}
	}
	return nil, nil
}

func (r *fakeCodeRepo) FindActiveByEmail(_ context.Context, email domain.Email) ([]*domain.VerificationCode, error) {
	var out []*domain.VerificationCode
	for _, candidate := range r.codes {
		if candidate.Email.Equals(email) && candidate.IsValid() {
			out = append(out, candidate)
		}
	}
	return out, nil
}

func (r *fakeCodeRepo) Update(_ context.Context, code *domain.VerificationCode) error {
	r.codes[code.ID] = code
	code.Version++
	return nil
}

func (r *fakeCodeRepo) Delete(_ context.Context, id string) error {
	delete(r.codes, id)
	return nil
}

func (r *fakeCodeRepo) DeleteExpired(_ context.Context) (int64, error) {
	var count int64
	for id, code := range r.codes {
		if code.IsExpired() || code.Used {
			delete(r.codes, id)
			count++
		}
	}
	return count, nil
}

func (r *fakeCodeRepo) RevokeAllByEmail(_ context.Context, email domain.Email) error {
	for _, code := range r.codes {
		if code.Email.Equals(email) {
			code.Used = true
		}
	}
	return nil
}

type fakeMailer struct {
	verificationCodes []string
	welcomes          []string
	newSessions       []string
	lockNotices       []string

	verificationErr error
	welcomeErr      error
}

func (m *fakeMailer) SendVerificationCode(_ context.Context, email domain.Email, code *domain.VerificationCode) error {
	if m.verificationErr != nil {
		return m.verificationErr
	}
	m.verificationCodes = append(m.verificationCodes, code.Code)
	return nil
}

func (m *fakeMailer) SendWelcomeEmail(_ context.Context, email domain.Email, _ string) error {
	if m.welcomeErr != nil {
		return m.welcomeErr
	}
	m.welcomes = append(m.welcomes, email.Value())
	return nil
}

func (m *fakeMailer) SendNewSessionNotification(_ context.Context, email domain.Email, _, _ string) error {
	m.newSessions = append(m.newSessions, email.Value())
	return nil
}

func (m *fakeMailer) SendAccountLockedNotification(_ context.Context, email domain.Email, _ time.Time) error {
	m.lockNotices = append(m.lockNotices, email.Value())
	return nil
}

func (m *fakeMailer) SendPasswordChangedNotification(_ context.Context, _ domain.Email) error {
	return nil
}

func (m *fakeMailer) VerifyConfiguration(_ context.Context) error {
	return nil
}
