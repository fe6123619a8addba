package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"sigma/auth/internal/domain"
)

const sessionColumns = `id, user_id, device_id, user_agent, ip_address, platform, browser, os,
	status, refresh_token, expires_at, last_access_at, created_at, updated_at, version`

type SessionRepository struct {
	pool *pgxpool.Pool
}

func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

func (r *SessionRepository) Save(ctx context.Context, session *domain.Session) error {
	const query = `
		INSERT INTO sessions (
			id, user_id, device_id, user_agent, ip_address, platform, browser, os,
			status, refresh_token, expires_at, last_access_at, created_at, updated_at, version
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW(), 1
		)
	`

	_, err := r.pool.Exec(ctx, query,
		session.ID,
		session.UserID,
		session.DeviceID,
		session.DeviceMeta.UserAgent,
		session.DeviceMeta.IPAddress,
		session.DeviceMeta.Platform,
		session.DeviceMeta.Browser,
		session.DeviceMeta.OS,
		session.Status,
		session.RefreshToken,
		session.ExpiresAt,
		session.LastAccessAt,
	)
	return err
}

func (r *SessionRepository) Update(ctx context.Context, session *domain.Session) error {
	const query = `
		UPDATE sessions SET
			status = $3,
			refresh_token = $4,
			expires_at = $5,
			last_access_at = $6,
			updated_at = NOW(),
			version = version + 1
		WHERE id = $1 AND version = $2
	`

	cmd, err := r.pool.Exec(ctx, query,
		session.ID,
		session.Version,
		session.Status,
		session.RefreshToken,
		session.ExpiresAt,
		session.LastAccessAt,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrConcurrentModification()
	}
	session.Version++
	return nil
}

func (r *SessionRepository) FindByID(ctx context.Context, id string) (*domain.Session, error) {
	const query = `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1`
	return r.queryOne(ctx, query, id)
}

// FindByRefreshToken only returns live sessions; a revoked or expired token
// behaves as if it never existed.
func (r *SessionRepository) FindByRefreshToken(ctx context.Context, refreshToken string) (*domain.Session, error) {
	const query = `SELECT ` + sessionColumns + `
		FROM sessions
		WHERE refresh_token = $1 AND status = 'active' AND expires_at > NOW()
	`
	return r.queryOne(ctx, query, refreshToken)
}

func (r *SessionRepository) FindActiveByUserID(ctx context.Context, userID string) ([]*domain.Session, error) {
	const query = `SELECT ` + sessionColumns + `
		FROM sessions
		WHERE user_id = $1 AND status = 'active' AND expires_at > NOW()
		ORDER BY last_access_at DESC
	`
	return r.queryMany(ctx, query, userID)
}

func (r *SessionRepository) FindByUserIDAndDeviceID(ctx context.Context, userID, deviceID string) (*domain.Session, error) {
	const query = `SELECT ` + sessionColumns + `
		FROM sessions
		WHERE user_id = $1 AND device_id = $2 AND status = 'active' AND expires_at > NOW()
	`
	return r.queryOne(ctx, query, userID, deviceID)
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM sessions WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrSessionNotFound()
	}
	return nil
}

func (r *SessionRepository) RevokeAllByUserID(ctx context.Context, userID string) error {
	const query = `
		UPDATE sessions SET status = 'revoked', updated_at = NOW(), version = version + 1
		WHERE user_id = $1 AND status = 'active'
	`
	_, err := r.pool.Exec(ctx, query, userID)
	return err
}

// RevokeOldestSessions keeps the keepCount most recently used active
// sessions and revokes the rest.
func (r *SessionRepository) RevokeOldestSessions(ctx context.Context, userID string, keepCount int) error {
	const query = `
		UPDATE sessions SET status = 'revoked', updated_at = NOW(), version = version + 1
		WHERE id IN (
			SELECT id FROM sessions
			WHERE user_id = $1 AND status = 'active' AND expires_at > NOW()
			ORDER BY last_access_at DESC
			OFFSET $2
		)
	`
	_, err := r.pool.Exec(ctx, query, userID, keepCount)
	return err
}

func (r *SessionRepository) CountActiveByUserID(ctx context.Context, userID string) (int, error) {
	const query = `
		SELECT COUNT(*) FROM sessions
		WHERE user_id = $1 AND status = 'active' AND expires_at > NOW()
	`
	var count int
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// Touch stamps last_access_at without bumping the version; an access stamp
// is not a state change and must not fail concurrent writers.
func (r *SessionRepository) Touch(ctx context.Context, id string) error {
	const query = `UPDATE sessions SET last_access_at = NOW(), updated_at = NOW() WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

func (r *SessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	const query = `DELETE FROM sessions WHERE expires_at < NOW() OR status <> 'active'`
	cmd, err := r.pool.Exec(ctx, query)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *SessionRepository) FindExpiringInNext(ctx context.Context, window time.Duration) ([]*domain.Session, error) {
	const query = `SELECT ` + sessionColumns + `
		FROM sessions
		WHERE status = 'active' AND expires_at > NOW() AND expires_at <= NOW() + $1
		ORDER BY expires_at
	`
	return r.queryMany(ctx, query, window)
}

func (r *SessionRepository) queryOne(ctx context.Context, query string, args ...any) (*domain.Session, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return scanSession(rows)
}

func (r *SessionRepository) queryMany(ctx context.Context, query string, args ...any) ([]*domain.Session, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*domain.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

func scanSession(row pgx.Row) (*domain.Session, error) {
	var (
		session domain.Session
		status  string
	)
	if err := row.Scan(
		&session.ID,
		&session.UserID,
		&session.DeviceID,
		&session.DeviceMeta.UserAgent,
		&session.DeviceMeta.IPAddress,
		&session.DeviceMeta.Platform,
		&session.DeviceMeta.Browser,
		&session.DeviceMeta.OS,
		&status,
		&session.RefreshToken,
		&session.ExpiresAt,
		&session.LastAccessAt,
		&session.CreatedAt,
		&session.UpdatedAt,
		&session.Version,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	session.Status = domain.SessionStatus(status)
	return &session, nil
}
