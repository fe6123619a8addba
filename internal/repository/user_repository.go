package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"sigma/auth/internal/domain"
)

const userColumns = `id, email, password_hash, phone, name, country, city, tenant_type, status,
	last_login_at, failed_login_attempts, locked_until, created_at, updated_at, version`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Save(ctx context.Context, user *domain.User) error {
	const query = `
		INSERT INTO users (
			id, email, password_hash, phone, name, country, city, tenant_type, status,
			last_login_at, failed_login_attempts, locked_until, created_at, updated_at, version
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW(), 1
		)
	`

	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Email.Value(),
		user.HashedPassword.Value(),
		user.Phone.Value(),
		user.Name,
		user.Country,
		user.City,
		user.TenantType,
		user.Status,
		user.LastLoginAt,
		user.FailedLoginAttempts,
		user.LockedUntil,
	)
	return err
}

// Update is conditional on the version the entity was loaded at; a stale
// write surfaces as ErrConcurrentModification instead of silently winning.
func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	const query = `
		UPDATE users SET
			password_hash = $3,
			phone = $4,
			name = $5,
			country = $6,
			city = $7,
			status = $8,
			last_login_at = $9,
			failed_login_attempts = $10,
			locked_until = $11,
			updated_at = NOW(),
			version = version + 1
		WHERE id = $1 AND version = $2
	`

	cmd, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Version,
		user.HashedPassword.Value(),
		user.Phone.Value(),
		user.Name,
		user.Country,
		user.City,
		user.Status,
		user.LastLoginAt,
		user.FailedLoginAttempts,
		user.LockedUntil,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrConcurrentModification()
	}
	user.Version++
	return nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email domain.Email) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.queryOne(ctx, query, email.Value())
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.queryOne(ctx, query, id)
}

// Delete is a soft delete; rows are never removed physically.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	const query = `
		UPDATE users SET status = $2, updated_at = NOW(), version = version + 1
		WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query, id, domain.UserStatusDeleted)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrUserNotFound("")
	}
	return nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email domain.Email) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, email.Value()).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *UserRepository) CountActiveByTenantType(ctx context.Context, tenantType domain.TenantType) (int, error) {
	const query = `SELECT COUNT(*) FROM users WHERE tenant_type = $1 AND status = $2`
	var count int
	if err := r.pool.QueryRow(ctx, query, tenantType, domain.UserStatusActive).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *UserRepository) FindLockedUsersToUnlock(ctx context.Context) ([]*domain.User, error) {
	const query = `SELECT ` + userColumns + `
		FROM users
		WHERE locked_until IS NOT NULL AND locked_until <= NOW()
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *UserRepository) queryOne(ctx context.Context, query string, args ...any) (*domain.User, error) {
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
	return scanUser(rows)
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		user   domain.User
		email  string
		hash   string
		phone  string
		tenant string
		status string
	)
	if err := row.Scan(
		&user.ID,
		&email,
		&hash,
		&phone,
		&user.Name,
		&user.Country,
		&user.City,
		&tenant,
		&status,
		&user.LastLoginAt,
		&user.FailedLoginAttempts,
		&user.LockedUntil,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.Version,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	user.Email = domain.StoredEmail(email)
	user.HashedPassword = domain.PasswordFromHash(hash)
	user.Phone = domain.StoredPhone(phone)
	user.TenantType = domain.TenantType(tenant)
	user.Status = domain.UserStatus(status)
	return &user, nil
}
