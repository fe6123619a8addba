package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"sigma/auth/internal/domain"
)

const codeColumns = `id, email, code, expires_at, used, attempts, created_at, updated_at, version`

type VerificationCodeRepository struct {
	pool *pgxpool.Pool
}

func NewVerificationCodeRepository(pool *pgxpool.Pool) *VerificationCodeRepository {
	return &VerificationCodeRepository{pool: pool}
}

func (r *VerificationCodeRepository) Save(ctx context.Context, code *domain.VerificationCode) error {
	const query = `
		INSERT INTO verification_codes (
			id, email, code, expires_at, used, attempts, created_at, updated_at, version
		) VALUES (
			$1, $2, $3, $4, $5, $6, NOW(), NOW(), 1
		)
	`

	_, err := r.pool.Exec(ctx, query,
		code.ID,
		code.Email.Value(),
		code.Code,
		code.ExpiresAt,
		code.Used,
		code.Attempts,
	)
	return err
}

func (r *VerificationCodeRepository) Update(ctx context.Context, code *domain.VerificationCode) error {
	const query = `
		UPDATE verification_codes SET
			used = $3,
			attempts = $4,
			updated_at = NOW(),
			version = version + 1
		WHERE id = $1 AND version = $2
	`

	cmd, err := r.pool.Exec(ctx, query, code.ID, code.Version, code.Used, code.Attempts)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrConcurrentModification()
	}
	code.Version++
	return nil
}

// FindByCode resolves the most recent unused code matching the digits. The
// email is carried by the record itself.
func (r *VerificationCodeRepository) FindByCode(ctx context.Context, code string) (*domain.VerificationCode, error) {
	const query = `SELECT ` + codeColumns + `
		FROM verification_codes
		WHERE code = $1 AND used = FALSE
		ORDER BY created_at DESC
		LIMIT 1
	`
	return r.queryOne(ctx, query, code)
}

func (r *VerificationCodeRepository) FindByEmailAndCode(ctx context.Context, email domain.Email, code string) (*domain.VerificationCode, error) {
	const query = `SELECT ` + codeColumns + `
		FROM verification_codes
		WHERE email = $1 AND code = $2
		ORDER BY created_at DESC
		LIMIT 1
	`
	return r.queryOne(ctx, query, email.Value(), code)
}

func (r *VerificationCodeRepository) FindActiveByEmail(ctx context.Context, email domain.Email) ([]*domain.VerificationCode, error) {
	const query = `SELECT ` + codeColumns + `
		FROM verification_codes
		WHERE email = $1 AND used = FALSE AND expires_at > NOW() AND attempts < 3
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, email.Value())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var codes []*domain.VerificationCode
	for rows.Next() {
		code, err := scanCode(rows)
		if err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	return codes, rows.Err()
}

func (r *VerificationCodeRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM verification_codes WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrVerificationCodeNotFound()
	}
	return nil
}

func (r *VerificationCodeRepository) DeleteExpired(ctx context.Context) (int64, error) {
	const query = `DELETE FROM verification_codes WHERE expires_at < NOW() OR used = TRUE`
	cmd, err := r.pool.Exec(ctx, query)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *VerificationCodeRepository) RevokeAllByEmail(ctx context.Context, email domain.Email) error {
	const query = `
		UPDATE verification_codes SET used = TRUE, updated_at = NOW(), version = version + 1
		WHERE email = $1 AND used = FALSE
	`
	_, err := r.pool.Exec(ctx, query, email.Value())
	return err
}

func (r *VerificationCodeRepository) queryOne(ctx context.Context, query string, args ...any) (*domain.VerificationCode, error) {
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
	return scanCode(rows)
}

func scanCode(row pgx.Row) (*domain.VerificationCode, error) {
	var (
		code  domain.VerificationCode
		email string
	)
	if err := row.Scan(
		&code.ID,
		&email,
		&code.Code,
		&code.ExpiresAt,
		&code.Used,
		&code.Attempts,
		&code.CreatedAt,
		&code.UpdatedAt,
		&code.Version,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	code.Email = domain.StoredEmail(email)
	return &code, nil
}
