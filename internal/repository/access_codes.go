package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Ahmadreza-Avandi/mami-land/internal/models"
)

var ErrCodeNotFound = errors.New("access code not found")

type AccessCodeRepository struct {
	pool *pgxpool.Pool
}

func NewAccessCodeRepository(pool *pgxpool.Pool) *AccessCodeRepository {
	return &AccessCodeRepository{pool: pool}
}

func (r *AccessCodeRepository) Create(ctx context.Context, code models.AccessCode) error {
	const query = `
		INSERT INTO access_codes (code, created_at, expires_at)
		VALUES ($1, NOW(), $2)
	`
	_, err := r.pool.Exec(ctx, query, code.Code, code.ExpiresAt)
	return err
}

// Consume atomically marks an unused, unexpired code as used. The single
// conditional UPDATE is what makes two concurrent attempts mutually
// exclusive; there is no separate read.
func (r *AccessCodeRepository) Consume(ctx context.Context, code string, usedBy string) (bool, error) {
	const query = `
		UPDATE access_codes
		SET is_used = TRUE, used_at = NOW(), used_by = NULLIF($2, '')
		WHERE code = $1 AND is_used = FALSE AND expires_at > NOW()
	`
	cmd, err := r.pool.Exec(ctx, query, strings.ToUpper(strings.TrimSpace(code)), usedBy)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *AccessCodeRepository) List(ctx context.Context) ([]models.AccessCode, error) {
	const query = `
		SELECT code, created_at, expires_at, is_used, used_by, used_at
		FROM access_codes
		ORDER BY created_at DESC
	`
	return r.queryCodes(ctx, query)
}

func (r *AccessCodeRepository) ListValid(ctx context.Context) ([]models.AccessCode, error) {
	const query = `
		SELECT code, created_at, expires_at, is_used, used_by, used_at
		FROM access_codes
		WHERE is_used = FALSE AND expires_at > NOW()
		ORDER BY created_at DESC
	`
	return r.queryCodes(ctx, query)
}

func (r *AccessCodeRepository) queryCodes(ctx context.Context, query string) ([]models.AccessCode, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var codes []models.AccessCode
	for rows.Next() {
		var c models.AccessCode
		if err := rows.Scan(&c.Code, &c.CreatedAt, &c.ExpiresAt, &c.IsUsed, &c.UsedBy, &c.UsedAt); err != nil {
			return nil, err
		}
		codes = append(codes, c)
	}
	return codes, rows.Err()
}

func (r *AccessCodeRepository) Delete(ctx context.Context, code string) error {
	const query = `DELETE FROM access_codes WHERE code = $1`
	cmd, err := r.pool.Exec(ctx, query, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrCodeNotFound
	}
	return nil
}

// PurgeStale removes expired and already-consumed codes, returning the count.
func (r *AccessCodeRepository) PurgeStale(ctx context.Context) (int64, error) {
	const query = `DELETE FROM access_codes WHERE is_used = TRUE OR expires_at <= NOW()`
	cmd, err := r.pool.Exec(ctx, query)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
