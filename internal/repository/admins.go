package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Ahmadreza-Avandi/mami-land/internal/models"
)

var ErrAdminNotFound = errors.New("admin not found")

type AdminRepository struct {
	pool *pgxpool.Pool
}

func NewAdminRepository(pool *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{pool: pool}
}

// FindActiveByUsername returns only active admin rows; deactivated admins
// cannot log in.
func (r *AdminRepository) FindActiveByUsername(ctx context.Context, username string) (models.Admin, error) {
	const query = `
		SELECT id, username, password_hash, is_active, created_at
		FROM admins
		WHERE username = $1 AND is_active = TRUE
	`
	var admin models.Admin
	err := r.pool.QueryRow(ctx, query, username).Scan(
		&admin.ID, &admin.Username, &admin.PasswordHash, &admin.IsActive, &admin.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Admin{}, ErrAdminNotFound
		}
		return models.Admin{}, err
	}
	return admin, nil
}

// Upsert writes the configuration-supplied bootstrap admin at startup.
func (r *AdminRepository) Upsert(ctx context.Context, admin models.Admin) error {
	const query = `
		INSERT INTO admins (id, username, password_hash, is_active, created_at)
		VALUES ($1, $2, $3, TRUE, NOW())
		ON CONFLICT (username)
		DO UPDATE SET password_hash = EXCLUDED.password_hash, is_active = TRUE
	`
	_, err := r.pool.Exec(ctx, query, admin.ID, admin.Username, admin.PasswordHash)
	return err
}
