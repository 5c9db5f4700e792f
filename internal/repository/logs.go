package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Ahmadreza-Avandi/mami-land/internal/models"
)

type LogRepository struct {
	pool *pgxpool.Pool
}

func NewLogRepository(pool *pgxpool.Pool) *LogRepository {
	return &LogRepository{pool: pool}
}

func (r *LogRepository) Record(ctx context.Context, entry models.SystemLog) error {
	const query = `
		INSERT INTO system_logs (id, user_id, admin_id, action, details, ip_address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`
	_, err := r.pool.Exec(ctx, query,
		entry.ID, entry.UserID, entry.AdminID, entry.Action, entry.Details, entry.IPAddress)
	return err
}

func (r *LogRepository) List(ctx context.Context, limit int) ([]models.SystemLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	const query = `
		SELECT id, user_id, admin_id, action, details, ip_address, created_at
		FROM system_logs
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.SystemLog
	for rows.Next() {
		var e models.SystemLog
		if err := rows.Scan(&e.ID, &e.UserID, &e.AdminID, &e.Action, &e.Details, &e.IPAddress, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
