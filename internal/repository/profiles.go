package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Ahmadreza-Avandi/mami-land/internal/models"
)

type ProfileRepository struct {
	pool *pgxpool.Pool
}

func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

// Get returns the profile for a user. A missing row reads as an empty
// profile rather than an error; onboarding starts from scratch in that case.
func (r *ProfileRepository) Get(ctx context.Context, userID string) (models.UserProfile, error) {
	const query = `
		SELECT name, age, pregnancy_week, medical_conditions, is_complete
		FROM user_profiles WHERE user_id = $1
	`
	var p models.UserProfile
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&p.Name,
		&p.Age,
		&p.PregnancyWeek,
		&p.MedicalConditions,
		&p.IsComplete,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.UserProfile{}, nil
		}
		return models.UserProfile{}, err
	}
	return p, nil
}

// Save upserts the whole profile.
func (r *ProfileRepository) Save(ctx context.Context, userID string, p models.UserProfile) error {
	const query = `
		INSERT INTO user_profiles (user_id, name, age, pregnancy_week, medical_conditions, is_complete, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (user_id)
		DO UPDATE SET
			name = EXCLUDED.name,
			age = EXCLUDED.age,
			pregnancy_week = EXCLUDED.pregnancy_week,
			medical_conditions = EXCLUDED.medical_conditions,
			is_complete = EXCLUDED.is_complete,
			updated_at = NOW()
	`
	_, err := r.pool.Exec(ctx, query, userID, p.Name, p.Age, p.PregnancyWeek, p.MedicalConditions, p.IsComplete)
	return err
}

// Clear resets the profile to its empty state.
func (r *ProfileRepository) Clear(ctx context.Context, userID string) error {
	return r.Save(ctx, userID, models.UserProfile{})
}
