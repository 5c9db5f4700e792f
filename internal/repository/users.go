package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Ahmadreza-Avandi/mami-land/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

// UserWithProfile joins a user row with its 1:1 profile for listing.
type UserWithProfile struct {
	User    models.User
	Profile models.UserProfile
}

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create inserts the user together with its empty profile row.
func (r *UserRepository) Create(ctx context.Context, user models.User) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const userQuery = `
		INSERT INTO users (id, username, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
	`
	if _, err := tx.Exec(ctx, userQuery, user.ID, user.Username, user.Email, user.PasswordHash); err != nil {
		return err
	}

	const profileQuery = `INSERT INTO user_profiles (user_id) VALUES ($1)`
	if _, err := tx.Exec(ctx, profileQuery, user.ID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// FindByLogin matches a username or an email, the way the login form does.
func (r *UserRepository) FindByLogin(ctx context.Context, login string) (models.User, error) {
	const query = `
		SELECT id, username, email, password_hash, created_at, updated_at
		FROM users WHERE username = $1 OR email = $1
	`
	return r.scanUser(r.pool.QueryRow(ctx, query, login))
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (models.User, error) {
	const query = `
		SELECT id, username, email, password_hash, created_at, updated_at
		FROM users WHERE id = $1
	`
	return r.scanUser(r.pool.QueryRow(ctx, query, id))
}

// UsernameOrEmailTaken reports which of the two identifiers already exists.
func (r *UserRepository) UsernameOrEmailTaken(ctx context.Context, username, email string) (usernameTaken bool, emailTaken bool, err error) {
	const query = `
		SELECT
			EXISTS (SELECT 1 FROM users WHERE username = $1),
			EXISTS (SELECT 1 FROM users WHERE email = $2)
	`
	err = r.pool.QueryRow(ctx, query, username, email).Scan(&usernameTaken, &emailTaken)
	return usernameTaken, emailTaken, err
}

// List returns all users joined with their profiles, newest first.
func (r *UserRepository) List(ctx context.Context) ([]UserWithProfile, error) {
	const query = `
		SELECT u.id, u.username, u.email, u.created_at, u.updated_at,
		       p.name, p.age, p.pregnancy_week, p.medical_conditions, p.is_complete
		FROM users u
		LEFT JOIN user_profiles p ON p.user_id = u.id
		ORDER BY u.created_at DESC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []UserWithProfile
	for rows.Next() {
		var (
			item       UserWithProfile
			name       *string
			conditions *string
			complete   *bool
		)
		if err := rows.Scan(
			&item.User.ID,
			&item.User.Username,
			&item.User.Email,
			&item.User.CreatedAt,
			&item.User.UpdatedAt,
			&name,
			&item.Profile.Age,
			&item.Profile.PregnancyWeek,
			&conditions,
			&complete,
		); err != nil {
			return nil, err
		}
		if name != nil {
			item.Profile.Name = *name
		}
		if conditions != nil {
			item.Profile.MedicalConditions = *conditions
		}
		if complete != nil {
			item.Profile.IsComplete = *complete
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// Delete removes the user; profile, sessions and messages cascade.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM users WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}
