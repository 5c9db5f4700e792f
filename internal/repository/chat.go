package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Ahmadreza-Avandi/mami-land/internal/models"
)

var ErrSessionNotFound = errors.New("chat session not found")

type ChatRepository struct {
	pool *pgxpool.Pool
}

func NewChatRepository(pool *pgxpool.Pool) *ChatRepository {
	return &ChatRepository{pool: pool}
}

func (r *ChatRepository) CreateSession(ctx context.Context, session models.ChatSession) error {
	const query = `
		INSERT INTO chat_sessions (id, user_id, title, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, TRUE, NOW(), NOW())
	`
	_, err := r.pool.Exec(ctx, query, session.ID, session.UserID, session.Title)
	return err
}

// GetSession returns an active session owned by the given user.
func (r *ChatRepository) GetSession(ctx context.Context, id string, userID string) (models.ChatSession, error) {
	const query = `
		SELECT id, user_id, title, is_active, created_at, updated_at
		FROM chat_sessions
		WHERE id = $1 AND user_id = $2 AND is_active = TRUE
	`
	var s models.ChatSession
	err := r.pool.QueryRow(ctx, query, id, userID).Scan(
		&s.ID, &s.UserID, &s.Title, &s.IsActive, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ChatSession{}, ErrSessionNotFound
		}
		return models.ChatSession{}, err
	}
	return s, nil
}

func (r *ChatRepository) ListSessions(ctx context.Context, userID string) ([]models.ChatSession, error) {
	const query = `
		SELECT id, user_id, title, is_active, created_at, updated_at
		FROM chat_sessions
		WHERE user_id = $1 AND is_active = TRUE
		ORDER BY updated_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []models.ChatSession
	for rows.Next() {
		var s models.ChatSession
		if err := rows.Scan(&s.ID, &s.UserID, &s.Title, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// DeactivateSession soft-deletes; message rows stay behind the inactive flag.
func (r *ChatRepository) DeactivateSession(ctx context.Context, id string, userID string) error {
	const query = `
		UPDATE chat_sessions SET is_active = FALSE, updated_at = NOW()
		WHERE id = $1 AND user_id = $2 AND is_active = TRUE
	`
	cmd, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// AppendMessage inserts into an active session and bumps its updated_at in
// the same transaction. Appending to a deactivated session is a silent
// no-op so a late-arriving responder reply cannot corrupt a cleared chat.
func (r *ChatRepository) AppendMessage(ctx context.Context, msg models.ChatMessage) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const touch = `
		UPDATE chat_sessions SET updated_at = NOW()
		WHERE id = $1 AND is_active = TRUE
	`
	cmd, err := tx.Exec(ctx, touch, msg.SessionID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return nil
	}

	const insert = `
		INSERT INTO chat_messages (id, session_id, content, role, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := tx.Exec(ctx, insert, msg.ID, msg.SessionID, msg.Content, msg.Role, msg.Timestamp); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// ListMessages returns the session's messages in creation order.
func (r *ChatRepository) ListMessages(ctx context.Context, sessionID string) ([]models.ChatMessage, error) {
	const query = `
		SELECT id, session_id, content, role, created_at
		FROM chat_messages
		WHERE session_id = $1
		ORDER BY created_at ASC, id ASC
	`
	rows, err := r.pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []models.ChatMessage
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Content, &m.Role, &m.Timestamp); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}
