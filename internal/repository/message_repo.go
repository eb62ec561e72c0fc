package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/friend-ai/backend/internal/model"
)

// MessageRepository provides data access for chat sessions and messages.
type MessageRepository struct {
	db *sql.DB
}

// NewMessageRepository creates a new MessageRepository.
func NewMessageRepository(db *sql.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// CreateSession inserts a new chat session.
func (r *MessageRepository) CreateSession(ctx context.Context, session *model.ChatSession) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO chat_sessions (id, user_id, title, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		session.ID,
		session.UserID,
		session.Title,
		session.IsActive,
		session.CreatedAt,
		session.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create chat session: %w", err)
	}
	return nil
}

// GetSession retrieves a chat session by ID.
func (r *MessageRepository) GetSession(ctx context.Context, id string) (*model.ChatSession, error) {
	session := &model.ChatSession{}
	var title sql.NullString
	var endedAt sql.NullTime

	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, title, is_active, created_at, updated_at, ended_at
		FROM chat_sessions WHERE id = ?
	`, id).Scan(
		&session.ID,
		&session.UserID,
		&title,
		&session.IsActive,
		&session.CreatedAt,
		&session.UpdatedAt,
		&endedAt,
	)
	if err == sql.ErrNoRows {
		return nil, model.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get chat session: %w", err)
	}

	if title.Valid {
		session.Title = title.String
	}
	if endedAt.Valid {
		t := endedAt.Time
		session.EndedAt = &t
	}
	return session, nil
}

// ListSessions retrieves all chat sessions for a user, newest first.
func (r *MessageRepository) ListSessions(ctx context.Context, userID string) ([]*model.ChatSession, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, title, is_active, created_at, updated_at, ended_at
		FROM chat_sessions
		WHERE user_id = ?
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*model.ChatSession
	for rows.Next() {
		session := &model.ChatSession{}
		var title sql.NullString
		var endedAt sql.NullTime

		if err := rows.Scan(
			&session.ID,
			&session.UserID,
			&title,
			&session.IsActive,
			&session.CreatedAt,
			&session.UpdatedAt,
			&endedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan chat session: %w", err)
		}

		if title.Valid {
			session.Title = title.String
		}
		if endedAt.Valid {
			t := endedAt.Time
			session.EndedAt = &t
		}
		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chat sessions: %w", err)
	}
	return sessions, nil
}

// Append inserts one message into a session and bumps the session's
// updated_at.
func (r *MessageRepository) Append(ctx context.Context, msg *model.ChatMessage) error {
	var metadata interface{}
	if len(msg.Metadata) > 0 {
		metadata = string(msg.Metadata)
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO chat_messages (id, session_id, user_id, role, content, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		msg.ID,
		msg.SessionID,
		msg.UserID,
		msg.Role,
		msg.Content,
		metadata,
		msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		UPDATE chat_sessions SET updated_at = ? WHERE id = ?
	`, time.Now(), msg.SessionID)
	if err != nil {
		return fmt.Errorf("failed to touch chat session: %w", err)
	}
	return nil
}

// ListMessages retrieves all messages of a session in chronological order.
func (r *MessageRepository) ListMessages(ctx context.Context, sessionID string) ([]*model.ChatMessage, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, session_id, user_id, role, content, metadata, created_at
		FROM chat_messages
		WHERE session_id = ?
		ORDER BY created_at ASC, id ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var messages []*model.ChatMessage
	for rows.Next() {
		msg := &model.ChatMessage{}
		var metadata sql.NullString

		if err := rows.Scan(
			&msg.ID,
			&msg.SessionID,
			&msg.UserID,
			&msg.Role,
			&msg.Content,
			&metadata,
			&msg.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}

		if metadata.Valid && metadata.String != "" {
			msg.Metadata = json.RawMessage(metadata.String)
		}
		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %w", err)
	}
	return messages, nil
}
