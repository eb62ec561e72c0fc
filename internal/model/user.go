package model

import (
	"encoding/json"
	"time"
)

// User represents a registered account.
type User struct {
	ID             string     `json:"id"`
	Email          string     `json:"email"`
	Username       string     `json:"username"`
	HashedPassword string     `json:"-"`
	FullName       string     `json:"full_name,omitempty"`
	IsActive       bool       `json:"is_active"`
	IsVerified     bool       `json:"is_verified"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	LastLogin      *time.Time `json:"last_login,omitempty"`
	Profile        *Profile   `json:"profile,omitempty"`
}

// Profile holds per-user preferences and settings.
type Profile struct {
	UserID    string                 `json:"user_id"`
	AvatarURL string                 `json:"avatar_url,omitempty"`
	Bio       string                 `json:"bio,omitempty"`
	Prefs     map[string]interface{} `json:"preferences"`
	Settings  map[string]interface{} `json:"settings"`
	Timezone  string                 `json:"timezone"`
	Language  string                 `json:"language"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// ChatSession groups the messages of one conversation.
type ChatSession struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Title     string     `json:"title,omitempty"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}

// MessageRole distinguishes who authored a stored chat message.
type MessageRole string

const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
	MessageRoleSystem    MessageRole = "system"
)

// ChatMessage is one persisted conversation turn. Metadata carries the
// serialized action blocks for assistant turns.
type ChatMessage struct {
	ID        string          `json:"id"`
	SessionID string          `json:"session_id"`
	UserID    string          `json:"user_id"`
	Role      MessageRole     `json:"role"`
	Content   string          `json:"content"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
