package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/friend-ai/backend/internal/db"
	"github.com/friend-ai/backend/internal/model"
)

func newMessageTestRepo(t *testing.T) (*MessageRepository, *sql.DB) {
	t.Helper()
	testDB, err := db.NewTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { testDB.Close() })
	return NewMessageRepository(testDB), testDB
}

func seedUser(t *testing.T, testDB *sql.DB) string {
	t.Helper()
	id := uuid.New().String()
	_, err := testDB.Exec(`
		INSERT INTO users (id, email, username, hashed_password)
		VALUES (?, ?, ?, ?)
	`, id, id[:8]+"@example.com", "user_"+id[:8], "hash")
	require.NoError(t, err)
	return id
}

func seedSession(t *testing.T, repo *MessageRepository, userID string) *model.ChatSession {
	t.Helper()
	now := time.Now()
	session := &model.ChatSession{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     "Test chat",
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, repo.CreateSession(context.Background(), session))
	return session
}

func TestCreateAndGetSession(t *testing.T) {
	repo, testDB := newMessageTestRepo(t)
	userID := seedUser(t, testDB)

	session := seedSession(t, repo, userID)

	got, err := repo.GetSession(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.UserID, got.UserID)
	assert.Equal(t, "Test chat", got.Title)
	assert.True(t, got.IsActive)
	assert.Nil(t, got.EndedAt)
}

func TestGetSessionNotFound(t *testing.T) {
	repo, _ := newMessageTestRepo(t)

	_, err := repo.GetSession(context.Background(), "missing")
	assert.ErrorIs(t, err, model.ErrSessionNotFound)
}

func TestListSessionsNewestFirst(t *testing.T) {
	repo, testDB := newMessageTestRepo(t)
	userID := seedUser(t, testDB)
	ctx := context.Background()

	base := time.Now()
	var ids []string
	for i := 0; i < 3; i++ {
		session := &model.ChatSession{
			ID:        uuid.New().String(),
			UserID:    userID,
			IsActive:  true,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
			UpdatedAt: base.Add(time.Duration(i) * time.Second),
		}
		require.NoError(t, repo.CreateSession(ctx, session))
		ids = append(ids, session.ID)
	}

	sessions, err := repo.ListSessions(ctx, userID)
	require.NoError(t, err)
	require.Len(t, sessions, 3)
	assert.Equal(t, ids[2], sessions[0].ID)
	assert.Equal(t, ids[0], sessions[2].ID)

	// Another user sees nothing.
	other, err := repo.ListSessions(ctx, "someone-else")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestAppendAndListMessages(t *testing.T) {
	repo, testDB := newMessageTestRepo(t)
	userID := seedUser(t, testDB)
	session := seedSession(t, repo, userID)
	ctx := context.Background()

	base := time.Now()
	userTurn := &model.ChatMessage{
		ID:        uuid.New().String(),
		SessionID: session.ID,
		UserID:    userID,
		Role:      model.MessageRoleUser,
		Content:   "play a song",
		CreatedAt: base,
	}
	assistantTurn := &model.ChatMessage{
		ID:        uuid.New().String(),
		SessionID: session.ID,
		UserID:    userID,
		Role:      model.MessageRoleAssistant,
		Content:   "Playing Good Vibes",
		Metadata:  []byte(`{"confidence_score":0.85}`),
		CreatedAt: base.Add(time.Millisecond),
	}
	require.NoError(t, repo.Append(ctx, userTurn))
	require.NoError(t, repo.Append(ctx, assistantTurn))

	messages, err := repo.ListMessages(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, model.MessageRoleUser, messages[0].Role)
	assert.Equal(t, model.MessageRoleAssistant, messages[1].Role)
	assert.Empty(t, messages[0].Metadata)
	assert.JSONEq(t, `{"confidence_score":0.85}`, string(messages[1].Metadata))
}
