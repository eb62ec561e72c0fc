package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/friend-ai/backend/internal/db"
	"github.com/friend-ai/backend/internal/model"
)

// For any sequence of non-empty message contents appended to a chat
// session, reading the session back returns every message, in append
// order, with roles intact.
func TestMessageHistoryOrderProperty(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "history_test_*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	dbPath := filepath.Join(tmpDir, "test.db")
	db.ResetDB()
	testDB, err := db.InitDB(dbPath)
	if err != nil {
		t.Fatalf("failed to init db: %v", err)
	}
	defer db.CloseDB()

	repo := NewMessageRepository(testDB)
	ctx := context.Background()

	userID := uuid.New().String()
	if _, err := testDB.Exec(`
		INSERT INTO users (id, email, username, hashed_password)
		VALUES (?, ?, ?, ?)
	`, userID, "prop@example.com", "prop_user", "hash"); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	contents := gen.SliceOfN(8, gen.AlphaString().SuchThat(func(s string) bool {
		return len(s) > 0 && len(s) <= 200
	}))

	properties.Property("messages read back complete and in append order", prop.ForAll(
		func(turns []string) bool {
			now := time.Now()
			session := &model.ChatSession{
				ID:        uuid.New().String(),
				UserID:    userID,
				IsActive:  true,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := repo.CreateSession(ctx, session); err != nil {
				t.Logf("failed to create session: %v", err)
				return false
			}

			base := time.Now()
			for i, content := range turns {
				role := model.MessageRoleUser
				if i%2 == 1 {
					role = model.MessageRoleAssistant
				}
				msg := &model.ChatMessage{
					ID:        uuid.New().String(),
					SessionID: session.ID,
					UserID:    userID,
					Role:      role,
					Content:   content,
					CreatedAt: base.Add(time.Duration(i) * time.Millisecond),
				}
				if err := repo.Append(ctx, msg); err != nil {
					t.Logf("failed to append message %d: %v", i, err)
					return false
				}
			}

			got, err := repo.ListMessages(ctx, session.ID)
			if err != nil {
				t.Logf("failed to list messages: %v", err)
				return false
			}
			if len(got) != len(turns) {
				t.Logf("expected %d messages, got %d", len(turns), len(got))
				return false
			}
			for i, msg := range got {
				if msg.Content != turns[i] {
					t.Logf("message %d out of order", i)
					return false
				}
				wantRole := model.MessageRoleUser
				if i%2 == 1 {
					wantRole = model.MessageRoleAssistant
				}
				if msg.Role != wantRole {
					t.Logf("message %d has wrong role %s", i, msg.Role)
					return false
				}
			}
			return true
		},
		contents,
	))

	properties.TestingRun(t)
}
