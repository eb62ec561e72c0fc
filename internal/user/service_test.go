package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/friend-ai/backend/internal/db"
	"github.com/friend-ai/backend/internal/model"
	"github.com/friend-ai/backend/internal/repository"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	testDB, err := db.NewTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { testDB.Close() })
	return NewService(repository.NewUserRepository(testDB))
}

func validRequest() *RegisterRequest {
	return &RegisterRequest{
		Email:    "alice@example.com",
		Username: "alice",
		Password: "Sup3rSecret",
		FullName: "Alice Example",
	}
}

func TestRegister(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, validRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.True(t, user.IsActive)
	assert.False(t, user.IsVerified)
	require.NotNil(t, user.Profile)
	assert.Equal(t, "light", user.Profile.Settings["theme"])

	// Stored hash must not be the plaintext.
	assert.NotEqual(t, "Sup3rSecret", user.HashedPassword)
}

func TestRegisterNormalizesIdentifiers(t *testing.T) {
	svc := newTestService(t)

	req := validRequest()
	req.Email = "  Alice@Example.COM "
	req.Username = "ALICE"
	user, err := svc.Register(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, "alice", user.Username)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, validRequest())
	require.NoError(t, err)

	dup := validRequest()
	dup.Username = "alice2"
	_, err = svc.Register(ctx, dup)
	assert.ErrorIs(t, err, model.ErrEmailTaken)

	dup = validRequest()
	dup.Email = "alice2@example.com"
	_, err = svc.Register(ctx, dup)
	assert.ErrorIs(t, err, model.ErrUsernameTaken)
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	req := validRequest()
	req.Email = "not-an-email"
	_, err := svc.Register(ctx, req)
	assert.Error(t, err)

	req = validRequest()
	req.Username = "ab"
	_, err = svc.Register(ctx, req)
	assert.Error(t, err)

	req = validRequest()
	req.Username = "bad name!"
	_, err = svc.Register(ctx, req)
	assert.Error(t, err)

	req = validRequest()
	req.Password = "weak"
	_, err = svc.Register(ctx, req)
	assert.ErrorIs(t, err, model.ErrWeakPassword)
}

func TestAuthenticate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, validRequest())
	require.NoError(t, err)

	user, err := svc.Authenticate(ctx, "alice@example.com", "Sup3rSecret")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	// Login stamp is visible on the next read.
	got, err := svc.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.LastLogin)
}

func TestAuthenticateRejectsBadCredentials(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, validRequest())
	require.NoError(t, err)

	// Unknown email and wrong password are indistinguishable.
	_, err = svc.Authenticate(ctx, "nobody@example.com", "Sup3rSecret")
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "alice@example.com", "WrongPass1")
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)
}

func TestChangePassword(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, validRequest())
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, user.ID, "WrongPass1", "N3wSecret!")
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)

	err = svc.ChangePassword(ctx, user.ID, "Sup3rSecret", "weak")
	assert.ErrorIs(t, err, model.ErrWeakPassword)

	require.NoError(t, svc.ChangePassword(ctx, user.ID, "Sup3rSecret", "N3wSecret!"))

	_, err = svc.Authenticate(ctx, "alice@example.com", "Sup3rSecret")
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "alice@example.com", "N3wSecret!")
	assert.NoError(t, err)
}
