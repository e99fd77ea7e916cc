package services

import (
	"database/sql"
	"encoding/json"
	"testing"

	"github.com/aviramh/gradecast-be/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// recordingNotifier captures presence events for assertions.
type recordingNotifier struct {
	actions []string
}

func (n *recordingNotifier) BroadcastEvent(action string, payload interface{}) {
	n.actions = append(n.actions, action)
}

func newTestService(t *testing.T) (*UserService, *recordingNotifier) {
	t.Helper()
	db, err := sql.Open("sqlite", "file::memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))

	notifier := &recordingNotifier{}
	return NewUserService(db, notifier), notifier
}

func TestRegister(t *testing.T) {
	svc, notifier := newTestService(t)

	user, err := svc.Register("Alice", "  Alice@Example.COM ", "Secret1!")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "alice@example.com", user.Email, "email must be stored normalized")
	assert.False(t, user.Online, "registration must not log the user in")
	assert.Nil(t, user.LastLogin)
	assert.Empty(t, user.PasswordHash, "returned record must not carry the hash")
	assert.Equal(t, []string{"user.created"}, notifier.actions)

	// Same address in a different case collides on the unique index.
	_, err = svc.Register("Alice Again", "ALICE@example.com", "Other2!")
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestRegisterStoresSaltedHash(t *testing.T) {
	svc, _ := newTestService(t)

	user, err := svc.Register("Bob", "bob@example.com", "Secret1!")
	require.NoError(t, err)

	var hash string
	err = svc.db.QueryRow("SELECT password_hash FROM users WHERE id = ?", user.ID).Scan(&hash)
	require.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, "Secret1!", hash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("Secret1!")))
}

func TestAuthenticateRoundTrip(t *testing.T) {
	svc, notifier := newTestService(t)

	_, err := svc.Register("A", "a@x.com", "Secret1!")
	require.NoError(t, err)

	// Case-insensitive both ways: registered lower, logging in upper.
	user, err := svc.Authenticate("A@X.com", "Secret1!")
	require.NoError(t, err)
	assert.True(t, user.Online)
	require.NotNil(t, user.LastLogin)
	assert.Empty(t, user.PasswordHash)
	first := *user.LastLogin

	// A second login never rewinds lastLogin.
	user, err = svc.Authenticate("a@x.com", "Secret1!")
	require.NoError(t, err)
	require.NotNil(t, user.LastLogin)
	assert.False(t, user.LastLogin.Before(first))

	assert.Contains(t, notifier.actions, "user.online")
}

func TestAuthenticateUniformFailure(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Register("A", "a@x.com", "Secret1!")
	require.NoError(t, err)

	_, wrongPassword := svc.Authenticate("a@x.com", "not-the-password")
	_, unknownEmail := svc.Authenticate("nobody@x.com", "Secret1!")

	assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, ErrInvalidCredentials)
	// Identical error either way: no account-enumeration signal.
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestLogout(t *testing.T) {
	svc, notifier := newTestService(t)

	reg, err := svc.Register("A", "a@x.com", "Secret1!")
	require.NoError(t, err)
	_, err = svc.Authenticate("a@x.com", "Secret1!")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(reg.ID))
	user, err := svc.GetUserByID(reg.ID)
	require.NoError(t, err)
	assert.False(t, user.Online)
	assert.Contains(t, notifier.actions, "user.offline")

	assert.ErrorIs(t, svc.Logout("no-such-id"), ErrNotFound)
}

func TestUpdateUser(t *testing.T) {
	svc, _ := newTestService(t)

	a, err := svc.Register("A", "a@x.com", "Secret1!")
	require.NoError(t, err)
	_, err = svc.Register("B", "b@x.com", "Secret2!")
	require.NoError(t, err)

	t.Run("unknown id", func(t *testing.T) {
		_, err := svc.UpdateUser("no-such-id", "X", "x@x.com")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("name-only change keeps email", func(t *testing.T) {
		user, err := svc.UpdateUser(a.ID, "Alice", "a@x.com")
		require.NoError(t, err)
		assert.Equal(t, "Alice", user.Name)
		assert.Equal(t, "a@x.com", user.Email)
	})

	t.Run("own email in a different case succeeds", func(t *testing.T) {
		user, err := svc.UpdateUser(a.ID, "Alice", "A@X.COM")
		require.NoError(t, err)
		assert.Equal(t, "a@x.com", user.Email)
	})

	t.Run("another user's email conflicts", func(t *testing.T) {
		_, err := svc.UpdateUser(a.ID, "Alice", "B@x.com")
		assert.ErrorIs(t, err, ErrEmailExists)
	})
}

func TestDeleteUserTwice(t *testing.T) {
	svc, _ := newTestService(t)

	user, err := svc.Register("A", "a@x.com", "Secret1!")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteUser(user.ID))
	assert.ErrorIs(t, svc.DeleteUser(user.ID), ErrNotFound)
}

func TestListUsers(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Register("A", "a@x.com", "Secret1!")
	require.NoError(t, err)
	_, err = svc.Register("B", "b@x.com", "Secret2!")
	require.NoError(t, err)

	users, err := svc.ListUsers()
	require.NoError(t, err)
	require.Len(t, users, 2)

	// Insertion order.
	assert.Equal(t, "a@x.com", users[0].Email)
	assert.Equal(t, "b@x.com", users[1].Email)

	// No serialization path may leak hashes.
	data, err := json.Marshal(users)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "password")
	assert.NotContains(t, string(data), "$2a$")
}
