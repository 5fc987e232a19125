//go:build integration || all

package chat_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arsentiypro2013-collab/chat/internal/domain"

	. "github.com/arsentiypro2013-collab/chat/internal/repo/chat"
)

const testDigest = "5e884898da28047151d0e56f8dc6292773603d0d6aabbdd62a11ef721d1542d8"

func setupSQLiteTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()

	cfg := SQLiteRepositoryConfig{
		DatabasePath: filepath.Join(t.TempDir(), "chat.db"),
	}

	repo, err := NewSQLiteRepository(cfg)
	require.NoError(t, err)

	t.Cleanup(func() { _ = repo.Close() })

	return repo
}

func createTestUser(t *testing.T, repo *SQLiteRepository, username string) *domain.User {
	t.Helper()

	ctx := context.Background()
	require.NoError(t, repo.CreateUser(ctx, username, testDigest, "1"))

	user, ok, err := repo.GetUserByUsername(ctx, username)
	require.NoError(t, err)
	require.True(t, ok)

	return user
}

func TestNewSQLiteRepository_SchemaIdempotent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "chat.db")
	cfg := SQLiteRepositoryConfig{DatabasePath: path}

	repo, err := NewSQLiteRepository(cfg)
	require.NoError(t, err)

	createTestUser(t, repo, "alice")
	require.NoError(t, repo.Close())

	// Reopening runs the schema setup again and must not disturb existing rows.
	repo, err = NewSQLiteRepository(cfg)
	require.NoError(t, err)

	t.Cleanup(func() { _ = repo.Close() })

	user, ok, err := repo.GetUserByUsername(context.Background(), "alice")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "alice", user.Username)
}

func TestSQLiteRepository_CreateUser(t *testing.T) {
	t.Parallel()

	repo := setupSQLiteTestRepo(t)
	ctx := context.Background()

	user := createTestUser(t, repo, "alice")
	assert.Equal(t, "1", user.Avatar)
	assert.Equal(t, "light", user.Theme)
	assert.True(t, user.Notifications)
	assert.NotZero(t, user.ID)
	assert.NotZero(t, user.CreatedAt)

	// The uniqueness constraint rejects the second insert and leaves the
	// first row untouched.
	err := repo.CreateUser(ctx, "alice", testDigest, "2")
	assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)

	unchanged, ok, err := repo.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, user.ID, unchanged.ID)
	assert.Equal(t, "1", unchanged.Avatar)
}

func TestSQLiteRepository_GetUserByCredentials(t *testing.T) {
	t.Parallel()

	repo := setupSQLiteTestRepo(t)
	ctx := context.Background()

	createTestUser(t, repo, "alice")

	user, ok, err := repo.GetUserByCredentials(ctx, "alice", testDigest)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "alice", user.Username)

	// A wrong digest and an unknown username look the same.
	_, ok, err = repo.GetUserByCredentials(ctx, "alice", "0000")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = repo.GetUserByCredentials(ctx, "ghost", testDigest)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteRepository_UpdateSettings(t *testing.T) {
	t.Parallel()

	repo := setupSQLiteTestRepo(t)
	ctx := context.Background()

	createTestUser(t, repo, "alice")

	theme := "dark"
	notifications := false

	require.NoError(t, repo.UpdateSettings(ctx, "alice", domain.Settings{
		Theme:         &theme,
		Notifications: &notifications,
	}))

	user, ok, err := repo.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "dark", user.Theme)
	assert.False(t, user.Notifications)
	assert.Equal(t, "1", user.Avatar) // untouched

	// Zero matched rows is still a success.
	assert.NoError(t, repo.UpdateSettings(ctx, "ghost", domain.Settings{Theme: &theme}))

	// An empty update never reaches the database.
	assert.ErrorIs(t, repo.UpdateSettings(ctx, "alice", domain.Settings{}), domain.ErrNoSettings)
}

func TestSQLiteRepository_Contacts(t *testing.T) {
	t.Parallel()

	repo := setupSQLiteTestRepo(t)
	ctx := context.Background()

	alice := createTestUser(t, repo, "alice")
	bob := createTestUser(t, repo, "bob")
	adam := createTestUser(t, repo, "adam")

	require.NoError(t, repo.AddContact(ctx, alice.ID, bob.ID))
	require.NoError(t, repo.AddContact(ctx, alice.ID, adam.ID))

	exists, err := repo.HasContact(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	// The reverse edge does not exist; the relationship is directed.
	exists, err = repo.HasContact(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	// The uniqueness constraint is the guard against racing adds.
	assert.ErrorIs(t, repo.AddContact(ctx, alice.ID, bob.ID), domain.ErrContactExists)

	entries, err := repo.ListContacts(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "adam", entries[0].Username)
	assert.Equal(t, "bob", entries[1].Username)

	entries, err = repo.ListContacts(ctx, "ghost")
	require.NoError(t, err)
	assert.Empty(t, entries)

	removed, err := repo.RemoveContact(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.RemoveContact(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.False(t, removed)

	entries, err = repo.ListContacts(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "adam", entries[0].Username)
}
