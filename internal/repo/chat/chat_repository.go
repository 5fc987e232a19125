package chat

import (
	"context"

	"github.com/arsentiypro2013-collab/chat/internal/domain"
)

// Repository defines the interface for account and contact persistence.
type Repository interface {
	// CreateUser adds a new user with the given password digest and avatar.
	// Returns ErrUserAlreadyExists if the username is already taken.
	CreateUser(ctx context.Context, username, passwordHash, avatar string) error

	// GetUserByUsername retrieves a user by their username.
	// Returns the user object and true if found, or nil and false if not found.
	GetUserByUsername(ctx context.Context, username string) (*domain.User, bool, error)

	// GetUserByCredentials retrieves a user matching both username and password
	// digest exactly. Returns nil and false when no row matches; a wrong digest
	// and an unknown username are indistinguishable.
	GetUserByCredentials(ctx context.Context, username, passwordHash string) (*domain.User, bool, error)

	// UpdateSettings applies the non-nil fields of settings to the user row
	// matching username. An update matching zero rows is not an error.
	UpdateSettings(ctx context.Context, username string, settings domain.Settings) error

	// HasContact reports whether the directed edge (userID, contactID) exists.
	HasContact(ctx context.Context, userID, contactID int64) (bool, error)

	// AddContact inserts the directed edge (userID, contactID).
	// Returns ErrContactExists if the edge is already present.
	AddContact(ctx context.Context, userID, contactID int64) error

	// ListContacts returns the contact list owned by username, ordered by the
	// target username ascending. An unknown owner yields an empty list.
	ListContacts(ctx context.Context, username string) ([]domain.ContactEntry, error)

	// RemoveContact deletes the edge between the two usernames.
	// Returns true if a row was deleted, false if no edge matched.
	RemoveContact(ctx context.Context, username, contactUsername string) (bool, error)

	// Close releases any resources held by the repository.
	Close() error
}

// RepositoryFactory is a function that creates a new Repository instance.
// Returns an error if initialization fails.
type RepositoryFactory func() (Repository, error)
