package domain

import "errors"

var (
	// ErrSelfContact is returned when a user tries to add themselves as a contact.
	ErrSelfContact = errors.New("cannot add yourself")
	// ErrContactExists is returned when the contact edge already exists.
	ErrContactExists = errors.New("already a contact")
	// ErrContactNotFound is returned when removing an edge that does not exist.
	ErrContactNotFound = errors.New("contact not found")
)

// Contact is a directed edge from the owning user to a target user.
// No reciprocal edge is created; each user only sees their outbound list.
type Contact struct {
	ID        int64
	UserID    int64 // Owner of the contact list
	ContactID int64 // Target user
	CreatedAt int64 // Unix timestamp of edge creation
}

// ContactEntry is one row of a user's contact list, joined against users.
type ContactEntry struct {
	Username string
	Avatar   string
}
