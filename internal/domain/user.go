package domain

import "errors"

var (
	// ErrUsernameTooShort is returned when a username has fewer than three characters.
	ErrUsernameTooShort = errors.New("username too short")
	// ErrPasswordTooShort is returned when a password has fewer than four characters.
	ErrPasswordTooShort = errors.New("password too short")
	// ErrUserAlreadyExists is returned when trying to create a user with an existing username.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrUserNotFound is returned when looking up a non-existent user.
	ErrUserNotFound = errors.New("user not found")
	// ErrMissingCredentials is returned when a login request omits the username or password.
	ErrMissingCredentials = errors.New("username and password are required")
	// ErrInvalidCredentials is returned when the username/password combination is incorrect.
	// The same error covers unknown usernames so the two cases are indistinguishable.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrNoSettings is returned when a settings update carries no recognized fields.
	ErrNoSettings = errors.New("no settings to update")
)

// User represents a registered account.
type User struct {
	ID            int64  // Unique identifier
	Username      string // Login username, globally unique
	PasswordHash  string // Hex-encoded digest of the password
	Avatar        string // Free-form avatar token, defaults to "1"
	Theme         string // UI theme token, defaults to "light"
	Notifications bool   // Whether the user wants notifications
	CreatedAt     int64  // Unix timestamp of account creation
}

// Settings is a sparse preference update. Nil fields are left untouched.
type Settings struct {
	Theme         *string
	Notifications *bool
	Avatar        *string
}

// Empty reports whether the update carries no fields at all.
func (s Settings) Empty() bool {
	return s.Theme == nil && s.Notifications == nil && s.Avatar == nil
}
