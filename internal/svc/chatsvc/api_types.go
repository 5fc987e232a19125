package chatsvc

import (
	"errors"
	"fmt"

	"github.com/arsentiypro2013-collab/chat/internal/domain"
)

// Response is the envelope wrapping every logical outcome. Both successes and
// domain failures are delivered inside it with HTTP 200; only transport-level
// faults bypass it.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// UserData is the account payload returned on a successful login.
type UserData struct {
	ID            int64  `json:"id"`
	Username      string `json:"username"`
	Avatar        string `json:"avatar"`
	Theme         string `json:"theme"`
	Notifications bool   `json:"notifications"`
}

// LoginResponse is the envelope for /api/login with the user payload attached.
type LoginResponse struct {
	Response
	UserData *UserData `json:"user_data,omitempty"`
}

// ContactEntry is one element of the contacts payload. Status is always
// "online"; there is no presence tracking behind it yet.
type ContactEntry struct {
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
	Status   string `json:"status"`
}

// ContactsResponse is the envelope for the contacts "get" action.
type ContactsResponse struct {
	Success  bool           `json:"success"`
	Message  string         `json:"message,omitempty"`
	Contacts []ContactEntry `json:"contacts"`
}

// RegisterRequest is the decoded body of /api/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Avatar   string `json:"avatar"`
}

// LoginRequest is the decoded body of /api/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SettingsRequest is the decoded body of /api/settings. Unrecognized keys
// inside settings are dropped by the decoder.
type SettingsRequest struct {
	Username string          `json:"username"`
	Settings SettingsPayload `json:"settings"`
}

// SettingsPayload carries the recognized sparse settings fields.
type SettingsPayload struct {
	Theme         *string `json:"theme"`
	Notifications *bool   `json:"notifications"`
	Avatar        *string `json:"avatar"`
}

// Domain returns the payload as a domain settings update.
func (p SettingsPayload) Domain() domain.Settings {
	return domain.Settings{
		Theme:         p.Theme,
		Notifications: p.Notifications,
		Avatar:        p.Avatar,
	}
}

// ContactsRequest is the decoded body of /api/contacts.
type ContactsRequest struct {
	Username        string `json:"username"`
	Action          string `json:"action"`
	ContactUsername string `json:"contact_username"`
}

// knownErrors are the domain failures whose own message is the envelope
// message. Anything else is an unexpected storage fault and gets the
// operation prefix with the underlying cause.
var knownErrors = []error{
	domain.ErrUsernameTooShort,
	domain.ErrPasswordTooShort,
	domain.ErrUserAlreadyExists,
	domain.ErrUserNotFound,
	domain.ErrMissingCredentials,
	domain.ErrInvalidCredentials,
	domain.ErrNoSettings,
	domain.ErrSelfContact,
	domain.ErrContactExists,
	domain.ErrContactNotFound,
}

// failureResponse maps a service error to a failure envelope.
func failureResponse(err error, operation string) Response {
	for _, known := range knownErrors {
		if errors.Is(err, known) {
			return Response{Success: false, Message: known.Error()}
		}
	}

	return Response{Success: false, Message: fmt.Sprintf("%s failed: %v", operation, err)}
}
