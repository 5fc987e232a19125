package chatsvc

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/arsentiypro2013-collab/chat/internal/domain"
	"github.com/arsentiypro2013-collab/chat/internal/infra/logging"
	"github.com/arsentiypro2013-collab/chat/internal/repo/chat"
)

const (
	minUsernameLength = 3
	minPasswordLength = 4
)

// ChatConfig contains configuration parameters for the chat account service.
type ChatConfig struct {
	// DefaultAvatar is assigned to accounts registered without an avatar
	DefaultAvatar string `env:"DEFAULT_AVATAR" default:"1"`
}

// ChatService provides account, settings, and contact management.
// It validates input, digests passwords, and delegates persistence to the
// chat repository.
type ChatService struct {
	Config ChatConfig
	Repo   chat.Repository
	Log    logging.Logger
}

// NewChatService creates a new ChatService with the given repository factory
// and configuration. Returns an error if the repository cannot be created.
func NewChatService(repoFactory chat.RepositoryFactory, cfg ChatConfig) (*ChatService, error) {
	log := logging.GetLogger("svc.chatsvc.chat_service")

	repo, err := repoFactory()
	if err != nil {
		return nil, fmt.Errorf("new chat repo: %w", err)
	}

	return &ChatService{
		Config: cfg,
		Repo:   repo,
		Log:    log,
	}, nil
}

// hashPassword computes the stored digest of a plaintext password.
// Not a hardened KDF; the stored value is an opaque fixed-size hex string.
func hashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))

	return hex.EncodeToString(sum[:])
}

// Register creates a new account with the given username and password.
// Both fields are trimmed before validation; lengths are counted in runes.
// The avatar defaults to the configured token when empty.
// Returns domain.ErrUserAlreadyExists if the username is taken.
func (s *ChatService) Register(ctx context.Context, username, password, avatar string) (err error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)

	log := s.Log.With(logging.Group("user", "username", username))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "register failed", "error", err)
		} else {
			log.DebugContext(ctx, "user registered")
		}
	}()

	if utf8.RuneCountInString(username) < minUsernameLength {
		return domain.ErrUsernameTooShort
	}

	if utf8.RuneCountInString(password) < minPasswordLength {
		return domain.ErrPasswordTooShort
	}

	if avatar == "" {
		avatar = s.Config.DefaultAvatar
	}

	if err := s.Repo.CreateUser(ctx, username, hashPassword(password), avatar); err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

// Login authenticates a user and returns the matching account.
// An unknown username and a wrong password both yield
// domain.ErrInvalidCredentials so the cases cannot be told apart.
func (s *ChatService) Login(ctx context.Context, username, password string) (user *domain.User, err error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)

	log := s.Log.With(logging.Group("user", "username", username))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "login failed", "error", err)
		} else {
			log.DebugContext(ctx, "login successful")
		}
	}()

	if username == "" || password == "" {
		return nil, domain.ErrMissingCredentials
	}

	user, ok, err := s.Repo.GetUserByCredentials(ctx, username, hashPassword(password))
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	} else if !ok {
		return nil, domain.ErrInvalidCredentials
	}

	return user, nil
}

// UpdateSettings applies a sparse preference update to the named account.
// Returns domain.ErrNoSettings without touching storage when the update
// carries no fields. An update matching no rows is still reported as success;
// the username is deliberately not checked for existence.
func (s *ChatService) UpdateSettings(ctx context.Context, username string, settings domain.Settings) (err error) {
	log := s.Log.With(logging.Group("user", "username", username))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "settings update failed", "error", err)
		} else {
			log.DebugContext(ctx, "settings updated")
		}
	}()

	if settings.Empty() {
		return domain.ErrNoSettings
	}

	if err := s.Repo.UpdateSettings(ctx, username, settings); err != nil {
		return fmt.Errorf("update settings: %w", err)
	}

	return nil
}

// AddContact creates the directed edge username -> contactUsername.
// Self-adds are rejected before any lookup, so the rule holds even for
// usernames that do not exist. The edge uniqueness constraint backs up the
// pre-check when two adds race.
func (s *ChatService) AddContact(ctx context.Context, username, contactUsername string) (err error) {
	log := s.Log.With(logging.Group("contact",
		"username", username,
		"contact_username", contactUsername,
	))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "add contact failed", "error", err)
		} else {
			log.DebugContext(ctx, "contact added")
		}
	}()

	if username == contactUsername {
		return domain.ErrSelfContact
	}

	contact, ok, err := s.Repo.GetUserByUsername(ctx, contactUsername)
	if err != nil {
		return fmt.Errorf("get contact user: %w", err)
	} else if !ok {
		return domain.ErrUserNotFound
	}

	owner, ok, err := s.Repo.GetUserByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("get owner user: %w", err)
	} else if !ok {
		return domain.ErrUserNotFound
	}

	exists, err := s.Repo.HasContact(ctx, owner.ID, contact.ID)
	if err != nil {
		return fmt.Errorf("check contact: %w", err)
	} else if exists {
		return domain.ErrContactExists
	}

	if err := s.Repo.AddContact(ctx, owner.ID, contact.ID); err != nil {
		return fmt.Errorf("add contact: %w", err)
	}

	return nil
}

// ListContacts returns the named user's contact list ordered by username.
// An unknown owner yields an empty list, not an error.
func (s *ChatService) ListContacts(ctx context.Context, username string) (entries []domain.ContactEntry, err error) {
	log := s.Log.With(logging.Group("contact", "username", username))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "list contacts failed", "error", err)
		} else {
			log.DebugContext(ctx, "contacts listed", "count", len(entries))
		}
	}()

	entries, err = s.Repo.ListContacts(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}

	return entries, nil
}

// RemoveContact deletes the directed edge username -> contactUsername.
// Returns domain.ErrContactNotFound when no edge matched.
func (s *ChatService) RemoveContact(ctx context.Context, username, contactUsername string) (err error) {
	log := s.Log.With(logging.Group("contact",
		"username", username,
		"contact_username", contactUsername,
	))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "remove contact failed", "error", err)
		} else {
			log.DebugContext(ctx, "contact removed")
		}
	}()

	removed, err := s.Repo.RemoveContact(ctx, username, contactUsername)
	if err != nil {
		return fmt.Errorf("remove contact: %w", err)
	} else if !removed {
		return domain.ErrContactNotFound
	}

	return nil
}

// Close releases resources held by the service, such as database connections.
func (s *ChatService) Close() error {
	if err := s.Repo.Close(); err != nil {
		return fmt.Errorf("close chat repo: %w", err)
	}

	return nil
}
