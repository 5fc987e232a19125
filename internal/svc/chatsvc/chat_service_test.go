package chatsvc_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/arsentiypro2013-collab/chat/internal/domain"
	"github.com/arsentiypro2013-collab/chat/internal/infra/logging"
	"github.com/arsentiypro2013-collab/chat/internal/svc/chatsvc"
)

// mockRepository implements chat.Repository for testing.
type mockRepository struct {
	users   map[string]*domain.User
	edges   map[[2]int64]bool
	err     error
	updates int
	nextID  int64
	m       sync.Mutex
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		users: make(map[string]*domain.User),
		edges: make(map[[2]int64]bool),
	}
}

func (m *mockRepository) CreateUser(_ context.Context, username, passwordHash, avatar string) error {
	m.m.Lock()
	defer m.m.Unlock()

	if m.err != nil {
		return m.err
	}
	if _, exists := m.users[username]; exists {
		return domain.ErrUserAlreadyExists
	}
	m.nextID++
	m.users[username] = &domain.User{
		ID:            m.nextID,
		Username:      username,
		PasswordHash:  passwordHash,
		Avatar:        avatar,
		Theme:         "light",
		Notifications: true,
		CreatedAt:     time.Now().Unix(),
	}
	return nil
}

func (m *mockRepository) GetUserByUsername(_ context.Context, username string) (*domain.User, bool, error) {
	m.m.Lock()
	defer m.m.Unlock()

	if m.err != nil {
		return nil, false, m.err
	}
	user, exists := m.users[username]
	if !exists {
		return nil, false, nil
	}
	return user, true, nil
}

func (m *mockRepository) GetUserByCredentials(_ context.Context, username, passwordHash string) (*domain.User, bool, error) {
	m.m.Lock()
	defer m.m.Unlock()

	if m.err != nil {
		return nil, false, m.err
	}
	user, exists := m.users[username]
	if !exists || user.PasswordHash != passwordHash {
		return nil, false, nil
	}
	return user, true, nil
}

func (m *mockRepository) UpdateSettings(_ context.Context, username string, settings domain.Settings) error {
	m.m.Lock()
	defer m.m.Unlock()

	if m.err != nil {
		return m.err
	}
	m.updates++

	// Matching zero rows is not an error.
	user, exists := m.users[username]
	if !exists {
		return nil
	}
	if settings.Theme != nil {
		user.Theme = *settings.Theme
	}
	if settings.Notifications != nil {
		user.Notifications = *settings.Notifications
	}
	if settings.Avatar != nil {
		user.Avatar = *settings.Avatar
	}
	return nil
}

func (m *mockRepository) HasContact(_ context.Context, userID, contactID int64) (bool, error) {
	m.m.Lock()
	defer m.m.Unlock()

	if m.err != nil {
		return false, m.err
	}
	return m.edges[[2]int64{userID, contactID}], nil
}

func (m *mockRepository) AddContact(_ context.Context, userID, contactID int64) error {
	m.m.Lock()
	defer m.m.Unlock()

	if m.err != nil {
		return m.err
	}
	key := [2]int64{userID, contactID}
	if m.edges[key] {
		return domain.ErrContactExists
	}
	m.edges[key] = true
	return nil
}

func (m *mockRepository) ListContacts(_ context.Context, username string) ([]domain.ContactEntry, error) {
	m.m.Lock()
	defer m.m.Unlock()

	if m.err != nil {
		return nil, m.err
	}

	entries := []domain.ContactEntry{}

	owner, exists := m.users[username]
	if !exists {
		return entries, nil
	}

	for _, user := range m.users {
		if m.edges[[2]int64{owner.ID, user.ID}] {
			entries = append(entries, domain.ContactEntry{Username: user.Username, Avatar: user.Avatar})
		}
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Username < entries[j].Username })

	return entries, nil
}

func (m *mockRepository) RemoveContact(_ context.Context, username, contactUsername string) (bool, error) {
	m.m.Lock()
	defer m.m.Unlock()

	if m.err != nil {
		return false, m.err
	}
	owner, ownerExists := m.users[username]
	contact, contactExists := m.users[contactUsername]
	if !ownerExists || !contactExists {
		return false, nil
	}
	key := [2]int64{owner.ID, contact.ID}
	if !m.edges[key] {
		return false, nil
	}
	delete(m.edges, key)
	return true, nil
}

func (m *mockRepository) Close() error {
	return m.err
}

var ErrRepoError = errors.New("repository error")

func setupTestService(t *testing.T) (*chatsvc.ChatService, *mockRepository) {
	t.Helper()

	mockRepo := newMockRepository()

	svc := &chatsvc.ChatService{
		Config: chatsvc.ChatConfig{DefaultAvatar: "1"},
		Repo:   mockRepo,
		Log:    logging.GetLogger("test.chatsvc"),
	}

	return svc, mockRepo
}

//nolint:paralleltest
func TestChatService_Register(t *testing.T) {
	svc, mockRepo := setupTestService(t)

	tests := []struct {
		name     string
		username string
		password string
		avatar   string
		repoErr  error
		wantErr  error
	}{
		{
			name:     "successful registration",
			username: "newuser",
			password: "password123",
			wantErr:  nil,
		},
		{
			name:     "username too short",
			username: "ab",
			password: "password123",
			wantErr:  domain.ErrUsernameTooShort,
		},
		{
			name:     "username too short after trimming",
			username: "  ab  ",
			password: "password123",
			wantErr:  domain.ErrUsernameTooShort,
		},
		{
			name:     "password too short",
			username: "newuser2",
			password: "abc",
			wantErr:  domain.ErrPasswordTooShort,
		},
		{
			name:     "duplicate username",
			username: "existinguser",
			password: "password123",
			wantErr:  domain.ErrUserAlreadyExists,
		},
		{
			name:     "repository error",
			username: "erroruser",
			password: "password123",
			repoErr:  ErrRepoError,
			wantErr:  ErrRepoError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup test case
			if tt.name == "duplicate username" {
				_ = svc.Register(context.Background(), tt.username, "oldpass", "")
			}
			mockRepo.err = tt.repoErr

			// Execute test
			err := svc.Register(context.Background(), tt.username, tt.password, tt.avatar)

			// Verify results
			if (err != nil) != (tt.wantErr != nil) {
				t.Errorf("Register() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Register() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	// The first registration omitted the avatar and gets the default token.
	if user := mockRepo.users["newuser"]; user == nil || user.Avatar != "1" {
		t.Errorf("Register() avatar = %v, want default %q", user, "1")
	}
}

//nolint:paralleltest
func TestChatService_Login(t *testing.T) {
	svc, mockRepo := setupTestService(t)

	if err := svc.Register(context.Background(), "testuser", "testpass123", ""); err != nil {
		t.Fatalf("failed to register test user: %v", err)
	}

	tests := []struct {
		name     string
		username string
		password string
		repoErr  error
		wantErr  error
	}{
		{
			name:     "successful login",
			username: "testuser",
			password: "testpass123",
			wantErr:  nil,
		},
		{
			name:     "wrong password",
			username: "testuser",
			password: "wrongpass",
			wantErr:  domain.ErrInvalidCredentials,
		},
		{
			name:     "user not found",
			username: "nonexistent",
			password: "anypass",
			wantErr:  domain.ErrInvalidCredentials,
		},
		{
			name:     "empty username",
			username: "",
			password: "anypass",
			wantErr:  domain.ErrMissingCredentials,
		},
		{
			name:     "empty password",
			username: "testuser",
			password: "",
			wantErr:  domain.ErrMissingCredentials,
		},
		{
			name:     "repository error",
			username: "testuser",
			password: "testpass123",
			repoErr:  ErrRepoError,
			wantErr:  ErrRepoError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo.err = tt.repoErr

			// Execute test
			user, err := svc.Login(context.Background(), tt.username, tt.password)

			// Verify results
			if (err != nil) != (tt.wantErr != nil) {
				t.Errorf("Login() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Login() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				if user.Username != tt.username {
					t.Errorf("Login() username = %v, want %v", user.Username, tt.username)
				}
				if user.Theme != "light" || !user.Notifications {
					t.Errorf("Login() defaults = (%v, %v), want (light, true)", user.Theme, user.Notifications)
				}
			}
		})
	}
}

//nolint:paralleltest
func TestChatService_UpdateSettings(t *testing.T) {
	svc, mockRepo := setupTestService(t)

	if err := svc.Register(context.Background(), "testuser", "testpass123", ""); err != nil {
		t.Fatalf("failed to register test user: %v", err)
	}

	t.Run("empty settings do not touch storage", func(t *testing.T) {
		err := svc.UpdateSettings(context.Background(), "testuser", domain.Settings{})
		if !errors.Is(err, domain.ErrNoSettings) {
			t.Errorf("UpdateSettings() error = %v, want %v", err, domain.ErrNoSettings)
		}
		if mockRepo.updates != 0 {
			t.Errorf("UpdateSettings() touched storage %d times, want 0", mockRepo.updates)
		}
	})

	t.Run("partial update applies only supplied fields", func(t *testing.T) {
		theme := "dark"
		notifications := false

		err := svc.UpdateSettings(context.Background(), "testuser", domain.Settings{
			Theme:         &theme,
			Notifications: &notifications,
		})
		if err != nil {
			t.Fatalf("UpdateSettings() error = %v", err)
		}

		user := mockRepo.users["testuser"]
		if user.Theme != "dark" || user.Notifications || user.Avatar != "1" {
			t.Errorf("UpdateSettings() user = %+v, want theme=dark notifications=false avatar=1", user)
		}
	})

	t.Run("unknown username is still a success", func(t *testing.T) {
		theme := "dark"

		if err := svc.UpdateSettings(context.Background(), "ghost", domain.Settings{Theme: &theme}); err != nil {
			t.Errorf("UpdateSettings() error = %v, want nil", err)
		}
	})
}

//nolint:paralleltest
func TestChatService_AddContact(t *testing.T) {
	svc, mockRepo := setupTestService(t)

	ctx := context.Background()
	for _, username := range []string{"alice", "bob"} {
		if err := svc.Register(ctx, username, "password123", ""); err != nil {
			t.Fatalf("failed to register %s: %v", username, err)
		}
	}

	tests := []struct {
		name    string
		owner   string
		contact string
		repoErr error
		wantErr error
	}{
		{
			name:    "self contact rejected even for unknown username",
			owner:   "ghost",
			contact: "ghost",
			wantErr: domain.ErrSelfContact,
		},
		{
			name:    "target not found",
			owner:   "alice",
			contact: "ghost",
			wantErr: domain.ErrUserNotFound,
		},
		{
			name:    "owner not found",
			owner:   "ghost",
			contact: "bob",
			wantErr: domain.ErrUserNotFound,
		},
		{
			name:    "successful add",
			owner:   "alice",
			contact: "bob",
			wantErr: nil,
		},
		{
			name:    "duplicate add",
			owner:   "alice",
			contact: "bob",
			wantErr: domain.ErrContactExists,
		},
		{
			name:    "repository error",
			owner:   "alice",
			contact: "bob",
			repoErr: ErrRepoError,
			wantErr: ErrRepoError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo.err = tt.repoErr

			err := svc.AddContact(context.Background(), tt.owner, tt.contact)

			if (err != nil) != (tt.wantErr != nil) {
				t.Errorf("AddContact() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("AddContact() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

//nolint:paralleltest
func TestChatService_ContactRoundTrip(t *testing.T) {
	svc, _ := setupTestService(t)

	ctx := context.Background()
	for _, username := range []string{"alice", "bob", "adam"} {
		if err := svc.Register(ctx, username, "password123", ""); err != nil {
			t.Fatalf("failed to register %s: %v", username, err)
		}
	}

	for _, contact := range []string{"bob", "adam"} {
		if err := svc.AddContact(ctx, "alice", contact); err != nil {
			t.Fatalf("AddContact(alice, %s) error = %v", contact, err)
		}
	}

	entries, err := svc.ListContacts(ctx, "alice")
	if err != nil {
		t.Fatalf("ListContacts() error = %v", err)
	}
	if len(entries) != 2 || entries[0].Username != "adam" || entries[1].Username != "bob" {
		t.Errorf("ListContacts() = %+v, want [adam bob]", entries)
	}

	if err := svc.RemoveContact(ctx, "alice", "bob"); err != nil {
		t.Errorf("RemoveContact() error = %v", err)
	}

	entries, err = svc.ListContacts(ctx, "alice")
	if err != nil {
		t.Fatalf("ListContacts() error = %v", err)
	}
	if len(entries) != 1 || entries[0].Username != "adam" {
		t.Errorf("ListContacts() after remove = %+v, want [adam]", entries)
	}

	if err := svc.RemoveContact(ctx, "alice", "bob"); !errors.Is(err, domain.ErrContactNotFound) {
		t.Errorf("RemoveContact() second call error = %v, want %v", err, domain.ErrContactNotFound)
	}

	entries, err = svc.ListContacts(ctx, "ghost")
	if err != nil {
		t.Fatalf("ListContacts() error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("ListContacts(ghost) = %+v, want empty", entries)
	}
}
