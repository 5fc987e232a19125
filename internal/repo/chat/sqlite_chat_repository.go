package chat

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/arsentiypro2013-collab/chat/internal/domain"
	"github.com/arsentiypro2013-collab/chat/internal/infra/logging"
)

// SQLiteRepositoryConfig holds configuration for the SQLite chat repository.
type SQLiteRepositoryConfig struct {
	// DatabasePath is the filesystem path to the SQLite database file
	DatabasePath string `env:"DATABASE_PATH" default:"var/storage/chat.db"`
}

// SQLiteRepository implements Repository using SQLite as the storage backend.
type SQLiteRepository struct {
	db        *sql.DB
	log       logging.Logger
	writeLock *sync.Mutex // go-sqlite does not support concurrent writes
}

var _ Repository = (*SQLiteRepository)(nil)

// SQLiteRepositoryFactory creates a factory function that returns a new
// SQLiteRepository. The factory function implements the RepositoryFactory type.
func SQLiteRepositoryFactory(cfg SQLiteRepositoryConfig) RepositoryFactory {
	return func() (Repository, error) {
		return NewSQLiteRepository(cfg)
	}
}

// NewSQLiteRepository creates a new SQLiteRepository with the given configuration.
// It opens the database connection and creates the schema if needed.
// Returns an error if database connection or initialization fails.
func NewSQLiteRepository(cfg SQLiteRepositoryConfig) (*SQLiteRepository, error) {
	log := logging.GetLogger("repo.chat.sqlite_chat_repository").With(
		logging.Group("db", "path", cfg.DatabasePath),
	)

	db, err := sql.Open("sqlite", cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := initializeDB(db); err != nil {
		return nil, fmt.Errorf("initialize db: %w", err)
	}

	db.SetConnMaxLifetime(5 * time.Minute)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	return &SQLiteRepository{
		db:        db,
		log:       log,
		writeLock: new(sync.Mutex),
	}, nil
}

// initializeDB creates the schema idempotently. The messages table has no
// read/write path yet; it is created alongside the others so existing
// databases keep working once message delivery lands.
func initializeDB(db *sql.DB) error {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			username      TEXT    UNIQUE NOT NULL,
			password_hash TEXT    NOT NULL,
			avatar        TEXT    NOT NULL DEFAULT '1',
			theme         TEXT    NOT NULL DEFAULT 'light',
			notifications INTEGER NOT NULL DEFAULT 1,
			created_at    INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("create users schema: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS contacts (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id    INTEGER NOT NULL REFERENCES users (id),
			contact_id INTEGER NOT NULL REFERENCES users (id),
			created_at INTEGER NOT NULL,
			UNIQUE (user_id, contact_id)
		)
	`); err != nil {
		return fmt.Errorf("create contacts schema: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS messages (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			sender_id   INTEGER NOT NULL REFERENCES users (id),
			receiver_id INTEGER NOT NULL REFERENCES users (id),
			content     TEXT    NOT NULL,
			created_at  INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("create messages schema: %w", err)
	}

	return nil
}

// isConstraintViolation reports whether err is a SQLite uniqueness or
// primary-key constraint rejection.
func isConstraintViolation(err error) bool {
	var liteErr *sqlite.Error
	if !errors.As(err, &liteErr) {
		return false
	}

	switch liteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
		return true
	default:
		return false
	}
}

// CreateUser implements Repository.CreateUser using SQLite.
func (r *SQLiteRepository) CreateUser(ctx context.Context, username, passwordHash, avatar string) error {
	r.writeLock.Lock()
	defer r.writeLock.Unlock()

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO users (username, password_hash, avatar, created_at) VALUES (?, ?, ?, ?)",
		username,
		passwordHash,
		avatar,
		time.Now().Unix(),
	)
	if err != nil {
		if isConstraintViolation(err) {
			err = errors.Join(domain.ErrUserAlreadyExists, err)
		}

		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// GetUserByUsername implements Repository.GetUserByUsername using SQLite.
func (r *SQLiteRepository) GetUserByUsername(ctx context.Context, username string) (*domain.User, bool, error) {
	return r.getUser(ctx,
		"SELECT id, username, password_hash, avatar, theme, notifications, created_at FROM users WHERE username = ?",
		username,
	)
}

// GetUserByCredentials implements Repository.GetUserByCredentials using SQLite.
func (r *SQLiteRepository) GetUserByCredentials(
	ctx context.Context,
	username, passwordHash string,
) (*domain.User, bool, error) {
	return r.getUser(ctx,
		"SELECT id, username, password_hash, avatar, theme, notifications, created_at "+
			"FROM users WHERE username = ? AND password_hash = ?",
		username, passwordHash,
	)
}

func (r *SQLiteRepository) getUser(ctx context.Context, query string, args ...any) (*domain.User, bool, error) {
	var (
		user          domain.User
		notifications int64
	)

	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.Avatar,
		&user.Theme,
		&notifications,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}

		return nil, false, fmt.Errorf("query user: %w", err)
	}

	user.Notifications = notifications != 0

	return &user, true, nil
}

// UpdateSettings implements Repository.UpdateSettings using SQLite.
// The UPDATE touches only the supplied columns; notifications are stored as 0/1.
func (r *SQLiteRepository) UpdateSettings(ctx context.Context, username string, settings domain.Settings) error {
	var (
		assignments []string
		args        []any
	)

	if settings.Theme != nil {
		assignments = append(assignments, "theme = ?")
		args = append(args, *settings.Theme)
	}

	if settings.Notifications != nil {
		notifications := 0
		if *settings.Notifications {
			notifications = 1
		}

		assignments = append(assignments, "notifications = ?")
		args = append(args, notifications)
	}

	if settings.Avatar != nil {
		assignments = append(assignments, "avatar = ?")
		args = append(args, *settings.Avatar)
	}

	if len(assignments) == 0 {
		return domain.ErrNoSettings
	}

	args = append(args, username)

	r.writeLock.Lock()
	defer r.writeLock.Unlock()

	// A zero-row match is still a success; the caller does not verify the
	// username exists.
	if _, err := r.db.ExecContext(ctx,
		"UPDATE users SET "+strings.Join(assignments, ", ")+" WHERE username = ?",
		args...,
	); err != nil {
		return fmt.Errorf("update settings: %w", err)
	}

	return nil
}

// HasContact implements Repository.HasContact using SQLite.
func (r *SQLiteRepository) HasContact(ctx context.Context, userID, contactID int64) (bool, error) {
	var id int64

	err := r.db.QueryRowContext(ctx,
		"SELECT id FROM contacts WHERE user_id = ? AND contact_id = ?",
		userID, contactID,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}

		return false, fmt.Errorf("query contact: %w", err)
	}

	return true, nil
}

// AddContact implements Repository.AddContact using SQLite. The uniqueness
// constraint on (user_id, contact_id) is the guard against concurrent adds of
// the same edge; a constraint rejection surfaces as ErrContactExists.
func (r *SQLiteRepository) AddContact(ctx context.Context, userID, contactID int64) error {
	r.writeLock.Lock()
	defer r.writeLock.Unlock()

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO contacts (user_id, contact_id, created_at) VALUES (?, ?, ?)",
		userID,
		contactID,
		time.Now().Unix(),
	)
	if err != nil {
		if isConstraintViolation(err) {
			err = errors.Join(domain.ErrContactExists, err)
		}

		return fmt.Errorf("insert contact: %w", err)
	}

	return nil
}

// ListContacts implements Repository.ListContacts using SQLite. An owner
// username that resolves to no user yields an empty list via the subquery.
func (r *SQLiteRepository) ListContacts(ctx context.Context, username string) ([]domain.ContactEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT u.username, u.avatar
		FROM contacts c
		JOIN users u ON c.contact_id = u.id
		WHERE c.user_id = (SELECT id FROM users WHERE username = ?)
		ORDER BY u.username
	`, username)
	if err != nil {
		return nil, fmt.Errorf("query contacts: %w", err)
	}
	defer rows.Close()

	entries := []domain.ContactEntry{}

	for rows.Next() {
		var entry domain.ContactEntry

		if err := rows.Scan(&entry.Username, &entry.Avatar); err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contacts: %w", err)
	}

	return entries, nil
}

// RemoveContact implements Repository.RemoveContact using SQLite. Both
// usernames are resolved inside the DELETE; the affected-row count decides
// whether an edge existed.
func (r *SQLiteRepository) RemoveContact(ctx context.Context, username, contactUsername string) (bool, error) {
	r.writeLock.Lock()
	defer r.writeLock.Unlock()

	result, err := r.db.ExecContext(ctx, `
		DELETE FROM contacts
		WHERE user_id = (SELECT id FROM users WHERE username = ?)
		AND contact_id = (SELECT id FROM users WHERE username = ?)
	`, username, contactUsername)
	if err != nil {
		return false, fmt.Errorf("delete contact: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}

	return affected > 0, nil
}

// Close implements Repository.Close by closing the database connection.
func (r *SQLiteRepository) Close() error {
	if err := r.db.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}

	return nil
}
