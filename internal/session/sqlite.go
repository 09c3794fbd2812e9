package session

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"floradex/internal/flora"
	"floradex/internal/session/migrations"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStore implements flora.SessionStore on a single-row SQLite table.
// When a TokenSealer is provided, the token column holds sealed bytes; the
// user id and username stay plaintext, they are not secrets.
type SQLiteStore struct {
	db     *sql.DB
	sealer flora.TokenSealer
	path   string
}

var _ flora.SessionStore = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) the session database at path and brings
// its schema up to date. path can be ":memory:" for tests. sealer may be nil,
// in which case the token is stored in plaintext.
func NewSQLiteStore(path string, sealer flora.TokenSealer) (*SQLiteStore, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	if err := migrations.Up(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating session database: %w", err)
	}

	return &SQLiteStore{db: db, sealer: sealer, path: path}, nil
}

// OpenConnection opens and configures a SQLite connection with appropriate
// PRAGMAs. Exported for tests that need a properly configured connection.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening session database: %w", err)
	}

	// Foreign keys are off by default in SQLite for backward compatibility.
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	return db, nil
}

// Get returns the stored session, or nil when none exists.
func (s *SQLiteStore) Get() (*flora.Session, error) {
	var token []byte
	var userID, username string

	row := s.db.QueryRow("SELECT user_token, user_id, username FROM session WHERE id = 1")
	if err := row.Scan(&token, &userID, &username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading session: %w", err)
	}

	if s.sealer != nil {
		plain, err := s.sealer.Open(token)
		if err != nil {
			return nil, fmt.Errorf("unsealing session token: %w", err)
		}
		token = plain
	}

	return &flora.Session{
		Token:    string(token),
		UserID:   userID,
		Username: username,
	}, nil
}

// Set replaces the stored session wholesale.
func (s *SQLiteStore) Set(sess *flora.Session) error {
	if sess == nil {
		return fmt.Errorf("cannot store nil session")
	}

	token := []byte(sess.Token)
	if s.sealer != nil {
		sealed, err := s.sealer.Seal(token)
		if err != nil {
			return fmt.Errorf("sealing session token: %w", err)
		}
		token = sealed
	}

	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO session (id, user_token, user_id, username, created_at) VALUES (1, ?, ?, ?, ?)",
		token, sess.UserID, sess.Username, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("writing session: %w", err)
	}
	return nil
}

// Clear removes the stored session. Clearing an empty store succeeds.
func (s *SQLiteStore) Clear() error {
	if _, err := s.db.Exec("DELETE FROM session"); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
