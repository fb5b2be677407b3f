package auth

import (
	"database/sql"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

// TokenPair is the access/refresh token pair for the current session.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Store persists the token pair in a SQLite database. Pure storage, no
// network calls.
type Store struct {
	db *sql.DB
}

// NewStore opens the store at the given path.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}

	// Single-row table: the CLI holds at most one session.
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS session (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			access_token TEXT NOT NULL,
			refresh_token TEXT NOT NULL
		)
	`)
	if err != nil {
		return nil, errors.Wrap(err, "creating session table")
	}

	return &Store{db: db}, nil
}

// Tokens returns the stored pair, or nil when unauthenticated.
func (s *Store) Tokens() (*TokenPair, error) {
	pair := &TokenPair{}
	err := s.db.QueryRow(`
		SELECT access_token, refresh_token FROM session WHERE id = 1
	`).Scan(&pair.AccessToken, &pair.RefreshToken)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "querying session")
	}
	if pair.AccessToken == "" {
		return nil, nil
	}
	return pair, nil
}

// Save writes the pair, replacing any previous session.
func (s *Store) Save(pair *TokenPair) error {
	_, err := s.db.Exec(`
		REPLACE INTO session (id, access_token, refresh_token)
		VALUES (1, ?, ?)
	`, pair.AccessToken, pair.RefreshToken)
	if err != nil {
		return errors.Wrap(err, "writing session")
	}
	return nil
}

// Clear drops the session, transitioning to unauthenticated.
func (s *Store) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM session WHERE id = 1`); err != nil {
		return errors.Wrap(err, "clearing session")
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
