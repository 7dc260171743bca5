package tokenstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

const (
	createTokensTable = `CREATE TABLE IF NOT EXISTS fmgen_tokens (
	key TEXT PRIMARY KEY,
	token TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`
	selectToken = `SELECT token FROM fmgen_tokens WHERE key = ?`
	upsertToken = `INSERT INTO fmgen_tokens (key, token) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET token = excluded.token, updated_at = CURRENT_TIMESTAMP`
	deleteToken = `DELETE FROM fmgen_tokens WHERE key = ?`
)

// SQLite keeps tokens in the fmgen_tokens table.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) a SQLite database at path and prepares the
// token table.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("tokenstore: open database: %w", err)
	}
	s, err := NewSQLite(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLite creates a store from an existing connection.
func NewSQLite(ctx context.Context, db *sql.DB) (*SQLite, error) {
	if _, err := db.ExecContext(ctx, createTokensTable); err != nil {
		return nil, fmt.Errorf("tokenstore: create table: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Token implements fmdapi.TokenStore.
func (s *SQLite) Token(ctx context.Context, key string) (string, error) {
	var token string
	err := s.db.QueryRowContext(ctx, selectToken, key).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("tokenstore: get token: %w", err)
	}
	return token, nil
}

// SetToken implements fmdapi.TokenStore.
func (s *SQLite) SetToken(ctx context.Context, key, token string) error {
	if _, err := s.db.ExecContext(ctx, upsertToken, key, token); err != nil {
		return fmt.Errorf("tokenstore: set token: %w", err)
	}
	return nil
}

// ClearToken implements fmdapi.TokenStore.
func (s *SQLite) ClearToken(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, deleteToken, key); err != nil {
		return fmt.Errorf("tokenstore: clear token: %w", err)
	}
	return nil
}
