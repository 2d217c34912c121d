// Package sqlite stores study documents in an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/xuexi-helper/study-helper/internal/domain/shared"
	"github.com/xuexi-helper/study-helper/internal/infrastructure/persistence/document"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	concern    TEXT    NOT NULL,
	doc_key    TEXT    NOT NULL,
	data       BLOB    NOT NULL,
	updated_at INTEGER NOT NULL,
	PRIMARY KEY (concern, doc_key)
);
CREATE INDEX IF NOT EXISTS idx_documents_updated ON documents(updated_at);
`

// DocumentStore implements document.Store in a single SQLite file.
type DocumentStore struct {
	db  *sql.DB
	now func() time.Time
}

var _ document.Store = (*DocumentStore)(nil)

// Open creates (or opens) the database at path and applies the schema.
func Open(ctx context.Context, path string) (*DocumentStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// WAL keeps readers off the writer's back; busy_timeout absorbs short lock waits.
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite allows one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &DocumentStore{db: db, now: time.Now}, nil
}

// Load implements document.Store.
func (s *DocumentStore) Load(ctx context.Context, concern document.Concern, key string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM documents WHERE concern = ? AND doc_key = ?`,
		string(concern), key,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: load: %w", err)
	}
	return data, nil
}

// Save implements document.Store.
func (s *DocumentStore) Save(ctx context.Context, concern document.Concern, key string, data []byte) error {
	if err := concern.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (concern, doc_key, data, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (concern, doc_key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		string(concern), key, data, s.now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: save: %w", err)
	}
	return nil
}

// Delete implements document.Store.
func (s *DocumentStore) Delete(ctx context.Context, concern document.Concern, key string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE concern = ? AND doc_key = ?`,
		string(concern), key,
	)
	if err != nil {
		return fmt.Errorf("sqlite: delete: %w", err)
	}
	return nil
}

// Count returns the number of stored documents of a concern.
func (s *DocumentStore) Count(ctx context.Context, concern document.Concern) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM documents WHERE concern = ?`, string(concern),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("sqlite: count: %w", err)
	}
	return n, nil
}

// Ping verifies database connectivity.
func (s *DocumentStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close implements document.Store.
func (s *DocumentStore) Close() error {
	return s.db.Close()
}
