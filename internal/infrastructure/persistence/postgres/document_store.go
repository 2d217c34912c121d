package postgres

import (
	"context"
	"fmt"

	"github.com/xuexi-helper/study-helper/internal/domain/shared"
	"github.com/xuexi-helper/study-helper/internal/infrastructure/persistence/document"
	"github.com/xuexi-helper/study-helper/pkg/retry"
)

// DocumentStore implements document.Store on the study_documents table.
type DocumentStore struct {
	conn *Connection
}

var _ document.Store = (*DocumentStore)(nil)

// NewDocumentStore creates a DocumentStore. Run the Migrator first.
func NewDocumentStore(conn *Connection) *DocumentStore {
	return &DocumentStore{conn: conn}
}

// classify marks statement errors as permanent so retries only cover the
// network.
func classify(op string, err error) error {
	err = fmt.Errorf("postgres: %s: %w", op, err)
	if isConnectionError(err) {
		return err
	}
	return retry.Permanent(err)
}

// Load implements document.Store.
func (s *DocumentStore) Load(ctx context.Context, concern document.Concern, key string) ([]byte, error) {
	q, err := s.conn.querier()
	if err != nil {
		return nil, err
	}

	var data []byte
	err = q.QueryRow(ctx,
		`SELECT data FROM study_documents WHERE concern = $1 AND doc_key = $2`,
		string(concern), key,
	).Scan(&data)
	if IsNoRows(err) {
		return nil, shared.ErrDocumentNotFound
	}
	if err != nil {
		return nil, classify("load", err)
	}
	return data, nil
}

// Save implements document.Store.
func (s *DocumentStore) Save(ctx context.Context, concern document.Concern, key string, data []byte) error {
	if err := concern.Validate(); err != nil {
		return err
	}
	q, err := s.conn.querier()
	if err != nil {
		return err
	}

	_, err = q.Exec(ctx, `
		INSERT INTO study_documents (concern, doc_key, data)
		VALUES ($1, $2, $3)
		ON CONFLICT (concern, doc_key) DO UPDATE SET data = EXCLUDED.data
	`, string(concern), key, data)
	if err != nil {
		return classify("save", err)
	}
	return nil
}

// Delete implements document.Store.
func (s *DocumentStore) Delete(ctx context.Context, concern document.Concern, key string) error {
	q, err := s.conn.querier()
	if err != nil {
		return err
	}

	_, err = q.Exec(ctx,
		`DELETE FROM study_documents WHERE concern = $1 AND doc_key = $2`,
		string(concern), key,
	)
	if err != nil {
		return classify("delete", err)
	}
	return nil
}

// Close implements document.Store.
func (s *DocumentStore) Close() error {
	s.conn.Close()
	return nil
}

// Health reports database health for the /health endpoint.
func (s *DocumentStore) Health(ctx context.Context) HealthStatus {
	return s.conn.Health(ctx)
}
