package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuexi-helper/study-helper/internal/domain/shared"
	"github.com/xuexi-helper/study-helper/internal/infrastructure/persistence/document"
)

// DocumentStore implements document.Store on Redis strings.
// Each Save refreshes the key's TTL, so documents of users who stop
// studying expire on their own.
type DocumentStore struct {
	cache *Cache
	ttl   time.Duration
}

var _ document.Store = (*DocumentStore)(nil)

// NewDocumentStore creates a DocumentStore. ttl 0 disables expiry.
func NewDocumentStore(cache *Cache, ttl time.Duration) *DocumentStore {
	return &DocumentStore{cache: cache, ttl: ttl}
}

// Load implements document.Store.
func (s *DocumentStore) Load(ctx context.Context, concern document.Concern, key string) ([]byte, error) {
	data, err := s.cache.GetBytes(ctx, DocumentKey(string(concern), key))
	if errors.Is(err, ErrCacheMiss) {
		return nil, shared.ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis: load: %w", err)
	}
	return data, nil
}

// Save implements document.Store.
func (s *DocumentStore) Save(ctx context.Context, concern document.Concern, key string, data []byte) error {
	if err := concern.Validate(); err != nil {
		return err
	}
	if err := s.cache.SetBytes(ctx, DocumentKey(string(concern), key), data, s.ttl); err != nil {
		return fmt.Errorf("redis: save: %w", err)
	}
	return nil
}

// Delete implements document.Store.
func (s *DocumentStore) Delete(ctx context.Context, concern document.Concern, key string) error {
	if err := s.cache.Delete(ctx, DocumentKey(string(concern), key)); err != nil {
		return fmt.Errorf("redis: delete: %w", err)
	}
	return nil
}

// Close implements document.Store.
func (s *DocumentStore) Close() error {
	return s.cache.Close()
}
