package document

import (
	"context"
	"sync"

	"github.com/xuexi-helper/study-helper/internal/domain/shared"
)

// MemoryStore keeps documents in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[Concern]map[string][]byte
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[Concern]map[string][]byte)}
}

// Load implements Store.
func (s *MemoryStore) Load(ctx context.Context, concern Concern, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.docs[concern][key]
	if !ok {
		return nil, shared.ErrDocumentNotFound
	}
	return append([]byte(nil), data...), nil
}

// Save implements Store.
func (s *MemoryStore) Save(ctx context.Context, concern Concern, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := concern.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.docs[concern] == nil {
		s.docs[concern] = make(map[string][]byte)
	}
	s.docs[concern][key] = append([]byte(nil), data...)
	return nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(ctx context.Context, concern Concern, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs[concern], key)
	return nil
}

// Close implements Store.
func (s *MemoryStore) Close() error { return nil }

// Len returns the number of stored documents of a concern.
func (s *MemoryStore) Len(concern Concern) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs[concern])
}
