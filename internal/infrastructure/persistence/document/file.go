package document

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/crypto/blake2b"

	"github.com/xuexi-helper/study-helper/internal/domain/shared"
)

// FileStore keeps each document in its own JSON file:
//
//	<dir>/<concern>/<blake2b-256(key)>.json
//
// Keys are hashed so arbitrary user ids map to safe file names.
// Writes go to a temp file first and are renamed into place.
type FileStore struct {
	dir string
}

// NewFileStore creates the data directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("file store: %w: empty directory", shared.ErrInvalidInput)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("file store: create %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

// FileName returns the file name a key is stored under.
func FileName(key string) string {
	sum := blake2b.Sum256([]byte(key))
	return hex.EncodeToString(sum[:]) + ".json"
}

func (s *FileStore) path(concern Concern, key string) string {
	return filepath.Join(s.dir, string(concern), FileName(key))
}

// Load implements Store.
func (s *FileStore) Load(ctx context.Context, concern Concern, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path(concern, key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, shared.ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("file store: read: %w", err)
	}
	return data, nil
}

// Save implements Store.
func (s *FileStore) Save(ctx context.Context, concern Concern, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := concern.Validate(); err != nil {
		return err
	}

	dir := filepath.Join(s.dir, string(concern))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("file store: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("file store: temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("file store: write: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("file store: sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("file store: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(concern, key)); err != nil {
		return fmt.Errorf("file store: rename: %w", err)
	}
	return nil
}

// Delete implements Store.
func (s *FileStore) Delete(ctx context.Context, concern Concern, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := os.Remove(s.path(concern, key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("file store: remove: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *FileStore) Close() error { return nil }
