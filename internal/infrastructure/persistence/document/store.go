// Package document persists one JSON document per user per concern.
//
// A Store moves raw bytes; a Collection adds typed encoding, defaults for
// missing documents and the corrupt-document fallback on top of any Store.
// Implementations: memory (tests, REPL), file (single node), sqlite
// (embedded), postgres and redis (shared deployments).
package document

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/xuexi-helper/study-helper/internal/domain/shared"
)

// Concern names a kind of document.
type Concern string

const (
	ConcernProgress   Concern = "progress"
	ConcernTasks      Concern = "tasks"
	ConcernPet        Concern = "pet"
	ConcernTeam       Concern = "team"
	ConcernTeamRoster Concern = "team_roster"
	ConcernChallenge  Concern = "challenge"
)

// Concerns lists every known concern.
func Concerns() []Concern {
	return []Concern{ConcernProgress, ConcernTasks, ConcernPet, ConcernTeam, ConcernTeamRoster, ConcernChallenge}
}

// Validate checks c is a known concern.
func (c Concern) Validate() error {
	for _, known := range Concerns() {
		if c == known {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", shared.ErrUnknownConcern, c)
}

// Store is the byte-level persistence port.
type Store interface {
	// Load returns the stored document or shared.ErrDocumentNotFound.
	Load(ctx context.Context, concern Concern, key string) ([]byte, error)

	// Save replaces the document.
	Save(ctx context.Context, concern Concern, key string, data []byte) error

	// Delete removes the document; deleting a missing document is not an error.
	Delete(ctx context.Context, concern Concern, key string) error

	// Close releases the backend.
	Close() error
}

// Collection is a typed view of one concern.
type Collection[T any] struct {
	store   Store
	concern Concern
	logger  *slog.Logger

	// fresh builds the default document for key.
	fresh func(key string) *T
	// normalize repairs a decoded document; may be nil.
	normalize func(key string, doc *T)
}

// NewCollection creates a Collection.
func NewCollection[T any](store Store, concern Concern, logger *slog.Logger, fresh func(key string) *T, normalize func(key string, doc *T)) *Collection[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Collection[T]{
		store:     store,
		concern:   concern,
		logger:    logger.With("component", "document", "concern", string(concern)),
		fresh:     fresh,
		normalize: normalize,
	}
}

// Get loads the document for key. A missing document yields the default; a
// document that fails to decode is logged and replaced by the default.
func (c *Collection[T]) Get(ctx context.Context, key string) (*T, error) {
	doc, found, err := c.Find(ctx, key)
	if err != nil {
		return nil, err
	}
	if !found {
		return c.fresh(key), nil
	}
	return doc, nil
}

// Find loads the document for key and reports whether one was stored.
// Corrupt documents count as not found.
func (c *Collection[T]) Find(ctx context.Context, key string) (*T, bool, error) {
	data, err := c.store.Load(ctx, c.concern, key)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load %s/%s: %w", c.concern, key, err)
	}

	var doc T
	if err := json.Unmarshal(data, &doc); err != nil {
		c.logger.Warn("corrupt document, using default", "key", key, "error", err)
		return nil, false, nil
	}
	if c.normalize != nil {
		c.normalize(key, &doc)
	}
	return &doc, true, nil
}

// Put stores doc under key.
func (c *Collection[T]) Put(ctx context.Context, key string, doc *T) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", c.concern, key, err)
	}
	if err := c.store.Save(ctx, c.concern, key, data); err != nil {
		return fmt.Errorf("save %s/%s: %w", c.concern, key, err)
	}
	return nil
}

// Delete removes the document under key.
func (c *Collection[T]) Delete(ctx context.Context, key string) error {
	if err := c.store.Delete(ctx, c.concern, key); err != nil {
		return fmt.Errorf("delete %s/%s: %w", c.concern, key, err)
	}
	return nil
}
