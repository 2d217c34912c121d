package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/xuexi-helper/study-helper/internal/domain/question"
	"github.com/xuexi-helper/study-helper/internal/domain/shared"
)

// Clock returns the current time.
type Clock func() time.Time

// StatePatch carries optional quiz-state fields. Nil fields are left untouched.
type StatePatch struct {
	InQuestionSession    *bool
	Questions            []question.Question
	CurrentQuestionIndex *int
}

// StoreConfig contains configuration for the session store.
type StoreConfig struct {
	MaxHistory   int
	DefaultGrade shared.Grade
	Clock        Clock
	Logger       *slog.Logger
}

// DefaultStoreConfig returns sensible defaults.
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{
		MaxHistory:   DefaultMaxHistory,
		DefaultGrade: shared.DefaultGrade,
		Clock:        time.Now,
		Logger:       slog.Default(),
	}
}

// slot owns one user's session. mu serializes every read-modify-write of the
// session so turns for the same user never interleave.
type slot struct {
	mu      sync.Mutex
	session Session
	evicted bool
}

// Store keeps sessions in memory, keyed by user id.
// Different users proceed in parallel; one user's operations are serialized.
type Store struct {
	config StoreConfig

	mu    sync.Mutex
	slots map[string]*slot
}

// NewStore creates a session store.
func NewStore(config StoreConfig) *Store {
	defaults := DefaultStoreConfig()
	if config.MaxHistory <= 0 {
		config.MaxHistory = defaults.MaxHistory
	}
	if !config.DefaultGrade.IsSupported() {
		config.DefaultGrade = defaults.DefaultGrade
	}
	if config.Clock == nil {
		config.Clock = defaults.Clock
	}
	if config.Logger == nil {
		config.Logger = defaults.Logger
	}
	return &Store{
		config: config,
		slots:  make(map[string]*slot),
	}
}

func normalizeUserID(userID string) string {
	if userID == "" {
		return DefaultUserID
	}
	return userID
}

// acquire returns the locked slot for a user, creating it when needed.
// The caller must unlock slot.mu.
func (s *Store) acquire(userID string) *slot {
	for {
		s.mu.Lock()
		sl, ok := s.slots[userID]
		if !ok {
			sl = &slot{session: New(userID, s.config.DefaultGrade, s.config.Clock())}
			s.slots[userID] = sl
		}
		s.mu.Unlock()

		sl.mu.Lock()
		if !sl.evicted {
			return sl
		}
		// Lost a race with EvictIdle; start over with a fresh slot.
		sl.mu.Unlock()
	}
}

// Transact applies fn to a deep copy of the user's session and swaps the
// result in only when fn returns nil. LastActiveAt is refreshed on success.
func (s *Store) Transact(userID string, fn func(Session) (Session, error)) (Session, error) {
	userID = normalizeUserID(userID)
	sl := s.acquire(userID)
	defer sl.mu.Unlock()

	next, err := fn(sl.session.Clone())
	if err != nil {
		return sl.session.Clone(), err
	}
	if err := next.Validate(); err != nil {
		return sl.session.Clone(), err
	}

	next.UserID = userID
	next.LastActiveAt = s.config.Clock()
	if len(next.History) > s.config.MaxHistory {
		next.History = append([]HistoryEntry(nil), next.History[len(next.History)-s.config.MaxHistory:]...)
	}
	sl.session = next
	return next.Clone(), nil
}

// mutate is Transact for infallible edits.
func (s *Store) mutate(userID string, fn func(*Session)) Session {
	out, _ := s.Transact(userID, func(sess Session) (Session, error) {
		fn(&sess)
		return sess, nil
	})
	return out
}

// Get returns a copy of the user's session, creating a default one if needed.
func (s *Store) Get(userID string) Session {
	sl := s.acquire(normalizeUserID(userID))
	defer sl.mu.Unlock()
	return sl.session.Clone()
}

// Update shallow-merges the non-nil patch fields into the quiz state.
func (s *Store) Update(userID string, patch StatePatch) (Session, error) {
	return s.Transact(userID, func(sess Session) (Session, error) {
		if patch.InQuestionSession != nil {
			sess.State.InQuestionSession = *patch.InQuestionSession
		}
		if patch.Questions != nil {
			sess.State.Questions = append([]question.Question(nil), patch.Questions...)
		}
		if patch.CurrentQuestionIndex != nil {
			sess.State.CurrentQuestionIndex = *patch.CurrentQuestionIndex
		}
		return sess, nil
	})
}

// SetGrade sets the student's grade.
func (s *Store) SetGrade(userID string, grade shared.Grade) Session {
	return s.mutate(userID, func(sess *Session) { sess.Grade = grade })
}

// SetSubject sets the current subject.
func (s *Store) SetSubject(userID string, subject shared.Subject) Session {
	return s.mutate(userID, func(sess *Session) { sess.Subject = &subject })
}

// SetTopic sets the current topic.
func (s *Store) SetTopic(userID string, topic shared.Topic) Session {
	return s.mutate(userID, func(sess *Session) { sess.Topic = &topic })
}

// AppendHistory records one message.
func (s *Store) AppendHistory(userID string, role shared.Role, content string) Session {
	return s.mutate(userID, func(sess *Session) {
		s.Append(sess, role, content)
	})
}

// Append adds a history entry to a session value inside a transaction.
func (s *Store) Append(sess *Session, role shared.Role, content string) {
	sess.appendHistory(HistoryEntry{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: s.config.Clock(),
	}, s.config.MaxHistory)
}

// Reset replaces the user's session with a fresh default one.
func (s *Store) Reset(userID string) Session {
	userID = normalizeUserID(userID)
	sl := s.acquire(userID)
	defer sl.mu.Unlock()

	sl.session = New(userID, s.config.DefaultGrade, s.config.Clock())
	return sl.session.Clone()
}

// EvictIdle removes sessions whose LastActiveAt is older than maxAge and
// returns how many were removed. Sessions busy in a transaction are skipped.
func (s *Store) EvictIdle(maxAge time.Duration) int {
	if maxAge <= 0 {
		maxAge = DefaultIdleTTL
	}
	cutoff := s.config.Clock().Add(-maxAge)

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, sl := range s.slots {
		if !sl.mu.TryLock() {
			continue
		}
		if sl.session.LastActiveAt.Before(cutoff) {
			sl.evicted = true
			delete(s.slots, id)
			evicted++
		}
		sl.mu.Unlock()
	}

	if evicted > 0 {
		s.config.Logger.Info("evicted idle sessions",
			slog.Int("count", evicted),
			slog.Duration("max_age", maxAge),
		)
	}
	return evicted
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.slots)
}
