// Package session keeps the live conversations of the HTTP server.
package session

import (
	"errors"
	"sync"
	"time"

	"go-safeher/chat"
	"go-safeher/metrics"
	"go-safeher/types"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrSessionNotFound = errors.New("session not found")

type Session struct {
	ID           string
	Conversation *chat.Conversation
	CreatedAt    time.Time

	mu       sync.Mutex
	lastSeen time.Time
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Store is safe for concurrent use.
type Store struct {
	deps   chat.Deps
	origin *types.Coordinate
	now    func() time.Time
	logger *zap.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore creates sessions with deps. When origin is non-nil every new
// conversation starts with that location already acquired.
func NewStore(deps chat.Deps, origin *types.Coordinate, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Logger == nil {
		deps.Logger = logger
	}
	now := deps.Clock
	if now == nil {
		now = time.Now
	}
	return &Store{
		deps:     deps,
		origin:   origin,
		now:      now,
		logger:   logger,
		sessions: make(map[string]*Session),
	}
}

func (s *Store) Create(mode types.Mode) *Session {
	conv := chat.New(s.deps, mode)
	if s.origin != nil {
		if err := conv.SetOrigin(*s.origin); err != nil {
			s.logger.Warn("default origin rejected", zap.Error(err))
		}
	}

	now := s.now()
	sess := &Session{
		ID:           uuid.NewString(),
		Conversation: conv,
		CreatedAt:    now,
		lastSeen:     now,
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	n := len(s.sessions)
	s.mu.Unlock()

	metrics.ActiveSessions.Set(float64(n))
	s.logger.Info("session created", zap.String("session_id", sess.ID), zap.String("mode", string(conv.Mode())))
	return sess
}

// Get returns the session and marks it as recently used.
func (s *Store) Get(id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess.touch(s.now())
	return sess, nil
}

func (s *Store) Delete(id string) error {
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	n := len(s.sessions)
	s.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	metrics.ActiveSessions.Set(float64(n))
	return nil
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep removes sessions idle for longer than idle. Sessions with a request
// in flight are kept. It returns the number removed.
func (s *Store) Sweep(idle time.Duration) int {
	cutoff := s.now().Add(-idle)

	s.mu.Lock()
	removed := 0
	for id, sess := range s.sessions {
		if sess.Conversation.Busy() || sess.LastSeen().After(cutoff) {
			continue
		}
		delete(s.sessions, id)
		removed++
	}
	n := len(s.sessions)
	s.mu.Unlock()

	metrics.ActiveSessions.Set(float64(n))
	if removed > 0 {
		s.logger.Info("expired idle sessions", zap.Int("removed", removed), zap.Int("remaining", n))
	}
	return removed
}
