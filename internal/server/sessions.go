package server

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/poverty-forecast/internal/indicators"
	"go.uber.org/zap"
)

type sessionEntry struct {
	mu       sync.Mutex
	session  *indicators.Session
	lastSeen time.Time
}

// SessionStore keeps one indicators.Session per browser cookie and evicts
// sessions that have been idle longer than the TTL.
type SessionStore struct {
	dataset indicators.Dataset
	ttl     time.Duration
	logger  *zap.Logger
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*sessionEntry

	cancel context.CancelFunc
	done   chan struct{}
}

// NewSessionStore starts a store whose sweeper runs every interval until
// ctx is cancelled or Close is called.
func NewSessionStore(ctx context.Context, dataset indicators.Dataset, ttl, interval time.Duration, logger *zap.Logger) *SessionStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(ctx)
	s := &SessionStore{
		dataset:  dataset,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]*sessionEntry),
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go s.sweepLoop(ctx, interval)
	return s
}

func (s *SessionStore) sweepLoop(ctx context.Context, interval time.Duration) {
	defer close(s.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.logger.Debug("evicted idle sessions",
					zap.String("op", "server.SessionStore.sweepLoop"),
					zap.Int("evicted", n),
					zap.Int("remaining", s.Len()),
				)
			}
		}
	}
}

// Close stops the sweeper and waits for it to exit.
func (s *SessionStore) Close() {
	s.cancel()
	<-s.done
}

// With runs fn on the session for id while holding that session's lock. An
// empty, malformed or expired id gets a fresh session; the id in use is
// returned so the caller can set the cookie.
func (s *SessionStore) With(id string, fn func(*indicators.Session) error) (string, error) {
	id, entry := s.acquire(id)
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return id, fn(entry.session)
}

// Existing runs fn on the live session for id. When there is none, fn gets
// an empty session that is not stored, and Existing reports false.
func (s *SessionStore) Existing(id string, fn func(*indicators.Session) error) (bool, error) {
	s.mu.Lock()
	entry := s.lookup(id)
	s.mu.Unlock()
	if entry == nil {
		return false, fn(indicators.NewSession(s.dataset))
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return true, fn(entry.session)
}

// lookup returns the live entry for id and refreshes it. s.mu must be held.
func (s *SessionStore) lookup(id string) *sessionEntry {
	if _, err := uuid.Parse(id); err != nil {
		return nil
	}
	now := s.now()
	entry, ok := s.sessions[id]
	if !ok || now.Sub(entry.lastSeen) > s.ttl {
		return nil
	}
	entry.lastSeen = now
	return entry
}

func (s *SessionStore) acquire(id string) (string, *sessionEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry := s.lookup(id); entry != nil {
		return id, entry
	}

	now := s.now()
	id = uuid.NewString()
	entry := &sessionEntry{session: indicators.NewSession(s.dataset), lastSeen: now}
	s.sessions[id] = entry
	return id, entry
}

// Sweep evicts every session idle past the TTL and returns how many were
// removed.
func (s *SessionStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var evicted int
	for id, entry := range s.sessions {
		if now.Sub(entry.lastSeen) > s.ttl {
			delete(s.sessions, id)
			evicted++
		}
	}
	return evicted
}

// Len is the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
