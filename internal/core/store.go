package core

// store.go keeps loaded sessions in memory for the lifetime of the process.
//
// Nothing is persisted: a session lives until it is closed, it sits idle
// longer than the TTL, or the process exits. A background sweeper evicts idle
// sessions and stops when its context is cancelled.

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Default session store limits.
const (
	DefaultSessionTTL    = 2 * time.Hour
	DefaultSweepInterval = 5 * time.Minute
	DefaultMaxSessions   = 500
)

// SessionStore is a concurrency-safe in-memory map of sessions.
type SessionStore struct {
	ttl         time.Duration
	maxSessions int

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionStore creates a store. Non-positive values take the defaults.
func NewSessionStore(ttl time.Duration, maxSessions int) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if maxSessions <= 0 {
		maxSessions = DefaultMaxSessions
	}
	return &SessionStore{
		ttl:         ttl,
		maxSessions: maxSessions,
		sessions:    make(map[string]*Session),
	}
}

// Create registers a new session over wb and returns it.
func (st *SessionStore) Create(fileName string, wb Workbook, source []byte) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if len(st.sessions) >= st.maxSessions {
		return nil, ErrTooManySessions
	}
	s := NewSession(uuid.New().String(), fileName, wb, source)
	st.sessions[s.ID] = s
	return s, nil
}

// Get returns the session with id and marks it as accessed.
func (st *SessionStore) Get(id string) (*Session, error) {
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.touch()
	return s, nil
}

// Delete removes a session. It reports whether the session existed.
func (st *SessionStore) Delete(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	_, ok := st.sessions[id]
	delete(st.sessions, id)
	return ok
}

// Len returns the number of live sessions.
func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Sweep evicts sessions idle since before now minus the TTL and returns
// how many were removed.
func (st *SessionStore) Sweep(now time.Time) int {
	cutoff := now.Add(-st.ttl)

	st.mu.Lock()
	defer st.mu.Unlock()
	removed := 0
	for id, s := range st.sessions {
		if s.LastAccess().Before(cutoff) {
			delete(st.sessions, id)
			removed++
		}
	}
	return removed
}

// StartSweeper evicts idle sessions every interval until ctx is cancelled.
func (st *SessionStore) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	slog.Info("session sweeper started", "ttl", st.ttl, "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session sweeper stopped")
			return
		case now := <-ticker.C:
			if n := st.Sweep(now); n > 0 {
				slog.Info("expired idle sessions", "removed", n, "remaining", st.Len())
			}
		}
	}
}
