package memory

import (
	"context"
	"sync"
	"time"

	"restart50-service/internal/app"
)

type sessionEntry struct {
	session  *app.Session
	lastSeen time.Time
}

// SessionStore is an in-memory implementation of app.SessionRepository.
// With a TTL, sessions idle for longer than it are dropped on lookup and by Sweep.
type SessionStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]*sessionEntry
}

// NewSessionStore keeps sessions until they are deleted.
func NewSessionStore() *SessionStore {
	return NewSessionStoreWithTTL(0, time.Now)
}

func NewSessionStoreWithTTL(ttl time.Duration, now func() time.Time) *SessionStore {
	return &SessionStore{
		ttl:      ttl,
		now:      now,
		sessions: make(map[string]*sessionEntry),
	}
}

func (s *SessionStore) Put(session *app.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID()] = &sessionEntry{session: session, lastSeen: s.now()}
}

func (s *SessionStore) Get(id string) (*app.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	now := s.now()
	if s.idle(e, now) {
		delete(s.sessions, id)
		return nil, false
	}
	e.lastSeen = now
	return e.session, true
}

func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Len reports how many sessions are held.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep drops idle sessions and reports how many were removed.
func (s *SessionStore) Sweep(_ context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for id, e := range s.sessions {
		if s.idle(e, now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (s *SessionStore) Run(ctx context.Context, interval time.Duration) {
	runSweeper(ctx, interval, s.Sweep)
}

func (s *SessionStore) idle(e *sessionEntry, now time.Time) bool {
	return s.ttl > 0 && now.Sub(e.lastSeen) > s.ttl
}

func runSweeper(ctx context.Context, interval time.Duration, sweep func(context.Context) int) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweep(ctx)
		}
	}
}
