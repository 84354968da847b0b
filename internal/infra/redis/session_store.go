package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"restart50-service/internal/app"
	"restart50-service/internal/logger"
)

type sessionEntry struct {
	session *app.Session
	// marked is set once the liveness key is known to have been written.
	marked bool
}

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Notes:
//   - Session state (preferences, chat history) stays in a local map; it is
//     transient by nature and never persisted.
//   - Redis holds a liveness key per session with a sliding TTL. A marked
//     session whose key is gone has expired and is dropped on lookup or sweep.
//   - A session whose key could not be written is not treated as expired; the
//     write is retried on the next lookup.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	log      *logger.Logger
	mu       sync.Mutex
	sessions map[string]*sessionEntry
}

func NewSessionStore(client *redis.Client, ttl time.Duration, log *logger.Logger) *SessionStore {
	if log == nil {
		log = logger.NewNop()
	}
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		log:      log,
		sessions: make(map[string]*sessionEntry),
	}
}

func (s *SessionStore) Put(session *app.Session) {
	e := &sessionEntry{session: session}
	e.marked = s.mark(context.Background(), session.ID())
	s.mu.Lock()
	s.sessions[session.ID()] = e
	s.mu.Unlock()
}

func (s *SessionStore) Get(id string) (*app.Session, bool) {
	s.mu.Lock()
	e, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok {
		return nil, false
	}
	if !s.check(context.Background(), id, e) {
		return nil, false
	}
	return e.session, true
}

func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	if err := s.client.Del(context.Background(), s.key(id)).Err(); err != nil {
		s.log.Warn("session key delete failed", "session_id", id, "error", err)
	}
}

// Len reports how many sessions are held locally.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep drops local sessions whose liveness key expired and reports how many
// were removed.
func (s *SessionStore) Sweep(ctx context.Context) int {
	s.mu.Lock()
	entries := make(map[string]*sessionEntry, len(s.sessions))
	for id, e := range s.sessions {
		entries[id] = e
	}
	s.mu.Unlock()

	before := s.Len()
	for id, e := range entries {
		if ctx.Err() != nil {
			break
		}
		s.check(ctx, id, e)
	}
	return before - s.Len()
}

// Run sweeps every interval until ctx is done.
func (s *SessionStore) Run(ctx context.Context, interval time.Duration) {
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
			s.Sweep(ctx)
		}
	}
}

// check reports whether the session is alive, sliding its TTL, retrying an
// unwritten key and dropping an expired one.
func (s *SessionStore) check(ctx context.Context, id string, e *sessionEntry) bool {
	alive, err := s.client.Exists(ctx, s.key(id)).Result()
	if err != nil {
		s.log.Warn("session liveness check failed", "session_id", id, "error", err)
		return true
	}
	if alive == 0 {
		s.mu.Lock()
		marked := e.marked
		s.mu.Unlock()
		if marked {
			s.mu.Lock()
			if s.sessions[id] == e {
				delete(s.sessions, id)
			}
			s.mu.Unlock()
			return false
		}
		if s.mark(ctx, id) {
			s.mu.Lock()
			e.marked = true
			s.mu.Unlock()
		}
		return true
	}
	if s.ttl > 0 {
		if err := s.client.Expire(ctx, s.key(id), s.ttl).Err(); err != nil {
			s.log.Warn("session ttl refresh failed", "session_id", id, "error", err)
		}
	}
	return true
}

func (s *SessionStore) mark(ctx context.Context, id string) bool {
	if err := s.client.Set(ctx, s.key(id), "1", s.ttl).Err(); err != nil {
		s.log.Warn("session key write failed", "session_id", id, "error", err)
		return false
	}
	return true
}

func (s *SessionStore) key(id string) string {
	return "restart:session:" + id
}
