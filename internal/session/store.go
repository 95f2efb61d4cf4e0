package session

import (
	"sync"
	"time"

	"github.com/chrisrosenlind/atv-bot/internal/domain"
)

// Store is an in-memory session store with lazy TTL expiry. All mutations
// funnel through Upsert and Clear; callers never see the underlying map.
type Store struct {
	mu       sync.Mutex
	sessions map[domain.SessionKey]domain.Session
	ttl      time.Duration
	now      func() time.Time
}

// NewStore creates a session store whose entries expire ttl after their
// last Upsert.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[domain.SessionKey]domain.Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Get returns the session for key if present and not expired. An expired
// entry is evicted as a side effect of the read and reported as absent.
func (s *Store) Get(key domain.SessionKey) (*domain.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[key]
	if !ok {
		return nil, false
	}
	if !s.now().Before(sess.ExpiresAt) {
		delete(s.sessions, key)
		return nil, false
	}

	out := sess
	return &out, true
}

// Upsert merges patch over the current session for key, creating a default
// chat-mode session if none exists. The expiry is refreshed to now+TTL on
// every call, whether or not the patch changed anything.
func (s *Store) Upsert(key domain.SessionKey, patch domain.SessionPatch) *domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	sess, ok := s.sessions[key]
	if !ok || !now.Before(sess.ExpiresAt) {
		sess = domain.Session{Key: key, Mode: domain.ModeChat}
	}

	switch patch.Mode.Op {
	case domain.PatchSet:
		sess.Mode = patch.Mode.Value
	case domain.PatchClear:
		sess.Mode = domain.ModeChat
	}

	switch patch.Awaiting.Op {
	case domain.PatchSet:
		sess.Awaiting = patch.Awaiting.Value
	case domain.PatchClear:
		sess.Awaiting = ""
	}

	if patch.Draft != nil {
		draft := *patch.Draft
		sess.Draft = &draft
	}

	sess.ExpiresAt = now.Add(s.ttl)
	s.sessions[key] = sess

	out := sess
	return &out
}

// Clear removes the session for key. Idempotent.
func (s *Store) Clear(key domain.SessionKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, key)
}
