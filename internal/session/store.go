// Package session holds the in-process cache of authenticated Gomanage
// sessions. There is exactly one live session per key; the cache is never
// persisted and dies with the process.
package session

import (
	"sync"
	"time"

	"github.com/buyled/gomanage-relay/internal/model"
)

type Store struct {
	mu        sync.Mutex
	sessions  map[string]*model.Session
	ttl       time.Duration
	idleLimit time.Duration
	now       func() time.Time
}

func NewStore(ttl, idleLimit time.Duration) *Store {
	return &Store{
		sessions:  make(map[string]*model.Session),
		ttl:       ttl,
		idleLimit: idleLimit,
		now:       time.Now,
	}
}

// Get returns the session for key if it is still valid. An entry past its
// TTL or idle limit is evicted on access and reported as absent.
func (s *Store) Get(key string) (*model.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[key]
	if !ok {
		return nil, false
	}
	if !sess.Valid(s.now(), s.idleLimit) {
		delete(s.sessions, key)
		return nil, false
	}
	dup := *sess
	return &dup, true
}

// Put inserts or replaces the session for key.
func (s *Store) Put(key, token string) *model.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	sess := &model.Session{
		Key:        key,
		Token:      token,
		CreatedAt:  now,
		ExpiresAt:  now.Add(s.ttl),
		LastUsedAt: now,
	}
	s.sessions[key] = sess

	dup := *sess
	return &dup
}

// Touch bumps LastUsedAt after a successful use of the session.
func (s *Store) Touch(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[key]; ok {
		sess.LastUsedAt = s.now()
	}
}

// Remove evicts the session for key. Removing an absent key is a no-op.
func (s *Store) Remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, key)
}

// Sweep evicts every entry violating the freshness invariant and returns
// the number removed. Runs on every dispatch and from the cleanup job.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for key, sess := range s.sessions {
		if !sess.Valid(now, s.idleLimit) {
			delete(s.sessions, key)
			removed++
		}
	}
	return removed
}

// Count returns the number of live entries. Entries that have expired but
// not yet been swept are still counted; Sweep first for an exact figure.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
