package importer

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// Sessions holds one import session per user. Idle sessions expire after ttl.
type Sessions struct {
	mu        sync.Mutex
	cache     *cache.Cache
	limits    Limits
	validator *Validator
	ttl       time.Duration
}

func NewSessions(limits Limits, ttl time.Duration) *Sessions {
	return &Sessions{
		cache:     cache.New(ttl, ttl/2),
		limits:    limits,
		validator: NewValidator(),
		ttl:       ttl,
	}
}

// Get returns the user's session, creating it when absent, and refreshes its expiry.
func (s *Sessions) Get(userID string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.cache.Get(userID); ok {
		sess := v.(*Session)
		s.cache.Set(userID, sess, s.ttl)

		return sess
	}

	sess := NewSession(s.limits, s.validator)
	s.cache.Set(userID, sess, s.ttl)

	return sess
}

// Drop forgets the user's session.
func (s *Sessions) Drop(userID string) {
	s.cache.Delete(userID)
}

// Limits returns the limits applied to new sessions.
func (s *Sessions) Limits() Limits {
	return s.limits
}
