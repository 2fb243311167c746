package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// SessionStore maps opaque session ids to bearer tokens. The browser only
// ever sees the session id; tokens stay server-side and disappear when the
// session is deleted, expires, or the process exits.
type SessionStore struct {
	sessions *cache.Cache
}

func NewSessionStore(sessionTimeout time.Duration) *SessionStore {
	return &SessionStore{
		sessions: cache.New(sessionTimeout, sessionTimeout),
	}
}

// Create stores token under a fresh session id and returns the id.
func (s *SessionStore) Create(token string) string {
	id := uuid.NewString()
	s.sessions.SetDefault(id, token)
	return id
}

// Get returns the token for id, if the session exists and has not expired.
func (s *SessionStore) Get(id string) (string, bool) {
	value, ok := s.sessions.Get(id)
	if !ok {
		return "", false
	}
	return value.(string), true
}

// Delete removes the session synchronously; a deleted session can never
// serve another request.
func (s *SessionStore) Delete(id string) {
	s.sessions.Delete(id)
}
