package services

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Session holds the current backend credentials. Auth-looking load
// failures force-clear it rather than retrying with stale credentials.
type Session struct {
	mu    sync.Mutex
	token string
}

// NewSession creates an empty session
func NewSession() *Session {
	return &Session{}
}

// SetToken stores the current access token
func (s *Session) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// Token returns the current access token, empty when signed out
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Clear forcibly signs the session out
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token != "" {
		log.Warn().Msg("Clearing session after authentication failure")
	}
	s.token = ""
}
