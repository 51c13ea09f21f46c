package server

import (
	"github.com/tmathes/chatterbox/internal/types"
)

type sessionState int

const (
	stateUnauthenticated sessionState = iota
	stateAuthenticated
	stateClosed
)

// Session tracks the authentication state of a single connection. It is
// mutated only from the hub goroutine, so no locking is required.
type Session struct {
	state sessionState
	user  *types.SafeUser
}

func NewSession() *Session {
	return &Session{state: stateUnauthenticated}
}

// Authenticate transitions the session to authenticated. It returns false
// if the session is not in the unauthenticated state.
func (s *Session) Authenticate(user types.SafeUser) bool {
	if s.state != stateUnauthenticated {
		return false
	}

	s.state = stateAuthenticated
	s.user = &user
	return true
}

// User returns the authenticated user, if any.
func (s *Session) User() (types.SafeUser, bool) {
	if s.state != stateAuthenticated {
		return types.SafeUser{}, false
	}

	return *s.user, true
}

// CanSend reports whether the session may produce messages.
func (s *Session) CanSend() bool {
	return s.state == stateAuthenticated
}

// Close marks the session closed and reports whether it was authenticated
// at the time, in which case the caller must drop its presence entry.
func (s *Session) Close() bool {
	wasAuthenticated := s.state == stateAuthenticated
	s.state = stateClosed
	return wasAuthenticated
}
