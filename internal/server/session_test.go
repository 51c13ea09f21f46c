package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tmathes/chatterbox/internal/types"
)

func TestSessionAuthenticate(t *testing.T) {
	t.Run("from unauthenticated", func(t *testing.T) {
		s := NewSession()
		assert.False(t, s.CanSend(), "expected new session to not allow sends")

		ok := s.Authenticate(types.SafeUser{Id: "u1", Username: "alice"})
		assert.True(t, ok, "expected authentication to succeed")
		assert.True(t, s.CanSend(), "expected authenticated session to allow sends")

		user, ok := s.User()
		assert.True(t, ok, "expected user to be present")
		assert.Equal(t, "u1", user.Id, "expected user id to match")
	})

	t.Run("already authenticated", func(t *testing.T) {
		s := NewSession()
		assert.True(t, s.Authenticate(types.SafeUser{Id: "u1"}), "expected first auth to succeed")

		ok := s.Authenticate(types.SafeUser{Id: "u2"})
		assert.False(t, ok, "expected re-authentication to be rejected")

		user, _ := s.User()
		assert.Equal(t, "u1", user.Id, "expected original user to be retained")
	})

	t.Run("after close", func(t *testing.T) {
		s := NewSession()
		s.Close()

		ok := s.Authenticate(types.SafeUser{Id: "u1"})
		assert.False(t, ok, "expected authentication on a closed session to fail")
		assert.False(t, s.CanSend(), "expected closed session to not allow sends")
	})
}

func TestSessionUser_unauthenticated(t *testing.T) {
	s := NewSession()

	_, ok := s.User()
	assert.False(t, ok, "expected no user on an unauthenticated session")
}

func TestSessionClose(t *testing.T) {
	t.Run("authenticated session", func(t *testing.T) {
		s := NewSession()
		s.Authenticate(types.SafeUser{Id: "u1"})

		wasAuthenticated := s.Close()
		assert.True(t, wasAuthenticated, "expected close to report the session was authenticated")
		assert.False(t, s.CanSend(), "expected closed session to not allow sends")
	})

	t.Run("unauthenticated session", func(t *testing.T) {
		s := NewSession()

		wasAuthenticated := s.Close()
		assert.False(t, wasAuthenticated, "expected close to report the session was not authenticated")
	})

	t.Run("close is idempotent", func(t *testing.T) {
		s := NewSession()
		s.Authenticate(types.SafeUser{Id: "u1"})

		assert.True(t, s.Close(), "expected first close to report authenticated")
		assert.False(t, s.Close(), "expected second close to report not authenticated")
	})
}
