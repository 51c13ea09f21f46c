package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tmathes/chatterbox/internal/types"
)

func TestPresenceRegistry(t *testing.T) {
	p := NewPresenceRegistry()
	assert.Empty(t, p.Snapshot(), "expected new registry to be empty")

	p.Add("conn-1", types.SafeUser{Id: "u1", Username: "alice"})
	p.Add("conn-2", types.SafeUser{Id: "u2", Username: "bob"})
	assert.Equal(t, 2, p.Len(), "expected two presence entries")

	snapshot := p.Snapshot()
	assert.Len(t, snapshot, 2, "expected snapshot to contain both users")
	assert.ElementsMatch(t, []types.SafeUser{
		{Id: "u1", Username: "alice"},
		{Id: "u2", Username: "bob"},
	}, snapshot, "expected snapshot to match added users")

	p.Remove("conn-1")
	snapshot = p.Snapshot()
	assert.Len(t, snapshot, 1, "expected one entry after removal")
	assert.Equal(t, "u2", snapshot[0].Id, "expected the remaining entry to be bob")

	// removing an unknown connection is a no-op
	p.Remove("conn-unknown")
	assert.Equal(t, 1, p.Len(), "expected registry to be unchanged")
}

func TestPresenceRegistry_duplicateConnection(t *testing.T) {
	p := NewPresenceRegistry()

	p.Add("conn-1", types.SafeUser{Id: "u1", Username: "alice"})
	p.Add("conn-1", types.SafeUser{Id: "u1", Username: "alice"})

	assert.Equal(t, 1, p.Len(), "expected re-adding the same connection to not duplicate the entry")
}
