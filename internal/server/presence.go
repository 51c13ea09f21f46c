package server

import (
	"sync"

	"github.com/tmathes/chatterbox/internal/types"
)

// PresenceRegistry maps connection ids to the authenticated user on that
// connection. It holds no persistent state and starts empty on every boot.
// Writes happen on the hub goroutine; the lock allows snapshots from HTTP
// handlers and tests.
type PresenceRegistry struct {
	mu      sync.RWMutex
	entries map[string]types.SafeUser
}

func NewPresenceRegistry() *PresenceRegistry {
	return &PresenceRegistry{
		entries: make(map[string]types.SafeUser),
	}
}

func (p *PresenceRegistry) Add(connId string, user types.SafeUser) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.entries[connId] = user
}

func (p *PresenceRegistry) Remove(connId string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.entries, connId)
}

// Snapshot returns the currently present users in no particular order.
func (p *PresenceRegistry) Snapshot() []types.SafeUser {
	p.mu.RLock()
	defer p.mu.RUnlock()

	users := make([]types.SafeUser, 0, len(p.entries))
	for _, u := range p.entries {
		users = append(users, u)
	}

	return users
}

func (p *PresenceRegistry) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return len(p.entries)
}
