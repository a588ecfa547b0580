package gatt

import (
	"errors"
	"sync"

	"github.com/go-ble/ble"
)

// ErrNotCached indicates no profile is stored for a peer.
var ErrNotCached = errors.New("profile not cached")

// ProfileCache stores discovered GATT profiles per peer address.
// It is safe for concurrent use.
type ProfileCache struct {
	mu       sync.Mutex
	profiles map[string]*ble.Profile
}

// NewProfileCache creates an empty cache.
func NewProfileCache() *ProfileCache {
	return &ProfileCache{profiles: make(map[string]*ble.Profile)}
}

// Store records the profile discovered on addr.
func (c *ProfileCache) Store(addr string, p *ble.Profile) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.profiles[addr] = p
}

// Load returns the cached profile for addr or ErrNotCached.
func (c *ProfileCache) Load(addr string) (*ble.Profile, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.profiles[addr]
	if !ok {
		return nil, ErrNotCached
	}
	return p, nil
}

// Forget drops the profile cached for addr.
func (c *ProfileCache) Forget(addr string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.profiles, addr)
}

// Clear drops every cached profile.
func (c *ProfileCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.profiles = make(map[string]*ble.Profile)
}

// Len returns the number of cached profiles.
func (c *ProfileCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.profiles)
}
