package coordinator

import "sync"

// HandleCache maps RuntimeIDs to the load-operation handles that produced
// them. It is the coordinator's only privately-owned mutable state.
//
// Invariant: every entry refers to a still-loaded scene. An entry is
// inserted exactly once per successful load and removed exactly once per
// successful unload of that RuntimeID; entries are never mutated in place.
//
// All methods are safe for concurrent use. Concurrent per-name operations
// always touch distinct keys (RuntimeIDs are unique per loaded instance),
// so the mutex only serialises map access, never a provider call.
type HandleCache struct {
	mu      sync.Mutex
	entries map[RuntimeID]Handle
}

// NewHandleCache creates an empty handle cache.
func NewHandleCache() *HandleCache {
	return &HandleCache{
		entries: make(map[RuntimeID]Handle),
	}
}

// Insert records the handle of a freshly completed load.
func (c *HandleCache) Insert(h Handle) {
	c.mu.Lock()
	c.entries[h.RuntimeID()] = h
	c.mu.Unlock()
}

// Remove deletes the entry for an unloaded instance. Removing an absent
// key is a no-op.
func (c *HandleCache) Remove(id RuntimeID) {
	c.mu.Lock()
	delete(c.entries, id)
	c.mu.Unlock()
}

// FindByName returns the first cached handle whose scene's current name
// equals name. When two loaded scenes share a name, which one is returned
// is unspecified (map iteration order); this first-match policy is
// intentional and unload callers must not rely on a particular choice.
func (c *HandleCache) FindByName(name string) (Handle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, h := range c.entries {
		if h.SceneName() == name {
			return h, true
		}
	}
	return nil, false
}

// Contains reports whether an entry exists for the given RuntimeID.
func (c *HandleCache) Contains(id RuntimeID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[id]
	return ok
}

// Len returns the number of cached entries.
func (c *HandleCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Snapshot returns a copy of the current entries for enumeration.
func (c *HandleCache) Snapshot() []Handle {
	c.mu.Lock()
	defer c.mu.Unlock()
	handles := make([]Handle, 0, len(c.entries))
	for _, h := range c.entries {
		handles = append(handles, h)
	}
	return handles
}
