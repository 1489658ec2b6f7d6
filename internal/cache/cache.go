// Package cache memoizes board identifier lookups that would otherwise
// cost a remote call each time: list names by list id and custom field
// ids by field name.
package cache

import "sync"

// IdentifierCache holds list-name and field-id lookups for the lifetime of
// the process. There is no eviction or TTL; call Clear when board-side
// renames or deletions may have made entries stale.
type IdentifierCache struct {
	mu        sync.RWMutex
	listNames map[string]string
	fieldIDs  map[string]string
}

// New creates an empty cache.
func New() *IdentifierCache {
	return &IdentifierCache{
		listNames: make(map[string]string),
		fieldIDs:  make(map[string]string),
	}
}

// ListName returns the cached name for a list id.
func (c *IdentifierCache) ListName(listID string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	name, ok := c.listNames[listID]
	return name, ok
}

// SetListName records the name of a list.
func (c *IdentifierCache) SetListName(listID, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listNames[listID] = name
}

// FieldID returns the cached custom field id for a field name.
func (c *IdentifierCache) FieldID(name string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.fieldIDs[name]
	return id, ok
}

// SetFieldID records the id of a named custom field.
func (c *IdentifierCache) SetFieldID(name, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fieldIDs[name] = id
}

// Clear drops every cached entry and reports how many list names and
// field ids were dropped. Readers in flight simply miss on their next
// lookup and refetch.
func (c *IdentifierCache) Clear() (lists, fields int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	lists, fields = len(c.listNames), len(c.fieldIDs)
	c.listNames = make(map[string]string)
	c.fieldIDs = make(map[string]string)
	return lists, fields
}
