// Package cache holds rendered navigation menu trees keyed by menu id.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"journal-backend/internal/domain"
)

type MenuCache interface {
	// Get reports false on a miss.
	Get(ctx context.Context, menuID int32) (*domain.NavigationMenuTree, bool, error)
	Set(ctx context.Context, tree *domain.NavigationMenuTree) error
	Delete(ctx context.Context, menuID int32) error
}

func menuKey(menuID int32) string {
	return fmt.Sprintf("navigationMenu:%d", menuID)
}

// memoryEntry keeps the tree encoded so callers never share its slices or maps.
type memoryEntry struct {
	raw     []byte
	expires time.Time
}

type memoryCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memoryEntry
}

// NewMemoryCache returns a process-local cache. A zero ttl keeps entries until deleted.
func NewMemoryCache(ttl time.Duration) MenuCache {
	return &memoryCache{ttl: ttl, now: time.Now, entries: make(map[string]memoryEntry)}
}

func (c *memoryCache) Get(_ context.Context, menuID int32) (*domain.NavigationMenuTree, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[menuKey(menuID)]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !e.expires.IsZero() && c.now().After(e.expires) {
		c.mu.Lock()
		delete(c.entries, menuKey(menuID))
		c.mu.Unlock()
		return nil, false, nil
	}
	var tree domain.NavigationMenuTree
	if err := json.Unmarshal(e.raw, &tree); err != nil {
		return nil, false, err
	}
	return &tree, true, nil
}

func (c *memoryCache) Set(_ context.Context, tree *domain.NavigationMenuTree) error {
	raw, err := json.Marshal(tree)
	if err != nil {
		return err
	}
	e := memoryEntry{raw: raw}
	if c.ttl > 0 {
		e.expires = c.now().Add(c.ttl)
	}
	c.mu.Lock()
	c.entries[menuKey(tree.Menu.ID)] = e
	c.mu.Unlock()
	return nil
}

func (c *memoryCache) Delete(_ context.Context, menuID int32) error {
	c.mu.Lock()
	delete(c.entries, menuKey(menuID))
	c.mu.Unlock()
	return nil
}
