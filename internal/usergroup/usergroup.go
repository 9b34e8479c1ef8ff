// Package usergroup provides a per-request memo of user groups so that listing many
// authors resolves each group once.
package usergroup

import (
	"context"
	"sync"

	"journal-backend/internal/domain"
	"journal-backend/internal/repository"
)

type Cache struct {
	repo repository.UserGroupRepository

	mu     sync.Mutex
	groups map[int32]*domain.UserGroup
}

func NewCache(repo repository.UserGroupRepository) *Cache {
	return &Cache{repo: repo, groups: make(map[int32]*domain.UserGroup)}
}

// Get returns the group, loading it on first use. Misses are not cached.
func (c *Cache) Get(ctx context.Context, id int32) (*domain.UserGroup, error) {
	c.mu.Lock()
	if g, ok := c.groups[id]; ok {
		c.mu.Unlock()
		return g, nil
	}
	c.mu.Unlock()

	g, err := c.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.groups[id] = g
	c.mu.Unlock()
	return g, nil
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.groups = make(map[int32]*domain.UserGroup)
	c.mu.Unlock()
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.groups)
}

type ctxKey struct{}

func WithCache(ctx context.Context, c *Cache) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

// FromContext returns the request's cache, or a fresh one bound to repo when the
// context carries none (background jobs, CLI).
func FromContext(ctx context.Context, repo repository.UserGroupRepository) *Cache {
	if c, ok := ctx.Value(ctxKey{}).(*Cache); ok && c != nil {
		return c
	}
	return NewCache(repo)
}
