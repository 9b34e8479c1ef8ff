package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"journal-backend/internal/domain"
	"journal-backend/internal/logger"
)

type redisCache struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisClient connects and pings the server.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	logger.ExternalServiceCall("redis", "PING", "addr", addr)
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.ExternalServiceResult("redis", "PING", err)
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	logger.ExternalServiceResult("redis", "PING", nil)
	return rdb, nil
}

// NewRedisCache stores trees as JSON under prefix + "navigationMenu:<id>".
func NewRedisCache(client redis.UniversalClient, prefix string, ttl time.Duration) MenuCache {
	return &redisCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *redisCache) key(menuID int32) string {
	return c.prefix + menuKey(menuID)
}

func (c *redisCache) Get(ctx context.Context, menuID int32) (*domain.NavigationMenuTree, bool, error) {
	raw, err := c.client.Get(ctx, c.key(menuID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", c.key(menuID), err)
	}
	var tree domain.NavigationMenuTree
	if err := json.Unmarshal(raw, &tree); err != nil {
		// A stale encoding is treated as a miss and overwritten on the next Set.
		logger.Warn("Discarding undecodable menu cache entry", "key", c.key(menuID), "error", err)
		return nil, false, nil
	}
	return &tree, true, nil
}

func (c *redisCache) Set(ctx context.Context, tree *domain.NavigationMenuTree) error {
	raw, err := json.Marshal(tree)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(tree.Menu.ID), raw, c.ttl).Err()
}

func (c *redisCache) Delete(ctx context.Context, menuID int32) error {
	return c.client.Del(ctx, c.key(menuID)).Err()
}
