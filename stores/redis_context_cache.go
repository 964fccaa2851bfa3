package stores

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/estateops/propguard"
	"github.com/redis/go-redis/v9"
)

// RedisContextCache shares resolved user contexts across processes via Redis
// (key: userctx:{userID}, JSON value, TTL-expired server side). It satisfies
// propguard.ContextCache; the interface is synchronous so each call uses a
// short background context.
type RedisContextCache struct {
	client  *redis.Client
	keyFmt  string // format string, e.g. "userctx:%s"
	ttl     time.Duration
	timeout time.Duration
}

func NewRedisContextCache(client *redis.Client, ttl time.Duration) *RedisContextCache {
	if ttl <= 0 {
		ttl = propguard.DefaultContextTTL
	}
	return &RedisContextCache{
		client:  client,
		keyFmt:  "userctx:%s",
		ttl:     ttl,
		timeout: 2 * time.Second,
	}
}

func (c *RedisContextCache) key(userID string) string {
	return fmt.Sprintf(c.keyFmt, userID)
}

func (c *RedisContextCache) Get(userID string) (*propguard.UserContext, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	raw, err := c.client.Get(ctx, c.key(userID)).Bytes()
	if err != nil {
		return nil, false
	}
	var uc propguard.UserContext
	if err := json.Unmarshal(raw, &uc); err != nil {
		return nil, false
	}
	return &uc, true
}

func (c *RedisContextCache) Put(userID string, uc *propguard.UserContext) {
	raw, err := json.Marshal(uc)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	c.client.Set(ctx, c.key(userID), raw, c.ttl)
}

func (c *RedisContextCache) Invalidate(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	c.client.Del(ctx, c.key(userID))
}

func (c *RedisContextCache) InvalidateAll() {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	iter := c.client.Scan(ctx, 0, fmt.Sprintf(c.keyFmt, "*"), 0).Iterator()
	for iter.Next(ctx) {
		c.client.Del(ctx, iter.Val())
	}
}
