// Package rdx caches the hydrated recipe list in Redis. The cache is a
// best-effort read accelerator: every failure is logged and treated as a
// miss, and mutations simply drop the cached list.
package rdx

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"cookbook/models"
)

const (
	listKey = "cookbook:recipes"
	listTTL = 5 * time.Minute
)

type Cache struct {
	conn *redis.Client
	log  *zap.Logger
}

// New connects to Redis at addr. An empty addr disables the cache; every
// method then behaves as a miss.
func New(addr string, log *zap.Logger) *Cache {
	if addr == "" {
		return &Cache{log: log}
	}
	return &Cache{
		conn: redis.NewClient(&redis.Options{Addr: addr}),
		log:  log,
	}
}

func (c *Cache) GetRecipes(ctx context.Context) ([]models.Recipe, bool) {
	if c.conn == nil {
		return nil, false
	}
	raw, err := c.conn.Get(ctx, listKey).Result()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.log.Warn("recipe cache read failed", zap.Error(err))
		return nil, false
	}
	var recipes []models.Recipe
	if err := json.Unmarshal([]byte(raw), &recipes); err != nil {
		c.log.Warn("recipe cache entry unreadable", zap.Error(err))
		return nil, false
	}
	return recipes, true
}

func (c *Cache) SetRecipes(ctx context.Context, recipes []models.Recipe) {
	if c.conn == nil {
		return
	}
	raw, err := json.Marshal(recipes)
	if err != nil {
		c.log.Warn("recipe cache encode failed", zap.Error(err))
		return
	}
	if err := c.conn.Set(ctx, listKey, raw, listTTL).Err(); err != nil {
		c.log.Warn("recipe cache write failed", zap.Error(err))
	}
}

// Invalidate drops the cached list after any mutation.
func (c *Cache) Invalidate(ctx context.Context) {
	if c.conn == nil {
		return
	}
	if err := c.conn.Del(ctx, listKey).Err(); err != nil {
		c.log.Warn("recipe cache invalidation failed", zap.Error(err))
	}
}
