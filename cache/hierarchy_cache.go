// Package cache keeps materialized menu forests in Redis.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"menu-app/models"
	"menu-app/services"
	"menu-app/types"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

var _ services.HierarchyCache = (*RedisHierarchyCache)(nil)

var errStaleGeneration = errors.New("hierarchy generation moved")

// RedisHierarchyCache stores one JSON encoded forest per menu under
// "menu:hierarchy:<menuID>" and the menu's generation counter under
// "menu:hierarchy:gen:<menuID>". Counters carry no TTL so a generation never
// falls back to a value a reader may still hold.
type RedisHierarchyCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisHierarchyCache connects to redisURL and checks the connection.
func NewRedisHierarchyCache(redisURL string, ttl time.Duration) (*RedisHierarchyCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse redis url")
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "connect to redis")
	}

	return NewRedisHierarchyCacheWithClient(client, ttl), nil
}

func NewRedisHierarchyCacheWithClient(client *redis.Client, ttl time.Duration) *RedisHierarchyCache {
	return &RedisHierarchyCache{
		client: client,
		prefix: "menu:hierarchy:",
		ttl:    ttl,
	}
}

func (c *RedisHierarchyCache) key(menuID types.SnowflakeID) string {
	return c.prefix + menuID.String()
}

func (c *RedisHierarchyCache) generationKey(menuID types.SnowflakeID) string {
	return c.prefix + "gen:" + menuID.String()
}

func (c *RedisHierarchyCache) GetHierarchy(ctx context.Context, menuID types.SnowflakeID) ([]models.MenuItem, bool, error) {
	raw, err := c.client.Get(ctx, c.key(menuID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "get hierarchy")
	}

	var forest []models.MenuItem
	if err := json.Unmarshal(raw, &forest); err != nil {
		// A stale or foreign value is treated as a miss and evicted.
		_ = c.client.Del(ctx, c.key(menuID)).Err()
		return nil, false, errors.Wrap(err, "decode hierarchy")
	}
	if forest == nil {
		forest = []models.MenuItem{}
	}
	return forest, true, nil
}

func (c *RedisHierarchyCache) Generation(ctx context.Context, menuID types.SnowflakeID) (int64, error) {
	gen, err := c.client.Get(ctx, c.generationKey(menuID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrap(err, "get hierarchy generation")
	}
	return gen, nil
}

// SetHierarchy writes forest only while the menu is still at generation. The
// counter is watched, so an Invalidate racing the write aborts it.
func (c *RedisHierarchyCache) SetHierarchy(ctx context.Context, menuID types.SnowflakeID, generation int64, forest []models.MenuItem) error {
	if forest == nil {
		forest = []models.MenuItem{}
	}
	raw, err := json.Marshal(forest)
	if err != nil {
		return errors.Wrap(err, "encode hierarchy")
	}

	genKey := c.generationKey(menuID)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != generation {
			return errStaleGeneration
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, c.key(menuID), raw, c.ttl)
			return nil
		})
		return err
	}, genKey)
	if errors.Is(err, errStaleGeneration) || errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	return errors.Wrap(err, "set hierarchy")
}

// Invalidate drops the entry and advances the generation in one transaction.
func (c *RedisHierarchyCache) Invalidate(ctx context.Context, menuID types.SnowflakeID) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, c.generationKey(menuID))
		pipe.Del(ctx, c.key(menuID))
		return nil
	})
	return errors.Wrap(err, "invalidate hierarchy")
}

func (c *RedisHierarchyCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisHierarchyCache) Close() error {
	return c.client.Close()
}
