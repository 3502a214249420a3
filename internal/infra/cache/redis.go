package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"pepeeats/internal/domain"
	"pepeeats/internal/infra/metrics"
)

// RedisMenuCache implementuje domain.MenuCache nad Redisem.
// Jídelníček se po úspěšném stažení považuje za neměnný, klíče
// se proto ukládají bez TTL a přepisují se jen dalším stažením.
type RedisMenuCache struct {
	client *redis.Client
}

var _ domain.MenuCache = (*RedisMenuCache)(nil)

// NewRedisMenuCache vytváří keš.
func NewRedisMenuCache(client *redis.Client) *RedisMenuCache {
	return &RedisMenuCache{client: client}
}

func menuKey(date time.Time) string {
	return "menu:" + domain.DateKey(date)
}

// Get vrací uložený jídelníček nebo domain.ErrMenuNotCached.
func (c *RedisMenuCache) Get(ctx context.Context, date time.Time) ([]string, error) {
	start := time.Now()
	raw, err := c.client.Get(ctx, menuKey(date)).Bytes()
	metrics.ObserveNetworkRequest("redis", "menu_get", "menu", start, err)
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrMenuNotCached
	}
	if err != nil {
		return nil, err
	}
	var dishes []string
	if err := json.Unmarshal(raw, &dishes); err != nil {
		return nil, fmt.Errorf("dekódování jídelníčku z keše: %w", err)
	}
	return dishes, nil
}

// Put ukládá jídelníček pro dané datum.
func (c *RedisMenuCache) Put(ctx context.Context, date time.Time, dishes []string) error {
	raw, err := json.Marshal(dishes)
	if err != nil {
		return fmt.Errorf("kódování jídelníčku: %w", err)
	}
	start := time.Now()
	err = c.client.Set(ctx, menuKey(date), raw, 0).Err()
	metrics.ObserveNetworkRequest("redis", "menu_put", "menu", start, err)
	return err
}
