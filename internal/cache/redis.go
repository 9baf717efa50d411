package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Domenick1991/cabinseats/config"
	"github.com/Domenick1991/cabinseats/internal/domain"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client  *redis.Client
	gridTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, gridTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:  redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		gridTTL: gridTTL,
	}
}

func (c *RedisCache) GetGrid(ctx context.Context) ([]domain.GridRow, error) {
	data, err := c.client.Get(ctx, gridKey()).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var grid []domain.GridRow
	if err := json.Unmarshal(data, &grid); err != nil {
		return nil, err
	}
	return grid, nil
}

func (c *RedisCache) SetGrid(ctx context.Context, grid []domain.GridRow) error {
	payload, err := json.Marshal(grid)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, gridKey(), payload, c.gridTTL).Err()
}

func (c *RedisCache) InvalidateGrid(ctx context.Context) error {
	return c.client.Del(ctx, gridKey()).Err()
}

// AcquireSeatLock holds a short exclusive lock on one seat while its
// booking transaction runs. The database unique constraints remain the
// authority; the lock only keeps concurrent callers from piling onto
// the same seat.
func (c *RedisCache) AcquireSeatLock(ctx context.Context, seatID string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, seatLockKey(seatID), "locked", ttl).Result()
}

func (c *RedisCache) ReleaseSeatLock(ctx context.Context, seatID string) error {
	return c.client.Del(ctx, seatLockKey(seatID)).Err()
}

func gridKey() string {
	return "cache:status_grid"
}

func seatLockKey(seatID string) string {
	return fmt.Sprintf("lock:seat:%s", seatID)
}
