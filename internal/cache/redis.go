package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/Clemtourte/tft-app-project/internal/metrics"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Config holds the Redis connection settings
type Config struct {
	Host     string
	Port     string
	Password string
	DB       int
	TTL      time.Duration
}

// RedisCache caches static game data between runs
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to Redis and verifies the connection with a PING
func NewRedisCache(cfg Config) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return newRedisCache(client, cfg.TTL), nil
}

func newRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisCache{client: client, ttl: ttl}
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}

func championCostsKey(version, setPrefix string) string {
	return fmt.Sprintf("tft:champion_costs:%s:%s", version, setPrefix)
}

// GetChampionCosts returns the cached cost table. ok is false on a miss.
func (c *RedisCache) GetChampionCosts(ctx context.Context, version, setPrefix string) (map[string]int, bool, error) {
	data, err := c.client.Get(ctx, championCostsKey(version, setPrefix)).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.RecordCacheMiss()
		return nil, false, nil
	}
	if err != nil {
		metrics.RecordError("cache", "get")
		return nil, false, fmt.Errorf("failed to get champion costs: %w", err)
	}

	var costs map[string]int
	if err := json.Unmarshal(data, &costs); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal champion costs: %w", err)
	}

	metrics.RecordCacheHit()
	log.Debug().Str("version", version).Int("champions", len(costs)).Msg("Champion costs served from cache")
	return costs, true, nil
}

// SetChampionCosts stores the cost table under the configured TTL
func (c *RedisCache) SetChampionCosts(ctx context.Context, version, setPrefix string, costs map[string]int) error {
	data, err := json.Marshal(costs)
	if err != nil {
		return fmt.Errorf("failed to marshal champion costs: %w", err)
	}

	if err := c.client.Set(ctx, championCostsKey(version, setPrefix), data, c.ttl).Err(); err != nil {
		metrics.RecordError("cache", "set")
		return fmt.Errorf("failed to set champion costs: %w", err)
	}

	return nil
}
