package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// RedisConfig configures Redis access for the shared detector cache.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
	// HardTTL bounds how long an entry can sit in Redis regardless of the
	// consumer's lazy-expiry TTL. Zero keeps entries until overwritten.
	HardTTL time.Duration
}

// RedisStore is a Redis-backed Store for deployments that share one
// cache across monitor instances.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	if strings.TrimSpace(cfg.Addr) == "" {
		cfg.Addr = "127.0.0.1:6379"
	}
	if strings.TrimSpace(cfg.KeyPrefix) == "" {
		cfg.KeyPrefix = "trustmon:cache"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis cache: %w", err)
	}

	return &RedisStore{
		client: client,
		prefix: strings.TrimSpace(cfg.KeyPrefix),
		ttl:    cfg.HardTTL,
	}, nil
}

// Get returns the entry for key, or nil when absent.
func (s *RedisStore) Get(ctx context.Context, key string) (*Entry, error) {
	raw, err := s.client.Get(ctx, s.entryKey(key)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cache entry: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return nil, fmt.Errorf("decode cache entry: %w", err)
	}
	return &entry, nil
}

// Set stores the entry under key.
func (s *RedisStore) Set(ctx context.Context, key string, entry Entry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	if err := s.client.Set(ctx, s.entryKey(key), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	return nil
}

// Delete removes the entry for key.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.entryKey(key)).Err(); err != nil {
		return fmt.Errorf("delete cache entry: %w", err)
	}
	return nil
}

// Clear removes every entry under the store's prefix.
func (s *RedisStore) Clear(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, s.prefix+":*", 100).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("delete cache key %s: %w", iter.Val(), err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan cache keys: %w", err)
	}
	return nil
}

// Close releases Redis resources.
func (s *RedisStore) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

func (s *RedisStore) entryKey(key string) string {
	return s.prefix + ":" + key
}
