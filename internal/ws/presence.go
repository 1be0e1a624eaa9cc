package ws

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Presence records which users are connected, independent of frame
// routing. A single process needs nothing beyond the Hub's own map; the
// Redis implementation exists so multiple gateway instances can observe
// each other's connections.
type Presence interface {
	Up(ctx context.Context, userID int64) error
	Down(ctx context.Context, userID int64) error
}

// NoopPresence is the single-instance default.
type NoopPresence struct{}

func (NoopPresence) Up(ctx context.Context, userID int64) error   { return nil }
func (NoopPresence) Down(ctx context.Context, userID int64) error { return nil }

// presenceTTL bounds how stale a crashed instance's entries can get.
// Registered clients refresh their key on every heartbeat interval.
const presenceTTL = 90 * time.Second

// RedisPresence tracks online users in Redis with a TTL per user key.
type RedisPresence struct {
	client *redis.Client
}

// NewRedisPresence connects to Redis using a redis:// URL.
func NewRedisPresence(url string) (*RedisPresence, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return &RedisPresence{client: client}, nil
}

func presenceKey(userID int64) string {
	return fmt.Sprintf("chat:online:%d", userID)
}

func (p *RedisPresence) Up(ctx context.Context, userID int64) error {
	return p.client.Set(ctx, presenceKey(userID), "1", presenceTTL).Err()
}

func (p *RedisPresence) Down(ctx context.Context, userID int64) error {
	return p.client.Del(ctx, presenceKey(userID)).Err()
}

// Close releases the Redis connection.
func (p *RedisPresence) Close() error {
	return p.client.Close()
}
