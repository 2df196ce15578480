package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CLIENT'S STATE IN REDIS

var ErrStateNotFound = errors.New("state not found")

type Client struct {
	client *redis.Client
	ttl    time.Duration
}

// New creates a new Redis client
func New(addr, password string, db int, ttl time.Duration) *Client {
	return &Client{
		client: redis.NewClient(&redis.Options{
			Addr:         addr,
			Password:     password,
			DB:           db,
			PoolSize:     20,
			MinIdleConns: 2,
		}),
		ttl: ttl,
	}
}

// Ping checks the connection
func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Expire sets a key's time to live (TTL)
func (c *Client) Expire(ctx context.Context, key string, expiration time.Duration) (bool, error) {
	return c.client.Expire(ctx, key, expiration).Result()
}

// Incr increments the key's value by 1. Returns the new value and any error
func (c *Client) Incr(ctx context.Context, key string) (int64, error) {
	return c.client.Incr(ctx, key).Result()
}

// Del deletes a key
func (c *Client) Del(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// Close closes the Redis connection
func (c *Client) Close() {
	if c.client != nil {
		_ = c.client.Close()
	}
}

// SaveState saves user state to Redis and refreshes its TTL
func (c *Client) SaveState(ctx context.Context, chatID int64, state any) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	return c.client.Set(ctx, stateKey(chatID), data, c.ttl).Err()
}

// GetState retrieves user state from Redis. Returns ErrStateNotFound when the
// chat has no state or it expired.
func (c *Client) GetState(ctx context.Context, chatID int64, state any) error {
	data, err := c.client.Get(ctx, stateKey(chatID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrStateNotFound
	}
	if err != nil {
		return fmt.Errorf("get state: %w", err)
	}

	if err := json.Unmarshal(data, state); err != nil {
		return fmt.Errorf("unmarshal state: %w", err)
	}
	return nil
}

// ClearState removes user state from Redis
func (c *Client) ClearState(ctx context.Context, chatID int64) error {
	return c.Del(ctx, stateKey(chatID))
}

func stateKey(chatID int64) string {
	return fmt.Sprintf("state:%d", chatID)
}
