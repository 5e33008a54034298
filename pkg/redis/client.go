package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/riftvoice/backend/pkg/kv"
)

// Client wraps go-redis client with optional logger and implements kv.Store.
type Client struct {
	*redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewClient creates a Redis client and verifies connectivity.
// Values written through Put expire after ttl; zero keeps them forever.
func NewClient(ctx context.Context, addr, password string, db int, ttl time.Duration, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	logger.Info("Redis client connected", zap.String("addr", addr), zap.Duration("ttl", ttl))
	return &Client{Client: rdb, ttl: ttl, logger: logger}, nil
}

// Get returns the value stored under key, or kv.ErrAbsent.
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, kv.ErrAbsent
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return val, nil
}

// Put stores value under key, resetting its expiry.
func (c *Client) Put(ctx context.Context, key string, value []byte) error {
	if err := c.Client.Set(ctx, key, value, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	c.logger.Debug("kv put", zap.String("key", key), zap.Int("bytes", len(value)))
	return nil
}

var _ kv.Store = (*Client)(nil)
