package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"

	"giveaway-bot/internal/common/logger"
)

const connectRetries = 5

// Client wraps go-redis client to allow future extensions.
type Client struct {
	*redis.Client
}

// Options configures Open.
type Options struct {
	Addr     string
	Password string
	DB       int
}

// Open creates a new Redis client and pings it with exponential backoff.
func Open(ctx context.Context, opts Options) (*Client, error) {
	if opts.Addr == "" {
		return nil, fmt.Errorf("empty redis addr")
	}
	c := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), connectRetries), ctx)
	err := backoff.Retry(func() error {
		if err := c.Ping(ctx).Err(); err != nil {
			logger.Warn().Err(err).Str("addr", opts.Addr).Msg("Redis connection failed, retrying")
			return err
		}
		return nil
	}, b)
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", opts.Addr, err)
	}

	logger.Info().Str("addr", opts.Addr).Msg("Redis client initialized")
	return &Client{Client: c}, nil
}

// Wrap adopts an existing go-redis client, used by tests against miniredis.
func Wrap(c *redis.Client) *Client {
	return &Client{Client: c}
}
