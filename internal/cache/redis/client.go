// Package redis shares cached exchange metadata between scanner processes through go-redis/v9.
package redis

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// ClientConfig connection parameters.
type ClientConfig struct {
	Addr     string
	Password string
	DB       int
	// Prefix namespaces every key, e.g. "arbscan:".
	Prefix string
}

// Client go-redis client wrapper.
type Client struct {
	rdb    *redis.Client
	prefix string
}

// New connects and pings; it fails when Redis is unreachable.
func New(ctx context.Context, cfg ClientConfig) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrapf(err, "redis ping %s", cfg.Addr)
	}

	return &Client{rdb: rdb, prefix: cfg.Prefix}, nil
}

// Close closes the connection pool.
func (c *Client) Close() error {
	return c.rdb.Close()
}

func (c *Client) key(parts ...string) string {
	k := c.prefix
	for i, p := range parts {
		if i > 0 {
			k += ":"
		}
		k += p
	}
	return k
}
