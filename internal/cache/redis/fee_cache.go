package redis

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// FeeCache withdrawal fees stored as decimal strings at "<prefix>wfee:<exchange>:<asset>".
type FeeCache struct {
	c *Client
}

func NewFeeCache(c *Client) *FeeCache {
	return &FeeCache{c: c}
}

// Get returns the cached fee; ok is false when the key is missing or expired.
func (f *FeeCache) Get(ctx context.Context, exchange, asset string) (decimal.Decimal, bool, error) {
	s, err := f.c.rdb.Get(ctx, f.c.key("wfee", exchange, asset)).Result()
	if errors.Is(err, redis.Nil) {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, errors.Wrapf(err, "redis get fee %s/%s", exchange, asset)
	}

	fee, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false, errors.Wrapf(err, "redis parse fee %s/%s", exchange, asset)
	}
	return fee, true, nil
}

// Set stores fee for ttl.
func (f *FeeCache) Set(ctx context.Context, exchange, asset string, fee decimal.Decimal, ttl time.Duration) error {
	if err := f.c.rdb.Set(ctx, f.c.key("wfee", exchange, asset), fee.String(), ttl).Err(); err != nil {
		return errors.Wrapf(err, "redis set fee %s/%s", exchange, asset)
	}
	return nil
}
