// Package fees resolves withdrawal fees with a fallback chain: exchange, cache, default.
package fees

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vadiminshakov/arbscan/internal/domain"
	"github.com/vadiminshakov/arbscan/internal/exchange"
)

// DefaultWithdrawalFee applied when neither the exchange nor the cache knows the fee.
var DefaultWithdrawalFee = decimal.RequireFromString("2.5")

const defaultTTL = 6 * time.Hour

// Cache last known withdrawal fees.
type Cache interface {
	Get(ctx context.Context, exchange, asset string) (decimal.Decimal, bool, error)
	Set(ctx context.Context, exchange, asset string, fee decimal.Decimal, ttl time.Duration) error
}

// Resolver looks up withdrawal fees. Configured overrides win over everything.
type Resolver struct {
	cache     Cache
	ttl       time.Duration
	fallback  decimal.Decimal
	overrides map[string]map[string]decimal.Decimal
	logger    *zap.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithCache replaces the in-memory cache, e.g. with a Redis-backed one.
func WithCache(c Cache) Option {
	return func(r *Resolver) {
		r.cache = c
	}
}

// WithTTL sets how long fetched fees stay cached.
func WithTTL(d time.Duration) Option {
	return func(r *Resolver) {
		r.ttl = d
	}
}

// WithDefault sets the last-resort fee.
func WithDefault(fee decimal.Decimal) Option {
	return func(r *Resolver) {
		r.fallback = fee
	}
}

// WithOverrides pins fees per exchange and asset.
func WithOverrides(o map[string]map[string]decimal.Decimal) Option {
	return func(r *Resolver) {
		r.overrides = o
	}
}

func NewResolver(logger *zap.Logger, opts ...Option) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Resolver{
		cache:    NewMemoryCache(),
		ttl:      defaultTTL,
		fallback: DefaultWithdrawalFee,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// WithdrawalFee returns the fee for withdrawing asset (canonical symbol) from venue.
// It never fails: the Source field tells how trustworthy the value is.
func (r *Resolver) WithdrawalFee(ctx context.Context, venue exchange.Venue, asset string) domain.WithdrawalFee {
	out := domain.WithdrawalFee{Exchange: venue.Name, Asset: asset}

	if fee, ok := r.overrides[venue.Name][asset]; ok {
		out.Amount, out.Source = fee, domain.FeeSourceConfigured
		return out
	}

	res := venue.Pricer.GetWithdrawalFee(ctx, venue.Asset(asset))
	if res.IsOK() {
		if err := r.cache.Set(ctx, venue.Name, asset, res.Value, r.ttl); err != nil {
			r.logger.Warn("failed to cache withdrawal fee", zap.String("exchange", venue.Name), zap.Error(err))
		}
		out.Amount, out.Source = res.Value, domain.FeeSourceExchange
		return out
	}
	r.logger.Debug("withdrawal fee not available from exchange",
		zap.String("exchange", venue.Name),
		zap.String("asset", asset),
		zap.Stringer("state", res.State),
		zap.Error(res.Reason))

	fee, ok, err := r.cache.Get(ctx, venue.Name, asset)
	if err != nil {
		r.logger.Warn("failed to read cached withdrawal fee", zap.String("exchange", venue.Name), zap.Error(err))
	}
	if ok {
		out.Amount, out.Source = fee, domain.FeeSourceCache
		return out
	}

	out.Amount, out.Source = r.fallback, domain.FeeSourceDefault
	return out
}

type memoryEntry struct {
	fee     decimal.Decimal
	expires time.Time
}

// MemoryCache process-local Cache.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry), now: time.Now}
}

func (c *MemoryCache) Get(_ context.Context, exchange, asset string) (decimal.Decimal, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[exchange+":"+asset]
	if !ok || !c.now().Before(e.expires) {
		return decimal.Zero, false, nil
	}
	return e.fee, true, nil
}

func (c *MemoryCache) Set(_ context.Context, exchange, asset string, fee decimal.Decimal, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[exchange+":"+asset] = memoryEntry{fee: fee, expires: c.now().Add(ttl)}
	return nil
}
