// Package evaluator turns aggregated quotes into net-of-fees arbitrage estimates.
package evaluator

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vadiminshakov/arbscan/internal/domain"
	"github.com/vadiminshakov/arbscan/internal/exchange"
)

var hundred = decimal.NewFromInt(100)

// QuoteSource aggregated quotes for a pair.
type QuoteSource interface {
	GetQuotes(ctx context.Context, pair domain.Pair) (domain.QuoteSet, error)
}

// WithdrawalFees resolves withdrawal fees; it always returns a value.
type WithdrawalFees interface {
	WithdrawalFee(ctx context.Context, venue exchange.Venue, asset string) domain.WithdrawalFee
}

// TriangularConfig parameters of the same-exchange cycle scan.
type TriangularConfig struct {
	// Base currency every route starts and ends in.
	Base string
	// Start notional in Base.
	Start decimal.Decimal
	// VelocityDelay time between the two top-of-book samples.
	VelocityDelay time.Duration
	// VelocityThreshold minimum |Δbid|+|Δask| per leg.
	VelocityThreshold decimal.Decimal
	// Concurrency max parallel ticker requests.
	Concurrency int
}

// DefaultTriangularConfig returns the stock triangular settings.
func DefaultTriangularConfig() TriangularConfig {
	return TriangularConfig{
		Base:              "USDT",
		Start:             decimal.NewFromInt(50),
		VelocityDelay:     5 * time.Second,
		VelocityThreshold: decimal.RequireFromString("0.0005"),
		Concurrency:       8,
	}
}

// Evaluator computes opportunities for the direct, chain and triangular variants.
type Evaluator struct {
	quotes     QuoteSource
	fees       WithdrawalFees
	venues     exchange.Registry
	threshold  decimal.Decimal
	triangular TriangularConfig
	logger     *zap.Logger
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithThreshold sets the absolute profit, in quote units, an opportunity must exceed.
func WithThreshold(t decimal.Decimal) Option {
	return func(e *Evaluator) {
		e.threshold = t
	}
}

// WithTriangular overrides the triangular scan settings.
func WithTriangular(cfg TriangularConfig) Option {
	return func(e *Evaluator) {
		e.triangular = cfg
	}
}

// New creates an evaluator over quotes; opts override the threshold and triangular settings.
func New(quotes QuoteSource, fees WithdrawalFees, venues exchange.Registry, logger *zap.Logger, opts ...Option) *Evaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Evaluator{
		quotes:     quotes,
		fees:       fees,
		venues:     venues,
		triangular: DefaultTriangularConfig(),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.triangular.Concurrency < 1 {
		e.triangular.Concurrency = 1
	}
	return e
}

// Threshold returns the configured profit threshold.
func (e *Evaluator) Threshold() decimal.Decimal {
	return e.threshold
}
