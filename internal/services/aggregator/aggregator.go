// Package aggregator collects quotes and fee schedules for a pair from every configured venue.
package aggregator

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vadiminshakov/arbscan/internal/domain"
	"github.com/vadiminshakov/arbscan/internal/exchange"
)

// Aggregator fans out price and fee lookups to venues. A failing venue drops
// out of the result instead of failing the whole call.
type Aggregator struct {
	venues []exchange.Venue
	// configured maker/taker fee percent per venue, used when the venue does not report one.
	configured map[string]decimal.Decimal
	logger     *zap.Logger
}

// New creates an aggregator over venues; configuredFees maps venue name to a fee percent
// used when the venue cannot report its own.
func New(venues []exchange.Venue, configuredFees map[string]decimal.Decimal, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{venues: venues, configured: configuredFees, logger: logger}
}

// Venues returns the venues queried by GetQuotes.
func (a *Aggregator) Venues() []exchange.Venue {
	return a.venues
}

type venueResult struct {
	quote domain.Result[domain.Quote]
	fee   domain.Result[domain.FeeSchedule]
}

// GetQuotes returns eligible quotes sorted by rate, highest first, and a fee schedule for every venue.
// The only error is ctx cancellation.
func (a *Aggregator) GetQuotes(ctx context.Context, pair domain.Pair) (domain.QuoteSet, error) {
	results := make([]venueResult, len(a.venues))

	g := new(errgroup.Group)
	for i, v := range a.venues {
		g.Go(func() error {
			vp := v.Pair(pair)
			results[i] = venueResult{
				quote: v.Pricer.GetPrice(ctx, vp),
				fee:   v.Pricer.GetTradingFeeRate(ctx, vp),
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return domain.QuoteSet{}, err
	}

	set := domain.QuoteSet{
		Pair:  pair,
		Rates: make([]domain.Quote, 0, len(a.venues)),
		Fees:  make(map[string]domain.FeeSchedule, len(a.venues)),
	}
	for i, v := range a.venues {
		r := results[i]

		switch {
		case !r.quote.IsOK():
			a.logQuoteDrop(v.Name, pair, r.quote.State, r.quote.Reason)
		case !r.quote.Value.Eligible():
			a.logger.Debug("dropping non-positive quote",
				zap.String("exchange", v.Name),
				zap.String("pair", pair.String()),
				zap.String("rate", r.quote.Value.Rate.String()))
		default:
			q := r.quote.Value
			q.Exchange = v.Name
			set.Rates = append(set.Rates, q)
		}

		set.Fees[v.Name] = a.feeFor(v.Name, r.fee)
	}
	domain.SortQuotesDesc(set.Rates)

	return set, nil
}

func (a *Aggregator) feeFor(venue string, r domain.Result[domain.FeeSchedule]) domain.FeeSchedule {
	if r.IsOK() {
		f := r.Value
		f.Exchange = venue
		if f.Source == "" {
			f.Source = domain.FeeSourceExchange
		}
		return f
	}

	if pct, ok := a.configured[venue]; ok {
		return domain.FeeSchedule{Exchange: venue, MakerPct: pct, TakerPct: pct, Source: domain.FeeSourceConfigured}
	}

	return domain.FeeSchedule{Exchange: venue, Source: domain.FeeSourceDefault}
}

func (a *Aggregator) logQuoteDrop(venue string, pair domain.Pair, state domain.ResultState, reason error) {
	fields := []zap.Field{
		zap.String("exchange", venue),
		zap.String("pair", pair.String()),
		zap.Stringer("state", state),
		zap.Error(reason),
	}
	if state == domain.StateFailed {
		a.logger.Warn("quote fetch failed", fields...)
		return
	}
	a.logger.Debug("quote unavailable", fields...)
}
