package evaluator

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vadiminshakov/arbscan/internal/domain"
	"github.com/vadiminshakov/arbscan/internal/exchange"
)

func splitMarket(symbol string) (base, quote string, ok bool) {
	base, quote, ok = strings.Cut(symbol, "-")
	if !ok || base == "" || quote == "" || strings.Contains(quote, "-") {
		return "", "", false
	}
	return base, quote, true
}

// GenerateRoutes lists base → A → B → base cycles over BASE-QUOTE market symbols:
// A-base, then A-B, then B-base.
func GenerateRoutes(markets []string, base string) []domain.TriangleRoute {
	type market struct{ symbol, base, quote string }

	parsed := make([]market, 0, len(markets))
	byBase := make(map[string][]market)
	for _, s := range markets {
		b, q, ok := splitMarket(s)
		if !ok {
			continue
		}
		m := market{symbol: s, base: b, quote: q}
		parsed = append(parsed, m)
		byBase[b] = append(byBase[b], m)
	}

	var routes []domain.TriangleRoute
	for _, first := range parsed {
		if first.quote != base {
			continue
		}
		for _, bridge := range byBase[first.base] {
			if bridge.quote == base {
				continue
			}
			for _, last := range byBase[bridge.quote] {
				if last.quote != base {
					continue
				}
				routes = append(routes, domain.TriangleRoute{
					{Pair: first.symbol, Base: first.base, Quote: first.quote},
					{Pair: bridge.symbol, Base: bridge.base, Quote: bridge.quote},
					{Pair: last.symbol, Base: last.base, Quote: last.quote},
				})
			}
		}
	}

	return routes
}

// SimulateRoute returns the amount of base after start / ask1 / ask2 × bid3.
// No trading or withdrawal fees are taken.
func SimulateRoute(start decimal.Decimal, books [3]domain.Ticker) (decimal.Decimal, error) {
	for i, b := range books[:2] {
		if !b.Ask.IsPositive() {
			return decimal.Zero, errors.Wrapf(domain.ErrUnavailable, "no ask on leg %d (%s)", i+1, b.Symbol)
		}
	}
	if !books[2].Bid.IsPositive() {
		return decimal.Zero, errors.Wrapf(domain.ErrUnavailable, "no bid on leg 3 (%s)", books[2].Symbol)
	}

	return start.Div(books[0].Ask).Div(books[1].Ask).Mul(books[2].Bid), nil
}

// EvaluateTriangular finds the most profitable cycle on one venue, then checks that every leg's
// top of book is moving. Returns nil when the venue has no cycles with full books.
func (e *Evaluator) EvaluateTriangular(ctx context.Context, venueName string) (*domain.TriangleResult, error) {
	venue, ok := e.venues.Get(venueName)
	if !ok {
		return nil, errors.Errorf("unknown venue %s", venueName)
	}
	lister, ok := venue.Pricer.(exchange.MarketLister)
	if !ok {
		return nil, errors.Wrapf(domain.ErrUnsupported, "%s cannot list markets", venueName)
	}

	markets, err := lister.ListMarkets(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "list %s markets", venueName)
	}
	routes := GenerateRoutes(markets, e.triangular.Base)
	e.logger.Info("triangular routes generated",
		zap.String("exchange", venueName),
		zap.Int("markets", len(markets)),
		zap.Int("routes", len(routes)))
	if len(routes) == 0 {
		return nil, nil
	}

	books, err := e.fetchTickers(ctx, lister, routeSymbols(routes))
	if err != nil {
		return nil, err
	}

	var best *domain.TriangleResult
	for _, r := range routes {
		legs, ok := routeBooks(r, books)
		if !ok {
			continue
		}
		final, err := SimulateRoute(e.triangular.Start, legs)
		if err != nil {
			continue
		}
		profit := final.Sub(e.triangular.Start)
		if best == nil || profit.GreaterThan(best.Profit) {
			best = &domain.TriangleResult{
				Exchange: venueName,
				Route:    r,
				Start:    e.triangular.Start,
				Final:    final,
				Profit:   profit,
			}
		}
	}
	if best == nil {
		return nil, nil
	}
	if !best.Profit.IsPositive() {
		return best, nil
	}

	velocities, err := e.measureVelocity(ctx, lister, best.Route)
	if err != nil {
		return nil, err
	}
	best.Velocities = velocities
	best.Feasible = true
	for _, v := range velocities {
		if v.LessThan(e.triangular.VelocityThreshold) {
			best.Feasible = false
		}
	}

	e.logger.Info("best triangular route",
		zap.String("exchange", venueName),
		zap.Stringer("route", best.Route),
		zap.String("profit", best.Profit.StringFixed(6)),
		zap.Bool("feasible", best.Feasible))

	return best, nil
}

func routeSymbols(routes []domain.TriangleRoute) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range routes {
		for _, leg := range r {
			if _, ok := seen[leg.Pair]; ok {
				continue
			}
			seen[leg.Pair] = struct{}{}
			out = append(out, leg.Pair)
		}
	}
	return out
}

func routeBooks(r domain.TriangleRoute, books map[string]domain.Ticker) ([3]domain.Ticker, bool) {
	var legs [3]domain.Ticker
	for i, leg := range r {
		b, ok := books[leg.Pair]
		if !ok {
			return legs, false
		}
		legs[i] = b
	}
	return legs, true
}

// fetchTickers loads top of book for symbols; symbols whose fetch fails are left out.
func (e *Evaluator) fetchTickers(ctx context.Context, lister exchange.MarketLister, symbols []string) (map[string]domain.Ticker, error) {
	var mu sync.Mutex
	books := make(map[string]domain.Ticker, len(symbols))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.triangular.Concurrency)
	for _, s := range symbols {
		g.Go(func() error {
			t, err := lister.GetTicker(gctx, s)
			if err != nil {
				e.logger.Debug("ticker unavailable", zap.String("symbol", s), zap.Error(err))
				return nil
			}
			mu.Lock()
			books[s] = t
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return books, nil
}

// measureVelocity samples each leg twice, VelocityDelay apart, and returns |Δbid|+|Δask| per leg.
// A leg whose sample fails gets velocity zero, which marks the route infeasible.
// Only cancellation is returned as an error.
func (e *Evaluator) measureVelocity(ctx context.Context, lister exchange.MarketLister, r domain.TriangleRoute) ([3]decimal.Decimal, error) {
	var out [3]decimal.Decimal

	before, okBefore := e.sampleLegs(ctx, lister, r)
	if err := ctx.Err(); err != nil {
		return out, err
	}

	timer := time.NewTimer(e.triangular.VelocityDelay)
	select {
	case <-ctx.Done():
		timer.Stop()
		return out, ctx.Err()
	case <-timer.C:
	}

	after, okAfter := e.sampleLegs(ctx, lister, r)
	if err := ctx.Err(); err != nil {
		return out, err
	}

	for i := range out {
		if !okBefore[i] || !okAfter[i] {
			out[i] = decimal.Zero
			continue
		}
		out[i] = after[i].Bid.Sub(before[i].Bid).Abs().Add(after[i].Ask.Sub(before[i].Ask).Abs())
	}
	return out, nil
}

// sampleLegs fetches the three books concurrently; ok[i] is false when leg i failed.
func (e *Evaluator) sampleLegs(ctx context.Context, lister exchange.MarketLister, r domain.TriangleRoute) (books [3]domain.Ticker, ok [3]bool) {
	var g errgroup.Group
	for i, leg := range r {
		g.Go(func() error {
			t, err := lister.GetTicker(ctx, leg.Pair)
			if err != nil {
				e.logger.Debug("velocity sample failed", zap.String("symbol", leg.Pair), zap.Error(err))
				return nil
			}
			books[i], ok[i] = t, true
			return nil
		})
	}
	_ = g.Wait()
	return books, ok
}
