// Package exchange declares the collaborator contract every venue adapter satisfies.
package exchange

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/arbscan/internal/domain"
)

// Pricer read-only market data.
type Pricer interface {
	GetPrice(ctx context.Context, pair domain.Pair) domain.Result[domain.Quote]
	GetTradingFeeRate(ctx context.Context, pair domain.Pair) domain.Result[domain.FeeSchedule]
	// GetWithdrawalFee returns the flat fee in units of asset.
	GetWithdrawalFee(ctx context.Context, asset string) domain.Result[decimal.Decimal]
}

// Trader account operations.
type Trader interface {
	GetBalance(ctx context.Context, asset string) (domain.Balance, error)
	PlaceSpotOrder(ctx context.Context, req domain.OrderRequest) (domain.OrderResult, error)
	Withdraw(ctx context.Context, req domain.WithdrawRequest) (domain.WithdrawResult, error)
	GetDepositAddress(ctx context.Context, asset, network string) (domain.DepositAddress, error)
}

// MarketLister venues that can enumerate markets and serve top of book; used by the triangular scan.
type MarketLister interface {
	// ListMarkets returns active spot markets as BASE-QUOTE.
	ListMarkets(ctx context.Context) ([]string, error)
	GetTicker(ctx context.Context, symbol string) (domain.Ticker, error)
}

// SymbolMap canonical token symbol to venue listing symbol.
type SymbolMap map[string]string

// Rename returns the venue symbol for token.
func (m SymbolMap) Rename(token string) string {
	if v, ok := m[strings.ToUpper(token)]; ok {
		return v
	}
	return token
}

// DefaultRenames known listing quirks.
func DefaultRenames() map[string]SymbolMap {
	return map[string]SymbolMap{
		"coinex": {
			"TRUMP":    "MAGATRUMP",
			"TRUMPSOL": "TRUMP",
			"TRAC":     "TRACBRC",
			"WOLF":     "WOLFETH",
		},
	}
}

// Venue one configured exchange.
type Venue struct {
	Name    string
	Symbols SymbolMap
	Pricer  Pricer
	// Trader is nil for quote-only venues.
	Trader Trader
}

// Pair maps the canonical pair to the venue's listing.
func (v Venue) Pair(p domain.Pair) domain.Pair {
	return domain.Pair{From: v.Symbols.Rename(p.From), To: v.Symbols.Rename(p.To)}
}

// Asset maps a canonical asset symbol to the venue's listing.
func (v Venue) Asset(asset string) string {
	return v.Symbols.Rename(asset)
}

// Registry venues by name.
type Registry map[string]Venue

// Get returns the named venue.
func (r Registry) Get(name string) (Venue, bool) {
	v, ok := r[name]
	return v, ok
}

// List returns venues in the given order, skipping unknown names.
func (r Registry) List(names []string) []Venue {
	out := make([]Venue, 0, len(names))
	for _, n := range names {
		if v, ok := r[n]; ok {
			out = append(out, v)
		}
	}
	return out
}
