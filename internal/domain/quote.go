package domain

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Quote price observation for a pair on one exchange.
type Quote struct {
	// Exchange venue name.
	Exchange string
	// Rate last traded (or mid) price in quote currency.
	Rate decimal.Decimal
	// ReservePrice inverse of Rate.
	ReservePrice decimal.Decimal
	// Bid best bid, zero when the venue reports only a last price.
	Bid decimal.Decimal
	// Ask best ask, zero when the venue reports only a last price.
	Ask decimal.Decimal
}

// NewQuote builds a quote and derives the reserve price.
func NewQuote(exchange string, rate decimal.Decimal) Quote {
	q := Quote{Exchange: exchange, Rate: rate}
	if rate.IsPositive() {
		q.ReservePrice = decimal.NewFromInt(1).Div(rate)
	}
	return q
}

// Eligible reports whether the quote may take part in ranking.
func (q Quote) Eligible() bool {
	return q.Rate.IsPositive()
}

func (q Quote) String() string {
	return fmt.Sprintf("%s@%s", q.Exchange, q.Rate.String())
}

// SortQuotesDesc sorts by rate, highest first. Equal rates keep their input order.
func SortQuotesDesc(quotes []Quote) {
	sort.SliceStable(quotes, func(i, j int) bool {
		return quotes[i].Rate.GreaterThan(quotes[j].Rate)
	})
}

// Ticker top of book for a market symbol.
type Ticker struct {
	Symbol string
	Bid    decimal.Decimal
	Ask    decimal.Decimal
}

// FeeSource tells where a fee value came from.
type FeeSource string

const (
	FeeSourceExchange   FeeSource = "exchange"
	FeeSourceConfigured FeeSource = "configured"
	FeeSourceCache      FeeSource = "cache"
	FeeSourceDefault    FeeSource = "default"
)

// FeeSchedule maker/taker percentages for a pair on one exchange.
type FeeSchedule struct {
	Exchange string
	// MakerPct maker fee in percent, 0.2 means 0.2%.
	MakerPct decimal.Decimal
	// TakerPct taker fee in percent.
	TakerPct decimal.Decimal
	Source   FeeSource
}

// WithdrawalFee flat withdrawal fee for an asset on one exchange, in units of the asset.
type WithdrawalFee struct {
	Exchange string
	Asset    string
	Amount   decimal.Decimal
	Source   FeeSource
}

// QuoteSet aggregated quotes for one pair.
type QuoteSet struct {
	Pair Pair
	// Rates eligible quotes sorted descending by rate.
	Rates []Quote
	// Fees fee schedules keyed by exchange.
	Fees map[string]FeeSchedule
}

// Fee returns the schedule for exchange, or a zero schedule marked as defaulted.
func (s QuoteSet) Fee(exchange string) FeeSchedule {
	if f, ok := s.Fees[exchange]; ok {
		return f
	}
	return FeeSchedule{Exchange: exchange, Source: FeeSourceDefault}
}

// Highest returns the sell-side quote.
func (s QuoteSet) Highest() (Quote, bool) {
	if len(s.Rates) == 0 {
		return Quote{}, false
	}
	return s.Rates[0], true
}

// Lowest returns the buy-side quote.
func (s QuoteSet) Lowest() (Quote, bool) {
	if len(s.Rates) == 0 {
		return Quote{}, false
	}
	return s.Rates[len(s.Rates)-1], true
}
