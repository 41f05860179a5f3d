package pricer

import (
	"context"
	"fmt"

	"github.com/hirokisan/bybit/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/arbscan/internal/domain"
)

type BybitPricer struct {
	client *bybit.Client
}

func NewBybitPricer(client *bybit.Client) *BybitPricer {
	return &BybitPricer{client: client}
}

func (p *BybitPricer) GetPrice(_ context.Context, pair domain.Pair) domain.Result[domain.Quote] {
	symbol := bybit.SymbolV5(pair.Symbol())

	result, err := p.client.V5().Market().GetTickers(bybit.V5GetTickersParam{
		Category: "spot",
		Symbol:   &symbol,
	})
	if err != nil {
		return domain.Failed[domain.Quote](errors.Wrap(err, "bybit tickers"))
	}

	if len(result.Result.Spot.List) == 0 {
		return domain.Unavailable[domain.Quote](fmt.Errorf("bybit API returned empty prices for %s", pair.String()))
	}

	item := result.Result.Spot.List[0]
	rate, err := decimal.NewFromString(item.LastPrice)
	if err != nil {
		return domain.Failed[domain.Quote](errors.Wrap(err, "parse bybit last price"))
	}

	quote := domain.NewQuote("bybit", rate)
	quote.Bid, _ = decimal.NewFromString(item.Bid1Price)
	quote.Ask, _ = decimal.NewFromString(item.Ask1Price)

	return domain.Ok(quote)
}

// GetTradingFeeRate is not exposed through the client; configured fees apply.
func (p *BybitPricer) GetTradingFeeRate(context.Context, domain.Pair) domain.Result[domain.FeeSchedule] {
	return unsupported[domain.FeeSchedule]("bybit", "trade fee")
}

func (p *BybitPricer) GetWithdrawalFee(context.Context, string) domain.Result[decimal.Decimal] {
	return unsupported[decimal.Decimal]("bybit", "withdrawal fee")
}
