package pricer

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/arbscan/internal/clients"
	"github.com/vadiminshakov/arbscan/internal/domain"
)

// BTSEPricer market data from the BTSE spot API. Markets are addressed as BASE-QUOTE.
type BTSEPricer struct {
	client *clients.BTSEClient
}

func NewBTSEPricer(client *clients.BTSEClient) *BTSEPricer {
	return &BTSEPricer{client: client}
}

func (p *BTSEPricer) GetPrice(ctx context.Context, pair domain.Pair) domain.Result[domain.Quote] {
	price, err := p.client.Price(ctx, pair.Dashed())
	if err != nil {
		return domain.Failed[domain.Quote](err)
	}
	if !price.LastPrice.IsPositive() {
		return domain.Unavailable[domain.Quote](errors.Wrapf(domain.ErrUnavailable, "btse has no last price for %s", pair.Dashed()))
	}

	quote := domain.NewQuote("btse", price.LastPrice)
	if t, err := p.GetTicker(ctx, pair.Dashed()); err == nil {
		quote.Bid, quote.Ask = t.Bid, t.Ask
	}

	return domain.Ok(quote)
}

func (p *BTSEPricer) GetTradingFeeRate(ctx context.Context, pair domain.Pair) domain.Result[domain.FeeSchedule] {
	fee, err := p.client.Fees(ctx, pair.Dashed())
	if err != nil {
		return domain.Failed[domain.FeeSchedule](err)
	}
	return domain.Ok(feeFromFractions("btse", fee.MakerFee, fee.TakerFee))
}

// GetWithdrawalFee has no public endpoint; the resolver default applies.
func (p *BTSEPricer) GetWithdrawalFee(context.Context, string) domain.Result[decimal.Decimal] {
	return unsupported[decimal.Decimal]("btse", "withdrawal fee")
}

// ListMarkets returns active markets.
func (p *BTSEPricer) ListMarkets(ctx context.Context) ([]string, error) {
	markets, err := p.client.MarketSummary(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(markets))
	for _, m := range markets {
		if !m.Active {
			continue
		}
		out = append(out, m.Symbol)
	}

	return out, nil
}

// GetTicker returns the top of the order book.
func (p *BTSEPricer) GetTicker(ctx context.Context, symbol string) (domain.Ticker, error) {
	book, err := p.client.OrderBook(ctx, symbol)
	if err != nil {
		return domain.Ticker{}, err
	}
	if len(book.BuyQuote) == 0 || len(book.SellQuote) == 0 {
		return domain.Ticker{}, errors.Wrapf(domain.ErrUnavailable, "no order book data for %s", symbol)
	}

	return domain.Ticker{
		Symbol: symbol,
		Bid:    book.BuyQuote[0].Price,
		Ask:    book.SellQuote[0].Price,
	}, nil
}
