package pricer

import (
	"context"
	"strings"

	"github.com/adshao/go-binance/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/arbscan/internal/domain"
)

// BinancePricer market data from the Binance spot API.
type BinancePricer struct {
	client  *binance.Client
	network string
}

// NewBinancePricer creates a pricer; network selects the withdrawal network used for fee lookups.
func NewBinancePricer(client *binance.Client, network string) *BinancePricer {
	return &BinancePricer{client: client, network: network}
}

func (p *BinancePricer) GetPrice(ctx context.Context, pair domain.Pair) domain.Result[domain.Quote] {
	prices, err := p.client.NewListPricesService().Symbol(pair.Symbol()).Do(ctx)
	if err != nil {
		return domain.Failed[domain.Quote](errors.Wrap(err, "binance list prices"))
	}
	if len(prices) == 0 {
		return domain.Unavailable[domain.Quote](errors.Wrapf(domain.ErrUnavailable, "binance API returned empty prices for %s", pair.String()))
	}

	rate, err := decimal.NewFromString(prices[0].Price)
	if err != nil {
		return domain.Failed[domain.Quote](errors.Wrap(err, "parse binance price"))
	}

	quote := domain.NewQuote("binance", rate)
	if ticker, err := p.bookTicker(ctx, pair.Symbol()); err == nil {
		quote.Bid, quote.Ask = ticker.Bid, ticker.Ask
	}

	return domain.Ok(quote)
}

func (p *BinancePricer) GetTradingFeeRate(ctx context.Context, pair domain.Pair) domain.Result[domain.FeeSchedule] {
	if p.client.APIKey == "" {
		return unsupported[domain.FeeSchedule]("binance", "trade fee without API key")
	}

	fees, err := p.client.NewTradeFeeService().Symbol(pair.Symbol()).Do(ctx)
	if err != nil {
		return domain.Failed[domain.FeeSchedule](errors.Wrap(err, "binance trade fee"))
	}

	for _, f := range fees {
		if f.Symbol != pair.Symbol() {
			continue
		}
		maker, err := decimal.NewFromString(f.MakerCommission)
		if err != nil {
			return domain.Failed[domain.FeeSchedule](errors.Wrap(err, "parse binance maker commission"))
		}
		taker, err := decimal.NewFromString(f.TakerCommission)
		if err != nil {
			return domain.Failed[domain.FeeSchedule](errors.Wrap(err, "parse binance taker commission"))
		}
		return domain.Ok(feeFromFractions("binance", maker, taker))
	}

	return domain.Unavailable[domain.FeeSchedule](errors.Wrapf(domain.ErrUnavailable, "binance trade fee for %s", pair.Symbol()))
}

func (p *BinancePricer) GetWithdrawalFee(ctx context.Context, asset string) domain.Result[decimal.Decimal] {
	if p.client.APIKey == "" {
		return unsupported[decimal.Decimal]("binance", "coin info without API key")
	}

	coins, err := p.client.NewGetAllCoinsInfoService().Do(ctx)
	if err != nil {
		return domain.Failed[decimal.Decimal](errors.Wrap(err, "binance coin info"))
	}

	for _, c := range coins {
		if c.Coin != asset {
			continue
		}
		var fallback string
		for _, n := range c.NetworkList {
			if strings.EqualFold(n.Network, p.network) {
				return domain.ResultOf(decimal.NewFromString(n.WithdrawFee))
			}
			if n.IsDefault {
				fallback = n.WithdrawFee
			}
		}
		if fallback != "" {
			return domain.ResultOf(decimal.NewFromString(fallback))
		}
	}

	return domain.Unavailable[decimal.Decimal](errors.Wrapf(domain.ErrUnavailable, "binance withdraw fee for %s/%s", asset, p.network))
}

// ListMarkets returns trading spot markets as BASE-QUOTE.
func (p *BinancePricer) ListMarkets(ctx context.Context) ([]string, error) {
	info, err := p.client.NewExchangeInfoService().Do(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "binance exchange info")
	}

	markets := make([]string, 0, len(info.Symbols))
	for _, s := range info.Symbols {
		if s.Status != "TRADING" {
			continue
		}
		markets = append(markets, s.BaseAsset+"-"+s.QuoteAsset)
	}

	return markets, nil
}

// GetTicker returns the best bid/ask for a BASE-QUOTE market.
func (p *BinancePricer) GetTicker(ctx context.Context, symbol string) (domain.Ticker, error) {
	base, quote, err := splitDashed(symbol)
	if err != nil {
		return domain.Ticker{}, err
	}

	t, err := p.bookTicker(ctx, base+quote)
	if err != nil {
		return domain.Ticker{}, err
	}
	t.Symbol = symbol

	return t, nil
}

func (p *BinancePricer) bookTicker(ctx context.Context, symbol string) (domain.Ticker, error) {
	tickers, err := p.client.NewListBookTickersService().Symbol(symbol).Do(ctx)
	if err != nil {
		return domain.Ticker{}, errors.Wrap(err, "binance book ticker")
	}
	if len(tickers) == 0 {
		return domain.Ticker{}, errors.Wrapf(domain.ErrUnavailable, "binance API returned empty book ticker for %s", symbol)
	}

	bid, err := decimal.NewFromString(tickers[0].BidPrice)
	if err != nil {
		return domain.Ticker{}, errors.Wrap(err, "parse binance bid")
	}
	ask, err := decimal.NewFromString(tickers[0].AskPrice)
	if err != nil {
		return domain.Ticker{}, errors.Wrap(err, "parse binance ask")
	}

	return domain.Ticker{Symbol: symbol, Bid: bid, Ask: ask}, nil
}
