package pricer

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/arbscan/internal/clients"
	"github.com/vadiminshakov/arbscan/internal/domain"
)

// CoinExPricer market data from the CoinEx REST API.
type CoinExPricer struct {
	client  *clients.CoinExClient
	network string
}

func NewCoinExPricer(client *clients.CoinExClient, network string) *CoinExPricer {
	return &CoinExPricer{client: client, network: network}
}

func (p *CoinExPricer) GetPrice(ctx context.Context, pair domain.Pair) domain.Result[domain.Quote] {
	ticker, err := p.client.Ticker(ctx, pair.Symbol())
	if err != nil {
		var apiErr *clients.CoinExAPIError
		if errors.As(err, &apiErr) {
			// unknown market
			return domain.Unavailable[domain.Quote](err)
		}
		return domain.Failed[domain.Quote](err)
	}

	quote := domain.NewQuote("coinex", ticker.Last)
	quote.Bid, quote.Ask = ticker.Buy, ticker.Sell

	return domain.Ok(quote)
}

func (p *CoinExPricer) GetTradingFeeRate(ctx context.Context, pair domain.Pair) domain.Result[domain.FeeSchedule] {
	rate, err := p.client.TradeFeeRate(ctx, pair.Symbol())
	if err != nil {
		return domain.Failed[domain.FeeSchedule](err)
	}
	return domain.Ok(feeFromFractions("coinex", rate.MakerRate, rate.TakerRate))
}

// GetWithdrawalFee looks up ASSET-NETWORK first, then ASSET.
func (p *CoinExPricer) GetWithdrawalFee(ctx context.Context, asset string) domain.Result[decimal.Decimal] {
	configs, err := p.client.AssetConfig(ctx)
	if err != nil {
		return domain.Failed[decimal.Decimal](err)
	}

	asset = strings.ToUpper(asset)
	keys := []string{asset}
	if p.network != "" {
		keys = []string{asset + "-" + strings.ToUpper(p.network), asset}
	}

	for _, k := range keys {
		if cfg, ok := configs[k]; ok {
			return domain.Ok(cfg.WithdrawTxFee)
		}
	}

	return domain.Unavailable[decimal.Decimal](errors.Wrapf(domain.ErrUnavailable, "coinex asset %s not listed", asset))
}
