package pricer

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	hyperliquid "github.com/sonirico/go-hyperliquid"

	"github.com/vadiminshakov/arbscan/internal/domain"
)

// HyperliquidPricer fetches mid prices from Hyperliquid public Info API.
// Mids have no book side, so Bid and Ask stay zero.
type HyperliquidPricer struct {
	info *hyperliquid.Info
}

func NewHyperliquidPricer(info *hyperliquid.Info) *HyperliquidPricer {
	return &HyperliquidPricer{info: info}
}

func (p *HyperliquidPricer) GetPrice(ctx context.Context, pair domain.Pair) domain.Result[domain.Quote] {
	if p.info == nil {
		return domain.Failed[domain.Quote](errors.New("hyperliquid info client is nil"))
	}

	mids, err := p.info.AllMids(ctx)
	if err != nil {
		return domain.Failed[domain.Quote](errors.Wrap(err, "hyperliquid all mids"))
	}

	// mids are keyed by base coin and quoted in USDC
	mid, ok := mids[pair.From]
	if !ok || mid == "" {
		return domain.Unavailable[domain.Quote](fmt.Errorf("hyperliquid API returned empty mid price for %s", pair.From))
	}

	rate, err := decimal.NewFromString(mid)
	if err != nil {
		return domain.Failed[domain.Quote](errors.Wrap(err, "parse hyperliquid mid"))
	}

	return domain.Ok(domain.NewQuote("hyperliquid", rate))
}

func (p *HyperliquidPricer) GetTradingFeeRate(context.Context, domain.Pair) domain.Result[domain.FeeSchedule] {
	return unsupported[domain.FeeSchedule]("hyperliquid", "trade fee")
}

func (p *HyperliquidPricer) GetWithdrawalFee(context.Context, string) domain.Result[decimal.Decimal] {
	return unsupported[decimal.Decimal]("hyperliquid", "withdrawal fee")
}
