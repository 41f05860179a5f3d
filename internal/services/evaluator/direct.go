package evaluator

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vadiminshakov/arbscan/internal/domain"
)

// ComputeDirect runs the fee accounting for buying with amount quote on buy and selling on sell:
// buy fee, base withdrawal fee, sell fee (applied after the price), quote withdrawal fee.
// Withdrawal fees are absolute, buyWithdraw in base units and sellWithdraw in quote units.
func ComputeDirect(
	amount decimal.Decimal,
	buy, sell domain.Quote,
	buyFee, sellFee domain.FeeSchedule,
	buyWithdraw, sellWithdraw decimal.Decimal,
) domain.Opportunity {
	one := decimal.NewFromInt(1)
	opp := domain.Opportunity{
		BuyExchange:   buy.Exchange,
		SellExchange:  sell.Exchange,
		BuyPrice:      buy.Rate,
		SellPrice:     sell.Rate,
		BuyFee:        buyFee,
		SellFee:       sellFee,
		TradingAmount: amount,
	}
	if !buy.Rate.IsPositive() || !amount.IsPositive() {
		return opp
	}

	opp.TokensBought = amount.Mul(one.Sub(buyFee.MakerPct.Div(hundred))).Div(buy.Rate)
	opp.TokensAfterWithdrawal = opp.TokensBought.Sub(buyWithdraw)
	opp.QuoteAtSell = opp.TokensAfterWithdrawal.Mul(sell.Rate).Mul(one.Sub(sellFee.MakerPct.Div(hundred)))
	opp.QuoteAfterWithdrawal = opp.QuoteAtSell.Sub(sellWithdraw)
	opp.NetProfit = opp.QuoteAfterWithdrawal.Sub(amount)
	opp.NetProfitPct = opp.NetProfit.Div(amount).Mul(hundred)

	return opp
}

// Evaluate prices a direct buy-low/sell-high round trip of amount quote on pair.
// It returns nil without error when fewer than two venues quote the pair.
func (e *Evaluator) Evaluate(ctx context.Context, amount decimal.Decimal, pair domain.Pair) (*domain.Opportunity, error) {
	if !amount.IsPositive() {
		return nil, errors.Errorf("trading amount must be positive, got %s", amount.String())
	}

	set, err := e.quotes.GetQuotes(ctx, pair)
	if err != nil {
		return nil, errors.Wrapf(err, "get quotes for %s", pair.String())
	}
	if len(set.Rates) < 2 {
		e.logger.Debug("not enough quotes",
			zap.String("pair", pair.String()),
			zap.Int("quotes", len(set.Rates)),
			zap.Error(domain.ErrInsufficientQuotes))
		return nil, nil
	}

	sell, _ := set.Highest()
	buy, _ := set.Lowest()

	buyVenue, ok := e.venues.Get(buy.Exchange)
	if !ok {
		return nil, errors.Errorf("unknown venue %s", buy.Exchange)
	}
	sellVenue, ok := e.venues.Get(sell.Exchange)
	if !ok {
		return nil, errors.Errorf("unknown venue %s", sell.Exchange)
	}

	buyWithdraw := e.fees.WithdrawalFee(ctx, buyVenue, pair.From)
	sellWithdraw := e.fees.WithdrawalFee(ctx, sellVenue, pair.To)

	opp := ComputeDirect(amount, buy, sell, set.Fee(buy.Exchange), set.Fee(sell.Exchange), buyWithdraw.Amount, sellWithdraw.Amount)
	opp.Pair = pair
	opp.BuyWithdrawalFee = buyWithdraw
	opp.SellWithdrawalFee = sellWithdraw
	opp.Actionable = opp.NetProfit.GreaterThan(e.threshold)

	e.logger.Debug("evaluated direct opportunity",
		zap.String("pair", pair.String()),
		zap.String("buy", buy.String()),
		zap.String("sell", sell.String()),
		zap.String("net_profit", opp.NetProfit.StringFixed(4)),
		zap.Bool("actionable", opp.Actionable))

	return &opp, nil
}
