package evaluator

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/arbscan/internal/domain"
)

// EvaluateChain runs direct legs back to back: each leg trades the quote returned by the previous one.
// All pairs must share a quote currency. Returns nil when any leg lacks quotes.
func (e *Evaluator) EvaluateChain(ctx context.Context, amount decimal.Decimal, pairs []domain.Pair) (*domain.ChainResult, error) {
	if len(pairs) == 0 {
		return nil, errors.New("chain needs at least one pair")
	}
	for _, p := range pairs[1:] {
		if p.To != pairs[0].To {
			return nil, errors.Errorf("chain pairs must share a quote currency: %s vs %s", pairs[0].String(), p.String())
		}
	}

	res := &domain.ChainResult{Start: amount, Legs: make([]domain.Opportunity, 0, len(pairs))}
	current := amount
	for _, p := range pairs {
		leg, err := e.Evaluate(ctx, current, p)
		if err != nil {
			return nil, errors.Wrapf(err, "chain leg %s", p.String())
		}
		if leg == nil {
			return nil, nil
		}
		res.Legs = append(res.Legs, *leg)
		current = leg.QuoteAfterWithdrawal
		if !current.IsPositive() {
			break
		}
	}

	res.Final = current
	res.NetProfit = res.Final.Sub(res.Start)
	res.NetProfitPct = res.NetProfit.Div(res.Start).Mul(hundred)
	res.Actionable = len(res.Legs) == len(pairs) && res.NetProfit.GreaterThan(e.threshold)

	return res, nil
}
