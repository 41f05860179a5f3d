// Package pricer adapts exchange market-data APIs to exchange.Pricer.
// Every method reports through domain.Result instead of coercing failures to zero.
package pricer

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/arbscan/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// feeFromFractions converts venue fee fractions (0.001) to percentages (0.1).
func feeFromFractions(exchange string, maker, taker decimal.Decimal) domain.FeeSchedule {
	return domain.FeeSchedule{
		Exchange: exchange,
		MakerPct: maker.Mul(hundred),
		TakerPct: taker.Mul(hundred),
		Source:   domain.FeeSourceExchange,
	}
}

func unsupported[T any](exchange, what string) domain.Result[T] {
	return domain.Unavailable[T](errors.Wrapf(domain.ErrUnsupported, "%s %s", exchange, what))
}

// splitDashed splits "BASE-QUOTE".
func splitDashed(symbol string) (string, string, error) {
	parts := strings.Split(symbol, "-")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", errors.Errorf("invalid market symbol %q", symbol)
	}
	return parts[0], parts[1], nil
}
