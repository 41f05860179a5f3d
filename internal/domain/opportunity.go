package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Opportunity evaluated buy/sell pairing for a notional amount.
type Opportunity struct {
	Pair Pair

	BuyExchange  string
	SellExchange string
	BuyPrice     decimal.Decimal
	SellPrice    decimal.Decimal

	BuyFee            FeeSchedule
	SellFee           FeeSchedule
	BuyWithdrawalFee  WithdrawalFee
	SellWithdrawalFee WithdrawalFee

	// TradingAmount input notional in quote currency.
	TradingAmount decimal.Decimal
	// TokensBought base tokens received after the buy fee.
	TokensBought decimal.Decimal
	// TokensAfterWithdrawal base tokens landing on the sell exchange.
	TokensAfterWithdrawal decimal.Decimal
	// QuoteAtSell quote received after selling and paying the sell fee.
	QuoteAtSell decimal.Decimal
	// QuoteAfterWithdrawal quote returned to the buy exchange.
	QuoteAfterWithdrawal decimal.Decimal

	NetProfit    decimal.Decimal
	NetProfitPct decimal.Decimal
	Actionable   bool
}

// String returns a human-readable summary.
func (o *Opportunity) String() string {
	return fmt.Sprintf("%s buy %s@%s sell %s@%s profit %s %s (%s%%)",
		o.Pair.String(),
		o.BuyExchange, o.BuyPrice.String(),
		o.SellExchange, o.SellPrice.String(),
		o.NetProfit.StringFixed(4), o.Pair.To, o.NetProfitPct.StringFixed(4))
}

// ChainResult several direct legs where each leg's quote proceeds fund the next leg.
type ChainResult struct {
	Legs         []Opportunity
	Start        decimal.Decimal
	Final        decimal.Decimal
	NetProfit    decimal.Decimal
	NetProfitPct decimal.Decimal
	Actionable   bool
}
