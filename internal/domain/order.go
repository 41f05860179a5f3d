package domain

import (
	"github.com/shopspring/decimal"
)

// Side order direction.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// OrderRequest spot market order. Buys spend Notional quote, sells spend Size base.
type OrderRequest struct {
	Pair          Pair
	Side          Side
	Size          decimal.Decimal
	Notional      decimal.Decimal
	ClientOrderID string
}

// OrderResult outcome reported by the venue.
type OrderResult struct {
	Success bool
	OrderID string
	// FilledAmount base quantity executed.
	FilledAmount decimal.Decimal
	// FilledQuote quote quantity executed.
	FilledQuote decimal.Decimal
	Fee         decimal.Decimal
	Message     string
}

// WithdrawRequest on-chain withdrawal.
type WithdrawRequest struct {
	Asset   string
	Amount  decimal.Decimal
	Address string
	Network string
}

// WithdrawResult outcome of a withdrawal request.
type WithdrawResult struct {
	Success      bool
	ID           string
	ActualAmount decimal.Decimal
	TxFee        decimal.Decimal
	Message      string
}

// Balance spot balance of one asset.
type Balance struct {
	Asset  string
	Free   decimal.Decimal
	Locked decimal.Decimal
}

// DepositAddress where an exchange accepts deposits of an asset.
type DepositAddress struct {
	Asset   string
	Network string
	Address string
	Memo    string
}
