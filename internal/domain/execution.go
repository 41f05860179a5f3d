package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Step executor pipeline state.
type Step string

const (
	StepPlaceBuyOrder      Step = "PLACE_BUY_ORDER"
	StepCheckBuyResult     Step = "CHECK_BUY_RESULT"
	StepFetchDestAddress   Step = "FETCH_DEST_WALLET_ADDRESS"
	StepWithdrawToSell     Step = "WITHDRAW_TO_SELL_EXCHANGE"
	StepPollSettlement     Step = "POLL_FOR_BALANCE_SETTLEMENT"
	StepPlaceSellOrder     Step = "PLACE_SELL_ORDER"
	StepCheckSellResult    Step = "CHECK_SELL_RESULT"
	StepFetchReturnAddress Step = "FETCH_RETURN_WALLET_ADDRESS"
	StepWithdrawBack       Step = "WITHDRAW_BACK"
	StepDone               Step = "DONE"
)

// Steps pipeline order.
var Steps = []Step{
	StepPlaceBuyOrder,
	StepCheckBuyResult,
	StepFetchDestAddress,
	StepWithdrawToSell,
	StepPollSettlement,
	StepPlaceSellOrder,
	StepCheckSellResult,
	StepFetchReturnAddress,
	StepWithdrawBack,
	StepDone,
}

// ExecutionStatus overall state of an execution.
type ExecutionStatus string

const (
	ExecutionRunning ExecutionStatus = "running"
	ExecutionDone    ExecutionStatus = "done"
	// ExecutionHalted an order or withdrawal was rejected.
	ExecutionHalted ExecutionStatus = "halted"
	// ExecutionStuck withdrawn funds never settled; needs manual intervention.
	ExecutionStuck ExecutionStatus = "stuck"
)

// Terminal reports whether no further step will run.
func (s ExecutionStatus) Terminal() bool {
	return s != ExecutionRunning
}

// Execution journaled progress of one arbitrage run.
type Execution struct {
	ID           string          `json:"id"`
	Pair         string          `json:"pair"`
	BuyExchange  string          `json:"buy_exchange"`
	SellExchange string          `json:"sell_exchange"`
	Amount       decimal.Decimal `json:"amount"`
	Step         Step            `json:"step"`
	Status       ExecutionStatus `json:"status"`
	Error        string          `json:"error,omitempty"`

	BuyOrderID   string          `json:"buy_order_id,omitempty"`
	BoughtAmount decimal.Decimal `json:"bought_amount"`
	WithdrawID   string          `json:"withdraw_id,omitempty"`
	SoldQuote    decimal.Decimal `json:"sold_quote"`
	SellOrderID  string          `json:"sell_order_id,omitempty"`
	ReturnID     string          `json:"return_id,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

// ExecutionResult final outcome returned by the executor.
type ExecutionResult struct {
	Execution Execution
	// Settled base amount that arrived on the sell exchange.
	Settled decimal.Decimal
	// Returned quote amount withdrawn back to the buy exchange.
	Returned decimal.Decimal
}
