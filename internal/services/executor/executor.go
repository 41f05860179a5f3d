// Package executor drives a direct opportunity through buy, transfer, sell and transfer back.
package executor

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vadiminshakov/arbscan/internal/domain"
	"github.com/vadiminshakov/arbscan/internal/exchange"
	"github.com/vadiminshakov/arbscan/pkg/retrier"
)

const (
	DefaultPollInterval      = 3 * time.Second
	DefaultSettlementTimeout = 30 * time.Minute
	DefaultNetwork           = "ERC20"
)

var errNotSettled = errors.New("funds not settled yet")

// Journal stores execution snapshots.
type Journal interface {
	Save(exec domain.Execution) error
}

// Config executor timing and transfer networks.
type Config struct {
	PollInterval      time.Duration
	SettlementTimeout time.Duration
	// Network used for transfers unless Networks names one for the asset.
	Network  string
	Networks map[string]string
}

func (c Config) withDefaults() Config {
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.SettlementTimeout <= 0 {
		c.SettlementTimeout = DefaultSettlementTimeout
	}
	if c.Network == "" {
		c.Network = DefaultNetwork
	}
	return c
}

func (c Config) network(asset string) string {
	if n, ok := c.Networks[asset]; ok {
		return n
	}
	return c.Network
}

// Executor runs one execution at a time; it holds no state between runs.
type Executor struct {
	venues  exchange.Registry
	journal Journal
	cfg     Config
	logger  *zap.Logger
}

// New creates an executor that trades on the registry venues and records every step in journal.
func New(venues exchange.Registry, journal Journal, cfg Config, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{venues: venues, journal: journal, cfg: cfg.withDefaults(), logger: logger}
}

// run state shared by the steps of one execution.
type run struct {
	opp      *domain.Opportunity
	buy      exchange.Venue
	sell     exchange.Venue
	exec     domain.Execution
	baseline decimal.Decimal
	address  domain.DepositAddress
	result   domain.ExecutionResult
	logger   *zap.Logger
}

// Execute runs the pipeline for opp. On failure the returned result carries the
// halted or stuck execution alongside the error.
func (x *Executor) Execute(ctx context.Context, opp *domain.Opportunity) (*domain.ExecutionResult, error) {
	if opp == nil {
		return nil, errors.New("nil opportunity")
	}
	buy, err := x.tradingVenue(opp.BuyExchange)
	if err != nil {
		return nil, err
	}
	sell, err := x.tradingVenue(opp.SellExchange)
	if err != nil {
		return nil, err
	}

	r := &run{
		opp:  opp,
		buy:  buy,
		sell: sell,
		exec: domain.Execution{
			ID:           uuid.NewString(),
			Pair:         opp.Pair.String(),
			BuyExchange:  buy.Name,
			SellExchange: sell.Name,
			Amount:       opp.TradingAmount,
			Status:       domain.ExecutionRunning,
		},
	}
	r.logger = x.logger.With(zap.String("execution", r.exec.ID), zap.String("pair", r.exec.Pair))

	steps := []struct {
		step domain.Step
		fn   func(context.Context, *run) error
	}{
		{domain.StepPlaceBuyOrder, x.placeBuy},
		{domain.StepCheckBuyResult, nil},
		{domain.StepFetchDestAddress, x.fetchDestAddress},
		{domain.StepWithdrawToSell, x.withdrawToSell},
		{domain.StepPollSettlement, x.pollSettlement},
		{domain.StepPlaceSellOrder, x.placeSell},
		{domain.StepCheckSellResult, nil},
		{domain.StepFetchReturnAddress, x.fetchReturnAddress},
		{domain.StepWithdrawBack, x.withdrawBack},
	}

	for _, s := range steps {
		if s.fn == nil {
			continue
		}
		x.transition(r, s.step, domain.ExecutionRunning, nil)
		if err := s.fn(ctx, r); err != nil {
			status := domain.ExecutionHalted
			if s.step == domain.StepPollSettlement {
				status = domain.ExecutionStuck
			}
			x.transition(r, r.exec.Step, status, err)
			r.result.Execution = r.exec
			return &r.result, err
		}
	}

	x.transition(r, domain.StepDone, domain.ExecutionDone, nil)
	r.result.Execution = r.exec
	return &r.result, nil
}

func (x *Executor) tradingVenue(name string) (exchange.Venue, error) {
	v, ok := x.venues.Get(name)
	if !ok {
		return exchange.Venue{}, errors.Errorf("unknown venue %s", name)
	}
	if v.Trader == nil {
		return exchange.Venue{}, errors.Wrapf(domain.ErrUnsupported, "venue %s has no trader", name)
	}
	return v, nil
}

func (x *Executor) transition(r *run, step domain.Step, status domain.ExecutionStatus, cause error) {
	r.exec.Step = step
	r.exec.Status = status
	if cause != nil {
		r.exec.Error = cause.Error()
	}

	fields := []zap.Field{zap.String("step", string(step)), zap.String("status", string(status))}
	switch {
	case cause != nil:
		r.logger.Error("execution stopped", append(fields, zap.Error(cause))...)
	default:
		r.logger.Info("execution step", fields...)
	}

	if x.journal == nil {
		return
	}
	if err := x.journal.Save(r.exec); err != nil {
		r.logger.Error("failed to journal execution", zap.Error(err))
	}
}

func (x *Executor) placeBuy(ctx context.Context, r *run) error {
	res, err := r.buy.Trader.PlaceSpotOrder(ctx, domain.OrderRequest{
		Pair:          r.buy.Pair(r.opp.Pair),
		Side:          domain.SideBuy,
		Size:          r.opp.TokensBought,
		Notional:      r.opp.TradingAmount,
		ClientOrderID: uuid.NewString(),
	})
	if err != nil {
		return errors.Wrapf(err, "place buy on %s", r.buy.Name)
	}

	x.transition(r, domain.StepCheckBuyResult, domain.ExecutionRunning, nil)
	if !res.Success {
		return errors.Wrapf(domain.ErrOrderRejected, "buy on %s: %s", r.buy.Name, res.Message)
	}
	r.exec.BuyOrderID = res.OrderID
	r.exec.BoughtAmount = res.FilledAmount
	return nil
}

// fetchDestAddress also records the sell-side base balance that settlement is measured against.
func (x *Executor) fetchDestAddress(ctx context.Context, r *run) error {
	asset := r.sell.Asset(r.opp.Pair.From)
	addr, err := r.sell.Trader.GetDepositAddress(ctx, asset, x.cfg.network(r.opp.Pair.From))
	if err != nil {
		return errors.Wrapf(err, "deposit address on %s", r.sell.Name)
	}
	bal, err := r.sell.Trader.GetBalance(ctx, asset)
	if err != nil {
		return errors.Wrapf(err, "baseline balance on %s", r.sell.Name)
	}
	r.address = addr
	r.baseline = bal.Free
	return nil
}

func (x *Executor) withdrawToSell(ctx context.Context, r *run) error {
	asset := r.buy.Asset(r.opp.Pair.From)
	bal, err := r.buy.Trader.GetBalance(ctx, asset)
	if err != nil {
		return errors.Wrapf(err, "balance on %s", r.buy.Name)
	}

	res, err := r.buy.Trader.Withdraw(ctx, domain.WithdrawRequest{
		Asset:   asset,
		Amount:  bal.Free,
		Address: r.address.Address,
		Network: x.cfg.network(r.opp.Pair.From),
	})
	if err != nil {
		return errors.Wrapf(err, "withdraw from %s", r.buy.Name)
	}
	if !res.Success {
		return errors.Wrapf(domain.ErrWithdrawRejected, "%s: %s", r.buy.Name, res.Message)
	}
	r.exec.WithdrawID = res.ID
	return nil
}

// pollSettlement waits until the sell-side balance rises above the baseline.
func (x *Executor) pollSettlement(ctx context.Context, r *run) error {
	asset := r.sell.Asset(r.opp.Pair.From)
	waitCtx, cancel := context.WithTimeout(ctx, x.cfg.SettlementTimeout)
	defer cancel()

	poll := retrier.New(
		retrier.WithFixedInterval(x.cfg.PollInterval),
		retrier.WithMaxRetries(retrier.Unlimited),
		retrier.WithOnRetry(func(attempt int, err error) {
			r.logger.Debug("waiting for settlement", zap.Int("attempt", attempt), zap.Error(err))
		}),
	)

	settled, err := retrier.DoWithData(poll, waitCtx, func(ctx context.Context) (decimal.Decimal, error) {
		bal, err := r.sell.Trader.GetBalance(ctx, asset)
		if err != nil {
			return decimal.Zero, err
		}
		if !bal.Free.GreaterThan(r.baseline) {
			return decimal.Zero, errNotSettled
		}
		return bal.Free.Sub(r.baseline), nil
	})
	if err != nil {
		if ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
			return errors.Wrapf(domain.ErrSettlementTimeout, "%s on %s after %s", asset, r.sell.Name, x.cfg.SettlementTimeout)
		}
		return errors.Wrap(err, "settlement polling")
	}

	r.result.Settled = settled
	return nil
}

// placeSell sells the whole live balance, which may differ from what was bought.
func (x *Executor) placeSell(ctx context.Context, r *run) error {
	bal, err := r.sell.Trader.GetBalance(ctx, r.sell.Asset(r.opp.Pair.From))
	if err != nil {
		return errors.Wrapf(err, "balance on %s", r.sell.Name)
	}

	res, err := r.sell.Trader.PlaceSpotOrder(ctx, domain.OrderRequest{
		Pair:          r.sell.Pair(r.opp.Pair),
		Side:          domain.SideSell,
		Size:          bal.Free,
		Notional:      bal.Free.Mul(r.opp.SellPrice),
		ClientOrderID: uuid.NewString(),
	})
	if err != nil {
		return errors.Wrapf(err, "place sell on %s", r.sell.Name)
	}

	x.transition(r, domain.StepCheckSellResult, domain.ExecutionRunning, nil)
	if !res.Success {
		return errors.Wrapf(domain.ErrOrderRejected, "sell on %s: %s", r.sell.Name, res.Message)
	}
	r.exec.SellOrderID = res.OrderID
	r.exec.SoldQuote = res.FilledQuote
	return nil
}

func (x *Executor) fetchReturnAddress(ctx context.Context, r *run) error {
	addr, err := r.buy.Trader.GetDepositAddress(ctx, r.buy.Asset(r.opp.Pair.To), x.cfg.network(r.opp.Pair.To))
	if err != nil {
		return errors.Wrapf(err, "deposit address on %s", r.buy.Name)
	}
	r.address = addr
	return nil
}

// withdrawBack returns the quote currency to the buy venue for the next round.
func (x *Executor) withdrawBack(ctx context.Context, r *run) error {
	asset := r.sell.Asset(r.opp.Pair.To)
	bal, err := r.sell.Trader.GetBalance(ctx, asset)
	if err != nil {
		return errors.Wrapf(err, "balance on %s", r.sell.Name)
	}

	res, err := r.sell.Trader.Withdraw(ctx, domain.WithdrawRequest{
		Asset:   asset,
		Amount:  bal.Free,
		Address: r.address.Address,
		Network: x.cfg.network(r.opp.Pair.To),
	})
	if err != nil {
		return errors.Wrapf(err, "withdraw from %s", r.sell.Name)
	}
	if !res.Success {
		return errors.Wrapf(domain.ErrWithdrawRejected, "%s: %s", r.sell.Name, res.Message)
	}
	r.exec.ReturnID = res.ID
	r.result.Returned = res.ActualAmount
	return nil
}
