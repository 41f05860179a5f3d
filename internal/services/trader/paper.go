package trader

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vadiminshakov/arbscan/internal/domain"
	"github.com/vadiminshakov/arbscan/internal/exchange"
)

const paperAddressPrefix = "paper"

var hundred = decimal.NewFromInt(100)

type pendingDeposit struct {
	venue  string
	asset  string
	amount decimal.Decimal
	at     time.Time
}

// PaperLedger in-memory balances shared by every paper venue, so withdrawals
// from one venue can land on another.
type PaperLedger struct {
	mu          sync.Mutex
	wallets     map[string]map[string]decimal.Decimal
	pending     []pendingDeposit
	settleDelay time.Duration
	now         func() time.Time
}

// NewPaperLedger creates an empty ledger. Deposits become spendable settleDelay after the withdrawal.
func NewPaperLedger(settleDelay time.Duration) *PaperLedger {
	return &PaperLedger{
		wallets:     make(map[string]map[string]decimal.Decimal),
		settleDelay: settleDelay,
		now:         time.Now,
	}
}

// Fund credits venue with amount of asset.
func (l *PaperLedger) Fund(venue, asset string, amount decimal.Decimal) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.add(venue, asset, amount)
}

// Balance returns the spendable balance of asset on venue.
func (l *PaperLedger) Balance(venue, asset string) decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.settle()
	return l.wallets[venue][asset]
}

func (l *PaperLedger) add(venue, asset string, amount decimal.Decimal) {
	w, ok := l.wallets[venue]
	if !ok {
		w = make(map[string]decimal.Decimal)
		l.wallets[venue] = w
	}
	w[asset] = w[asset].Add(amount)
}

func (l *PaperLedger) debit(venue, asset string, amount decimal.Decimal) error {
	have := l.wallets[venue][asset]
	if have.LessThan(amount) {
		return errors.Errorf("insufficient %s balance: have %s need %s", asset, have.String(), amount.String())
	}
	l.wallets[venue][asset] = have.Sub(amount)
	return nil
}

// settle moves matured deposits into wallets. Caller holds mu.
func (l *PaperLedger) settle() {
	now := l.now()
	kept := l.pending[:0]
	for _, d := range l.pending {
		if now.Before(d.at) {
			kept = append(kept, d)
			continue
		}
		l.add(d.venue, d.asset, d.amount)
	}
	l.pending = kept
}

// PaperTrader fills market orders at the venue's live price against a PaperLedger.
type PaperTrader struct {
	venue  string
	ledger *PaperLedger
	pricer exchange.Pricer
	logger *zap.Logger
}

func NewPaperTrader(venue string, ledger *PaperLedger, pricer exchange.Pricer, logger *zap.Logger) (*PaperTrader, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pricer == nil {
		return nil, errors.New("pricer is required for PaperTrader")
	}
	if ledger == nil {
		return nil, errors.New("ledger is required for PaperTrader")
	}

	return &PaperTrader{venue: venue, ledger: ledger, pricer: pricer, logger: logger}, nil
}

func (t *PaperTrader) GetBalance(_ context.Context, asset string) (domain.Balance, error) {
	return domain.Balance{Asset: asset, Free: t.ledger.Balance(t.venue, asset)}, nil
}

// PlaceSpotOrder fills immediately at the last price minus the venue's maker fee.
func (t *PaperTrader) PlaceSpotOrder(ctx context.Context, req domain.OrderRequest) (domain.OrderResult, error) {
	quote := t.pricer.GetPrice(ctx, req.Pair)
	if !quote.IsOK() {
		return domain.OrderResult{}, errors.Wrapf(domain.ErrUnavailable, "paper price for %s: %v", req.Pair.String(), quote.Reason)
	}
	price := quote.Value.Rate
	feePct := t.pricer.GetTradingFeeRate(ctx, req.Pair).OrElse(domain.FeeSchedule{}).MakerPct
	keep := decimal.NewFromInt(1).Sub(feePct.Div(hundred))

	id := req.ClientOrderID
	if id == "" {
		id = uuid.NewString()
	}

	t.ledger.mu.Lock()
	defer t.ledger.mu.Unlock()
	t.ledger.settle()

	var res domain.OrderResult
	switch req.Side {
	case domain.SideBuy:
		if !req.Notional.IsPositive() {
			return domain.OrderResult{Success: false, Message: "buy notional must be positive"}, nil
		}
		if err := t.ledger.debit(t.venue, req.Pair.To, req.Notional); err != nil {
			return domain.OrderResult{Success: false, Message: err.Error()}, nil
		}
		gross := req.Notional.Div(price)
		filled := gross.Mul(keep)
		t.ledger.add(t.venue, req.Pair.From, filled)
		res = domain.OrderResult{Success: true, OrderID: id, FilledAmount: filled, FilledQuote: req.Notional, Fee: gross.Sub(filled)}
	case domain.SideSell:
		if !req.Size.IsPositive() {
			return domain.OrderResult{Success: false, Message: "sell size must be positive"}, nil
		}
		if err := t.ledger.debit(t.venue, req.Pair.From, req.Size); err != nil {
			return domain.OrderResult{Success: false, Message: err.Error()}, nil
		}
		gross := req.Size.Mul(price)
		proceeds := gross.Mul(keep)
		t.ledger.add(t.venue, req.Pair.To, proceeds)
		res = domain.OrderResult{Success: true, OrderID: id, FilledAmount: req.Size, FilledQuote: proceeds, Fee: gross.Sub(proceeds)}
	default:
		return domain.OrderResult{}, errors.Errorf("unknown side: %s", req.Side)
	}
	res.Message = "filled"

	t.logger.Info("paper order filled",
		zap.String("venue", t.venue),
		zap.String("id", id),
		zap.String("side", string(req.Side)),
		zap.String("pair", req.Pair.String()),
		zap.String("price", price.String()),
		zap.String("filled", res.FilledAmount.String()),
		zap.String("quote", res.FilledQuote.String()))

	return res, nil
}

// Withdraw moves funds to the venue encoded in a paper deposit address, net of the venue's withdrawal fee.
// The deposit is credited under the asset in the address, which is the destination's listing symbol
// and may differ from req.Asset when the venues list the token under different names.
func (t *PaperTrader) Withdraw(ctx context.Context, req domain.WithdrawRequest) (domain.WithdrawResult, error) {
	dest, destAsset, ok := parsePaperAddress(req.Address)
	if !ok {
		return domain.WithdrawResult{Success: false, Message: "unknown paper address " + req.Address}, nil
	}

	fee := t.pricer.GetWithdrawalFee(ctx, req.Asset).OrElse(decimal.Zero)
	arriving := req.Amount.Sub(fee)
	if !arriving.IsPositive() {
		return domain.WithdrawResult{Success: false, Message: "amount does not cover withdrawal fee " + fee.String()}, nil
	}

	t.ledger.mu.Lock()
	defer t.ledger.mu.Unlock()
	t.ledger.settle()

	if err := t.ledger.debit(t.venue, req.Asset, req.Amount); err != nil {
		return domain.WithdrawResult{Success: false, Message: err.Error()}, nil
	}
	t.ledger.pending = append(t.ledger.pending, pendingDeposit{
		venue:  dest,
		asset:  destAsset,
		amount: arriving,
		at:     t.ledger.now().Add(t.ledger.settleDelay),
	})

	id := uuid.NewString()
	t.logger.Info("paper withdrawal submitted",
		zap.String("id", id),
		zap.String("from", t.venue),
		zap.String("to", dest),
		zap.String("asset", req.Asset),
		zap.String("dest_asset", destAsset),
		zap.String("amount", arriving.String()))

	return domain.WithdrawResult{Success: true, ID: id, ActualAmount: arriving, TxFee: fee}, nil
}

func (t *PaperTrader) GetDepositAddress(_ context.Context, asset, network string) (domain.DepositAddress, error) {
	return domain.DepositAddress{
		Asset:   asset,
		Network: network,
		Address: strings.Join([]string{paperAddressPrefix, t.venue, asset}, "-"),
	}, nil
}

func parsePaperAddress(addr string) (venue, asset string, ok bool) {
	parts := strings.SplitN(addr, "-", 3)
	if len(parts) != 3 || parts[0] != paperAddressPrefix || parts[1] == "" || parts[2] == "" {
		return "", "", false
	}
	return parts[1], parts[2], true
}
