package trader

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vadiminshakov/arbscan/internal/domain"
)

type fakePricer struct {
	price       decimal.Decimal
	makerPct    decimal.Decimal
	withdrawFee decimal.Decimal
}

func (f *fakePricer) GetPrice(_ context.Context, _ domain.Pair) domain.Result[domain.Quote] {
	if !f.price.IsPositive() {
		return domain.Unavailable[domain.Quote](domain.ErrUnavailable)
	}
	return domain.Ok(domain.NewQuote("paper", f.price))
}

func (f *fakePricer) GetTradingFeeRate(_ context.Context, _ domain.Pair) domain.Result[domain.FeeSchedule] {
	return domain.Ok(domain.FeeSchedule{MakerPct: f.makerPct, TakerPct: f.makerPct, Source: domain.FeeSourceExchange})
}

func (f *fakePricer) GetWithdrawalFee(_ context.Context, _ string) domain.Result[decimal.Decimal] {
	return domain.Ok(f.withdrawFee)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newPaper(t *testing.T, ledger *PaperLedger, venue string, p *fakePricer) *PaperTrader {
	t.Helper()
	tr, err := NewPaperTrader(venue, ledger, p, zap.NewNop())
	require.NoError(t, err)
	return tr
}

func TestNewPaperTrader_RequiresPricer(t *testing.T) {
	_, err := NewPaperTrader("a", NewPaperLedger(0), nil, nil)
	assert.Error(t, err)
}

func TestPaperTrader_BuyAndSell(t *testing.T) {
	ctx := context.Background()
	ledger := NewPaperLedger(0)
	ledger.Fund("a", "USDT", dec("100"))
	tr := newPaper(t, ledger, "a", &fakePricer{price: dec("2"), makerPct: dec("0.5")})
	pair := domain.Pair{From: "XMR", To: "USDT"}

	buy, err := tr.PlaceSpotOrder(ctx, domain.OrderRequest{Pair: pair, Side: domain.SideBuy, Notional: dec("100")})
	require.NoError(t, err)
	require.True(t, buy.Success, buy.Message)
	// 100 / 2 = 50 tokens, minus 0.5%
	assert.True(t, buy.FilledAmount.Equal(dec("49.75")), buy.FilledAmount.String())
	assert.True(t, buy.Fee.Equal(dec("0.25")))
	assert.NotEmpty(t, buy.OrderID)

	bal, err := tr.GetBalance(ctx, "USDT")
	require.NoError(t, err)
	assert.True(t, bal.Free.IsZero())

	sell, err := tr.PlaceSpotOrder(ctx, domain.OrderRequest{Pair: pair, Side: domain.SideSell, Size: dec("49.75"), ClientOrderID: "sell-1"})
	require.NoError(t, err)
	require.True(t, sell.Success, sell.Message)
	assert.Equal(t, "sell-1", sell.OrderID)
	// 49.75 * 2 = 99.5, minus 0.5%
	assert.True(t, sell.FilledQuote.Equal(dec("99.0025")), sell.FilledQuote.String())

	bal, err = tr.GetBalance(ctx, "XMR")
	require.NoError(t, err)
	assert.True(t, bal.Free.IsZero())
}

func TestPaperTrader_InsufficientBalanceIsRejection(t *testing.T) {
	ctx := context.Background()
	tr := newPaper(t, NewPaperLedger(0), "a", &fakePricer{price: dec("1")})

	res, err := tr.PlaceSpotOrder(ctx, domain.OrderRequest{
		Pair:     domain.Pair{From: "XMR", To: "USDT"},
		Side:     domain.SideBuy,
		Notional: dec("10"),
	})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "insufficient USDT balance")
}

func TestPaperTrader_NoPrice(t *testing.T) {
	tr := newPaper(t, NewPaperLedger(0), "a", &fakePricer{})
	_, err := tr.PlaceSpotOrder(context.Background(), domain.OrderRequest{
		Pair:     domain.Pair{From: "XMR", To: "USDT"},
		Side:     domain.SideBuy,
		Notional: dec("10"),
	})
	assert.ErrorIs(t, err, domain.ErrUnavailable)
}

func TestPaperTrader_WithdrawSettlesAfterDelay(t *testing.T) {
	ctx := context.Background()
	ledger := NewPaperLedger(time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ledger.now = func() time.Time { return now }
	ledger.Fund("a", "XMR", dec("10"))

	from := newPaper(t, ledger, "a", &fakePricer{price: dec("1"), withdrawFee: dec("0.5")})
	to := newPaper(t, ledger, "b", &fakePricer{price: dec("1")})

	addr, err := to.GetDepositAddress(ctx, "XMR", "XMR")
	require.NoError(t, err)
	assert.Equal(t, "paper-b-XMR", addr.Address)

	w, err := from.Withdraw(ctx, domain.WithdrawRequest{Asset: "XMR", Amount: dec("10"), Address: addr.Address})
	require.NoError(t, err)
	require.True(t, w.Success, w.Message)
	assert.True(t, w.ActualAmount.Equal(dec("9.5")))
	assert.True(t, w.TxFee.Equal(dec("0.5")))

	bal, err := to.GetBalance(ctx, "XMR")
	require.NoError(t, err)
	assert.True(t, bal.Free.IsZero(), "deposit must not land before the settle delay")

	now = now.Add(time.Minute)
	bal, err = to.GetBalance(ctx, "XMR")
	require.NoError(t, err)
	assert.True(t, bal.Free.Equal(dec("9.5")))
}

func TestPaperTrader_WithdrawCreditsDestinationSymbol(t *testing.T) {
	ctx := context.Background()
	ledger := NewPaperLedger(0)
	ledger.Fund("btse", "TRUMP", dec("10"))

	from := newPaper(t, ledger, "btse", &fakePricer{price: dec("1")})
	to := newPaper(t, ledger, "coinex", &fakePricer{price: dec("1")})

	addr, err := to.GetDepositAddress(ctx, "MAGATRUMP", "SOL")
	require.NoError(t, err)

	w, err := from.Withdraw(ctx, domain.WithdrawRequest{Asset: "TRUMP", Amount: dec("10"), Address: addr.Address, Network: "SOL"})
	require.NoError(t, err)
	require.True(t, w.Success, w.Message)

	assert.True(t, ledger.Balance("btse", "TRUMP").IsZero())
	assert.True(t, ledger.Balance("coinex", "MAGATRUMP").Equal(dec("10")))
	assert.True(t, ledger.Balance("coinex", "TRUMP").IsZero())
}

func TestPaperTrader_WithdrawRejections(t *testing.T) {
	ctx := context.Background()
	ledger := NewPaperLedger(0)
	ledger.Fund("a", "XMR", dec("1"))
	tr := newPaper(t, ledger, "a", &fakePricer{price: dec("1"), withdrawFee: dec("2")})

	tests := []struct {
		name string
		req  domain.WithdrawRequest
	}{
		{"foreign address", domain.WithdrawRequest{Asset: "XMR", Amount: dec("1"), Address: "0xdeadbeef"}},
		{"more than balance", domain.WithdrawRequest{Asset: "XMR", Amount: dec("5"), Address: "paper-b-XMR"}},
		{"fee exceeds amount", domain.WithdrawRequest{Asset: "XMR", Amount: dec("1"), Address: "paper-b-XMR"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := tr.Withdraw(ctx, tt.req)
			require.NoError(t, err)
			assert.False(t, res.Success)
		})
	}

	assert.True(t, ledger.Balance("a", "XMR").Equal(dec("1")))
}
