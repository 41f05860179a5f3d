package evaluator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vadiminshakov/arbscan/internal/domain"
	"github.com/vadiminshakov/arbscan/internal/exchange"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fakeQuotes map[domain.Pair]domain.QuoteSet

func (f fakeQuotes) GetQuotes(_ context.Context, pair domain.Pair) (domain.QuoteSet, error) {
	set := f[pair]
	set.Pair = pair
	rates := append([]domain.Quote(nil), set.Rates...)
	domain.SortQuotesDesc(rates)
	set.Rates = rates
	return set, nil
}

// fakeFees flat withdrawal fee per asset.
type fakeFees map[string]decimal.Decimal

func (f fakeFees) WithdrawalFee(_ context.Context, venue exchange.Venue, asset string) domain.WithdrawalFee {
	return domain.WithdrawalFee{Exchange: venue.Name, Asset: asset, Amount: f[asset], Source: domain.FeeSourceExchange}
}

func registry(names ...string) exchange.Registry {
	r := make(exchange.Registry, len(names))
	for _, n := range names {
		r[n] = exchange.Venue{Name: n}
	}
	return r
}

func TestComputeDirect_Regression(t *testing.T) {
	opp := ComputeDirect(
		dec("100"),
		domain.NewQuote("buy", dec("1.00")),
		domain.NewQuote("sell", dec("1.05")),
		domain.FeeSchedule{MakerPct: dec("0.2")},
		domain.FeeSchedule{MakerPct: dec("0.3")},
		dec("1"), dec("1"),
	)

	assert.True(t, opp.TokensBought.Equal(dec("99.8")), opp.TokensBought.String())
	assert.True(t, opp.TokensAfterWithdrawal.Equal(dec("98.8")))
	assert.True(t, opp.QuoteAtSell.Equal(dec("103.42878")), opp.QuoteAtSell.String())
	assert.True(t, opp.QuoteAfterWithdrawal.Equal(dec("102.42878")))
	assert.True(t, opp.NetProfit.Equal(dec("2.42878")), opp.NetProfit.String())
	assert.Equal(t, "2.4288", opp.NetProfit.StringFixed(4))
	assert.True(t, opp.NetProfitPct.Equal(dec("2.42878")))
}

func TestComputeDirect_EachFeeLowersProfit(t *testing.T) {
	buy := domain.NewQuote("buy", dec("1.00"))
	sell := domain.NewQuote("sell", dec("1.05"))
	noFee := domain.FeeSchedule{}
	base := ComputeDirect(dec("100"), buy, sell, noFee, noFee, decimal.Zero, decimal.Zero)

	variants := map[string]domain.Opportunity{
		"buy fee":         ComputeDirect(dec("100"), buy, sell, domain.FeeSchedule{MakerPct: dec("0.2")}, noFee, decimal.Zero, decimal.Zero),
		"buy withdrawal":  ComputeDirect(dec("100"), buy, sell, noFee, noFee, dec("1"), decimal.Zero),
		"sell fee":        ComputeDirect(dec("100"), buy, sell, noFee, domain.FeeSchedule{MakerPct: dec("0.3")}, decimal.Zero, decimal.Zero),
		"sell withdrawal": ComputeDirect(dec("100"), buy, sell, noFee, noFee, decimal.Zero, dec("1")),
	}
	for name, opp := range variants {
		t.Run(name, func(t *testing.T) {
			assert.True(t, opp.NetProfit.LessThan(base.NetProfit))
		})
	}
}

func TestEvaluate_SelectsBuyLowSellHigh(t *testing.T) {
	pair := domain.Pair{From: "XMR", To: "USDT"}
	orders := [][]domain.Quote{
		{domain.NewQuote("a", dec("1.05")), domain.NewQuote("b", dec("1.00"))},
		{domain.NewQuote("b", dec("1.00")), domain.NewQuote("a", dec("1.05"))},
	}

	for _, rates := range orders {
		quotes := fakeQuotes{pair: {
			Rates: rates,
			Fees: map[string]domain.FeeSchedule{
				"a": {Exchange: "a", MakerPct: dec("0.3")},
				"b": {Exchange: "b", MakerPct: dec("0.2")},
			},
		}}
		e := New(quotes, fakeFees{"XMR": dec("1"), "USDT": dec("1")}, registry("a", "b"), zap.NewNop(), WithThreshold(dec("2")))

		opp, err := e.Evaluate(context.Background(), dec("100"), pair)
		require.NoError(t, err)
		require.NotNil(t, opp)
		assert.Equal(t, "b", opp.BuyExchange)
		assert.Equal(t, "a", opp.SellExchange)
		assert.Equal(t, pair, opp.Pair)
		assert.True(t, opp.NetProfit.Equal(dec("2.42878")))
		assert.True(t, opp.Actionable)
		assert.Equal(t, "XMR", opp.BuyWithdrawalFee.Asset)
		assert.Equal(t, "USDT", opp.SellWithdrawalFee.Asset)
	}
}

func TestEvaluate_ThresholdIsStrict(t *testing.T) {
	pair := domain.Pair{From: "XMR", To: "USDT"}
	quotes := fakeQuotes{pair: {Rates: []domain.Quote{domain.NewQuote("a", dec("1.05")), domain.NewQuote("b", dec("1"))}}}

	e := New(quotes, fakeFees{}, registry("a", "b"), nil, WithThreshold(dec("5")))
	opp, err := e.Evaluate(context.Background(), dec("100"), pair)
	require.NoError(t, err)
	require.NotNil(t, opp)
	assert.True(t, opp.NetProfit.Equal(dec("5")))
	assert.False(t, opp.Actionable)
}

func TestEvaluate_InsufficientQuotes(t *testing.T) {
	pair := domain.Pair{From: "XMR", To: "USDT"}
	quotes := fakeQuotes{pair: {Rates: []domain.Quote{domain.NewQuote("a", dec("1"))}}}
	e := New(quotes, fakeFees{}, registry("a"), nil)

	opp, err := e.Evaluate(context.Background(), dec("100"), pair)
	require.NoError(t, err)
	assert.Nil(t, opp)

	opp, err = e.Evaluate(context.Background(), dec("100"), domain.Pair{From: "NONE", To: "USDT"})
	require.NoError(t, err)
	assert.Nil(t, opp)
}

func TestEvaluate_RejectsNonPositiveAmount(t *testing.T) {
	e := New(fakeQuotes{}, fakeFees{}, registry(), nil)
	_, err := e.Evaluate(context.Background(), decimal.Zero, domain.Pair{From: "XMR", To: "USDT"})
	assert.Error(t, err)
}

func TestEvaluateChain(t *testing.T) {
	xmr := domain.Pair{From: "XMR", To: "USDT"}
	tower := domain.Pair{From: "TOWER", To: "USDT"}
	quotes := fakeQuotes{
		xmr:   {Rates: []domain.Quote{domain.NewQuote("a", dec("1.05")), domain.NewQuote("b", dec("1"))}},
		tower: {Rates: []domain.Quote{domain.NewQuote("b", dec("2.2")), domain.NewQuote("a", dec("2"))}},
	}
	fees := fakeFees{"XMR": dec("1"), "TOWER": dec("0.5"), "USDT": dec("1")}
	e := New(quotes, fees, registry("a", "b"), nil)
	ctx := context.Background()

	t.Run("single leg equals direct", func(t *testing.T) {
		direct, err := e.Evaluate(ctx, dec("100"), xmr)
		require.NoError(t, err)
		chain, err := e.EvaluateChain(ctx, dec("100"), []domain.Pair{xmr})
		require.NoError(t, err)
		require.NotNil(t, chain)
		assert.True(t, chain.NetProfit.Equal(direct.NetProfit))
		assert.True(t, chain.Final.Equal(direct.QuoteAfterWithdrawal))
	})

	t.Run("second leg spends first leg proceeds", func(t *testing.T) {
		chain, err := e.EvaluateChain(ctx, dec("100"), []domain.Pair{xmr, tower})
		require.NoError(t, err)
		require.NotNil(t, chain)
		require.Len(t, chain.Legs, 2)
		assert.True(t, chain.Legs[1].TradingAmount.Equal(chain.Legs[0].QuoteAfterWithdrawal))

		// leg 1 returns 102.95 USDT; / 2 = 51.475 TOWER, -0.5 = 50.975, ×2.2 = 112.145, -1 = 111.145
		assert.True(t, chain.Legs[0].QuoteAfterWithdrawal.Equal(dec("102.95")))
		assert.True(t, chain.Final.Equal(dec("111.145")), chain.Final.String())
		assert.True(t, chain.NetProfit.Equal(dec("11.145")))
		assert.True(t, chain.Actionable)
	})

	t.Run("missing leg yields nothing", func(t *testing.T) {
		chain, err := e.EvaluateChain(ctx, dec("100"), []domain.Pair{xmr, {From: "NONE", To: "USDT"}})
		require.NoError(t, err)
		assert.Nil(t, chain)
	})

	t.Run("mixed quotes rejected", func(t *testing.T) {
		_, err := e.EvaluateChain(ctx, dec("100"), []domain.Pair{xmr, {From: "XMR", To: "BTC"}})
		assert.Error(t, err)
	})
}

func TestGenerateRoutes(t *testing.T) {
	routes := GenerateRoutes([]string{"A-USDT", "B-USDT", "A-B"}, "USDT")
	require.Len(t, routes, 1)
	assert.Equal(t, "A-USDT → A-B → B-USDT", routes[0].String())
	assert.Equal(t, domain.RouteLeg{Pair: "A-B", Base: "A", Quote: "B"}, routes[0][1])
}

func TestGenerateRoutes_ExactSymbolMatch(t *testing.T) {
	// prefix matching would also route A-USDT through AB-C
	routes := GenerateRoutes([]string{"A-USDT", "AB-USDT", "AB-C", "C-USDT", "bogus"}, "USDT")
	require.Len(t, routes, 1)
	assert.Equal(t, "AB-USDT → AB-C → C-USDT", routes[0].String())
}

func TestSimulateRoute(t *testing.T) {
	books := [3]domain.Ticker{
		{Symbol: "A-USDT", Bid: dec("9.9"), Ask: dec("10")},
		{Symbol: "A-B", Bid: dec("0.49"), Ask: dec("0.5")},
		{Symbol: "B-USDT", Bid: dec("5.5"), Ask: dec("5.6")},
	}
	// 50 / 10 = 5, / 0.5 = 10, × 5.5 = 55
	final, err := SimulateRoute(dec("50"), books)
	require.NoError(t, err)
	assert.True(t, final.Equal(dec("55")), final.String())

	books[1].Ask = decimal.Zero
	_, err = SimulateRoute(dec("50"), books)
	assert.ErrorIs(t, err, domain.ErrUnavailable)
}

// fakeLister serves tickers; every GetTicker call after the first sample of a symbol
// shifts bid and ask by step. A symbol in failFrom errors from that call number on (0-based).
type fakeLister struct {
	mu       sync.Mutex
	markets  []string
	books    map[string]domain.Ticker
	step     map[string]decimal.Decimal
	calls    map[string]int
	failFrom map[string]int
}

func (f *fakeLister) GetPrice(context.Context, domain.Pair) domain.Result[domain.Quote] {
	return domain.Unavailable[domain.Quote](domain.ErrUnsupported)
}

func (f *fakeLister) GetTradingFeeRate(context.Context, domain.Pair) domain.Result[domain.FeeSchedule] {
	return domain.Unavailable[domain.FeeSchedule](domain.ErrUnsupported)
}

func (f *fakeLister) GetWithdrawalFee(context.Context, string) domain.Result[decimal.Decimal] {
	return domain.Unavailable[decimal.Decimal](domain.ErrUnsupported)
}

func (f *fakeLister) ListMarkets(context.Context) ([]string, error) {
	return f.markets, nil
}

func (f *fakeLister) GetTicker(_ context.Context, symbol string) (domain.Ticker, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.books[symbol]
	if !ok {
		return domain.Ticker{}, errors.Wrap(domain.ErrUnavailable, symbol)
	}
	n := f.calls[symbol]
	f.calls[symbol] = n + 1
	if from, ok := f.failFrom[symbol]; ok && n >= from {
		return domain.Ticker{}, errors.Wrap(domain.ErrUnavailable, symbol)
	}
	shift := f.step[symbol].Mul(decimal.NewFromInt(int64(n)))
	return domain.Ticker{Symbol: symbol, Bid: b.Bid.Add(shift), Ask: b.Ask.Add(shift)}, nil
}

func newLister(step string) *fakeLister {
	books := map[string]domain.Ticker{
		"A-USDT": {Bid: dec("9.9"), Ask: dec("10")},
		"A-B":    {Bid: dec("0.49"), Ask: dec("0.5")},
		"B-USDT": {Bid: dec("5.5"), Ask: dec("5.6")},
	}
	steps := make(map[string]decimal.Decimal, len(books))
	for s := range books {
		steps[s] = dec(step)
	}
	return &fakeLister{
		markets: []string{"A-USDT", "B-USDT", "A-B", "C-USDT"},
		books:   books,
		step:    steps,
		calls:   make(map[string]int),
	}
}

func triangularEvaluator(l *fakeLister) *Evaluator {
	cfg := DefaultTriangularConfig()
	cfg.VelocityDelay = time.Millisecond
	venues := exchange.Registry{"btse": {Name: "btse", Pricer: l}}
	return New(fakeQuotes{}, fakeFees{}, venues, zap.NewNop(), WithTriangular(cfg))
}

func TestEvaluateTriangular_Feasible(t *testing.T) {
	res, err := triangularEvaluator(newLister("0.001")).EvaluateTriangular(context.Background(), "btse")
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, "A-USDT → A-B → B-USDT", res.Route.String())
	assert.True(t, res.Final.Equal(dec("55")), res.Final.String())
	assert.True(t, res.Profit.Equal(dec("5")))
	assert.True(t, res.Feasible)
	for _, v := range res.Velocities {
		// bid and ask both moved by 0.001
		assert.True(t, v.Equal(dec("0.002")), v.String())
	}
}

func TestEvaluateTriangular_StaleBookIsInfeasible(t *testing.T) {
	res, err := triangularEvaluator(newLister("0")).EvaluateTriangular(context.Background(), "btse")
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.True(t, res.Profit.IsPositive())
	assert.False(t, res.Feasible)
}

func TestEvaluateTriangular_FailedResampleIsInfeasible(t *testing.T) {
	l := newLister("0.001")
	// listing fetch and first sample succeed, the second sample fails
	l.failFrom = map[string]int{"A-B": 2}

	res, err := triangularEvaluator(l).EvaluateTriangular(context.Background(), "btse")
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, "A-USDT → A-B → B-USDT", res.Route.String())
	assert.True(t, res.Profit.Equal(dec("5")))
	assert.False(t, res.Feasible)
	assert.True(t, res.Velocities[1].IsZero(), res.Velocities[1].String())
	assert.True(t, res.Velocities[0].Equal(dec("0.002")), res.Velocities[0].String())
}

func TestEvaluateTriangular_CancelledDuringVelocity(t *testing.T) {
	l := newLister("0.001")
	cfg := DefaultTriangularConfig()
	cfg.VelocityDelay = time.Hour
	e := New(fakeQuotes{}, fakeFees{}, exchange.Registry{"btse": {Name: "btse", Pricer: l}}, zap.NewNop(), WithTriangular(cfg))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := e.EvaluateTriangular(ctx, "btse")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestEvaluateTriangular_UnsupportedVenue(t *testing.T) {
	venues := exchange.Registry{"bybit": {Name: "bybit", Pricer: struct{ exchange.Pricer }{}}}
	e := New(fakeQuotes{}, fakeFees{}, venues, nil)

	_, err := e.EvaluateTriangular(context.Background(), "bybit")
	assert.ErrorIs(t, err, domain.ErrUnsupported)
}
