package fees

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vadiminshakov/arbscan/internal/domain"
	"github.com/vadiminshakov/arbscan/internal/exchange"
	pricerMock "github.com/vadiminshakov/arbscan/mocks/pricer"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestResolver_FallbackOrder(t *testing.T) {
	ctx := context.Background()
	p := pricerMock.NewPricer(t)
	venue := exchange.Venue{Name: "coinex", Pricer: p, Symbols: exchange.SymbolMap{"TRAC": "TRACBRC"}}
	r := NewResolver(zap.NewNop())

	// first call: exchange answers
	p.On("GetWithdrawalFee", mock.Anything, "TRACBRC").Return(domain.Ok(dec("3"))).Once()
	fee := r.WithdrawalFee(ctx, venue, "TRAC")
	assert.Equal(t, domain.FeeSourceExchange, fee.Source)
	assert.True(t, fee.Amount.Equal(dec("3")))
	assert.Equal(t, "TRAC", fee.Asset)

	// second call: exchange fails, cached value is used
	p.On("GetWithdrawalFee", mock.Anything, "TRACBRC").Return(domain.Failed[decimal.Decimal](errors.New("boom"))).Once()
	fee = r.WithdrawalFee(ctx, venue, "TRAC")
	assert.Equal(t, domain.FeeSourceCache, fee.Source)
	assert.True(t, fee.Amount.Equal(dec("3")))

	// unknown asset with no cache entry falls back to the default
	p.On("GetWithdrawalFee", mock.Anything, "XMR").Return(domain.Unavailable[decimal.Decimal](domain.ErrUnsupported)).Once()
	fee = r.WithdrawalFee(ctx, venue, "XMR")
	assert.Equal(t, domain.FeeSourceDefault, fee.Source)
	assert.True(t, fee.Amount.Equal(DefaultWithdrawalFee))
}

func TestResolver_OverridesSkipExchange(t *testing.T) {
	p := pricerMock.NewPricer(t)
	venue := exchange.Venue{Name: "btse", Pricer: p}
	r := NewResolver(nil, WithOverrides(map[string]map[string]decimal.Decimal{
		"btse": {"USDT": dec("1")},
	}))

	fee := r.WithdrawalFee(context.Background(), venue, "USDT")
	assert.Equal(t, domain.FeeSourceConfigured, fee.Source)
	assert.True(t, fee.Amount.Equal(dec("1")))
	p.AssertNotCalled(t, "GetWithdrawalFee", mock.Anything, mock.Anything)
}

func TestResolver_CustomDefault(t *testing.T) {
	p := pricerMock.NewPricer(t)
	p.On("GetWithdrawalFee", mock.Anything, "XMR").Return(domain.Unavailable[decimal.Decimal](nil))
	r := NewResolver(nil, WithDefault(dec("0.5")))

	fee := r.WithdrawalFee(context.Background(), exchange.Venue{Name: "bybit", Pricer: p}, "XMR")
	assert.Equal(t, domain.FeeSourceDefault, fee.Source)
	assert.True(t, fee.Amount.Equal(dec("0.5")))
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "coinex", "XMR", dec("0.1"), time.Minute))

	fee, ok, err := c.Get(ctx, "coinex", "XMR")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, fee.Equal(dec("0.1")))

	now = now.Add(time.Minute)
	_, ok, err = c.Get(ctx, "coinex", "XMR")
	require.NoError(t, err)
	assert.False(t, ok)
}
