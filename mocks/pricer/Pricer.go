package pricer

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/vadiminshakov/arbscan/internal/domain"
)

// Pricer is a mock type for the exchange.Pricer type.
type Pricer struct {
	mock.Mock
}

// GetPrice provides a mock function with given fields: ctx, pair
func (_m *Pricer) GetPrice(ctx context.Context, pair domain.Pair) domain.Result[domain.Quote] {
	ret := _m.Called(ctx, pair)

	if len(ret) == 0 {
		panic("no return value specified for GetPrice")
	}

	var r0 domain.Result[domain.Quote]
	if rf, ok := ret.Get(0).(func(context.Context, domain.Pair) domain.Result[domain.Quote]); ok {
		r0 = rf(ctx, pair)
	} else {
		r0 = ret.Get(0).(domain.Result[domain.Quote])
	}

	return r0
}

// GetTradingFeeRate provides a mock function with given fields: ctx, pair
func (_m *Pricer) GetTradingFeeRate(ctx context.Context, pair domain.Pair) domain.Result[domain.FeeSchedule] {
	ret := _m.Called(ctx, pair)

	if len(ret) == 0 {
		panic("no return value specified for GetTradingFeeRate")
	}

	var r0 domain.Result[domain.FeeSchedule]
	if rf, ok := ret.Get(0).(func(context.Context, domain.Pair) domain.Result[domain.FeeSchedule]); ok {
		r0 = rf(ctx, pair)
	} else {
		r0 = ret.Get(0).(domain.Result[domain.FeeSchedule])
	}

	return r0
}

// GetWithdrawalFee provides a mock function with given fields: ctx, asset
func (_m *Pricer) GetWithdrawalFee(ctx context.Context, asset string) domain.Result[decimal.Decimal] {
	ret := _m.Called(ctx, asset)

	if len(ret) == 0 {
		panic("no return value specified for GetWithdrawalFee")
	}

	var r0 domain.Result[decimal.Decimal]
	if rf, ok := ret.Get(0).(func(context.Context, string) domain.Result[decimal.Decimal]); ok {
		r0 = rf(ctx, asset)
	} else {
		r0 = ret.Get(0).(domain.Result[decimal.Decimal])
	}

	return r0
}

// NewPricer creates a new instance of Pricer. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewPricer(t interface {
	mock.TestingT
	Cleanup(func())
}) *Pricer {
	m := &Pricer{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
