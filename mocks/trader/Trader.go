package trader

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/vadiminshakov/arbscan/internal/domain"
)

// Trader is a mock type for the exchange.Trader type.
type Trader struct {
	mock.Mock
}

// GetBalance provides a mock function with given fields: ctx, asset
func (_m *Trader) GetBalance(ctx context.Context, asset string) (domain.Balance, error) {
	ret := _m.Called(ctx, asset)

	if len(ret) == 0 {
		panic("no return value specified for GetBalance")
	}

	var r0 domain.Balance
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string) (domain.Balance, error)); ok {
		return rf(ctx, asset)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string) domain.Balance); ok {
		r0 = rf(ctx, asset)
	} else {
		r0 = ret.Get(0).(domain.Balance)
	}

	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, asset)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// PlaceSpotOrder provides a mock function with given fields: ctx, req
func (_m *Trader) PlaceSpotOrder(ctx context.Context, req domain.OrderRequest) (domain.OrderResult, error) {
	ret := _m.Called(ctx, req)

	if len(ret) == 0 {
		panic("no return value specified for PlaceSpotOrder")
	}

	var r0 domain.OrderResult
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, domain.OrderRequest) (domain.OrderResult, error)); ok {
		return rf(ctx, req)
	}
	if rf, ok := ret.Get(0).(func(context.Context, domain.OrderRequest) domain.OrderResult); ok {
		r0 = rf(ctx, req)
	} else {
		r0 = ret.Get(0).(domain.OrderResult)
	}

	if rf, ok := ret.Get(1).(func(context.Context, domain.OrderRequest) error); ok {
		r1 = rf(ctx, req)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// Withdraw provides a mock function with given fields: ctx, req
func (_m *Trader) Withdraw(ctx context.Context, req domain.WithdrawRequest) (domain.WithdrawResult, error) {
	ret := _m.Called(ctx, req)

	if len(ret) == 0 {
		panic("no return value specified for Withdraw")
	}

	var r0 domain.WithdrawResult
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, domain.WithdrawRequest) (domain.WithdrawResult, error)); ok {
		return rf(ctx, req)
	}
	if rf, ok := ret.Get(0).(func(context.Context, domain.WithdrawRequest) domain.WithdrawResult); ok {
		r0 = rf(ctx, req)
	} else {
		r0 = ret.Get(0).(domain.WithdrawResult)
	}

	if rf, ok := ret.Get(1).(func(context.Context, domain.WithdrawRequest) error); ok {
		r1 = rf(ctx, req)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// GetDepositAddress provides a mock function with given fields: ctx, asset, network
func (_m *Trader) GetDepositAddress(ctx context.Context, asset string, network string) (domain.DepositAddress, error) {
	ret := _m.Called(ctx, asset, network)

	if len(ret) == 0 {
		panic("no return value specified for GetDepositAddress")
	}

	var r0 domain.DepositAddress
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string, string) (domain.DepositAddress, error)); ok {
		return rf(ctx, asset, network)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string, string) domain.DepositAddress); ok {
		r0 = rf(ctx, asset, network)
	} else {
		r0 = ret.Get(0).(domain.DepositAddress)
	}

	if rf, ok := ret.Get(1).(func(context.Context, string, string) error); ok {
		r1 = rf(ctx, asset, network)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewTrader creates a new instance of Trader. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewTrader(t interface {
	mock.TestingT
	Cleanup(func())
}) *Trader {
	m := &Trader{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
