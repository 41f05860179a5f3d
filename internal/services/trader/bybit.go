package trader

import (
	"context"

	"github.com/hirokisan/bybit/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/arbscan/internal/domain"
)

// BybitTrader spot orders and unified wallet balance on Bybit.
// Transfers are not wired; the executor only uses Bybit where no withdrawal is needed.
type BybitTrader struct {
	client *bybit.Client
}

func NewBybitTrader(client *bybit.Client) *BybitTrader {
	return &BybitTrader{client: client}
}

func (t *BybitTrader) GetBalance(_ context.Context, asset string) (domain.Balance, error) {
	res, err := t.client.V5().Account().GetWalletBalance(bybit.AccountTypeV5("UNIFIED"), nil)
	if err != nil {
		return domain.Balance{}, errors.Wrap(err, "failed to get bybit wallet balance")
	}
	if len(res.Result.List) == 0 {
		return domain.Balance{Asset: asset}, nil
	}

	for _, coin := range res.Result.List[0].Coin {
		if string(coin.Coin) != asset {
			continue
		}
		free, err := decimal.NewFromString(coin.WalletBalance)
		if err != nil {
			return domain.Balance{}, errors.Wrap(err, "failed to parse bybit balance")
		}
		return domain.Balance{Asset: asset, Free: free}, nil
	}

	return domain.Balance{Asset: asset}, nil
}

// PlaceSpotOrder market buys are sized in quote coin, sells in base coin.
func (t *BybitTrader) PlaceSpotOrder(_ context.Context, req domain.OrderRequest) (domain.OrderResult, error) {
	param := bybit.V5CreateOrderParam{
		Category:  "spot",
		Symbol:    bybit.SymbolV5(req.Pair.Symbol()),
		OrderType: bybit.OrderTypeMarket,
	}
	if req.Side == domain.SideBuy {
		param.Side = bybit.SideBuy
		param.Qty = req.Notional.String()
	} else {
		param.Side = bybit.SideSell
		param.Qty = req.Size.RoundFloor(4).String()
	}

	res, err := t.client.V5().Order().CreateOrder(param)
	if err != nil {
		return domain.OrderResult{Success: false, Message: err.Error()}, nil
	}

	return domain.OrderResult{Success: true, OrderID: res.Result.OrderID}, nil
}

func (t *BybitTrader) Withdraw(context.Context, domain.WithdrawRequest) (domain.WithdrawResult, error) {
	return domain.WithdrawResult{}, errors.Wrap(domain.ErrUnsupported, "bybit withdraw")
}

func (t *BybitTrader) GetDepositAddress(context.Context, string, string) (domain.DepositAddress, error) {
	return domain.DepositAddress{}, errors.Wrap(domain.ErrUnsupported, "bybit deposit address")
}
