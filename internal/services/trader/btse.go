package trader

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/arbscan/internal/clients"
	"github.com/vadiminshakov/arbscan/internal/domain"
)

// BTSE order status codes that mean the order was accepted.
const (
	btseStatusInserted    = 2
	btseStatusFullyFilled = 4
	btseStatusPartialFill = 5
)

// BTSETrader spot account operations on BTSE.
type BTSETrader struct {
	client *clients.BTSEClient
}

func NewBTSETrader(client *clients.BTSEClient) *BTSETrader {
	return &BTSETrader{client: client}
}

func (t *BTSETrader) GetBalance(ctx context.Context, asset string) (domain.Balance, error) {
	wallets, err := t.client.Wallet(ctx, asset)
	if err != nil {
		return domain.Balance{}, errors.Wrap(err, "failed to get btse wallet")
	}

	for _, w := range wallets {
		if w.Currency == asset {
			return domain.Balance{Asset: asset, Free: w.Available, Locked: w.Total.Sub(w.Available)}, nil
		}
	}

	return domain.Balance{Asset: asset}, nil
}

// PlaceSpotOrder market orders are sized in base currency; buys convert the notional at the last price.
func (t *BTSETrader) PlaceSpotOrder(ctx context.Context, req domain.OrderRequest) (domain.OrderResult, error) {
	size := req.Size
	if req.Side == domain.SideBuy {
		price, err := t.client.Price(ctx, req.Pair.Dashed())
		if err != nil {
			return domain.OrderResult{}, errors.Wrap(err, "failed to price btse buy")
		}
		if !price.LastPrice.IsPositive() {
			return domain.OrderResult{}, errors.Wrapf(domain.ErrUnavailable, "btse price for %s", req.Pair.Dashed())
		}
		size = req.Notional.Div(price.LastPrice)
	}
	size = size.RoundFloor(4)

	order, err := t.client.PlaceOrder(ctx, clients.BTSEOrderRequest{
		Symbol:    req.Pair.Dashed(),
		Side:      string(req.Side),
		Type:      "MARKET",
		Size:      size.String(),
		ClOrderID: req.ClientOrderID,
	})
	if err != nil {
		var statusErr *clients.HTTPStatusError
		if errors.As(err, &statusErr) {
			return domain.OrderResult{Success: false, Message: statusErr.Body}, nil
		}
		return domain.OrderResult{}, errors.Wrap(err, "failed to place btse order")
	}

	switch order.Status {
	case btseStatusInserted, btseStatusFullyFilled, btseStatusPartialFill:
	default:
		return domain.OrderResult{Success: false, OrderID: order.OrderID, Message: order.Message}, nil
	}

	return domain.OrderResult{
		Success:      true,
		OrderID:      order.OrderID,
		FilledAmount: order.FillSize,
		FilledQuote:  order.FillSize.Mul(order.AvgFillPrice),
		Message:      order.Message,
	}, nil
}

func (t *BTSETrader) Withdraw(ctx context.Context, req domain.WithdrawRequest) (domain.WithdrawResult, error) {
	w, err := t.client.Withdraw(ctx, clients.BTSEWithdrawRequest{
		Currency: btseCurrency(req.Asset, req.Network),
		Address:  req.Address,
		Amount:   req.Amount.String(),
	})
	if err != nil {
		var statusErr *clients.HTTPStatusError
		if errors.As(err, &statusErr) {
			return domain.WithdrawResult{Success: false, Message: statusErr.Body}, nil
		}
		return domain.WithdrawResult{}, errors.Wrap(err, "failed to withdraw from btse")
	}

	return domain.WithdrawResult{Success: true, ID: w.WithdrawID, ActualAmount: req.Amount, TxFee: decimal.Zero}, nil
}

func (t *BTSETrader) GetDepositAddress(ctx context.Context, asset, network string) (domain.DepositAddress, error) {
	addr, err := t.client.DepositAddress(ctx, btseCurrency(asset, network))
	if err != nil {
		return domain.DepositAddress{}, errors.Wrapf(domain.ErrNoDepositAddress, "btse %s/%s: %v", asset, network, err)
	}
	return domain.DepositAddress{Asset: asset, Network: network, Address: addr.Address}, nil
}

// btseCurrency BTSE names networked currencies ASSET-NETWORK, e.g. USDT-ERC20.
func btseCurrency(asset, network string) string {
	if network == "" || strings.EqualFold(asset, network) {
		return asset
	}
	return asset + "-" + strings.ToUpper(network)
}
