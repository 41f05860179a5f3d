package trader

import (
	"context"

	"github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/arbscan/internal/domain"
)

// BinanceTrader spot account operations on Binance.
type BinanceTrader struct {
	client *binance.Client
}

func NewBinanceTrader(client *binance.Client) *BinanceTrader {
	return &BinanceTrader{client: client}
}

func (t *BinanceTrader) GetBalance(ctx context.Context, asset string) (domain.Balance, error) {
	account, err := t.client.NewGetAccountService().Do(ctx)
	if err != nil {
		return domain.Balance{}, errors.Wrap(err, "failed to get binance account balance")
	}

	for _, b := range account.Balances {
		if b.Asset != asset {
			continue
		}
		free, err := decimal.NewFromString(b.Free)
		if err != nil {
			return domain.Balance{}, errors.Wrap(err, "failed to parse balance")
		}
		locked, err := decimal.NewFromString(b.Locked)
		if err != nil {
			return domain.Balance{}, errors.Wrap(err, "failed to parse locked balance")
		}
		return domain.Balance{Asset: asset, Free: free, Locked: locked}, nil
	}

	return domain.Balance{Asset: asset}, nil
}

// PlaceSpotOrder buys by quote notional and sells by base size.
func (t *BinanceTrader) PlaceSpotOrder(ctx context.Context, req domain.OrderRequest) (domain.OrderResult, error) {
	svc := t.client.NewCreateOrderService().
		Symbol(req.Pair.Symbol()).
		Type(binance.OrderTypeMarket).
		NewClientOrderID(req.ClientOrderID)

	if req.Side == domain.SideBuy {
		svc = svc.Side(binance.SideTypeBuy).QuoteOrderQty(req.Notional.String())
	} else {
		svc = svc.Side(binance.SideTypeSell).Quantity(req.Size.RoundFloor(4).String())
	}

	resp, err := svc.Do(ctx)
	if err != nil {
		var apiErr *common.APIError
		if errors.As(err, &apiErr) {
			return domain.OrderResult{Success: false, Message: apiErr.Message}, nil
		}
		return domain.OrderResult{}, errors.Wrap(err, "failed to place binance order")
	}

	filled, _ := decimal.NewFromString(resp.ExecutedQuantity)
	quote, _ := decimal.NewFromString(resp.CummulativeQuoteQuantity)
	fee := decimal.Zero
	for _, f := range resp.Fills {
		if c, err := decimal.NewFromString(f.Commission); err == nil {
			fee = fee.Add(c)
		}
	}

	success := resp.Status != binance.OrderStatusTypeRejected &&
		resp.Status != binance.OrderStatusTypeExpired &&
		resp.Status != binance.OrderStatusTypeCanceled

	return domain.OrderResult{
		Success:      success,
		OrderID:      resp.ClientOrderID,
		FilledAmount: filled,
		FilledQuote:  quote,
		Fee:          fee,
		Message:      string(resp.Status),
	}, nil
}

func (t *BinanceTrader) Withdraw(ctx context.Context, req domain.WithdrawRequest) (domain.WithdrawResult, error) {
	svc := t.client.NewCreateWithdrawService().
		Coin(req.Asset).
		Address(req.Address).
		Amount(req.Amount.String())
	if req.Network != "" {
		svc = svc.Network(req.Network)
	}

	resp, err := svc.Do(ctx)
	if err != nil {
		var apiErr *common.APIError
		if errors.As(err, &apiErr) {
			return domain.WithdrawResult{Success: false, Message: apiErr.Message}, nil
		}
		return domain.WithdrawResult{}, errors.Wrap(err, "failed to withdraw from binance")
	}

	return domain.WithdrawResult{Success: true, ID: resp.ID, ActualAmount: req.Amount}, nil
}

func (t *BinanceTrader) GetDepositAddress(ctx context.Context, asset, network string) (domain.DepositAddress, error) {
	svc := t.client.NewGetDepositAddressService().Coin(asset)
	if network != "" {
		svc = svc.Network(network)
	}

	resp, err := svc.Do(ctx)
	if err != nil {
		return domain.DepositAddress{}, errors.Wrap(err, "failed to get binance deposit address")
	}
	if resp.Address == "" {
		return domain.DepositAddress{}, errors.Wrapf(domain.ErrNoDepositAddress, "binance %s/%s", asset, network)
	}

	return domain.DepositAddress{Asset: asset, Network: network, Address: resp.Address, Memo: resp.Tag}, nil
}
