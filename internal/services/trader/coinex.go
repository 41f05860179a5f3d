package trader

import (
	"context"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/vadiminshakov/arbscan/internal/clients"
	"github.com/vadiminshakov/arbscan/internal/domain"
)

// CoinExTrader spot account operations on CoinEx.
type CoinExTrader struct {
	client *clients.CoinExClient
}

func NewCoinExTrader(client *clients.CoinExClient) *CoinExTrader {
	return &CoinExTrader{client: client}
}

func (t *CoinExTrader) GetBalance(ctx context.Context, asset string) (domain.Balance, error) {
	balances, err := t.client.SpotBalance(ctx, asset)
	if err != nil {
		return domain.Balance{}, errors.Wrap(err, "failed to get coinex balance")
	}

	for _, b := range balances {
		if b.Ccy == asset {
			return domain.Balance{Asset: asset, Free: b.Available, Locked: b.Frozen}, nil
		}
	}

	return domain.Balance{Asset: asset}, nil
}

// PlaceSpotOrder market buys spend Notional quote, sells spend Size base.
func (t *CoinExTrader) PlaceSpotOrder(ctx context.Context, req domain.OrderRequest) (domain.OrderResult, error) {
	amount := req.Notional
	if req.Side == domain.SideSell {
		amount = req.Size
	}

	order, err := t.client.PlaceOrder(ctx, clients.CoinExOrderRequest{
		Market:   req.Pair.Symbol(),
		Side:     strings.ToLower(string(req.Side)),
		Type:     "market",
		Amount:   amount.String(),
		ClientID: clientID(req.ClientOrderID),
	})
	if err != nil {
		var apiErr *clients.CoinExAPIError
		if errors.As(err, &apiErr) {
			return domain.OrderResult{Success: false, Message: apiErr.Error()}, nil
		}
		return domain.OrderResult{}, errors.Wrap(err, "failed to place coinex order")
	}

	fee := order.QuoteFee
	if req.Side == domain.SideBuy {
		fee = order.BaseFee
	}

	return domain.OrderResult{
		Success:      true,
		OrderID:      strconv.FormatInt(order.OrderID, 10),
		FilledAmount: order.FilledAmount,
		FilledQuote:  order.FilledValue,
		Fee:          fee,
		Message:      "success",
	}, nil
}

func (t *CoinExTrader) Withdraw(ctx context.Context, req domain.WithdrawRequest) (domain.WithdrawResult, error) {
	w, err := t.client.Withdraw(ctx, clients.CoinExWithdrawRequest{
		Ccy:       req.Asset,
		ToAddress: req.Address,
		Chain:     req.Network,
		Amount:    req.Amount.String(),
	})
	if err != nil {
		var apiErr *clients.CoinExAPIError
		if errors.As(err, &apiErr) {
			return domain.WithdrawResult{Success: false, Message: apiErr.Error()}, nil
		}
		return domain.WithdrawResult{}, errors.Wrap(err, "failed to withdraw from coinex")
	}

	return domain.WithdrawResult{
		Success:      true,
		ID:           strconv.FormatInt(w.WithdrawID, 10),
		ActualAmount: w.ActualAmount,
		TxFee:        w.TxFee,
	}, nil
}

func (t *CoinExTrader) GetDepositAddress(ctx context.Context, asset, network string) (domain.DepositAddress, error) {
	addr, err := t.client.DepositAddress(ctx, asset, network)
	if err != nil {
		return domain.DepositAddress{}, errors.Wrapf(domain.ErrNoDepositAddress, "coinex %s/%s: %v", asset, network, err)
	}
	return domain.DepositAddress{Asset: asset, Network: network, Address: addr.Address, Memo: addr.Memo}, nil
}

// clientID CoinEx accepts at most 32 characters of [A-Za-z0-9_-].
func clientID(id string) string {
	id = strings.ReplaceAll(id, "-", "")
	if len(id) > 32 {
		id = id[:32]
	}
	return id
}
