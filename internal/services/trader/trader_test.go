package trader

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vadiminshakov/arbscan/internal/clients"
	"github.com/vadiminshakov/arbscan/internal/domain"
)

type recordedRequest struct {
	method string
	path   string
	query  string
	body   map[string]any
}

func newRecordingServer(t *testing.T, routes map[string]string) (*httptest.Server, *[]recordedRequest) {
	t.Helper()
	var seen []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{method: r.Method, path: r.URL.Path, query: r.URL.RawQuery}
		if raw, _ := io.ReadAll(r.Body); len(raw) > 0 {
			_ = json.Unmarshal(raw, &rec.body)
		}
		seen = append(seen, rec)

		body, ok := routes[r.Method+" "+r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"message":"not found"}`)
			return
		}
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, &seen
}

func TestCoinExTrader(t *testing.T) {
	srv, seen := newRecordingServer(t, map[string]string{
		"GET /v2/assets/spot/balance":    `{"code":0,"data":[{"ccy":"XMR","available":"1.5","frozen":"0.5"}]}`,
		"POST /v2/spot/order":            `{"code":0,"data":{"order_id":42,"filled_amount":"0.66","filled_value":"100","base_fee":"0.001","quote_fee":"0"}}`,
		"POST /v2/assets/withdraw":       `{"code":0,"data":{"withdraw_id":7,"actual_amount":"0.65","tx_fee":"0.01"}}`,
		"GET /v2/assets/deposit-address": `{"code":0,"data":{"address":"4Abc","memo":""}}`,
	})
	tr := NewCoinExTrader(clients.NewCoinExClient("key", "secret", srv.URL))
	ctx := context.Background()
	pair := domain.Pair{From: "XMR", To: "USDT"}

	t.Run("balance", func(t *testing.T) {
		b, err := tr.GetBalance(ctx, "XMR")
		require.NoError(t, err)
		assert.True(t, b.Free.Equal(dec("1.5")))
		assert.True(t, b.Locked.Equal(dec("0.5")))
	})

	t.Run("market buy spends notional", func(t *testing.T) {
		res, err := tr.PlaceSpotOrder(ctx, domain.OrderRequest{
			Pair:          pair,
			Side:          domain.SideBuy,
			Notional:      dec("100"),
			ClientOrderID: "0b6f6d3c-2f1e-4a57-9d4b-b7b1f0d4c1aa",
		})
		require.NoError(t, err)
		require.True(t, res.Success)
		assert.Equal(t, "42", res.OrderID)
		assert.True(t, res.FilledAmount.Equal(dec("0.66")))
		assert.True(t, res.Fee.Equal(dec("0.001")))

		last := (*seen)[len(*seen)-1]
		assert.Equal(t, "XMRUSDT", last.body["market"])
		assert.Equal(t, "buy", last.body["side"])
		assert.Equal(t, "100", last.body["amount"])
		assert.Len(t, last.body["client_id"], 32)
	})

	t.Run("withdraw", func(t *testing.T) {
		res, err := tr.Withdraw(ctx, domain.WithdrawRequest{Asset: "XMR", Amount: dec("0.66"), Address: "4Abc", Network: "XMR"})
		require.NoError(t, err)
		require.True(t, res.Success)
		assert.Equal(t, "7", res.ID)
		assert.True(t, res.ActualAmount.Equal(dec("0.65")))
	})

	t.Run("deposit address", func(t *testing.T) {
		addr, err := tr.GetDepositAddress(ctx, "XMR", "XMR")
		require.NoError(t, err)
		assert.Equal(t, "4Abc", addr.Address)
	})
}

func TestCoinExTrader_RejectedOrder(t *testing.T) {
	srv, _ := newRecordingServer(t, map[string]string{
		"POST /v2/spot/order": `{"code":3109,"message":"balance not enough","data":{}}`,
	})
	tr := NewCoinExTrader(clients.NewCoinExClient("key", "secret", srv.URL))

	res, err := tr.PlaceSpotOrder(context.Background(), domain.OrderRequest{
		Pair: domain.Pair{From: "XMR", To: "USDT"},
		Side: domain.SideSell,
		Size: dec("1"),
	})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "balance not enough")
}

func TestBTSETrader(t *testing.T) {
	srv, seen := newRecordingServer(t, map[string]string{
		"GET /api/v3.2/price":                 `[{"symbol":"XMR-USDT","lastPrice":"200"}]`,
		"GET /api/v3.2/user/wallet":           `[{"currency":"USDT","total":"120","available":"100"}]`,
		"POST /api/v3.2/order":                `[{"status":4,"orderID":"abc","fillSize":"0.5","averageFillPrice":"200"}]`,
		"POST /api/v3.2/user/wallet/withdraw": `{"withdraw_id":"w-1"}`,
		"GET /api/v3.2/user/wallet/address":   `[{"address":"0xabc","created":1}]`,
	})
	tr := NewBTSETrader(clients.NewBTSEClient("key", "secret", srv.URL))
	ctx := context.Background()

	t.Run("balance", func(t *testing.T) {
		b, err := tr.GetBalance(ctx, "USDT")
		require.NoError(t, err)
		assert.True(t, b.Free.Equal(dec("100")))
		assert.True(t, b.Locked.Equal(dec("20")))
	})

	t.Run("buy converts notional to size", func(t *testing.T) {
		res, err := tr.PlaceSpotOrder(ctx, domain.OrderRequest{
			Pair:     domain.Pair{From: "XMR", To: "USDT"},
			Side:     domain.SideBuy,
			Notional: dec("100"),
		})
		require.NoError(t, err)
		require.True(t, res.Success)
		assert.True(t, res.FilledQuote.Equal(dec("100")))

		last := (*seen)[len(*seen)-1]
		assert.Equal(t, "0.5", last.body["size"])
		assert.Equal(t, "XMR-USDT", last.body["symbol"])
	})

	t.Run("withdraw uses networked currency", func(t *testing.T) {
		res, err := tr.Withdraw(ctx, domain.WithdrawRequest{Asset: "USDT", Amount: dec("50"), Address: "0xdef", Network: "erc20"})
		require.NoError(t, err)
		require.True(t, res.Success)
		assert.Equal(t, "w-1", res.ID)

		last := (*seen)[len(*seen)-1]
		assert.Equal(t, "USDT-ERC20", last.body["currency"])
	})

	t.Run("deposit address", func(t *testing.T) {
		addr, err := tr.GetDepositAddress(ctx, "USDT", "ERC20")
		require.NoError(t, err)
		assert.Equal(t, "0xabc", addr.Address)
	})
}

func TestBTSETrader_RejectedStatus(t *testing.T) {
	srv, _ := newRecordingServer(t, map[string]string{
		"POST /api/v3.2/order": `[{"status":8,"orderID":"abc","message":"insufficient balance"}]`,
	})
	tr := NewBTSETrader(clients.NewBTSEClient("key", "secret", srv.URL))

	res, err := tr.PlaceSpotOrder(context.Background(), domain.OrderRequest{
		Pair: domain.Pair{From: "XMR", To: "USDT"},
		Side: domain.SideSell,
		Size: dec("1"),
	})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "insufficient balance", res.Message)
}

func TestBTSECurrency(t *testing.T) {
	assert.Equal(t, "USDT", btseCurrency("USDT", ""))
	assert.Equal(t, "XMR", btseCurrency("XMR", "xmr"))
	assert.Equal(t, "USDT-TRC20", btseCurrency("USDT", "trc20"))
}
