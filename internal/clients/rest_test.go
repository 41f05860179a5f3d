package clients

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vadiminshakov/arbscan/pkg/retrier"
)

var fixedNow = func() time.Time { return time.UnixMilli(1700000000000) }

func fastRetries(c *restClient) {
	c.retrier = retrier.New(retrier.WithMaxRetries(2), retrier.WithFixedInterval(time.Millisecond))
}

func TestCoinExSigner(t *testing.T) {
	h := http.Header{}
	sign := coinexSigner("key", "secret", fixedNow)
	sign(h, http.MethodGet, "/v2/assets/spot/balance", "ccy=XMR", nil)

	mac := hmac.New(sha256.New, []byte("secret"))
	mac.Write([]byte("GET/v2/assets/spot/balance?ccy=XMR1700000000000"))

	assert.Equal(t, "key", h.Get("X-COINEX-KEY"))
	assert.Equal(t, "1700000000000", h.Get("X-COINEX-TIMESTAMP"))
	assert.Equal(t, hex.EncodeToString(mac.Sum(nil)), h.Get("X-COINEX-SIGN"))
}

func TestBTSESigner(t *testing.T) {
	h := http.Header{}
	sign := btseSigner("key", "secret", fixedNow)
	body := []byte(`{"symbol":"XMR-USDT"}`)
	sign(h, http.MethodPost, "/api/v3.2/order", "", body)

	mac := hmac.New(sha512.New384, []byte("secret"))
	mac.Write([]byte("/api/v3.2/order1700000000000" + string(body)))

	assert.Equal(t, "key", h.Get("request-api"))
	assert.Equal(t, "1700000000000", h.Get("request-nonce"))
	assert.Equal(t, hex.EncodeToString(mac.Sum(nil)), h.Get("request-sign"))
}

func TestRESTClient_GetRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = io.WriteString(w, `{"code":0,"message":"OK","data":{"ticker":{"last":"151.2","buy":"151.1","sell":"151.3"}}}`)
	}))
	defer srv.Close()

	c := NewCoinExClient("", "", srv.URL)
	fastRetries(c.rest)

	ticker, err := c.Ticker(context.Background(), "XMRUSDT")
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
	assert.True(t, ticker.Last.Equal(decimal.RequireFromString("151.2")))
	assert.True(t, ticker.Buy.Equal(decimal.RequireFromString("151.1")))
	assert.True(t, ticker.Sell.Equal(decimal.RequireFromString("151.3")))
}

func TestRESTClient_GetDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewBTSEClient("", "", srv.URL)
	fastRetries(c.rest)

	_, err := c.Price(context.Background(), "XMR-USDT")
	require.Error(t, err)

	var statusErr *HTTPStatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRESTClient_PostIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewCoinExClient("key", "secret", srv.URL)
	fastRetries(c.rest)

	_, err := c.PlaceOrder(context.Background(), CoinExOrderRequest{Market: "XMRUSDT", Side: "buy", Type: "market", Amount: "10"})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRESTClient_SignedWithoutCredentials(t *testing.T) {
	c := NewCoinExClient("", "", "http://127.0.0.1:1")
	_, err := c.SpotBalance(context.Background(), "USDT")
	assert.ErrorContains(t, err, "no credentials")
}

func TestCoinExClient_APIErrorCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("X-COINEX-SIGN"))
		assert.Equal(t, "ccy=USDT", r.URL.RawQuery)
		_, _ = io.WriteString(w, `{"code":3008,"message":"service busy","data":[]}`)
	}))
	defer srv.Close()

	c := NewCoinExClient("key", "secret", srv.URL)
	_, err := c.SpotBalance(context.Background(), "USDT")

	var apiErr *CoinExAPIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 3008, apiErr.Code)
}

func TestBTSEClient_OrderBook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3.2/orderbook", r.URL.Path)
		assert.Equal(t, "A-B", r.URL.Query().Get("symbol"))
		_, _ = io.WriteString(w, `{"symbol":"A-B","buyQuote":[{"price":"0.5","size":"10"}],"sellQuote":[{"price":"0.51","size":"4"}]}`)
	}))
	defer srv.Close()

	c := NewBTSEClient("", "", srv.URL)
	book, err := c.OrderBook(context.Background(), "A-B")
	require.NoError(t, err)
	require.Len(t, book.BuyQuote, 1)
	require.Len(t, book.SellQuote, 1)
	assert.True(t, book.BuyQuote[0].Price.Equal(decimal.RequireFromString("0.5")))
	assert.True(t, book.SellQuote[0].Price.Equal(decimal.RequireFromString("0.51")))
}
