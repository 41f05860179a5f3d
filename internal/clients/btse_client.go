package clients

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// DefaultBTSEBaseURL production spot REST endpoint.
const DefaultBTSEBaseURL = "https://api.btse.com/spot"

// BTSEClient BTSE spot REST API v3.2.
type BTSEClient struct {
	rest *restClient
}

// NewBTSEClient creates a client. Empty credentials give a public-data-only client.
func NewBTSEClient(apiKey, apiSecret, baseURL string) *BTSEClient {
	if baseURL == "" {
		baseURL = DefaultBTSEBaseURL
	}

	var sign signFunc
	if apiKey != "" && apiSecret != "" {
		sign = btseSigner(apiKey, apiSecret, func() time.Time { return time.Now() })
	}

	return &BTSEClient{rest: newRESTClient("btse", baseURL, sign)}
}

// btseSigner hex HMAC-SHA384 over path + nonce(ms) + body; the query string is not signed.
func btseSigner(apiKey, apiSecret string, now func() time.Time) signFunc {
	return func(h http.Header, _ string, path, _ string, body []byte) {
		nonce := strconv.FormatInt(now().UnixMilli(), 10)

		mac := hmac.New(sha512.New384, []byte(apiSecret))
		mac.Write([]byte(path + nonce + string(body)))

		h.Set("request-api", apiKey)
		h.Set("request-nonce", nonce)
		h.Set("request-sign", hex.EncodeToString(mac.Sum(nil)))
	}
}

// BTSEPrice price endpoint entry.
type BTSEPrice struct {
	Symbol     string          `json:"symbol"`
	LastPrice  decimal.Decimal `json:"lastPrice"`
	IndexPrice decimal.Decimal `json:"indexPrice"`
}

// Price returns the last price for a market such as XMR-USDT.
func (c *BTSEClient) Price(ctx context.Context, symbol string) (BTSEPrice, error) {
	var prices []BTSEPrice
	if err := c.rest.get(ctx, "/api/v3.2/price", url.Values{"symbol": {symbol}}, false, &prices); err != nil {
		return BTSEPrice{}, err
	}
	if len(prices) == 0 {
		return BTSEPrice{}, errors.Errorf("btse API returned empty prices for %s", symbol)
	}
	return prices[0], nil
}

// BTSEMarket market summary entry.
type BTSEMarket struct {
	Symbol     string          `json:"symbol"`
	Base       string          `json:"base"`
	Quote      string          `json:"quote"`
	Active     bool            `json:"active"`
	Last       decimal.Decimal `json:"last"`
	LowestAsk  decimal.Decimal `json:"lowestAsk"`
	HighestBid decimal.Decimal `json:"highestBid"`
}

// MarketSummary lists all spot markets.
func (c *BTSEClient) MarketSummary(ctx context.Context) ([]BTSEMarket, error) {
	var markets []BTSEMarket
	if err := c.rest.get(ctx, "/api/v3.2/market_summary", nil, false, &markets); err != nil {
		return nil, err
	}
	return markets, nil
}

// BTSEBookLevel one order book level.
type BTSEBookLevel struct {
	Price decimal.Decimal `json:"price"`
	Size  decimal.Decimal `json:"size"`
}

// BTSEOrderBook order book snapshot; buyQuote are bids, sellQuote asks.
type BTSEOrderBook struct {
	Symbol    string          `json:"symbol"`
	BuyQuote  []BTSEBookLevel `json:"buyQuote"`
	SellQuote []BTSEBookLevel `json:"sellQuote"`
}

// OrderBook returns the order book for symbol.
func (c *BTSEClient) OrderBook(ctx context.Context, symbol string) (BTSEOrderBook, error) {
	var book BTSEOrderBook
	if err := c.rest.get(ctx, "/api/v3.2/orderbook", url.Values{"symbol": {symbol}}, false, &book); err != nil {
		return BTSEOrderBook{}, err
	}
	return book, nil
}

// BTSEFee account fee for a market, as fractions.
type BTSEFee struct {
	Symbol   string          `json:"symbol"`
	MakerFee decimal.Decimal `json:"makerFee"`
	TakerFee decimal.Decimal `json:"takerFee"`
}

// Fees returns the account's fee rates for symbol.
func (c *BTSEClient) Fees(ctx context.Context, symbol string) (BTSEFee, error) {
	var fees []BTSEFee
	if err := c.rest.get(ctx, "/api/v3.2/user/fees", url.Values{"symbol": {symbol}}, true, &fees); err != nil {
		return BTSEFee{}, err
	}
	for _, f := range fees {
		if f.Symbol == symbol {
			return f, nil
		}
	}
	return BTSEFee{}, errors.Errorf("btse API returned no fee for %s", symbol)
}

// BTSEWallet wallet entry.
type BTSEWallet struct {
	Currency  string          `json:"currency"`
	Total     decimal.Decimal `json:"total"`
	Available decimal.Decimal `json:"available"`
}

// Wallet returns wallet balances, optionally filtered by currency.
func (c *BTSEClient) Wallet(ctx context.Context, currency string) ([]BTSEWallet, error) {
	var q url.Values
	if currency != "" {
		q = url.Values{"currency": {currency}}
	}
	var wallets []BTSEWallet
	if err := c.rest.get(ctx, "/api/v3.2/user/wallet", q, true, &wallets); err != nil {
		return nil, err
	}
	return wallets, nil
}

// BTSEOrderRequest market order, Size in base currency.
type BTSEOrderRequest struct {
	Symbol      string `json:"symbol"`
	Side        string `json:"side"`
	Type        string `json:"type"`
	Size        string `json:"size"`
	ClOrderID   string `json:"clOrderID,omitempty"`
	TxType      string `json:"txType,omitempty"`
	TimeInForce string `json:"time_in_force,omitempty"`
}

// BTSEOrder order placement response entry. Status 2 (order inserted) and 4 (fully filled) are success codes.
type BTSEOrder struct {
	Status       int             `json:"status"`
	Symbol       string          `json:"symbol"`
	OrderID      string          `json:"orderID"`
	ClOrderID    string          `json:"clOrderID"`
	Side         string          `json:"side"`
	Size         decimal.Decimal `json:"size"`
	FillSize     decimal.Decimal `json:"fillSize"`
	AvgFillPrice decimal.Decimal `json:"averageFillPrice"`
	Message      string          `json:"message"`
}

// PlaceOrder submits an order.
func (c *BTSEClient) PlaceOrder(ctx context.Context, req BTSEOrderRequest) (BTSEOrder, error) {
	if req.Type == "" {
		req.Type = "MARKET"
	}
	var orders []BTSEOrder
	if err := c.rest.post(ctx, "/api/v3.2/order", req, &orders); err != nil {
		return BTSEOrder{}, err
	}
	if len(orders) == 0 {
		return BTSEOrder{}, errors.New("btse API returned empty order response")
	}
	return orders[0], nil
}

// BTSEWithdrawRequest withdrawal request. Currency carries the network, e.g. USDT-ERC20.
type BTSEWithdrawRequest struct {
	Currency string `json:"currency"`
	Address  string `json:"address"`
	Tag      string `json:"tag,omitempty"`
	Amount   string `json:"amount"`
}

// BTSEWithdrawal withdrawal response.
type BTSEWithdrawal struct {
	WithdrawID string `json:"withdraw_id"`
}

// Withdraw submits a withdrawal.
func (c *BTSEClient) Withdraw(ctx context.Context, req BTSEWithdrawRequest) (BTSEWithdrawal, error) {
	var resp BTSEWithdrawal
	if err := c.rest.post(ctx, "/api/v3.2/user/wallet/withdraw", req, &resp); err != nil {
		return BTSEWithdrawal{}, err
	}
	return resp, nil
}

// BTSEAddress deposit address entry.
type BTSEAddress struct {
	Address string `json:"address"`
	Created int64  `json:"created"`
}

// DepositAddress returns the first deposit address for currency (e.g. USDT-ERC20).
func (c *BTSEClient) DepositAddress(ctx context.Context, currency string) (BTSEAddress, error) {
	var addrs []BTSEAddress
	if err := c.rest.get(ctx, "/api/v3.2/user/wallet/address", url.Values{"currency": {currency}}, true, &addrs); err != nil {
		return BTSEAddress{}, err
	}
	if len(addrs) == 0 || addrs[0].Address == "" {
		return BTSEAddress{}, errors.Errorf("btse returned no deposit address for %s", currency)
	}
	return addrs[0], nil
}
