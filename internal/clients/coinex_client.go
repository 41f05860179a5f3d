package clients

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// DefaultCoinExBaseURL production REST endpoint.
const DefaultCoinExBaseURL = "https://api.coinex.com"

// CoinExClient CoinEx spot REST API (v1 public market data, v2 signed account endpoints).
type CoinExClient struct {
	rest *restClient
}

// NewCoinExClient creates a client. Empty credentials give a public-data-only client.
func NewCoinExClient(apiKey, apiSecret, baseURL string) *CoinExClient {
	if baseURL == "" {
		baseURL = DefaultCoinExBaseURL
	}

	var sign signFunc
	if apiKey != "" && apiSecret != "" {
		sign = coinexSigner(apiKey, apiSecret, func() time.Time { return time.Now() })
	}

	return &CoinExClient{rest: newRESTClient("coinex", baseURL, sign)}
}

// coinexSigner hex HMAC-SHA256 over method + path?query + body + timestamp(ms).
func coinexSigner(apiKey, apiSecret string, now func() time.Time) signFunc {
	return func(h http.Header, method, path, rawQuery string, body []byte) {
		ts := strconv.FormatInt(now().UnixMilli(), 10)

		requestPath := path
		if rawQuery != "" {
			requestPath += "?" + rawQuery
		}

		mac := hmac.New(sha256.New, []byte(apiSecret))
		mac.Write([]byte(method + requestPath + string(body) + ts))

		h.Set("X-COINEX-KEY", apiKey)
		h.Set("X-COINEX-SIGN", strings.ToLower(hex.EncodeToString(mac.Sum(nil))))
		h.Set("X-COINEX-TIMESTAMP", ts)
	}
}

type coinexEnvelope[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

func (e coinexEnvelope[T]) err(op string) error {
	if e.Code == 0 {
		return nil
	}
	return &CoinExAPIError{Op: op, Code: e.Code, Message: e.Message}
}

// CoinExAPIError non-zero response code.
type CoinExAPIError struct {
	Op      string
	Code    int
	Message string
}

func (e *CoinExAPIError) Error() string {
	return "coinex " + e.Op + ": " + e.Message + " (code " + strconv.Itoa(e.Code) + ")"
}

// CoinExTicker v1 ticker.
type CoinExTicker struct {
	Last decimal.Decimal `json:"last"`
	Buy  decimal.Decimal `json:"buy"`
	Sell decimal.Decimal `json:"sell"`
}

// Ticker returns last/best bid/best ask for a market such as XMRUSDT.
func (c *CoinExClient) Ticker(ctx context.Context, market string) (CoinExTicker, error) {
	var resp coinexEnvelope[struct {
		Ticker CoinExTicker `json:"ticker"`
	}]
	if err := c.rest.get(ctx, "/v1/market/ticker", url.Values{"market": {market}}, false, &resp); err != nil {
		return CoinExTicker{}, err
	}
	if err := resp.err("ticker"); err != nil {
		return CoinExTicker{}, err
	}
	return resp.Data.Ticker, nil
}

// CoinExFeeRate trade fee rates as fractions (0.002 = 0.2%).
type CoinExFeeRate struct {
	Market    string          `json:"market"`
	MakerRate decimal.Decimal `json:"maker_rate"`
	TakerRate decimal.Decimal `json:"taker_rate"`
}

// TradeFeeRate returns the account's spot fee rate for market.
func (c *CoinExClient) TradeFeeRate(ctx context.Context, market string) (CoinExFeeRate, error) {
	var resp coinexEnvelope[CoinExFeeRate]
	q := url.Values{"market_type": {"SPOT"}, "market": {market}}
	if err := c.rest.get(ctx, "/v2/account/trade-fee-rate", q, true, &resp); err != nil {
		return CoinExFeeRate{}, err
	}
	if err := resp.err("trade fee rate"); err != nil {
		return CoinExFeeRate{}, err
	}
	return resp.Data, nil
}

// CoinExAssetConfig per-asset withdrawal configuration.
type CoinExAssetConfig struct {
	Asset         string          `json:"asset"`
	Chain         string          `json:"chain"`
	WithdrawTxFee decimal.Decimal `json:"withdraw_tx_fee"`
	CanWithdraw   bool            `json:"can_withdraw"`
	CanDeposit    bool            `json:"can_deposit"`
}

// AssetConfig returns the public asset configuration keyed by ASSET or ASSET-CHAIN.
func (c *CoinExClient) AssetConfig(ctx context.Context) (map[string]CoinExAssetConfig, error) {
	var resp coinexEnvelope[map[string]CoinExAssetConfig]
	if err := c.rest.get(ctx, "/v1/common/asset/config", nil, false, &resp); err != nil {
		return nil, err
	}
	if err := resp.err("asset config"); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// CoinExBalance spot balance entry.
type CoinExBalance struct {
	Ccy       string          `json:"ccy"`
	Available decimal.Decimal `json:"available"`
	Frozen    decimal.Decimal `json:"frozen"`
}

// SpotBalance returns spot balances filtered to ccy.
func (c *CoinExClient) SpotBalance(ctx context.Context, ccy string) ([]CoinExBalance, error) {
	var resp coinexEnvelope[[]CoinExBalance]
	if err := c.rest.get(ctx, "/v2/assets/spot/balance", url.Values{"ccy": {ccy}}, true, &resp); err != nil {
		return nil, err
	}
	if err := resp.err("spot balance"); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// CoinExOrderRequest v2 spot order. For market buys Amount is in quote currency.
type CoinExOrderRequest struct {
	Market     string `json:"market"`
	MarketType string `json:"market_type"`
	Side       string `json:"side"`
	Type       string `json:"type"`
	Amount     string `json:"amount"`
	ClientID   string `json:"client_id,omitempty"`
}

// CoinExOrder order as returned on placement.
type CoinExOrder struct {
	OrderID      int64           `json:"order_id"`
	Market       string          `json:"market"`
	Side         string          `json:"side"`
	Amount       decimal.Decimal `json:"amount"`
	FilledAmount decimal.Decimal `json:"filled_amount"`
	FilledValue  decimal.Decimal `json:"filled_value"`
	BaseFee      decimal.Decimal `json:"base_fee"`
	QuoteFee     decimal.Decimal `json:"quote_fee"`
}

// PlaceOrder places a spot order.
func (c *CoinExClient) PlaceOrder(ctx context.Context, req CoinExOrderRequest) (CoinExOrder, error) {
	if req.MarketType == "" {
		req.MarketType = "SPOT"
	}
	var resp coinexEnvelope[CoinExOrder]
	if err := c.rest.post(ctx, "/v2/spot/order", req, &resp); err != nil {
		return CoinExOrder{}, err
	}
	if err := resp.err("place order"); err != nil {
		return CoinExOrder{}, err
	}
	return resp.Data, nil
}

// CoinExWithdrawRequest on-chain withdrawal.
type CoinExWithdrawRequest struct {
	Ccy       string `json:"ccy"`
	ToAddress string `json:"to_address"`
	Chain     string `json:"chain,omitempty"`
	Amount    string `json:"amount"`
}

// CoinExWithdrawal withdrawal record.
type CoinExWithdrawal struct {
	WithdrawID   int64           `json:"withdraw_id"`
	ActualAmount decimal.Decimal `json:"actual_amount"`
	TxFee        decimal.Decimal `json:"tx_fee"`
	Status       string          `json:"status"`
}

// Withdraw submits a withdrawal.
func (c *CoinExClient) Withdraw(ctx context.Context, req CoinExWithdrawRequest) (CoinExWithdrawal, error) {
	var resp coinexEnvelope[CoinExWithdrawal]
	if err := c.rest.post(ctx, "/v2/assets/withdraw", req, &resp); err != nil {
		return CoinExWithdrawal{}, err
	}
	if err := resp.err("withdraw"); err != nil {
		return CoinExWithdrawal{}, err
	}
	return resp.Data, nil
}

// CoinExDepositAddress deposit address.
type CoinExDepositAddress struct {
	Address string `json:"address"`
	Memo    string `json:"memo"`
}

// DepositAddress returns the deposit address for ccy on chain.
func (c *CoinExClient) DepositAddress(ctx context.Context, ccy, chain string) (CoinExDepositAddress, error) {
	var resp coinexEnvelope[CoinExDepositAddress]
	q := url.Values{"ccy": {ccy}, "chain": {chain}}
	if err := c.rest.get(ctx, "/v2/assets/deposit-address", q, true, &resp); err != nil {
		return CoinExDepositAddress{}, err
	}
	if err := resp.err("deposit address"); err != nil {
		return CoinExDepositAddress{}, err
	}
	if resp.Data.Address == "" {
		return CoinExDepositAddress{}, errors.Errorf("coinex returned empty deposit address for %s/%s", ccy, chain)
	}
	return resp.Data, nil
}
