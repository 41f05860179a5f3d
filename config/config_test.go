package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vadiminshakov/arbscan/internal/domain"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"PROFIT_THRESHOLD", "TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "DISCORD_WEBHOOK_URL", "REDIS_ADDR", "COINEX_API_KEY"} {
		t.Setenv(k, "")
	}
}

func TestParse_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Parse(nil)
	require.NoError(t, err)

	assert.Equal(t, domain.VariantDirect, cfg.Variant)
	assert.True(t, cfg.Amount.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, []string{"XMR"}, cfg.Tokens)
	assert.Equal(t, []string{"btse", "coinex"}, cfg.Exchanges)
	assert.True(t, cfg.ScanOnly)
	assert.Equal(t, DefaultPollInterval, cfg.PollInterval)
	assert.Equal(t, []domain.Pair{{From: "XMR", To: "USDT"}}, cfg.Pairs())
}

func TestParse_Positional(t *testing.T) {
	clearEnv(t)
	cfg, err := Parse([]string{"--debug", "--exchanges", "BTSE,coinex,binance", "250", "trump", "false"})
	require.NoError(t, err)

	assert.True(t, cfg.Amount.Equal(decimal.NewFromInt(250)))
	assert.Equal(t, []string{"TRUMP"}, cfg.Tokens)
	assert.False(t, cfg.ScanOnly)
	assert.True(t, cfg.Debug)
	assert.Equal(t, []string{"btse", "coinex", "binance"}, cfg.Exchanges)
}

func TestParse_InvalidArgs(t *testing.T) {
	clearEnv(t)
	tests := []struct {
		name string
		args []string
	}{
		{"amount", []string{"ten"}},
		{"scanonly", []string{"10", "XMR", "maybe"}},
		{"negative amount", []string{"-5"}},
		{"too many", []string{"1", "XMR", "true", "extra"}},
		{"variant", []string{"--variant", "quad"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.args)
			assert.Error(t, err)
		})
	}
}

const yamlConfig = `
variant: chain
amount: "100"
chains:
  - [TRUMP_USDT, TOWER_USDT]
exchanges: [btse, coinex]
scan_only: false
profit_threshold: "1.5"
poll_interval: 30s
settlement:
  timeout: 10m
  network: erc20
  networks:
    XMR: XMR
triangular:
  start: "50"
  velocity_threshold: "0.001"
trading_fees:
  CoinEx: "0.2"
withdrawal_fees:
  btse:
    usdt: "1"
renames:
  coinex:
    TRUMP: MAGATRUMP
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "arbscan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestParse_Yaml(t *testing.T) {
	clearEnv(t)
	cfg, err := Parse([]string{"--config", writeConfig(t, yamlConfig)})
	require.NoError(t, err)

	assert.Equal(t, domain.VariantChain, cfg.Variant)
	require.Len(t, cfg.Chains, 1)
	assert.Equal(t, []domain.Pair{{From: "TRUMP", To: "USDT"}, {From: "TOWER", To: "USDT"}}, cfg.Chains[0])
	assert.False(t, cfg.ScanOnly)
	assert.True(t, cfg.ProfitThreshold.Equal(decimal.RequireFromString("1.5")))
	assert.Equal(t, 30*time.Second, cfg.PollInterval)
	assert.Equal(t, DefaultTokenDelay, cfg.TokenDelay)
	assert.Equal(t, 10*time.Minute, cfg.Settlement.Timeout)
	assert.Equal(t, "ERC20", cfg.Settlement.Network)
	assert.Equal(t, "XMR", cfg.Settlement.Networks["XMR"])
	assert.True(t, cfg.Triangular.VelocityThreshold.Equal(decimal.RequireFromString("0.001")))
	assert.True(t, cfg.TradingFees["coinex"].Equal(decimal.RequireFromString("0.2")))
	assert.True(t, cfg.WithdrawalFees["btse"]["USDT"].Equal(decimal.NewFromInt(1)))
	assert.Equal(t, "MAGATRUMP", cfg.Renames["coinex"]["TRUMP"])
	assert.Nil(t, cfg.DefaultWithdrawalFee)
}

func TestParse_DefaultWithdrawalFee(t *testing.T) {
	clearEnv(t)
	cfg, err := Parse([]string{"--config", writeConfig(t, "default_withdrawal_fee: \"0\"\n")})
	require.NoError(t, err)
	require.NotNil(t, cfg.DefaultWithdrawalFee)
	assert.True(t, cfg.DefaultWithdrawalFee.IsZero())

	_, err = Parse([]string{"--config", writeConfig(t, "default_withdrawal_fee: \"-1\"\n")})
	assert.ErrorContains(t, err, "default_withdrawal_fee")
}

func TestParse_YamlErrors(t *testing.T) {
	clearEnv(t)
	_, err := Parse([]string{"--config", writeConfig(t, "amount: abc\n")})
	assert.ErrorContains(t, err, "amount")

	_, err = Parse([]string{"--config", writeConfig(t, "variant: chain\nchains: [[XMR]]\n")})
	assert.Error(t, err)

	_, err = Parse([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")})
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PROFIT_THRESHOLD", "3")
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("COINEX_API_KEY", "key")

	cfg := Default()
	require.NoError(t, ApplyEnv(&cfg))
	assert.True(t, cfg.ProfitThreshold.Equal(decimal.NewFromInt(3)))
	assert.Equal(t, "token", cfg.Notify.TelegramToken)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "key", cfg.Credentials.CoinExKey)

	t.Setenv("PROFIT_THRESHOLD", "lots")
	assert.Error(t, ApplyEnv(&cfg))
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	tri := Default()
	tri.Variant = domain.VariantTriangular
	assert.Error(t, tri.Validate())
	tri.TriangularExchanges = []string{"binance"}
	assert.NoError(t, tri.Validate())

	one := Default()
	one.Exchanges = []string{"btse"}
	assert.Error(t, one.Validate())

	chain := Default()
	chain.Variant = domain.VariantChain
	assert.Error(t, chain.Validate())
	chain.Chains = [][]domain.Pair{{{From: "TRUMP", To: "USDT"}, {From: "ETH", To: "BTC"}}}
	assert.Error(t, chain.Validate())
	chain.Chains = [][]domain.Pair{{{From: "TRUMP", To: "USDT"}, {From: "TOWER", To: "USDT"}}}
	assert.NoError(t, chain.Validate())
}
