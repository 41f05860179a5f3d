package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/vadiminshakov/arbscan/internal/domain"
)

const (
	DefaultAmount       = 10
	DefaultToken        = "XMR"
	DefaultQuote        = "USDT"
	DefaultPollInterval = 10 * time.Second
	DefaultTokenDelay   = 2 * time.Second
	DefaultJournalDir   = "./wal/executions"
)

var defaultExchanges = []string{"btse", "coinex"}

// Config runtime configuration of the scanner.
type Config struct {
	Variant domain.Variant
	Amount  decimal.Decimal
	Quote   string
	Tokens  []string

	// Chains pair sequences for the chain variant.
	Chains              [][]domain.Pair
	Exchanges           []string
	TriangularExchanges []string
	ScanOnly            bool
	Paper               bool
	PaperBalance        decimal.Decimal
	ProfitThreshold     decimal.Decimal
	PollInterval        time.Duration
	TokenDelay          time.Duration

	Settlement Settlement
	Triangular Triangular

	// TradingFees maker fee percent used when a venue does not report one.
	TradingFees          map[string]decimal.Decimal
	WithdrawalFees       map[string]map[string]decimal.Decimal
	// DefaultWithdrawalFee nil means the built-in fallback; zero is a valid configured value.
	DefaultWithdrawalFee *decimal.Decimal
	FeeCacheTTL          time.Duration
	Renames              map[string]map[string]string

	JournalDir  string
	Redis       Redis
	Notify      Notify
	Credentials Credentials
	Debug       bool
}

type Settlement struct {
	PollInterval time.Duration
	Timeout      time.Duration
	Network      string
	Networks     map[string]string
}

type Triangular struct {
	Base              string
	Start             decimal.Decimal
	VelocityDelay     time.Duration
	VelocityThreshold decimal.Decimal
	Concurrency       int
}

type Redis struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

type Notify struct {
	TelegramToken     string
	TelegramChatID    string
	DiscordWebhookURL string
}

// Credentials are read from the environment only.
type Credentials struct {
	BinanceKey, BinanceSecret string
	BybitKey, BybitSecret     string
	CoinExKey, CoinExSecret   string
	BTSEKey, BTSESecret       string
	HyperliquidPrivateKey     string
}

// ConfigTmp yaml representation; decimals are strings.
type ConfigTmp struct {
	Variant             string        `yaml:"variant,omitempty"`
	Amount              string        `yaml:"amount,omitempty"`
	Quote               string        `yaml:"quote,omitempty"`
	Tokens              []string      `yaml:"tokens,omitempty"`
	Chains              [][]string    `yaml:"chains,omitempty"`
	Exchanges           []string      `yaml:"exchanges,omitempty"`
	TriangularExchanges []string      `yaml:"triangular_exchanges,omitempty"`
	ScanOnly            *bool         `yaml:"scan_only,omitempty"`
	Paper               bool          `yaml:"paper,omitempty"`
	PaperBalance        string        `yaml:"paper_balance,omitempty"`
	ProfitThreshold     string        `yaml:"profit_threshold,omitempty"`
	PollInterval        time.Duration `yaml:"poll_interval,omitempty"`
	TokenDelay          time.Duration `yaml:"token_delay,omitempty"`

	Settlement SettlementTmp `yaml:"settlement,omitempty"`
	Triangular TriangularTmp `yaml:"triangular,omitempty"`

	TradingFees          map[string]string            `yaml:"trading_fees,omitempty"`
	WithdrawalFees       map[string]map[string]string `yaml:"withdrawal_fees,omitempty"`
	DefaultWithdrawalFee string                       `yaml:"default_withdrawal_fee,omitempty"`
	FeeCacheTTL          time.Duration                `yaml:"fee_cache_ttl,omitempty"`
	Renames              map[string]map[string]string `yaml:"renames,omitempty"`

	JournalDir  string `yaml:"journal_dir,omitempty"`
	RedisDB     int    `yaml:"redis_db,omitempty"`
	RedisPrefix string `yaml:"redis_prefix,omitempty"`
}

type SettlementTmp struct {
	PollInterval time.Duration     `yaml:"poll_interval,omitempty"`
	Timeout      time.Duration     `yaml:"timeout,omitempty"`
	Network      string            `yaml:"network,omitempty"`
	Networks     map[string]string `yaml:"networks,omitempty"`
}

type TriangularTmp struct {
	Base              string        `yaml:"base,omitempty"`
	Start             string        `yaml:"start,omitempty"`
	VelocityDelay     time.Duration `yaml:"velocity_delay,omitempty"`
	VelocityThreshold string        `yaml:"velocity_threshold,omitempty"`
	Concurrency       int           `yaml:"concurrency,omitempty"`
}

// Default returns the configuration used when nothing is specified: scan XMR_USDT for 10 USDT on btse and coinex.
func Default() Config {
	return Config{
		Variant:         domain.VariantDirect,
		Amount:          decimal.NewFromInt(DefaultAmount),
		Quote:           DefaultQuote,
		Tokens:          []string{DefaultToken},
		Exchanges:       append([]string(nil), defaultExchanges...),
		ScanOnly:        true,
		PaperBalance:    decimal.NewFromInt(1000),
		ProfitThreshold: decimal.Zero,
		PollInterval:    DefaultPollInterval,
		TokenDelay:      DefaultTokenDelay,
		JournalDir:      DefaultJournalDir,
		Redis:           Redis{Prefix: "arbscan:"},
	}
}

// Load reads a yaml file on top of the defaults.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "read config %s", path)
	}
	var tmp ConfigTmp
	if err := yaml.Unmarshal(raw, &tmp); err != nil {
		return Config{}, errors.Wrapf(err, "parse config %s", path)
	}
	return fromTmp(tmp)
}

func fromTmp(c ConfigTmp) (Config, error) {
	cfg := Default()
	var err error

	if cfg.Variant, err = domain.ParseVariant(c.Variant); err != nil {
		return Config{}, err
	}
	if err = setDecimal(&cfg.Amount, c.Amount, "amount"); err != nil {
		return Config{}, err
	}
	if c.Quote != "" {
		cfg.Quote = strings.ToUpper(c.Quote)
	}
	if len(c.Tokens) > 0 {
		cfg.Tokens = upper(c.Tokens)
	}
	for i, chain := range c.Chains {
		pairs := make([]domain.Pair, 0, len(chain))
		for _, s := range chain {
			p, err := domain.ParsePair(s)
			if err != nil {
				return Config{}, errors.Wrapf(err, "incorrect 'chains[%d]' param in yaml config", i)
			}
			pairs = append(pairs, p)
		}
		cfg.Chains = append(cfg.Chains, pairs)
	}
	if len(c.Exchanges) > 0 {
		cfg.Exchanges = lower(c.Exchanges)
	}
	cfg.TriangularExchanges = lower(c.TriangularExchanges)
	if c.ScanOnly != nil {
		cfg.ScanOnly = *c.ScanOnly
	}
	cfg.Paper = c.Paper
	if err = setDecimal(&cfg.PaperBalance, c.PaperBalance, "paper_balance"); err != nil {
		return Config{}, err
	}
	if err = setDecimal(&cfg.ProfitThreshold, c.ProfitThreshold, "profit_threshold"); err != nil {
		return Config{}, err
	}
	if c.PollInterval > 0 {
		cfg.PollInterval = c.PollInterval
	}
	if c.TokenDelay > 0 {
		cfg.TokenDelay = c.TokenDelay
	}

	cfg.Settlement = Settlement{
		PollInterval: c.Settlement.PollInterval,
		Timeout:      c.Settlement.Timeout,
		Network:      strings.ToUpper(c.Settlement.Network),
		Networks:     c.Settlement.Networks,
	}

	cfg.Triangular = Triangular{
		Base:          strings.ToUpper(c.Triangular.Base),
		VelocityDelay: c.Triangular.VelocityDelay,
		Concurrency:   c.Triangular.Concurrency,
	}
	if err = setDecimal(&cfg.Triangular.Start, c.Triangular.Start, "triangular.start"); err != nil {
		return Config{}, err
	}
	if err = setDecimal(&cfg.Triangular.VelocityThreshold, c.Triangular.VelocityThreshold, "triangular.velocity_threshold"); err != nil {
		return Config{}, err
	}

	if len(c.TradingFees) > 0 {
		cfg.TradingFees = make(map[string]decimal.Decimal, len(c.TradingFees))
		for venue, s := range c.TradingFees {
			d, err := decimal.NewFromString(s)
			if err != nil {
				return Config{}, errors.Wrapf(err, "incorrect 'trading_fees.%s' param in yaml config", venue)
			}
			cfg.TradingFees[strings.ToLower(venue)] = d
		}
	}
	if len(c.WithdrawalFees) > 0 {
		cfg.WithdrawalFees = make(map[string]map[string]decimal.Decimal, len(c.WithdrawalFees))
		for venue, assets := range c.WithdrawalFees {
			m := make(map[string]decimal.Decimal, len(assets))
			for asset, s := range assets {
				d, err := decimal.NewFromString(s)
				if err != nil {
					return Config{}, errors.Wrapf(err, "incorrect 'withdrawal_fees.%s.%s' param in yaml config", venue, asset)
				}
				m[strings.ToUpper(asset)] = d
			}
			cfg.WithdrawalFees[strings.ToLower(venue)] = m
		}
	}
	if c.DefaultWithdrawalFee != "" {
		fee, err := decimal.NewFromString(c.DefaultWithdrawalFee)
		if err != nil {
			return Config{}, errors.Wrap(err, "incorrect 'default_withdrawal_fee' param in yaml config (must be a decimal)")
		}
		if fee.IsNegative() {
			return Config{}, errors.Errorf("default_withdrawal_fee must not be negative, got %s", fee.String())
		}
		cfg.DefaultWithdrawalFee = &fee
	}
	cfg.FeeCacheTTL = c.FeeCacheTTL
	cfg.Renames = c.Renames

	if c.JournalDir != "" {
		cfg.JournalDir = c.JournalDir
	}
	cfg.Redis.DB = c.RedisDB
	if c.RedisPrefix != "" {
		cfg.Redis.Prefix = c.RedisPrefix
	}

	return cfg, nil
}

// ApplyEnv loads .env when present and applies environment overrides.
func ApplyEnv(cfg *Config) error {
	_ = godotenv.Load()

	if v := os.Getenv("PROFIT_THRESHOLD"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return errors.Wrapf(err, "invalid PROFIT_THRESHOLD %q", v)
		}
		cfg.ProfitThreshold = d
	}

	setStr(&cfg.Notify.TelegramToken, "TELEGRAM_BOT_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "DISCORD_WEBHOOK_URL")

	setStr(&cfg.Redis.Addr, "REDIS_ADDR")
	setStr(&cfg.Redis.Password, "REDIS_PASSWORD")

	creds := &cfg.Credentials
	setStr(&creds.BinanceKey, "BINANCE_API_KEY")
	setStr(&creds.BinanceSecret, "BINANCE_API_SECRET")
	setStr(&creds.BybitKey, "BYBIT_API_KEY")
	setStr(&creds.BybitSecret, "BYBIT_API_SECRET")
	setStr(&creds.CoinExKey, "COINEX_API_KEY")
	setStr(&creds.CoinExSecret, "COINEX_API_SECRET")
	setStr(&creds.BTSEKey, "BTSE_API_KEY")
	setStr(&creds.BTSESecret, "BTSE_API_SECRET")
	setStr(&creds.HyperliquidPrivateKey, "HYPERLIQUID_PRIVATE_KEY")

	return nil
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	if !c.Amount.IsPositive() {
		return errors.Errorf("amount must be positive, got %s", c.Amount.String())
	}
	if c.ProfitThreshold.IsNegative() {
		return errors.Errorf("profit threshold must not be negative, got %s", c.ProfitThreshold.String())
	}
	switch c.Variant {
	case domain.VariantDirect:
		if len(c.Tokens) == 0 {
			return errors.New("direct variant needs at least one token")
		}
		if len(c.Exchanges) < 2 {
			return errors.New("direct variant needs at least two exchanges")
		}
	case domain.VariantChain:
		if len(c.Chains) == 0 {
			return errors.New("chain variant needs at least one chain")
		}
		for i, chain := range c.Chains {
			for _, p := range chain {
				if p.To != chain[0].To {
					return errors.Errorf("chains[%d]: pairs must share a quote currency", i)
				}
			}
		}
		if len(c.Exchanges) < 2 {
			return errors.New("chain variant needs at least two exchanges")
		}
	case domain.VariantTriangular:
		if len(c.TriangularExchanges) == 0 {
			return errors.New("triangular variant needs triangular_exchanges")
		}
	}
	return nil
}

// Pairs returns the direct-variant pairs, one per token against the quote currency.
func (c Config) Pairs() []domain.Pair {
	pairs := make([]domain.Pair, 0, len(c.Tokens))
	for _, t := range c.Tokens {
		pairs = append(pairs, domain.Pair{From: t, To: c.Quote})
	}
	return pairs
}

func setDecimal(dst *decimal.Decimal, s, name string) error {
	if s == "" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return errors.Wrapf(err, "incorrect '%s' param in yaml config (must be a decimal)", name)
	}
	*dst = d
	return nil
}

func setStr(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

func upper(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, strings.ToUpper(strings.TrimSpace(s)))
	}
	return out
}

func lower(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, strings.ToLower(strings.TrimSpace(s)))
	}
	return out
}
