package internal

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/vadiminshakov/arbscan/config"
	"github.com/vadiminshakov/arbscan/internal/cache/redis"
	"github.com/vadiminshakov/arbscan/internal/clients"
	"github.com/vadiminshakov/arbscan/internal/domain"
	"github.com/vadiminshakov/arbscan/internal/exchange"
	"github.com/vadiminshakov/arbscan/internal/services/aggregator"
	"github.com/vadiminshakov/arbscan/internal/services/evaluator"
	"github.com/vadiminshakov/arbscan/internal/services/executor"
	"github.com/vadiminshakov/arbscan/internal/services/fees"
	"github.com/vadiminshakov/arbscan/internal/services/notifier"
	"github.com/vadiminshakov/arbscan/internal/services/pricer"
	"github.com/vadiminshakov/arbscan/internal/services/trader"
	"github.com/vadiminshakov/arbscan/internal/storage/journal"
)

// paperSettleDelay how long a paper withdrawal takes to arrive.
const paperSettleDelay = 5 * time.Second

// App the wired scanner and the resources it owns.
type App struct {
	Scanner *Scanner
	Venues  exchange.Registry
	closers []func() error
}

// Close releases the journal and cache connections.
func (a *App) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// NewApp builds every component from cfg.
func NewApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	app := &App{}
	fail := func(err error) (*App, error) {
		_ = app.Close()
		return nil, err
	}

	var ledger *trader.PaperLedger
	if cfg.Paper {
		ledger = trader.NewPaperLedger(paperSettleDelay)
	}

	names := append(append([]string(nil), cfg.Exchanges...), cfg.TriangularExchanges...)
	registry := exchange.Registry{}
	scanVenues := make([]exchange.Venue, 0, len(cfg.Exchanges))
	for _, name := range names {
		if _, ok := registry[name]; ok {
			continue
		}
		v, err := newVenue(name, cfg, ledger, logger)
		if err != nil {
			return fail(errors.Wrapf(err, "create venue %s", name))
		}
		registry[name] = v
	}
	for _, name := range cfg.Exchanges {
		v := registry[name]
		if !cfg.ScanOnly && cfg.Variant == domain.VariantDirect && v.Trader == nil {
			return fail(errors.Errorf("venue %s cannot trade: set its API keys, enable paper mode or run scanonly", name))
		}
		scanVenues = append(scanVenues, v)
	}
	app.Venues = registry

	resolverOpts := feeOptions(cfg)
	if cfg.Redis.Addr != "" {
		rc, err := redis.New(ctx, redis.ClientConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
		if err != nil {
			return fail(err)
		}
		app.closers = append(app.closers, rc.Close)
		resolverOpts = append(resolverOpts, fees.WithCache(redis.NewFeeCache(rc)))
		logger.Info("withdrawal fees cached in redis", zap.String("addr", cfg.Redis.Addr))
	}
	resolver := fees.NewResolver(logger.Named("fees"), resolverOpts...)

	agg := aggregator.New(scanVenues, cfg.TradingFees, logger.Named("aggregator"))
	eval := evaluator.New(agg, resolver, registry, logger.Named("evaluator"),
		evaluator.WithThreshold(cfg.ProfitThreshold),
		evaluator.WithTriangular(triangularConfig(cfg.Triangular)))

	store, err := journal.NewWALStore(cfg.JournalDir)
	if err != nil {
		return fail(err)
	}
	app.closers = append(app.closers, store.Close)

	// interfaces stay nil unless the component is enabled
	var exec opportunityExecutor
	if !cfg.ScanOnly {
		exec = executor.New(registry, store, executor.Config{
			PollInterval:      cfg.Settlement.PollInterval,
			SettlementTimeout: cfg.Settlement.Timeout,
			Network:           cfg.Settlement.Network,
			Networks:          cfg.Settlement.Networks,
		}, logger.Named("executor"))
	}

	scanner, err := NewScanner(ScannerConfig{
		Variant:          cfg.Variant,
		Amount:           cfg.Amount,
		Pairs:            cfg.Pairs(),
		Chains:           cfg.Chains,
		TriangularVenues: cfg.TriangularExchanges,
		Threshold:        cfg.ProfitThreshold,
		ScanOnly:         cfg.ScanOnly,
		PollInterval:     cfg.PollInterval,
		TokenDelay:       cfg.TokenDelay,
	}, eval, exec, newNotifier(cfg.Notify, logger), store, logger)
	if err != nil {
		return fail(err)
	}
	app.Scanner = scanner

	return app, nil
}

func feeOptions(cfg config.Config) []fees.Option {
	opts := []fees.Option{fees.WithOverrides(cfg.WithdrawalFees)}
	if cfg.DefaultWithdrawalFee != nil {
		opts = append(opts, fees.WithDefault(*cfg.DefaultWithdrawalFee))
	}
	if cfg.FeeCacheTTL > 0 {
		opts = append(opts, fees.WithTTL(cfg.FeeCacheTTL))
	}
	return opts
}

func triangularConfig(c config.Triangular) evaluator.TriangularConfig {
	out := evaluator.DefaultTriangularConfig()
	if c.Base != "" {
		out.Base = c.Base
	}
	if c.Start.IsPositive() {
		out.Start = c.Start
	}
	if c.VelocityDelay > 0 {
		out.VelocityDelay = c.VelocityDelay
	}
	if c.VelocityThreshold.IsPositive() {
		out.VelocityThreshold = c.VelocityThreshold
	}
	if c.Concurrency > 0 {
		out.Concurrency = c.Concurrency
	}
	return out
}

func newNotifier(c config.Notify, logger *zap.Logger) *notifier.Notifier {
	var senders []notifier.Sender
	if c.TelegramToken != "" && c.TelegramChatID != "" {
		senders = append(senders, notifier.NewTelegramSender(c.TelegramToken, c.TelegramChatID))
	}
	if c.DiscordWebhookURL != "" {
		senders = append(senders, notifier.NewDiscordSender(c.DiscordWebhookURL))
	}
	if len(senders) == 0 {
		logger.Info("no notification channel configured")
	}
	return notifier.New(logger.Named("notifier"), senders...)
}

// newVenue creates the pricer and, when credentials exist, the trader of one platform.
// In paper mode every venue trades against the shared ledger instead.
func newVenue(name string, cfg config.Config, ledger *trader.PaperLedger, logger *zap.Logger) (exchange.Venue, error) {
	creds := cfg.Credentials
	network := cfg.Settlement.Network
	if network == "" {
		network = executor.DefaultNetwork
	}

	v := exchange.Venue{Name: name, Symbols: venueSymbols(name, cfg.Renames)}
	switch name {
	case "binance":
		client := clients.NewBinanceClient(creds.BinanceKey, creds.BinanceSecret, "")
		v.Pricer = pricer.NewBinancePricer(client, network)
		if creds.BinanceKey != "" && creds.BinanceSecret != "" {
			v.Trader = trader.NewBinanceTrader(client)
		}
	case "bybit":
		client := clients.NewBybitClient(creds.BybitKey, creds.BybitSecret)
		v.Pricer = pricer.NewBybitPricer(client)
		if creds.BybitKey != "" && creds.BybitSecret != "" {
			v.Trader = trader.NewBybitTrader(client)
		}
	case "coinex":
		client := clients.NewCoinExClient(creds.CoinExKey, creds.CoinExSecret, "")
		v.Pricer = pricer.NewCoinExPricer(client, network)
		if creds.CoinExKey != "" && creds.CoinExSecret != "" {
			v.Trader = trader.NewCoinExTrader(client)
		}
	case "btse":
		client := clients.NewBTSEClient(creds.BTSEKey, creds.BTSESecret, "")
		v.Pricer = pricer.NewBTSEPricer(client)
		if creds.BTSEKey != "" && creds.BTSESecret != "" {
			v.Trader = trader.NewBTSETrader(client)
		}
	case "hyperliquid":
		if creds.HyperliquidPrivateKey == "" {
			return exchange.Venue{}, errors.New("HYPERLIQUID_PRIVATE_KEY must be set")
		}
		client, err := clients.NewHyperliquidClient(creds.HyperliquidPrivateKey, "")
		if err != nil {
			return exchange.Venue{}, err
		}
		v.Pricer = pricer.NewHyperliquidPricer(client.Info())
	default:
		return exchange.Venue{}, errors.Errorf("unsupported platform: %s", name)
	}

	if ledger != nil {
		paper, err := trader.NewPaperTrader(name, ledger, v.Pricer, logger.Named("paper"))
		if err != nil {
			return exchange.Venue{}, err
		}
		ledger.Fund(name, cfg.Quote, cfg.PaperBalance)
		v.Trader = paper
	}

	return v, nil
}

// venueSymbols merges configured renames over the built-in table.
func venueSymbols(name string, overrides map[string]map[string]string) exchange.SymbolMap {
	merged := exchange.SymbolMap{}
	for k, val := range exchange.DefaultRenames()[name] {
		merged[k] = val
	}
	for k, val := range overrides[name] {
		merged[k] = val
	}
	if len(merged) == 0 {
		return nil
	}
	return merged
}
