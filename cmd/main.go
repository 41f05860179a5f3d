// Command arbscan scans crypto exchanges for arbitrage opportunities and,
// unless started in scan-only mode, executes them.
//
// Usage:
//
//	arbscan [--config arbscan.yaml] [--debug] [--paper] [amount] [token] [scanonly]
//	arbscan setup
//
// Credentials and notification channels are read from the environment or a .env file:
//
//	BINANCE_API_KEY, BINANCE_API_SECRET, BYBIT_API_KEY, BYBIT_API_SECRET,
//	COINEX_API_KEY, COINEX_API_SECRET, BTSE_API_KEY, BTSE_API_SECRET,
//	HYPERLIQUID_PRIVATE_KEY, TELEGRAM_BOT_TOKEN, TELEGRAM_CHAT_ID,
//	DISCORD_WEBHOOK_URL, PROFIT_THRESHOLD, REDIS_ADDR, REDIS_PASSWORD
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/vadiminshakov/arbscan/config"
	"github.com/vadiminshakov/arbscan/internal"
	"github.com/vadiminshakov/arbscan/internal/setup"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "setup" {
		if err := setup.RunTUI(); err != nil {
			log.Fatal(err)
		}
		return
	}

	cfg, err := config.Get()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := newLogger(cfg.Debug)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := internal.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to start", zap.Error(err))
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("failed to close resources", zap.Error(err))
		}
	}()

	logger.Info("arbscan started",
		zap.String("variant", string(cfg.Variant)),
		zap.Strings("exchanges", cfg.Exchanges),
		zap.Strings("tokens", cfg.Tokens),
		zap.String("amount", cfg.Amount.String()),
		zap.Bool("scan_only", cfg.ScanOnly),
		zap.Bool("paper", cfg.Paper))

	if err := app.Scanner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("scanner stopped", zap.Error(err))
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
