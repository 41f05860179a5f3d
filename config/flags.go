package config

import (
	"flag"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/arbscan/internal/domain"
)

// Get builds the configuration from os.Args, .env and the environment.
func Get() (Config, error) {
	return Parse(os.Args[1:])
}

// Parse accepts `[--config file.yaml] [flags] [amount] [token] [scanonly]`.
// Positional arguments override the yaml values.
func Parse(args []string) (Config, error) {
	fs := flag.NewFlagSet("arbscan", flag.ContinueOnError)
	path := fs.String("config", "", "path to yaml config")
	debug := fs.Bool("debug", false, "development logging")
	paper := fs.Bool("paper", false, "execute against an in-memory paper ledger")
	variant := fs.String("variant", "", "direct, chain or triangular")
	exchanges := fs.String("exchanges", "", "comma separated venues, example: btse,coinex")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg := Default()
	if *path != "" {
		var err error
		if cfg, err = Load(*path); err != nil {
			return Config{}, err
		}
	}

	if err := applyPositional(&cfg, fs.Args()); err != nil {
		return Config{}, err
	}
	if *variant != "" {
		v, err := domain.ParseVariant(*variant)
		if err != nil {
			return Config{}, err
		}
		cfg.Variant = v
	}
	if *exchanges != "" {
		cfg.Exchanges = lower(strings.Split(*exchanges, ","))
	}
	cfg.Debug = *debug
	cfg.Paper = cfg.Paper || *paper

	if err := ApplyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func applyPositional(cfg *Config, args []string) error {
	if len(args) > 3 {
		return errors.Errorf("too many arguments: %v", args)
	}
	if len(args) > 0 {
		amount, err := decimal.NewFromString(args[0])
		if err != nil {
			return errors.Errorf("invalid amount provided: %s", args[0])
		}
		cfg.Amount = amount
	}
	if len(args) > 1 {
		cfg.Tokens = []string{strings.ToUpper(args[1])}
	}
	if len(args) > 2 {
		scanOnly, err := strconv.ParseBool(args[2])
		if err != nil {
			return errors.Errorf("invalid scanonly provided: %s", args[2])
		}
		cfg.ScanOnly = scanOnly
	}
	return nil
}
