package setup

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/vadiminshakov/arbscan/config"
	"github.com/vadiminshakov/arbscan/internal/domain"
)

// DefaultFile where the wizard writes the generated config.
const DefaultFile = "arbscan.gen.yaml"

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(1, 2).
			Bold(true).
			MarginBottom(1)

	stepStyle = lipgloss.NewStyle().
			Foreground(special).
			Bold(true).
			MarginTop(1).
			MarginBottom(0)
)

// Answers collected by the wizard.
type Answers struct {
	Variant         string
	Exchanges       []string
	Tokens          string
	Chains          string
	Amount          string
	ProfitThreshold string
	PollInterval    string
	ScanOnly        bool
	Paper           bool
}

func defaultAnswers() Answers {
	return Answers{
		Variant:         string(domain.VariantDirect),
		Exchanges:       []string{"btse", "coinex"},
		Tokens:          config.DefaultToken,
		Amount:          "10",
		ProfitThreshold: "0",
		PollInterval:    config.DefaultPollInterval.String(),
		ScanOnly:        true,
	}
}

// RunTUI launches the terminal configuration wizard and writes DefaultFile.
func RunTUI() error {
	a := defaultAnswers()
	var confirm bool

	screen("STEP 1: VARIANT")
	fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render("Find price gaps across exchanges.\n"))
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("What should be scanned?").
				Options(
					huh.NewOption("Direct (buy on one exchange, sell on another)", string(domain.VariantDirect)),
					huh.NewOption("Chain (several pairs in a row)", string(domain.VariantChain)),
					huh.NewOption("Triangular (three pairs on one exchange)", string(domain.VariantTriangular)),
				).
				Value(&a.Variant),
		),
	).Run()
	if err != nil {
		return err
	}

	screen("STEP 2: EXCHANGES")
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Select exchanges").
				Options(
					huh.NewOption("BTSE", "btse").Selected(true),
					huh.NewOption("CoinEx", "coinex").Selected(true),
					huh.NewOption("Binance", "binance"),
					huh.NewOption("Bybit", "bybit"),
					huh.NewOption("Hyperliquid", "hyperliquid"),
				).
				Value(&a.Exchanges).
				Validate(func(s []string) error {
					if len(s) == 0 {
						return errors.New("select at least one exchange")
					}
					return nil
				}),
		),
	).Run()
	if err != nil {
		return err
	}

	screen("STEP 3: ASSETS")
	var assetField huh.Field
	switch domain.Variant(a.Variant) {
	case domain.VariantChain:
		assetField = huh.NewInput().
			Title("Chain").
			Description("Pairs with the same quote, separated by spaces (e.g. TRUMP_USDT TOWER_USDT)").
			Value(&a.Chains).
			Validate(validateChain)
	case domain.VariantTriangular:
		assetField = huh.NewNote().
			Title("Triangular routes").
			Description("Routes are discovered from the exchange markets.")
	default:
		assetField = huh.NewInput().
			Title("Tokens").
			Description("Comma separated (e.g. XMR,ETH)").
			Value(&a.Tokens).
			Validate(func(s string) error {
				if len(splitList(s)) == 0 {
					return errors.New("tokens cannot be empty")
				}
				return nil
			})
	}
	if err = huh.NewForm(huh.NewGroup(assetField)).Run(); err != nil {
		return err
	}

	screen("STEP 4: AMOUNTS")
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Amount").
				Description("Quote currency spent per scan (e.g. 10)").
				Value(&a.Amount).
				Validate(validateAmount),
			huh.NewInput().
				Title("Profit threshold").
				Description("Minimum net profit in quote currency").
				Value(&a.ProfitThreshold).
				Validate(validateThreshold),
			huh.NewInput().
				Title("Poll interval").
				Description("Duration string (e.g. 10s, 1m)").
				Value(&a.PollInterval).
				Validate(func(s string) error {
					_, err := time.ParseDuration(s)
					return err
				}),
		),
	).Run()
	if err != nil {
		return err
	}

	screen("STEP 5: EXECUTION")
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Scan only?").
				Description("Report opportunities without trading").
				Value(&a.ScanOnly),
			huh.NewConfirm().
				Title("Paper trading?").
				Description("Simulate orders and withdrawals in memory").
				Value(&a.Paper),
		),
	).Run()
	if err != nil {
		return err
	}

	screen("FINAL CONFIRMATION")
	fmt.Println(lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(1).Render(a.summary()))

	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save Configuration?").
				Affirmative("Yes, save").
				Negative("No, exit").
				Value(&confirm),
		),
	).Run()
	if err != nil {
		return err
	}
	if !confirm {
		return errors.New("setup cancelled by user")
	}

	if err := Write(DefaultFile, a); err != nil {
		return err
	}

	fmt.Println(lipgloss.NewStyle().Foreground(special).Render(
		fmt.Sprintf("\n✓ Configuration saved to %s\nRun: arbscan --config %s", DefaultFile, DefaultFile)))
	return nil
}

// Write renders the answers as yaml into path.
func Write(path string, a Answers) error {
	tmp, err := a.ConfigTmp()
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(tmp)
	if err != nil {
		return errors.Wrap(err, "failed to generate yaml")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(err, "failed to save config file")
	}
	return nil
}

// ConfigTmp converts the answers into the yaml config shape.
func (a Answers) ConfigTmp() (config.ConfigTmp, error) {
	variant, err := domain.ParseVariant(a.Variant)
	if err != nil {
		return config.ConfigTmp{}, err
	}
	pollInterval, err := time.ParseDuration(a.PollInterval)
	if err != nil {
		return config.ConfigTmp{}, errors.Wrap(err, "invalid poll interval")
	}
	scanOnly := a.ScanOnly

	tmp := config.ConfigTmp{
		Variant:         string(variant),
		Amount:          a.Amount,
		ProfitThreshold: a.ProfitThreshold,
		PollInterval:    pollInterval,
		ScanOnly:        &scanOnly,
		Paper:           a.Paper,
	}

	if variant != domain.VariantTriangular && len(a.Exchanges) < 2 {
		return config.ConfigTmp{}, errors.Errorf("%s variant needs at least two exchanges", variant)
	}

	switch variant {
	case domain.VariantChain:
		if err := validateChain(a.Chains); err != nil {
			return config.ConfigTmp{}, err
		}
		tmp.Chains = [][]string{upperAll(splitList(a.Chains))}
		tmp.Exchanges = a.Exchanges
	case domain.VariantTriangular:
		tmp.TriangularExchanges = a.Exchanges
	default:
		tmp.Tokens = upperAll(splitList(a.Tokens))
		tmp.Exchanges = a.Exchanges
	}

	return tmp, nil
}

func (a Answers) summary() string {
	assets := a.Tokens
	if a.Variant == string(domain.VariantChain) {
		assets = a.Chains
	}
	return fmt.Sprintf(
		"Variant: %s\nExchanges: %s\nAssets: %s\nAmount: %s\nThreshold: %s\nInterval: %s\nScan only: %t\nPaper: %t\n",
		a.Variant, strings.Join(a.Exchanges, ", "), assets, a.Amount, a.ProfitThreshold, a.PollInterval, a.ScanOnly, a.Paper,
	)
}

func screen(step string) {
	fmt.Print("\033[H\033[2J") // clear screen
	fmt.Println(headerStyle.Render("ARBSCAN CONFIG WIZARD"))
	fmt.Println(stepStyle.Render(step))
}

func validateAmount(s string) error {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return errors.New("must be a valid number")
	}
	if !d.IsPositive() {
		return errors.New("must be greater than zero")
	}
	return nil
}

func validateThreshold(s string) error {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return errors.New("must be a valid number")
	}
	if d.IsNegative() {
		return errors.New("must not be negative")
	}
	return nil
}

func validateChain(s string) error {
	pairs := splitList(s)
	if len(pairs) < 2 {
		return errors.New("a chain needs at least two pairs")
	}
	var quote string
	for _, s := range pairs {
		p, err := domain.ParsePair(s)
		if err != nil {
			return err
		}
		if quote == "" {
			quote = p.To
		}
		if p.To != quote {
			return errors.Errorf("all pairs must be quoted in %s", quote)
		}
	}
	return nil
}

func splitList(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' '
	})
}

func upperAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToUpper(s)
	}
	return out
}
