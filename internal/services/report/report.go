// Package report renders evaluation results as terminal tables and alert text.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/arbscan/internal/domain"
)

var (
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"})
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	gainStyle   = cellStyle.Foreground(lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"})
	lossStyle   = cellStyle.Foreground(lipgloss.Color("203"))
)

const places = 4

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(headers...)
}

func styled(profitRow int, profit decimal.Decimal) func(row, col int) lipgloss.Style {
	return func(row, col int) lipgloss.Style {
		switch {
		case row == table.HeaderRow:
			return headerStyle
		case row == profitRow && col == 1 && profit.IsNegative():
			return lossStyle
		case row == profitRow && col == 1:
			return gainStyle
		default:
			return cellStyle
		}
	}
}

// Opportunity renders the step-by-step amounts of a direct evaluation.
func Opportunity(o *domain.Opportunity) string {
	if o == nil {
		return ""
	}
	from, to := o.Pair.From, o.Pair.To
	rows := [][]string{
		{"buy on " + o.BuyExchange, o.BuyPrice.String() + " " + to},
		{"sell on " + o.SellExchange, o.SellPrice.String() + " " + to},
		{"trading amount", amount(o.TradingAmount, to)},
		{"tokens bought", amount(o.TokensBought, from)},
		{"after withdrawal", amount(o.TokensAfterWithdrawal, from)},
		{"quote at sell", amount(o.QuoteAtSell, to)},
		{"quote after withdrawal", amount(o.QuoteAfterWithdrawal, to)},
		{"net profit", fmt.Sprintf("%s %s (%s%%)", o.NetProfit.StringFixed(places), to, o.NetProfitPct.StringFixed(2))},
	}
	return newTable(o.Pair.String(), "value").
		Rows(rows...).
		StyleFunc(styled(len(rows)-1, o.NetProfit)).
		String()
}

// Chain renders one row per leg plus a total.
func Chain(c *domain.ChainResult) string {
	if c == nil {
		return ""
	}
	rows := make([][]string, 0, len(c.Legs)+1)
	for _, leg := range c.Legs {
		rows = append(rows, []string{
			leg.Pair.String(),
			leg.BuyExchange + " → " + leg.SellExchange,
			leg.TradingAmount.StringFixed(places),
			leg.QuoteAfterWithdrawal.StringFixed(places),
			leg.NetProfit.StringFixed(places),
		})
	}
	rows = append(rows, []string{"total", "", c.Start.StringFixed(places), c.Final.StringFixed(places), c.NetProfit.StringFixed(places)})

	return newTable("pair", "route", "in", "out", "profit").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if row == len(rows)-1 && col == 4 {
				if c.NetProfit.IsNegative() {
					return lossStyle
				}
				return gainStyle
			}
			return cellStyle
		}).
		String()
}

// Triangle renders the best route found on one exchange.
func Triangle(r *domain.TriangleResult) string {
	if r == nil {
		return ""
	}
	rows := make([][]string, 0, 6)
	for i, leg := range r.Route {
		v := "-"
		if !r.Velocities[i].IsZero() {
			v = r.Velocities[i].String()
		}
		rows = append(rows, []string{fmt.Sprintf("leg %d", i+1), leg.Pair + "  velocity " + v})
	}
	rows = append(rows,
		[]string{"start → final", r.Start.StringFixed(places) + " → " + r.Final.StringFixed(places)},
		[]string{"profit", r.Profit.StringFixed(6)},
		[]string{"feasible", fmt.Sprintf("%t", r.Feasible)},
	)
	return newTable(r.Exchange, r.Route.String()).
		Rows(rows...).
		StyleFunc(styled(len(rows)-2, r.Profit)).
		String()
}

func amount(d decimal.Decimal, asset string) string {
	return d.StringFixed(places) + " " + asset
}

// OpportunityAlert builds the notification for an actionable direct opportunity.
func OpportunityAlert(o *domain.Opportunity, at time.Time) (title, body string) {
	title = fmt.Sprintf("Arbitrage %s", o.Pair.String())
	var b strings.Builder
	fmt.Fprintf(&b, "%s, %s %s\n", at.UTC().Format(time.RFC3339), o.TradingAmount.String(), o.Pair.To)
	fmt.Fprintf(&b, "Buy on %s at %s\n", o.BuyExchange, o.BuyPrice.String())
	fmt.Fprintf(&b, "Sell on %s at %s\n", o.SellExchange, o.SellPrice.String())
	fmt.Fprintf(&b, "Profit %s %s (%s%%)", o.NetProfit.StringFixed(places), o.Pair.To, o.NetProfitPct.StringFixed(2))
	return title, b.String()
}

func ChainAlert(c *domain.ChainResult, at time.Time) (title, body string) {
	pairs := make([]string, 0, len(c.Legs))
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", at.UTC().Format(time.RFC3339))
	for _, leg := range c.Legs {
		pairs = append(pairs, leg.Pair.String())
		fmt.Fprintf(&b, "%s: buy %s sell %s, %s → %s\n", leg.Pair.String(), leg.BuyExchange, leg.SellExchange,
			leg.TradingAmount.StringFixed(places), leg.QuoteAfterWithdrawal.StringFixed(places))
	}
	fmt.Fprintf(&b, "Final profit %s (%s%%)", c.NetProfit.StringFixed(places), c.NetProfitPct.StringFixed(2))
	return "Chain arbitrage " + strings.Join(pairs, " + "), b.String()
}

func TriangleAlert(r *domain.TriangleResult, at time.Time) (title, body string) {
	title = fmt.Sprintf("Triangular arbitrage on %s", r.Exchange)
	body = fmt.Sprintf("%s\n%s\n%s → %s, profit %s",
		at.UTC().Format(time.RFC3339), r.Route.String(),
		r.Start.StringFixed(places), r.Final.StringFixed(places), r.Profit.StringFixed(6))
	return title, body
}

// ExecutionAlert summarises an execution outcome; err is the error Execute returned.
func ExecutionAlert(res *domain.ExecutionResult, err error) (title, body string) {
	if res == nil {
		return "Execution failed", err.Error()
	}
	e := res.Execution
	title = fmt.Sprintf("Execution %s %s", e.Pair, e.Status)
	var b strings.Builder
	fmt.Fprintf(&b, "id %s\n%s → %s, %s\nstep %s", e.ID, e.BuyExchange, e.SellExchange, e.Amount.String(), e.Step)
	if e.Status == domain.ExecutionDone {
		fmt.Fprintf(&b, "\nsettled %s, returned %s", res.Settled.String(), res.Returned.String())
	}
	if err != nil {
		fmt.Fprintf(&b, "\nerror: %v", err)
	}
	return title, b.String()
}
