package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// RouteLeg one market of a triangular route.
type RouteLeg struct {
	// Pair market symbol, BASE-QUOTE.
	Pair  string
	Base  string
	Quote string
}

// TriangleRoute three-market cycle starting and ending in the same currency.
type TriangleRoute [3]RouteLeg

// String returns "P1 → P2 → P3".
func (r TriangleRoute) String() string {
	return strings.Join([]string{r[0].Pair, r[1].Pair, r[2].Pair}, " → ")
}

// TriangleResult simulated outcome of one route.
type TriangleResult struct {
	Exchange string
	Route    TriangleRoute
	Start    decimal.Decimal
	Final    decimal.Decimal
	Profit   decimal.Decimal
	// Velocities per-leg |Δbid|+|Δask| measured by the velocity gate.
	Velocities [3]decimal.Decimal
	// Feasible false when any leg moved less than the velocity threshold.
	Feasible bool
}
