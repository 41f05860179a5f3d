// Package domain defines core data structures used throughout the arbitrage scanner.
package domain

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Pair cryptocurrency trading pair.
type Pair struct {
	// From base currency symbol.
	From string
	// To quote currency symbol.
	To string
}

// String returns the string representation.
func (p Pair) String() string {
	return fmt.Sprintf("%s_%s", p.From, p.To)
}

// Symbol returns the concatenated symbol representation.
func (p Pair) Symbol() string {
	return fmt.Sprintf("%s%s", p.From, p.To)
}

// Dashed returns the BASE-QUOTE market symbol used by BTSE and CoinEx v1.
func (p Pair) Dashed() string {
	return fmt.Sprintf("%s-%s", p.From, p.To)
}

// WithBase returns a copy of the pair with the base currency replaced.
func (p Pair) WithBase(base string) Pair {
	return Pair{From: base, To: p.To}
}

// ParsePair parses "BASE_QUOTE", "BASE-QUOTE" or "BASE/QUOTE".
func ParsePair(s string) (Pair, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for _, sep := range []string{"_", "-", "/"} {
		parts := strings.Split(s, sep)
		if len(parts) != 2 {
			continue
		}
		if parts[0] == "" || parts[1] == "" {
			break
		}
		return Pair{From: parts[0], To: parts[1]}, nil
	}

	return Pair{}, errors.Errorf("invalid pair %q, expected BASE_QUOTE", s)
}
