package domain

import "github.com/pkg/errors"

// Variant evaluation mode.
type Variant string

const (
	// VariantDirect two-leg arbitrage of one token between two exchanges.
	VariantDirect Variant = "direct"
	// VariantChain direct legs chained so each leg's proceeds fund the next.
	VariantChain Variant = "chain"
	// VariantTriangular same-exchange three-market cycle.
	VariantTriangular Variant = "triangular"
)

// ParseVariant validates a variant name; empty means direct.
func ParseVariant(s string) (Variant, error) {
	switch Variant(s) {
	case "", VariantDirect:
		return VariantDirect, nil
	case VariantChain, VariantTriangular:
		return Variant(s), nil
	default:
		return "", errors.Errorf("unknown variant %q", s)
	}
}
