package domain

import "github.com/pkg/errors"

var (
	// ErrUnavailable a quote, fee or balance could not be obtained.
	ErrUnavailable = errors.New("data unavailable")
	// ErrUnsupported the venue does not implement the operation.
	ErrUnsupported = errors.New("operation not supported by exchange")
	// ErrInsufficientQuotes fewer than two venues produced a usable rate.
	ErrInsufficientQuotes = errors.New("insufficient quotes")
	// ErrOrderRejected the exchange refused an order.
	ErrOrderRejected = errors.New("order rejected")
	// ErrWithdrawRejected the exchange refused a withdrawal.
	ErrWithdrawRejected = errors.New("withdrawal rejected")
	// ErrNoDepositAddress no deposit address is configured for the asset/network.
	ErrNoDepositAddress = errors.New("deposit address unavailable")
	// ErrSettlementTimeout withdrawn funds did not arrive within the deadline.
	ErrSettlementTimeout = errors.New("settlement timeout")
)

// IsUnavailable reports whether err means the value cannot be provided, as opposed to a failed call.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable) || errors.Is(err, ErrUnsupported)
}
