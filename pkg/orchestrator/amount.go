package orchestrator

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ParseUnits converts a human-readable decimal amount into an integer
// base-unit string using the token's decimals. Amounts with fractional
// remainder beyond the token's precision are rejected rather than truncated.
func ParseUnits(amount string, decimals uint8) (string, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return "", fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	if d.IsNegative() {
		return "", fmt.Errorf("amount %q is negative", amount)
	}
	scaled := d.Shift(int32(decimals))
	if !scaled.Equal(scaled.Truncate(0)) {
		return "", fmt.Errorf("amount %q has more than %d decimal places", amount, decimals)
	}
	return scaled.Truncate(0).String(), nil
}

// FormatUnits converts an integer base-unit string into a human-readable
// decimal amount using the token's decimals.
func FormatUnits(baseUnits string, decimals uint8) (string, error) {
	d, err := decimal.NewFromString(baseUnits)
	if err != nil {
		return "", fmt.Errorf("invalid base-unit amount %q: %w", baseUnits, err)
	}
	return d.Shift(-int32(decimals)).String(), nil
}
