package observation

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// NormalizeAmount checks a token amount reported by chain data and returns its
// canonical decimal string. A bad amount means the chain data was decoded
// wrongly, so it is an error rather than a rejection.
func NormalizeAmount(raw string) (string, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("invalid token amount %q: %w", raw, err)
	}
	if amount.IsNegative() {
		return "", fmt.Errorf("negative token amount %q", raw)
	}
	if !amount.Equal(amount.Truncate(0)) {
		return "", fmt.Errorf("fractional token amount %q", raw)
	}
	return amount.String(), nil
}
