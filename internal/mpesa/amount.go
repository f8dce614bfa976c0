package mpesa

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// parseAmount converts a currency token such as "1,500.00" to a decimal.
func parseAmount(token string) (decimal.Decimal, error) {
	clean := strings.ReplaceAll(token, ",", "")
	value, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrMalformedNumericToken, token)
	}
	return value, nil
}
