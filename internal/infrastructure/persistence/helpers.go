package persistence

import (
	"github.com/shopspring/decimal"
)

// scanDecimal parses a nullable SUM() result into a decimal, treating
// NULL (no rows) as zero.
func scanDecimal(raw *string, dst *decimal.Decimal) error {
	if raw == nil || *raw == "" {
		*dst = decimal.Zero
		return nil
	}
	d, err := decimal.NewFromString(*raw)
	if err != nil {
		return err
	}
	*dst = d
	return nil
}
