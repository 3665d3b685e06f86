package mysql

import "github.com/shopspring/decimal"

// normalisePrice re-renders a DECIMAL column value as a fixed
// two-decimal string.
func normalisePrice(raw string) string {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return raw
	}
	return d.StringFixed(2)
}
