package utils

import (
	"fmt"
	"math"
)

// RoundMoney rounds a dollar amount half-up to two decimal places.
// Item tax amounts and order totals are the only places rounding is
// applied; intermediate multiplications stay unrounded.
func RoundMoney(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// FormatPrice formats a dollar amount for display, e.g. 26.99 -> "$26.99".
func FormatPrice(amount float64) string {
	return fmt.Sprintf("$%.2f", amount)
}
