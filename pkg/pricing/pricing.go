// Package pricing holds the money rules every listing and cart view shares.
package pricing

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// DiscountPercent returns round((original - price) / original * 100).
// Halves round away from zero. Zero is returned when there is no discount.
func DiscountPercent(price, original int64) int {
	if original <= 0 || original <= price {
		return 0
	}
	saved := decimal.NewFromInt(original - price)
	pct := saved.Div(decimal.NewFromInt(original)).Mul(hundred).Round(0)
	return int(pct.IntPart())
}

// LineTotal multiplies a unit price by a quantity.
func LineTotal(price int64, quantity int) decimal.Decimal {
	if quantity <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(price).Mul(decimal.NewFromInt(int64(quantity)))
}

// FormatRupees renders a whole-rupee amount with the rupee sign and Indian digit grouping.
func FormatRupees(amount decimal.Decimal) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}
	digits := amount.Round(0).String()
	return sign + "₹" + groupIndian(digits)
}

// groupIndian inserts separators as 12,34,567: last three digits, then pairs.
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	var out []byte
	for i, r := range []byte(head) {
		if i > 0 && (len(head)-i)%2 == 0 {
			out = append(out, ',')
		}
		out = append(out, r)
	}
	return string(out) + "," + tail
}
