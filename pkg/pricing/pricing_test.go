package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestDiscountPercent(t *testing.T) {
	tests := []struct {
		name     string
		price    int64
		original int64
		want     int
	}{
		{name: "rounds up from 18.75", price: 12999, original: 15999, want: 19},
		{name: "exact half rounds away from zero", price: 875, original: 1000, want: 13},
		{name: "rounds down", price: 1599, original: 1999, want: 20},
		{name: "no original price", price: 1599, original: 0, want: 0},
		{name: "original equals price", price: 1599, original: 1599, want: 0},
		{name: "original below price", price: 1599, original: 999, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DiscountPercent(tt.price, tt.original); got != tt.want {
				t.Fatalf("DiscountPercent(%d, %d) = %d, want %d", tt.price, tt.original, got, tt.want)
			}
		})
	}
}

func TestLineTotal(t *testing.T) {
	if got := LineTotal(3999, 3); !got.Equal(decimal.NewFromInt(11997)) {
		t.Fatalf("expected 11997, got %s", got)
	}
	if got := LineTotal(3999, 0); !got.IsZero() {
		t.Fatalf("expected zero for empty quantity, got %s", got)
	}
}

func TestFormatRupees(t *testing.T) {
	cases := map[int64]string{
		0:        "₹0",
		999:      "₹999",
		1599:     "₹1,599",
		12999:    "₹12,999",
		123456:   "₹1,23,456",
		12345678: "₹1,23,45,678",
		-4500:    "-₹4,500",
	}
	for amount, want := range cases {
		if got := FormatRupees(decimal.NewFromInt(amount)); got != want {
			t.Fatalf("FormatRupees(%d) = %q, want %q", amount, got, want)
		}
	}
}
