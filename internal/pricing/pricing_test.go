package pricing

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestCurrentPrice(t *testing.T) {
	cases := []struct {
		name     string
		base     string
		discount int
		want     string
	}{
		{name: "no discount returns base", base: "100.00", discount: 0, want: "100.00"},
		{name: "half off", base: "100.00", discount: 50, want: "50.00"},
		{name: "full discount", base: "100.00", discount: 100, want: "0.00"},
		{name: "rounds to cents", base: "19.99", discount: 15, want: "16.99"},
		{name: "small base", base: "0.10", discount: 33, want: "0.07"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			base := decimal.RequireFromString(tc.base)
			got, err := CurrentPrice(base, tc.discount)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.StringFixed(2) != tc.want {
				t.Fatalf("CurrentPrice(%s, %d) = %s, want %s", tc.base, tc.discount, got.StringFixed(2), tc.want)
			}
		})
	}
}

func TestCurrentPriceRejectsInvalidDiscount(t *testing.T) {
	base := decimal.RequireFromString("100.00")
	for _, discount := range []int{-1, 101, 1000} {
		if _, err := CurrentPrice(base, discount); !errors.Is(err, ErrInvalidDiscount) {
			t.Fatalf("discount %d: expected ErrInvalidDiscount, got %v", discount, err)
		}
	}
}

func TestLineTotal(t *testing.T) {
	unit := decimal.RequireFromString("16.99")
	got := LineTotal(3, unit)
	if got.StringFixed(2) != "50.97" {
		t.Fatalf("LineTotal(3, 16.99) = %s, want 50.97", got.StringFixed(2))
	}

	if total := LineTotal(0, unit); !total.IsZero() {
		t.Fatalf("zero quantity must price to zero, got %s", total)
	}
}
