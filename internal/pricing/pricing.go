// Package pricing holds the price arithmetic shared by the catalog, basket
// and order layers. All amounts are decimal currency values.
package pricing

import (
	"github.com/shopspring/decimal"

	pkgerrors "github.com/atelierno/storefront-backend/pkg/errors"
)

var hundred = decimal.NewFromInt(100)

// ErrInvalidDiscount rejects discount percentages outside [0, 100].
var ErrInvalidDiscount = pkgerrors.New(pkgerrors.CodeValidation, "discount percent must be between 0 and 100")

// CurrentPrice derives the selling price from a base price and a discount
// percent: base minus base/100*discount. A zero discount returns the base
// price unchanged.
func CurrentPrice(base decimal.Decimal, discountPercent int) (decimal.Decimal, error) {
	if discountPercent < 0 || discountPercent > 100 {
		return decimal.Zero, ErrInvalidDiscount
	}
	if discountPercent == 0 {
		return base, nil
	}
	discount := base.Div(hundred).Mul(decimal.NewFromInt(int64(discountPercent)))
	return base.Sub(discount).Round(2), nil
}

// LineTotal prices a line as quantity times the captured unit price.
func LineTotal(quantity int, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
}
