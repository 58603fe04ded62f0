package service

import (
	"hubln/internal/domain"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// roundMoney rounds to cents, half away from zero.
func roundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ApplyDiscount applies a percentage or fixed discount to price and clamps the
// result at zero.
func ApplyDiscount(price decimal.Decimal, discountType string, value decimal.Decimal) decimal.Decimal {
	var out decimal.Decimal
	switch discountType {
	case domain.DiscountPercentage:
		out = price.Mul(decimal.NewFromInt(1).Sub(value.Div(hundred)))
	case domain.DiscountFixed:
		out = price.Sub(value)
	default:
		out = price
	}
	if out.IsNegative() {
		return decimal.Zero
	}
	return roundMoney(out)
}
