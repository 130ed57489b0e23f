package ddp

import "github.com/shopspring/decimal"

// RoundingPolicy maps a computed product price onto a display price.
type RoundingPolicy func(decimal.Decimal) decimal.Decimal

// RoundToNearest5 rounds to the nearest 5 currency units. This is the
// listing display convention, not numeric hygiene; callers may override
// it per invocation.
func RoundToNearest5(price decimal.Decimal) decimal.Decimal {
	five := decimal.NewFromInt(5)
	return price.Div(five).Round(0).Mul(five)
}

// RoundToCent rounds to two decimal places, for callers that want raw
// prices without the nearest-5 convention.
func RoundToCent(price decimal.Decimal) decimal.Decimal {
	return price.Round(2)
}
