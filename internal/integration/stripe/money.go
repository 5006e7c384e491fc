package stripe

import "github.com/shopspring/decimal"

// ToMinorUnits converts a decimal major-unit amount to integer minor units
// (cents), rounding to the nearest cent.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// FromMinorUnits converts integer minor units back to a decimal major amount
func FromMinorUnits(minor int64) decimal.Decimal {
	return decimal.NewFromInt(minor).Div(decimal.NewFromInt(100))
}
