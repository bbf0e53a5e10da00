// Package money rounds and formats currency amounts.
package money

import "github.com/shopspring/decimal"

// Round rounds to cents, half away from zero.
func Round(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// Format renders v with a fixed number of decimals.
func Format(v float64, places int32) string {
	return decimal.NewFromFloat(v).StringFixed(places)
}

// Percent returns part/whole*100, or zero when whole is zero.
func Percent(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	p, _ := decimal.NewFromFloat(part).Div(decimal.NewFromFloat(whole)).Mul(decimal.NewFromInt(100)).Float64()
	return p
}
