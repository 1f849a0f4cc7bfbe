package model

import "github.com/shopspring/decimal"

// Round2 rounds a reported price to 2 decimal places. Intermediate
// band math stays in float64; rounding happens only at the reporting
// boundary.
func Round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// Round3 rounds a summary statistic to 3 decimal places.
func Round3(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(3).Float64()
	return f
}
