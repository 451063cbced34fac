// Package money provides the rounding and formatting rules shared by every
// cost computation. Totals are rounded to 2 decimal places, per-unit costs
// to 4; the extra precision matters when a per-ml cost is multiplied by
// small quantities.
package money

import "github.com/shopspring/decimal"

// Round2 rounds a monetary amount to 2 decimal places.
func Round2(v float64) float64 {
	return round(v, 2)
}

// Round4 rounds a per-unit cost to 4 decimal places.
func Round4(v float64) float64 {
	return round(v, 4)
}

// round goes through decimal so values like 2.675 round on their decimal
// representation rather than their nearest binary float.
func round(v float64, places int32) float64 {
	out, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return out
}
