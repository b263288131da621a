package calculator

import (
	"math"

	"MacroDash/internal/model"
)

// PctChange returns v[i]/v[i-1] - 1 for each element. The first element, and
// any element whose own or previous value is NaN or whose previous value is
// zero, is NaN.
func PctChange(values []float64) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		if i == 0 {
			out[i] = math.NaN()
			continue
		}
		prev, cur := values[i-1], values[i]
		if math.IsNaN(prev) || math.IsNaN(cur) || prev == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = cur/prev - 1
	}
	return out
}

// InflationRate returns the month-over-month percent change of a CPI series.
func InflationRate(cpi []float64) []float64 {
	out := PctChange(cpi)
	for i, v := range out {
		if !math.IsNaN(v) {
			out[i] = v * 100
		}
	}
	return out
}

// ApplyMonthlyReturns fills the Return field of each observation in place.
func ApplyMonthlyReturns(obs []model.PriceObservation) {
	closes := make([]float64, len(obs))
	for i, o := range obs {
		closes[i] = o.AdjClose
	}
	for i, r := range PctChange(closes) {
		obs[i].Return = r
	}
}
