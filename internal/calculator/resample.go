package calculator

import (
	"math"
	"sort"
	"time"

	"MacroDash/internal/model"
)

// MonthEnd returns the last calendar day of t's month at UTC midnight.
func MonthEnd(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC)
}

// nextMonthEnd returns the month-end following the given month-end.
func nextMonthEnd(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month()+2, 0, 0, 0, 0, 0, time.UTC)
}

// ResampleMonthEnd collapses points to one value per calendar month, taking
// the last observation within the month. NaN points are ignored. The result
// maps each month-end to its value.
func ResampleMonthEnd(points []model.RawPoint) map[time.Time]float64 {
	sorted := make([]model.RawPoint, 0, len(points))
	for _, p := range points {
		if !math.IsNaN(p.Value) {
			sorted = append(sorted, p)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time.Before(sorted[j].Time) })

	out := make(map[time.Time]float64, len(sorted))
	for _, p := range sorted {
		out[MonthEnd(p.Time)] = p.Value
	}
	return out
}

// MonthGrid returns every month-end from the earliest to the latest key
// found across the given resampled series, inclusive and ascending.
func MonthGrid(series ...map[time.Time]float64) []time.Time {
	var first, last time.Time
	for _, s := range series {
		for t := range s {
			if first.IsZero() || t.Before(first) {
				first = t
			}
			if last.IsZero() || t.After(last) {
				last = t
			}
		}
	}
	if first.IsZero() {
		return nil
	}
	var grid []time.Time
	for t := first; !t.After(last); t = nextMonthEnd(t) {
		grid = append(grid, t)
	}
	return grid
}

// BuildMacroTable aligns the three raw macro series to a contiguous month-end
// grid and derives the inflation rate from CPI. Months without an observation
// for a column hold NaN.
func BuildMacroTable(unemployment, cpi, fedFunds []model.RawPoint) []model.MacroObservation {
	u := ResampleMonthEnd(unemployment)
	c := ResampleMonthEnd(cpi)
	f := ResampleMonthEnd(fedFunds)

	grid := MonthGrid(u, c, f)
	rows := make([]model.MacroObservation, len(grid))
	cpiValues := make([]float64, len(grid))
	for i, t := range grid {
		rows[i] = model.MacroObservation{
			Time:         t,
			Unemployment: lookup(u, t),
			CPI:          lookup(c, t),
			FedFunds:     lookup(f, t),
		}
		cpiValues[i] = rows[i].CPI
	}

	inflation := InflationRate(cpiValues)
	for i := range rows {
		rows[i].Inflation = inflation[i]
	}
	return rows
}

func lookup(m map[time.Time]float64, t time.Time) float64 {
	if v, ok := m[t]; ok {
		return v
	}
	return math.NaN()
}
