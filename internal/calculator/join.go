package calculator

import (
	"sort"
	"time"

	"MacroDash/internal/model"
)

// InnerJoin combines the price and macro series on month-end timestamps.
// Only months present on both sides are kept; rows with an undefined value
// (the first return, the first inflation rate, a month the macro provider has
// not published yet) are dropped. The result is ascending with no duplicates.
func InnerJoin(prices []model.PriceObservation, macro []model.MacroObservation) []model.CombinedRow {
	byMonth := make(map[time.Time]model.MacroObservation, len(macro))
	for _, m := range macro {
		byMonth[MonthEnd(m.Time)] = m
	}

	seen := make(map[time.Time]bool, len(prices))
	rows := make([]model.CombinedRow, 0, len(prices))
	for _, p := range prices {
		t := MonthEnd(p.Time)
		if seen[t] {
			continue
		}
		m, ok := byMonth[t]
		if !ok {
			continue
		}
		row := model.CombinedRow{
			Time:          t,
			MonthlyReturn: p.Return,
			Unemployment:  m.Unemployment,
			CPI:           m.CPI,
			FedFunds:      m.FedFunds,
			Inflation:     m.Inflation,
		}
		if !row.Complete() {
			continue
		}
		seen[t] = true
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Time.Before(rows[j].Time) })
	return rows
}

// Tail returns the last n rows (all rows when there are fewer).
func Tail(rows []model.CombinedRow, n int) []model.CombinedRow {
	if n <= 0 {
		return nil
	}
	if len(rows) <= n {
		return rows
	}
	return rows[len(rows)-n:]
}
