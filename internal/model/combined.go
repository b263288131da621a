package model

import (
	"math"
	"time"
)

// Column names, in display order.
const (
	ColMonthlyReturn = "Monthly Return"
	ColUnemployment  = "Unemployment Rate"
	ColCPI           = "Inflation (CPI)"
	ColFedFunds      = "Interest Rate"
	ColInflation     = "Inflation Rate"
)

// Columns lists every numeric column of a CombinedRow.
var Columns = []string{ColMonthlyReturn, ColUnemployment, ColCPI, ColFedFunds, ColInflation}

// CombinedRow is one month present in both the price and the macro series.
type CombinedRow struct {
	Time          time.Time `json:"date"`
	MonthlyReturn float64   `json:"monthly_return"`
	Unemployment  float64   `json:"unemployment_rate"`
	CPI           float64   `json:"cpi"`
	FedFunds      float64   `json:"fed_funds_rate"`
	Inflation     float64   `json:"inflation_rate"`
}

// Values returns the row's numeric fields in Columns order.
func (r CombinedRow) Values() []float64 {
	return []float64{r.MonthlyReturn, r.Unemployment, r.CPI, r.FedFunds, r.Inflation}
}

// Complete reports whether every numeric field is defined.
func (r CombinedRow) Complete() bool {
	for _, v := range r.Values() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Dataset is the memoized result of one fetch cycle.
type Dataset struct {
	Rows      []CombinedRow `json:"rows"`
	FetchedAt time.Time     `json:"fetched_at"`
}

// CorrelationMatrix holds pairwise Pearson coefficients; Values[i][j]
// corresponds to Columns[i] x Columns[j]. NaN means undefined.
type CorrelationMatrix struct {
	Columns []string
	Values  [][]float64
}
