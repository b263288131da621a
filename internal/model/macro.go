package model

import "time"

// FRED series identifiers used by the dashboard.
const (
	SeriesUnemployment = "UNRATE"
	SeriesCPI          = "CPIAUCSL"
	SeriesFedFunds     = "FEDFUNDS"
)

// MacroObservation is one month-end row of the resampled macro table.
// Missing values are NaN.
type MacroObservation struct {
	Time         time.Time
	Unemployment float64
	CPI          float64
	FedFunds     float64
	Inflation    float64 // CPI month-over-month change in percent
}

// RawPoint is a single dated value as returned by the macro provider.
type RawPoint struct {
	Time  time.Time
	Value float64
}
