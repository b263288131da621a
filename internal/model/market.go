package model

import "time"

// PriceObservation is one month-end adjusted close of the equity index.
type PriceObservation struct {
	Time     time.Time
	AdjClose float64
	Return   float64 // NaN for the first observation
}
