package collector

import (
	"context"
	"time"

	"MacroDash/internal/model"
)

// Fixed inputs of the dashboard.
const (
	IndexSymbol = "^GSPC"
)

// HistoryStart is the first month requested from the price provider.
var HistoryStart = time.Date(2015, time.January, 1, 0, 0, 0, 0, time.UTC)

// PriceFetcher retrieves monthly adjusted closes for an index.
type PriceFetcher interface {
	FetchMonthly(ctx context.Context, symbol string, start time.Time) ([]model.PriceObservation, error)
	Name() string
}

// MacroFetcher retrieves the raw observations of one macro series.
type MacroFetcher interface {
	FetchSeries(ctx context.Context, seriesID string) ([]model.RawPoint, error)
	Name() string
}
