package collector

import (
	"context"
	"math"
	"time"

	"MacroDash/internal/calculator"
	"MacroDash/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
// It implements both PriceFetcher and MacroFetcher.
type MockFetcher struct {
	Prices []model.PriceObservation
	Series map[string][]model.RawPoint
	Err    error
	Months int // length of generated data when Prices/Series are nil

	PriceCalls  int
	SeriesCalls int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchMonthly(_ context.Context, _ string, start time.Time) ([]model.PriceObservation, error) {
	m.PriceCalls++
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Prices != nil {
		out := append([]model.PriceObservation(nil), m.Prices...)
		calculator.ApplyMonthlyReturns(out)
		return out, nil
	}
	out := generateMockPrices(start, m.months())
	calculator.ApplyMonthlyReturns(out)
	return out, nil
}

func (m *MockFetcher) FetchSeries(_ context.Context, seriesID string) ([]model.RawPoint, error) {
	m.SeriesCalls++
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Series != nil {
		return m.Series[seriesID], nil
	}
	return generateMockSeries(seriesID, HistoryStart, m.months()), nil
}

func (m *MockFetcher) months() int {
	if m.Months > 0 {
		return m.Months
	}
	return 24
}

func generateMockPrices(start time.Time, count int) []model.PriceObservation {
	obs := make([]model.PriceObservation, count)
	for i := 0; i < count; i++ {
		t := calculator.MonthEnd(start.AddDate(0, i, 0))
		obs[i] = model.PriceObservation{
			Time:     t,
			AdjClose: 2000 * (1 + 0.008*float64(i) + 0.03*math.Sin(float64(i)/2)),
		}
	}
	return obs
}

func generateMockSeries(seriesID string, start time.Time, count int) []model.RawPoint {
	points := make([]model.RawPoint, count)
	for i := 0; i < count; i++ {
		t := time.Date(start.Year(), start.Month()+time.Month(i), 1, 0, 0, 0, 0, time.UTC)
		var v float64
		switch seriesID {
		case model.SeriesUnemployment:
			v = 5.5 - 0.05*float64(i) + 0.2*math.Cos(float64(i)/3)
		case model.SeriesCPI:
			v = 234 * math.Pow(1.002, float64(i))
		case model.SeriesFedFunds:
			v = 0.1 + 0.04*float64(i)
		}
		points[i] = model.RawPoint{Time: t, Value: v}
	}
	return points
}
