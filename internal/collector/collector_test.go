package collector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MacroDash/internal/calculator"
	"MacroDash/internal/logging"
	"MacroDash/internal/model"
)

func firstOfMonth(y int, m time.Month) time.Time {
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

func TestCollector_Collect(t *testing.T) {
	mock := &MockFetcher{Months: 12}
	c := NewCollector(mock, mock, logging.Discard())

	ds, err := c.Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, ds.Rows, 11, "first month has no return")

	assert.Equal(t, calculator.MonthEnd(firstOfMonth(2015, 2)), ds.Rows[0].Time)
	for i, r := range ds.Rows {
		assert.True(t, r.Complete(), "row %d", i)
		if i > 0 {
			assert.True(t, ds.Rows[i-1].Time.Before(r.Time))
		}
	}
	assert.Equal(t, 1, mock.PriceCalls)
	assert.Equal(t, 3, mock.SeriesCalls)
	assert.False(t, ds.FetchedAt.IsZero())
}

func TestCollector_FixedInputs(t *testing.T) {
	c := NewCollector(&MockFetcher{}, &MockFetcher{}, nil)
	assert.Equal(t, "^GSPC", c.Symbol)
	assert.Equal(t, firstOfMonth(2015, 1), c.Start)
}

func TestCollector_PriceFailure(t *testing.T) {
	failing := &MockFetcher{Err: &model.FetchError{Source: "mock", Series: "^GSPC", Err: errors.New("timeout")}}
	macro := &MockFetcher{}
	c := NewCollector(failing, macro, logging.Discard())

	_, err := c.Collect(context.Background())
	assert.ErrorIs(t, err, model.ErrDataFetch)
	assert.Equal(t, 0, macro.SeriesCalls, "macro is not fetched after a price failure")
}

// partialMacro fails one series only.
type partialMacro struct {
	MockFetcher
	fail string
}

func (p *partialMacro) FetchSeries(ctx context.Context, id string) ([]model.RawPoint, error) {
	if id == p.fail {
		return nil, &model.FetchError{Source: "mock", Series: id, Err: errors.New("503")}
	}
	return p.MockFetcher.FetchSeries(ctx, id)
}

func TestCollector_PartialMacroFailureAborts(t *testing.T) {
	c := NewCollector(&MockFetcher{}, &partialMacro{fail: model.SeriesFedFunds}, logging.Discard())
	_, err := c.Collect(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrDataFetch)
	assert.Contains(t, err.Error(), model.SeriesFedFunds)
}

func TestCollector_EmptyPrices(t *testing.T) {
	c := NewCollector(&MockFetcher{Prices: []model.PriceObservation{}}, &MockFetcher{}, logging.Discard())
	_, err := c.Collect(context.Background())
	assert.ErrorIs(t, err, model.ErrDataFetch)
}

func TestCollector_NoOverlapIsAlignmentError(t *testing.T) {
	prices := &MockFetcher{Prices: []model.PriceObservation{
		{Time: calculator.MonthEnd(firstOfMonth(1990, 1)), AdjClose: 300},
		{Time: calculator.MonthEnd(firstOfMonth(1990, 2)), AdjClose: 310},
	}}
	c := NewCollector(prices, &MockFetcher{Months: 6}, logging.Discard())

	_, err := c.Collect(context.Background())
	assert.ErrorIs(t, err, model.ErrAlignment)
}

func TestCollector_JoinIsIntersection(t *testing.T) {
	prices := &MockFetcher{Prices: []model.PriceObservation{
		{Time: calculator.MonthEnd(firstOfMonth(2020, 1)), AdjClose: 100},
		{Time: calculator.MonthEnd(firstOfMonth(2020, 2)), AdjClose: 110},
		{Time: calculator.MonthEnd(firstOfMonth(2020, 3)), AdjClose: 99},
		{Time: calculator.MonthEnd(firstOfMonth(2020, 4)), AdjClose: 104},
	}}
	series := func(vals ...float64) []model.RawPoint {
		pts := make([]model.RawPoint, len(vals))
		for i, v := range vals {
			pts[i] = model.RawPoint{Time: firstOfMonth(2019, 12).AddDate(0, i, 0), Value: v}
		}
		return pts
	}
	macro := &MockFetcher{Series: map[string][]model.RawPoint{
		model.SeriesUnemployment: series(3.6, 3.5, 3.5, 4.4),
		model.SeriesCPI:          series(258, 259, 259.5, 258.2),
		model.SeriesFedFunds:     series(1.55, 1.55, 1.58, 0.65),
	}}
	c := NewCollector(prices, macro, logging.Discard())

	ds, err := c.Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, ds.Rows, 2, "macro ends in March; January has no return")
	assert.Equal(t, calculator.MonthEnd(firstOfMonth(2020, 2)), ds.Rows[0].Time)
	assert.InDelta(t, 0.10, ds.Rows[0].MonthlyReturn, 1e-12)
	assert.InDelta(t, -0.10, ds.Rows[1].MonthlyReturn, 1e-12)
	assert.Equal(t, 4.4, ds.Rows[1].Unemployment)
}
