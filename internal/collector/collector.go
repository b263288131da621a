package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"MacroDash/internal/calculator"
	"MacroDash/internal/logging"
	"MacroDash/internal/model"
)

// Collector fetches both providers and combines them into one dataset.
type Collector struct {
	Prices PriceFetcher
	Macro  MacroFetcher
	Symbol string
	Start  time.Time
	Now    func() time.Time
	log    logrus.FieldLogger
}

// NewCollector creates a Collector for the fixed index and start date.
func NewCollector(prices PriceFetcher, macro MacroFetcher, log logrus.FieldLogger) *Collector {
	return &Collector{
		Prices: prices,
		Macro:  macro,
		Symbol: IndexSymbol,
		Start:  HistoryStart,
		Now:    time.Now,
		log:    logging.Component(log, "collector"),
	}
}

// FetchPrices returns the index's monthly observations with returns filled in.
func (c *Collector) FetchPrices(ctx context.Context) ([]model.PriceObservation, error) {
	obs, err := c.Prices.FetchMonthly(ctx, c.Symbol, c.Start)
	if err != nil {
		return nil, fmt.Errorf("fetch prices: %w", err)
	}
	if len(obs) == 0 {
		return nil, fmt.Errorf("fetch prices: %w", &model.FetchError{Source: c.Prices.Name(), Series: c.Symbol, Err: fmt.Errorf("empty series")})
	}
	return obs, nil
}

// FetchMacro fetches the three macro series one after another and builds the
// month-end table. A failure of any series fails the whole fetch.
func (c *Collector) FetchMacro(ctx context.Context) ([]model.MacroObservation, error) {
	ids := []string{model.SeriesUnemployment, model.SeriesCPI, model.SeriesFedFunds}
	raw := make(map[string][]model.RawPoint, len(ids))
	for _, id := range ids {
		points, err := c.Macro.FetchSeries(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("fetch macro: %w", err)
		}
		raw[id] = points
	}
	table := calculator.BuildMacroTable(raw[model.SeriesUnemployment], raw[model.SeriesCPI], raw[model.SeriesFedFunds])
	if len(table) == 0 {
		return nil, fmt.Errorf("fetch macro: %w", &model.FetchError{Source: c.Macro.Name(), Series: "all", Err: fmt.Errorf("no usable observations")})
	}
	return table, nil
}

// Collect runs a full fetch cycle: prices, then macro, then the inner join.
func (c *Collector) Collect(ctx context.Context) (model.Dataset, error) {
	start := c.Now()
	prices, err := c.FetchPrices(ctx)
	if err != nil {
		return model.Dataset{}, err
	}
	macro, err := c.FetchMacro(ctx)
	if err != nil {
		return model.Dataset{}, err
	}

	rows := calculator.InnerJoin(prices, macro)
	if len(rows) == 0 {
		return model.Dataset{}, fmt.Errorf("%w: %d price months and %d macro months share no complete month",
			model.ErrAlignment, len(prices), len(macro))
	}

	c.log.WithFields(logrus.Fields{
		"prices":   len(prices),
		"macro":    len(macro),
		"rows":     len(rows),
		"first":    rows[0].Time.Format("2006-01"),
		"last":     rows[len(rows)-1].Time.Format("2006-01"),
		"duration": c.Now().Sub(start).String(),
	}).Info("combined dataset built")

	return model.Dataset{Rows: rows, FetchedAt: c.Now()}, nil
}
