package recorder

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"MacroDash/internal/model"
)

// RefreshEvent describes one run of the dataset loader.
type RefreshEvent struct {
	At         time.Time `json:"at"`
	Trigger    string    `json:"trigger"` // "request", "schedule", "manual", "startup"
	Rows       int       `json:"rows"`
	FirstMonth string    `json:"first_month,omitempty"`
	LastMonth  string    `json:"last_month,omitempty"`
	DurationMs int64     `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
}

// Recorder keeps an operational log of dataset refreshes.
type Recorder interface {
	RecordRefresh(evt *RefreshEvent) error
	RecentRefreshes(limit int) ([]RefreshEvent, error)
	Close() error
}

type triggerKey struct{}

// WithTrigger tags ctx with what caused a load.
func WithTrigger(ctx context.Context, trigger string) context.Context {
	return context.WithValue(ctx, triggerKey{}, trigger)
}

// TriggerFrom returns the trigger stored in ctx, defaulting to "request".
func TriggerFrom(ctx context.Context) string {
	if v, ok := ctx.Value(triggerKey{}).(string); ok && v != "" {
		return v
	}
	return "request"
}

// Observe wraps a dataset loader so every run, successful or not, is
// recorded. Recording failures are logged and never fail the load.
func Observe(rec Recorder, log logrus.FieldLogger, load func(context.Context) (model.Dataset, error)) func(context.Context) (model.Dataset, error) {
	return func(ctx context.Context) (model.Dataset, error) {
		start := time.Now()
		ds, err := load(ctx)
		evt := &RefreshEvent{
			At:         start,
			Trigger:    TriggerFrom(ctx),
			Rows:       len(ds.Rows),
			DurationMs: time.Since(start).Milliseconds(),
		}
		if n := len(ds.Rows); n > 0 {
			evt.FirstMonth = ds.Rows[0].Time.Format("2006-01")
			evt.LastMonth = ds.Rows[n-1].Time.Format("2006-01")
		}
		if err != nil {
			evt.Error = err.Error()
		}
		if recErr := rec.RecordRefresh(evt); recErr != nil && log != nil {
			log.Errorf("record refresh: %v", recErr)
		}
		return ds, err
	}
}
