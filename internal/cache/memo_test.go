package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MacroDash/internal/logging"
	"MacroDash/internal/model"
)

var base = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// countingLoader returns a distinct dataset on each call.
type countingLoader struct {
	calls int
	err   error
}

func (c *countingLoader) Load(_ context.Context) (model.Dataset, error) {
	c.calls++
	if c.err != nil {
		return model.Dataset{}, c.err
	}
	return model.Dataset{
		Rows: []model.CombinedRow{{
			Time:          time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC),
			MonthlyReturn: float64(c.calls) / 100,
			Unemployment:  4,
			CPI:           313,
			FedFunds:      5.33,
			Inflation:     0.2,
		}},
		FetchedAt: base,
	}, nil
}

func newTestMemo(l *countingLoader, ttl time.Duration, now *time.Time) *Memo {
	m := NewMemo(NewMemoryStore(), l.Load, ttl, logging.Discard())
	m.now = func() time.Time { return *now }
	return m
}

func TestMemo_Idempotent(t *testing.T) {
	now := base
	l := &countingLoader{}
	m := newTestMemo(l, 0, &now)

	first, err := m.Get(context.Background())
	require.NoError(t, err)
	second, err := m.Get(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Same(t, &first.Rows[0], &second.Rows[0], "cached rows are shared, not refetched")
	assert.Equal(t, 1, l.calls)

	st := m.Stats()
	assert.Equal(t, int64(1), st.Hits)
	assert.Equal(t, int64(1), st.Misses)
}

func TestMemo_TTLExpiry(t *testing.T) {
	now := base
	l := &countingLoader{}
	m := newTestMemo(l, time.Hour, &now)

	_, err := m.Get(context.Background())
	require.NoError(t, err)

	now = base.Add(59 * time.Minute)
	_, err = m.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, l.calls)

	now = base.Add(61 * time.Minute)
	_, err = m.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, l.calls)
}

func TestMemo_Invalidate(t *testing.T) {
	now := base
	l := &countingLoader{}
	m := newTestMemo(l, 0, &now)

	_, _ = m.Get(context.Background())
	require.NoError(t, m.Invalidate(context.Background()))
	ds, err := m.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, l.calls)
	assert.Equal(t, 0.02, ds.Rows[0].MonthlyReturn)
}

func TestMemo_ErrorsAreNotCached(t *testing.T) {
	now := base
	l := &countingLoader{err: model.ErrAlignment}
	m := newTestMemo(l, 0, &now)

	_, err := m.Get(context.Background())
	assert.True(t, errors.Is(err, model.ErrAlignment))

	l.err = nil
	_, err = m.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, l.calls)
	assert.Equal(t, int64(1), m.Stats().Errors)
}

func TestMemo_RefreshKeepsOldEntryOnFailure(t *testing.T) {
	now := base
	l := &countingLoader{}
	m := newTestMemo(l, 0, &now)

	first, err := m.Get(context.Background())
	require.NoError(t, err)

	l.err = errors.New("provider down")
	_, err = m.Refresh(context.Background())
	require.Error(t, err)

	again, err := m.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, again)
}

func TestMemo_FillsFetchedAt(t *testing.T) {
	now := base
	m := NewMemo(NewMemoryStore(), func(context.Context) (model.Dataset, error) {
		return model.Dataset{}, nil
	}, 0, logging.Discard())
	m.now = func() time.Time { return now }

	ds, err := m.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, base, ds.FetchedAt)
	assert.Equal(t, "memory", m.StoreName())
}

func TestMemo_StatsDuringLoad(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	m := NewMemo(NewMemoryStore(), func(context.Context) (model.Dataset, error) {
		close(started)
		<-release
		return model.Dataset{FetchedAt: base}, nil
	}, 0, logging.Discard())

	done := make(chan error, 1)
	go func() {
		_, err := m.Get(context.Background())
		done <- err
	}()
	<-started

	got := make(chan Stats, 1)
	go func() { got <- m.Stats() }()
	select {
	case st := <-got:
		assert.Equal(t, int64(1), st.Misses)
		assert.True(t, st.LastLoad.IsZero())
	case <-time.After(time.Second):
		t.Fatal("Stats waited on the in-flight load")
	}

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, base, m.Stats().LastLoad)
}
