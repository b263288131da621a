package cache

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"MacroDash/internal/logging"
	"MacroDash/internal/model"
)

// Loader produces a fresh dataset.
type Loader func(ctx context.Context) (model.Dataset, error)

// Stats tracks memo usage.
type Stats struct {
	Hits     int64     `json:"hits"`
	Misses   int64     `json:"misses"`
	Errors   int64     `json:"errors"`
	LastLoad time.Time `json:"last_load"`
}

// Memo is the process-wide cache of the combined dataset. A stored dataset
// is served until it is older than TTL or Invalidate is called; a TTL of
// zero never expires. Loads are serialized, and failed loads are not cached.
type Memo struct {
	mu    sync.Mutex // held for the whole load
	store Store
	load  Loader
	ttl   time.Duration
	now   func() time.Time
	log   logrus.FieldLogger

	statsMu sync.Mutex
	stats   Stats
}

// NewMemo creates a Memo over store.
func NewMemo(store Store, load Loader, ttl time.Duration, log logrus.FieldLogger) *Memo {
	return &Memo{
		store: store,
		load:  load,
		ttl:   ttl,
		now:   time.Now,
		log:   logging.Component(log, "memo"),
	}
}

// Get returns the cached dataset, loading it first if absent or stale.
func (m *Memo) Get(ctx context.Context) (model.Dataset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ds, ok, err := m.store.Load(ctx)
	if err != nil {
		m.log.Warnf("%s store load failed, refetching: %v", m.store.Name(), err)
		ok = false
	}
	if ok && m.fresh(ds) {
		m.count(func(st *Stats) { st.Hits++ })
		return ds, nil
	}
	m.count(func(st *Stats) { st.Misses++ })
	return m.reload(ctx)
}

// Refresh loads a new dataset regardless of the cached one. On failure the
// previous entry stays in place.
func (m *Memo) Refresh(ctx context.Context) (model.Dataset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reload(ctx)
}

// Invalidate drops the cached dataset.
func (m *Memo) Invalidate(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.log.Info("cache invalidated")
	return m.store.Clear(ctx)
}

// Stats returns a snapshot of the usage counters. It never waits on an
// in-flight load.
func (m *Memo) Stats() Stats {
	m.statsMu.Lock()
	defer m.statsMu.Unlock()
	return m.stats
}

func (m *Memo) count(update func(*Stats)) {
	m.statsMu.Lock()
	update(&m.stats)
	m.statsMu.Unlock()
}

// StoreName reports the backing store.
func (m *Memo) StoreName() string { return m.store.Name() }

func (m *Memo) fresh(ds model.Dataset) bool {
	if m.ttl <= 0 {
		return true
	}
	return m.now().Sub(ds.FetchedAt) < m.ttl
}

func (m *Memo) reload(ctx context.Context) (model.Dataset, error) {
	ds, err := m.load(ctx)
	if err != nil {
		m.count(func(st *Stats) { st.Errors++ })
		return model.Dataset{}, err
	}
	if ds.FetchedAt.IsZero() {
		ds.FetchedAt = m.now()
	}
	m.count(func(st *Stats) { st.LastLoad = ds.FetchedAt })
	if err := m.store.Save(ctx, ds); err != nil {
		m.log.Warnf("%s store save failed: %v", m.store.Name(), err)
	}
	return ds, nil
}
