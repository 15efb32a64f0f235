package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	PageCacheHits   uint64
	PageCacheMisses uint64
	RateLimited     uint64

	// Events is keyed by kind, then status.
	Events                map[string]map[string]uint64
	RecordDurationCount   uint64
	RecordDurationTotalNs int64

	AggregationCount        uint64
	AggregationTotalNs      int64
	AggregationsSuperseded  uint64
	ReconcileRuns           uint64
	ReconcileDriftedLinks   uint64
	ReconcileLastDriftCount int64

	// Changes is keyed by entity, then action.
	Changes map[string]map[string]uint64
}

// InMemoryRecorder stores metrics in memory. It backs the /metrics endpoint.
type InMemoryRecorder struct {
	pageCacheHits   uint64
	pageCacheMisses uint64
	rateLimited     uint64

	recordDurationCount   uint64
	recordDurationTotalNs int64

	aggregationCount        uint64
	aggregationTotalNs      int64
	aggregationsSuperseded  uint64
	reconcileRuns           uint64
	reconcileDriftedLinks   uint64
	reconcileLastDriftCount int64

	mu      sync.Mutex
	events  map[string]map[string]uint64
	changes map[string]map[string]uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		events:  make(map[string]map[string]uint64),
		changes: make(map[string]map[string]uint64),
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	events := copyNested(m.events)
	changes := copyNested(m.changes)
	m.mu.Unlock()

	return Snapshot{
		PageCacheHits:           atomic.LoadUint64(&m.pageCacheHits),
		PageCacheMisses:         atomic.LoadUint64(&m.pageCacheMisses),
		RateLimited:             atomic.LoadUint64(&m.rateLimited),
		Events:                  events,
		RecordDurationCount:     atomic.LoadUint64(&m.recordDurationCount),
		RecordDurationTotalNs:   atomic.LoadInt64(&m.recordDurationTotalNs),
		AggregationCount:        atomic.LoadUint64(&m.aggregationCount),
		AggregationTotalNs:      atomic.LoadInt64(&m.aggregationTotalNs),
		AggregationsSuperseded:  atomic.LoadUint64(&m.aggregationsSuperseded),
		ReconcileRuns:           atomic.LoadUint64(&m.reconcileRuns),
		ReconcileDriftedLinks:   atomic.LoadUint64(&m.reconcileDriftedLinks),
		ReconcileLastDriftCount: atomic.LoadInt64(&m.reconcileLastDriftCount),
		Changes:                 changes,
	}
}

// IncPageCacheHit increments cache hit counter.
func (m *InMemoryRecorder) IncPageCacheHit() {
	atomic.AddUint64(&m.pageCacheHits, 1)
}

// IncPageCacheMiss increments cache miss counter.
func (m *InMemoryRecorder) IncPageCacheMiss() {
	atomic.AddUint64(&m.pageCacheMisses, 1)
}

// IncRateLimited counts requests rejected by the rate limiter.
func (m *InMemoryRecorder) IncRateLimited() {
	atomic.AddUint64(&m.rateLimited, 1)
}

// IncEventRecorded counts a view or click recording outcome.
func (m *InMemoryRecorder) IncEventRecorded(kind, status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	incNested(m.events, kind, status)
}

// ObserveRecordDuration records how long a store write took.
func (m *InMemoryRecorder) ObserveRecordDuration(duration time.Duration) {
	atomic.AddUint64(&m.recordDurationCount, 1)
	atomic.AddInt64(&m.recordDurationTotalNs, duration.Nanoseconds())
}

// ObserveAggregationDuration records an analytics window load.
func (m *InMemoryRecorder) ObserveAggregationDuration(duration time.Duration) {
	atomic.AddUint64(&m.aggregationCount, 1)
	atomic.AddInt64(&m.aggregationTotalNs, duration.Nanoseconds())
}

// IncAggregationSuperseded counts loads discarded for a newer request.
func (m *InMemoryRecorder) IncAggregationSuperseded() {
	atomic.AddUint64(&m.aggregationsSuperseded, 1)
}

// ObserveReconcile records one reconciliation pass.
func (m *InMemoryRecorder) ObserveReconcile(drifted int) {
	atomic.AddUint64(&m.reconcileRuns, 1)
	atomic.AddUint64(&m.reconcileDriftedLinks, uint64(drifted))
	atomic.StoreInt64(&m.reconcileLastDriftCount, int64(drifted))
}

// IncEntityChanged counts a dashboard mutation.
func (m *InMemoryRecorder) IncEntityChanged(entity, action string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	incNested(m.changes, entity, action)
}

func incNested(m map[string]map[string]uint64, outer, inner string) {
	row, ok := m[outer]
	if !ok {
		row = make(map[string]uint64)
		m[outer] = row
	}
	row[inner]++
}

func copyNested(m map[string]map[string]uint64) map[string]map[string]uint64 {
	out := make(map[string]map[string]uint64, len(m))
	for k, row := range m {
		cp := make(map[string]uint64, len(row))
		for kk, v := range row {
			cp[kk] = v
		}
		out[k] = cp
	}
	return out
}
