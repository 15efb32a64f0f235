package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncPageCacheHit is a no-op.
func (n *NoopRecorder) IncPageCacheHit() {}

// IncPageCacheMiss is a no-op.
func (n *NoopRecorder) IncPageCacheMiss() {}

// IncRateLimited is a no-op.
func (n *NoopRecorder) IncRateLimited() {}

// IncEventRecorded is a no-op.
func (n *NoopRecorder) IncEventRecorded(kind, status string) {}

// ObserveRecordDuration is a no-op.
func (n *NoopRecorder) ObserveRecordDuration(duration time.Duration) {}

// ObserveAggregationDuration is a no-op.
func (n *NoopRecorder) ObserveAggregationDuration(duration time.Duration) {}

// IncAggregationSuperseded is a no-op.
func (n *NoopRecorder) IncAggregationSuperseded() {}

// ObserveReconcile is a no-op.
func (n *NoopRecorder) ObserveReconcile(drifted int) {}

// IncEntityChanged is a no-op.
func (n *NoopRecorder) IncEntityChanged(entity, action string) {}
