// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Event kinds.
const (
	KindView  = "view"
	KindClick = "click"
)

// Event recording outcomes.
const (
	StatusSuccess  = "success"
	StatusRejected = "rejected" // invalid or unknown target, not retried
	StatusFailed   = "failed"   // store error, swallowed
)

// Entities and actions for IncEntityChanged.
const (
	EntityLink    = "link"
	EntityProduct = "product"
	EntityProfile = "profile"

	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Public page metrics
	IncPageCacheHit()
	IncPageCacheMiss()
	IncRateLimited()

	// Event recording metrics
	IncEventRecorded(kind, status string)
	ObserveRecordDuration(duration time.Duration)

	// Aggregation metrics
	ObserveAggregationDuration(duration time.Duration)
	IncAggregationSuperseded()
	ObserveReconcile(drifted int)

	// Dashboard mutations
	IncEntityChanged(entity, action string)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
