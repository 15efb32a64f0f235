package handler

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/webboss/bio/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "bio_page_cache_hits_total %d\n", snap.PageCacheHits)
	writeMetric(w, "bio_page_cache_misses_total %d\n", snap.PageCacheMisses)
	writeMetric(w, "bio_rate_limited_total %d\n", snap.RateLimited)

	for _, kind := range sortedKeys(snap.Events) {
		for _, status := range sortedKeys(snap.Events[kind]) {
			writeMetric(w, "bio_events_recorded_total{kind=%q,status=%q} %d\n", kind, status, snap.Events[kind][status])
		}
	}
	writeMetric(w, "bio_event_record_duration_seconds_count %d\n", snap.RecordDurationCount)
	writeMetric(w, "bio_event_record_duration_seconds_sum %.6f\n", float64(snap.RecordDurationTotalNs)/1e9)

	writeMetric(w, "bio_aggregation_duration_seconds_count %d\n", snap.AggregationCount)
	writeMetric(w, "bio_aggregation_duration_seconds_sum %.6f\n", float64(snap.AggregationTotalNs)/1e9)
	writeMetric(w, "bio_aggregations_superseded_total %d\n", snap.AggregationsSuperseded)

	writeMetric(w, "bio_reconcile_runs_total %d\n", snap.ReconcileRuns)
	writeMetric(w, "bio_reconcile_drifted_links_total %d\n", snap.ReconcileDriftedLinks)
	writeMetric(w, "bio_reconcile_last_drift_links %d\n", snap.ReconcileLastDriftCount)

	for _, entity := range sortedKeys(snap.Changes) {
		for _, action := range sortedKeys(snap.Changes[entity]) {
			writeMetric(w, "bio_entity_changes_total{entity=%q,action=%q} %d\n", entity, action, snap.Changes[entity][action])
		}
	}
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
