package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/webboss/bio/internal/metrics"
	"github.com/webboss/bio/internal/repository"
)

// DefaultReconcileInterval is how often click counters are recomputed.
const DefaultReconcileInterval = 15 * time.Minute

// CounterReconciler recomputes link click counters from stored click events.
type CounterReconciler interface {
	ReconcileClickCounters(ctx context.Context) ([]repository.CounterDrift, error)
}

// Reconciler periodically repairs drift between links.clicks and the click
// events table. Counters are only ever raised.
type Reconciler struct {
	store    CounterReconciler
	interval time.Duration
	metrics  metrics.Recorder
	logger   *slog.Logger

	started bool
	cancel  context.CancelFunc
	done    chan struct{}
	mu      sync.Mutex
}

// NewReconciler creates a reconciler running every interval.
func NewReconciler(store CounterReconciler, interval time.Duration, recorder metrics.Recorder, logger *slog.Logger) *Reconciler {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if interval <= 0 {
		interval = DefaultReconcileInterval
	}
	return &Reconciler{
		store:    store,
		interval: interval,
		metrics:  recorder,
		logger:   logger.With("component", "reconciler"),
	}
}

// Run reconciles once immediately and then on every tick. Blocks until ctx
// is cancelled or Shutdown is called.
func (r *Reconciler) Run(ctx context.Context) error {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return errors.New("reconciler already started")
	}
	r.started = true
	r.done = make(chan struct{})
	ctx, r.cancel = context.WithCancel(ctx)
	r.mu.Unlock()

	defer close(r.done)

	r.logger.Info("reconciler started", slog.Duration("interval", r.interval))

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		if _, err := r.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
			r.logger.Error("reconcile failed", slog.String("error", err.Error()))
		}

		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopping")
			return nil
		case <-ticker.C:
		}
	}
}

// RunOnce performs one reconciliation pass and returns the drifted links.
func (r *Reconciler) RunOnce(ctx context.Context) ([]repository.CounterDrift, error) {
	start := time.Now()
	drifts, err := r.store.ReconcileClickCounters(ctx)
	if err != nil {
		return nil, fmt.Errorf("reconcile click counters: %w", err)
	}
	r.metrics.ObserveReconcile(len(drifts))

	for _, d := range drifts {
		level := slog.LevelWarn
		if d.Stored > d.Actual {
			// Counter ahead of events; left as is, counters never decrease.
			level = slog.LevelInfo
		}
		r.logger.Log(ctx, level, "click counter drift",
			slog.String("link_id", d.LinkID),
			slog.Int64("stored", d.Stored),
			slog.Int64("actual", d.Actual),
		)
	}
	if len(drifts) > 0 {
		r.logger.Info("reconcile pass complete",
			slog.Int("drifted", len(drifts)),
			slog.Duration("duration", time.Since(start)),
		)
	}
	return drifts, nil
}

// Shutdown stops the loop and waits for an in-flight pass.
// It implements server.ShutdownFunc for integration with graceful shutdown.
func (r *Reconciler) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	if !r.started {
		r.mu.Unlock()
		return nil
	}
	cancel, done := r.cancel, r.done
	r.mu.Unlock()

	cancel()

	select {
	case <-done:
		r.logger.Info("reconciler shutdown complete")
		return nil
	case <-ctx.Done():
		r.logger.Warn("reconciler shutdown timed out")
		return ctx.Err()
	}
}
