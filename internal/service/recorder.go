package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/webboss/bio/internal/analytics"
	"github.com/webboss/bio/internal/metrics"
	"github.com/webboss/bio/internal/model"
	"github.com/webboss/bio/internal/repository"
)

// Recorder defaults.
const (
	DefaultRecordTimeout = 3 * time.Second
	defaultMaxInFlight   = 256
)

// ErrRecorderBusy means an async recording was dropped because too many
// were already in flight.
var ErrRecorderBusy = errors.New("event recorder busy")

// ErrRecorderClosed means an async recording arrived after Shutdown.
var ErrRecorderClosed = errors.New("event recorder closed")

// ClickTarget names what was clicked. Exactly one field must be set.
type ClickTarget struct {
	LinkID    string
	ProductID string
}

// Validate rejects targets that do not name exactly one link or product.
func (t ClickTarget) Validate() error {
	if (t.LinkID == "") == (t.ProductID == "") {
		return ErrInvalidClickTarget
	}
	if id := t.LinkID + t.ProductID; !validID(id) {
		return ErrClickTargetNotFound
	}
	return nil
}

// EventRecorder appends view and click events. The async variants never
// surface store failures to the caller; they are logged and counted.
type EventRecorder struct {
	events  EventStore
	metrics metrics.Recorder
	logger  *slog.Logger
	timeout time.Duration
	now     func() time.Time

	slots chan struct{}

	mu     sync.Mutex // guards closed and wg.Add
	closed bool
	wg     sync.WaitGroup
}

// EventRecorderConfig wires an EventRecorder.
type EventRecorderConfig struct {
	Events      EventStore
	Metrics     metrics.Recorder
	Logger      *slog.Logger
	Timeout     time.Duration // Per async write
	MaxInFlight int
}

// NewEventRecorder creates an EventRecorder.
func NewEventRecorder(cfg EventRecorderConfig) *EventRecorder {
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewNoop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultRecordTimeout
	}
	if cfg.MaxInFlight <= 0 {
		cfg.MaxInFlight = defaultMaxInFlight
	}
	return &EventRecorder{
		events:  cfg.Events,
		metrics: cfg.Metrics,
		logger:  cfg.Logger.With("component", "event_recorder"),
		timeout: cfg.Timeout,
		now:     time.Now,
		slots:   make(chan struct{}, cfg.MaxInFlight),
	}
}

// RecordView stores one page view of profileID.
// An unknown profile yields ErrProfileNotFound.
func (r *EventRecorder) RecordView(ctx context.Context, profileID string, meta model.EventMetadata) error {
	now := r.now().UTC()
	v := &model.ViewEvent{
		ID:            analytics.NewEventID(now),
		ProfileID:     profileID,
		ViewedAt:      now,
		EventMetadata: meta,
	}
	if err := analytics.ValidateView(*v); err != nil {
		r.metrics.IncEventRecorded(metrics.KindView, metrics.StatusRejected)
		return err
	}

	start := time.Now()
	err := r.events.InsertView(ctx, v)
	r.metrics.ObserveRecordDuration(time.Since(start))
	return r.outcome(metrics.KindView, err)
}

// RecordClick stores one click of a link or product of profileID. A link
// click also increments the link's counter.
func (r *EventRecorder) RecordClick(ctx context.Context, profileID string, target ClickTarget, meta model.EventMetadata) error {
	if err := target.Validate(); err != nil {
		r.metrics.IncEventRecorded(metrics.KindClick, metrics.StatusRejected)
		return err
	}

	now := r.now().UTC()
	c := &model.ClickEvent{
		ID:            analytics.NewEventID(now),
		ProfileID:     profileID,
		LinkID:        target.LinkID,
		ProductID:     target.ProductID,
		ClickedAt:     now,
		EventMetadata: meta,
	}
	if err := analytics.ValidateClick(*c); err != nil {
		r.metrics.IncEventRecorded(metrics.KindClick, metrics.StatusRejected)
		return err
	}

	start := time.Now()
	err := r.events.InsertClick(ctx, c)
	r.metrics.ObserveRecordDuration(time.Since(start))
	return r.outcome(metrics.KindClick, err)
}

func (r *EventRecorder) outcome(kind string, err error) error {
	switch {
	case err == nil:
		r.metrics.IncEventRecorded(kind, metrics.StatusSuccess)
		return nil
	case errors.Is(err, repository.ErrProfileNotFound):
		r.metrics.IncEventRecorded(kind, metrics.StatusRejected)
		return ErrProfileNotFound
	case errors.Is(err, repository.ErrClickTargetNotFound):
		r.metrics.IncEventRecorded(kind, metrics.StatusRejected)
		return ErrClickTargetNotFound
	case errors.Is(err, repository.ErrInvalidClickTarget):
		r.metrics.IncEventRecorded(kind, metrics.StatusRejected)
		return ErrInvalidClickTarget
	}
	r.metrics.IncEventRecorded(kind, metrics.StatusFailed)
	return fmt.Errorf("record %s: %w", kind, err)
}

// RecordViewAsync records a view in the background.
func (r *EventRecorder) RecordViewAsync(profileID string, meta model.EventMetadata) {
	r.spawn(metrics.KindView, profileID, func(ctx context.Context) error {
		return r.RecordView(ctx, profileID, meta)
	})
}

// RecordClickAsync validates the target synchronously, so a malformed
// request can still be answered with an error, then records in the background.
func (r *EventRecorder) RecordClickAsync(profileID string, target ClickTarget, meta model.EventMetadata) error {
	if err := target.Validate(); err != nil {
		r.metrics.IncEventRecorded(metrics.KindClick, metrics.StatusRejected)
		return err
	}
	r.spawn(metrics.KindClick, profileID, func(ctx context.Context) error {
		return r.RecordClick(ctx, profileID, target, meta)
	})
	return nil
}

func (r *EventRecorder) spawn(kind, profileID string, record func(ctx context.Context) error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		r.drop(kind, profileID, ErrRecorderClosed)
		return
	}
	select {
	case r.slots <- struct{}{}:
	default:
		r.mu.Unlock()
		r.drop(kind, profileID, ErrRecorderBusy)
		return
	}
	r.wg.Add(1)
	r.mu.Unlock()

	go func() {
		defer func() {
			<-r.slots
			r.wg.Done()
		}()

		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()

		if err := record(ctx); err != nil {
			r.logger.Warn("event recording failed",
				slog.String("kind", kind),
				slog.String("profile_id", profileID),
				slog.String("error", err.Error()),
			)
		}
	}()
}

func (r *EventRecorder) drop(kind, profileID string, reason error) {
	r.metrics.IncEventRecorded(kind, metrics.StatusFailed)
	r.logger.Warn("event dropped",
		slog.String("kind", kind),
		slog.String("profile_id", profileID),
		slog.String("error", reason.Error()),
	)
}

// Shutdown stops accepting async recordings and waits for in-flight ones
// until ctx expires.
func (r *EventRecorder) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("event recorder shutdown: %w", ctx.Err())
	}
}
