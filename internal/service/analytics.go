package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/webboss/bio/internal/analytics"
	"github.com/webboss/bio/internal/metrics"
	"github.com/webboss/bio/internal/model"
)

// ErrSuperseded means a newer analytics request for the same profile
// started before this one finished; its result was discarded.
var ErrSuperseded = errors.New("analytics request superseded")

// WindowRequest selects an analytics window: either a named Range or an
// explicit inclusive From/To date pair (YYYY-MM-DD).
type WindowRequest struct {
	Range string
	From  string
	To    string
}

// AnalyticsService loads a profile's events for a window and runs the
// aggregation engine over them.
type AnalyticsService struct {
	owners   *Owners
	events   EventStore
	links    LinkStore
	location *time.Location
	metrics  metrics.Recorder
	logger   *slog.Logger
	now      func() time.Time

	mu       sync.Mutex
	inflight map[string]*inflightLoad
	gen      uint64
}

type inflightLoad struct {
	gen    uint64
	cancel context.CancelFunc
}

// AnalyticsServiceConfig wires an AnalyticsService.
type AnalyticsServiceConfig struct {
	Owners   *Owners
	Events   EventStore
	Links    LinkStore
	Location *time.Location // Hour-of-day zone; nil means UTC
	Metrics  metrics.Recorder
	Logger   *slog.Logger
}

// NewAnalyticsService creates an AnalyticsService.
func NewAnalyticsService(cfg AnalyticsServiceConfig) *AnalyticsService {
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewNoop()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &AnalyticsService{
		owners:   cfg.Owners,
		events:   cfg.Events,
		links:    cfg.Links,
		location: cfg.Location,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger.With("component", "analytics_service"),
		now:      time.Now,
		inflight: make(map[string]*inflightLoad),
	}
}

// ParseWindow resolves req against now.
func ParseWindow(req WindowRequest, now time.Time) (analytics.Window, error) {
	if req.From != "" || req.To != "" {
		return analytics.ParseDates(req.From, req.To, now)
	}
	return analytics.ParseRange(req.Range, now)
}

// Report builds the analytics report of userID's profile. Only the latest
// request per profile may complete: an older request still in flight is
// cancelled and returns ErrSuperseded.
func (s *AnalyticsService) Report(ctx context.Context, userID string, req WindowRequest) (*model.AnalyticsReport, error) {
	owner, err := s.owners.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	w, err := ParseWindow(req, now)
	if err != nil {
		return nil, err
	}

	ctx, gen, release := s.begin(ctx, owner.ProfileID)
	defer release()

	start := time.Now()
	report, err := s.load(ctx, owner.ProfileID, w)
	if !s.isCurrent(owner.ProfileID, gen) {
		s.metrics.IncAggregationSuperseded()
		s.logger.Debug("analytics result discarded",
			slog.String("profile_id", owner.ProfileID),
			slog.String("window", w.Key()),
		)
		return nil, ErrSuperseded
	}
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveAggregationDuration(time.Since(start))
	report.GeneratedAt = now.UTC()
	return report, nil
}

// begin registers a load for profileID, cancelling the previous one.
func (s *AnalyticsService) begin(parent context.Context, profileID string) (context.Context, uint64, func()) {
	ctx, cancel := context.WithCancel(parent)

	s.mu.Lock()
	s.gen++
	gen := s.gen
	if prev, ok := s.inflight[profileID]; ok {
		prev.cancel()
	}
	s.inflight[profileID] = &inflightLoad{gen: gen, cancel: cancel}
	s.mu.Unlock()

	release := func() {
		cancel()
		s.mu.Lock()
		if cur, ok := s.inflight[profileID]; ok && cur.gen == gen {
			delete(s.inflight, profileID)
		}
		s.mu.Unlock()
	}
	return ctx, gen, release
}

func (s *AnalyticsService) isCurrent(profileID string, gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.inflight[profileID]
	return ok && cur.gen == gen
}

// load fetches the window's inputs concurrently. Any failure fails the
// whole window.
func (s *AnalyticsService) load(ctx context.Context, profileID string, w analytics.Window) (*model.AnalyticsReport, error) {
	var (
		views                 []model.ViewEvent
		clicks                []model.ClickEvent
		links                 []model.Link
		prevViews, prevClicks int64
	)
	prev := w.Previous()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		views, err = s.events.ListViews(gctx, profileID, w.Start, w.End)
		return err
	})
	g.Go(func() (err error) {
		clicks, err = s.events.ListClicks(gctx, profileID, w.Start, w.End)
		return err
	})
	g.Go(func() (err error) {
		links, err = s.links.ListLinks(gctx, profileID, false)
		return err
	})
	g.Go(func() (err error) {
		prevViews, prevClicks, err = s.events.CountEvents(gctx, profileID, prev.Start, prev.End)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load analytics window: %w", err)
	}

	view := analytics.Aggregate(analytics.Input{
		Window:   w,
		Views:    views,
		Clicks:   clicks,
		Links:    links,
		Location: s.location,
	})

	report := &model.AnalyticsReport{
		ProfileID:     profileID,
		AnalyticsView: view,
		Comparison:    analytics.Compare(view.Summary.TotalViews, view.Summary.TotalClicks, prevViews, prevClicks),
	}
	report.Period.From = w.Start.Format(time.DateOnly)
	report.Period.To = w.LastDay().Format(time.DateOnly)
	report.Period.Days = w.Days
	return report, nil
}
