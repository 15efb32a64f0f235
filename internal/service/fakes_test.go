package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/webboss/bio/internal/cache"
	"github.com/webboss/bio/internal/model"
	"github.com/webboss/bio/internal/repository"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memStore is an in-memory stand-in for repository.Repository.
type memStore struct {
	mu       sync.Mutex
	profiles map[string]*model.Profile
	links    map[string]*model.Link
	products map[string]*model.Product
	views    []model.ViewEvent
	clicks   []model.ClickEvent

	// failEvents makes event writes and reads fail.
	failEvents error
	// listDelay blocks ListViews until ctx is done or the delay passes.
	listDelay time.Duration
}

func newMemStore() *memStore {
	return &memStore{
		profiles: make(map[string]*model.Profile),
		links:    make(map[string]*model.Link),
		products: make(map[string]*model.Product),
	}
}

func (m *memStore) CreateProfile(_ context.Context, p *model.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.profiles {
		if existing.Username == p.Username {
			return repository.ErrUsernameTaken
		}
		if existing.UserID == p.UserID {
			return repository.ErrProfileExists
		}
	}
	p.ID = uuid.NewString()
	p.CreatedAt, p.UpdatedAt = time.Now(), time.Now()
	cp := *p
	m.profiles[p.ID] = &cp
	return nil
}

func (m *memStore) findProfile(match func(*model.Profile) bool) (*model.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.profiles {
		if match(p) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repository.ErrProfileNotFound
}

func (m *memStore) GetProfileByID(_ context.Context, id string) (*model.Profile, error) {
	return m.findProfile(func(p *model.Profile) bool { return p.ID == id })
}

func (m *memStore) GetProfileByUsername(_ context.Context, username string) (*model.Profile, error) {
	return m.findProfile(func(p *model.Profile) bool { return p.Username == username })
}

func (m *memStore) GetProfileByUserID(_ context.Context, userID string) (*model.Profile, error) {
	return m.findProfile(func(p *model.Profile) bool { return p.UserID == userID })
}

func (m *memStore) UpdateProfile(_ context.Context, p *model.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.profiles[p.ID]; !ok {
		return repository.ErrProfileNotFound
	}
	for _, existing := range m.profiles {
		if existing.ID != p.ID && existing.Username == p.Username {
			return repository.ErrUsernameTaken
		}
	}
	cp := *p
	m.profiles[p.ID] = &cp
	return nil
}

func (m *memStore) DeleteProfile(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.profiles[id]; !ok {
		return repository.ErrProfileNotFound
	}
	delete(m.profiles, id)
	for lid, l := range m.links {
		if l.ProfileID == id {
			delete(m.links, lid)
		}
	}
	for pid, p := range m.products {
		if p.ProfileID == id {
			delete(m.products, pid)
		}
	}
	return nil
}

func (m *memStore) CreateLink(_ context.Context, link *model.Link) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.profiles[link.ProfileID]; !ok {
		return repository.ErrProfileNotFound
	}
	next := 0
	for _, l := range m.links {
		if l.ProfileID == link.ProfileID && l.OrderIndex >= next {
			next = l.OrderIndex + 1
		}
	}
	link.ID = uuid.NewString()
	link.OrderIndex = next
	cp := *link
	m.links[link.ID] = &cp
	return nil
}

func (m *memStore) GetLink(_ context.Context, profileID, id string) (*model.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.links[id]
	if !ok || l.ProfileID != profileID {
		return nil, repository.ErrLinkNotFound
	}
	cp := *l
	return &cp, nil
}

func (m *memStore) ListLinks(_ context.Context, profileID string, activeOnly bool) ([]model.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Link, 0)
	for _, l := range m.links {
		if l.ProfileID == profileID && (!activeOnly || l.IsActive) {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out, nil
}

func (m *memStore) UpdateLink(_ context.Context, link *model.Link) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.links[link.ID]
	if !ok || l.ProfileID != link.ProfileID {
		return repository.ErrLinkNotFound
	}
	link.Clicks = l.Clicks
	cp := *link
	m.links[link.ID] = &cp
	return nil
}

func (m *memStore) DeleteLink(_ context.Context, profileID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.links[id]
	if !ok || l.ProfileID != profileID {
		return repository.ErrLinkNotFound
	}
	delete(m.links, id)
	return nil
}

func (m *memStore) ReorderLinks(_ context.Context, profileID string, updates []model.OrderUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range updates {
		if l, ok := m.links[u.ID]; !ok || l.ProfileID != profileID {
			return repository.ErrLinkNotFound
		}
	}
	for _, u := range updates {
		m.links[u.ID].OrderIndex = u.OrderIndex
	}
	return nil
}

func (m *memStore) LinkClickCounts(_ context.Context, profileID, id string) (int64, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.links[id]
	if !ok || l.ProfileID != profileID {
		return 0, 0, repository.ErrLinkNotFound
	}
	var events int64
	for _, c := range m.clicks {
		if c.LinkID == id {
			events++
		}
	}
	return l.Clicks, events, nil
}

func (m *memStore) CreateProduct(_ context.Context, p *model.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.profiles[p.ProfileID]; !ok {
		return repository.ErrProfileNotFound
	}
	p.ID = uuid.NewString()
	cp := *p
	m.products[p.ID] = &cp
	return nil
}

func (m *memStore) GetProduct(_ context.Context, profileID, id string) (*model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok || p.ProfileID != profileID {
		return nil, repository.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memStore) ListProducts(_ context.Context, profileID string, publicOnly bool) ([]model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Product, 0)
	for _, p := range m.products {
		if p.ProfileID == profileID && (!publicOnly || p.IsPubliclyAvailable()) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out, nil
}

func (m *memStore) UpdateProduct(_ context.Context, p *model.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.products[p.ID]
	if !ok || existing.ProfileID != p.ProfileID {
		return repository.ErrProductNotFound
	}
	cp := *p
	m.products[p.ID] = &cp
	return nil
}

func (m *memStore) DeleteProduct(_ context.Context, profileID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok || p.ProfileID != profileID {
		return repository.ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *memStore) ReorderProducts(_ context.Context, profileID string, updates []model.OrderUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range updates {
		if p, ok := m.products[u.ID]; !ok || p.ProfileID != profileID {
			return repository.ErrProductNotFound
		}
	}
	for _, u := range updates {
		m.products[u.ID].OrderIndex = u.OrderIndex
	}
	return nil
}

func (m *memStore) InsertView(_ context.Context, v *model.ViewEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failEvents != nil {
		return m.failEvents
	}
	if _, ok := m.profiles[v.ProfileID]; !ok {
		return repository.ErrProfileNotFound
	}
	m.views = append(m.views, *v)
	return nil
}

func (m *memStore) InsertClick(_ context.Context, c *model.ClickEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failEvents != nil {
		return m.failEvents
	}
	if _, ok := m.profiles[c.ProfileID]; !ok {
		return repository.ErrProfileNotFound
	}
	if c.LinkID != "" {
		l, ok := m.links[c.LinkID]
		if !ok || l.ProfileID != c.ProfileID {
			return repository.ErrClickTargetNotFound
		}
		l.Clicks++
	}
	if c.ProductID != "" {
		p, ok := m.products[c.ProductID]
		if !ok || p.ProfileID != c.ProfileID {
			return repository.ErrClickTargetNotFound
		}
	}
	m.clicks = append(m.clicks, *c)
	return nil
}

func (m *memStore) ListViews(ctx context.Context, profileID string, from, to time.Time) ([]model.ViewEvent, error) {
	if m.listDelay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(m.listDelay):
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failEvents != nil {
		return nil, m.failEvents
	}
	var out []model.ViewEvent
	for _, v := range m.views {
		if v.ProfileID == profileID && !v.ViewedAt.Before(from) && !v.ViewedAt.After(to) {
			out = append(out, v)
		}
	}
	return out, nil
}

func (m *memStore) ListClicks(_ context.Context, profileID string, from, to time.Time) ([]model.ClickEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failEvents != nil {
		return nil, m.failEvents
	}
	var out []model.ClickEvent
	for _, c := range m.clicks {
		if c.ProfileID == profileID && !c.ClickedAt.Before(from) && !c.ClickedAt.After(to) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memStore) CountEvents(ctx context.Context, profileID string, from, to time.Time) (int64, int64, error) {
	views, err := m.ListViews(ctx, profileID, from, to)
	if err != nil {
		return 0, 0, err
	}
	clicks, err := m.ListClicks(ctx, profileID, from, to)
	if err != nil {
		return 0, 0, err
	}
	return int64(len(views)), int64(len(clicks)), nil
}

func (m *memStore) ReconcileClickCounters(_ context.Context) ([]repository.CounterDrift, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	actual := make(map[string]int64)
	for _, c := range m.clicks {
		if c.LinkID != "" {
			actual[c.LinkID]++
		}
	}
	var drifts []repository.CounterDrift
	for id, l := range m.links {
		if l.Clicks != actual[id] {
			drifts = append(drifts, repository.CounterDrift{LinkID: id, Stored: l.Clicks, Actual: actual[id]})
			if l.Clicks < actual[id] {
				l.Clicks = actual[id]
			}
		}
	}
	return drifts, nil
}

// memCache is an in-memory PageCache.
type memCache struct {
	mu       sync.Mutex
	pages    map[string]model.PublicPage
	negative map[string]bool
	owners   map[string]cache.Owner
	failRead bool
}

func newMemCache() *memCache {
	return &memCache{
		pages:    make(map[string]model.PublicPage),
		negative: make(map[string]bool),
		owners:   make(map[string]cache.Owner),
	}
}

var errCacheDown = errors.New("cache down")

func (c *memCache) GetPage(_ context.Context, username string) (*model.PublicPage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failRead {
		return nil, errCacheDown
	}
	p, ok := c.pages[username]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return &p, nil
}

func (c *memCache) SetPage(_ context.Context, page *model.PublicPage, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pages[page.Profile.Username] = *page
	delete(c.negative, page.Profile.Username)
	return nil
}

func (c *memCache) DeletePage(_ context.Context, username string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pages, username)
	delete(c.negative, username)
	return nil
}

func (c *memCache) IsNegativelyCached(_ context.Context, username string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.negative[username], nil
}

func (c *memCache) SetNegativeCache(_ context.Context, username string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.negative[username] = true
	return nil
}

func (c *memCache) GetOwner(_ context.Context, userID string) (*cache.Owner, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failRead {
		return nil, errCacheDown
	}
	o, ok := c.owners[userID]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return &o, nil
}

func (c *memCache) SetOwner(_ context.Context, userID string, owner cache.Owner) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.owners[userID] = owner
	return nil
}

func (c *memCache) DeleteOwner(_ context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.owners, userID)
	return nil
}

func (c *memCache) hasPage(username string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.pages[username]
	return ok
}

// fixture bundles the services over shared fakes.
type fixture struct {
	store     *memStore
	cache     *memCache
	owners    *Owners
	profiles  *ProfileService
	links     *LinkService
	products  *ProductService
	recorder  *EventRecorder
	analytics *AnalyticsService
}

func newFixture() *fixture {
	store := newMemStore()
	c := newMemCache()
	owners := NewOwners(store, c, testLogger())
	return &fixture{
		store:  store,
		cache:  c,
		owners: owners,
		profiles: NewProfileService(ProfileServiceConfig{
			Owners:   owners,
			Profiles: store,
			Links:    store,
			Products: store,
			Cache:    c,
			BaseURL:  "https://webboss.link/",
			Logger:   testLogger(),
		}),
		links:    NewLinkService(owners, store, nil, testLogger()),
		products: NewProductService(owners, store, nil, testLogger()),
		recorder: NewEventRecorder(EventRecorderConfig{Events: store, Logger: testLogger()}),
		analytics: NewAnalyticsService(AnalyticsServiceConfig{
			Owners: owners,
			Events: store,
			Links:  store,
			Logger: testLogger(),
		}),
	}
}

func (f *fixture) createProfile(userID, username string) *model.Profile {
	p, err := f.profiles.CreateProfile(context.Background(), userID, CreateProfileInput{
		Username: username,
		FullName: "Test " + username,
	})
	if err != nil {
		panic(err)
	}
	return p
}
