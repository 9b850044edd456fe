package app_test

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/JCCTorres/toplist-backend-sub001/internal/domain"
)

// ---- fake repository ----

type fakeRepo struct {
	mu         sync.Mutex
	properties map[string]domain.Property
	mirror     map[string]domain.BookervilleProperty
	misses     []string
	contacts   []domain.ContactMessage
	client     map[string]domain.ClientProperty
	users      map[string]domain.User
	upsertErr  map[string]error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		properties: map[string]domain.Property{},
		mirror:     map[string]domain.BookervilleProperty{},
		client:     map[string]domain.ClientProperty{},
		users:      map[string]domain.User{},
		upsertErr:  map[string]error{},
	}
}

func (f *fakeRepo) UpsertProperty(ctx context.Context, p domain.Property) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.upsertErr[p.PropertyID]; err != nil {
		return err
	}
	f.properties[p.PropertyID] = p
	return nil
}

func (f *fakeRepo) UpsertBookerville(ctx context.Context, b domain.BookervilleProperty) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	// sync stamps never regress, matching the store's COALESCE
	if prev, ok := f.mirror[b.BkvID]; ok {
		if b.SummarySyncedAt == nil {
			b.SummarySyncedAt = prev.SummarySyncedAt
		}
		if b.DetailsSyncedAt == nil {
			b.DetailsSyncedAt = prev.DetailsSyncedAt
		}
	}
	f.mirror[b.BkvID] = b
	return nil
}

func (f *fakeRepo) DeactivateMissing(ctx context.Context, present []string, at time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	keep := map[string]bool{}
	for _, id := range present {
		keep[id] = true
	}
	n := 0
	for id, p := range f.properties {
		if !keep[id] && p.IsActive {
			p.IsActive = false
			f.properties[id] = p
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) SetCategory(ctx context.Context, id, category string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.properties[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Category = category
	f.properties[id] = p
	return nil
}

func (f *fakeRepo) LogMiss(ctx context.Context, id string, status int, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.misses = append(f.misses, id)
	return nil
}

func (f *fakeRepo) GetProperty(ctx context.Context, id string) (domain.Property, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.properties[id]
	if !ok {
		return domain.Property{}, domain.ErrNotFound
	}
	return p, nil
}

func (f *fakeRepo) ListCards(ctx context.Context, q domain.CardsQuery) ([]domain.PropertyCard, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.PropertyCard
	for _, p := range f.properties {
		if !p.IsActive {
			continue
		}
		card := domain.PropertyCard{PropertyID: p.PropertyID, Title: p.Title, Category: p.Category}
		_ = json.Unmarshal(p.Summary, &card.Summary)
		out = append(out, card)
	}
	return out, nil
}

func (f *fakeRepo) GetClientProperty(ctx context.Context, airbnbID string) (domain.ClientProperty, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp, ok := f.client[airbnbID]
	if !ok {
		return domain.ClientProperty{}, domain.ErrNotFound
	}
	return cp, nil
}

func (f *fakeRepo) ListStaleClientProperties(ctx context.Context, olderThan time.Time) ([]domain.ClientProperty, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.ClientProperty
	for _, cp := range f.client {
		if cp.LastSync == nil || cp.LastSync.Before(olderThan) {
			out = append(out, cp)
		}
	}
	return out, nil
}

func (f *fakeRepo) TouchClientProperty(ctx context.Context, airbnbID string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp, ok := f.client[airbnbID]
	if !ok {
		return domain.ErrNotFound
	}
	cp.LastSync = &at
	f.client[airbnbID] = cp
	return nil
}

func (f *fakeRepo) InsertContactMessage(ctx context.Context, m domain.ContactMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.contacts = append(f.contacts, m)
	return nil
}

// ---- fake users ----

type fakeUsers struct {
	byEmail map[string]domain.User
}

func (f *fakeUsers) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) GetUserByID(ctx context.Context, id int64) (domain.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrNotFound
}

// ---- fake remote client ----

type fakeClient struct {
	mu           sync.Mutex
	summaries    []map[string]any
	details      map[string]map[string]any
	detailsErr   map[string]error
	availability map[string]any
	rates        map[string]any
	reviews      []map[string]any
	searchOut    []map[string]any

	availabilityCalls int
	detailCalls       int
	searchCalls       int
	reviewCalls       int
}

func (f *fakeClient) PropertySummaries(ctx context.Context) ([]map[string]any, error) {
	return f.summaries, nil
}

func (f *fakeClient) PropertyDetails(ctx context.Context, id string) (map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detailCalls++
	if err := f.detailsErr[id]; err != nil {
		return nil, err
	}
	d, ok := f.details[id]
	if !ok {
		return nil, &domain.RemoteAPIError{Endpoint: "API-PropertyDetails", Status: 404, Attempts: 1, Err: domain.ErrNotFound}
	}
	return d, nil
}

func (f *fakeClient) Availability(ctx context.Context, id, from, to string) (map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.availabilityCalls++
	return f.availability, nil
}

func (f *fakeClient) Rates(ctx context.Context, id string) (map[string]any, error) {
	return f.rates, nil
}

func (f *fakeClient) Reviews(ctx context.Context, id string, limit int) ([]map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reviewCalls++
	return f.reviews, nil
}

func (f *fakeClient) Search(ctx context.Context, q domain.SearchQuery) ([]map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchCalls++
	return f.searchOut, nil
}

func (f *fakeClient) SubmitBooking(ctx context.Context, id string, booking map[string]string) (map[string]any, error) {
	return map[string]any{"status": "pending"}, nil
}

func (f *fakeClient) PaymentStatus(ctx context.Context, ref string) (map[string]any, error) {
	return map[string]any{"status": "unknown"}, nil
}

// ---- fake cache with a controllable clock ----

type fakeCacheEntry struct {
	b       []byte
	expires time.Time
}

type fakeCache struct {
	mu    sync.Mutex
	store map[string]fakeCacheEntry
	now   func() time.Time
}

func newFakeCache() *fakeCache {
	return &fakeCache{store: map[string]fakeCacheEntry{}, now: time.Now}
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.store[key]
	if !ok || c.now().After(e.expires) {
		return false, nil
	}
	return true, json.Unmarshal(e.b, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = fakeCacheEntry{b: b, expires: c.now().Add(time.Duration(ttlSec) * time.Second)}
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
	return nil
}
