package app_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"cre_catalog/internal/app"
	"cre_catalog/internal/domain"
)

// ---- fakes ----

type fakeRepo struct {
	prop  domain.Property
	page  domain.CatalogPage
	stats domain.CatalogStats

	mu      sync.Mutex // guards upserts; ingestion writes concurrently
	resets  int
	upserts []domain.Property
	runs    []domain.RunSummary

	upsertErr error
	getErr    error
}

func (f *fakeRepo) ResetCatalog(ctx context.Context) error { f.resets++; return nil }
func (f *fakeRepo) UpsertProperty(ctx context.Context, p domain.Property) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts = append(f.upserts, p)
	return nil
}
func (f *fakeRepo) RecordRun(ctx context.Context, run domain.RunSummary) error {
	f.runs = append(f.runs, run)
	return nil
}
func (f *fakeRepo) GetProperty(ctx context.Context, id string) (domain.Property, error) {
	if f.getErr != nil {
		return domain.Property{}, f.getErr
	}
	return f.prop, nil
}
func (f *fakeRepo) ListProperties(ctx context.Context, q domain.CatalogQuery) (domain.CatalogPage, error) {
	return f.page, nil
}
func (f *fakeRepo) Stats(ctx context.Context) (domain.CatalogStats, error) {
	return f.stats, nil
}

type fakeCache struct {
	store map[string]any
	dels  []string
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	if c.store == nil {
		return false, nil
	}
	v, ok := c.store[key]
	if !ok {
		return false, nil
	}
	switch d := dst.(type) {
	case *domain.Property:
		*d = v.(domain.Property)
	case *domain.CatalogPage:
		*d = v.(domain.CatalogPage)
	case *domain.CatalogStats:
		*d = v.(domain.CatalogStats)
	}
	return true, nil
}
func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string]any{}
	}
	c.store[key] = v
	return nil
}
func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.dels = append(c.dels, key)
	delete(c.store, key)
	return nil
}

// ---- tests ----

func TestGetProperty_CacheMissThenHit(t *testing.T) {
	repo := &fakeRepo{
		prop: domain.Property{
			PropertyID:     "PROP-000000",
			Data:           map[string]any{"address": "100 Pine St"},
			Classification: domain.ClassUsable,
		},
	}
	cache := &fakeCache{}
	q := app.NewQueryService(repo, cache, 10*time.Minute)

	// Miss (first time, populates cache)
	p, err := q.GetProperty(context.Background(), "PROP-000000")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if p.PropertyID != "PROP-000000" || p.Data["address"] != "100 Pine St" {
		t.Fatalf("unexpected property: %+v", p)
	}

	// Mutate repo to ensure second read indeed comes from cache
	repo.prop.Data = map[string]any{"address": "SHOULD NOT SEE THIS"}

	// Hit (served from cache)
	p2, err := q.GetProperty(context.Background(), "PROP-000000")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if p2.Data["address"] != "100 Pine St" {
		t.Fatalf("expected cached address, got %v", p2.Data["address"])
	}
}

func TestListProperties_Cache(t *testing.T) {
	repo := &fakeRepo{
		page: domain.CatalogPage{Items: []domain.Property{
			{PropertyID: "PROP-000000", Classification: domain.ClassUsable},
		}},
	}
	cache := &fakeCache{}
	q := app.NewQueryService(repo, cache, 10*time.Minute)

	out, err := q.ListProperties(context.Background(), domain.CatalogQuery{Limit: 10})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(out.Items) != 1 || out.Items[0].PropertyID != "PROP-000000" {
		t.Fatalf("unexpected page: %+v", out.Items)
	}

	// Change repo, call again -> should come from cache
	repo.page.Items[0].PropertyID = "PROP-999999"
	out2, _ := q.ListProperties(context.Background(), domain.CatalogQuery{Limit: 10})
	if out2.Items[0].PropertyID != "PROP-000000" {
		t.Fatalf("expected cached id, got %s", out2.Items[0].PropertyID)
	}
}

func TestListProperties_LimitBounds(t *testing.T) {
	repo := &fakeRepo{}
	cache := &fakeCache{}
	q := app.NewQueryService(repo, cache, time.Minute)

	if _, err := q.ListProperties(context.Background(), domain.CatalogQuery{}); err != nil {
		t.Fatalf("err: %v", err)
	}
	if _, ok := cache.store["catalog:list:::50"]; !ok {
		t.Fatalf("default limit key missing, cache has %v", keys(cache.store))
	}

	if _, err := q.ListProperties(context.Background(), domain.CatalogQuery{Limit: 1000}); err != nil {
		t.Fatalf("err: %v", err)
	}
	if _, ok := cache.store["catalog:list:::200"]; !ok {
		t.Fatalf("capped limit key missing, cache has %v", keys(cache.store))
	}
}

func TestStats_CacheMissThenHit(t *testing.T) {
	repo := &fakeRepo{
		stats: domain.CatalogStats{
			Total:            3,
			ByClassification: map[string]int{"usable": 2, "discarded": 1},
		},
	}
	cache := &fakeCache{}
	q := app.NewQueryService(repo, cache, time.Minute)

	st, err := q.Stats(context.Background())
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if st.Total != 3 {
		t.Fatalf("total = %d", st.Total)
	}

	repo.stats.Total = 99
	st2, _ := q.Stats(context.Background())
	if st2.Total != 3 {
		t.Fatalf("expected cached total 3, got %d", st2.Total)
	}
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
