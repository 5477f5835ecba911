package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cre_catalog/internal/domain"
)

const statsKey = "catalog:stats"

func propertyKey(id string) string { return "catalog:property:" + id }

func listKey(classification, city string, limit int) string {
	return fmt.Sprintf("catalog:list:%s:%s:%d", classification, city, limit)
}

type QueryService struct {
	repo     domain.CatalogRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(r domain.CatalogRepository, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{repo: r, cache: c, cacheTTL: ttl}
}

func (s *QueryService) GetProperty(ctx context.Context, id string) (domain.Property, error) {
	key := propertyKey(id)
	var cached domain.Property
	if ok, _ := s.cache.Get(ctx, key, &cached); ok {
		return cached, nil
	}
	p, err := s.repo.GetProperty(ctx, id)
	if err != nil {
		return domain.Property{}, err
	}
	_ = s.cache.Set(ctx, key, p, int(s.cacheTTL.Seconds()))
	return p, nil
}

func (s *QueryService) ListProperties(ctx context.Context, q domain.CatalogQuery) (domain.CatalogPage, error) {
	if q.Limit <= 0 {
		q.Limit = 50
	}
	if q.Limit > 200 {
		q.Limit = 200
	}
	key := listKey(q.Classification, q.City, q.Limit)
	var cached domain.CatalogPage
	if ok, _ := s.cache.Get(ctx, key, &cached); ok {
		return cached, nil
	}

	page, err := s.repo.ListProperties(ctx, q)
	if err != nil {
		return domain.CatalogPage{}, err
	}

	// copy slice to avoid aliasing the repo's backing array (prevents callers from mutating cached value)
	copyPage := deepCopyCatalogPage(page)

	// optional size guard
	if b, _ := json.Marshal(copyPage); len(b) < 1_000_000 {
		_ = s.cache.Set(ctx, key, copyPage, int(s.cacheTTL.Seconds()))
	}
	return copyPage, nil
}

func (s *QueryService) Stats(ctx context.Context) (domain.CatalogStats, error) {
	var cached domain.CatalogStats
	if ok, _ := s.cache.Get(ctx, statsKey, &cached); ok {
		return cached, nil
	}
	st, err := s.repo.Stats(ctx)
	if err != nil {
		return domain.CatalogStats{}, err
	}
	_ = s.cache.Set(ctx, statsKey, st, int(s.cacheTTL.Seconds()))
	return st, nil
}

// deepCopyCatalogPage keeps Items non-nil so an empty page still encodes
// as [].
func deepCopyCatalogPage(in domain.CatalogPage) domain.CatalogPage {
	out := domain.CatalogPage{Items: make([]domain.Property, len(in.Items))}
	copy(out.Items, in.Items)
	return out
}
