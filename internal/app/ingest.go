package app

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"cre_catalog/internal/adapters/observability"
	"cre_catalog/internal/domain"
	"cre_catalog/internal/pipeline"
)

// IngestService drives one catalog run: load the feed, run the pipeline,
// replace the stored catalog, and drop stale cache entries.
type IngestService struct {
	source  domain.ListingSource
	proc    *pipeline.Processor
	repo    domain.CatalogRepository
	cache   domain.Cache
	workers int
}

func NewIngestService(src domain.ListingSource, proc *pipeline.Processor,
	repo domain.CatalogRepository, cache domain.Cache, workers int) *IngestService {
	if workers <= 0 {
		workers = 1
	}
	return &IngestService{source: src, proc: proc, repo: repo, cache: cache, workers: workers}
}

// Run executes one full pipeline run. Property IDs are positional within
// the run, so the stored catalog is reset and rewritten as a whole; an
// empty feed leaves the previous catalog untouched.
func (s *IngestService) Run(ctx context.Context) ([]domain.Property, domain.RunSummary, error) {
	started := time.Now().UTC()

	listings, files, err := s.source.Load(ctx)
	if err != nil {
		return nil, domain.RunSummary{}, fmt.Errorf("load feed: %w", err)
	}
	sum := domain.RunSummary{StartedAt: started, FeedFiles: len(files), Listings: len(listings)}

	if len(listings) == 0 {
		log.Warn().Int("files", len(files)).Msg("feed empty, catalog left as is")
		sum.FinishedAt = time.Now().UTC()
		if err := s.repo.RecordRun(ctx, sum); err != nil {
			log.Warn().Err(err).Msg("record run failed")
		}
		return nil, sum, nil
	}
	for _, l := range listings {
		observability.ObserveListing(l.SourcePlatform)
	}

	props, err := s.proc.Process(listings)
	if err != nil {
		return nil, domain.RunSummary{}, err
	}
	sum.Properties = len(props)
	for _, p := range props {
		observability.ObserveProperty(string(p.Classification))
		for _, c := range p.Conflicts {
			observability.ObserveConflict(c.Field)
		}
		switch p.Classification {
		case domain.ClassUsable:
			sum.Usable++
		case domain.ClassFlagged:
			sum.Flagged++
		case domain.ClassDiscarded:
			sum.Discarded++
		}
	}

	if err := s.repo.ResetCatalog(ctx); err != nil {
		return nil, domain.RunSummary{}, fmt.Errorf("reset catalog: %w", err)
	}

	sem := semaphore.NewWeighted(int64(s.workers))
	var wg sync.WaitGroup
	var failed atomic.Int64

	for _, p := range props {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			return nil, domain.RunSummary{}, err
		}
		wg.Add(1)
		go func(prop domain.Property) {
			defer wg.Done()
			defer sem.Release(1)
			if err := s.repo.UpsertProperty(ctx, prop); err != nil {
				failed.Add(1)
				log.Warn().Str("property_id", prop.PropertyID).Err(err).Msg("upsert failed")
			}
		}(p)
	}
	wg.Wait()
	sum.Failed = int(failed.Load())

	if s.cache != nil {
		s.invalidateCatalog(ctx, props)
	}

	sum.FinishedAt = time.Now().UTC()
	if err := s.repo.RecordRun(ctx, sum); err != nil {
		log.Warn().Err(err).Msg("record run failed")
	}
	observability.ObserveRun(time.Since(started))
	return props, sum, nil
}

// invalidate the most common catalog cache variants
func (s *IngestService) invalidateCatalog(ctx context.Context, props []domain.Property) {
	_ = s.cache.Del(ctx, "catalog:stats")
	// The API default list (no filters, limit=50) is the hottest key.
	_ = s.cache.Del(ctx, listKey("", "", 50))
	for _, cl := range []domain.Classification{domain.ClassUsable, domain.ClassFlagged, domain.ClassDiscarded} {
		_ = s.cache.Del(ctx, listKey(string(cl), "", 50))
	}
	for _, p := range props {
		_ = s.cache.Del(ctx, propertyKey(p.PropertyID))
	}
}
