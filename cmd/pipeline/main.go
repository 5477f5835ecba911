package main

import (
	"context"
	"database/sql"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"cre_catalog/internal/adapters/feed"
	"cre_catalog/internal/adapters/observability"
	redisad "cre_catalog/internal/adapters/redis"
	"cre_catalog/internal/app"
	"cre_catalog/internal/pipeline"
	"cre_catalog/internal/shared"
	mysqlrepo "cre_catalog/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Str("feed", cfg.FeedDir).
		Int("workers", cfg.Workers).
		Msg("pipeline starting")

	observability.Serve()

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)
	if err := repo.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("schema migration failed")
	}

	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err := cache.Ping(ctx); err != nil {
		log.Warn().Err(err).Msg("redis unreachable, stale cache entries may outlive this run")
	}

	pc, err := cfg.Pipeline()
	if err != nil {
		log.Fatal().Err(err).Msg("mandate overlay failed")
	}
	proc, err := pipeline.New(pc)
	if err != nil {
		log.Fatal().Err(err).Msg("pipeline config invalid")
	}

	ing := app.NewIngestService(feed.NewDir(cfg.FeedDir), proc, repo, cache, cfg.Workers)
	props, run, err := ing.Run(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("run failed")
	}

	if cfg.CatalogOut != "" {
		if err := feed.WriteCatalog(cfg.CatalogOut, props); err != nil {
			log.Fatal().Err(err).Msg("catalog export failed")
		}
		log.Info().Str("path", cfg.CatalogOut).Msg("catalog written")
	}

	log.Info().
		Int("files", run.FeedFiles).
		Int("listings", run.Listings).
		Int("properties", run.Properties).
		Int("usable", run.Usable).
		Int("flagged", run.Flagged).
		Int("discarded", run.Discarded).
		Int("failed", run.Failed).
		Dur("took", run.FinishedAt.Sub(run.StartedAt)).
		Msg("run completed")
}
