package shared

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"cre_catalog/internal/pipeline"
)

type Config struct {
	AppEnv        string
	HTTPAddr      string
	MetricsAddr   string
	MySQLDSN      string
	RedisAddr     string
	RedisDB       int
	RedisPass     string
	FeedDir       string
	CatalogOut    string
	MandateFile   string
	Workers       int
	HTTPRateLimit int
	CacheTTL      time.Duration

	MatchThreshold     float64
	AutoMatchThreshold float64
	AddressWeight      float64
	LocationWeight     float64
	TypeWeight         float64
	SizeWeight         float64
	PriceWeight        float64
	ConflictVariance   float64
	MinPrice           float64
	MaxPrice           float64
	MaxDaysOnMarket    int
	EnforceTypes       bool
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file, using process environment")
	}
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	afloat := func(k string, def float64) float64 {
		if v := os.Getenv(k); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return f
			}
		}
		return def
	}
	abool := func(k string, def bool) bool {
		if v := os.Getenv(k); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				return b
			}
		}
		return def
	}
	def := pipeline.DefaultConfig()
	c := Config{
		AppEnv:        env("APP_ENV", "prod"),
		HTTPAddr:      env("HTTP_ADDR", ":8080"),
		MetricsAddr:   env("METRICS_ADDR", ":9100"),
		MySQLDSN:      env("MYSQL_DSN", "root:root@tcp(localhost:3306)/catalog?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:     env("REDIS_ADDR", "localhost:6379"),
		RedisDB:       atoi("REDIS_DB", 0),
		RedisPass:     env("REDIS_PASSWORD", ""),
		FeedDir:       env("FEED_DIR", "data/feed"),
		CatalogOut:    env("CATALOG_OUT", ""),
		MandateFile:   env("MANDATE_FILE", ""),
		Workers:       atoi("PIPELINE_WORKERS", 8),
		HTTPRateLimit: atoi("HTTP_RATE_LIMIT", 50),
		CacheTTL:      time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,

		MatchThreshold:     afloat("MATCH_THRESHOLD", def.Match.Threshold),
		AutoMatchThreshold: afloat("AUTO_MATCH_THRESHOLD", def.Match.AutoThreshold),
		AddressWeight:      afloat("ADDRESS_WEIGHT", def.Match.Weights.Address),
		LocationWeight:     afloat("LOCATION_WEIGHT", def.Match.Weights.Location),
		TypeWeight:         afloat("TYPE_WEIGHT", def.Match.Weights.Type),
		SizeWeight:         afloat("SIZE_WEIGHT", def.Match.Weights.Size),
		PriceWeight:        afloat("PRICE_WEIGHT", def.Match.Weights.Price),
		ConflictVariance:   afloat("CONFLICT_VARIANCE_THRESHOLD", def.ConflictVariance),
		MinPrice:           afloat("MIN_PRICE", def.Mandate.MinPrice),
		MaxPrice:           afloat("MAX_PRICE", def.Mandate.MaxPrice),
		MaxDaysOnMarket:    atoi("MAX_DAYS_ON_MARKET", def.Mandate.MaxDaysOnMarket),
		EnforceTypes:       abool("ENFORCE_PROPERTY_TYPES", def.Mandate.EnforceTypes),
	}
	return c
}

// Pipeline assembles the processor configuration: package defaults,
// environment overrides, then the optional mandate file on top.
func (c Config) Pipeline() (pipeline.Config, error) {
	pc := pipeline.DefaultConfig()
	pc.Match.Threshold = c.MatchThreshold
	pc.Match.AutoThreshold = c.AutoMatchThreshold
	pc.Match.Weights = pipeline.SignalWeights{
		Address:  c.AddressWeight,
		Location: c.LocationWeight,
		Type:     c.TypeWeight,
		Size:     c.SizeWeight,
		Price:    c.PriceWeight,
	}
	pc.ConflictVariance = c.ConflictVariance
	pc.Mandate.MinPrice = c.MinPrice
	pc.Mandate.MaxPrice = c.MaxPrice
	pc.Mandate.MaxDaysOnMarket = c.MaxDaysOnMarket
	pc.Mandate.EnforceTypes = c.EnforceTypes
	if c.MandateFile != "" {
		if err := applyMandateFile(&pc.Mandate, c.MandateFile); err != nil {
			return pipeline.Config{}, fmt.Errorf("mandate file %s: %w", c.MandateFile, err)
		}
	}
	return pc, nil
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
