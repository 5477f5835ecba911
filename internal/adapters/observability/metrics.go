package observability

import (
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "catalog", Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "catalog", Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	ListingsIngested = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "catalog", Name: "listings_ingested_total", Help: "Raw listings read from the feed."},
		[]string{"platform"},
	)
	PropertiesBuilt = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "catalog", Name: "properties_built_total", Help: "Consolidated properties per classification."},
		[]string{"classification"},
	)
	FieldConflicts = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "catalog", Name: "field_conflicts_total", Help: "Cross-platform field conflicts."},
		[]string{"field"},
	)
	RunDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "catalog", Name: "run_duration_seconds",
			Help:    "Pipeline run duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
	)
	CacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "catalog", Name: "cache_events_total", Help: "Cache hits/misses/sets/dels."},
		[]string{"cache", "event"}, // event: hit|miss|set|del
	)
)

func Serve() {
	addr := os.Getenv("METRICS_ADDR")
	if addr == "" {
		return // disabled
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler(InitRegistry()))

	go func() {
		srv := &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		log.Info().Str("addr", addr).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
}

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(HTTPRequests, HTTPLatency, ListingsIngested, PropertiesBuilt,
		FieldConflicts, RunDuration, CacheEvents)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveListing(platform string) {
	ListingsIngested.WithLabelValues(platform).Inc()
}

func ObserveProperty(classification string) {
	PropertiesBuilt.WithLabelValues(classification).Inc()
}

func ObserveConflict(field string) {
	FieldConflicts.WithLabelValues(field).Inc()
}

func ObserveRun(dur time.Duration) {
	RunDuration.Observe(dur.Seconds())
}

func ObserveCache(cache, event string) { // event: hit|miss|set|del
	CacheEvents.WithLabelValues(cache, event).Inc()
}
