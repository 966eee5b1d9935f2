// Package observability exposes Prometheus metrics for the elevation
// service: HTTP request counters/histograms, cache hit/miss/coalesced
// counters, and backend loader latency.
//
// Grounded on mohammed-shakir-h3-spatial-cache's internal/core/observability
// package: a package-level atomic "enabled" gate set once by Init, with
// every Observe*/Inc* helper a no-op when metrics are disabled or before
// Init runs.
package observability

import (
	"strconv"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

var enabled atomic.Bool

// Init registers the service's collectors with r and enables recording.
// When isEnabled is false (or r is nil) every Observe/Inc call below is a
// no-op, so call sites never need their own enabled check.
func Init(r prometheus.Registerer, isEnabled bool) {
	enabled.Store(isEnabled)
	if !isEnabled || r == nil {
		return
	}
	initCollectors(r)
}

func Enabled() bool { return enabled.Load() }

var (
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec
	cacheOutcomeTotal          *prometheus.CounterVec
	backendLatencySeconds      *prometheus.HistogramVec
	backendErrorsTotal         *prometheus.CounterVec
	tilesResidentGauge         prometheus.Gauge
	batchPointsTotal           *prometheus.CounterVec
)

func initCollectors(r prometheus.Registerer) {
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total number of HTTP requests."},
		[]string{"method", "route", "status"},
	)
	httpRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		},
		[]string{"method", "route", "status"},
	)

	cacheOutcomeTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "tile_cache_outcome_total", Help: "Tile cache lookups by outcome (hit|miss|coalesced|error)."},
		[]string{"outcome"},
	)

	backendLatencySeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tile_backend_latency_seconds",
			Help:    "Latency of tile backend loads in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		},
		[]string{"backend"},
	)
	backendErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "tile_backend_errors_total", Help: "Tile backend load failures by error kind."},
		[]string{"kind"},
	)

	tilesResidentGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "tile_cache_resident_tiles", Help: "Number of decoded tiles currently resident in the cache."},
	)

	batchPointsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "batch_points_total", Help: "Points evaluated through the batch orchestrator by outcome."},
		[]string{"outcome"},
	)

	r.MustRegister(
		httpRequestsTotal, httpRequestDurationSeconds,
		cacheOutcomeTotal,
		backendLatencySeconds, backendErrorsTotal,
		tilesResidentGauge,
		batchPointsTotal,
	)
}

// ObserveHTTP records one completed HTTP request.
func ObserveHTTP(method, route string, status int, durationSeconds float64) {
	if !enabled.Load() || httpRequestsTotal == nil {
		return
	}
	st := strconv.Itoa(status)
	httpRequestsTotal.WithLabelValues(method, route, st).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route, st).Observe(durationSeconds)
}

// IncCacheOutcome records one tilecache.Get resolution (hit, miss,
// coalesced, or error).
func IncCacheOutcome(outcome string) {
	if !enabled.Load() || cacheOutcomeTotal == nil {
		return
	}
	cacheOutcomeTotal.WithLabelValues(outcome).Inc()
}

// ObserveBackendLoad records the latency of one tile backend fetch, and
// increments a failure counter by error kind when errKind is non-empty.
func ObserveBackendLoad(backend string, durationSeconds float64, errKind string) {
	if !enabled.Load() {
		return
	}
	if backendLatencySeconds != nil {
		backendLatencySeconds.WithLabelValues(backend).Observe(durationSeconds)
	}
	if errKind != "" && backendErrorsTotal != nil {
		backendErrorsTotal.WithLabelValues(errKind).Inc()
	}
}

// SetTilesResident reports the cache's current tile count.
func SetTilesResident(n int) {
	if !enabled.Load() || tilesResidentGauge == nil {
		return
	}
	tilesResidentGauge.Set(float64(n))
}

// IncBatchPoints records n points evaluated through the batch orchestrator
// with the given outcome ("ok" or "error").
func IncBatchPoints(outcome string, n int) {
	if !enabled.Load() || batchPointsTotal == nil || n <= 0 {
		return
	}
	batchPointsTotal.WithLabelValues(outcome).Add(float64(n))
}
