// Package httpapi exposes the elevation service over HTTP: a status probe,
// single-point GET lookups, and batch POST lookups, plus CORS preflight
// handling.
//
// Grounded on mohammed-shakir-h3-spatial-cache's internal/app/server and
// internal/core/server Run functions (chi.NewRouter + go-chi/cors +
// http.Server with ReadHeaderTimeout/ReadTimeout/WriteTimeout/IdleTimeout),
// with the route handlers themselves following
// original_source/src/handlers.rs's get_status/get_elevation/post_elevations
// three-handler shape.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/racemap/elevation-service/internal/batch"
	"github.com/racemap/elevation-service/internal/elevation"
	"github.com/racemap/elevation-service/internal/elevationerr"
	"github.com/racemap/elevation-service/internal/logger"
	"github.com/racemap/elevation-service/internal/observability"
)

// Options configures the router.
type Options struct {
	MaxPostSize           int64
	MaxParallelProcessing int
	MaxConcurrentHandlers int
}

// NewRouter builds the service's HTTP handler.
func NewRouter(svc *elevation.Service, logr *slog.Logger, opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(corsMiddleware())
	r.Use(admission(opts.MaxConcurrentHandlers))
	r.Use(accessLog(logr))

	h := &handlers{svc: svc, opts: opts}

	r.Get("/status", h.status)
	r.Get("/", h.getElevation)
	r.Get("/api", h.getElevation)
	r.Post("/", h.postElevations)
	r.Post("/api", h.postElevations)

	return r
}

func corsMiddleware() func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:         300,
	})
}

// admission bounds the number of request handlers running concurrently,
// the way spec.md's MAX_CONCURRENT_HANDLERS gates total in-flight work.
func admission(limit int) func(http.Handler) http.Handler {
	if limit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	sem := make(chan struct{}, limit)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
				next.ServeHTTP(w, req)
			case <-req.Context().Done():
				http.Error(w, "request canceled", http.StatusRequestTimeout)
			}
		})
	}
}

// accessLog logs one line per request, carrying the tile cache outcome
// the handler recorded via logger.WithHitClass (if any) as hit_class, read
// back from the HitClassRecorder installed before the handler runs. It
// logs with InfoContext rather than Info so the slog handler sees the
// request-scoped context (request_id) instead of a bare background context.
func accessLog(logr *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			start := time.Now()
			ctx := logger.WithRequestID(req.Context(), req.Header.Get("X-Request-Id"))
			ctx, hitClass := logger.WithHitClassRecorder(ctx)
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, req.WithContext(ctx))

			dur := time.Since(start)
			observability.ObserveHTTP(req.Method, routePattern(req), rec.status, dur.Seconds())
			if logr != nil {
				logr.InfoContext(ctx, "http request",
					"method", req.Method,
					"path", req.URL.Path,
					"status", rec.status,
					"dur", dur.String(),
					"hit_class", hitClass.Value(),
				)
			}
		})
	}
}

func routePattern(req *http.Request) string {
	if rc := chi.RouteContext(req.Context()); rc != nil && rc.RoutePattern() != "" {
		return rc.RoutePattern()
	}
	return req.URL.Path
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

type handlers struct {
	svc  *elevation.Service
	opts Options
}

func (h *handlers) status(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Probe(r.Context()); err != nil {
		writePlain(w, http.StatusInternalServerError, "Error")
		return
	}
	writePlain(w, http.StatusOK, "Ok")
}

func (h *handlers) getElevation(w http.ResponseWriter, r *http.Request) {
	lat, lng, err := parseLatLng(r.URL.Query().Get("lat"), r.URL.Query().Get("lng"))
	if err != nil {
		writeError(w, elevationerr.New(elevationerr.InvalidCoordinate, err.Error()))
		return
	}

	elevationValue, outcome, err := h.svc.GetElevation(r.Context(), lat, lng)
	logger.WithHitClass(r.Context(), outcome.String())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, elevationValue)
}

func (h *handlers) postElevations(w http.ResponseWriter, r *http.Request) {
	maxSize := h.opts.MaxPostSize
	if maxSize <= 0 {
		maxSize = 500_000
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxSize+1))
	if err != nil {
		writeError(w, elevationerr.Wrap(elevationerr.BackendFailure, "read request body", err))
		return
	}
	if int64(len(body)) > maxSize {
		writePlain(w, http.StatusRequestEntityTooLarge, "Request body too large")
		return
	}

	// Unmarshal into [][]float64 rather than [][2]float64: Go's fixed-size
	// array decoding silently discards extra elements and zero-fills
	// missing ones instead of erroring, which would let malformed points
	// like [1,2,3] or [1] through uncaught. The explicit length check
	// below is what actually enforces the two-element shape.
	var raw [][]float64
	if err := json.Unmarshal(body, &raw); err != nil {
		writeError(w, elevationerr.Wrap(elevationerr.InvalidCoordinate, "malformed request body", err))
		return
	}

	points := make([]batch.Point, len(raw))
	for i, pair := range raw {
		if len(pair) != 2 {
			writeError(w, elevationerr.New(elevationerr.InvalidCoordinate,
				fmt.Sprintf("point %d must be a two-element [lat, lng] array", i)))
			return
		}
		points[i] = batch.Point{Lat: pair[0], Lng: pair[1]}
	}

	concurrency := h.opts.MaxParallelProcessing
	if concurrency <= 0 {
		concurrency = 500
	}

	elevations, err := batch.Run(r.Context(), points, concurrency, func(ctx context.Context, p batch.Point) (int16, error) {
		v, _, err := h.svc.GetElevation(ctx, p.Lat, p.Lng)
		return v, err
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, batchResponse{Elevations: elevations})
}

type batchResponse struct {
	Elevations []int16 `json:"elevations"`
}
