// Package elevation wires the tile locator, loader, cache, and decoder into
// a single elevation lookup, and exposes a status probe for health checks.
//
// Grounded on original_source/src/handlers.rs's get_elevation/get_status
// composition, adapted to the cache's coalescing Get signature.
package elevation

import (
	"context"
	"math/rand"
	"time"

	"github.com/racemap/elevation-service/internal/elevationerr"
	"github.com/racemap/elevation-service/internal/geokey"
	"github.com/racemap/elevation-service/internal/hgt"
	"github.com/racemap/elevation-service/internal/observability"
	"github.com/racemap/elevation-service/internal/tilecache"
	"github.com/racemap/elevation-service/internal/tileloader"
)

// Service answers elevation queries for a single coordinate.
type Service struct {
	loader tileloader.Loader
	cache  *tilecache.Cache
}

// New builds a Service backed by loader for tile fetches and cache for
// coalescing and eviction.
func New(loader tileloader.Loader, cache *tilecache.Cache) *Service {
	return &Service{loader: loader, cache: cache}
}

// GetElevation returns the interpolated elevation at (lat, lng). Coordinate
// validation happens before the cache or loader are ever touched, so an
// InvalidCoordinate never counts as a cache outcome.
func (s *Service) GetElevation(ctx context.Context, lat, lng float64) (int16, tilecache.Outcome, error) {
	if !geokey.Valid(lat, lng) {
		return 0, tilecache.Miss, elevationerr.New(elevationerr.InvalidCoordinate,
			"latitude/longitude out of range or not finite")
	}

	key := geokey.Locate(lat, lng)
	tile, outcome, err := s.cache.Get(ctx, key, s.loadTile)
	observability.IncCacheOutcome(outcome.String())
	observability.SetTilesResident(s.cache.Len())
	if err != nil {
		return 0, outcome, err
	}

	elevationValue, err := tile.Elevation(lat, lng)
	if err != nil {
		return 0, outcome, err
	}
	return elevationValue, outcome, nil
}

func (s *Service) loadTile(ctx context.Context, key geokey.CellKey) (*hgt.Tile, error) {
	start := time.Now()
	raw, err := s.loader.Load(ctx, key)
	if err != nil {
		observability.ObserveBackendLoad("tile", time.Since(start).Seconds(), elevationerr.KindOf(err).String())
		return nil, err
	}
	observability.ObserveBackendLoad("tile", time.Since(start).Seconds(), "")
	tile, err := hgt.New(raw, key)
	if err != nil {
		observability.ObserveBackendLoad("tile", 0, elevationerr.KindOf(err).String())
		return nil, err
	}
	return tile, nil
}

// Probe exercises GetElevation with a uniformly random coordinate in the
// valid domain and reports whether the service is healthy. The coordinate
// is drawn from the valid range, so InvalidCoordinate cannot occur; any
// loader or decoder error is returned and reports unhealthy.
func (s *Service) Probe(ctx context.Context) error {
	lat := rand.Float64()*180 - 90
	lng := rand.Float64()*360 - 180
	_, _, err := s.GetElevation(ctx, lat, lng)
	return err
}
