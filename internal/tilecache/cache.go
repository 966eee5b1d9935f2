// Package tilecache provides a bounded, coalescing cache of decoded HGT
// tiles. At most one load is ever in flight per key: concurrent callers for
// the same tile share a single backend fetch via singleflight, and the
// result is promoted in an LRU so that hot tiles stay resident.
package tilecache

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/racemap/elevation-service/internal/geokey"
	"github.com/racemap/elevation-service/internal/hgt"
)

// Outcome classifies how a Get call was satisfied, for logging and metrics
// (it is threaded into the log context as hit_class).
type Outcome int

const (
	Miss Outcome = iota
	Hit
	Coalesced
	Error
)

func (o Outcome) String() string {
	switch o {
	case Hit:
		return "hit"
	case Coalesced:
		return "coalesced"
	case Error:
		return "error"
	default:
		return "miss"
	}
}

// LoadFunc fetches and decodes the tile for key when it isn't cached.
type LoadFunc func(ctx context.Context, key geokey.CellKey) (*hgt.Tile, error)

// Cache is a bounded LRU of *hgt.Tile guarded by single-flight coalescing.
// A zero Cache is not usable; construct with New.
type Cache struct {
	lru    *lru.Cache[geokey.CellKey, *hgt.Tile]
	flight singleflight.Group
}

// New builds a Cache holding at most size entries. size must be positive.
func New(size int) (*Cache, error) {
	backing, err := lru.New[geokey.CellKey, *hgt.Tile](size)
	if err != nil {
		return nil, err
	}
	return &Cache{lru: backing}, nil
}

// Get returns the cached tile for key, loading it via load on a miss.
// Concurrent Get calls for the same key share one in-flight load: every
// waiter observes the same error or the same *hgt.Tile, and the tile is
// promoted in the LRU whether it arrived via hit, coalesced wait, or fresh
// load. Failed loads are never cached, so the next call retries the
// backend.
func (c *Cache) Get(ctx context.Context, key geokey.CellKey, load LoadFunc) (*hgt.Tile, Outcome, error) {
	if tile, ok := c.lru.Get(key); ok {
		return tile, Hit, nil
	}

	type result struct {
		tile *hgt.Tile
	}

	v, err, shared := c.flight.Do(flightKey(key), func() (interface{}, error) {
		tile, err := load(ctx, key)
		if err != nil {
			return nil, err
		}
		c.lru.Add(key, tile)
		return result{tile: tile}, nil
	})
	if err != nil {
		return nil, Error, err
	}

	outcome := Miss
	if shared {
		outcome = Coalesced
	}
	return v.(result).tile, outcome, nil
}

// Len reports the number of tiles currently resident.
func (c *Cache) Len() int {
	return c.lru.Len()
}

func flightKey(key geokey.CellKey) string {
	return key.Path()
}
