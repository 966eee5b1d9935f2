// Package hgt decodes SRTM HGT elevation tiles (raw big-endian 16-bit
// signed samples, row-major, northernmost row first) and bilinearly
// interpolates elevation at an arbitrary fractional coordinate.
//
// Grounded directly on original_source/src/tileset/hgt.rs; the bounds
// check is redesigned per spec.md's REDESIGN FLAG (clamped row/col
// indices) rather than the original's unclamped offset math, which can
// read one row/column past the buffer when row or col lands exactly on
// the tile's far edge.
package hgt

import (
	"encoding/binary"
	"math"

	"github.com/racemap/elevation-service/internal/elevationerr"
	"github.com/racemap/elevation-service/internal/geokey"
)

// Size in bytes of a 1 arc-second (SRTM1) and 3 arc-second (SRTM3) tile.
const (
	srtm1Bytes = 25934402
	srtm1Size  = 3601
	srtm3Bytes = 2884802
	srtm3Size  = 1201
)

// Tile is an immutable, decoded HGT elevation grid. It is created once
// from a decompressed tile buffer and read many times; it is never
// mutated, so a single *Tile is safe to share across goroutines.
type Tile struct {
	buffer []byte
	sw     geokey.CellKey
	size   int
}

// New validates buf's length and wraps it as a Tile whose south-west
// corner is sw. The buffer is retained, not copied.
func New(buf []byte, sw geokey.CellKey) (*Tile, error) {
	var size int
	switch len(buf) {
	case srtm1Bytes:
		size = srtm1Size
	case srtm3Bytes:
		size = srtm3Size
	default:
		return nil, elevationerr.New(elevationerr.InvalidTileFormat,
			"unknown tile format (1 arcsecond and 3 arcsecond supported)")
	}
	return &Tile{buffer: buf, sw: sw, size: size}, nil
}

// Size returns the grid's side length in samples (1201 or 3601).
func (t *Tile) Size() int { return t.size }

// Elevation returns the bilinearly interpolated elevation at (lat, lng),
// truncating to int16 at each mixing step exactly as spec.md §4.2
// prescribes.
func (t *Tile) Elevation(lat, lng float64) (int16, error) {
	n := float64(t.size - 1)
	swLat, swLng := t.sw.SW()
	row := (lat - swLat) * n
	col := (lng - swLng) * n

	if row < 0 || col < 0 || row > n || col > n {
		return 0, elevationerr.New(elevationerr.OutOfTileBounds,
			"latitude/longitude is outside tile bounds")
	}

	return t.interpolate(row, col, n)
}

func (t *Tile) interpolate(row, col, n float64) (int16, error) {
	rowLo := math.Floor(row)
	colLo := math.Floor(col)
	rowFrac := row - rowLo
	colFrac := col - colLo

	// Clamp the "high" index to the last valid row/col. When row (or col)
	// sits exactly on the grid edge, rowLo == n and rowFrac == 0, so the
	// clamped sample is always weighted by zero and the clamp never
	// changes the result — it only prevents reading past the buffer.
	rowHi := rowLo + 1
	if rowHi > n {
		rowHi = n
	}
	colHi := colLo + 1
	if colHi > n {
		colHi = n
	}

	vLoLo, err := t.sample(int(rowLo), int(colLo))
	if err != nil {
		return 0, err
	}
	vLoHi, err := t.sample(int(rowLo), int(colHi))
	if err != nil {
		return 0, err
	}
	vHiLo, err := t.sample(int(rowHi), int(colLo))
	if err != nil {
		return 0, err
	}
	vHiHi, err := t.sample(int(rowHi), int(colHi))
	if err != nil {
		return 0, err
	}

	low := int16(float64(vLoLo)*(1-colFrac) + float64(vLoHi)*colFrac)
	high := int16(float64(vHiLo)*(1-colFrac) + float64(vHiHi)*colFrac)
	result := int16(float64(low)*(1-rowFrac) + float64(high)*rowFrac)
	return result, nil
}

// sample reads the raw int16 at grid (row, col). HGT stores its
// northernmost row first, so row r lives at buffer row (size-r-1).
func (t *Tile) sample(row, col int) (int16, error) {
	offset := ((t.size - row - 1) * t.size + col) * 2
	if offset < 0 || offset+1 >= len(t.buffer) {
		return 0, elevationerr.New(elevationerr.OutOfTileBounds, "sample offset exceeds buffer length")
	}
	return int16(binary.BigEndian.Uint16(t.buffer[offset : offset+2])), nil
}
