// Package geokey maps a geographic coordinate to the SRTM tile that
// contains it and to that tile's on-disk/remote key.
//
// Grounded on original_source/src/tileset/tileset.rs (TileSetWithCache's
// get_file_path) and original_source/src/tileset.rs, generalized to the
// signed-floor semantics spec.md §4.1 requires.
package geokey

import (
	"fmt"
	"math"
)

// CellKey identifies the 1deg x 1deg tile whose south-west corner is at
// (Lat, Lng), both the mathematical floor of the queried coordinate.
type CellKey struct {
	Lat int32
	Lng int32
}

// Locate computes the CellKey containing (lat, lng). Callers must have
// already validated that lat and lng are finite.
func Locate(lat, lng float64) CellKey {
	return CellKey{
		Lat: int32(math.Floor(lat)),
		Lng: int32(math.Floor(lng)),
	}
}

// SW returns the key's south-west corner as floating-point degrees, the
// form the HGT decoder needs as its tile origin.
func (k CellKey) SW() (lat, lng float64) {
	return float64(k.Lat), float64(k.Lng)
}

// Path returns the tile's relative path, e.g. "N45/N45E009.hgt.gz" or
// "S46/S46W010.hgt.gz". The prefix sign is taken from the floored value,
// not the original coordinate's sign, so lat=-0.0 and lat=0.0 both
// produce "N00". Path components always use forward slashes.
func (k CellKey) Path() string {
	latDir := fmt.Sprintf("%s%02d", hemisphere(k.Lat, 'N', 'S'), abs32(k.Lat))
	lngDir := fmt.Sprintf("%s%03d", hemisphere(k.Lng, 'E', 'W'), abs32(k.Lng))
	return fmt.Sprintf("%s/%s%s.hgt.gz", latDir, latDir, lngDir)
}

func hemisphere(v int32, nonNegative, negative byte) string {
	if v < 0 {
		return string(negative)
	}
	return string(nonNegative)
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

// Valid reports whether (lat, lng) is a finite coordinate inside the
// service's domain: -90 <= lat <= 90, -180 <= lng <= 180.
func Valid(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lng) || math.IsInf(lng, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}
