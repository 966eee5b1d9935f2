package tileloader

import (
	"bytes"
	"compress/gzip"
	"io"

	"github.com/racemap/elevation-service/internal/elevationerr"
)

// maybeGunzip decompresses raw when gzip is requested, otherwise returns it
// unchanged. Decompression failures are reported as InvalidTileFormat,
// matching spec.md §4.3 step 4.
func maybeGunzip(raw []byte, gzipEnabled bool) ([]byte, error) {
	if !gzipEnabled {
		return raw, nil
	}
	r, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, elevationerr.Wrap(elevationerr.InvalidTileFormat, "gunzip tile", err)
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, elevationerr.Wrap(elevationerr.InvalidTileFormat, "gunzip tile", err)
	}
	return out, nil
}
