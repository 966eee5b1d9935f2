// Package tileloader fetches a compressed HGT tile from one of three
// backends (local filesystem, HTTP, S3) selected once at startup from a
// single base URI, and gunzips it into raw tile bytes.
//
// Grounded on original_source/src/tileset/{file,http,s3}_tileset.rs for the
// fetch+gunzip contract, and on jcom-dev-zmanim/cmd/seed-geodata/main.go
// and letsencrypt-ctile/main.go (other_examples) for idiomatic Go AWS SDK
// v2 S3 object access.
package tileloader

import (
	"context"
	"strings"

	"github.com/racemap/elevation-service/internal/geokey"
)

// Loader fetches the decompressed bytes of the tile at key. All three
// backend variants share this contract (spec.md §4.3); callers hand the
// bytes to hgt.New.
type Loader interface {
	Load(ctx context.Context, key geokey.CellKey) ([]byte, error)
}

// Options configures every backend. Gzip is always true in production
// (spec.md §4.3) but left adjustable for tests against raw fixtures.
type Options struct {
	Gzip bool
	S3   S3Options
}

// S3Options carries explicit S3 credentials/region/endpoint overrides.
// Unset fields fall back to the environment-provided AWS defaults. Bucket
// is only consulted when the base URI passed to New is the bare "s3://"
// scheme with no bucket segment, so TILE_SET_PATH=s3:// plus S3_BUCKET is
// an accepted equivalent to TILE_SET_PATH=s3://bucket.
type S3Options struct {
	Bucket          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Region          string
}

// New selects a backend from the shape of base:
//
//	s3://bucket[/prefix]   -> S3
//	http(s)://...          -> HTTP
//	anything else          -> local filesystem path
func New(base string, opts Options) (Loader, error) {
	switch {
	case strings.HasPrefix(base, "s3://"):
		return newS3Loader(strings.TrimPrefix(base, "s3://"), opts)
	case strings.HasPrefix(base, "http://"), strings.HasPrefix(base, "https://"):
		return newHTTPLoader(base, opts), nil
	default:
		return newFileLoader(base, opts), nil
	}
}
