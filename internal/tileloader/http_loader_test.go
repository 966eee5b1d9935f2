package tileloader

import (
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/racemap/elevation-service/internal/elevationerr"
	"github.com/racemap/elevation-service/internal/geokey"
)

func gzipBytes(t *testing.T, payload []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(payload); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestHTTPLoaderSuccess(t *testing.T) {
	payload := []byte("tile-bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/N45/N45E009.hgt.gz" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Write(gzipBytes(t, payload))
	}))
	defer srv.Close()

	loader := newHTTPLoader(srv.URL, Options{Gzip: true})
	got, err := loader.Load(context.Background(), geokey.CellKey{Lat: 45, Lng: 9})
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("Load = %q, want %q", got, payload)
	}
}

func TestHTTPLoaderNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	loader := newHTTPLoader(srv.URL, Options{Gzip: true})
	_, err := loader.Load(context.Background(), geokey.CellKey{Lat: 1, Lng: 1})
	if elevationerr.KindOf(err) != elevationerr.TileNotFound {
		t.Errorf("kind = %v, want TileNotFound", elevationerr.KindOf(err))
	}
}

func TestHTTPLoaderServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	loader := newHTTPLoader(srv.URL, Options{Gzip: true})
	_, err := loader.Load(context.Background(), geokey.CellKey{Lat: 1, Lng: 1})
	if elevationerr.KindOf(err) != elevationerr.BackendFailure {
		t.Errorf("kind = %v, want BackendFailure", elevationerr.KindOf(err))
	}
}
