package tileloader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/racemap/elevation-service/internal/elevationerr"
	"github.com/racemap/elevation-service/internal/geokey"
)

type httpLoader struct {
	baseURL string
	client  *http.Client
	opts    Options
}

func newHTTPLoader(baseURL string, opts Options) *httpLoader {
	return &httpLoader{
		baseURL: baseURL,
		opts:    opts,
		// A single client is reused across requests so connections pool
		// (spec.md §5, "single HTTP client ... reused across requests").
		client: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        256,
				MaxIdleConnsPerHost: 128,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

func (h *httpLoader) Load(ctx context.Context, key geokey.CellKey) ([]byte, error) {
	url := fmt.Sprintf("%s/%s", h.baseURL, key.Path())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, elevationerr.Wrap(elevationerr.BackendFailure, "build tile request", err)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, elevationerr.Wrap(elevationerr.BackendFailure, "fetch "+url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, elevationerr.New(elevationerr.TileNotFound, url)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, elevationerr.New(elevationerr.BackendFailure,
			fmt.Sprintf("unexpected status %d fetching %s", resp.StatusCode, url))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, elevationerr.Wrap(elevationerr.BackendFailure, "read response body", err)
	}
	return maybeGunzip(raw, h.opts.Gzip)
}
