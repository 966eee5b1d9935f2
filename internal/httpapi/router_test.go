package httpapi

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/racemap/elevation-service/internal/elevation"
	"github.com/racemap/elevation-service/internal/elevationerr"
	"github.com/racemap/elevation-service/internal/geokey"
	"github.com/racemap/elevation-service/internal/tilecache"
)

// flatLoader serves a synthetic SRTM3 tile where every sample equals value,
// for every key it is asked about, except keys listed in failOn.
type flatLoader struct {
	value  int16
	failOn map[geokey.CellKey]error
}

func (f *flatLoader) Load(_ context.Context, key geokey.CellKey) ([]byte, error) {
	if err, ok := f.failOn[key]; ok {
		return nil, err
	}
	buf := make([]byte, 1201*1201*2)
	for i := 0; i < len(buf); i += 2 {
		binary.BigEndian.PutUint16(buf[i:i+2], uint16(f.value))
	}
	return buf, nil
}

func newTestRouter(t *testing.T, loader *flatLoader) http.Handler {
	t.Helper()
	return newTestRouterWithLogger(t, loader, nil)
}

func newTestRouterWithLogger(t *testing.T, loader *flatLoader, logr *slog.Logger) http.Handler {
	t.Helper()
	cache, err := tilecache.New(8)
	if err != nil {
		t.Fatalf("tilecache.New: %v", err)
	}
	svc := elevation.New(loader, cache)
	return NewRouter(svc, logr, Options{MaxPostSize: 500_000, MaxParallelProcessing: 8, MaxConcurrentHandlers: 0})
}

func TestStatusHealthy(t *testing.T) {
	router := newTestRouter(t, &flatLoader{value: 10})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/status", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if rr.Body.String() != "Ok" {
		t.Errorf("body = %q, want Ok", rr.Body.String())
	}
}

func TestAccessLogCarriesHitClass(t *testing.T) {
	var logBuf bytes.Buffer
	logr := slog.New(slog.NewJSONHandler(&logBuf, nil))
	router := newTestRouterWithLogger(t, &flatLoader{value: 42}, logr)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/?lat=45.5&lng=9.5", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %q", rr.Code, rr.Body.String())
	}

	if !strings.Contains(logBuf.String(), `"hit_class":"miss"`) {
		t.Errorf("access log = %q, want it to contain hit_class=miss for a first-time lookup", logBuf.String())
	}

	logBuf.Reset()
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/?lat=45.5&lng=9.5", nil))
	if !strings.Contains(logBuf.String(), `"hit_class":"hit"`) {
		t.Errorf("access log = %q, want it to contain hit_class=hit for a repeat lookup", logBuf.String())
	}
}

func TestGetElevationHappyPath(t *testing.T) {
	router := newTestRouter(t, &flatLoader{value: 42})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/?lat=45.5&lng=9.5", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %q", rr.Code, rr.Body.String())
	}
	var got int16
	if err := json.Unmarshal(bytes.TrimSpace(rr.Body.Bytes()), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got != 42 {
		t.Errorf("elevation = %d, want 42", got)
	}
}

func TestGetElevationAliasPath(t *testing.T) {
	router := newTestRouter(t, &flatLoader{value: 7})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api?lat=1&lng=1", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestGetElevationInvalidCoordinate(t *testing.T) {
	router := newTestRouter(t, &flatLoader{value: 1})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/?lat=120&lng=9.5", nil))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestGetElevationMissingTile(t *testing.T) {
	key := geokey.Locate(3, 3)
	loader := &flatLoader{value: 1, failOn: map[geokey.CellKey]error{
		key: elevationerr.New(elevationerr.TileNotFound, "no such tile"),
	}}
	router := newTestRouter(t, loader)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/?lat=3.5&lng=3.5", nil))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
}

func TestPostElevationsPreservesOrder(t *testing.T) {
	router := newTestRouter(t, &flatLoader{value: 5})
	body := `[[1.0,1.0],[2.0,2.0],[3.0,3.0]]`
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %q", rr.Code, rr.Body.String())
	}
	var resp struct {
		Elevations []int16 `json:"elevations"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Elevations) != 3 {
		t.Fatalf("got %d elevations, want 3", len(resp.Elevations))
	}
	for _, v := range resp.Elevations {
		if v != 5 {
			t.Errorf("elevation = %d, want 5", v)
		}
	}
}

func TestPostElevationsShortCircuitsOnError(t *testing.T) {
	key := geokey.Locate(9, 9)
	loader := &flatLoader{value: 5, failOn: map[geokey.CellKey]error{
		key: elevationerr.New(elevationerr.TileNotFound, "no such tile"),
	}}
	router := newTestRouter(t, loader)
	body := `[[1.0,1.0],[9.5,9.5]]`
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
}

func TestOptionsPreflight(t *testing.T) {
	router := newTestRouter(t, &flatLoader{value: 1})
	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK && rr.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 200 or 204", rr.Code)
	}
}
