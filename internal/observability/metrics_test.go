package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestObserversAreNoOpsBeforeInit(t *testing.T) {
	// A fresh process state: enabled defaults false. None of these should
	// panic even though no collectors have been registered.
	ObserveHTTP("GET", "/", 200, 0.01)
	IncCacheOutcome("hit")
	ObserveBackendLoad("tile", 0.01, "")
	SetTilesResident(3)
	IncBatchPoints("ok", 5)
}

func TestInitRegistersCollectorsWhenEnabled(t *testing.T) {
	reg := prometheus.NewRegistry()
	Init(reg, true)
	if !Enabled() {
		t.Fatal("Enabled() = false after Init(reg, true)")
	}

	ObserveHTTP("GET", "/status", 200, 0.002)
	IncCacheOutcome("miss")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	var sawHTTP, sawCache bool
	for _, mf := range mfs {
		switch mf.GetName() {
		case "http_requests_total":
			sawHTTP = true
		case "tile_cache_outcome_total":
			sawCache = true
		}
	}
	if !sawHTTP {
		t.Error("http_requests_total was not registered/collected")
	}
	if !sawCache {
		t.Error("tile_cache_outcome_total was not registered/collected")
	}
}

func TestInitDisabledLeavesCollectorsNil(t *testing.T) {
	enabled.Store(false)
	httpRequestsTotal = nil
	Init(nil, false)
	if Enabled() {
		t.Fatal("Enabled() = true after Init(nil, false)")
	}
	ObserveHTTP("GET", "/", 200, 0.01)
}
