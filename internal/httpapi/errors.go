package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/racemap/elevation-service/internal/elevationerr"
)

// statusForKind maps spec.md §7's error taxonomy to HTTP status codes.
func statusForKind(kind elevationerr.Kind) int {
	switch kind {
	case elevationerr.InvalidCoordinate, elevationerr.OutOfTileBounds:
		return http.StatusBadRequest
	case elevationerr.TileNotFound:
		return http.StatusNotFound
	case elevationerr.InvalidTileFormat, elevationerr.BackendFailure:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusForKind(elevationerr.KindOf(err))
	writePlain(w, status, http.StatusText(status))
}

func writePlain(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func parseLatLng(latStr, lngStr string) (lat, lng float64, err error) {
	if latStr == "" || lngStr == "" {
		return 0, 0, fmt.Errorf("lat and lng query parameters are required")
	}
	lat, err = strconv.ParseFloat(latStr, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid lat: %w", err)
	}
	lng, err = strconv.ParseFloat(lngStr, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid lng: %w", err)
	}
	return lat, lng, nil
}
