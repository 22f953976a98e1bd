package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/andig/vinfast/core"
	"github.com/andig/vinfast/core/storage"
	"github.com/andig/vinfast/provider"
	"github.com/andig/vinfast/util"
)

const historyDefaultLimit = 100

// jsonHandler is middleware that decorates responses with JSON content type
func jsonHandler(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		h.ServeHTTP(w, r)
	})
}

func jsonResponse(w http.ResponseWriter, content interface{}) {
	if err := json.NewEncoder(w).Encode(content); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func jsonError(w http.ResponseWriter, status int, err error) {
	w.WriteHeader(status)
	jsonResponse(w, map[string]string{"error": err.Error()})
}

// healthHandler reports the poll loop liveness
func healthHandler(coordinator *core.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := coordinator.Healthy(); err != nil {
			jsonError(w, http.StatusServiceUnavailable, err)
			return
		}

		res := struct {
			Available  bool   `json:"available"`
			LastUpdate string `json:"lastUpdate"`
			LastError  string `json:"lastError,omitempty"`
		}{
			Available:  coordinator.Available(),
			LastUpdate: coordinator.LastUpdate().Format("2006-01-02T15:04:05Z07:00"),
		}
		if err := coordinator.LastError(); err != nil {
			res.LastError = err.Error()
		}

		jsonResponse(w, res)
	}
}

// stateHandler returns the accumulated parameter cache
func stateHandler(cache *util.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, cache.State())
	}
}

// snapshotHandler returns the latest published snapshot
func snapshotHandler(coordinator *core.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot := coordinator.Snapshot()
		if snapshot == nil {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		jsonResponse(w, snapshot)
	}
}

// refreshHandler requests an immediate poll cycle with fresh master data
func refreshHandler(coordinator *core.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		provider.ResetCached()
		coordinator.Refresh()
		w.WriteHeader(http.StatusAccepted)
		jsonResponse(w, map[string]string{"result": "refresh scheduled"})
	}
}

// historyHandler returns recently persisted snapshots, newest first
func historyHandler(store *storage.Store, coordinator *core.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := historyDefaultLimit
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				limit = n
			}
		}

		vin := r.URL.Query().Get("vin")
		if vin == "" {
			if snapshot := coordinator.Snapshot(); snapshot != nil {
				vin = snapshot.VIN
			}
		}

		res, err := store.Recent(vin, limit)
		if err != nil {
			jsonError(w, http.StatusInternalServerError, err)
			return
		}

		jsonResponse(w, res)
	}
}
