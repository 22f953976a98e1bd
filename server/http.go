package server

import (
	"net/http"
	"time"

	"github.com/andig/vinfast/core"
	"github.com/andig/vinfast/core/storage"
	"github.com/andig/vinfast/util"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

type route struct {
	Methods     []string
	Pattern     string
	HandlerFunc http.HandlerFunc
}

// HTTPd wraps an http.Server and adds the root router
type HTTPd struct {
	*http.Server
}

// NewHTTPd creates the HTTP server with configured routes. store is optional.
func NewHTTPd(log *util.Logger, addr string, coordinator *core.Coordinator, cache *util.Cache, store *storage.Store) *HTTPd {
	router := mux.NewRouter().StrictSlash(true)

	// api
	api := router.PathPrefix("/api").Subrouter()
	api.Use(jsonHandler)
	api.Use(handlers.CompressHandler)
	api.Use(handlers.CORS(
		handlers.AllowedHeaders([]string{
			"Accept", "Accept-Language", "Content-Language", "Content-Type", "Origin",
		}),
	))

	routes := map[string]route{
		"health":   {[]string{"GET"}, "/health", healthHandler(coordinator)},
		"state":    {[]string{"GET"}, "/state", stateHandler(cache)},
		"snapshot": {[]string{"GET"}, "/snapshot", snapshotHandler(coordinator)},
		"refresh":  {[]string{"POST", "OPTIONS"}, "/refresh", refreshHandler(coordinator)},
	}

	if store != nil {
		routes["history"] = route{[]string{"GET"}, "/history", historyHandler(store, coordinator)}
	}

	for _, r := range routes {
		api.Methods(r.Methods...).Path(r.Pattern).Handler(r.HandlerFunc)
	}

	srv := &HTTPd{
		Server: &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  120 * time.Second,
			ErrorLog:     log.ERROR,
		},
	}
	srv.SetKeepAlivesEnabled(true)

	return srv
}

// Router returns the main router
func (s *HTTPd) Router() *mux.Router {
	return s.Handler.(*mux.Router)
}
