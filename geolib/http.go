package geolib

import (
	"encoding/json"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type httpHandler struct {
	enricher *Enricher
}

func (h httpHandler) encodeJSON(w http.ResponseWriter, data interface{}) {
	encoder := json.NewEncoder(w)

	encoder.SetEscapeHTML(false)
	encoder.Encode(data) // nolint: errcheck
}

func (h httpHandler) sendError(w http.ResponseWriter, err error, message string, statusCode int) {
	e := &httpError{
		message:    message,
		statusCode: statusCode,
		err:        err,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode())
	h.encodeJSON(w, e)
}

func (h httpHandler) sendJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	h.encodeJSON(w, data)
}

// NewHTTPHandler returns a JSON API over an enricher.
//
//	GET  /         - enrich an address of the caller
//	GET  /ip/{ip}  - enrich a given address
//	POST /         - enrich a batch {"ips": [...]}
//	GET  /stats    - usage stats of datasets
//	GET  /metrics  - prometheus metrics
func NewHTTPHandler(enricher *Enricher) http.Handler {
	handler := httpHandler{
		enricher: enricher,
	}
	router := chi.NewRouter()

	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)

	router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		handler.sendError(w, nil, "This HTTP method is not allowed", http.StatusMethodNotAllowed)
	})
	router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		handler.sendError(w, nil, "Unknown path", http.StatusNotFound)
	})

	router.Get("/", handler.handleGetSelf)
	router.Post("/", handler.handlePost)
	router.Get("/ip/{ip}", handler.handleGetIP)
	router.Get("/stats", handler.handleGetStats)
	router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return router
}

func remoteHost(remoteAddr string) string {
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return host
	}

	return remoteAddr
}
