package geolib

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h httpHandler) handleGetSelf(w http.ResponseWriter, req *http.Request) {
	h.sendEnrichment(w, req, remoteHost(req.RemoteAddr))
}

func (h httpHandler) handleGetIP(w http.ResponseWriter, req *http.Request) {
	h.sendEnrichment(w, req, chi.URLParam(req, "ip"))
}

func (h httpHandler) sendEnrichment(w http.ResponseWriter, req *http.Request, address string) {
	enriched, err := h.enricher.Enrich(req.Context(), address)

	switch {
	case errors.Is(err, ErrInvalidAddress):
		h.sendError(w, err, "Incorrect IP address", http.StatusBadRequest)

		return
	case errors.Is(err, ErrEnricherShutdown):
		h.sendError(w, err, "Service is shutting down", http.StatusServiceUnavailable)

		return
	case err != nil:
		h.sendError(w, err, "Cannot enrich IP address", 0)

		return
	}

	response := struct {
		Result Enrichment `json:"result"`
	}{
		Result: enriched,
	}

	h.sendJSON(w, response)
}

func (h httpHandler) handleGetStats(w http.ResponseWriter, req *http.Request) {
	response := struct {
		Results []*UsageStats `json:"results"`
	}{
		Results: h.enricher.UsageStats(),
	}

	h.sendJSON(w, response)
}
