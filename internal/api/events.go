package api

import (
	"log/slog"
	"net/http"

	"github.com/aguilarm/mobiliario/internal/events"
)

// EventsHandler proxies best-effort event title lookups.
type EventsHandler struct {
	Client *events.Client
}

// Lookup handles GET /api/events/lookup?q=. A miss or a proxy failure
// both yield an empty title; lookups are enrichment, never blocking.
func (h *EventsHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		jsonError(w, http.StatusBadRequest, "query required")
		return
	}

	title, err := h.Client.Lookup(r.Context(), query)
	if err != nil {
		slog.Warn("event lookup failed", "query", query, "error", err)
		title = ""
	}
	jsonResponse(w, http.StatusOK, map[string]string{"title": title})
}
