package handlers

import (
	"net/http"
	"strconv"

	"github.com/devtrail/devtrail-be/internal/services"
)

// EventHandler serves the recent activity log.
type EventHandler struct {
	service services.EventServiceProvider
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(service services.EventServiceProvider) *EventHandler {
	return &EventHandler{service: service}
}

// GetRecent lists the most recent activity events, newest first.
func (h *EventHandler) GetRecent(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	events, err := h.service.GetRecentEvents(limit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondList(w, events, len(events))
}
