package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wildlight/questline/internal/services/events"
)

// EventsHandler streams a session's narrative events over Server-Sent
// Events. The stream carries only events fired after the subscription
// opened; clients needing current state pull GET /v1/sessions/{id}.
type EventsHandler struct {
	relay  *events.Relay
	logger *slog.Logger
}

func NewEventsHandler(relay *events.Relay, logger *slog.Logger) *EventsHandler {
	return &EventsHandler{relay: relay, logger: logger}
}

// ServeHTTP handles GET /v1/sessions/{id}/events.
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only GET is supported.")
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) != 4 || parts[0] != "v1" || parts[1] != "sessions" || parts[3] != "events" {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid path. Expected /v1/sessions/{id}/events")
		return
	}
	sessionID, err := uuid.Parse(parts[2])
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid session ID")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, h.logger, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	pubsub := h.relay.Subscribe(r.Context(), sessionID)
	defer func() {
		if err := pubsub.Close(); err != nil {
			h.logger.Error("Failed to close pubsub", "error", err)
		}
	}()

	h.logger.Debug("SSE stream opened", "session_id", sessionID)

	keepalive := time.NewTicker(30 * time.Second)
	defer keepalive.Stop()

	ch := pubsub.Channel()
	for {
		select {
		case <-r.Context().Done():
			h.logger.Debug("SSE stream closed", "session_id", sessionID)
			return
		case <-keepalive.C:
			if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", msg.Payload); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
