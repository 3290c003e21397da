package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"cifra/api/internal/telemetry"
)

const heartbeatPeriod = 30 * time.Second

type EventsHandler struct {
	hub    *telemetry.Hub
	logger *slog.Logger
}

func NewEventsHandler(hub *telemetry.Hub, logger *slog.Logger) *EventsHandler {
	return &EventsHandler{hub: hub, logger: logger}
}

// Stream handles GET /api/v1/events as a Server-Sent Events feed of
// transform metadata.
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	events := h.hub.Subscribe()
	defer h.hub.Unsubscribe(events)

	rc := http.NewResponseController(w)
	fmt.Fprintf(w, "event: connected\ndata: {\"status\": \"monitoring\"}\n\n")
	if err := rc.Flush(); err != nil {
		h.logger.Warn("SSE flush unsupported", slog.String("error", err.Error()))
		return
	}

	heartbeat := time.NewTicker(heartbeatPeriod)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": keep-alive\n\n")
			if err := rc.Flush(); err != nil {
				return
			}
		case event, ok := <-events:
			if !ok {
				return
			}
			payload, err := json.Marshal(event)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: transform\nid: %s\ndata: %s\n\n", event.ID, payload)
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}
