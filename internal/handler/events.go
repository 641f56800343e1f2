package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/vybrant-care/chat-widget/internal/events"
	"github.com/vybrant-care/chat-widget/internal/middleware"
	"github.com/vybrant-care/chat-widget/internal/model"
	"github.com/vybrant-care/chat-widget/pkg/logger"
)

// EventHandler accepts UI event hooks and forwards them to the event
// bus. The hooks are fire-and-forget: publishing failures never reach
// the widget.
type EventHandler struct {
	publisher events.Publisher
	logger    *logger.Logger
}

// NewEventHandler creates a new event handler.
func NewEventHandler(publisher events.Publisher, log *logger.Logger) *EventHandler {
	return &EventHandler{
		publisher: publisher,
		logger:    log,
	}
}

// Track handles POST /api/v1/sessions/{id}/events
func (h *EventHandler) Track(w http.ResponseWriter, r *http.Request) {
	sessionID := middleware.GetSessionID(r.Context())

	var req model.TrackEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !req.Type.Valid() {
		writeError(w, http.StatusBadRequest, "unknown event type")
		return
	}

	event := &model.WidgetEvent{
		ID:        uuid.Must(uuid.NewV7()).String(),
		SessionID: sessionID,
		VisitorID: req.VisitorID,
		Type:      req.Type,
		Target:    req.Target,
		CreatedAt: time.Now(),
	}

	if h.publisher != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := h.publisher.Publish(ctx, event); err != nil {
				h.logger.Warn("failed to publish widget event",
					"event_type", event.Type, "error", err)
			}
		}()
	}

	w.WriteHeader(http.StatusAccepted)
}
