package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vybrant-care/chat-widget/internal/middleware"
	"github.com/vybrant-care/chat-widget/internal/model"
	"github.com/vybrant-care/chat-widget/internal/render"
	"github.com/vybrant-care/chat-widget/internal/service"
	"github.com/vybrant-care/chat-widget/pkg/logger"
)

// SessionHandler handles widget session endpoints.
type SessionHandler struct {
	sessions  *service.SessionService
	jwtSecret string
	jwtTTL    time.Duration
	logger    *logger.Logger
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(sessions *service.SessionService, jwtSecret string, jwtTTL time.Duration, log *logger.Logger) *SessionHandler {
	return &SessionHandler{
		sessions:  sessions,
		jwtSecret: jwtSecret,
		jwtTTL:    jwtTTL,
		logger:    log,
	}
}

// Open handles POST /api/v1/sessions
func (h *SessionHandler) Open(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req model.OpenSessionRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	if req.SessionID != "" {
		if err := middleware.ValidateSessionID(req.SessionID); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	sessionID, transcript, err := h.sessions.Open(ctx, req.SessionID)
	if err != nil {
		h.logger.Error("failed to open session", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to open session")
		return
	}

	token, err := middleware.IssueSessionToken(h.jwtSecret, sessionID, h.jwtTTL)
	if err != nil {
		h.logger.Error("failed to issue session token", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to open session")
		return
	}

	writeJSON(w, http.StatusCreated, &model.OpenSessionResponse{
		SessionID:  sessionID,
		Token:      token,
		Transcript: transcript,
	})
}

// List handles GET /api/v1/sessions/{id}/messages
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.boundSession(w, r)
	if !ok {
		return
	}

	transcript, err := h.sessions.Transcript(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	writeJSON(w, http.StatusOK, &model.ListMessagesResponse{
		Transcript: transcript,
		Rendered:   render.Render(transcript),
	})
}

// Send handles POST /api/v1/sessions/{id}/messages
func (h *SessionHandler) Send(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sessionID, ok := h.boundSession(w, r)
	if !ok {
		return
	}

	var req model.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidateMessageContent(req.Text); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.sessions.ProcessTurn(ctx, sessionID, req.Text)
	switch {
	case errors.Is(err, service.ErrBusy):
		writeError(w, http.StatusConflict, "a reply is still being generated")
		return
	case errors.Is(err, service.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "session not found")
		return
	case err != nil:
		h.logger.Error("failed to process turn", "session_id", sessionID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to process message")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Close handles DELETE /api/v1/sessions/{id}
func (h *SessionHandler) Close(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.boundSession(w, r)
	if !ok {
		return
	}

	if err := h.sessions.Close(sessionID); err != nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// boundSession validates the URL session ID and checks it matches the
// authenticated token.
func (h *SessionHandler) boundSession(w http.ResponseWriter, r *http.Request) (string, bool) {
	sessionID := chi.URLParam(r, "id")
	if err := middleware.ValidateSessionID(sessionID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return "", false
	}

	if middleware.GetSessionID(r.Context()) != sessionID {
		writeError(w, http.StatusForbidden, "token does not match session")
		return "", false
	}

	return sessionID, true
}
