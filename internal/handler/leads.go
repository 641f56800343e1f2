package handler

import (
	"encoding/json"
	"net/http"

	"github.com/vybrant-care/chat-widget/internal/middleware"
	"github.com/vybrant-care/chat-widget/internal/model"
	"github.com/vybrant-care/chat-widget/internal/service"
	"github.com/vybrant-care/chat-widget/pkg/logger"
)

// LeadHandler handles contact-form submissions.
type LeadHandler struct {
	leads    *service.LeadService
	sessions *service.SessionService
	logger   *logger.Logger
}

// NewLeadHandler creates a new lead handler.
func NewLeadHandler(leads *service.LeadService, sessions *service.SessionService, log *logger.Logger) *LeadHandler {
	return &LeadHandler{
		leads:    leads,
		sessions: sessions,
		logger:   log,
	}
}

// Submit handles POST /api/v1/sessions/{id}/lead
//
// A failed insert keeps the form visible and reports the failure line;
// a successful insert hides the form, clears the pending fields and
// appends the personalized thank-you.
func (h *LeadHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sessionID := middleware.GetSessionID(ctx)
	if sessionID == "" {
		writeError(w, http.StatusUnauthorized, "missing session")
		return
	}

	var req model.SubmitLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidateLeadName(req.Name); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := middleware.ValidateLeadEmail(req.Email); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := middleware.ValidateLeadPhone(req.Phone); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	pending := model.PendingLead{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	}

	lead, err := h.leads.CommitLead(ctx, pending)
	if err != nil {
		h.logger.Error("failed to commit lead", "session_id", sessionID, "error", err)

		failed := model.Message{Sender: model.SenderAssistant, Text: service.LeadFailedMessage}
		h.sessions.AppendAssistantMessage(sessionID, failed.Text)

		writeJSON(w, http.StatusInternalServerError, &model.SubmitLeadResponse{
			Committed:          false,
			Message:            failed,
			ContactFormVisible: true,
		})
		return
	}

	thanks := model.Message{Sender: model.SenderAssistant, Text: service.LeadThanksMessage(lead.Name)}
	h.sessions.SetContactFormVisible(sessionID, false)
	h.sessions.AppendAssistantMessage(sessionID, thanks.Text)

	writeJSON(w, http.StatusCreated, &model.SubmitLeadResponse{
		Committed:          true,
		Message:            thanks,
		ContactFormVisible: false,
	})
}
