package handler

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/vybrant-care/chat-widget/internal/model"
)

// HandoffHandler serves the deep link to the human-staffed WhatsApp
// channel, pre-filled with the canned greeting.
type HandoffHandler struct {
	number   string
	greeting string
}

// NewHandoffHandler creates a new hand-off handler.
func NewHandoffHandler(number, greeting string) *HandoffHandler {
	return &HandoffHandler{
		number:   number,
		greeting: greeting,
	}
}

// Link handles GET /api/v1/handoff
func (h *HandoffHandler) Link(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, &model.HandoffResponse{
		URL: WhatsAppLink(h.number, h.greeting),
	})
}

// WhatsAppLink builds the wa.me deep link with text pre-filled.
func WhatsAppLink(number, text string) string {
	// Percent-encode spaces rather than using the form-encoding plus
	// sign; wa.me expects the former.
	escaped := strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
	return fmt.Sprintf("https://wa.me/%s?text=%s", number, escaped)
}
