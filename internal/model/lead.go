package model

import (
	"time"
)

const (
	// LeadSource marks rows captured by the chat widget.
	LeadSource = "chat_widget"

	// LeadAnnotation is the fixed message stored with every widget lead.
	LeadAnnotation = "Submitted via AI assistant widget"
)

// Lead is a prospective contact's submitted details. Constructed from
// the contact form, inserted once, never mutated afterwards.
type Lead struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Message   string    `json:"message"`
	Source    string    `json:"source"`
	Subscribe bool      `json:"subscribe"`
	CreatedAt time.Time `json:"created_at"`
}

// PendingLead is the scratch contact-form state collected client-side
// before commit.
type PendingLead struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// SubmitLeadRequest is the contact-form submission body.
type SubmitLeadRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// SubmitLeadResponse acknowledges a form submission. Message is the
// assistant line appended to the transcript (thank-you or failure).
type SubmitLeadResponse struct {
	Committed          bool    `json:"committed"`
	Message            Message `json:"message"`
	ContactFormVisible bool    `json:"contact_form_visible"`
}
