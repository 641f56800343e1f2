// Package engine implements the turn-based dialogue engine behind the
// lead-capture chat widget.
package engine

import (
	"github.com/vybrant-care/chat-widget/internal/model"
)

// State is the dialogue engine's working set for one session. It is a
// value: ProcessTurn never mutates its argument and returns the
// successor state instead. No ambient singleton holds conversation
// state.
//
// At most one of AwaitingConsentAnswer and ContactFormVisible is true
// at a time. HasRequestedContactInfo transitions false to true exactly
// once per session and never resets.
type State struct {
	Transcript model.Transcript `json:"transcript"`

	// HasRequestedContactInfo latches once the contact-request prompt
	// has been issued.
	HasRequestedContactInfo bool `json:"has_requested_contact_info"`

	// AwaitingConsentAnswer is set between issuing the consent question
	// and the next user message.
	AwaitingConsentAnswer bool `json:"awaiting_consent_answer"`

	// ContactFormVisible is set while the lead-capture form is shown.
	ContactFormVisible bool `json:"contact_form_visible"`

	// PendingLead holds contact-form scratch fields until commit or
	// cancel.
	PendingLead model.PendingLead `json:"pending_lead"`

	// Busy is set while an external-generation call is outstanding.
	// The engine ignores new turns while it is set.
	Busy bool `json:"-"`
}

// NewState creates a session state whose transcript opens with the
// given greeting.
func NewState(greeting string) State {
	return State{
		Transcript: model.Transcript{
			{Sender: model.SenderAssistant, Text: greeting},
		},
	}
}

// Clone returns a deep copy of the state. The transcript backing array
// is copied so the successor state cannot alias the original.
func (s State) Clone() State {
	out := s
	out.Transcript = make(model.Transcript, len(s.Transcript))
	copy(out.Transcript, s.Transcript)
	return out
}
