package model

import (
	"time"
)

// EventType is a UI event hook observable for analytics attachment.
// The hooks carry no widget logic themselves.
type EventType string

const (
	EventWidgetOpen       EventType = "chat_widget_open"
	EventWidgetClose      EventType = "chat_widget_close"
	EventMessageSend      EventType = "chat_message_send"
	EventFormSubmit       EventType = "chat_contact_form_submit"
	EventWhatsAppRedirect EventType = "chat_whatsapp_redirect"
)

// Valid reports whether t is a known hook type.
func (t EventType) Valid() bool {
	switch t {
	case EventWidgetOpen, EventWidgetClose, EventMessageSend,
		EventFormSubmit, EventWhatsAppRedirect:
		return true
	}
	return false
}

// WidgetEvent is one observed UI event.
type WidgetEvent struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	VisitorID string    `json:"visitor_id,omitempty"`
	Type      EventType `json:"type"`
	Target    string    `json:"target,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TrackEventRequest is the body for posting a UI event hook.
type TrackEventRequest struct {
	Type      EventType `json:"type"`
	Target    string    `json:"target,omitempty"`
	VisitorID string    `json:"visitor_id,omitempty"`
}
