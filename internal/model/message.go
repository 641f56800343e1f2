// Package model defines data structures for the chat widget service.
package model

import (
	"strings"
	"time"
)

// Sender identifies who authored a message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Message is a single exchanged message. Immutable once appended to a
// transcript.
type Message struct {
	Sender Sender `json:"sender"`
	Text   string `json:"text"`
}

// Transcript is the ordered, append-only sequence of messages in one
// session. Insertion order is the ordering.
type Transcript []Message

// Append returns a new transcript with msg added. The receiver is not
// modified, so callers holding the old slice keep a consistent view.
func (t Transcript) Append(msgs ...Message) Transcript {
	out := make(Transcript, 0, len(t)+len(msgs))
	out = append(out, t...)
	out = append(out, msgs...)
	return out
}

// UserMessageCount returns the number of user-authored messages.
func (t Transcript) UserMessageCount() int {
	n := 0
	for _, m := range t {
		if m.Sender == SenderUser {
			n++
		}
	}
	return n
}

// PromptLines renders the transcript as alternating "User:"/"Assistant:"
// lines for the generation prompt.
func (t Transcript) PromptLines() string {
	var b strings.Builder
	for i, m := range t {
		if i > 0 {
			b.WriteByte('\n')
		}
		if m.Sender == SenderUser {
			b.WriteString("User: ")
		} else {
			b.WriteString("Assistant: ")
		}
		b.WriteString(m.Text)
	}
	return b.String()
}

// Session is one live widget conversation.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SendMessageRequest is the body for posting one user turn.
type SendMessageRequest struct {
	Text string `json:"text"`
}

// SendMessageResponse carries the synchronously emitted assistant
// messages and the flags the client renders against.
type SendMessageResponse struct {
	Messages           []Message `json:"messages"`
	ContactFormVisible bool      `json:"contact_form_visible"`
	AwaitingConsent    bool      `json:"awaiting_consent"`
}

// OpenSessionRequest opens or resumes a widget session.
type OpenSessionRequest struct {
	// SessionID resumes a previous session when set; otherwise a new
	// session is created.
	SessionID string `json:"session_id,omitempty"`
	VisitorID string `json:"visitor_id,omitempty"`
}

// OpenSessionResponse is returned when a session is opened.
type OpenSessionResponse struct {
	SessionID  string     `json:"session_id"`
	Token      string     `json:"token"`
	Transcript Transcript `json:"transcript"`
}

// ListMessagesResponse is the transcript plus its rendered projection.
type ListMessagesResponse struct {
	Transcript Transcript   `json:"transcript"`
	Rendered   []RenderLine `json:"rendered"`
}

// RenderLine is one renderable line of the transcript view. HTML holds
// the message text after the fixed whitelist of markup transforms; no
// other markup survives rendering.
type RenderLine struct {
	Sender Sender `json:"sender"`
	HTML   string `json:"html"`
}

// HandoffResponse carries the deep link to the human-staffed channel.
type HandoffResponse struct {
	URL string `json:"url"`
}
