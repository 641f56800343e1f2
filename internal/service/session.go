// Package service provides business logic for the chat widget.
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vybrant-care/chat-widget/internal/engine"
	"github.com/vybrant-care/chat-widget/internal/model"
	"github.com/vybrant-care/chat-widget/internal/store"
	"github.com/vybrant-care/chat-widget/pkg/logger"
	"github.com/vybrant-care/chat-widget/pkg/metrics"
)

var (
	// ErrSessionNotFound is returned for unknown session IDs.
	ErrSessionNotFound = errors.New("session not found")

	// ErrBusy is returned when a turn arrives while a generation call
	// is still outstanding for the session.
	ErrBusy = errors.New("session is busy")
)

// SessionService owns the live widget sessions. Each session holds one
// engine State plus the cancellable deferred-prompt timer; a per-session
// mutex and the Busy flag serialize turns. Transcript persistence is
// write-behind and never fails the caller.
type SessionService struct {
	engine   *engine.Engine
	repo     store.Repository
	greeting string
	logger   *logger.Logger

	mu       sync.RWMutex
	sessions map[string]*liveSession
}

type liveSession struct {
	id string

	mu    sync.Mutex
	state engine.State

	// deferred is the pending info-request emission, cancelled on
	// session close so a discarded state is never mutated.
	deferred *time.Timer
}

// NewSessionService creates a session service.
func NewSessionService(eng *engine.Engine, repo store.Repository, greeting string, log *logger.Logger) *SessionService {
	return &SessionService{
		engine:   eng,
		repo:     repo,
		greeting: greeting,
		sessions: make(map[string]*liveSession),
		logger:   log,
	}
}

// Open creates a new session, or resumes one from its stored
// transcript. A session with no prior transcript starts with the fixed
// greeting message.
func (s *SessionService) Open(ctx context.Context, sessionID string) (string, model.Transcript, error) {
	if sessionID == "" {
		sessionID = uuid.Must(uuid.NewV7()).String()
	}

	s.mu.Lock()
	if sess, ok := s.sessions[sessionID]; ok {
		s.mu.Unlock()
		sess.mu.Lock()
		t := sess.state.Transcript
		sess.mu.Unlock()
		return sessionID, t, nil
	}
	s.mu.Unlock()

	st := engine.NewState(s.greeting)
	saved, err := s.repo.LoadTranscript(ctx, sessionID)
	if err != nil {
		// Load failures degrade to a fresh greeting transcript; the
		// conversation continues in memory.
		s.logger.Warn("failed to load transcript", "session_id", sessionID, "error", err)
	}
	if len(saved) > 0 {
		st.Transcript = saved
	}

	sess := &liveSession{id: sessionID, state: st}

	s.mu.Lock()
	// Re-check under the write lock; another request may have opened
	// the same session meanwhile.
	if existing, ok := s.sessions[sessionID]; ok {
		s.mu.Unlock()
		existing.mu.Lock()
		t := existing.state.Transcript
		existing.mu.Unlock()
		return sessionID, t, nil
	}
	s.sessions[sessionID] = sess
	metrics.SessionsActive.Set(float64(len(s.sessions)))
	s.mu.Unlock()

	s.save(sessionID, st.Transcript)

	return sessionID, st.Transcript, nil
}

// Transcript returns the current transcript of a live session.
func (s *SessionService) Transcript(sessionID string) (model.Transcript, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.state.Transcript, nil
}

// State returns a snapshot of the session state.
func (s *SessionService) State(sessionID string) (engine.State, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return engine.State{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.state, nil
}

// ProcessTurn runs one user turn through the dialogue engine. Returns
// ErrBusy while a previous generation call is outstanding. The
// generation call itself runs outside the session lock, so the
// transcript stays readable while it is in flight.
func (s *SessionService) ProcessTurn(ctx context.Context, sessionID, input string) (*model.SendMessageResponse, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	if sess.state.Busy {
		sess.mu.Unlock()
		return nil, ErrBusy
	}
	snapshot := sess.state
	sess.state.Busy = true
	sess.mu.Unlock()

	result := s.engine.ProcessTurn(ctx, snapshot, input)

	sess.mu.Lock()
	sess.state.Busy = false
	if !result.Ignored {
		// Merge the turn into the live state rather than replacing it
		// with the snapshot successor. The deferred prompt timer or a
		// lead submission may have advanced the session while the
		// generation call was outstanding; those appended messages and
		// flag changes must survive this commit.
		sess.state.Transcript = sess.state.Transcript.
			Append(model.Message{Sender: model.SenderUser, Text: input}).
			Append(result.Messages...)
		applyFlagDelta(&sess.state, snapshot, result.State)
		if result.Deferred != nil {
			s.scheduleDeferred(sess, result.Deferred)
		}
	}
	transcript := sess.state.Transcript
	formVisible := sess.state.ContactFormVisible
	awaitingConsent := sess.state.AwaitingConsentAnswer
	sess.mu.Unlock()

	if !result.Ignored {
		s.save(sessionID, transcript)
	}

	return &model.SendMessageResponse{
		Messages:           result.Messages,
		ContactFormVisible: formVisible,
		AwaitingConsent:    awaitingConsent,
	}, nil
}

// applyFlagDelta copies onto the live state only the flags this turn
// actually changed, so concurrent mutations made while the turn was
// outstanding are not rolled back.
func applyFlagDelta(live *engine.State, before, after engine.State) {
	if after.HasRequestedContactInfo != before.HasRequestedContactInfo {
		live.HasRequestedContactInfo = after.HasRequestedContactInfo
	}
	if after.AwaitingConsentAnswer != before.AwaitingConsentAnswer {
		live.AwaitingConsentAnswer = after.AwaitingConsentAnswer
	}
	if after.ContactFormVisible != before.ContactFormVisible {
		live.ContactFormVisible = after.ContactFormVisible
	}
}

// scheduleDeferred arms the delayed info-request emission. Caller holds
// sess.mu.
func (s *SessionService) scheduleDeferred(sess *liveSession, d *engine.Deferred) {
	if sess.deferred != nil {
		sess.deferred.Stop()
	}
	msgs := d.Messages
	sess.deferred = time.AfterFunc(d.Delay, func() {
		sess.mu.Lock()
		sess.state.Transcript = sess.state.Transcript.Append(msgs...)
		sess.deferred = nil
		transcript := sess.state.Transcript
		sess.mu.Unlock()

		s.save(sess.id, transcript)
	})
}

// AppendAssistantMessage appends one assistant message to the session
// transcript and persists it. Used by the lead flow for its
// acknowledgment lines.
func (s *SessionService) AppendAssistantMessage(sessionID, text string) error {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	sess.state.Transcript = sess.state.Transcript.Append(model.Message{
		Sender: model.SenderAssistant,
		Text:   text,
	})
	transcript := sess.state.Transcript
	sess.mu.Unlock()

	s.save(sessionID, transcript)
	return nil
}

// SetContactFormVisible updates the form flag and clears pending lead
// fields when hiding the form.
func (s *SessionService) SetContactFormVisible(sessionID string, visible bool) error {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	sess.state.ContactFormVisible = visible
	if !visible {
		sess.state.PendingLead = model.PendingLead{}
	}
	sess.mu.Unlock()
	return nil
}

// Close tears the session down: the deferred prompt timer is cancelled
// and the live state dropped. The stored transcript is retained, so a
// later Open with the same ID resumes the conversation. A generation
// call already in flight still applies its outcome to the session
// object it holds, and the result lands in the store.
func (s *SessionService) Close(sessionID string) error {
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	if ok {
		delete(s.sessions, sessionID)
	}
	metrics.SessionsActive.Set(float64(len(s.sessions)))
	s.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}

	sess.mu.Lock()
	if sess.deferred != nil {
		sess.deferred.Stop()
		sess.deferred = nil
	}
	sess.mu.Unlock()

	return nil
}

func (s *SessionService) lookup(sessionID string) (*liveSession, error) {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// save persists the transcript. Persistence errors are swallowed: the
// conversation continues in memory for the rest of the session.
func (s *SessionService) save(sessionID string, t model.Transcript) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.repo.SaveTranscript(ctx, sessionID, t); err != nil {
		metrics.SessionSaveFailures.Inc()
		s.logger.Warn("failed to save transcript", "session_id", sessionID, "error", err)
	}
}
