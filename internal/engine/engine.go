package engine

import (
	"context"
	"strings"
	"time"

	"github.com/vybrant-care/chat-widget/internal/llm"
	"github.com/vybrant-care/chat-widget/internal/model"
	"github.com/vybrant-care/chat-widget/pkg/logger"
	"github.com/vybrant-care/chat-widget/pkg/metrics"
)

// Canned assistant messages. The conversation always degrades to one of
// these rather than surfacing an error.
const (
	MsgConsentAffirm  = "Great! Please fill in your details below 👇"
	MsgConsentDecline = "No problem! We can continue without your contact details."
	MsgHandoff        = "You can chat with one of our friendly human team members on WhatsApp below 👇"
	MsgInfoRequest    = "Before we continue, may I please have your **name**, **email**, and **phone number** so our care team can assist you better?"
	MsgConsentPrompt  = "Would you like to provide that now? (Yes / No)"
	MsgFallback       = "I'm here to assist you further!"
	MsgConnectivity   = "Sorry, I'm having trouble connecting right now. Please try again later or use our WhatsApp contact below."
)

// IgnoreReason says why a turn was dropped without any state change.
type IgnoreReason string

const (
	IgnoreBusy  IgnoreReason = "busy"
	IgnoreEmpty IgnoreReason = "empty_input"
)

// Deferred is a prompt emission to be scheduled by the caller after
// Delay. The caller owns the timer and must cancel it on session
// teardown so a discarded state is never mutated.
type Deferred struct {
	Delay    time.Duration
	Messages []model.Message
}

// Result is the outcome of one user turn.
type Result struct {
	// State is the successor state. Equal to the input state when the
	// turn was ignored.
	State State

	// Messages are the assistant messages emitted synchronously, in
	// order. Already appended to State.Transcript.
	Messages []model.Message

	// Deferred carries the delayed info-request prompts, when the
	// trigger fired this turn.
	Deferred *Deferred

	// HandledBy names the rule that terminated the turn.
	HandledBy RuleName

	// Ignored is set when the busy or empty-input guard dropped the
	// turn.
	Ignored bool

	// IgnoreReason says which guard dropped the turn.
	IgnoreReason IgnoreReason
}

// Engine applies the turn-processing rules. It holds no per-session
// state; everything session-scoped lives in State.
type Engine struct {
	generator llm.Client
	preamble  string
	delay     time.Duration
	threshold int
	rules     []rule
	logger    *logger.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithInfoRequestDelay overrides the delay before the deferred
// info-request prompts.
func WithInfoRequestDelay(d time.Duration) Option {
	return func(e *Engine) { e.delay = d }
}

// WithInfoRequestThreshold overrides the user-message count that
// triggers the info request.
func WithInfoRequestThreshold(n int) Option {
	return func(e *Engine) { e.threshold = n }
}

// New creates a dialogue engine. generator may be nil, in which case
// the generation step always falls back to the connectivity message.
func New(generator llm.Client, preamble string, log *logger.Logger, opts ...Option) *Engine {
	e := &Engine{
		generator: generator,
		preamble:  preamble,
		delay:     time.Second,
		threshold: 2,
		logger:    log,
	}
	for _, opt := range opts {
		opt(e)
	}

	// Fixed priority order. A hand-off request wins even while a
	// consent answer is pending; consent and hand-off terminate the
	// turn; the info-request trigger falls through to generation.
	e.rules = []rule{
		handoffRule{},
		consentRule{},
		infoRequestRule{},
		generationRule{},
	}
	return e
}

// ProcessTurn evaluates one user turn against the current state and
// returns the successor state plus the emitted assistant messages. The
// input state is never mutated. Failures of the external generator are
// absorbed into canned messages; ProcessTurn does not fail.
func (e *Engine) ProcessTurn(ctx context.Context, st State, input string) Result {
	if st.Busy {
		metrics.TurnsRejected.WithLabelValues(string(IgnoreBusy)).Inc()
		return Result{State: st, Ignored: true, IgnoreReason: IgnoreBusy}
	}
	if strings.TrimSpace(input) == "" {
		metrics.TurnsRejected.WithLabelValues(string(IgnoreEmpty)).Inc()
		return Result{State: st, Ignored: true, IgnoreReason: IgnoreEmpty}
	}

	next := st.Clone()
	next.Transcript = next.Transcript.Append(model.Message{
		Sender: model.SenderUser,
		Text:   input,
	})

	t := &turn{
		engine: e,
		state:  &next,
		input:  input,
		lower:  strings.ToLower(input),
	}

	for _, r := range e.rules {
		if r.Apply(ctx, t) {
			t.handledBy = r.Name()
			break
		}
	}

	next.Transcript = next.Transcript.Append(t.emitted...)

	metrics.TurnsTotal.WithLabelValues(string(t.handledBy)).Inc()

	return Result{
		State:     next,
		Messages:  t.emitted,
		Deferred:  t.deferred,
		HandledBy: t.handledBy,
	}
}

// Prompt builds the single generation prompt: the fixed context
// preamble, the transcript as alternating User/Assistant lines, and a
// trailing Assistant: cue.
func (e *Engine) Prompt(t model.Transcript) string {
	return e.preamble + "\n\n" + t.PromptLines() + "\nAssistant:"
}

// turn is the mutable evaluation context threaded through the rules.
type turn struct {
	engine    *Engine
	state     *State
	input     string
	lower     string
	emitted   []model.Message
	deferred  *Deferred
	handledBy RuleName
}

func (t *turn) emit(text string) {
	t.emitted = append(t.emitted, model.Message{
		Sender: model.SenderAssistant,
		Text:   text,
	})
}
