package engine

import (
	"context"
	"strings"
	"time"

	"github.com/vybrant-care/chat-widget/internal/model"
	"github.com/vybrant-care/chat-widget/pkg/metrics"
)

// RuleName tags the turn-processing rules.
type RuleName string

const (
	RuleConsent     RuleName = "consent"
	RuleHandoff     RuleName = "handoff"
	RuleInfoRequest RuleName = "info_request"
	RuleGeneration  RuleName = "generation"
)

// affirmativeTokens are the substrings accepted as a yes to the consent
// question, matched case-insensitively.
var affirmativeTokens = []string{"yes", "sure", "ok", "okay"}

// handoffPhrases are the substrings that trigger the human hand-off,
// matched case-insensitively.
var handoffPhrases = []string{"chat with human", "speak to someone"}

// rule is one step of the fixed-priority evaluation order. Apply
// returns true when the rule fully handled the turn; later rules are
// then skipped.
type rule interface {
	Name() RuleName
	Apply(ctx context.Context, t *turn) bool
}

// consentRule resolves a pending consent question. Active only while
// AwaitingConsentAnswer is set, and always terminates the turn: no
// generation call follows a consent answer.
type consentRule struct{}

func (consentRule) Name() RuleName { return RuleConsent }

func (consentRule) Apply(_ context.Context, t *turn) bool {
	if !t.state.AwaitingConsentAnswer {
		return false
	}

	t.state.AwaitingConsentAnswer = false
	for _, token := range affirmativeTokens {
		if strings.Contains(t.lower, token) {
			t.state.ContactFormVisible = true
			t.emit(MsgConsentAffirm)
			return true
		}
	}

	// Declined. The info request is never asked again this session
	// because HasRequestedContactInfo stays latched.
	t.emit(MsgConsentDecline)
	return true
}

// handoffRule detects a request for a human and redirects to the
// external channel. It fires whether or not a consent answer is
// pending, and terminates the turn before the info-request trigger and
// the generation step.
type handoffRule struct{}

func (handoffRule) Name() RuleName { return RuleHandoff }

func (handoffRule) Apply(_ context.Context, t *turn) bool {
	for _, phrase := range handoffPhrases {
		if strings.Contains(t.lower, phrase) {
			// A pending consent question is abandoned, not answered;
			// the flag clears on this user message either way.
			t.state.AwaitingConsentAnswer = false
			t.emit(MsgHandoff)
			return true
		}
	}
	return false
}

// infoRequestRule fires once per session when the transcript holds
// enough user messages, scheduling the two contact prompts after a
// short delay. It never terminates the turn: generation still runs.
type infoRequestRule struct{}

func (infoRequestRule) Name() RuleName { return RuleInfoRequest }

func (infoRequestRule) Apply(_ context.Context, t *turn) bool {
	if t.state.HasRequestedContactInfo {
		return false
	}
	if t.state.Transcript.UserMessageCount() < t.engine.threshold {
		return false
	}

	t.state.HasRequestedContactInfo = true
	t.state.AwaitingConsentAnswer = true
	t.deferred = &Deferred{
		Delay: t.engine.delay,
		Messages: []model.Message{
			{Sender: model.SenderAssistant, Text: MsgInfoRequest},
			{Sender: model.SenderAssistant, Text: MsgConsentPrompt},
		},
	}
	return false
}

// generationRule forwards the transcript to the external text
// generator. It always handles the turn; failures become canned
// messages rather than errors.
type generationRule struct{}

func (generationRule) Name() RuleName { return RuleGeneration }

func (generationRule) Apply(ctx context.Context, t *turn) bool {
	e := t.engine

	if e.generator == nil {
		t.emit(MsgConnectivity)
		return true
	}

	start := time.Now()
	reply, err := e.generator.Generate(ctx, e.Prompt(t.state.Transcript))
	if err != nil {
		metrics.RecordGeneration(e.generator.Name(), "error", time.Since(start).Seconds())
		e.logger.Warn("text generation failed", "provider", e.generator.Name(), "error", err)
		t.emit(MsgConnectivity)
		return true
	}
	metrics.RecordGeneration(e.generator.Name(), "success", time.Since(start).Seconds())

	if strings.TrimSpace(reply) == "" {
		t.emit(MsgFallback)
		return true
	}
	t.emit(reply)
	return true
}
