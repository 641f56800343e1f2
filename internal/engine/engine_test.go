package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vybrant-care/chat-widget/internal/model"
	"github.com/vybrant-care/chat-widget/pkg/logger"
)

// fakeGenerator records calls and returns a scripted reply.
type fakeGenerator struct {
	reply string
	err   error
	calls int
	seen  []string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.calls++
	f.seen = append(f.seen, prompt)
	return f.reply, f.err
}

func (f *fakeGenerator) Name() string { return "fake" }

func newTestEngine(gen *fakeGenerator) *Engine {
	return New(gen, "You are a helpful assistant.", logger.NewNop(),
		WithInfoRequestDelay(time.Millisecond))
}

func TestProcessTurnAppendsUserAndReply(t *testing.T) {
	gen := &fakeGenerator{reply: "We offer visiting care."}
	eng := newTestEngine(gen)

	st := NewState("Hello!")
	result := eng.ProcessTurn(context.Background(), st, "What services do you offer?")

	require.False(t, result.Ignored)
	assert.Equal(t, RuleGeneration, result.HandledBy)
	require.Len(t, result.Messages, 1)
	assert.Equal(t, "We offer visiting care.", result.Messages[0].Text)

	// greeting + user + assistant
	require.Len(t, result.State.Transcript, 3)
	assert.Equal(t, model.SenderUser, result.State.Transcript[1].Sender)
	assert.Equal(t, model.SenderAssistant, result.State.Transcript[2].Sender)

	// Input state untouched.
	assert.Len(t, st.Transcript, 1)
}

func TestPromptContainsPreambleAndTranscript(t *testing.T) {
	gen := &fakeGenerator{reply: "ok"}
	eng := newTestEngine(gen)

	st := NewState("Hi there")
	eng.ProcessTurn(context.Background(), st, "do you cover Glasgow?")

	require.Len(t, gen.seen, 1)
	prompt := gen.seen[0]
	assert.Contains(t, prompt, "You are a helpful assistant.")
	assert.Contains(t, prompt, "Assistant: Hi there")
	assert.Contains(t, prompt, "User: do you cover Glasgow?")
	assert.Regexp(t, `Assistant:$`, prompt)
}

func TestInfoRequestTriggerLatchesAfterSecondUserMessage(t *testing.T) {
	gen := &fakeGenerator{reply: "sure"}
	eng := newTestEngine(gen)

	st := NewState("Hello!")

	first := eng.ProcessTurn(context.Background(), st, "hello")
	assert.False(t, first.State.HasRequestedContactInfo)
	assert.Nil(t, first.Deferred)

	second := eng.ProcessTurn(context.Background(), first.State, "tell me about pricing")
	require.NotNil(t, second.Deferred)
	require.Len(t, second.Deferred.Messages, 2)
	assert.Equal(t, MsgInfoRequest, second.Deferred.Messages[0].Text)
	assert.Equal(t, MsgConsentPrompt, second.Deferred.Messages[1].Text)
	assert.True(t, second.State.HasRequestedContactInfo)
	assert.True(t, second.State.AwaitingConsentAnswer)

	// The trigger fires in addition to ordinary generation.
	assert.Equal(t, RuleGeneration, second.HandledBy)
	assert.Equal(t, 2, gen.calls)
}

func TestInfoRequestNeverFiresTwice(t *testing.T) {
	gen := &fakeGenerator{reply: "reply"}
	eng := newTestEngine(gen)

	st := NewState("Hello!")
	st.HasRequestedContactInfo = true

	for i := 0; i < 5; i++ {
		result := eng.ProcessTurn(context.Background(), st, "another question")
		assert.Nil(t, result.Deferred)
		assert.True(t, result.State.HasRequestedContactInfo)
		st = result.State
		st.AwaitingConsentAnswer = false
	}
}

func TestConsentAffirmativeShowsForm(t *testing.T) {
	gen := &fakeGenerator{}
	eng := newTestEngine(gen)

	st := NewState("Hello!")
	st.HasRequestedContactInfo = true
	st.AwaitingConsentAnswer = true

	result := eng.ProcessTurn(context.Background(), st, "Yes please")

	assert.Equal(t, RuleConsent, result.HandledBy)
	assert.True(t, result.State.ContactFormVisible)
	assert.False(t, result.State.AwaitingConsentAnswer)
	require.Len(t, result.Messages, 1)
	assert.Equal(t, MsgConsentAffirm, result.Messages[0].Text)

	// Consent answers never reach the generator.
	assert.Zero(t, gen.calls)
}

func TestConsentDeclineContinuesWithoutForm(t *testing.T) {
	gen := &fakeGenerator{reply: "hi"}
	eng := newTestEngine(gen)

	st := NewState("Hello!")
	st.HasRequestedContactInfo = true
	st.AwaitingConsentAnswer = true

	result := eng.ProcessTurn(context.Background(), st, "nah")

	assert.False(t, result.State.ContactFormVisible)
	assert.False(t, result.State.AwaitingConsentAnswer)
	require.Len(t, result.Messages, 1)
	assert.Equal(t, MsgConsentDecline, result.Messages[0].Text)
	assert.Zero(t, gen.calls)

	// Declining never re-arms the info request.
	later := eng.ProcessTurn(context.Background(), result.State, "more questions")
	assert.Nil(t, later.Deferred)
}

func TestConsentMatchIsCaseInsensitive(t *testing.T) {
	for _, input := range []string{"YES", "Sure thing", "ok!", "Okay then"} {
		gen := &fakeGenerator{}
		eng := newTestEngine(gen)

		st := NewState("Hello!")
		st.HasRequestedContactInfo = true
		st.AwaitingConsentAnswer = true

		result := eng.ProcessTurn(context.Background(), st, input)
		assert.True(t, result.State.ContactFormVisible, "input %q", input)
	}
}

func TestHandoffSkipsGeneration(t *testing.T) {
	gen := &fakeGenerator{reply: "should not appear"}
	eng := newTestEngine(gen)

	st := NewState("Hello!")
	result := eng.ProcessTurn(context.Background(), st, "I want to SPEAK TO SOMEONE now")

	assert.Equal(t, RuleHandoff, result.HandledBy)
	require.Len(t, result.Messages, 1)
	assert.Equal(t, MsgHandoff, result.Messages[0].Text)
	assert.Zero(t, gen.calls)
	assert.Nil(t, result.Deferred)
}

func TestHandoffWinsWhileConsentPending(t *testing.T) {
	gen := &fakeGenerator{}
	eng := newTestEngine(gen)

	st := NewState("Hello!")
	st.HasRequestedContactInfo = true
	st.AwaitingConsentAnswer = true

	result := eng.ProcessTurn(context.Background(), st, "please let me chat with human")

	assert.Equal(t, RuleHandoff, result.HandledBy)
	require.Len(t, result.Messages, 1)
	assert.Equal(t, MsgHandoff, result.Messages[0].Text)
	assert.False(t, result.State.AwaitingConsentAnswer)
	assert.False(t, result.State.ContactFormVisible)
	assert.Zero(t, gen.calls)
}

func TestBusyTurnIsNoOp(t *testing.T) {
	gen := &fakeGenerator{reply: "hi"}
	eng := newTestEngine(gen)

	st := NewState("Hello!")
	st.Busy = true

	result := eng.ProcessTurn(context.Background(), st, "anyone there?")

	assert.True(t, result.Ignored)
	assert.Equal(t, IgnoreBusy, result.IgnoreReason)
	assert.Equal(t, st.Transcript, result.State.Transcript)
	assert.Empty(t, result.Messages)
	assert.Zero(t, gen.calls)
}

func TestEmptyInputIsNoOp(t *testing.T) {
	gen := &fakeGenerator{reply: "hi"}
	eng := newTestEngine(gen)

	st := NewState("Hello!")
	for _, input := range []string{"", "   ", "\n\t"} {
		result := eng.ProcessTurn(context.Background(), st, input)
		assert.True(t, result.Ignored, "input %q", input)
		assert.Equal(t, IgnoreEmpty, result.IgnoreReason)
		assert.Len(t, result.State.Transcript, 1)
	}
	assert.Zero(t, gen.calls)
}

func TestEmptyReplyFallsBack(t *testing.T) {
	gen := &fakeGenerator{reply: "   "}
	eng := newTestEngine(gen)

	st := NewState("Hello!")
	result := eng.ProcessTurn(context.Background(), st, "hello?")

	require.Len(t, result.Messages, 1)
	assert.Equal(t, MsgFallback, result.Messages[0].Text)
}

func TestGenerationFailureDegradesToCannedMessage(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("connection refused")}
	eng := newTestEngine(gen)

	st := NewState("Hello!")
	result := eng.ProcessTurn(context.Background(), st, "hello?")

	require.Len(t, result.Messages, 1)
	assert.Equal(t, MsgConnectivity, result.Messages[0].Text)

	// The conversation stays usable.
	gen.err = nil
	gen.reply = "all good now"
	next := eng.ProcessTurn(context.Background(), result.State, "still there?")
	require.NotEmpty(t, next.Messages)
	assert.Equal(t, "all good now", next.Messages[len(next.Messages)-1].Text)
}

func TestNilGeneratorDegradesToCannedMessage(t *testing.T) {
	eng := New(nil, "preamble", logger.NewNop())

	st := NewState("Hello!")
	result := eng.ProcessTurn(context.Background(), st, "hello?")

	require.Len(t, result.Messages, 1)
	assert.Equal(t, MsgConnectivity, result.Messages[0].Text)
}
