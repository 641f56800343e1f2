package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTranscriptAppendDoesNotMutateReceiver(t *testing.T) {
	base := Transcript{{Sender: SenderAssistant, Text: "hi"}}
	grown := base.Append(Message{Sender: SenderUser, Text: "hello"})

	assert.Len(t, base, 1)
	assert.Len(t, grown, 2)

	// Growing one branch never writes into the other's backing array.
	a := grown.Append(Message{Sender: SenderUser, Text: "a"})
	b := grown.Append(Message{Sender: SenderUser, Text: "b"})
	assert.Equal(t, "a", a[2].Text)
	assert.Equal(t, "b", b[2].Text)
}

func TestTranscriptUserMessageCount(t *testing.T) {
	tr := Transcript{
		{Sender: SenderAssistant, Text: "greeting"},
		{Sender: SenderUser, Text: "one"},
		{Sender: SenderAssistant, Text: "reply"},
		{Sender: SenderUser, Text: "two"},
	}
	assert.Equal(t, 2, tr.UserMessageCount())
	assert.Equal(t, 0, Transcript{}.UserMessageCount())
}

func TestTranscriptPromptLines(t *testing.T) {
	tr := Transcript{
		{Sender: SenderAssistant, Text: "greeting"},
		{Sender: SenderUser, Text: "question"},
	}
	assert.Equal(t, "Assistant: greeting\nUser: question", tr.PromptLines())
}
