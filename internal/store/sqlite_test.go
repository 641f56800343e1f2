package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vybrant-care/chat-widget/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "widget.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestTranscriptRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	sessionID := uuid.NewString()

	transcript := model.Transcript{
		{Sender: model.SenderAssistant, Text: "👋 Hello!"},
		{Sender: model.SenderUser, Text: "do you cover night shifts?"},
	}
	require.NoError(t, s.SaveTranscript(ctx, sessionID, transcript))

	got, err := s.LoadTranscript(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, transcript, got)
}

func TestLoadTranscriptAbsentSession(t *testing.T) {
	s := newTestStore(t)

	got, err := s.LoadTranscript(context.Background(), uuid.NewString())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSaveTranscriptOverwrites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	sessionID := uuid.NewString()

	first := model.Transcript{{Sender: model.SenderAssistant, Text: "hi"}}
	require.NoError(t, s.SaveTranscript(ctx, sessionID, first))

	second := first.Append(model.Message{Sender: model.SenderUser, Text: "hello"})
	require.NoError(t, s.SaveTranscript(ctx, sessionID, second))
	require.NoError(t, s.SaveTranscript(ctx, sessionID, second))

	got, err := s.LoadTranscript(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, second, got)
}

func TestSessionsAreIsolated(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := model.Transcript{{Sender: model.SenderAssistant, Text: "session a"}}
	b := model.Transcript{{Sender: model.SenderAssistant, Text: "session b"}}
	require.NoError(t, s.SaveTranscript(ctx, "aaaa", a))
	require.NoError(t, s.SaveTranscript(ctx, "bbbb", b))

	got, err := s.LoadTranscript(ctx, "aaaa")
	require.NoError(t, err)
	assert.Equal(t, a, got)
}

func TestInsertLead(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	lead := &model.Lead{
		ID:        uuid.NewString(),
		Name:      "Jordan Smith",
		Email:     "jordan@example.com",
		Phone:     "+44 7700 900123",
		Message:   model.LeadAnnotation,
		Source:    model.LeadSource,
		Subscribe: true,
		CreatedAt: time.Now(),
	}
	require.NoError(t, s.InsertLead(ctx, lead))

	// Same primary key is rejected.
	assert.Error(t, s.InsertLead(ctx, lead))
}

func TestPing(t *testing.T) {
	s := newTestStore(t)
	assert.NoError(t, s.Ping(context.Background()))
}
