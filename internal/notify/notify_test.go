package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vybrant-care/chat-widget/internal/model"
	"github.com/vybrant-care/chat-widget/pkg/logger"
)

func testLead() *model.Lead {
	return &model.Lead{
		ID:        "lead-1",
		Name:      "Jordan Smith",
		Email:     "jordan@example.com",
		Phone:     "+44 7700 900123",
		Message:   model.LeadAnnotation,
		Source:    model.LeadSource,
		Subscribe: true,
		CreatedAt: time.Now(),
	}
}

func TestNotifyLead(t *testing.T) {
	var gotAuth, gotContentType string
	var gotPayload map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewHTTPNotifier(srv.URL, "anon-key", logger.NewNop())
	require.NoError(t, n.NotifyLead(context.Background(), testLead()))

	assert.Equal(t, "Bearer anon-key", gotAuth)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, map[string]string{
		"name":  "Jordan Smith",
		"email": "jordan@example.com",
		"phone": "+44 7700 900123",
	}, gotPayload)
}

func TestNotifyLeadErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := NewHTTPNotifier(srv.URL, "anon-key", logger.NewNop())
	err := n.NotifyLead(context.Background(), testLead())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestNotifyLeadUnreachableEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	n := NewHTTPNotifier(srv.URL, "anon-key", logger.NewNop())
	assert.Error(t, n.NotifyLead(context.Background(), testLead()))
}
