package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key"

func authedHandler(t *testing.T, gotID *string) http.Handler {
	t.Helper()
	return SessionAuth(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*gotID = GetSessionID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))
}

func TestSessionTokenRoundTrip(t *testing.T) {
	token, err := IssueSessionToken(testSecret, "session-123", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	var gotID string
	req := httptest.NewRequest(http.MethodGet, "/messages", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	authedHandler(t, &gotID).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "session-123", gotID)
}

func TestSessionAuthRejectsBadRequests(t *testing.T) {
	expired, err := IssueSessionToken(testSecret, "session-123", -time.Hour)
	require.NoError(t, err)
	wrongKey, err := IssueSessionToken("another-secret", "session-123", time.Hour)
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc123"},
		{"garbage token", "Bearer not.a.jwt"},
		{"expired token", "Bearer " + expired},
		{"wrong signing key", "Bearer " + wrongKey},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var gotID string
			req := httptest.NewRequest(http.MethodGet, "/messages", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			authedHandler(t, &gotID).ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Empty(t, gotID)
		})
	}
}

func TestValidateMessageContent(t *testing.T) {
	assert.NoError(t, ValidateMessageContent("hello there"))
	assert.Error(t, ValidateMessageContent(""))
	assert.Error(t, ValidateMessageContent("   \n\t"))

	long := make([]byte, 4001)
	for i := range long {
		long[i] = 'a'
	}
	assert.Error(t, ValidateMessageContent(string(long)))
}

func TestValidateSessionID(t *testing.T) {
	assert.NoError(t, ValidateSessionID("0190f7a8-1234-7abc-8def-0123456789ab"))
	assert.Error(t, ValidateSessionID(""))
	assert.Error(t, ValidateSessionID("not-a-uuid"))
}

func TestValidateLeadFields(t *testing.T) {
	assert.NoError(t, ValidateLeadName("Jordan Smith"))
	assert.Error(t, ValidateLeadName(""))

	assert.NoError(t, ValidateLeadEmail("jordan@example.com"))
	assert.Error(t, ValidateLeadEmail("not-an-email"))
	assert.Error(t, ValidateLeadEmail(""))

	assert.NoError(t, ValidateLeadPhone("+44 7700 900123"))
	assert.Error(t, ValidateLeadPhone(""))
}
