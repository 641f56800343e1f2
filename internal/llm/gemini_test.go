package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeminiGenerate(t *testing.T) {
	var gotPath, gotKey, gotContentType string
	var gotBody generateContentRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"candidates": [
				{"content": {"parts": [{"text": "We offer visiting care across Scotland."}]}}
			]
		}`))
	}))
	defer srv.Close()

	client, err := NewGeminiClient("test-key", "gemini-2.5-flash-preview-05-20")
	require.NoError(t, err)
	client.SetBaseURL(srv.URL)

	reply, err := client.Generate(context.Background(), "What services do you offer?")
	require.NoError(t, err)
	assert.Equal(t, "We offer visiting care across Scotland.", reply)

	assert.Equal(t, "/gemini-2.5-flash-preview-05-20:generateContent", gotPath)
	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, "application/json", gotContentType)
	require.Len(t, gotBody.Contents, 1)
	require.Len(t, gotBody.Contents[0].Parts, 1)
	assert.Equal(t, "What services do you offer?", gotBody.Contents[0].Parts[0].Text)
}

func TestGeminiGenerateMissingReplyPath(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"no candidates", `{}`},
		{"empty candidates", `{"candidates": []}`},
		{"no content", `{"candidates": [{}]}`},
		{"no parts", `{"candidates": [{"content": {"parts": []}}]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			client, err := NewGeminiClient("test-key", "")
			require.NoError(t, err)
			client.SetBaseURL(srv.URL)

			reply, err := client.Generate(context.Background(), "hello")
			require.NoError(t, err)
			assert.Empty(t, reply)
		})
	}
}

func TestGeminiGenerateMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"candidates": `))
	}))
	defer srv.Close()

	client, err := NewGeminiClient("test-key", "")
	require.NoError(t, err)
	client.SetBaseURL(srv.URL)

	// A 200 with an undecodable body is a generation failure, not an
	// empty reply.
	_, err = client.Generate(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}

func TestGeminiGenerateHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client, err := NewGeminiClient("test-key", "")
	require.NoError(t, err)
	client.SetBaseURL(srv.URL)

	_, err = client.Generate(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestGeminiGenerateNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	client, err := NewGeminiClient("test-key", "")
	require.NoError(t, err)
	client.SetBaseURL(srv.URL)

	_, err = client.Generate(context.Background(), "hello")
	assert.Error(t, err)
}

func TestNewGeminiClientRequiresKey(t *testing.T) {
	_, err := NewGeminiClient("", "model")
	assert.Error(t, err)
}

func TestNewClientUnknownProvider(t *testing.T) {
	_, err := NewClient(Config{Provider: "cohere"})
	assert.Error(t, err)
}
