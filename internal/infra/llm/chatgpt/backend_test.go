package chatgpt

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/text-summarizer/internal/domain/summarizer"
)

func newTestServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(handler))
	t.Cleanup(srv.Close)
	client, err := NewClient("sk-test", srv.URL, 0)
	require.NoError(t, err)
	return client
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient("  ", "", 0)
	require.Error(t, err)
}

func TestBackendGenerate(t *testing.T) {
	var captured ChatCompletionRequest
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/models/gpt-4o-mini":
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"id":"gpt-4o-mini"}`))
		case r.Method == http.MethodPost && r.URL.Path == "/chat/completions":
			require.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
			_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  A short summary.  "}}]}`))
		default:
			http.NotFound(w, r)
		}
	})
	backend := NewBackend(client, []summarizer.ModelSpec{{ID: "gpt-4o-mini", MaxInputTokens: 8000}})

	model, err := backend.Load(context.Background(), "gpt-4o-mini")
	require.NoError(t, err)
	require.Equal(t, "gpt-4o-mini", model.ID())

	out, err := model.Generate(context.Background(), "Long input text.", summarizer.DefaultParameters())
	require.NoError(t, err)
	require.Equal(t, "A short summary.", out)
	require.Equal(t, "gpt-4o-mini", captured.Model)
	require.Zero(t, captured.Temperature)
	require.Equal(t, 260, captured.MaxTokens)
	require.Len(t, captured.Messages, 2)
	require.True(t, strings.HasSuffix(captured.Messages[1].Content, "Long input text."))
	require.Contains(t, captured.Messages[1].Content, "at most 130 words")
	require.Contains(t, captured.Messages[1].Content, "at least 30 words")
}

func TestBackendLoadFailure(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"model not found"}`))
	})
	backend := NewBackend(client, []summarizer.ModelSpec{{ID: "gpt-4o-mini"}})

	_, err := backend.Load(context.Background(), "gpt-4o-mini")
	require.Error(t, err)
	require.Contains(t, err.Error(), "status=404")
}

func TestBackendGenerateNoChoices(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})
	m := &model{client: client, id: "gpt-4o-mini"}

	params := summarizer.DefaultParameters()
	params.DoSample = true
	_, err := m.Generate(context.Background(), "text", params)
	require.Error(t, err)
}
