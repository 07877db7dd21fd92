package huggingface

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/text-summarizer/internal/domain/summarizer"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, breaker BreakerConfig) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewClient(Config{BaseURL: srv.URL, Token: "hf_test", Breaker: breaker}, logger)
}

func TestBackendLoadAndGenerate(t *testing.T) {
	var captured summarizationRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer hf_test", r.Header.Get("Authorization"))
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/status/facebook/bart-large-cnn":
			_, _ = w.Write([]byte(`{"loaded":true,"state":"Loaded"}`))
		case r.Method == http.MethodPost && r.URL.Path == "/models/facebook/bart-large-cnn":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
			_, _ = w.Write([]byte(`[{"summary_text":" The cat sat. "}]`))
		default:
			http.NotFound(w, r)
		}
	}, BreakerConfig{})
	backend := NewBackend(client, []summarizer.ModelSpec{{ID: "facebook/bart-large-cnn", MaxInputTokens: 1024}})
	require.Len(t, backend.Models(), 1)

	model, err := backend.Load(context.Background(), "facebook/bart-large-cnn")
	require.NoError(t, err)

	params := summarizer.GenerationParameters{MaxLength: 60, MinLength: 10, NumBeams: 2}
	out, err := model.Generate(context.Background(), "The cat sat on the mat all day.", params)
	require.NoError(t, err)
	require.Equal(t, "The cat sat.", out)
	require.Equal(t, "The cat sat on the mat all day.", captured.Inputs)
	require.Equal(t, Parameters{MaxLength: 60, MinLength: 10, NumBeams: 2}, captured.Parameters)
	require.True(t, captured.Options["wait_for_model"])
}

func TestBackendLoadUnknownModel(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"Model does-not/exist does not exist"}`))
	}, BreakerConfig{})

	_, err := NewBackend(client, nil).Load(context.Background(), "does-not/exist")
	require.Error(t, err)
	require.Contains(t, err.Error(), "does not exist")
}

func TestClientSummarizeEmptyResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}, BreakerConfig{})

	_, err := client.Summarize(context.Background(), "t5-small", "text", Parameters{MaxLength: 10, NumBeams: 1})
	require.Error(t, err)
}

func TestClientBreakerOpens(t *testing.T) {
	var hits atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}, BreakerConfig{MinRequests: 2, FailureRatio: 0.5, OpenTimeout: time.Minute})

	for i := 0; i < 2; i++ {
		_, err := client.Summarize(context.Background(), "t5-small", "text", Parameters{MaxLength: 10, NumBeams: 1})
		require.Error(t, err)
		require.NotErrorIs(t, err, ErrUnavailable)
	}

	_, err := client.Summarize(context.Background(), "t5-small", "text", Parameters{MaxLength: 10, NumBeams: 1})
	require.ErrorIs(t, err, ErrUnavailable)
	require.EqualValues(t, 2, hits.Load())
}

func TestEscapeModel(t *testing.T) {
	require.Equal(t, "facebook/bart-large-cnn", escapeModel("facebook/bart-large-cnn"))
	require.Equal(t, "org/model%20name", escapeModel("org/model name"))
}
