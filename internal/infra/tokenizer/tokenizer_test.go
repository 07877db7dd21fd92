package tokenizer

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWordEstimatorCount(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{name: "empty", text: "", want: 0},
		{name: "whitespace", text: " \n\t", want: 0},
		{name: "words and punctuation", text: "Hello, world!", want: 4},
		{name: "numbers", text: "in 2024 we shipped 3 releases", want: 6},
		{name: "accents stay in one word", text: "café naïve", want: 2},
		{name: "hyphen splits", text: "state-of-the-art", want: 7},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, WordEstimator{}.Count(tt.text))
		})
	}
}

func TestNew(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	est, err := New(Config{}, logger)
	require.NoError(t, err)
	require.IsType(t, WordEstimator{}, est)

	est, err = New(Config{Kind: "Words"}, logger)
	require.NoError(t, err)
	require.IsType(t, WordEstimator{}, est)

	_, err = New(Config{Kind: "sentencepiece"}, logger)
	require.Error(t, err)

	// an unknown encoding always falls back
	est, err = New(Config{Kind: "tiktoken", Encoding: "no-such-encoding"}, logger)
	require.NoError(t, err)
	require.IsType(t, WordEstimator{}, est)
}
