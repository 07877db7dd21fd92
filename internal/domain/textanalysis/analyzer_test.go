package textanalysis

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	a := NewAnalyzer()

	got := a.Metrics("The cat sat. The cat ran.")
	require.Equal(t, 6, got.WordCount)
	require.Equal(t, 2, got.SentenceCount)
	require.Equal(t, 4, got.UniqueWords)
	require.InDelta(t, 3.0, got.AvgSentenceLength, 1e-9)
	require.InDelta(t, 0.667, got.LexicalDiversity, 1e-3)
}

func TestMetricsZeroGuards(t *testing.T) {
	a := NewAnalyzer()
	for _, in := range []string{"", "   ", "...", "?!"} {
		in := in
		t.Run(in, func(t *testing.T) {
			got := a.Metrics(in)
			require.Zero(t, got.WordCount)
			require.Zero(t, got.AvgSentenceLength)
			require.Zero(t, got.LexicalDiversity)
		})
	}
	require.Equal(t, Metrics{}, a.Metrics(""))
}

func TestTopKeywords(t *testing.T) {
	a := NewAnalyzer()
	text := "Go routines are cheap. Channels connect routines. Go channels and routines scale."

	tests := []struct {
		name string
		k    int
		want []string
	}{
		{name: "zero", k: 0, want: []string{}},
		{name: "negative", k: -3, want: []string{}},
		{name: "top one", k: 1, want: []string{"routines"}},
		{name: "top two", k: 2, want: []string{"routines", "channels"}},
		{name: "ties keep first occurrence", k: 10, want: []string{"routines", "channels", "cheap", "connect", "scale"}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, a.TopKeywords(text, tt.k))
		})
	}
}

func TestTopKeywordsOnlyStopwords(t *testing.T) {
	a := NewAnalyzer()
	require.Empty(t, a.TopKeywords("the and of to with this that", 5))
	require.NotNil(t, a.TopKeywords("the and of", 5))
}

func TestTopKeywordsMonotonicInK(t *testing.T) {
	a := NewAnalyzer()
	text := "Alpha beta gamma. Beta gamma delta. Gamma delta epsilon alpha."
	prev := 0
	for k := 0; k <= 8; k++ {
		got := a.TopKeywords(text, k)
		require.LessOrEqual(t, len(got), k)
		require.GreaterOrEqual(t, len(got), prev)
		prev = len(got)
	}
}

func TestTopKeywordsIsPure(t *testing.T) {
	a := NewAnalyzer()
	text := "Delta delta echo foxtrot echo delta."
	first := a.TopKeywords(text, 3)
	_ = a.TopKeywords("something entirely different here", 3)
	require.Equal(t, first, a.TopKeywords(text, 3))
}

func TestAnalyzerOptions(t *testing.T) {
	a := NewAnalyzer(WithStopwords([]string{"Alpha"}), WithMinTermLength(1))
	require.Equal(t, []string{"the", "b"}, a.TopKeywords("alpha the the b alpha", 5))
}

func TestCustomSegmenter(t *testing.T) {
	a := NewAnalyzer(WithSegmenter(pairSegmenter{}))
	got := a.Metrics("one two\nthree")
	require.Equal(t, 2, got.SentenceCount)
	require.Equal(t, 3, got.WordCount)
}

type pairSegmenter struct{}

func (pairSegmenter) Sentences(text string) []string {
	return RuleSegmenter{}.Words(text)[:2]
}

func (pairSegmenter) Words(text string) []string {
	return RuleSegmenter{}.Words(text)
}

func TestTerms(t *testing.T) {
	got := NewAnalyzer().Terms("Model models MODEL the 2024 ok models.")
	require.Equal(t, []Term{{Word: "model", Count: 2}, {Word: "models", Count: 2}}, got)
}
