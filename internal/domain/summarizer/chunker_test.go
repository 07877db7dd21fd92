package summarizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/text-summarizer/internal/domain/textanalysis"
)

const fourSentences = "one two three. four five six. seven eight nine. ten eleven twelve."

func chunkTexts(chunks []Chunk) []string {
	out := make([]string, 0, len(chunks))
	for _, c := range chunks {
		out = append(out, c.Text)
	}
	return out
}

func TestChunkerSplit(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		limit   int
		overlap int
		want    []string
	}{
		{
			name:  "fits in one chunk",
			text:  fourSentences,
			limit: 12,
			want:  []string{fourSentences},
		},
		{
			name:  "two sentences per chunk",
			text:  fourSentences,
			limit: 6,
			want:  []string{"one two three. four five six.", "seven eight nine. ten eleven twelve."},
		},
		{
			name:    "one sentence overlap",
			text:    fourSentences,
			limit:   6,
			overlap: 1,
			want: []string{
				"one two three. four five six.",
				"four five six. seven eight nine.",
				"seven eight nine. ten eleven twelve.",
			},
		},
		{
			name:    "overlap dropped when it leaves no room",
			text:    fourSentences,
			limit:   3,
			overlap: 1,
			want:    []string{"one two three.", "four five six.", "seven eight nine.", "ten eleven twelve."},
		},
		{
			name:  "oversized sentence kept whole",
			text:  "short one. this sentence is far longer than the limit allows. tail.",
			limit: 3,
			want:  []string{"short one.", "this sentence is far longer than the limit allows.", "tail."},
		},
		{
			name:  "blank text",
			text:  "   ",
			limit: 5,
			want:  []string{},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := NewChunker(textanalysis.RuleSegmenter{}, wordEstimator{}, tt.overlap)
			require.Equal(t, tt.want, chunkTexts(c.Split(tt.text, tt.limit)))
		})
	}
}

func TestChunkerIndicesAndCoverage(t *testing.T) {
	var sentences []string
	for i := 0; i < 25; i++ {
		sentences = append(sentences, strings.Repeat("word ", i%4+1)+"end.")
	}
	text := strings.Join(sentences, " ")

	c := NewChunker(textanalysis.RuleSegmenter{}, wordEstimator{}, 2)
	chunks := c.Split(text, 9)
	require.Greater(t, len(chunks), 1)

	seen := 0
	for i, chunk := range chunks {
		require.Equal(t, i, chunk.Index)
		require.Equal(t, wordEstimator{}.Count(chunk.Text), chunk.Tokens)
		require.LessOrEqual(t, chunk.Tokens, 9)
		parts := textanalysis.RuleSegmenter{}.Sentences(chunk.Text)
		start := indexOfRun(sentences, parts, seen)
		require.GreaterOrEqual(t, start, 0, "chunk %d must start at or before the first uncovered sentence", i)
		require.Greater(t, start+len(parts), seen, "chunk %d adds no new sentence", i)
		seen = start + len(parts)
	}
	require.Equal(t, len(sentences), seen)
}

// indexOfRun finds where parts starts in sentences, searching backwards from hint.
func indexOfRun(sentences, parts []string, hint int) int {
	for start := hint; start >= 0; start-- {
		if start+len(parts) > len(sentences) {
			continue
		}
		match := true
		for i, p := range parts {
			if sentences[start+i] != p {
				match = false
				break
			}
		}
		if match {
			return start
		}
	}
	return -1
}
