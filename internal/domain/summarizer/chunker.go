package summarizer

import "strings"

// Chunk is a run of whole sentences from the input, tagged with its position.
type Chunk struct {
	Index  int
	Text   string
	Tokens int
}

// Chunker packs sentences into chunks that fit a token budget.
type Chunker struct {
	splitter  SentenceSplitter
	estimator TokenEstimator
	overlap   int
}

// NewChunker constructs a chunker sharing overlapSentences between neighbours.
func NewChunker(splitter SentenceSplitter, estimator TokenEstimator, overlapSentences int) *Chunker {
	if overlapSentences < 0 {
		overlapSentences = 0
	}
	return &Chunker{splitter: splitter, estimator: estimator, overlap: overlapSentences}
}

// Split partitions text along sentence boundaries. Every chunk stays within limit
// unless it consists of a single sentence that alone exceeds it.
func (c *Chunker) Split(text string, limit int) []Chunk {
	sentences := c.splitter.Sentences(text)
	if len(sentences) == 0 {
		return nil
	}
	counts := make([]int, len(sentences))
	for i, s := range sentences {
		counts[i] = c.estimator.Count(s)
	}

	var (
		out     []Chunk
		start   int
		covered int
	)
	for covered < len(sentences) {
		end := start
		tokens := 0
		for end < len(sentences) && (end == start || tokens+counts[end] <= limit) {
			tokens += counts[end]
			end++
		}
		if end <= covered {
			// overlap left no room for a new sentence; start fresh without it
			start = covered
			continue
		}
		covered = end
		out = append(out, Chunk{
			Index:  len(out),
			Text:   strings.Join(sentences[start:end], " "),
			Tokens: tokens,
		})
		if end == len(sentences) {
			break
		}
		next := end - c.overlap
		if next <= start {
			next = end
		}
		start = next
	}
	return out
}
