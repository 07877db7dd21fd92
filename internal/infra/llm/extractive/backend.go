// Package extractive implements an offline summarization backend that selects the
// highest scoring sentences of the input. It needs no network and serves development
// setups and tests.
package extractive

import (
	"context"
	"math"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/yanqian/text-summarizer/internal/domain/summarizer"
	"github.com/yanqian/text-summarizer/internal/domain/textanalysis"
)

// Backend exposes every catalog entry as a sentence extractor.
type Backend struct {
	analyzer *textanalysis.Analyzer
	catalog  []summarizer.ModelSpec
}

// NewBackend constructs the backend.
func NewBackend(analyzer *textanalysis.Analyzer, catalog []summarizer.ModelSpec) *Backend {
	return &Backend{analyzer: analyzer, catalog: catalog}
}

func (b *Backend) Models() []summarizer.ModelSpec {
	out := make([]summarizer.ModelSpec, len(b.catalog))
	copy(out, b.catalog)
	return out
}

func (b *Backend) Load(ctx context.Context, id string) (summarizer.Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Model{
		id:       id,
		analyzer: b.analyzer,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// Model ranks sentences by the normalized frequency of their terms.
type Model struct {
	id       string
	analyzer *textanalysis.Analyzer

	mu  sync.Mutex
	rng *rand.Rand
}

func (m *Model) ID() string { return m.id }

// Generate selects sentences within MaxLength words, keeping adding them until MinLength
// is reached when possible. Selected sentences keep their input order. Without sampling
// the output depends on the input alone.
func (m *Model) Generate(ctx context.Context, text string, params summarizer.GenerationParameters) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	sentences := m.analyzer.Segmenter().Sentences(text)
	if len(sentences) == 0 {
		return "", nil
	}

	order := m.rank(sentences, text, params.DoSample)
	var (
		picked []int
		words  int
	)
	for _, idx := range order {
		n := len(strings.Fields(sentences[idx]))
		if words >= params.MinLength && len(picked) > 0 {
			break
		}
		if words+n > params.MaxLength {
			if len(picked) == 0 {
				// nothing fits whole; cut the best sentence at the budget
				return truncateWords(sentences[idx], params.MaxLength), nil
			}
			continue
		}
		picked = append(picked, idx)
		words += n
	}

	sort.Ints(picked)
	out := make([]string, 0, len(picked))
	for _, idx := range picked {
		out = append(out, sentences[idx])
	}
	return strings.Join(out, " "), nil
}

// rank orders sentence indices from most to least representative. With sampling the
// order is drawn at random, weighted by score.
func (m *Model) rank(sentences []string, text string, sample bool) []int {
	freq := make(map[string]float64)
	maxCount := 0
	for _, t := range m.analyzer.Terms(text) {
		freq[t.Word] = float64(t.Count)
		if t.Count > maxCount {
			maxCount = t.Count
		}
	}

	scores := make([]float64, len(sentences))
	for i, s := range sentences {
		words := m.analyzer.Segmenter().Words(s)
		if len(words) == 0 {
			continue
		}
		score := 0.0
		for _, w := range words {
			score += freq[strings.ToLower(w)]
		}
		if maxCount > 0 {
			score /= float64(maxCount)
		}
		scores[i] = score / math.Sqrt(float64(len(words)))
	}

	order := make([]int, len(sentences))
	for i := range order {
		order[i] = i
	}
	if sample {
		return m.weightedShuffle(order, scores)
	}
	sort.SliceStable(order, func(i, j int) bool {
		return scores[order[i]] > scores[order[j]]
	})
	return order
}

// weightedShuffle draws indices without replacement with probability proportional to
// score plus a small floor so zero scoring sentences remain reachable.
func (m *Model) weightedShuffle(order []int, scores []float64) []int {
	m.mu.Lock()
	defer m.mu.Unlock()

	remaining := append([]int(nil), order...)
	out := make([]int, 0, len(order))
	for len(remaining) > 0 {
		total := 0.0
		for _, idx := range remaining {
			total += scores[idx] + 0.05
		}
		target := m.rng.Float64() * total
		pick := len(remaining) - 1
		for i, idx := range remaining {
			target -= scores[idx] + 0.05
			if target <= 0 {
				pick = i
				break
			}
		}
		out = append(out, remaining[pick])
		remaining = append(remaining[:pick], remaining[pick+1:]...)
	}
	return out
}

func truncateWords(sentence string, limit int) string {
	fields := strings.Fields(sentence)
	if len(fields) <= limit {
		return sentence
	}
	return strings.Join(fields[:limit], " ")
}

var _ summarizer.Backend = (*Backend)(nil)
