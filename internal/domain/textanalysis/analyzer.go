// Package textanalysis computes lexical statistics and keyword rankings used to
// characterize summarizer input and output.
package textanalysis

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

const defaultMinTermLength = 3

// Metrics captures lexical statistics for a text.
type Metrics struct {
	WordCount         int     `json:"wordCount"`
	SentenceCount     int     `json:"sentenceCount"`
	UniqueWords       int     `json:"uniqueWords"`
	AvgSentenceLength float64 `json:"avgSentenceLength"`
	LexicalDiversity  float64 `json:"lexicalDiversity"`
}

// Option customises an Analyzer.
type Option func(*Analyzer)

// WithSegmenter replaces the sentence/word segmentation policy.
func WithSegmenter(s Segmenter) Option {
	return func(a *Analyzer) {
		if s != nil {
			a.segmenter = s
		}
	}
}

// WithStopwords replaces the stopword list used by keyword extraction.
func WithStopwords(words []string) Option {
	return func(a *Analyzer) {
		lowered := make([]string, 0, len(words))
		for _, w := range words {
			lowered = append(lowered, strings.ToLower(strings.TrimSpace(w)))
		}
		a.stopwords = stopwordSet(lowered)
	}
}

// WithMinTermLength sets the shortest term (in runes) eligible as a keyword.
func WithMinTermLength(n int) Option {
	return func(a *Analyzer) {
		if n >= 1 {
			a.minTermLength = n
		}
	}
}

// Analyzer is safe for concurrent use; it holds no per-call state.
type Analyzer struct {
	segmenter     Segmenter
	stopwords     map[string]struct{}
	minTermLength int
}

// NewAnalyzer builds an Analyzer with the rule segmenter and English stopwords.
func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{
		segmenter:     RuleSegmenter{},
		stopwords:     stopwordSet(defaultStopwords),
		minTermLength: defaultMinTermLength,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Segmenter exposes the segmentation policy so other components split text the same way.
func (a *Analyzer) Segmenter() Segmenter {
	return a.segmenter
}

// Metrics computes word, sentence and vocabulary statistics. It never fails.
func (a *Analyzer) Metrics(text string) Metrics {
	words := a.segmenter.Words(text)
	sentences := a.segmenter.Sentences(text)

	unique := make(map[string]struct{}, len(words))
	for _, w := range words {
		unique[strings.ToLower(w)] = struct{}{}
	}

	m := Metrics{
		WordCount:     len(words),
		SentenceCount: len(sentences),
		UniqueWords:   len(unique),
	}
	if m.SentenceCount > 0 {
		m.AvgSentenceLength = float64(m.WordCount) / float64(m.SentenceCount)
	}
	if m.WordCount > 0 {
		m.LexicalDiversity = float64(m.UniqueWords) / float64(m.WordCount)
	}
	return m
}

// Term is a keyword candidate and the number of times it occurs.
type Term struct {
	Word  string
	Count int
}

// Terms counts keyword candidates (lowercased, stopwords and short or numeric tokens
// removed) in first-occurrence order.
func (a *Analyzer) Terms(text string) []Term {
	var (
		terms []Term
		index = make(map[string]int)
	)
	for _, w := range a.segmenter.Words(text) {
		lowered := strings.ToLower(w)
		if !a.qualifies(lowered) {
			continue
		}
		if i, ok := index[lowered]; ok {
			terms[i].Count++
			continue
		}
		index[lowered] = len(terms)
		terms = append(terms, Term{Word: lowered, Count: 1})
	}
	return terms
}

// TopKeywords returns up to k terms ranked by frequency. Ties keep first-occurrence order.
func (a *Analyzer) TopKeywords(text string, k int) []string {
	if k <= 0 {
		return []string{}
	}

	terms := a.Terms(text)
	sort.SliceStable(terms, func(i, j int) bool {
		return terms[i].Count > terms[j].Count
	})

	if len(terms) > k {
		terms = terms[:k]
	}
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		out = append(out, t.Word)
	}
	return out
}

func (a *Analyzer) qualifies(word string) bool {
	if utf8.RuneCountInString(word) < a.minTermLength {
		return false
	}
	if _, stop := a.stopwords[word]; stop {
		return false
	}
	return strings.IndexFunc(word, func(r rune) bool { return !unicode.IsDigit(r) }) != -1
}
