package textanalysis

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Segmenter splits text into sentences and words.
type Segmenter interface {
	Sentences(text string) []string
	Words(text string) []string
}

// RuleSegmenter segments on terminal punctuation and alphanumeric runs.
type RuleSegmenter struct{}

// Sentences splits after '.', '!' or '?' when followed by whitespace or the end of
// the text. A trailing fragment without terminal punctuation is kept as a sentence.
func (RuleSegmenter) Sentences(text string) []string {
	var (
		out   []string
		start int
	)
	for i, r := range text {
		if !isTerminal(r) {
			continue
		}
		next := i + utf8.RuneLen(r)
		if next < len(text) {
			following, _ := utf8.DecodeRuneInString(text[next:])
			if !unicode.IsSpace(following) {
				continue
			}
		}
		if sentence := strings.TrimSpace(text[start:next]); sentence != "" {
			out = append(out, sentence)
		}
		start = next
	}
	if tail := strings.TrimSpace(text[start:]); tail != "" {
		out = append(out, tail)
	}
	return out
}

// Words returns maximal runs of letters and digits.
func (RuleSegmenter) Words(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

var _ Segmenter = RuleSegmenter{}
