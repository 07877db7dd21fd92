package tokenizer

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// Estimator approximates the number of model tokens in a text.
type Estimator interface {
	Count(text string) int
}

// words, numbers and standalone punctuation each count as one token
var wordPattern = regexp.MustCompile(`\p{L}[\p{L}\p{M}]*|\p{N}+|[^\s\p{L}\p{N}]`)

// WordEstimator approximates subword tokenizers by counting lexical units.
type WordEstimator struct{}

// Count implements Estimator.
func (WordEstimator) Count(text string) int {
	return len(wordPattern.FindAllStringIndex(text, -1))
}

// TiktokenEstimator counts BPE tokens.
type TiktokenEstimator struct {
	enc *tiktoken.Tiktoken
}

// NewTiktokenEstimator resolves encoding as a model name first and as an encoding name
// second.
func NewTiktokenEstimator(encoding string) (*TiktokenEstimator, error) {
	enc, err := tiktoken.EncodingForModel(encoding)
	if err != nil {
		enc, err = tiktoken.GetEncoding(encoding)
		if err != nil {
			return nil, fmt.Errorf("load tiktoken encoding %q: %w", encoding, err)
		}
	}
	return &TiktokenEstimator{enc: enc}, nil
}

// Count implements Estimator.
func (t *TiktokenEstimator) Count(text string) int {
	if text == "" {
		return 0
	}
	return len(t.enc.Encode(text, nil, nil))
}

// Config selects the estimator.
type Config struct {
	Kind     string `yaml:"kind"`
	Encoding string `yaml:"encoding"`
}

// New builds the configured estimator. The tiktoken encoding is fetched on first use, so
// when it cannot be loaded the word estimator is used instead.
func New(cfg Config, logger *slog.Logger) (Estimator, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Kind)) {
	case "", "words":
		return WordEstimator{}, nil
	case "tiktoken":
		est, err := NewTiktokenEstimator(cfg.Encoding)
		if err != nil {
			logger.Warn("tiktoken unavailable, falling back to word estimator", "encoding", cfg.Encoding, "error", err)
			return WordEstimator{}, nil
		}
		return est, nil
	default:
		return nil, fmt.Errorf("unknown tokenizer kind %q", cfg.Kind)
	}
}
