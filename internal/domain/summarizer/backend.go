package summarizer

import (
	"context"
	"time"
)

// ModelSpec describes a registered model and its input window in tokens.
type ModelSpec struct {
	ID             string
	MaxInputTokens int
}

// Model is a loaded sequence-to-sequence summarization model.
type Model interface {
	ID() string
	Generate(ctx context.Context, text string, params GenerationParameters) (string, error)
}

// Backend lists and materializes models.
type Backend interface {
	Models() []ModelSpec
	Load(ctx context.Context, id string) (Model, error)
}

// TokenEstimator approximates how many model tokens a text occupies.
type TokenEstimator interface {
	Count(text string) int
}

// SentenceSplitter segments text into sentences.
type SentenceSplitter interface {
	Sentences(text string) []string
}

// Cache memoizes deterministic chunk summaries.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}
