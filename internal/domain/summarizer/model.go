package summarizer

import (
	"time"

	apperrors "github.com/yanqian/text-summarizer/pkg/errors"
)

// Config configures the summarization pipeline.
type Config struct {
	DefaultParams    GenerationParameters
	MaxNumBeams      int
	Workers          int
	OverlapSentences int
	MaxDepth         int
	ChunkTokenBudget int
	CacheTTL         time.Duration
}

// Request represents the incoming summarization payload. Nil Params selects the defaults.
type Request struct {
	Text   string                `json:"text"`
	Params *GenerationParameters `json:"params,omitempty"`
}

// Metadata describes a successful summary.
type Metadata struct {
	OriginalLength   int     `json:"originalLength"`
	SummaryLength    int     `json:"summaryLength"`
	CompressionRatio float64 `json:"compressionRatio"`
	ModelUsed        string  `json:"modelUsed"`
	ChunksProcessed  int     `json:"chunksProcessed,omitempty"`
	DurationMs       int64   `json:"durationMs,omitempty"`
}

// Result is either a success carrying Summary and Metadata or a failure carrying Error.
// Build it with Succeeded or Failed.
type Result struct {
	Success  bool      `json:"success"`
	Summary  string    `json:"summary,omitempty"`
	Error    string    `json:"error,omitempty"`
	Code     string    `json:"code,omitempty"`
	Metadata *Metadata `json:"metadata,omitempty"`
}

// Succeeded builds a successful Result.
func Succeeded(summary string, md Metadata) Result {
	return Result{Success: true, Summary: summary, Metadata: &md}
}

// Failed builds a failed Result from err.
func Failed(err error) Result {
	if err == nil {
		err = apperrors.Wrap(apperrors.CodeInternal, "summarization failed", nil)
	}
	code := apperrors.CodeOf(err)
	if code == "" {
		code = apperrors.CodeInternal
	}
	return Result{Success: false, Error: err.Error(), Code: code}
}
