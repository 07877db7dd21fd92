package summarizer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	apperrors "github.com/yanqian/text-summarizer/pkg/errors"
	"github.com/yanqian/text-summarizer/pkg/metrics"
)

var tracer = otel.Tracer("github.com/yanqian/text-summarizer/internal/domain/summarizer")

// ChunkSummarizer summarizes a single chunk.
type ChunkSummarizer interface {
	SummarizeChunk(ctx context.Context, chunk Chunk, params GenerationParameters) (string, error)
}

// Engine runs bounded-length inference against one loaded model.
type Engine struct {
	model    Model
	cache    Cache
	cacheTTL time.Duration
	metrics  *metrics.Collector
	logger   *slog.Logger
}

// NewEngine wraps model. cache may be nil.
func NewEngine(model Model, cache Cache, cacheTTL time.Duration, collector *metrics.Collector, logger *slog.Logger) *Engine {
	return &Engine{
		model:    model,
		cache:    cache,
		cacheTTL: cacheTTL,
		metrics:  collector,
		logger:   logger.With("component", "summarizer.engine", "model", model.ID()),
	}
}

// SummarizeChunk generates a summary for chunk. Deterministic (non-sampling) results
// may be served from the cache; backend failures are returned without retrying.
func (e *Engine) SummarizeChunk(ctx context.Context, chunk Chunk, params GenerationParameters) (summary string, err error) {
	text := strings.TrimSpace(chunk.Text)
	if text == "" {
		return "", apperrors.Wrap(apperrors.CodeEmptyInput, "chunk text cannot be empty", nil)
	}
	if err := params.Validate(); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", apperrors.Wrap(apperrors.CodeCancelled, "inference cancelled", err)
	}

	var key string
	if e.cache != nil && !params.DoSample {
		key = cacheKey(e.model.ID(), params, text)
		if cached, ok := e.lookup(ctx, key); ok {
			return cached, nil
		}
	}

	ctx, span := tracer.Start(ctx, "summarizer.inference")
	span.SetAttributes(
		attribute.String("model", e.model.ID()),
		attribute.Int("chunk.index", chunk.Index),
		attribute.Int("chunk.tokens", chunk.Tokens),
		attribute.Bool("do_sample", params.DoSample),
	)
	defer span.End()

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			summary = ""
			err = apperrors.Wrap(apperrors.CodeInferenceError, "model panicked", fmt.Errorf("%v", r))
		}
		status := "ok"
		if err != nil {
			status = apperrors.CodeOf(err)
			span.SetStatus(codes.Error, err.Error())
		}
		e.metrics.ObserveInference(e.model.ID(), status, time.Since(start))
	}()

	out, genErr := e.model.Generate(ctx, text, params)
	if genErr != nil {
		if ctx.Err() != nil || errors.Is(genErr, context.Canceled) || errors.Is(genErr, context.DeadlineExceeded) {
			return "", apperrors.Wrap(apperrors.CodeCancelled, "inference cancelled", genErr)
		}
		return "", apperrors.Wrap(apperrors.CodeInferenceError, fmt.Sprintf("model %s failed on chunk %d", e.model.ID(), chunk.Index), genErr)
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", apperrors.Wrap(apperrors.CodeInferenceError, fmt.Sprintf("model %s returned an empty summary", e.model.ID()), nil)
	}

	if key != "" {
		if err := e.cache.Set(ctx, key, out, e.cacheTTL); err != nil {
			e.logger.Warn("chunk cache write failed", "error", err)
		}
	}
	return out, nil
}

func (e *Engine) lookup(ctx context.Context, key string) (string, bool) {
	cached, ok, err := e.cache.Get(ctx, key)
	if err != nil {
		e.logger.Warn("chunk cache read failed", "error", err)
		return "", false
	}
	e.metrics.ObserveCache(ok)
	return cached, ok
}

func cacheKey(model string, params GenerationParameters, text string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%d|%d|%d|%s", model, params.MaxLength, params.MinLength, params.NumBeams, text)))
	return hex.EncodeToString(sum[:])
}

var _ ChunkSummarizer = (*Engine)(nil)
