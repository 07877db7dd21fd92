package summarizer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/yanqian/text-summarizer/pkg/errors"
)

const (
	defaultWorkers  = 4
	defaultMaxDepth = 3
)

// Outcome is the final summary and the number of leaf chunks it was built from.
type Outcome struct {
	Summary string
	Chunks  int
}

// Orchestrator makes arbitrarily long text summarizable by a model with a bounded
// input window.
type Orchestrator struct {
	chunker   *Chunker
	estimator TokenEstimator
	workers   int
	maxDepth  int
	logger    *slog.Logger
}

// NewOrchestrator constructs an orchestrator. maxDepth bounds how many times combined
// chunk summaries may be summarized again.
func NewOrchestrator(chunker *Chunker, estimator TokenEstimator, workers, maxDepth int, logger *slog.Logger) *Orchestrator {
	if workers <= 0 {
		workers = defaultWorkers
	}
	if maxDepth < 0 {
		maxDepth = defaultMaxDepth
	}
	return &Orchestrator{
		chunker:   chunker,
		estimator: estimator,
		workers:   workers,
		maxDepth:  maxDepth,
		logger:    logger.With("component", "summarizer.orchestrator"),
	}
}

// Run summarizes text with engine, chunking it when it exceeds limit tokens.
func (o *Orchestrator) Run(ctx context.Context, engine ChunkSummarizer, text string, limit int, params GenerationParameters) (Outcome, error) {
	if strings.TrimSpace(text) == "" {
		return Outcome{}, apperrors.Wrap(apperrors.CodeEmptyInput, "text cannot be empty", nil)
	}
	if limit <= 0 {
		return Outcome{}, apperrors.Wrap(apperrors.CodeInvalidParameters, fmt.Sprintf("chunk token limit must be positive, got %d", limit), nil)
	}

	ctx, span := tracer.Start(ctx, "summarizer.orchestrate")
	defer span.End()

	summary, chunks, err := o.run(ctx, engine, text, limit, params, 0)
	if err != nil {
		return Outcome{}, err
	}
	span.SetAttributes(attribute.Int("chunks", chunks))
	return Outcome{Summary: summary, Chunks: chunks}, nil
}

func (o *Orchestrator) run(ctx context.Context, engine ChunkSummarizer, text string, limit int, params GenerationParameters, depth int) (string, int, error) {
	if depth > o.maxDepth {
		return "", 0, apperrors.Wrap(apperrors.CodeTextTooLong, fmt.Sprintf("text still exceeds the model window after %d combination passes", o.maxDepth), nil)
	}

	tokens := o.estimator.Count(text)
	if tokens <= limit {
		summary, err := engine.SummarizeChunk(ctx, Chunk{Index: 0, Text: text, Tokens: tokens}, params)
		return summary, 1, err
	}

	chunks := o.chunker.Split(text, limit)
	if len(chunks) <= 1 {
		// a single over-long sentence; the model truncates it
		chunk := Chunk{Index: 0, Text: text, Tokens: tokens}
		if len(chunks) == 1 {
			chunk = chunks[0]
		}
		summary, err := engine.SummarizeChunk(ctx, chunk, params)
		return summary, 1, err
	}

	o.logger.Debug("text split into chunks", "chunks", len(chunks), "tokens", tokens, "limit", limit, "depth", depth)

	summaries, err := o.summarizeAll(ctx, engine, chunks, params)
	if err != nil {
		return "", 0, err
	}
	combined := strings.Join(summaries, " ")
	if o.estimator.Count(combined) <= limit {
		return combined, len(chunks), nil
	}

	final, _, err := o.run(ctx, engine, combined, limit, params, depth+1)
	if err != nil {
		return "", 0, err
	}
	return final, len(chunks), nil
}

// summarizeAll runs chunk inference with bounded concurrency. Results are stored by
// chunk index so the output order never depends on completion order.
func (o *Orchestrator) summarizeAll(ctx context.Context, engine ChunkSummarizer, chunks []Chunk, params GenerationParameters) ([]string, error) {
	results := make([]string, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	for i, chunk := range chunks {
		i, chunk := i, chunk
		g.Go(func() error {
			summary, err := engine.SummarizeChunk(gctx, chunk, params)
			if err != nil {
				return err
			}
			results[i] = summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
