package summarizer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	apperrors "github.com/yanqian/text-summarizer/pkg/errors"
	"github.com/yanqian/text-summarizer/pkg/metrics"
	"github.com/yanqian/text-summarizer/pkg/util"
)

const defaultChunkTokens = 1024

// Service exposes summarization capabilities.
type Service interface {
	Summarize(ctx context.Context, req Request) Result
	ListModels() []string
	ActiveModel() string
	SwitchModel(ctx context.Context, id string) error
}

type service struct {
	cfg          Config
	registry     *Registry
	orchestrator *Orchestrator
	cache        Cache
	metrics      *metrics.Collector
	logger       *slog.Logger
}

// NewService is a wire provider for the summarizer domain. cache may be nil.
func NewService(cfg Config, registry *Registry, orchestrator *Orchestrator, cache Cache, collector *metrics.Collector, logger *slog.Logger) Service {
	return &service{
		cfg:          cfg,
		registry:     registry,
		orchestrator: orchestrator,
		cache:        cache,
		metrics:      collector,
		logger:       logger.With("component", "summarizer.service"),
	}
}

// Summarize never returns an error; every failure is folded into the Result.
func (s *service) Summarize(ctx context.Context, req Request) Result {
	start := util.NowUTC()
	ctx, span := tracer.Start(ctx, "summarizer.summarize")
	defer span.End()

	fail := func(err error) Result {
		result := Failed(err)
		span.SetStatus(codes.Error, result.Error)
		s.metrics.ObserveSummary(result.Code, 0)
		s.logger.Warn("summarization failed", "code", result.Code, "error", result.Error)
		return result
	}

	if strings.TrimSpace(req.Text) == "" {
		return fail(apperrors.Wrap(apperrors.CodeEmptyInput, "text cannot be empty", nil))
	}
	params := s.cfg.DefaultParams
	if req.Params != nil {
		params = *req.Params
	}
	if err := s.validateParams(params); err != nil {
		return fail(err)
	}

	handle, release := s.registry.Acquire()
	defer release()
	span.SetAttributes(attribute.String("model", handle.Spec.ID))

	engine := NewEngine(handle.Model, s.cache, s.cfg.CacheTTL, s.metrics, s.logger)
	outcome, err := s.orchestrator.Run(ctx, engine, req.Text, s.chunkLimit(handle.Spec), params)
	if err != nil {
		return fail(err)
	}

	md := Metadata{
		OriginalLength: utf8.RuneCountInString(req.Text),
		SummaryLength:  utf8.RuneCountInString(outcome.Summary),
		ModelUsed:      handle.Spec.ID,
		DurationMs:     util.ElapsedMillis(start),
	}
	if md.OriginalLength > 0 {
		md.CompressionRatio = float64(md.SummaryLength) / float64(md.OriginalLength)
	}
	if outcome.Chunks > 1 {
		md.ChunksProcessed = outcome.Chunks
	}

	s.metrics.ObserveSummary("ok", outcome.Chunks)
	s.logger.Info("summary generated",
		"model", md.ModelUsed,
		"original_length", md.OriginalLength,
		"summary_length", md.SummaryLength,
		"chunks", outcome.Chunks,
		"duration_ms", md.DurationMs,
	)
	return Succeeded(outcome.Summary, md)
}

func (s *service) ListModels() []string {
	return s.registry.ListModels()
}

func (s *service) ActiveModel() string {
	return s.registry.ActiveModel()
}

func (s *service) SwitchModel(ctx context.Context, id string) error {
	return s.registry.Switch(ctx, strings.TrimSpace(id))
}

func (s *service) validateParams(params GenerationParameters) error {
	if err := params.Validate(); err != nil {
		return err
	}
	if s.cfg.MaxNumBeams > 0 && params.NumBeams > s.cfg.MaxNumBeams {
		return apperrors.Wrap(apperrors.CodeInvalidParameters, fmt.Sprintf("numBeams cannot exceed %d, got %d", s.cfg.MaxNumBeams, params.NumBeams), nil)
	}
	return nil
}

func (s *service) chunkLimit(spec ModelSpec) int {
	limit := spec.MaxInputTokens
	if limit <= 0 {
		limit = defaultChunkTokens
	}
	if s.cfg.ChunkTokenBudget > 0 && s.cfg.ChunkTokenBudget < limit {
		limit = s.cfg.ChunkTokenBudget
	}
	return limit
}
