package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/text-summarizer/internal/domain/auth"
	"github.com/yanqian/text-summarizer/internal/domain/summarizer"
	"github.com/yanqian/text-summarizer/internal/domain/textanalysis"
	"github.com/yanqian/text-summarizer/internal/infra/config"
	"github.com/yanqian/text-summarizer/internal/infra/llm/chatgpt"
	"github.com/yanqian/text-summarizer/internal/infra/llm/extractive"
	"github.com/yanqian/text-summarizer/internal/infra/llm/huggingface"
	"github.com/yanqian/text-summarizer/internal/infra/summarycache"
	"github.com/yanqian/text-summarizer/internal/infra/tokenizer"
	"github.com/yanqian/text-summarizer/pkg/metrics"
	"github.com/yanqian/text-summarizer/pkg/tracing"
)

func provideSummarizerConfig(cfg *config.Config) summarizer.Config {
	d := cfg.Summarizer.Defaults
	return summarizer.Config{
		DefaultParams: summarizer.GenerationParameters{
			MaxLength: d.MaxLength,
			MinLength: d.MinLength,
			NumBeams:  d.NumBeams,
			DoSample:  d.DoSample,
		},
		MaxNumBeams:      cfg.Summarizer.MaxNumBeams,
		Workers:          cfg.Summarizer.Workers,
		OverlapSentences: cfg.Summarizer.OverlapSentences,
		MaxDepth:         cfg.Summarizer.MaxDepth,
		ChunkTokenBudget: cfg.Summarizer.ChunkTokenBudget,
		CacheTTL:         cfg.Cache.TTL,
	}
}

func provideAuthConfig(cfg *config.Config) auth.Config {
	return auth.Config{
		Secret:   cfg.HTTP.Auth.Secret,
		Issuer:   cfg.HTTP.Auth.Issuer,
		TokenTTL: cfg.HTTP.Auth.TokenTTL,
	}
}

func provideMetricsRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return registry
}

func provideMetricsCollector(registry *prometheus.Registry) *metrics.Collector {
	return metrics.NewCollector(registry)
}

func provideTracing() (tracing.Shutdown, error) {
	return tracing.Init(context.Background())
}

func provideAnalyzer() *textanalysis.Analyzer {
	return textanalysis.NewAnalyzer()
}

func provideTokenEstimator(cfg *config.Config, logger *slog.Logger) (summarizer.TokenEstimator, error) {
	return tokenizer.New(tokenizer.Config{Kind: cfg.Tokenizer.Kind, Encoding: cfg.Tokenizer.Encoding}, logger)
}

func provideCatalog(cfg *config.Config) []summarizer.ModelSpec {
	catalog := make([]summarizer.ModelSpec, 0, len(cfg.Inference.Models))
	for _, m := range cfg.Inference.Models {
		catalog = append(catalog, summarizer.ModelSpec{ID: m.ID, MaxInputTokens: m.MaxInputTokens})
	}
	return catalog
}

func provideBackend(cfg *config.Config, catalog []summarizer.ModelSpec, analyzer *textanalysis.Analyzer, logger *slog.Logger) (summarizer.Backend, error) {
	switch cfg.Inference.Backend {
	case config.BackendChatGPT:
		client, err := chatgpt.NewClient(cfg.Inference.OpenAI.APIKey, cfg.Inference.OpenAI.BaseURL, cfg.Inference.OpenAI.Timeout)
		if err != nil {
			return nil, err
		}
		return chatgpt.NewBackend(client, catalog), nil
	case config.BackendExtractive:
		return extractive.NewBackend(analyzer, catalog), nil
	default:
		hf := cfg.Inference.HuggingFace
		client := huggingface.NewClient(huggingface.Config{
			BaseURL: hf.BaseURL,
			Token:   hf.Token,
			Timeout: hf.Timeout,
			Breaker: huggingface.BreakerConfig{
				MaxRequests:  hf.Breaker.MaxRequests,
				Interval:     hf.Breaker.Interval,
				OpenTimeout:  hf.Breaker.OpenTimeout,
				MinRequests:  hf.Breaker.MinRequests,
				FailureRatio: hf.Breaker.FailureRatio,
			},
		}, logger.With("component", "huggingface.client"))
		return huggingface.NewBackend(client, catalog), nil
	}
}

func provideRegistry(cfg *config.Config, backend summarizer.Backend, collector *metrics.Collector, logger *slog.Logger) (*summarizer.Registry, func(), error) {
	ctx := context.Background()
	if cfg.Inference.LoadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Inference.LoadTimeout)
		defer cancel()
	}
	registry, err := summarizer.NewRegistry(ctx, backend, cfg.Inference.DefaultModel, collector, logger)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := registry.Close(); err != nil {
			logger.Warn("closing model registry failed", "error", err)
		}
	}
	return registry, cleanup, nil
}

func provideChunker(cfg *config.Config, analyzer *textanalysis.Analyzer, estimator summarizer.TokenEstimator) *summarizer.Chunker {
	return summarizer.NewChunker(analyzer.Segmenter(), estimator, cfg.Summarizer.OverlapSentences)
}

func provideOrchestrator(cfg *config.Config, chunker *summarizer.Chunker, estimator summarizer.TokenEstimator, logger *slog.Logger) *summarizer.Orchestrator {
	return summarizer.NewOrchestrator(chunker, estimator, cfg.Summarizer.Workers, cfg.Summarizer.MaxDepth, logger)
}

func provideCache(cfg *config.Config, logger *slog.Logger) (summarizer.Cache, func()) {
	noop := func() {}
	if !cfg.Cache.Enabled {
		logger.Info("chunk cache disabled")
		return nil, noop
	}
	if cfg.Cache.Valkey.Enabled {
		opt, err := buildValkeyOptions(cfg)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory cache", "error", err)
			return summarycache.NewMemoryCache(cfg.Cache.MaxEntries), noop
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory cache", "error", err)
			return summarycache.NewMemoryCache(cfg.Cache.MaxEntries), noop
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to memory cache", "error", err)
			client.Close()
		} else {
			logger.Info("valkey chunk cache enabled", "addr", cfg.Cache.Valkey.Addr)
			return summarycache.NewValkeyCache(client, cfg.Cache.Valkey.Prefix), client.Close
		}
	}
	return summarycache.NewMemoryCache(cfg.Cache.MaxEntries), noop
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	var (
		opt valkey.ClientOption
		err error
	)
	if strings.Contains(cfg.Cache.Valkey.Addr, "://") {
		opt, err = valkey.ParseURL(cfg.Cache.Valkey.Addr)
	} else {
		opt = valkey.ClientOption{InitAddress: []string{cfg.Cache.Valkey.Addr}}
	}
	if err != nil {
		return valkey.ClientOption{}, err
	}
	return opt, nil
}
