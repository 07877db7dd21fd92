//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/text-summarizer/internal/bootstrap"
	"github.com/yanqian/text-summarizer/internal/domain/auth"
	"github.com/yanqian/text-summarizer/internal/domain/summarizer"
	"github.com/yanqian/text-summarizer/internal/infra/config"
	httpiface "github.com/yanqian/text-summarizer/internal/interface/http"
	"github.com/yanqian/text-summarizer/pkg/logger"
)

func initializeApp() (*bootstrap.App, func(), error) {
	wire.Build(
		config.Load,
		logger.New,
		provideTracing,
		provideMetricsRegistry,
		provideMetricsCollector,
		provideSummarizerConfig,
		provideAuthConfig,
		provideAnalyzer,
		provideTokenEstimator,
		provideCatalog,
		provideBackend,
		provideRegistry,
		provideChunker,
		provideOrchestrator,
		provideCache,
		summarizer.NewService,
		auth.NewService,
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil, nil
}
