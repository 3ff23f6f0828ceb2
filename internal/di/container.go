package di

import (
	"time"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/autou/mail-triage/internal/adapters/extract"
	"github.com/autou/mail-triage/internal/adapters/httpserver"
	"github.com/autou/mail-triage/internal/adapters/localmodel"
	"github.com/autou/mail-triage/internal/adapters/smtpingest"
	"github.com/autou/mail-triage/internal/config"
	"github.com/autou/mail-triage/internal/core"
	"github.com/autou/mail-triage/internal/factory"
	"github.com/autou/mail-triage/internal/logging"
	"github.com/autou/mail-triage/internal/ratelimit"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewLLMFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewCacheFactory); err != nil {
		return nil, err
	}

	// Register LLM client
	if err := container.Provide(func(f *factory.LLMFactory) (core.LLMClient, error) {
		return f.CreateLLMClient()
	}); err != nil {
		return nil, err
	}

	// Register local sentiment model
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) core.LocalModel {
		if !cfg.GetLocalModel().Enabled {
			logger.Info("Local sentiment model disabled")
			return nil
		}
		return localmodel.New(logger)
	}); err != nil {
		return nil, err
	}

	// Register cache repository
	if err := container.Provide(func(f *factory.CacheFactory) (core.CacheRepository, error) {
		if !f.IsCacheEnabled() {
			return nil, nil
		}
		return f.CreateCacheRepository()
	}); err != nil {
		return nil, err
	}

	// Register core components
	if err := container.Provide(core.NewFeatureExtractor); err != nil {
		return nil, err
	}
	if err := container.Provide(core.NewResponseGenerator); err != nil {
		return nil, err
	}
	if err := container.Provide(core.NewMetricsAggregator); err != nil {
		return nil, err
	}
	if err := container.Provide(func(cfg *config.Config) *core.Scorer {
		classifierCfg := cfg.GetClassifier()
		weights := core.ScorerWeights{
			BusinessRelevance: classifierCfg.BusinessWeight,
			Urgency:           classifierCfg.UrgencyWeight,
			ActionRequest:     classifierCfg.ActionWeight,
			Sentiment:         classifierCfg.SentimentWeight,
		}
		return core.NewScorer(weights, classifierCfg.Threshold)
	}); err != nil {
		return nil, err
	}

	// Register the strategy chain
	if err := container.Provide(func(
		cfg *config.Config,
		llmClient core.LLMClient,
		localModel core.LocalModel,
		scorer *core.Scorer,
		responder *core.ResponseGenerator,
		logger *zap.Logger,
	) []core.Strategy {
		llmCfg := cfg.GetLLM()
		limiter := ratelimit.New(int(llmCfg.RequestsPerSecond), llmCfg.Burst, logger)

		return []core.Strategy{
			core.NewExternalLLMStrategy(llmClient, limiter, llmCfg.Timeout, logger),
			core.NewRulesStrategy(localModel, cfg.GetLocalModel().Blend, scorer, responder, logger),
		}
	}); err != nil {
		return nil, err
	}

	// Register triage service
	if err := container.Provide(func(
		cfg *config.Config,
		extractor *core.FeatureExtractor,
		strategies []core.Strategy,
		metrics *core.MetricsAggregator,
		cacheRepo core.CacheRepository,
		cacheFactory *factory.CacheFactory,
		logger *zap.Logger,
	) (*core.TriageService, error) {
		limitsCfg := cfg.GetLimits()
		limits := core.Limits{
			MinContentLength: limitsCfg.MinContentLength,
			MaxContentLength: limitsCfg.MaxContentLength,
		}

		var cacheTTL time.Duration
		if cacheFactory.IsCacheEnabled() {
			ttl, err := cacheFactory.GetCacheTTL()
			if err != nil {
				return nil, err
			}
			cacheTTL = ttl
		}

		return core.NewTriageService(
			extractor,
			strategies,
			metrics,
			cacheRepo,
			cacheFactory.IsCacheEnabled(),
			cacheTTL,
			limits,
			logger,
		), nil
	}); err != nil {
		return nil, err
	}

	// Register file text extractor
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) *extract.Extractor {
		limitsCfg := cfg.GetLimits()
		return extract.New(limitsCfg.MaxFileSize, limitsCfg.AllowedFileExtensions, logger)
	}); err != nil {
		return nil, err
	}

	// Register HTTP handlers and server
	if err := container.Provide(func(
		cfg *config.Config,
		service *core.TriageService,
		extractor *extract.Extractor,
		localModel core.LocalModel,
		logger *zap.Logger,
	) *httpserver.Handlers {
		serverCfg := cfg.GetServer()
		return httpserver.NewHandlers(
			service,
			extractor,
			localModel,
			cfg.GetString("app.name"),
			cfg.GetString("app.version"),
			serverCfg.MaxBatchSize,
			serverCfg.MaxConcurrent,
			logger,
		)
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(
		cfg *config.Config,
		handlers *httpserver.Handlers,
		logger *zap.Logger,
	) *httpserver.Server {
		return httpserver.NewServer(cfg.GetServer(), handlers, logger)
	}); err != nil {
		return nil, err
	}

	// Register the server set: HTTP always, SMTP ingest when enabled
	if err := container.Provide(func(
		cfg *config.Config,
		httpSrv *httpserver.Server,
		service *core.TriageService,
		logger *zap.Logger,
	) []core.Server {
		servers := []core.Server{httpSrv}
		smtpCfg := cfg.GetSMTP()
		if smtpCfg.Enabled {
			servers = append(servers, smtpingest.New(service, smtpCfg, logger))
		}
		return servers
	}); err != nil {
		return nil, err
	}

	return container, nil
}
