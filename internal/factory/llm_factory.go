package factory

import (
	"fmt"

	"github.com/autou/mail-triage/internal/adapters/bedrock"
	"github.com/autou/mail-triage/internal/adapters/gemini"
	"github.com/autou/mail-triage/internal/adapters/openai"
	"github.com/autou/mail-triage/internal/config"
	"github.com/autou/mail-triage/internal/core"
	"go.uber.org/zap"
)

// LLMFactory creates LLM clients
type LLMFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewLLMFactory creates a new LLM factory
func NewLLMFactory(cfg *config.Config, logger *zap.Logger) *LLMFactory {
	return &LLMFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateLLMClient creates an LLM client based on the configuration.
// It returns (nil, nil) when the external LLM is disabled, which the
// classification chain treats as "external path unavailable".
func (f *LLMFactory) CreateLLMClient() (core.LLMClient, error) {
	llmConfig := f.cfg.GetLLM()
	if !llmConfig.Enabled {
		f.logger.Info("External LLM disabled, using local classification only")
		return nil, nil
	}

	switch llmConfig.Provider {
	case "bedrock":
		return bedrock.NewFactory(f.cfg, f.logger).CreateLLMClient()
	case "gemini":
		return gemini.NewFactory(f.cfg, f.logger).CreateLLMClient()
	case "openai":
		return openai.NewFactory(f.cfg, f.logger).CreateLLMClient()
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", llmConfig.Provider)
	}
}
