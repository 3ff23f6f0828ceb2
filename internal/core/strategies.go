package core

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Limiter bounds the rate of outbound LLM calls
type Limiter interface {
	Wait(ctx context.Context) error
}

// ExternalLLMStrategy is the preferred link of the fallback chain. It is
// skipped when no client is configured or the request opted out; any
// provider failure is absorbed and reported as "no result" so the chain
// falls through to the local path.
type ExternalLLMStrategy struct {
	client  LLMClient
	limiter Limiter
	timeout time.Duration
	logger  *zap.Logger
}

// NewExternalLLMStrategy creates the external link. A nil client means
// the external path is permanently unavailable.
func NewExternalLLMStrategy(client LLMClient, limiter Limiter, timeout time.Duration, logger *zap.Logger) *ExternalLLMStrategy {
	return &ExternalLLMStrategy{
		client:  client,
		limiter: limiter,
		timeout: timeout,
		logger:  logger,
	}
}

// Name identifies the strategy in logs
func (s *ExternalLLMStrategy) Name() string {
	return "external_llm"
}

// Attempt calls the external LLM under a deadline. The context chains
// from the request, so a client disconnect cancels the outbound call.
func (s *ExternalLLMStrategy) Attempt(ctx context.Context, input *EmailInput, _ FeatureVector) (*ClassificationResult, bool) {
	if s.client == nil || input.LLMDisabled() {
		return nil, false
	}

	callCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(callCtx); err != nil {
			s.logger.Warn("LLM rate limiter rejected call, falling back",
				zap.String("model", s.client.ModelName()),
				zap.Error(err))
			return nil, false
		}
	}

	result, err := s.client.ClassifyEmail(callCtx, input)
	if err != nil {
		s.logger.Warn("External LLM unavailable, falling back to local classification",
			zap.String("model", s.client.ModelName()),
			zap.Error(err))
		return nil, false
	}

	result.Confidence = clip01(result.Confidence)
	result.ModelUsed = ModelExternalLLM
	return result, true
}

// RulesStrategy is the terminal link: local sentiment model (when loaded)
// plus the weighted keyword scorer. It always produces a result.
type RulesStrategy struct {
	localModel LocalModel
	blend      bool
	scorer     *Scorer
	responder  *ResponseGenerator
	logger     *zap.Logger
}

// NewRulesStrategy creates the rules link of the chain
func NewRulesStrategy(localModel LocalModel, blend bool, scorer *Scorer, responder *ResponseGenerator, logger *zap.Logger) *RulesStrategy {
	return &RulesStrategy{
		localModel: localModel,
		blend:      blend,
		scorer:     scorer,
		responder:  responder,
		logger:     logger,
	}
}

// Name identifies the strategy in logs
func (s *RulesStrategy) Name() string {
	return "rules"
}

// Attempt scores the feature vector. The local model, when available,
// refines the sentiment signal before scoring; it augments the rule
// score rather than replacing it.
func (s *RulesStrategy) Attempt(_ context.Context, input *EmailInput, features FeatureVector) (*ClassificationResult, bool) {
	modelUsed := ModelRules
	if s.localModel != nil && s.localModel.Available() {
		if polarity, ok := s.localModel.Polarity(input.Content); ok {
			if s.blend {
				features.Sentiment = clip01((features.Sentiment + polarity) / 2)
			} else {
				features.Sentiment = clip01(polarity)
			}
			modelUsed = ModelLocalAI
		}
	}

	category, confidence := s.scorer.Classify(features)
	response := s.responder.Generate(category, features, input.Content)

	return &ClassificationResult{
		Category:          category,
		Confidence:        confidence,
		SuggestedResponse: response,
		ModelUsed:         modelUsed,
	}, true
}
