package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"go.uber.org/zap"

	"github.com/autou/mail-triage/internal/utils"
)

// TriageService orchestrates classification: validation, cache lookup,
// then the strategy chain. For valid input a result is always returned,
// whichever link of the chain produced it.
type TriageService struct {
	extractor    *FeatureExtractor
	strategies   []Strategy
	metrics      *MetricsAggregator
	cache        CacheRepository
	cacheEnabled bool
	cacheTTL     time.Duration
	limits       Limits
	logger       *zap.Logger
}

// NewTriageService creates the orchestrator. Strategies are tried in
// order; the last one is expected to always succeed.
func NewTriageService(
	extractor *FeatureExtractor,
	strategies []Strategy,
	metrics *MetricsAggregator,
	cache CacheRepository,
	cacheEnabled bool,
	cacheTTL time.Duration,
	limits Limits,
	logger *zap.Logger,
) *TriageService {
	return &TriageService{
		extractor:    extractor,
		strategies:   strategies,
		metrics:      metrics,
		cache:        cache,
		cacheEnabled: cacheEnabled,
		cacheTTL:     cacheTTL,
		limits:       limits,
		logger:       logger,
	}
}

// ClassifyEmail validates the input and runs it through the strategy
// chain. The only error it returns is a validation error; provider
// failures degrade to the rules path instead of surfacing.
func (s *TriageService) ClassifyEmail(ctx context.Context, input *EmailInput) (*ClassificationResult, error) {
	start := time.Now()

	if err := ValidateInput(input, s.limits); err != nil {
		return nil, err
	}

	key := contentKey(input.Content)
	if s.cacheEnabled && s.cache != nil {
		if cached, found := s.cache.Get(key); found {
			s.logger.Debug("Cache hit", zap.String("key", key))
			result := *cached
			result.ProcessingTime = time.Since(start).Seconds()
			result.Timestamp = time.Now().UTC()
			s.metrics.Record(&result)
			return &result, nil
		}
	}

	features := s.extractor.Extract(input.Content)

	var result *ClassificationResult
	for _, strategy := range s.strategies {
		if r, ok := strategy.Attempt(ctx, input, features); ok {
			s.logger.Debug("Classification strategy succeeded",
				zap.String("strategy", strategy.Name()),
				zap.String("category", string(r.Category)))
			result = r
			break
		}
	}
	if result == nil {
		// The rules strategy never refuses, so this is a wiring bug.
		s.logger.Error("No classification strategy produced a result")
		result = &ClassificationResult{
			Category:   CategoryUnproductive,
			Confidence: 0.5,
			ModelUsed:  ModelRules,
		}
	}

	result.ProcessingTime = time.Since(start).Seconds()
	result.Timestamp = time.Now().UTC()

	s.metrics.Record(result)

	if s.cacheEnabled && s.cache != nil {
		s.cache.Set(key, result, s.cacheTTL)
	}

	return result, nil
}

// Metrics returns a snapshot of the aggregate counters
func (s *TriageService) Metrics() MetricsSnapshot {
	return s.metrics.Snapshot()
}

// ResetMetrics zeroes the aggregate counters
func (s *TriageService) ResetMetrics() {
	s.metrics.Reset()
}

// contentKey derives a stable cache key from the folded content, so
// trivial casing or accent differences hit the same entry.
func contentKey(content string) string {
	sum := sha256.Sum256([]byte(utils.Fold(content)))
	return hex.EncodeToString(sum[:])
}
