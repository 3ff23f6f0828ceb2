package localmodel

import (
	"github.com/cdipaolo/sentiment"
	"go.uber.org/zap"
)

// SentimentModel wraps the bundled naive-bayes sentiment model. Loading
// can fail (the model restores itself from packed data); a failed load
// leaves the adapter in place but permanently unavailable, and the
// classification chain carries on with the lexicon signal alone.
type SentimentModel struct {
	models sentiment.Models
	loaded bool
	logger *zap.Logger
}

// New restores the sentiment model. It never returns an error; load
// failures are logged and surface through Available.
func New(logger *zap.Logger) *SentimentModel {
	models, err := sentiment.Restore()
	if err != nil {
		logger.Warn("Local sentiment model failed to load, continuing without it", zap.Error(err))
		return &SentimentModel{logger: logger}
	}

	logger.Info("Local sentiment model loaded")
	return &SentimentModel{
		models: models,
		loaded: true,
		logger: logger,
	}
}

// Available reports whether the model loaded successfully
func (m *SentimentModel) Available() bool {
	return m.loaded
}

// Polarity scores the text, mapped to [0,1]. The underlying model emits
// a binary class, so the score lands on an endpoint.
func (m *SentimentModel) Polarity(text string) (float64, bool) {
	if !m.loaded || text == "" {
		return 0, false
	}

	analysis := m.models.SentimentAnalysis(text, sentiment.English)
	return float64(analysis.Score), true
}
