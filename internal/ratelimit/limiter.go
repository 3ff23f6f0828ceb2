package ratelimit

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Limiter throttles outbound LLM provider calls
type Limiter struct {
	limiter *rate.Limiter
	logger  *zap.Logger
}

// New creates a limiter.
// rps: requests per second
// burst: maximum burst size
func New(rps, burst int, logger *zap.Logger) *Limiter {
	if rps <= 0 {
		rps = 5
	}
	if burst <= 0 {
		burst = rps
	}

	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		logger:  logger,
	}
}

// Wait blocks until the rate limit allows the operation or the context
// is cancelled
func (l *Limiter) Wait(ctx context.Context) error {
	if err := l.limiter.Wait(ctx); err != nil {
		l.logger.Warn("Rate limiter wait failed", zap.Error(err))
		return err
	}
	return nil
}

// Allow reports whether an operation may proceed without waiting
func (l *Limiter) Allow() bool {
	return l.limiter.Allow()
}
