package limiter

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/olusolaa/cfn-diff-reporter/internal/core/ports"
)

const (
	DefaultRPS = 20
	MinRPS     = 1
	MaxRPS     = 100
)

// Limiter throttles every AWS API call of a run. One instance is shared by
// all adapters.
type Limiter struct {
	limiter *rate.Limiter
	rps     int
}

// New clamps rps to the supported range. Zero selects the default silently.
func New(rps int, logger ports.Logger) *Limiter {
	limitValue := DefaultRPS
	switch {
	case rps >= MinRPS && rps <= MaxRPS:
		limitValue = rps
	case rps != 0:
		logger.Warnf(context.Background(), "Invalid AWS API RPS configured (%d), using default %d RPS. Valid range: %d-%d.", rps, DefaultRPS, MinRPS, MaxRPS)
	}
	logger.Debugf(context.Background(), "Initializing AWS API rate limiter: %d RPS", limitValue)
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(limitValue), limitValue),
		rps:     limitValue,
	}
}

func (l *Limiter) RPS() int {
	return l.rps
}

func (l *Limiter) Wait(ctx context.Context, logger ports.Logger) error {
	if err := l.limiter.Wait(ctx); err != nil {
		if ctx.Err() == nil {
			logger.Warnf(ctx, "Error waiting for AWS API rate limiter: %v", err)
		}
		return err
	}
	return nil
}
