package server

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/kokoroweb/tts-service/internal/config"
)

// RetryPolicy is the pure configuration of the retry applied around one
// text's generation: at most MaxAttempts tries, exponential backoff
// starting at InitialInterval.
type RetryPolicy struct {
	MaxAttempts     uint
	InitialInterval time.Duration
	Multiplier      float64
}

// PolicyFromConfig converts the loaded retry configuration.
func PolicyFromConfig(cfg config.RetryConfig) RetryPolicy {
	return RetryPolicy{
		MaxAttempts:     cfg.MaxAttempts,
		InitialInterval: time.Duration(cfg.InitialIntervalSeconds) * time.Second,
		Multiplier:      cfg.Multiplier,
	}
}

// retryWithPolicy runs operation under the policy, returning the first
// success or the error of the final attempt.
func retryWithPolicy[T any](
	ctx context.Context,
	policy RetryPolicy,
	operation func() (T, error),
) (T, error) {
	exponential := backoff.NewExponentialBackOff()
	exponential.InitialInterval = policy.InitialInterval
	exponential.Multiplier = policy.Multiplier

	return backoff.Retry(
		ctx,
		operation,
		backoff.WithBackOff(exponential),
		backoff.WithMaxTries(policy.MaxAttempts),
	)
}
