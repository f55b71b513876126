// Package retry wraps fallible remote calls with bounded, jittered
// exponential backoff.
package retry

import (
	"context"
	"math/rand"
	"time"
)

// Policy describes how one logical remote call is retried. Retriable
// decides whether an error is worth another attempt; a nil Retriable
// retries nothing.
type Policy struct {
	MaxRetries    int
	BaseDelay     time.Duration
	BackoffFactor float64
	Retriable     func(error) bool
}

// jitter multipliers applied to each delay, drawn uniformly.
const (
	jitterLow  = 0.8
	jitterHigh = 1.2
)

// Do invokes op until it succeeds, returns a non-retriable error, or the
// attempt budget of MaxRetries+1 is spent. The delay grows by BackoffFactor
// after every failed attempt and each sleep honors ctx cancellation. The
// last error is returned unchanged.
func Do[T any](ctx context.Context, p Policy, op func(context.Context) (T, error)) (T, error) {
	var zero T

	delay := p.BaseDelay
	for attempt := 0; ; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		if p.Retriable == nil || !p.Retriable(err) {
			return zero, err
		}
		if attempt >= p.MaxRetries {
			return zero, err
		}

		sleep := time.Duration(float64(delay) * (jitterLow + rand.Float64()*(jitterHigh-jitterLow)))
		select {
		case <-time.After(sleep):
		case <-ctx.Done():
			return zero, ctx.Err()
		}
		delay = time.Duration(float64(delay) * p.BackoffFactor)
	}
}
