package hyzhttp

import (
	"context"
	"time"

	internalbackoff "github.com/zenghongyao/hyzhttp/internal/backoff"
)

// retryRunner re-invokes an operation on qualifying failures, bounded by
// MaxAttempts. Circuit-open rejections, cancellations and argument errors
// propagate immediately; the last retryable error propagates unchanged once
// attempts are exhausted.
type retryRunner struct {
	config RetryConfig
	calc   *internalbackoff.Calculator
}

func newRetryRunner(config RetryConfig) *retryRunner {
	if config.MaxAttempts < 0 {
		config.MaxAttempts = 0
	}
	if config.InitialDelay < 0 {
		config.InitialDelay = 0
	}
	return &retryRunner{
		config: config,
		calc:   internalbackoff.NewCalculator(strategyFor(config.Backoff)),
	}
}

func strategyFor(kind BackoffKind) internalbackoff.Strategy {
	switch kind {
	case BackoffConstant:
		return internalbackoff.ConstantStrategy{}
	case BackoffLinear:
		return internalbackoff.LinearStrategy{}
	case BackoffExponential:
		return internalbackoff.ExponentialStrategy{}
	default:
		return internalbackoff.ExponentialStrategy{}
	}
}

// Run executes op, retrying per the configuration. The delay sleep is
// cooperative: it wakes immediately when ctx is cancelled and the call then
// surfaces a Cancelled error instead of retrying.
func (r *retryRunner) Run(ctx context.Context, op func(context.Context) error) error {
	attempt := 0
	for {
		err := op(ctx)
		if err == nil {
			return nil
		}
		if attempt >= r.config.MaxAttempts || !IsRetryable(err) {
			return err
		}

		attempt++
		delay := r.calc.Calculate(attempt, r.config.InitialDelay)
		if r.config.OnRetry != nil {
			r.config.OnRetry(attempt, delay, err)
		}
		if sleepErr := sleepContext(ctx, delay); sleepErr != nil {
			return sleepErr
		}
	}
}

// sleepContext waits for d or until ctx is done, whichever comes first.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		select {
		case <-ctx.Done():
			return cancelledError(ctx)
		default:
			return nil
		}
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return cancelledError(ctx)
	case <-timer.C:
		return nil
	}
}

func cancelledError(ctx context.Context) *ClientError {
	return &ClientError{
		Type:      ErrorTypeCancelled,
		Message:   "request cancelled during retry delay",
		Cause:     ctx.Err(),
		Timestamp: time.Now(),
	}
}
