// Package backoff provides the delay schedules used between retry attempts.
package backoff

import "time"

// Strategy defines the interface for backoff calculation algorithms.
type Strategy interface {
	// Calculate returns the delay before retry number attempt (1-based),
	// seeded by initialDelay.
	Calculate(attempt int, initialDelay time.Duration) time.Duration
}

// ConstantStrategy waits initialDelay before every retry.
type ConstantStrategy struct{}

// Calculate implements the Strategy interface.
func (ConstantStrategy) Calculate(attempt int, initialDelay time.Duration) time.Duration {
	if initialDelay < 0 {
		return 0
	}
	return initialDelay
}

// LinearStrategy grows the delay linearly: initialDelay * attempt.
type LinearStrategy struct{}

// Calculate implements the Strategy interface.
func (LinearStrategy) Calculate(attempt int, initialDelay time.Duration) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if initialDelay < 0 {
		return 0
	}
	return initialDelay * time.Duration(attempt)
}

// ExponentialStrategy doubles the delay each retry: initialDelay * 2^(attempt-1).
type ExponentialStrategy struct{}

// Calculate implements the Strategy interface.
func (ExponentialStrategy) Calculate(attempt int, initialDelay time.Duration) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if initialDelay < 0 {
		return 0
	}

	// Cap the shift so the multiplication cannot overflow a Duration.
	shift := attempt - 1
	if shift > 30 {
		shift = 30
	}
	return initialDelay * time.Duration(int64(1)<<shift)
}
