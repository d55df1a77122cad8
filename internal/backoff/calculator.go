package backoff

import "time"

// Calculator provides backoff calculation using a configurable strategy.
// It centralizes delay computation so the retry sequencer stays free of
// schedule arithmetic.
type Calculator struct {
	strategy Strategy
}

// NewCalculator creates a calculator with the specified strategy.
func NewCalculator(strategy Strategy) *Calculator {
	return &Calculator{strategy: strategy}
}

// Calculate computes the delay before retry number attempt (1-based).
func (c *Calculator) Calculate(attempt int, initialDelay time.Duration) time.Duration {
	return c.strategy.Calculate(attempt, initialDelay)
}

// Strategy returns the strategy backing this calculator.
func (c *Calculator) Strategy() Strategy {
	return c.strategy
}
