package hyzhttp

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Pipeline is the composed callable applied around a wire call: the outer
// layer is the retry sequencer, the inner layer the circuit breaker guard.
// A pipeline owns exactly one CircuitBreaker whose lifetime matches its own.
type Pipeline struct {
	retry   *retryRunner
	breaker *CircuitBreaker
}

// Execute runs op through retry and circuit breaker.
func (p *Pipeline) Execute(ctx context.Context, op func(context.Context) error) error {
	return p.retry.Run(ctx, func(ctx context.Context) error {
		return p.breaker.Do(ctx, op)
	})
}

// Breaker exposes the pipeline's circuit breaker for inspection.
func (p *Pipeline) Breaker() *CircuitBreaker {
	return p.breaker
}

// PolicyStore owns the current retry and circuit breaker configuration and
// the pipeline built from them. The pipeline is built lazily on first use and
// cached until a configuration write invalidates it; rebuilding discards the
// previous breaker state, resetting the circuit to closed.
//
// The store is an explicit dependency: construct one per composition root and
// share it between clients that should share a breaker.
type PolicyStore struct {
	mu       sync.Mutex
	retry    RetryConfig
	breaker  CircuitBreakerConfig
	pipeline atomic.Pointer[Pipeline]
}

// NewPolicyStore creates a store with default retry (3 attempts, exponential
// backoff from 100ms) and default circuit breaker configuration.
func NewPolicyStore() *PolicyStore {
	return &PolicyStore{
		retry: RetryConfig{
			MaxAttempts:  3,
			Backoff:      BackoffExponential,
			InitialDelay: 100 * time.Millisecond,
		},
	}
}

// ConfigureRetry replaces the retry configuration and invalidates the cached
// pipeline. In-flight requests finish against the pipeline they started with.
func (s *PolicyStore) ConfigureRetry(config RetryConfig) {
	s.mu.Lock()
	s.retry = config
	s.pipeline.Store(nil)
	s.mu.Unlock()
}

// ConfigureCircuitBreaker replaces the breaker configuration and invalidates
// the cached pipeline. The change is not hot-applied to a live breaker; the
// next request builds a fresh breaker in the closed state.
func (s *PolicyStore) ConfigureCircuitBreaker(config CircuitBreakerConfig) {
	s.mu.Lock()
	s.breaker = config
	s.pipeline.Store(nil)
	s.mu.Unlock()
}

// RetryConfig returns the current retry configuration.
func (s *PolicyStore) RetryConfig() RetryConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.retry
}

// CircuitBreakerConfig returns the current breaker configuration.
func (s *PolicyStore) CircuitBreakerConfig() CircuitBreakerConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.breaker
}

// Pipeline returns the cached pipeline, building it under the lock when a
// configuration write has invalidated it. Readers of a published pipeline
// take no lock; concurrent callers during a rebuild all observe the same
// fresh instance.
func (s *PolicyStore) Pipeline() *Pipeline {
	if p := s.pipeline.Load(); p != nil {
		return p
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if p := s.pipeline.Load(); p != nil {
		return p
	}
	p := &Pipeline{
		retry:   newRetryRunner(s.retry),
		breaker: NewCircuitBreaker(s.breaker),
	}
	s.pipeline.Store(p)
	return p
}
