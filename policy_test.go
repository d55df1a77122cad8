package hyzhttp

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicyStoreDefaults(t *testing.T) {
	store := NewPolicyStore()

	retry := store.RetryConfig()
	assert.Equal(t, 3, retry.MaxAttempts)
	assert.Equal(t, BackoffExponential, retry.Backoff)
	assert.Equal(t, 100*time.Millisecond, retry.InitialDelay)
}

func TestPolicyStorePipelineCached(t *testing.T) {
	store := NewPolicyStore()

	first := store.Pipeline()
	require.NotNil(t, first)
	assert.Same(t, first, store.Pipeline(), "pipeline must be cached between calls")
}

func TestPolicyStoreConfigureRetryInvalidates(t *testing.T) {
	store := NewPolicyStore()
	old := store.Pipeline()

	store.ConfigureRetry(RetryConfig{MaxAttempts: 1, Backoff: BackoffConstant, InitialDelay: time.Millisecond})
	fresh := store.Pipeline()

	assert.NotSame(t, old, fresh, "configuration write must invalidate the cached pipeline")
	assert.Equal(t, 1, store.RetryConfig().MaxAttempts)
}

func TestPolicyStoreConfigureBreakerResetsState(t *testing.T) {
	store := NewPolicyStore()
	store.ConfigureCircuitBreaker(CircuitBreakerConfig{FailureRatio: 1.0, MinimumThroughput: 1})

	pipeline := store.Pipeline()
	generation, err := pipeline.Breaker().Allow()
	require.NoError(t, err)
	pipeline.Breaker().Record(generation, transportErr())
	require.Equal(t, StateOpen, pipeline.Breaker().State())

	// Reconfiguring builds a fresh breaker in the closed state.
	store.ConfigureCircuitBreaker(CircuitBreakerConfig{FailureRatio: 0.5, MinimumThroughput: 2})
	rebuilt := store.Pipeline()
	assert.NotSame(t, pipeline, rebuilt)
	assert.Equal(t, StateClosed, rebuilt.Breaker().State())
	successes, failures := rebuilt.Breaker().Counts()
	assert.Zero(t, successes)
	assert.Zero(t, failures)
}

func TestPolicyStoreRebuildOnce(t *testing.T) {
	store := NewPolicyStore()
	store.ConfigureRetry(RetryConfig{MaxAttempts: 0})

	const callers = 32
	var wg sync.WaitGroup
	pipelines := make([]*Pipeline, callers)
	start := make(chan struct{})
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			pipelines[i] = store.Pipeline()
		}(i)
	}
	close(start)
	wg.Wait()

	for i := 1; i < callers; i++ {
		assert.Same(t, pipelines[0], pipelines[i], "all concurrent callers must observe the same instance")
	}
}

func TestPolicyStoreConcurrentReconfigure(t *testing.T) {
	store := NewPolicyStore()
	store.ConfigureRetry(RetryConfig{MaxAttempts: 1, Backoff: BackoffConstant})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if i%2 == 0 {
					store.ConfigureRetry(RetryConfig{MaxAttempts: j % 3, Backoff: BackoffLinear})
				} else {
					_ = store.Pipeline().Execute(context.Background(), func(context.Context) error {
						return nil
					})
				}
			}
		}(i)
	}
	wg.Wait()

	// Whatever interleaving happened, the store must end up with a usable
	// pipeline consistent with some applied configuration.
	require.NotNil(t, store.Pipeline())
	assert.NoError(t, store.Pipeline().Execute(context.Background(), func(context.Context) error {
		return nil
	}))
}

func TestPipelineComposesRetryAroundBreaker(t *testing.T) {
	store := NewPolicyStore()
	store.ConfigureRetry(RetryConfig{MaxAttempts: 5, Backoff: BackoffConstant, InitialDelay: time.Millisecond})
	store.ConfigureCircuitBreaker(CircuitBreakerConfig{
		FailureRatio:      1.0,
		MinimumThroughput: 2,
		BreakDuration:     time.Minute,
	})

	pipeline := store.Pipeline()
	calls := 0
	err := pipeline.Execute(context.Background(), func(context.Context) error {
		calls++
		return transportErr()
	})

	// Two failures trip the breaker; the remaining retries are rejected
	// without reaching the operation, and the rejection ends the sequence.
	require.Error(t, err)
	assert.True(t, IsCircuitOpen(err))
	assert.Equal(t, 2, calls)
	assert.Equal(t, StateOpen, pipeline.Breaker().State())
}
