package hyzhttp

import (
	"context"
	"sync"
	"time"
)

// CircuitBreaker is a rolling-window failure-ratio breaker. All phase and
// counter updates happen under a single mutex so concurrent callers can never
// observe a lost update or a double transition; transition callbacks fire
// after the lock is released.
//
// Admissions are tagged with a generation that increments on every phase
// transition. Record discards outcomes from an earlier generation, so a slow
// call admitted before a trip cannot resolve a later half-open trial.
type CircuitBreaker struct {
	config CircuitBreakerConfig
	now    func() time.Time

	mu            sync.Mutex
	phase         CircuitState
	generation    uint64
	windowStart   time.Time
	successCount  int
	failureCount  int
	openedAt      time.Time
	trialInFlight bool
}

// NewCircuitBreaker creates a breaker in the closed state. Zero config values
// are replaced with defaults.
func NewCircuitBreaker(config CircuitBreakerConfig) *CircuitBreaker {
	if config.FailureRatio <= 0 || config.FailureRatio > 1 {
		config.FailureRatio = 0.5
	}
	if config.SamplingWindow == 0 {
		config.SamplingWindow = 60 * time.Second
	}
	if config.MinimumThroughput < 1 {
		config.MinimumThroughput = 10
	}
	if config.BreakDuration == 0 {
		config.BreakDuration = 30 * time.Second
	}

	cb := &CircuitBreaker{
		config: config,
		now:    time.Now,
	}
	cb.phase = StateClosed
	cb.windowStart = cb.now()
	return cb
}

// State returns the current phase.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.phase
}

// Counts returns the success and failure counts of the current window.
func (cb *CircuitBreaker) Counts() (successes, failures int) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.successCount, cb.failureCount
}

// Do guards op with the breaker: it either rejects without a transport
// attempt or runs op and records its outcome against the admission it got.
func (cb *CircuitBreaker) Do(ctx context.Context, op func(context.Context) error) error {
	generation, err := cb.Allow()
	if err != nil {
		return err
	}
	err = op(ctx)
	cb.Record(generation, err)
	return err
}

// Allow decides whether a call may proceed and returns the admission
// generation to hand back to Record. It returns ErrCircuitOpen when the
// breaker is open (and the break duration has not elapsed) or when a
// half-open trial is already in flight. The open-to-half-open transition is
// evaluated lazily here; no background timer exists.
func (cb *CircuitBreaker) Allow() (uint64, error) {
	var notify func()

	cb.mu.Lock()
	now := cb.now()
	var err error
	switch cb.phase {
	case StateClosed:
		cb.rollWindow(now)
	case StateOpen:
		if now.Sub(cb.openedAt) >= cb.config.BreakDuration {
			cb.transition(StateHalfOpen)
			cb.trialInFlight = true
			notify = cb.config.OnHalfOpen
		} else {
			err = ErrCircuitOpen
		}
	case StateHalfOpen:
		if cb.trialInFlight {
			err = ErrCircuitOpen
		} else {
			cb.trialInFlight = true
		}
	}
	generation := cb.generation
	cb.mu.Unlock()

	if notify != nil {
		notify()
	}
	return generation, err
}

// Record applies a completed call's outcome. Outcomes from an earlier
// generation are discarded: the phase has changed since that call was
// admitted and it can no longer speak for the current one. Only outcomes
// matching the handled predicate count as failures; cancellations and other
// non-transport errors leave the window untouched. In half-open, a successful
// trial closes the circuit and resets the window, a handled failure re-opens
// it, and an inconclusive outcome frees the trial slot.
func (cb *CircuitBreaker) Record(generation uint64, err error) {
	success := err == nil
	failure := isCircuitFailure(err)
	var notify func()

	cb.mu.Lock()
	if generation != cb.generation {
		cb.mu.Unlock()
		return
	}
	now := cb.now()
	switch cb.phase {
	case StateClosed:
		cb.rollWindow(now)
		switch {
		case failure:
			cb.failureCount++
		case success:
			cb.successCount++
		}
		total := cb.successCount + cb.failureCount
		if total >= cb.config.MinimumThroughput &&
			float64(cb.failureCount)/float64(total) >= cb.config.FailureRatio {
			cb.transition(StateOpen)
			cb.openedAt = now
			notify = cb.config.OnOpen
		}
	case StateHalfOpen:
		cb.trialInFlight = false
		switch {
		case failure:
			cb.transition(StateOpen)
			cb.openedAt = now
			notify = cb.config.OnOpen
		case success:
			cb.transition(StateClosed)
			cb.resetWindow(now)
			notify = cb.config.OnClose
		}
	case StateOpen:
		// A matching generation while open can only be a rejected admission
		// recorded anyway; nothing to count. Calls admitted before the trip
		// carry an older generation and were discarded above.
	}
	cb.mu.Unlock()

	if notify != nil {
		notify()
	}
}

// transition changes the phase and starts a new generation, invalidating the
// outcomes of every call admitted before the change. Caller holds cb.mu.
func (cb *CircuitBreaker) transition(phase CircuitState) {
	cb.phase = phase
	cb.generation++
}

// rollWindow resets the counters when the current window has expired.
// Consecutive windows are independent, not overlapping. Caller holds cb.mu.
func (cb *CircuitBreaker) rollWindow(now time.Time) {
	if now.Sub(cb.windowStart) > cb.config.SamplingWindow {
		cb.resetWindow(now)
	}
}

func (cb *CircuitBreaker) resetWindow(now time.Time) {
	cb.successCount = 0
	cb.failureCount = 0
	cb.windowStart = now
}
