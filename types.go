package hyzhttp

import (
	"net/http"
	"time"
)

// BackoffKind selects the delay schedule used between retry attempts.
type BackoffKind int

const (
	// BackoffConstant waits InitialDelay before every retry.
	BackoffConstant BackoffKind = iota
	// BackoffLinear waits InitialDelay * attempt before retry number attempt.
	BackoffLinear
	// BackoffExponential waits InitialDelay * 2^(attempt-1) before retry number attempt.
	BackoffExponential
)

// String returns a human-readable name for the backoff kind.
func (k BackoffKind) String() string {
	switch k {
	case BackoffConstant:
		return "constant"
	case BackoffLinear:
		return "linear"
	case BackoffExponential:
		return "exponential"
	default:
		return "unknown"
	}
}

// RetryConfig holds retry behavior for the pipeline. It is immutable once a
// pipeline has been built from it; changing retry behavior goes through
// Client.ConfigureRetry, which invalidates the cached pipeline.
type RetryConfig struct {
	// MaxAttempts is the number of retries after the initial attempt.
	// A permanently failing retryable call executes MaxAttempts+1 times.
	MaxAttempts int
	// Backoff selects the delay schedule.
	Backoff BackoffKind
	// InitialDelay seeds the schedule.
	InitialDelay time.Duration
	// OnRetry, if set, fires synchronously before each retry sleep.
	OnRetry func(attempt int, delay time.Duration, err error)
}

// CircuitBreakerConfig holds circuit breaker configuration. Zero values are
// replaced with defaults by NewCircuitBreaker.
type CircuitBreakerConfig struct {
	// FailureRatio in (0, 1]: the failure share at which the circuit opens.
	FailureRatio float64
	// SamplingWindow is the rolling window over which outcomes are counted.
	SamplingWindow time.Duration
	// MinimumThroughput is the number of recorded outcomes required in the
	// window before the ratio is evaluated at all. Always >= 1.
	MinimumThroughput int
	// BreakDuration is how long the circuit stays open before admitting a
	// half-open trial call.
	BreakDuration time.Duration

	// Optional transition callbacks, invoked synchronously from the goroutine
	// that triggered the transition. Keep them fast.
	OnOpen     func()
	OnClose    func()
	OnHalfOpen func()
}

// CircuitState represents the phase of a circuit breaker.
type CircuitState int

const (
	StateClosed CircuitState = iota
	StateOpen
	StateHalfOpen
)

// String returns a human-readable name for the circuit state.
func (s CircuitState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ClientFactory selects the pooled transport used for a call. Implementations
// must return reusable clients; this library performs no pooling of its own.
type ClientFactory interface {
	CreateClient(name string) *http.Client
}

// Middleware wraps the transport inside the wire call. Middleware runs on
// every attempt, inside retry and circuit breaker.
type Middleware func(req *http.Request, next RoundTripper) (*http.Response, error)

// RoundTripper is the transport interface middleware chains terminate in.
type RoundTripper interface {
	RoundTrip(*http.Request) (*http.Response, error)
}

// RoundTripperFunc adapts a function to RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// Option represents a Client configuration option.
type Option func(*Client)

// CallOption adjusts a single Execute call.
type CallOption func(*callSettings)

type callSettings struct {
	clientName   string
	retryEnabled bool
	decodeInto   any
}

func defaultCallSettings() callSettings {
	return callSettings{retryEnabled: true}
}

// WithClientName selects a named transport from the client factory for this
// call. The empty name selects the factory default.
func WithClientName(name string) CallOption {
	return func(s *callSettings) {
		s.clientName = name
	}
}

// WithoutRetry executes the wire call directly, bypassing both retry and
// circuit breaker. The breaker's window is left untouched.
func WithoutRetry() CallOption {
	return func(s *callSettings) {
		s.retryEnabled = false
	}
}

func withDecodeTarget(v any) CallOption {
	return func(s *callSettings) {
		s.decodeInto = v
	}
}
