package hyzhttp

import (
	"errors"
	"fmt"
	"time"
)

// Error type tags carried by ClientError. The retry sequencer and circuit
// breaker branch on these tags instead of matching concrete error types.
const (
	// ErrorTypeInvalidArgument marks a malformed call (nil request, bad URL,
	// unmarshalable body). Fatal, never retried.
	ErrorTypeInvalidArgument = "InvalidArgument"
	// ErrorTypeUnsupportedMethod marks a method outside GET/POST/PUT/DELETE/PATCH.
	// Fatal, never retried.
	ErrorTypeUnsupportedMethod = "UnsupportedMethod"
	// ErrorTypeTransport marks a connection-level failure or a non-2xx status.
	// Retryable and counted by the circuit breaker.
	ErrorTypeTransport = "TransportFailure"
	// ErrorTypeCircuitOpen marks a rejection by an open or half-open-busy
	// breaker. Surfaced immediately, never retried.
	ErrorTypeCircuitOpen = "CircuitOpenRejection"
	// ErrorTypeDeserialization marks a response body that failed to decode.
	// Shares the transport retry path, so it is retryable by default.
	ErrorTypeDeserialization = "DeserializationFailure"
	// ErrorTypeCancelled marks a call abandoned through its context.
	// Propagated immediately, never retried.
	ErrorTypeCancelled = "Cancelled"
)

// ErrCircuitOpen is returned when the circuit breaker sheds a call without a
// transport attempt. ClientErrors of type ErrorTypeCircuitOpen unwrap to it.
var ErrCircuitOpen = errors.New("hyzhttp: circuit open")

// ClientError is the error surfaced by every failed call. Type classifies the
// failure; the remaining fields carry diagnostic context about the request
// that produced it.
type ClientError struct {
	Type       string
	Message    string
	Cause      error
	RequestID  string
	Method     string
	URL        string
	StatusCode int
	Attempt    int
	Timestamp  time.Time
	Duration   time.Duration
}

// Error implements the error interface.
func (e *ClientError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := fmt.Sprintf("%s: %s", e.Type, e.Message)
	if e.Cause != nil {
		msg = fmt.Sprintf("%s (%v)", msg, e.Cause)
	}
	if e.RequestID != "" {
		msg = fmt.Sprintf("[%s] %s", e.RequestID, msg)
	}
	if e.Method != "" && e.URL != "" {
		msg = fmt.Sprintf("%s: %s %s", msg, e.Method, e.URL)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *ClientError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is compares error types for errors.Is.
func (e *ClientError) Is(target error) bool {
	if e == nil {
		return false
	}
	if targetErr, ok := target.(*ClientError); ok {
		return e.Type == targetErr.Type
	}
	return false
}

// IsRetryable reports whether the retry sequencer may re-attempt after err.
// Only transport and deserialization failures qualify; circuit-open
// rejections are deliberately excluded to avoid retry storms against a
// breaker that is shedding load.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		switch clientErr.Type {
		case ErrorTypeTransport, ErrorTypeDeserialization:
			return true
		default:
			return false
		}
	}
	return false
}

// IsCircuitOpen reports whether err is a circuit breaker rejection.
func IsCircuitOpen(err error) bool {
	if errors.Is(err, ErrCircuitOpen) {
		return true
	}
	var clientErr *ClientError
	return errors.As(err, &clientErr) && clientErr.Type == ErrorTypeCircuitOpen
}

// isCircuitFailure is the breaker's handled-outcome predicate: transport-level
// failures trip the circuit, deserialization failures ride the same path, and
// everything else (cancellation, rejections, argument errors) does not.
func isCircuitFailure(err error) bool {
	if err == nil {
		return false
	}
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrorTypeTransport || clientErr.Type == ErrorTypeDeserialization
	}
	return false
}
