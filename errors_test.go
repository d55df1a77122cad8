package hyzhttp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestClientErrorMessage(t *testing.T) {
	err := &ClientError{
		Type:      ErrorTypeTransport,
		Message:   "server returned status 502",
		RequestID: "req-1",
		Method:    "GET",
		URL:       "/api/users?page=1",
	}

	msg := err.Error()
	for _, want := range []string{ErrorTypeTransport, "server returned status 502", "req-1", "GET", "/api/users?page=1"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Expected error message to contain %q, got %q", want, msg)
		}
	}
}

func TestClientErrorNil(t *testing.T) {
	var err *ClientError
	if err.Error() != "<nil>" {
		t.Errorf("Expected <nil>, got %q", err.Error())
	}
	if err.Unwrap() != nil {
		t.Error("Expected nil Unwrap on nil error")
	}
}

func TestClientErrorUnwrap(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := &ClientError{Type: ErrorTypeTransport, Message: "transport request failed", Cause: cause}

	if !errors.Is(err, cause) {
		t.Error("Expected errors.Is to reach the cause")
	}
}

func TestClientErrorIsMatchesByType(t *testing.T) {
	err := &ClientError{Type: ErrorTypeCircuitOpen, Message: "rejected"}
	target := &ClientError{Type: ErrorTypeCircuitOpen}
	other := &ClientError{Type: ErrorTypeTransport}

	if !errors.Is(err, target) {
		t.Error("Expected same-type ClientErrors to match")
	}
	if errors.Is(err, other) {
		t.Error("Expected different-type ClientErrors not to match")
	}
}

func TestCircuitOpenUnwrapsToSentinel(t *testing.T) {
	err := &ClientError{Type: ErrorTypeCircuitOpen, Message: "rejected", Cause: ErrCircuitOpen}

	if !errors.Is(err, ErrCircuitOpen) {
		t.Error("Expected circuit-open error to unwrap to ErrCircuitOpen")
	}
	if !IsCircuitOpen(err) {
		t.Error("Expected IsCircuitOpen to report true")
	}
	if !IsCircuitOpen(ErrCircuitOpen) {
		t.Error("Expected IsCircuitOpen to accept the bare sentinel")
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		errType string
		want    bool
	}{
		{ErrorTypeTransport, true},
		{ErrorTypeDeserialization, true},
		{ErrorTypeCircuitOpen, false},
		{ErrorTypeCancelled, false},
		{ErrorTypeInvalidArgument, false},
		{ErrorTypeUnsupportedMethod, false},
	}
	for _, tt := range tests {
		t.Run(tt.errType, func(t *testing.T) {
			err := &ClientError{Type: tt.errType}
			if got := IsRetryable(err); got != tt.want {
				t.Errorf("IsRetryable(%s) = %v, want %v", tt.errType, got, tt.want)
			}
		})
	}

	if IsRetryable(nil) {
		t.Error("Expected nil not retryable")
	}
	if IsRetryable(fmt.Errorf("plain error")) {
		t.Error("Expected untagged errors not retryable")
	}
}

func TestIsCircuitFailure(t *testing.T) {
	if !isCircuitFailure(&ClientError{Type: ErrorTypeTransport}) {
		t.Error("Expected transport failures handled by the breaker")
	}
	if !isCircuitFailure(&ClientError{Type: ErrorTypeDeserialization}) {
		t.Error("Expected deserialization failures handled by the breaker")
	}
	if isCircuitFailure(&ClientError{Type: ErrorTypeCancelled, Cause: context.Canceled}) {
		t.Error("Expected cancellation not to count as a breaker failure")
	}
	if isCircuitFailure(nil) {
		t.Error("Expected nil not to count as a failure")
	}
	if isCircuitFailure(fmt.Errorf("application error")) {
		t.Error("Expected non-transport application errors not to trip the breaker")
	}
}
