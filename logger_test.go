package hyzhttp

import "testing"

// Light smoke tests ensuring exported logger APIs do not panic and remain
// callable; expand assertions here if richer logging behavior is added.
func TestSimpleLoggerLevels(t *testing.T) {
	logger := NewSimpleLogger()

	logger.Debug("debug message", "key", "value")
	logger.Info("info message", "attempt", 1)
	logger.Warn("warn message")
	logger.Error("error message", "odd-key-without-value")
}

func TestDefaultDebugConfig(t *testing.T) {
	config := DefaultDebugConfig()

	if config.Enabled {
		t.Error("Expected debug disabled by default")
	}
	if !config.LogRequests || !config.LogRetries || !config.LogCircuit {
		t.Error("Expected all event classes selected by default")
	}
	if config.RequestIDGen == nil {
		t.Fatal("Expected a default request ID generator")
	}
	if id := config.RequestIDGen(); id == "" {
		t.Error("Expected non-empty request ID")
	}
	if config.RequestIDGen() == config.RequestIDGen() {
		t.Error("Expected unique request IDs")
	}
}
