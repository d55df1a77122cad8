// Package hyzhttp is a resilient executor for typed outbound HTTP calls.
// It binds an abstract request description (method, path, headers, query,
// JSON body) to a wire call and routes every call through a composable
// resilience pipeline:
//
//   - Retries with constant, linear or exponential backoff
//   - Circuit breaker (closed / open / half-open) driven by a rolling
//     failure-ratio window
//   - Lazily built, cached pipeline that is invalidated on reconfiguration
//   - Middleware chain for cross-cutting concerns (auth, logging, tracing, etc.)
//   - Prometheus metrics and lightweight structured debug logging
//
// Design goals:
//   - Small surface area: functional options configure everything
//   - Safe concurrent use of a single *Client instance, including live
//     reconfiguration while requests are in flight
//   - Transport stays pluggable: pooled *http.Client instances come from an
//     injected ClientFactory, never from the library itself
//
// Typical usage:
//
//	client := hyzhttp.New(
//	    hyzhttp.WithRetryConfig(hyzhttp.RetryConfig{
//	        MaxAttempts:  3,
//	        Backoff:      hyzhttp.BackoffExponential,
//	        InitialDelay: 100 * time.Millisecond,
//	    }),
//	    hyzhttp.WithCircuitBreaker(hyzhttp.CircuitBreakerConfig{}),
//	)
//	var user User
//	err := client.GetJSON(ctx, &hyzhttp.Request{Path: "https://api.example.com/users/1"}, &user)
//
// Circuit-open rejections are surfaced immediately and never retried; use
// WithoutRetry to bypass the pipeline entirely for a single call.
package hyzhttp
