package hyzhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const contentTypeJSON = "application/json"

// Client executes abstract requests against pooled transports, routing every
// call through the policy store's cached resilience pipeline. It is safe for
// concurrent use, including reconfiguration while requests are in flight.
type Client struct {
	factory    ClientFactory
	policies   *PolicyStore
	middleware []Middleware
	metrics    *MetricsCollector
	debug      *DebugConfig
	logger     Logger
	timeout    time.Duration

	validationError error
}

// New constructs a Client using the provided functional options. A best
// effort validation is performed; call IsValid / ValidationError for errors.
func New(options ...Option) *Client {
	client := &Client{
		policies:   NewPolicyStore(),
		middleware: []Middleware{},
		debug:      DefaultDebugConfig(),
		timeout:    30 * time.Second,
	}

	for _, option := range options {
		option(client)
	}

	if client.factory == nil {
		client.factory = NewDefaultClientFactory(client.timeout)
	}
	if err := client.ValidateConfiguration(); err != nil {
		client.validationError = err
	}

	return client
}

// PolicyStore returns the store owning this client's resilience
// configuration. Sharing the store shares the circuit breaker.
func (c *Client) PolicyStore() *PolicyStore {
	return c.policies
}

// PipelinePolicy returns the current pipeline, rebuilding it first if a
// configuration change invalidated the cached one.
func (c *Client) PipelinePolicy() *Pipeline {
	return c.policies.Pipeline()
}

// ConfigureRetry replaces the retry configuration. The cached pipeline is
// invalidated; in-flight requests finish against the pipeline they started
// with.
func (c *Client) ConfigureRetry(config RetryConfig) error {
	if err := validateRetryConfig(config); err != nil {
		return err
	}
	c.policies.ConfigureRetry(config)
	return nil
}

// ConfigureCircuitBreaker replaces the breaker configuration. The cached
// pipeline is invalidated and the next request builds a fresh breaker in the
// closed state; counters are not carried over.
func (c *Client) ConfigureCircuitBreaker(config CircuitBreakerConfig) error {
	if err := validateCircuitBreakerConfig(config); err != nil {
		return err
	}
	c.policies.ConfigureCircuitBreaker(config)
	return nil
}

// Execute sends req and returns its response. The call goes through the
// cached retry + circuit breaker pipeline unless WithoutRetry is given, in
// which case a single wire call executes and the breaker window is left
// untouched.
func (c *Client) Execute(ctx context.Context, req *Request, opts ...CallOption) (*Response, error) {
	settings := defaultCallSettings()
	for _, opt := range opts {
		opt(&settings)
	}

	start := time.Now()
	if req == nil {
		return nil, &ClientError{
			Type:      ErrorTypeInvalidArgument,
			Message:   "request must not be nil",
			Timestamp: start,
		}
	}

	var requestID string
	if c.debug != nil && c.debug.Enabled && c.debug.RequestIDGen != nil {
		requestID = c.debug.RequestIDGen()
	}

	method, ok := resolveMethod(req.Method)
	if !ok {
		return nil, c.newError(ErrorTypeUnsupportedMethod,
			fmt.Sprintf("unsupported HTTP method %q", req.Method),
			nil, requestID, req.Method, req.Path, 0, 0, start)
	}

	target := req.RequestAPI()
	endpoint := endpointLabel(target)

	var payload []byte
	if req.Body != nil && method != http.MethodGet && method != http.MethodDelete {
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return nil, c.newError(ErrorTypeInvalidArgument,
				"failed to encode request body", err, requestID, method, target, 0, 0, start)
		}
		payload = encoded
	}

	transport := c.factory.CreateClient(settings.clientName)

	if c.debugEnabled() && c.debug.LogRequests {
		c.logger.Debug("starting request",
			"requestID", requestID, "method", method, "url", target, "retryEnabled", settings.retryEnabled)
	}
	if c.metrics != nil {
		c.metrics.RecordRequestStart(method, endpoint)
	}

	var result *Response
	attempts := 0
	op := func(ctx context.Context) error {
		attempts++
		if attempts > 1 {
			if c.metrics != nil {
				c.metrics.RecordRetry(method, endpoint, attempts-1)
			}
			if c.debugEnabled() && c.debug.LogRetries {
				c.logger.Info("retry attempt",
					"requestID", requestID, "attempt", attempts-1, "url", target)
			}
		}
		resp, err := c.doAttempt(ctx, transport, method, target, req.Headers, payload,
			settings.decodeInto, requestID, attempts, start)
		if err != nil {
			return err
		}
		result = resp
		return nil
	}

	var execErr error
	if settings.retryEnabled {
		pipeline := c.policies.Pipeline()
		execErr = pipeline.Execute(ctx, op)
		if c.metrics != nil {
			c.metrics.RecordCircuitBreakerState("default", pipeline.Breaker().State())
		}
	} else {
		execErr = op(ctx)
	}

	if c.metrics != nil {
		c.metrics.RecordRequestEnd(method, endpoint)
	}
	duration := time.Since(start)

	if execErr != nil {
		execErr = c.finalizeError(execErr, requestID, method, target, attempts, start)
		var clientErr *ClientError
		if errors.As(execErr, &clientErr) {
			if c.metrics != nil {
				c.metrics.RecordError(clientErr.Type, method, endpoint)
				c.metrics.RecordRequest(method, endpoint, clientErr.StatusCode, duration)
			}
			if c.debugEnabled() {
				if clientErr.Type == ErrorTypeCircuitOpen && c.debug.LogCircuit {
					c.logger.Warn("circuit breaker rejected request",
						"requestID", requestID, "url", target)
				} else if c.debug.LogRequests {
					c.logger.Warn("request failed",
						"requestID", requestID, "type", clientErr.Type, "error", clientErr.Message, "attempts", attempts)
				}
			}
		}
		return nil, execErr
	}

	if c.metrics != nil {
		c.metrics.RecordRequest(method, endpoint, result.StatusCode, duration)
	}
	if c.debugEnabled() && c.debug.LogRequests {
		c.logger.Debug("request completed",
			"requestID", requestID, "status", result.StatusCode, "attempts", attempts, "duration", duration)
	}
	return result, nil
}

// Get executes req as a GET.
func (c *Client) Get(ctx context.Context, req *Request, opts ...CallOption) (*Response, error) {
	return c.executeAs(ctx, http.MethodGet, req, opts...)
}

// Post executes req as a POST.
func (c *Client) Post(ctx context.Context, req *Request, opts ...CallOption) (*Response, error) {
	return c.executeAs(ctx, http.MethodPost, req, opts...)
}

// Put executes req as a PUT.
func (c *Client) Put(ctx context.Context, req *Request, opts ...CallOption) (*Response, error) {
	return c.executeAs(ctx, http.MethodPut, req, opts...)
}

// Delete executes req as a DELETE.
func (c *Client) Delete(ctx context.Context, req *Request, opts ...CallOption) (*Response, error) {
	return c.executeAs(ctx, http.MethodDelete, req, opts...)
}

// Patch executes req as a PATCH.
func (c *Client) Patch(ctx context.Context, req *Request, opts ...CallOption) (*Response, error) {
	return c.executeAs(ctx, http.MethodPatch, req, opts...)
}

func (c *Client) executeAs(ctx context.Context, method string, req *Request, opts ...CallOption) (*Response, error) {
	if req != nil {
		req.Method = method
	}
	return c.Execute(ctx, req, opts...)
}

// ExecuteJSON executes req and decodes the response body into out. Decoding
// happens inside the attempt, so a malformed body is subject to the retry
// policy like any transport failure.
func (c *Client) ExecuteJSON(ctx context.Context, req *Request, out any, opts ...CallOption) error {
	_, err := c.Execute(ctx, req, append(opts, withDecodeTarget(out))...)
	return err
}

// GetJSON executes req as a GET and decodes the response into out.
func (c *Client) GetJSON(ctx context.Context, req *Request, out any, opts ...CallOption) error {
	return c.executeJSONAs(ctx, http.MethodGet, req, out, opts...)
}

// PostJSON executes req as a POST and decodes the response into out.
func (c *Client) PostJSON(ctx context.Context, req *Request, out any, opts ...CallOption) error {
	return c.executeJSONAs(ctx, http.MethodPost, req, out, opts...)
}

// PutJSON executes req as a PUT and decodes the response into out.
func (c *Client) PutJSON(ctx context.Context, req *Request, out any, opts ...CallOption) error {
	return c.executeJSONAs(ctx, http.MethodPut, req, out, opts...)
}

// DeleteJSON executes req as a DELETE and decodes the response into out.
func (c *Client) DeleteJSON(ctx context.Context, req *Request, out any, opts ...CallOption) error {
	return c.executeJSONAs(ctx, http.MethodDelete, req, out, opts...)
}

// PatchJSON executes req as a PATCH and decodes the response into out.
func (c *Client) PatchJSON(ctx context.Context, req *Request, out any, opts ...CallOption) error {
	return c.executeJSONAs(ctx, http.MethodPatch, req, out, opts...)
}

func (c *Client) executeJSONAs(ctx context.Context, method string, req *Request, out any, opts ...CallOption) error {
	if req != nil {
		req.Method = method
	}
	return c.ExecuteJSON(ctx, req, out, opts...)
}

// doAttempt performs one wire call: build the request, run it through the
// middleware chain and transport, interpret the response.
func (c *Client) doAttempt(ctx context.Context, transport *http.Client, method, target string,
	headers map[string]string, payload []byte, decodeInto any,
	requestID string, attempt int, start time.Time) (*Response, error) {

	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
	if err != nil {
		return nil, c.newError(ErrorTypeInvalidArgument,
			"failed to build wire request", err, requestID, method, target, 0, attempt, start)
	}

	for key, value := range headers {
		httpReq.Header.Set(key, value)
	}
	if payload != nil {
		httpReq.Header.Set("Content-Type", contentTypeJSON)
	}

	resp, err := c.roundTrip(transport, httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, c.newError(ErrorTypeCancelled,
				"request cancelled", ctx.Err(), requestID, method, target, 0, attempt, start)
		}
		return nil, c.newError(ErrorTypeTransport,
			"transport request failed", err, requestID, method, target, 0, attempt, start)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.newError(ErrorTypeTransport,
			"failed to read response body", err, requestID, method, target, resp.StatusCode, attempt, start)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.newError(ErrorTypeTransport,
			fmt.Sprintf("server returned status %d", resp.StatusCode),
			nil, requestID, method, target, resp.StatusCode, attempt, start)
	}

	response := &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: body}
	if decodeInto != nil {
		if err := json.Unmarshal(body, decodeInto); err != nil {
			return nil, c.newError(ErrorTypeDeserialization,
				"failed to decode response body", err, requestID, method, target, resp.StatusCode, attempt, start)
		}
	}
	return response, nil
}

func (c *Client) roundTrip(transport *http.Client, req *http.Request) (*http.Response, error) {
	if len(c.middleware) == 0 {
		return transport.Do(req)
	}

	current := RoundTripper(RoundTripperFunc(transport.Do))
	for i := len(c.middleware) - 1; i >= 0; i-- {
		middleware := c.middleware[i]
		next := current
		current = RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			return middleware(r, next)
		})
	}
	return current.RoundTrip(req)
}

// finalizeError attaches request context to errors that bubbled out of the
// pipeline without it, notably the breaker's bare ErrCircuitOpen rejection.
func (c *Client) finalizeError(err error, requestID, method, target string, attempt int, start time.Time) error {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return err
	}
	if errors.Is(err, ErrCircuitOpen) {
		return c.newError(ErrorTypeCircuitOpen,
			"circuit breaker rejected the request", err, requestID, method, target, 0, attempt, start)
	}
	return err
}

func (c *Client) newError(errType, message string, cause error,
	requestID, method, target string, statusCode, attempt int, start time.Time) *ClientError {
	return &ClientError{
		Type:       errType,
		Message:    message,
		Cause:      cause,
		RequestID:  requestID,
		Method:     method,
		URL:        target,
		StatusCode: statusCode,
		Attempt:    attempt,
		Timestamp:  time.Now(),
		Duration:   time.Since(start),
	}
}

func (c *Client) debugEnabled() bool {
	return c.debug != nil && c.debug.Enabled && c.logger != nil
}

// IsValid reports whether configuration validation passed at construction.
func (c *Client) IsValid() bool {
	return c.validationError == nil
}

// ValidationError returns the configuration validation error, if any.
func (c *Client) ValidationError() error {
	return c.validationError
}

// ValidateConfiguration re-checks the client's current configuration.
func (c *Client) ValidateConfiguration() error {
	if c.factory == nil {
		return fmt.Errorf("client factory must not be nil")
	}
	if c.timeout < 0 {
		return fmt.Errorf("timeout must be >= 0, got %v", c.timeout)
	}
	if err := validateRetryConfig(c.policies.RetryConfig()); err != nil {
		return err
	}
	return validateCircuitBreakerConfig(c.policies.CircuitBreakerConfig())
}

func validateRetryConfig(config RetryConfig) error {
	if config.MaxAttempts < 0 {
		return fmt.Errorf("retry MaxAttempts must be >= 0, got %d", config.MaxAttempts)
	}
	if config.InitialDelay < 0 {
		return fmt.Errorf("retry InitialDelay must be >= 0, got %v", config.InitialDelay)
	}
	return nil
}

func validateCircuitBreakerConfig(config CircuitBreakerConfig) error {
	// Zero values mean "use defaults"; only actively invalid values fail.
	if config.FailureRatio < 0 || config.FailureRatio > 1 {
		return fmt.Errorf("circuit breaker FailureRatio must be in (0, 1], got %v", config.FailureRatio)
	}
	if config.MinimumThroughput < 0 {
		return fmt.Errorf("circuit breaker MinimumThroughput must be >= 1, got %d", config.MinimumThroughput)
	}
	if config.SamplingWindow < 0 {
		return fmt.Errorf("circuit breaker SamplingWindow must be >= 0, got %v", config.SamplingWindow)
	}
	if config.BreakDuration < 0 {
		return fmt.Errorf("circuit breaker BreakDuration must be >= 0, got %v", config.BreakDuration)
	}
	return nil
}

func resolveMethod(method string) (string, bool) {
	switch strings.ToUpper(strings.TrimSpace(method)) {
	case http.MethodGet:
		return http.MethodGet, true
	case http.MethodPost:
		return http.MethodPost, true
	case http.MethodPut:
		return http.MethodPut, true
	case http.MethodDelete:
		return http.MethodDelete, true
	case http.MethodPatch:
		return http.MethodPatch, true
	default:
		return "", false
	}
}

// endpointLabel reduces a target URL to a low-cardinality host+path label for
// metrics and logs.
func endpointLabel(target string) string {
	u, err := url.Parse(target)
	if err != nil {
		return "unknown"
	}
	path := u.Path
	if path == "" {
		path = "/"
	}
	return u.Host + path
}
