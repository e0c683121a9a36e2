package relayq

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/adiwirasena/relayq/internal/backoff"
	"github.com/adiwirasena/relayq/internal/singleflight"
)

// Client orchestrates HTTP requests against a configured base URL. It layers
// a TTL response cache, in-flight GET coalescing, a bounded FIFO worker
// queue and retry with linear backoff around the standard net/http Client.
// It is safe for concurrent use.
type Client struct {
	baseURL        string
	defaultHeaders map[string]string
	httpClient     *http.Client

	maxAttempts int
	baseBackoff time.Duration
	backoffCalc *backoff.Calculator

	cache           Cache
	cacheTTL        time.Duration
	cacheMaxEntries int
	cacheSweep      time.Duration
	cacheDisabled   bool

	concurrency int
	queue       *Queue
	flight      *singleflight.Group

	interceptors interceptorChain

	mu        sync.RWMutex
	authToken string

	metrics  *MetricsCollector
	logger   Logger
	debug    *DebugConfig
	observer Observer

	validationError error
}

// New constructs a Client for the given base URL using the provided
// functional options. A best effort validation is performed; call IsValid /
// ValidationError for errors.
func New(baseURL string, options ...Option) *Client {
	client := &Client{
		baseURL:        strings.TrimSuffix(baseURL, "/"),
		defaultHeaders: map[string]string{},
		httpClient: &http.Client{
			Timeout: defaultHTTPTimeout,
		},
		maxAttempts: defaultMaxAttempts,
		baseBackoff: defaultBaseBackoff,
		backoffCalc: backoff.Linear(),
		cacheTTL:    defaultCacheTTL,
		concurrency: defaultConcurrency,
		flight:      singleflight.New(),
		debug:       DefaultDebugConfig(),
	}

	for _, option := range options {
		option(client)
	}

	if err := client.ValidateConfiguration(); err != nil {
		client.validationError = err
	}

	if client.cache == nil && !client.cacheDisabled {
		client.cache = NewInMemoryCache(client.cacheMaxEntries, client.cacheSweep)
	}

	client.queue = NewQueue(client.concurrency)
	if client.metrics != nil {
		metrics := client.metrics
		client.queue.stateHook = func(pending, running int) {
			metrics.RecordQueueState("default", pending, running)
		}
	}

	return client
}

// SetAuthToken installs the bearer token carried by every subsequent
// dispatched request. Later calls overwrite earlier ones.
func (c *Client) SetAuthToken(token string) {
	c.mu.Lock()
	c.authToken = token
	c.mu.Unlock()
}

// ClearAuthToken removes the bearer token.
func (c *Client) ClearAuthToken() {
	c.SetAuthToken("")
}

// AddInterceptor appends a transformation to the interceptor chain. There is
// no removal; registering the same interceptor twice applies it twice.
func (c *Client) AddInterceptor(fn Interceptor) {
	c.interceptors.register(fn)
}

// Get returns the response for the endpoint, consulting the cache first. On
// a miss, identical in-flight GETs are coalesced into a single dispatch and
// a successful result is stored in the cache keyed by endpoint. Failed GETs
// never write the cache.
func (c *Client) Get(ctx context.Context, endpoint string) (*Response, error) {
	if c.cache != nil {
		if value, ok := c.cache.Get(endpoint); ok {
			c.metrics.RecordCacheHit(http.MethodGet, endpoint)
			if c.debugEnabled() && c.debug.LogCache {
				c.logger.Debug("cache hit", "endpoint", endpoint)
			}
			return value, nil
		}
		c.metrics.RecordCacheMiss(http.MethodGet, endpoint)
	}

	value, err, shared := c.flight.Do(endpoint, func() (any, error) {
		// A caller that lost the race against a completed flight re-checks
		// the cache before dispatching again.
		if c.cache != nil {
			if value, ok := c.cache.Get(endpoint); ok {
				return value, nil
			}
		}

		resp, err := c.Request(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		if c.cache != nil {
			c.cache.Set(endpoint, resp, c.cacheTTL)
			c.metrics.RecordCacheSize("default", c.cache.Len())
			if c.debugEnabled() && c.debug.LogCache {
				c.logger.Debug("response cached", "endpoint", endpoint, "ttl", c.cacheTTL)
			}
		}
		return resp, nil
	})

	if shared {
		c.metrics.RecordCoalescedHit(http.MethodGet, endpoint)
	}
	if err != nil {
		return nil, err
	}
	return value.(*Response), nil
}

// Post dispatches a POST request. Responses are never cached.
func (c *Client) Post(ctx context.Context, endpoint string, body any) (*Response, error) {
	return c.Request(ctx, http.MethodPost, endpoint, body)
}

// Put dispatches a PUT request. Responses are never cached.
func (c *Client) Put(ctx context.Context, endpoint string, body any) (*Response, error) {
	return c.Request(ctx, http.MethodPut, endpoint, body)
}

// Patch dispatches a PATCH request. Responses are never cached.
func (c *Client) Patch(ctx context.Context, endpoint string, body any) (*Response, error) {
	return c.Request(ctx, http.MethodPatch, endpoint, body)
}

// Delete dispatches a DELETE request. Responses are never cached.
func (c *Client) Delete(ctx context.Context, endpoint string) (*Response, error) {
	return c.Request(ctx, http.MethodDelete, endpoint, nil)
}

// Request builds a descriptor for the call, admits it to the bounded queue
// and waits for the queued task to finish the interceptor chain and retry
// loop. body may be nil, a []byte / json.RawMessage passed through verbatim,
// or any value serialized as JSON.
func (c *Client) Request(ctx context.Context, method, endpoint string, body any) (*Response, error) {
	req, err := c.buildRequest(method, endpoint, body)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	c.metrics.RecordRequestStart(method, endpoint)
	if c.debugEnabled() && c.debug.LogRequests {
		c.logger.Debug("request submitted", "method", method, "endpoint", endpoint)
	}

	handle := c.queue.Submit(func() (any, error) {
		return c.dispatch(ctx, req)
	})
	if c.debugEnabled() && c.debug.LogQueue {
		c.logger.Debug("task queued", "pending", c.queue.Pending(), "running", c.queue.Running())
	}
	value, err := handle.Wait(ctx)

	c.metrics.RecordRequestEnd(method, endpoint)

	var resp *Response
	if value != nil {
		resp = value.(*Response)
	}
	statusCode := 0
	if resp != nil {
		statusCode = resp.StatusCode
	}
	c.metrics.RecordRequest(method, endpoint, statusCode, time.Since(start))

	if err != nil {
		return nil, err
	}
	return resp, nil
}

// buildRequest assembles the initial descriptor: JSON content type, default
// headers, bearer auth when a token is set, serialized body if provided.
func (c *Client) buildRequest(method, endpoint string, body any) (Request, error) {
	headers := map[string]string{
		"Content-Type": "application/json",
	}
	for k, v := range c.defaultHeaders {
		headers[k] = v
	}

	c.mu.RLock()
	token := c.authToken
	c.mu.RUnlock()
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}

	var payload []byte
	if body != nil {
		switch b := body.(type) {
		case []byte:
			payload = b
		case json.RawMessage:
			payload = b
		default:
			var err error
			payload, err = json.Marshal(body)
			if err != nil {
				return Request{}, &RequestError{
					Kind:    KindValidation,
					Message: "encode request body",
					Method:  method,
					Cause:   err,
				}
			}
		}
	}

	return Request{
		Method:   method,
		Endpoint: endpoint,
		Headers:  headers,
		Body:     payload,
	}, nil
}

// dispatch runs inside a queue slot: interceptor fold first, then the retry
// loop. An interceptor error fails the dispatch without a network call.
func (c *Client) dispatch(ctx context.Context, req Request) (*Response, error) {
	transformed, err := c.interceptors.apply(req)
	if err != nil {
		c.metrics.RecordError(KindInterceptor, req.Method, req.Endpoint)
		c.observeError("interceptor failed: " + err.Error())
		return nil, &RequestError{
			Kind:    KindInterceptor,
			Message: "interceptor failed",
			Method:  req.Method,
			URL:     c.buildURL(req.Endpoint),
			Cause:   err,
		}
	}

	return c.doWithRetry(ctx, transformed, 0)
}

func (c *Client) doWithRetry(ctx context.Context, req Request, attempt int) (*Response, error) {
	url := c.buildURL(req.Endpoint)

	if attempt > 0 {
		c.metrics.RecordRetry(req.Method, req.Endpoint, attempt)
		if c.debugEnabled() && c.debug.LogRetries {
			c.logger.Info("retry attempt", "method", req.Method, "endpoint", req.Endpoint, "attempt", attempt, "maxAttempts", c.maxAttempts)
		}
	}

	c.observeRequest(req, url)

	resp, err := c.attempt(ctx, req, url)
	if err != nil {
		c.observeError("transport failure: " + err.Error())
		return c.retryOrFail(ctx, req, attempt, &RequestError{
			Kind:    KindNetwork,
			Message: "transport failure",
			Method:  req.Method,
			URL:     url,
			Attempt: attempt,
			Cause:   err,
		})
	}

	c.observeResponse(req, url, resp.StatusCode, resp.Body)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if len(resp.Body) == 0 {
			resp.Body = []byte("{}")
		}
		return resp, nil

	case resp.StatusCode == http.StatusBadRequest:
		c.metrics.RecordError(KindValidation, req.Method, req.Endpoint)
		return nil, &RequestError{
			Kind:       KindValidation,
			Message:    resp.Text(),
			StatusCode: resp.StatusCode,
			Method:     req.Method,
			URL:        url,
			Attempt:    attempt,
			Body:       resp.Body,
		}

	default:
		return c.retryOrFail(ctx, req, attempt, &RequestError{
			Kind:       KindNetwork,
			Message:    "server returned " + http.StatusText(resp.StatusCode),
			StatusCode: resp.StatusCode,
			Method:     req.Method,
			URL:        url,
			Attempt:    attempt,
			Body:       resp.Body,
		})
	}
}

// retryOrFail waits out the backoff delay and re-enters the attempt loop, or
// surfaces the failure once the attempt budget is spent. HTTP 400 never
// reaches here; it is terminal in doWithRetry.
func (c *Client) retryOrFail(ctx context.Context, req Request, attempt int, failure *RequestError) (*Response, error) {
	if attempt < c.maxAttempts-1 {
		delay := c.backoffCalc.Delay(attempt, c.baseBackoff)
		if c.debugEnabled() && c.debug.LogRetries {
			c.logger.Info("scheduling retry", "method", req.Method, "endpoint", req.Endpoint, "attempt", attempt+1, "backoff", delay)
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return c.doWithRetry(ctx, req, attempt+1)
	}

	c.metrics.RecordError(KindNetwork, req.Method, req.Endpoint)
	return nil, failure
}

// attempt performs exactly one network call and drains the response body.
func (c *Client) attempt(ctx context.Context, req Request, url string) (*Response, error) {
	var bodyReader io.Reader
	if len(req.Body) > 0 {
		bodyReader = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, url, bodyReader)
	if err != nil {
		return nil, err
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer func() { _ = httpResp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBodySize))
	if err != nil {
		return nil, err
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header.Clone(),
		Body:       body,
	}, nil
}

func (c *Client) buildURL(endpoint string) string {
	return c.baseURL + "/" + strings.TrimPrefix(endpoint, "/")
}

func (c *Client) debugEnabled() bool {
	return c.debug != nil && c.debug.Enabled && c.logger != nil
}

// Close shuts down the worker queue, failing pending tasks with
// ErrQueueClosed, and stops the cache janitor if one is running. Running
// tasks complete normally.
func (c *Client) Close() {
	c.queue.Close()
	if mem, ok := c.cache.(*InMemoryCache); ok {
		mem.Stop()
	}
}

// IsValid reports whether configuration validation passed at construction.
func (c *Client) IsValid() bool {
	return c.validationError == nil
}

// ValidationError returns the configuration validation error, if any.
func (c *Client) ValidationError() error {
	return c.validationError
}

func unmarshalBody(body []byte, v any) error {
	if len(body) == 0 {
		body = []byte("{}")
	}
	return json.Unmarshal(body, v)
}
