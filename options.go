package relayq

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/adiwirasena/relayq/internal/backoff"
)

// WithDefaultHeaders merges headers carried by every dispatched request.
func WithDefaultHeaders(headers map[string]string) Option {
	return func(c *Client) {
		for k, v := range headers {
			c.defaultHeaders[k] = v
		}
	}
}

// WithHeader adds a single default header.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.defaultHeaders[key] = value
	}
}

// WithAuthToken sets the initial bearer token.
func WithAuthToken(token string) Option {
	return func(c *Client) {
		c.authToken = token
	}
}

// WithMaxAttempts sets the total number of attempts per logical request,
// including the first one.
func WithMaxAttempts(n int) Option {
	return func(c *Client) {
		c.maxAttempts = n
	}
}

// WithBackoff sets the base backoff duration. The wait before retry i+1 is
// base * (i + 1) under the default linear strategy.
func WithBackoff(d time.Duration) Option {
	return func(c *Client) {
		c.baseBackoff = d
	}
}

// WithBackoffStrategy selects how the retry delay grows.
func WithBackoffStrategy(strategy BackoffStrategy) Option {
	return func(c *Client) {
		switch strategy {
		case BackoffExponential:
			c.backoffCalc = backoff.Exponential()
		default:
			c.backoffCalc = backoff.Linear()
		}
	}
}

// WithConcurrency sets the maximum number of tasks executing simultaneously.
func WithConcurrency(n int) Option {
	return func(c *Client) {
		c.concurrency = n
	}
}

// WithCacheTTL sets the default TTL for cached GET responses.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) {
		c.cacheTTL = ttl
	}
}

// WithCacheMaxEntries bounds the cache; when exceeded the
// least-recently-inserted entry is evicted first. Zero means unbounded.
func WithCacheMaxEntries(n int) Option {
	return func(c *Client) {
		c.cacheMaxEntries = n
	}
}

// WithCacheCleanupInterval enables a background sweep of expired entries.
// Purely hygienic; expiration is enforced lazily on read either way.
func WithCacheCleanupInterval(d time.Duration) Option {
	return func(c *Client) {
		c.cacheSweep = d
	}
}

// WithCustomCache sets a custom cache implementation.
func WithCustomCache(cache Cache) Option {
	return func(c *Client) {
		c.cache = cache
	}
}

// WithoutCache disables GET response caching entirely.
func WithoutCache() Option {
	return func(c *Client) {
		c.cacheDisabled = true
		c.cache = nil
	}
}

// WithHTTPClient sets a custom HTTP client, e.g. to control the transport
// timeout. The orchestration layer enforces no timeout of its own.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithMetrics enables Prometheus metrics collection on the default
// registerer.
func WithMetrics() Option {
	return func(c *Client) {
		c.metrics = NewMetricsCollector()
	}
}

// WithMetricsCollector sets a custom metrics collector.
func WithMetricsCollector(collector *MetricsCollector) Option {
	return func(c *Client) {
		c.metrics = collector
	}
}

// WithLogger sets a custom logger for debug output.
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithSimpleLogger enables debug logging with the colorized console logger.
func WithSimpleLogger() Option {
	return func(c *Client) {
		if c.debug == nil {
			c.debug = DefaultDebugConfig()
		}
		c.debug.Enabled = true
		c.logger = NewSimpleLogger()
	}
}

// WithDebug enables debug logging with default configuration.
func WithDebug() Option {
	return func(c *Client) {
		if c.debug == nil {
			c.debug = DefaultDebugConfig()
		}
		c.debug.Enabled = true
	}
}

// WithDebugConfig sets custom debug configuration.
func WithDebugConfig(config *DebugConfig) Option {
	return func(c *Client) {
		c.debug = config
	}
}

// WithObserver installs a request/response sink. Observation is best-effort
// and never affects dispatch control flow.
func WithObserver(observer Observer) Option {
	return func(c *Client) {
		c.observer = observer
	}
}

// WithInterceptors registers interceptors at construction time, in order.
func WithInterceptors(fns ...Interceptor) Option {
	return func(c *Client) {
		for _, fn := range fns {
			c.interceptors.register(fn)
		}
	}
}

// ValidateConfiguration validates the client configuration and returns an
// error describing every problem found, or nil.
func (c *Client) ValidateConfiguration() error {
	var problems []string

	if c.baseURL == "" {
		problems = append(problems, "base URL must not be empty")
	}
	if c.maxAttempts < 1 {
		problems = append(problems, fmt.Sprintf("maxAttempts must be >= 1, got %d", c.maxAttempts))
	}
	if c.baseBackoff < 0 {
		problems = append(problems, fmt.Sprintf("backoff must be >= 0, got %v", c.baseBackoff))
	}
	if c.concurrency < 1 {
		problems = append(problems, fmt.Sprintf("concurrency must be >= 1, got %d", c.concurrency))
	}
	if !c.cacheDisabled && c.cacheTTL <= 0 {
		problems = append(problems, fmt.Sprintf("cache TTL must be > 0, got %v", c.cacheTTL))
	}
	if c.cacheMaxEntries < 0 {
		problems = append(problems, fmt.Sprintf("cache max entries must be >= 0, got %d", c.cacheMaxEntries))
	}
	if c.cacheSweep < 0 {
		problems = append(problems, fmt.Sprintf("cache cleanup interval must be >= 0, got %v", c.cacheSweep))
	}
	if c.httpClient == nil {
		problems = append(problems, "HTTP client must not be nil")
	}

	if len(problems) > 0 {
		return &RequestError{
			Kind:    KindValidation,
			Message: "invalid configuration: " + strings.Join(problems, "; "),
		}
	}
	return nil
}
