package relayq

import (
	"net/http"
	"time"
)

// Request is the immutable descriptor for one outgoing call. Interceptors
// receive the current descriptor and return a (possibly new) one; the
// dispatcher never mutates a descriptor after the chain has run.
type Request struct {
	Method   string
	Endpoint string
	Headers  map[string]string
	Body     []byte
}

// Clone returns a copy of the descriptor with its own header map, so an
// interceptor can derive a new descriptor without aliasing the old one.
func (r Request) Clone() Request {
	headers := make(map[string]string, len(r.Headers))
	for k, v := range r.Headers {
		headers[k] = v
	}
	r.Headers = headers
	return r
}

// WithHeader returns a copy of the descriptor carrying the extra header.
func (r Request) WithHeader(key, value string) Request {
	clone := r.Clone()
	clone.Headers[key] = value
	return clone
}

// Interceptor transforms an outgoing request descriptor before dispatch.
// Interceptors run in registration order; an error from any of them fails
// the dispatch immediately, skipping the network call.
type Interceptor func(Request) (Request, error)

// Response is the decoded outcome of a successful dispatch. Empty upstream
// bodies (204 or zero content-length) are represented as an empty JSON
// object so JSON decoding always succeeds.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// JSON unmarshals the response body into v.
func (r *Response) JSON(v any) error {
	return unmarshalBody(r.Body, v)
}

// Text returns the response body as a string.
func (r *Response) Text() string {
	return string(r.Body)
}

// BackoffStrategy selects how the retry delay grows between attempts.
type BackoffStrategy int

const (
	// BackoffLinear waits base * (attempt + 1) between attempts. This is
	// the dispatcher's default contract.
	BackoffLinear BackoffStrategy = iota

	// BackoffExponential waits base * 2^attempt between attempts.
	BackoffExponential
)

// Observer is a best-effort sink for request/response traffic. Failures in
// an observer never affect the dispatcher's control flow.
type Observer interface {
	Info(msg string)
	Error(msg string)
	Request(method, url string, headers map[string]string, body []byte)
	Response(method, url string, status int, body []byte)
}

// Option represents a configuration option.
type Option func(*Client)

const (
	defaultMaxAttempts  = 3
	defaultBaseBackoff  = 300 * time.Millisecond
	defaultConcurrency  = 5
	defaultCacheTTL     = 60 * time.Second
	defaultHTTPTimeout  = 30 * time.Second
	maxResponseBodySize = 10 * 1024 * 1024
)
