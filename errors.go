package relayq

import (
	"errors"
	"fmt"
)

// Failure kinds carried by RequestError. The kind decides retry eligibility:
// only KindNetwork failures are retried.
const (
	KindValidation  = "Validation"
	KindNetwork     = "Network"
	KindInterceptor = "Interceptor"
)

// ErrQueueClosed is returned for tasks submitted after the queue shut down.
var ErrQueueClosed = errors.New("relayq: queue closed")

// RequestError is a classified dispatch failure. Kind is one of the Kind*
// constants; StatusCode is zero for transport-level and interceptor faults.
type RequestError struct {
	Kind       string
	Message    string
	StatusCode int
	Method     string
	URL        string
	Attempt    int
	Body       []byte
	Cause      error
}

// Error implements error interface.
func (e *RequestError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.StatusCode > 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Attempt > 0 {
		msg = fmt.Sprintf("%s (attempt %d)", msg, e.Attempt+1)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *RequestError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is compares failure kinds for errors.Is.
func (e *RequestError) Is(target error) bool {
	if e == nil {
		return false
	}
	if targetErr, ok := target.(*RequestError); ok {
		return e.Kind == targetErr.Kind
	}
	return false
}

// IsValidation reports whether err is a non-retryable validation failure
// (HTTP 400).
func IsValidation(err error) bool {
	return hasKind(err, KindValidation)
}

// IsNetwork reports whether err is a network failure: a non-2xx status other
// than 400, or a transport-level fault.
func IsNetwork(err error) bool {
	return hasKind(err, KindNetwork)
}

// IsInterceptor reports whether err originated in the interceptor chain.
func IsInterceptor(err error) bool {
	return hasKind(err, KindInterceptor)
}

// IsRetryable reports whether the dispatcher would retry err given remaining
// attempt budget. Validation and interceptor failures are terminal.
func IsRetryable(err error) bool {
	return hasKind(err, KindNetwork)
}

func hasKind(err error, kind string) bool {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Kind == kind
	}
	return false
}
