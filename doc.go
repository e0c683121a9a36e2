// Package relayq is a client-side request orchestration layer: it issues
// HTTP requests against a configured base URL and wraps a single request
// primitive with composable machinery:
//
//   - Bounded FIFO worker queue (at most N tasks in flight, start order
//     preserved)
//   - TTL cache for successful GET responses, with bounded capacity and an
//     optional background sweep
//   - In-flight coalescing of identical GETs
//   - Retry with linear backoff, driven by classified failures
//   - Ordered interceptor chain of pure descriptor transformations
//   - Prometheus metrics and lightweight structured debug logging
//
// Failures are tagged: HTTP 400 is a Validation failure and is never
// retried; any other non-2xx status or transport fault is a Network failure
// retried up to the attempt budget; interceptor errors bypass the network
// call entirely. Callers branch on the kind via IsValidation / IsNetwork /
// IsInterceptor.
//
// Typical usage:
//
//	client := relayq.New("https://api.example.com",
//	    relayq.WithMaxAttempts(3),
//	    relayq.WithBackoff(300*time.Millisecond),
//	    relayq.WithCacheTTL(time.Minute),
//	    relayq.WithConcurrency(5),
//	)
//	client.SetAuthToken("tok123")
//	resp, err := client.Get(ctx, "items")
//
// A single *Client instance owns its cache, queue, interceptor list and auth
// token; nothing is shared across instances and there are no process-wide
// singletons.
package relayq
