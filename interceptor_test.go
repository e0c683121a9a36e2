package relayq

import (
	"errors"
	"testing"
)

func TestInterceptorChainOrder(t *testing.T) {
	var ic interceptorChain

	ic.register(func(req Request) (Request, error) {
		return req.WithHeader("X-Order", "first"), nil
	})
	ic.register(func(req Request) (Request, error) {
		return req.WithHeader("X-Order", req.Headers["X-Order"]+",second"), nil
	})

	out, err := ic.apply(Request{Method: "GET", Endpoint: "items", Headers: map[string]string{}})
	if err != nil {
		t.Fatalf("apply() returned error: %v", err)
	}
	if got := out.Headers["X-Order"]; got != "first,second" {
		t.Errorf("expected left-to-right fold, got %q", got)
	}
}

func TestInterceptorChainNotDeduplicated(t *testing.T) {
	var ic interceptorChain

	count := func(req Request) (Request, error) {
		req = req.Clone()
		req.Headers["X-Count"] += "x"
		return req, nil
	}
	ic.register(count)
	ic.register(count)

	out, err := ic.apply(Request{Headers: map[string]string{}})
	if err != nil {
		t.Fatalf("apply() returned error: %v", err)
	}
	if got := out.Headers["X-Count"]; got != "xx" {
		t.Errorf("expected duplicate registration to apply twice, got %q", got)
	}
	if ic.len() != 2 {
		t.Errorf("expected chain length 2, got %d", ic.len())
	}
}

func TestInterceptorChainStopsOnError(t *testing.T) {
	var ic interceptorChain

	errStop := errors.New("stop")
	var reached bool

	ic.register(func(req Request) (Request, error) {
		return req, errStop
	})
	ic.register(func(req Request) (Request, error) {
		reached = true
		return req, nil
	})

	if _, err := ic.apply(Request{Headers: map[string]string{}}); !errors.Is(err, errStop) {
		t.Errorf("expected errStop, got %v", err)
	}
	if reached {
		t.Error("expected fold to stop at the first error")
	}
}

func TestRequestCloneDoesNotAlias(t *testing.T) {
	original := Request{
		Method:   "GET",
		Endpoint: "items",
		Headers:  map[string]string{"A": "1"},
	}

	clone := original.WithHeader("B", "2")

	if _, ok := original.Headers["B"]; ok {
		t.Error("expected WithHeader to leave the original descriptor untouched")
	}
	if clone.Headers["A"] != "1" || clone.Headers["B"] != "2" {
		t.Errorf("expected clone to carry both headers, got %v", clone.Headers)
	}
}
