package relayq

import "sync"

// interceptorChain is an ordered, append-only list of request transforms.
// Registration is not deduplicated: the same interceptor registered twice
// applies twice, in registration order.
type interceptorChain struct {
	mu    sync.RWMutex
	chain []Interceptor
}

func (ic *interceptorChain) register(fn Interceptor) {
	ic.mu.Lock()
	defer ic.mu.Unlock()

	ic.chain = append(ic.chain, fn)
}

// apply folds the chain left to right, each interceptor receiving the
// previous stage's output. The first error stops the fold.
func (ic *interceptorChain) apply(req Request) (Request, error) {
	ic.mu.RLock()
	chain := ic.chain
	ic.mu.RUnlock()

	var err error
	for _, fn := range chain {
		req, err = fn(req)
		if err != nil {
			return req, err
		}
	}
	return req, nil
}

func (ic *interceptorChain) len() int {
	ic.mu.RLock()
	defer ic.mu.RUnlock()

	return len(ic.chain)
}
