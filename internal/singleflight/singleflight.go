// Package singleflight coalesces duplicate in-flight calls so that only one
// execution runs per key and every caller receives its result.
package singleflight

import "sync"

// Group manages a set of in-flight calls to prevent duplicate work.
type Group struct {
	mu sync.Mutex
	m  map[string]*call
}

// call represents an active or completed function call.
type call struct {
	wg  sync.WaitGroup
	val any
	err error
}

// New creates a new singleflight Group.
func New() *Group {
	return &Group{
		m: make(map[string]*call),
	}
}

// Do executes and returns the results of the given function, making sure
// that only one execution is in-flight for a given key at a time. A
// duplicate caller waits for the original to complete and receives the same
// results; shared reports whether the caller received a coalesced result
// rather than owning the execution.
func (g *Group) Do(key string, fn func() (any, error)) (val any, err error, shared bool) {
	g.mu.Lock()
	if c, ok := g.m[key]; ok {
		g.mu.Unlock()
		c.wg.Wait()
		return c.val, c.err, true
	}

	c := &call{}
	c.wg.Add(1)
	g.m[key] = c
	g.mu.Unlock()

	c.val, c.err = fn()
	c.wg.Done()

	g.mu.Lock()
	if g.m[key] == c {
		delete(g.m, key)
	}
	g.mu.Unlock()

	return c.val, c.err, false
}

// Forget removes the key from the group's map, allowing a future call with
// the same key to execute even if a previous call is still in progress.
func (g *Group) Forget(key string) {
	g.mu.Lock()
	delete(g.m, key)
	g.mu.Unlock()
}
