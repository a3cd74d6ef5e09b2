package sync

import "sync"

// guard hands out at most one in-flight token per resource name. It
// replaces an ad-hoc boolean flag: callers must acquire the token for a
// table before syncing it and release it when done, so two overlapping
// syncs of the same table cannot race within the process.
type guard struct {
	mu       sync.Mutex
	inFlight map[string]bool
}

func newGuard() *guard {
	return &guard{inFlight: make(map[string]bool)}
}

// tryAcquire takes the token for a resource, reporting false when a
// sync for that resource is already in flight.
func (g *guard) tryAcquire(resource string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.inFlight[resource] {
		return false
	}
	g.inFlight[resource] = true
	return true
}

// release returns the token for a resource
func (g *guard) release(resource string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.inFlight, resource)
}
