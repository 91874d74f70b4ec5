// Package async provides the latest-wins guard used by every screen reload:
// a slow earlier fetch must never overwrite the result of a faster later one.
package async

import "sync"

// Guard issues monotonically increasing tokens. Begin marks a new reload;
// Apply runs the mutation only while its token is still the newest.
type Guard struct {
	mu  sync.Mutex
	seq uint64
}

// Begin supersedes all outstanding reloads and returns the new token.
func (g *Guard) Begin() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	return g.seq
}

// Apply runs fn if token is still current and reports whether it ran.
// Stale results are dropped on the floor.
func (g *Guard) Apply(token uint64, fn func()) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if token != g.seq {
		return false
	}
	fn()
	return true
}

// Current reports whether token is still the newest issued.
func (g *Guard) Current(token uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return token == g.seq
}
