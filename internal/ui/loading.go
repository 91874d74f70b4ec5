package ui

import "sync"

// LoadingCounter tracks in-flight operations for the global spinner. It is
// a counter, not a flag: overlapping requests keep the spinner up until the
// last one finishes.
type LoadingCounter struct {
	mu sync.Mutex
	n  int
}

// Begin marks one operation as started.
func (l *LoadingCounter) Begin() {
	l.mu.Lock()
	l.n++
	l.mu.Unlock()
}

// End marks one operation as finished. Ending more than began is a no-op.
func (l *LoadingCounter) End() {
	l.mu.Lock()
	if l.n > 0 {
		l.n--
	}
	l.mu.Unlock()
}

// Active reports whether anything is still loading.
func (l *LoadingCounter) Active() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.n > 0
}
