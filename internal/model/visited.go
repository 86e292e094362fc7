package model

import "sync"

// VisitedSet records every URL dispatched to the fetch step during one run.
// URLs are never removed, so the set only grows for the lifetime of the run.
type VisitedSet struct {
	mu   sync.Mutex
	urls map[string]struct{}
}

// NewVisitedSet creates an empty VisitedSet.
func NewVisitedSet() *VisitedSet {
	return &VisitedSet{
		urls: make(map[string]struct{}),
	}
}

// TryAdd inserts url and reports whether it was absent.
// The membership check and the insert happen under a single lock, so two
// goroutines racing on the same URL can never both get true.
func (v *VisitedSet) TryAdd(url string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.urls[url]; ok {
		return false
	}
	v.urls[url] = struct{}{}
	return true
}

// Len returns the number of distinct URLs dispatched.
func (v *VisitedSet) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.urls)
}
