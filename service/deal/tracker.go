package deal

import "sync"

// Tracker records deal identifiers seen within a single import call.
// Its scope is exactly one call: the importer creates a fresh Tracker per
// batch and nothing else ever holds a reference to it.
type Tracker struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{seen: make(map[string]struct{})}
}

// Observe atomically checks and records an identifier. It returns true
// the first time an identifier is seen and false on every repeat, so of
// several rows sharing an identifier exactly one passes this gate.
func (t *Tracker) Observe(dealID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.seen[dealID]; ok {
		return false
	}
	t.seen[dealID] = struct{}{}
	return true
}

// Len reports how many distinct identifiers have been observed.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.seen)
}
