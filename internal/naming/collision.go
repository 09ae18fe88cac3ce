package naming

import "sync"

// CollisionTracker records which input first claimed each output path in a
// run. Later claims are reported, not renamed: the last writer wins on
// disk. All methods are goroutine-safe.
type CollisionTracker struct {
	mu     sync.Mutex
	owners map[string]string // output path → first input path that claimed it
}

// NewCollisionTracker creates a ready-to-use tracker.
func NewCollisionTracker() *CollisionTracker {
	return &CollisionTracker{owners: make(map[string]string)}
}

// Claim registers input as a writer of output. It returns the input that
// claimed output earlier and true when a different input got there first.
// Re-claiming by the same input is not a collision.
func (ct *CollisionTracker) Claim(input, output string) (string, bool) {
	ct.mu.Lock()
	defer ct.mu.Unlock()

	owner, exists := ct.owners[output]
	if !exists {
		ct.owners[output] = input
		return "", false
	}
	if owner == input {
		return "", false
	}
	return owner, true
}
