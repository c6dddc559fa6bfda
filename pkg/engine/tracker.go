package engine

import "github.com/hakutaku/hakoniwa/pkg/vm"

// LoopTracker counts resumptions per open loop invocation. An entry exists
// exactly while its loop is entered but not yet exited in the suspended call
// stack; the tracker is therefore non-empty only while the engine is stuck.
type LoopTracker struct {
	counts map[vm.LoopKey]int
}

// NewLoopTracker creates an empty tracker.
func NewLoopTracker() *LoopTracker {
	return &LoopTracker{
		counts: make(map[vm.LoopKey]int),
	}
}

// Increment bumps the counter for a loop, creating the entry if absent.
func (t *LoopTracker) Increment(key vm.LoopKey) {
	t.counts[key]++
}

// Clear removes the entry for a loop. Removing an absent key is a no-op.
func (t *LoopTracker) Clear(key vm.LoopKey) {
	delete(t.counts, key)
}

// ClearAll drops every entry.
func (t *LoopTracker) ClearAll() {
	clear(t.counts)
}

// Count returns the counter for a loop, zero if absent.
func (t *LoopTracker) Count(key vm.LoopKey) int {
	return t.counts[key]
}

// Len returns the number of open loops.
func (t *LoopTracker) Len() int {
	return len(t.counts)
}

// Busiest returns the loop with the highest count. Ties break arbitrarily.
// ok is false when the tracker is empty.
func (t *LoopTracker) Busiest() (key vm.LoopKey, count int, ok bool) {
	for k, c := range t.counts {
		if !ok || c > count {
			key, count, ok = k, c, true
		}
	}
	return key, count, ok
}
