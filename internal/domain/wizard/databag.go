package wizard

import "sync"

// DataBag is the single mutable record accumulated across all steps of a
// flow session. All steps write into the same flat map; key collisions are
// last-write-wins. A bag is owned by exactly one sequencer instance.
type DataBag struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewDataBag creates an empty data bag.
func NewDataBag() *DataBag {
	return &DataBag{values: make(map[string]any)}
}

// Merge shallow-merges partial into the bag. Existing keys are overwritten.
func (b *DataBag) Merge(partial map[string]any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for k, v := range partial {
		b.values[k] = v
	}
}

// Set stores a single value.
func (b *DataBag) Set(key string, value any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.values[key] = value
}

// Get returns the value for key and whether it is present.
func (b *DataBag) Get(key string) (any, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.values[key]
	return v, ok
}

// Snapshot returns a shallow copy of the bag contents.
func (b *DataBag) Snapshot() map[string]any {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[string]any, len(b.values))
	for k, v := range b.values {
		out[k] = v
	}
	return out
}

// Len returns the number of keys in the bag.
func (b *DataBag) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.values)
}

// Clear removes all values.
func (b *DataBag) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.values = make(map[string]any)
}
