package qua

// Allocator is the deduplicating registry of device resources for a
// single compilation pass. Emission may visit the same logical resource
// through several reference paths; the allocator guarantees its
// declaration happens exactly once.
//
// Compilation is strictly sequential, so the allocator is not safe for
// concurrent use and does not need to be.
type Allocator struct {
	entries map[string]any
	order   []string
}

// NewAllocator returns an empty allocator. A fresh allocator must be used
// for every compilation pass; state is never reused across passes.
func NewAllocator() *Allocator {
	return &Allocator{entries: make(map[string]any)}
}

// GetOrCreate returns the handle stored under key, calling factory to
// produce and store it on first use.
func (a *Allocator) GetOrCreate(key string, factory func() any) any {
	if h, ok := a.entries[key]; ok {
		return h
	}
	h := factory()
	a.entries[key] = h
	a.order = append(a.order, key)
	return h
}

// Has reports whether key has already been allocated.
func (a *Allocator) Has(key string) bool {
	_, ok := a.entries[key]
	return ok
}

// Keys returns all allocated keys in first-allocation order.
func (a *Allocator) Keys() []string {
	out := make([]string, len(a.order))
	copy(out, a.order)
	return out
}

// Len returns the number of allocated resources.
func (a *Allocator) Len() int { return len(a.order) }
