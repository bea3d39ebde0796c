package host

import "sync"

// Dropper is optionally implemented by resource values that need cleanup.
type Dropper interface {
	Drop()
}

// Table is an in-memory resource table with free-list handle reuse.
// Handle 0 is never issued.
type Table struct {
	entries  []tableEntry
	freeList []uint32
	mu       sync.Mutex
}

type tableEntry struct {
	value any
	valid bool
}

// NewTable creates an empty resource table.
func NewTable() *Table {
	return &Table{
		entries:  make([]tableEntry, 0, 64),
		freeList: make([]uint32, 0, 16),
	}
}

// Add stores a value and returns a stable handle.
func (t *Table) Add(value any) uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()

	e := tableEntry{value: value, valid: true}

	if len(t.freeList) > 0 {
		handle := t.freeList[len(t.freeList)-1]
		t.freeList = t.freeList[:len(t.freeList)-1]
		t.entries[handle-1] = e
		return handle
	}

	t.entries = append(t.entries, e)
	return uint32(len(t.entries))
}

// Get retrieves a value by handle.
func (t *Table) Get(handle uint32) (any, bool) {
	if handle == 0 {
		return nil, false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	idx := handle - 1
	if int(idx) >= len(t.entries) {
		return nil, false
	}
	e := t.entries[idx]
	if !e.valid {
		return nil, false
	}
	return e.value, true
}

// Remove drops a resource, calling Drop if the value implements Dropper,
// and returns (value, true) if found.
func (t *Table) Remove(handle uint32) (any, bool) {
	if handle == 0 {
		return nil, false
	}

	t.mu.Lock()
	idx := handle - 1
	if int(idx) >= len(t.entries) || !t.entries[idx].valid {
		t.mu.Unlock()
		return nil, false
	}

	value := t.entries[idx].value
	t.entries[idx] = tableEntry{}
	t.freeList = append(t.freeList, handle)
	t.mu.Unlock()

	if d, ok := value.(Dropper); ok {
		d.Drop()
	}
	return value, true
}

// Each iterates over all active resources in handle order.
func (t *Table) Each(fn func(handle uint32, value any) bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i, e := range t.entries {
		if e.valid {
			if !fn(uint32(i+1), e.value) {
				break
			}
		}
	}
}

// Len returns the number of active resources.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	count := 0
	for _, e := range t.entries {
		if e.valid {
			count++
		}
	}
	return count
}
