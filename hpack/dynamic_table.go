package hpack

// dynamicTable is the per-connection-direction FIFO table of RFC 7541 §2.3.2.
// Entries are added at the front (most-recently-added is index 1, relative
// to the static table's 61 entries) and evicted from the back once the
// accounted size exceeds the negotiated capacity.
//
// entries[0] is the most recently inserted field; eviction removes from the
// tail (entries[len-1]).
type dynamicTable struct {
	entries     []HeaderField
	size        uint32 // sum of entries[i].Size()
	capacity    uint32 // current negotiated maximum, <= maxCapacity
	maxCapacity uint32 // ceiling set by SETTINGS_HEADER_TABLE_SIZE, cannot be exceeded by a dynamic update
}

func newDynamicTable(maxCapacity uint32) *dynamicTable {
	return &dynamicTable{capacity: maxCapacity, maxCapacity: maxCapacity}
}

// Len returns the number of entries currently held.
func (t *dynamicTable) Len() int {
	return len(t.entries)
}

// Get returns the entry at 1-based relative index idx (1 = most recently
// added), as used once the caller has already subtracted the static table's
// 61 entries from the wire index.
func (t *dynamicTable) Get(idx int) (HeaderField, bool) {
	if idx < 1 || idx > len(t.entries) {
		return HeaderField{}, false
	}
	return t.entries[idx-1], true
}

// Insert adds a new field at the front, evicting from the tail until the
// table fits within capacity. An entry larger than the whole table clears
// the table and is not stored, per RFC 7541 §4.4.
func (t *dynamicTable) Insert(f HeaderField) {
	sz := f.Size()

	for t.size+sz > t.capacity && len(t.entries) > 0 {
		evicted := t.entries[len(t.entries)-1]
		t.entries = t.entries[:len(t.entries)-1]
		t.size -= evicted.Size()
	}

	if sz > t.capacity {
		return
	}

	t.entries = append([]HeaderField{f}, t.entries...)
	t.size += sz
}

// SetCapacity applies a dynamic table size update (RFC 7541 §6.3), evicting
// as needed. A newCap above maxCapacity is rejected with
// ErrTableSizeTooLarge.
func (t *dynamicTable) SetCapacity(newCap uint32) error {
	if newCap > t.maxCapacity {
		return ErrTableSizeTooLarge
	}

	t.capacity = newCap
	for t.size > t.capacity && len(t.entries) > 0 {
		evicted := t.entries[len(t.entries)-1]
		t.entries = t.entries[:len(t.entries)-1]
		t.size -= evicted.Size()
	}

	return nil
}

// SetMaxCapacity updates the ceiling enforced by SetCapacity, called when
// SETTINGS_HEADER_TABLE_SIZE changes. If the current capacity exceeds n, it
// is lowered to n and entries are evicted from the tail until they fit.
func (t *dynamicTable) SetMaxCapacity(n uint32) {
	t.maxCapacity = n
	if t.capacity > n {
		t.capacity = n
		for t.size > t.capacity && len(t.entries) > 0 {
			evicted := t.entries[len(t.entries)-1]
			t.entries = t.entries[:len(t.entries)-1]
			t.size -= evicted.Size()
		}
	}
}
