package hpack

// Table resolves HPACK indices across the static table (indices 1-61) and a
// per-direction dynamic table (indices 62+), per RFC 7541 §2.3.3.
type Table struct {
	dynamic *dynamicTable
}

// NewTable builds a Table with a dynamic table capped at maxSize bytes,
// the initial SETTINGS_HEADER_TABLE_SIZE value (default 4096).
func NewTable(maxSize uint32) *Table {
	return &Table{dynamic: newDynamicTable(maxSize)}
}

// Lookup resolves a 1-based wire index to a header field.
func (t *Table) Lookup(idx int) (HeaderField, bool) {
	if idx < 1 {
		return HeaderField{}, false
	}
	if idx <= staticTableSize {
		return staticTable[idx-1], true
	}
	return t.dynamic.Get(idx - staticTableSize)
}

// Insert adds a field to the dynamic table, for post-emission/decode-time
// indexing per the representation's indexing flag.
func (t *Table) Insert(f HeaderField) {
	t.dynamic.Insert(f)
}

// SetSize applies a dynamic table size update from the wire.
func (t *Table) SetSize(n uint32) error {
	return t.dynamic.SetCapacity(n)
}

// SetMaxSize updates the negotiated ceiling (SETTINGS_HEADER_TABLE_SIZE).
func (t *Table) SetMaxSize(n uint32) {
	t.dynamic.SetMaxCapacity(n)
}

// findIndex looks for an encoder match: exact (name, value) match preferred
// over name-only. Returns (index, matchedValue, found).
func (t *Table) findIndex(f HeaderField) (idx int, matchedValue bool, found bool) {
	if i, ok := staticFullIndex[HeaderField{Name: f.Name, Value: f.Value}]; ok {
		return i, true, true
	}

	for i, e := range t.dynamic.entries {
		if e.Name == f.Name && e.Value == f.Value {
			return staticTableSize + i + 1, true, true
		}
	}

	if i, ok := staticNameIndex[f.Name]; ok {
		return i, false, true
	}

	for i, e := range t.dynamic.entries {
		if e.Name == f.Name {
			return staticTableSize + i + 1, false, true
		}
	}

	return 0, false, false
}
