package hpack

// Encoder serializes header fields against its own Table, the encoding
// partner of a peer's Decoder. One Encoder per connection direction.
type Encoder struct {
	table       *Table
	huffman     bool
	pendingSize *uint32 // set by SetMaxDynamicTableSize, consumed by next EncodeField
}

// NewEncoder builds an Encoder whose dynamic table starts at maxTableSize,
// with Huffman coding enabled for literal strings.
func NewEncoder(maxTableSize uint32) *Encoder {
	return &Encoder{table: NewTable(maxTableSize), huffman: true}
}

// SetMaxDynamicTableSize arranges for the next EncodeField call to emit a
// dynamic table size update (RFC 7541 §6.3) before the header representation,
// reflecting a SETTINGS_HEADER_TABLE_SIZE change accepted from the peer.
func (e *Encoder) SetMaxDynamicTableSize(n uint32) {
	e.table.SetMaxSize(n)
	e.pendingSize = &n
}

// EncodeField appends f's HPACK representation to dst, choosing indexed,
// literal-with-incremental-indexing, or literal-never-indexed (for
// Sensitive fields) per
// RFC 7541 §4.4 / §6.2, and updates the dynamic table accordingly.
func (e *Encoder) EncodeField(dst []byte, f HeaderField) []byte {
	if e.pendingSize != nil {
		dst = AppendInt(dst, 5, 0x20, uint64(*e.pendingSize))
		e.pendingSize = nil
	}

	idx, matchedValue, found := e.table.findIndex(f)

	if found && matchedValue && !f.Sensitive {
		return AppendInt(dst, 7, 0x80, uint64(idx))
	}

	if f.Sensitive {
		dst = e.appendLiteral(dst, 4, 0x10, idx, found, f)
		return dst
	}

	dst = e.appendLiteral(dst, 6, 0x40, idx, found, f)
	e.table.Insert(HeaderField{Name: f.Name, Value: f.Value})
	return dst
}

func (e *Encoder) appendLiteral(dst []byte, n uint, prefix byte, idx int, found bool, f HeaderField) []byte {
	if found {
		dst = AppendInt(dst, n, prefix, uint64(idx))
	} else {
		dst = AppendInt(dst, n, prefix, 0)
		dst = e.appendString(dst, f.Name)
	}
	return e.appendString(dst, f.Value)
}

func (e *Encoder) appendString(dst []byte, s string) []byte {
	if !e.huffman {
		dst = AppendInt(dst, 7, 0x00, uint64(len(s)))
		return append(dst, s...)
	}

	hlen := EncodedLen(s)
	if hlen >= len(s) {
		dst = AppendInt(dst, 7, 0x00, uint64(len(s)))
		return append(dst, s...)
	}

	dst = AppendInt(dst, 7, 0x80, uint64(hlen))
	return AppendHuffman(dst, s)
}
