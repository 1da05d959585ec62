package hpack

// Decoder parses header block fragments against its own Table, the decoding
// partner of a peer's Encoder. One Decoder per connection direction.
type Decoder struct {
	table             *Table
	maxHeaderListSize uint32 // 0 means unlimited
}

// NewDecoder builds a Decoder whose dynamic table starts at maxTableSize.
func NewDecoder(maxTableSize uint32) *Decoder {
	return &Decoder{table: NewTable(maxTableSize)}
}

// SetMaxDynamicTableSize updates the ceiling this side will enforce against
// a peer's dynamic table size update, mirroring our own advertised
// SETTINGS_HEADER_TABLE_SIZE.
func (d *Decoder) SetMaxDynamicTableSize(n uint32) {
	d.table.SetMaxSize(n)
}

// SetMaxHeaderListSize bounds the total decoded size (RFC 7541 §4.1-style
// accounting: name+value+32 per field) a single DecodeFragment call accepts,
// mirroring SETTINGS_MAX_HEADER_LIST_SIZE. 0 disables the check.
func (d *Decoder) SetMaxHeaderListSize(n uint32) {
	d.maxHeaderListSize = n
}

// DecodeFragment parses a complete header block fragment (the reassembled
// payload of HEADERS/CONTINUATION with padding already stripped) into an
// ordered list of header fields.
func (d *Decoder) DecodeFragment(b []byte) ([]HeaderField, error) {
	var fields []HeaderField
	var total uint32
	seenField := false

	for len(b) > 0 {
		first := b[0]

		switch {
		case first&0x80 != 0: // indexed header field, 1xxxxxxx
			idx, rest, err := ReadInt(7, b)
			if err != nil {
				return nil, err
			}
			if idx == 0 {
				return nil, ErrInvalidIndex
			}
			f, ok := d.table.Lookup(int(idx))
			if !ok {
				return nil, ErrInvalidIndex
			}
			b = rest
			seenField = true
			fields, total, err = appendField(fields, total, f, d.maxHeaderListSize)
			if err != nil {
				return nil, err
			}

		case first&0x40 != 0: // literal with incremental indexing, 01xxxxxx
			f, rest, err := d.readLiteral(b, 6)
			if err != nil {
				return nil, err
			}
			d.table.Insert(f)
			b = rest
			seenField = true
			fields, total, err = appendField(fields, total, f, d.maxHeaderListSize)
			if err != nil {
				return nil, err
			}

		case first&0x20 != 0: // dynamic table size update, 001xxxxx
			if seenField {
				return nil, ErrTableUpdateMisplaced
			}
			n, rest, err := ReadInt(5, b)
			if err != nil {
				return nil, err
			}
			if err := d.table.SetSize(uint32(n)); err != nil {
				return nil, err
			}
			b = rest

		case first&0x10 != 0: // literal never indexed, 0001xxxx
			f, rest, err := d.readLiteral(b, 4)
			if err != nil {
				return nil, err
			}
			f.Sensitive = true
			b = rest
			seenField = true
			fields, total, err = appendField(fields, total, f, d.maxHeaderListSize)
			if err != nil {
				return nil, err
			}

		default: // literal without indexing, 0000xxxx
			f, rest, err := d.readLiteral(b, 4)
			if err != nil {
				return nil, err
			}
			b = rest
			seenField = true
			fields, total, err = appendField(fields, total, f, d.maxHeaderListSize)
			if err != nil {
				return nil, err
			}
		}
	}

	return fields, nil
}

func appendField(fields []HeaderField, total uint32, f HeaderField, max uint32) ([]HeaderField, uint32, error) {
	total += f.Size()
	if max != 0 && total > max {
		return nil, 0, ErrHeaderTooLarge
	}
	return append(fields, f), total, nil
}

// readLiteral reads a literal representation's index/name and value, given
// the representation's prefix width n (4 or 6 bits).
func (d *Decoder) readLiteral(b []byte, n uint) (HeaderField, []byte, error) {
	idx, rest, err := ReadInt(n, b)
	if err != nil {
		return HeaderField{}, nil, err
	}
	b = rest

	var name string
	if idx == 0 {
		name, b, err = d.readString(b)
		if err != nil {
			return HeaderField{}, nil, err
		}
	} else {
		existing, ok := d.table.Lookup(int(idx))
		if !ok {
			return HeaderField{}, nil, ErrInvalidIndex
		}
		name = existing.Name
	}

	value, b, err := d.readString(b)
	if err != nil {
		return HeaderField{}, nil, err
	}

	return HeaderField{Name: name, Value: value}, b, nil
}

func (d *Decoder) readString(b []byte) (string, []byte, error) {
	if len(b) == 0 {
		return "", nil, ErrIncompleteData
	}

	huff := b[0]&0x80 != 0
	n, rest, err := ReadInt(7, b)
	if err != nil {
		return "", nil, err
	}

	if uint64(len(rest)) < n {
		return "", nil, ErrIncompleteData
	}

	raw := rest[:n]
	b = rest[n:]

	if !huff {
		return string(raw), b, nil
	}

	decoded, err := DecodeHuffman(nil, raw)
	if err != nil {
		return "", nil, err
	}

	return string(decoded), b, nil
}
