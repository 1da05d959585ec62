package hpack

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStaticTableLookup(t *testing.T) {
	f, ok := (&Table{dynamic: newDynamicTable(4096)}).Lookup(2)
	assert.True(t, ok)
	assert.Equal(t, ":method", f.Name)
	assert.Equal(t, "GET", f.Value)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	enc := NewEncoder(4096)
	dec := NewDecoder(4096)

	fields := []HeaderField{
		{Name: ":method", Value: "GET"},
		{Name: ":path", Value: "/index.html"},
		{Name: ":authority", Value: "www.example.com"},
		{Name: "custom-key", Value: "custom-value"},
		{Name: "authorization", Value: "secret-token", Sensitive: true},
	}

	var block []byte
	for _, f := range fields {
		block = enc.EncodeField(block, f)
	}

	got, err := dec.DecodeFragment(block)
	assert.NoError(t, err)
	assert.Len(t, got, len(fields))

	for i, f := range fields {
		assert.Equal(t, f.Name, got[i].Name)
		assert.Equal(t, f.Value, got[i].Value)
	}
}

func TestEncodeRepeatedFieldUsesDynamicTable(t *testing.T) {
	enc := NewEncoder(4096)

	f := HeaderField{Name: "custom-key", Value: "custom-value"}
	first := enc.EncodeField(nil, f)
	second := enc.EncodeField(nil, f)

	// second encoding hits the dynamic table: a single indexed byte with
	// the high bit set, much shorter than the first literal encoding.
	assert.True(t, len(second) < len(first))
	assert.True(t, second[0]&0x80 != 0)
}

func TestDynamicTableEviction(t *testing.T) {
	// Entries from the RFC 7541 C.5 example: date (65) and location (63)
	// fit a 160-byte table together; set-cookie (98) does not fit beside
	// either of them, so both older entries are evicted.
	dt := newDynamicTable(160)

	dt.Insert(HeaderField{Name: "date", Value: "Mon, 21 Oct 2013 20:13:21 GMT"})
	assert.Equal(t, 1, dt.Len())

	dt.Insert(HeaderField{Name: "location", Value: "https://www.example.com"})
	assert.Equal(t, 2, dt.Len())

	dt.Insert(HeaderField{Name: "set-cookie", Value: "foo=ASDJKHQKBZXOQWEOPIUAXQWEOIU; max-age=3600; version=1"})
	// the combined size now exceeds capacity, evicting the oldest two.
	assert.Equal(t, 1, dt.Len())

	got, ok := dt.Get(1)
	assert.True(t, ok)
	assert.Equal(t, "set-cookie", got.Name)
}

func TestDynamicTableSizeUpdateMustPrecedeFields(t *testing.T) {
	dec := NewDecoder(4096)

	// an indexed field followed by a dynamic table size update is invalid.
	block := AppendInt(nil, 7, 0x80, 2)
	block = AppendInt(block, 5, 0x20, 100)

	_, err := dec.DecodeFragment(block)
	assert.ErrorIs(t, err, ErrTableUpdateMisplaced)
}
