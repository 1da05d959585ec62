package hpack

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppendIntSmall(t *testing.T) {
	dst := AppendInt(nil, 5, 0x00, 10)
	assert.Equal(t, []byte{10}, dst)
}

func TestAppendIntLarge(t *testing.T) {
	// RFC 7541 C.1.2: 1337 encoded with a 5-bit prefix.
	dst := AppendInt(nil, 5, 0x00, 1337)
	assert.Equal(t, []byte{31, 154, 10}, dst)
}

func TestReadIntRoundTrip(t *testing.T) {
	for _, n := range []uint64{0, 15, 127, 1337, 1 << 20} {
		dst := AppendInt(nil, 7, 0x80, n)
		got, rest, err := ReadInt(7, dst)
		assert.NoError(t, err)
		assert.Equal(t, n, got)
		assert.Empty(t, rest)
	}
}

func TestReadIntIncomplete(t *testing.T) {
	_, _, err := ReadInt(5, []byte{31, 154})
	assert.ErrorIs(t, err, ErrIncompleteData)
}

func TestReadIntOverflow(t *testing.T) {
	huge := []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x7f}
	_, _, err := ReadInt(8, huge)
	assert.ErrorIs(t, err, ErrIntegerOverflow)
}
