package hpack

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHuffmanEncodeWWWExampleCom(t *testing.T) {
	// RFC 7541 C.4.1
	want := []byte{0xf1, 0xe3, 0xc2, 0xe5, 0xf2, 0x3a, 0x6b, 0xa0, 0xab, 0x90, 0xf4, 0xff}
	got := AppendHuffman(nil, "www.example.com")
	assert.Equal(t, want, got)
}

func TestHuffmanRoundTrip(t *testing.T) {
	cases := []string{"", "www.example.com", "private", "date", "no-cache", "custom-key", "custom-value"}

	for _, s := range cases {
		enc := AppendHuffman(nil, s)
		dec, err := DecodeHuffman(nil, enc)
		assert.NoError(t, err)
		assert.Equal(t, s, string(dec))
	}
}

func TestHuffmanDecodeInvalidPadding(t *testing.T) {
	_, err := DecodeHuffman(nil, []byte{0x00})
	assert.Error(t, err)
}
