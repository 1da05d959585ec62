// Package h2util holds the small byte-twiddling helpers shared by the frame
// codec and HPACK layers: big-endian integer conversions and frame padding.
package h2util

import (
	"errors"

	"github.com/valyala/fastrand"
)

// ErrPaddingTooLarge is returned by StripPadding when the declared pad length
// would consume more than the frame payload itself.
var ErrPaddingTooLarge = errors.New("h2util: pad length exceeds payload length")

func Uint24ToBytes(b []byte, n uint32) {
	_ = b[2]
	b[0] = byte(n >> 16)
	b[1] = byte(n >> 8)
	b[2] = byte(n)
}

func BytesToUint24(b []byte) uint32 {
	_ = b[2]
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
}

func Uint32ToBytes(b []byte, n uint32) {
	_ = b[3]
	b[0] = byte(n >> 24)
	b[1] = byte(n >> 16)
	b[2] = byte(n >> 8)
	b[3] = byte(n)
}

func BytesToUint32(b []byte) uint32 {
	_ = b[3]
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

func AppendUint32Bytes(dst []byte, n uint32) []byte {
	return append(dst, byte(n>>24), byte(n>>16), byte(n>>8), byte(n))
}

func AppendUint16Bytes(dst []byte, n uint16) []byte {
	return append(dst, byte(n>>8), byte(n))
}

// StripPadding removes the leading pad-length byte and the trailing padding
// bytes from a PADDED frame's payload, per RFC 9113 §6.1.
func StripPadding(payload []byte) ([]byte, error) {
	if len(payload) == 0 {
		return nil, ErrPaddingTooLarge
	}

	pad := int(payload[0])
	payload = payload[1:]

	if pad > len(payload) {
		return nil, ErrPaddingTooLarge
	}

	return payload[:len(payload)-pad], nil
}

// AddPadding prefixes b with a random pad length byte in [1, 255] and
// appends that many random bytes, for senders exercising PADDED.
func AddPadding(b []byte) []byte {
	n := int(fastrand.Uint32n(255)) + 1

	out := make([]byte, 0, len(b)+n+1)
	out = append(out, byte(n))
	out = append(out, b...)

	pad := make([]byte, n)
	for i := range pad {
		pad[i] = byte(fastrand.Uint32n(256))
	}

	return append(out, pad...)
}
