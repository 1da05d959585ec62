package hpack

import "errors"

// ErrIntegerOverflow is returned when a variable-length integer would
// exceed the decoder's compression-bomb guard (2^30, RFC 7541 §5.1 does
// not mandate this exact bound, but every production decoder enforces
// one to keep a single octet from expanding into an unbounded value).
var ErrIntegerOverflow = errors.New("hpack: integer exceeds maximum allowed value")

const maxInt = 1 << 30

// AppendInt encodes i into dst using an N-bit prefix, per RFC 7541 §5.1.
// prefix holds the high bits already shifted into position (e.g. 0x80 for
// an indexed header field); n is the prefix width in bits, 1 <= n <= 8.
func AppendInt(dst []byte, n uint, prefix byte, i uint64) []byte {
	m := uint64(1<<n) - 1

	if i < m {
		return append(dst, prefix|byte(i))
	}

	dst = append(dst, prefix|byte(m))
	i -= m

	for i >= 128 {
		dst = append(dst, byte(i&0x7f)|0x80)
		i >>= 7
	}

	return append(dst, byte(i))
}

// ReadInt decodes an N-bit-prefix integer from the head of b, returning the
// value, the bytes following it, and any error. The representation's
// leading flag bits may still be set in b[0]; only its low n bits are
// consulted.
func ReadInt(n uint, b []byte) (value uint64, rest []byte, err error) {
	if len(b) == 0 {
		return 0, b, ErrIncompleteData
	}

	m := uint64(1<<n) - 1
	value = uint64(b[0]) & m
	b = b[1:]

	if value < m {
		return value, b, nil
	}

	var shift uint
	for {
		if len(b) == 0 {
			return 0, b, ErrIncompleteData
		}

		c := b[0]
		b = b[1:]

		if shift >= 63 {
			return 0, b, ErrIntegerOverflow
		}

		add := uint64(c&0x7f) << shift
		if value > maxInt || add > maxInt {
			return 0, b, ErrIntegerOverflow
		}

		value += add
		if value > maxInt {
			return 0, b, ErrIntegerOverflow
		}

		if c&0x80 == 0 {
			break
		}

		shift += 7
	}

	return value, b, nil
}
