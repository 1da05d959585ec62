package hpack

import "errors"

// Codec-internal error kinds. The protocol driver classifies these into
// RFC 9113 stream/connection errors; none of them is ever silently
// swallowed inside this package.
var (
	ErrIncompleteData       = errors.New("hpack: incomplete data")
	ErrInvalidIndex         = errors.New("hpack: invalid table index")
	ErrInvalidEncoding      = errors.New("hpack: invalid integer encoding")
	ErrInvalidString        = errors.New("hpack: invalid huffman string")
	ErrHeaderTooLarge       = errors.New("hpack: header list exceeds max size")
	ErrTableUpdateMisplaced = errors.New("hpack: dynamic table size update must precede header fields")
	ErrTableSizeTooLarge    = errors.New("hpack: dynamic table size update exceeds negotiated limit")
)
