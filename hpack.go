package http2

import "github.com/arlyon/h2engine/hpack"

// HeaderField aliases the hpack package's header triple so callers of this
// package never need to import hpack directly for the common case.
type HeaderField = hpack.HeaderField
