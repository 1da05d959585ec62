package http2

import "sync"

var continuationPool = sync.Pool{New: func() interface{} { return &Continuation{} }}

// Continuation carries an additional fragment of a header block begun by
// HEADERS or PUSH_PROMISE.
//
// Flags: END_HEADERS.
//
// https://httpwg.org/specs/rfc9113.html#rfc.section.6.10
type Continuation struct {
	endHeaders bool
	rawHeaders []byte
}

func AcquireContinuation() *Continuation {
	c := continuationPool.Get().(*Continuation)
	c.Reset()
	return c
}

func ReleaseContinuation(c *Continuation) {
	continuationPool.Put(c)
}

func (c *Continuation) Type() FrameType { return FrameContinuation }

func (c *Continuation) Reset() {
	c.endHeaders = false
	c.rawHeaders = c.rawHeaders[:0]
}

func (c *Continuation) HeaderBlockFragment() []byte { return c.rawHeaders }
func (c *Continuation) SetHeaderBlockFragment(b []byte) {
	c.rawHeaders = append(c.rawHeaders[:0], b...)
}
func (c *Continuation) EndHeaders() bool     { return c.endHeaders }
func (c *Continuation) SetEndHeaders(v bool) { c.endHeaders = v }

func (c *Continuation) Deserialize(fh *FrameHeader, payload []byte) error {
	c.endHeaders = fh.Flags().Has(FlagEndHeaders)
	c.rawHeaders = append(c.rawHeaders[:0], payload...)
	return nil
}

func (c *Continuation) Serialize(dst []byte, fh *FrameHeader) []byte {
	flags := fh.Flags()
	if c.endHeaders {
		flags |= FlagEndHeaders
	}
	fh.SetFlags(flags)
	return append(dst, c.rawHeaders...)
}
