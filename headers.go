package http2

import (
	"sync"

	"github.com/arlyon/h2engine/h2util"
)

var headersPool = sync.Pool{New: func() interface{} { return &Headers{} }}

// Headers opens or continues a stream, carrying an HPACK-encoded header
// block fragment and optionally priority information.
//
// Flags: END_STREAM, END_HEADERS, PADDED, PRIORITY.
//
// https://httpwg.org/specs/rfc9113.html#rfc.section.6.2
type Headers struct {
	padded      bool
	priority    bool
	exclusive   bool
	streamDep   uint32
	weight      uint8
	endStream   bool
	endHeaders  bool
	rawHeaders  []byte
}

func AcquireHeaders() *Headers {
	h := headersPool.Get().(*Headers)
	h.Reset()
	return h
}

func ReleaseHeaders(h *Headers) {
	headersPool.Put(h)
}

func (h *Headers) Type() FrameType { return FrameHeaders }

func (h *Headers) Reset() {
	h.padded = false
	h.priority = false
	h.exclusive = false
	h.streamDep = 0
	h.weight = 0
	h.endStream = false
	h.endHeaders = false
	h.rawHeaders = h.rawHeaders[:0]
}

func (h *Headers) HeaderBlockFragment() []byte { return h.rawHeaders }
func (h *Headers) SetHeaderBlockFragment(b []byte) {
	h.rawHeaders = append(h.rawHeaders[:0], b...)
}
func (h *Headers) AppendHeaderBlockFragment(b []byte) {
	h.rawHeaders = append(h.rawHeaders, b...)
}

func (h *Headers) EndStream() bool         { return h.endStream }
func (h *Headers) SetEndStream(v bool)     { h.endStream = v }
func (h *Headers) EndHeaders() bool        { return h.endHeaders }
func (h *Headers) SetEndHeaders(v bool)    { h.endHeaders = v }
func (h *Headers) Padding() bool           { return h.padded }
func (h *Headers) SetPadding(v bool)       { h.padded = v }
func (h *Headers) HasPriority() bool       { return h.priority }
func (h *Headers) StreamDep() uint32       { return h.streamDep }
func (h *Headers) Exclusive() bool         { return h.exclusive }
func (h *Headers) Weight() uint8           { return h.weight }

func (h *Headers) SetPriority(streamDep uint32, weight uint8, exclusive bool) {
	h.priority = true
	h.streamDep = streamDep
	h.weight = weight
	h.exclusive = exclusive
}

func (h *Headers) Deserialize(fh *FrameHeader, payload []byte) error {
	flags := fh.Flags()

	if flags.Has(FlagPadded) {
		var err error
		payload, err = h2util.StripPadding(payload)
		if err != nil {
			return err
		}
	}

	if flags.Has(FlagPriority) {
		if len(payload) < 5 {
			return ErrInvalidFrameSize
		}
		dep := h2util.BytesToUint32(payload[:4])
		h.exclusive = dep&0x80000000 != 0
		h.streamDep = dep & (1<<31 - 1)
		h.weight = payload[4]
		h.priority = true
		payload = payload[5:]
	}

	h.endStream = flags.Has(FlagEndStream)
	h.endHeaders = flags.Has(FlagEndHeaders)
	h.rawHeaders = append(h.rawHeaders[:0], payload...)

	return nil
}

func (h *Headers) Serialize(dst []byte, fh *FrameHeader) []byte {
	flags := fh.Flags()
	if h.endStream {
		flags |= FlagEndStream
	}
	if h.endHeaders {
		flags |= FlagEndHeaders
	}

	body := h.rawHeaders

	if h.priority {
		flags |= FlagPriority
		var pri [5]byte
		dep := h.streamDep
		if h.exclusive {
			dep |= 0x80000000
		}
		h2util.Uint32ToBytes(pri[:4], dep)
		pri[4] = h.weight
		dst = append(dst, pri[:]...)
	}

	dst = append(dst, body...)

	if h.padded {
		flags |= FlagPadded
		dst = h2util.AddPadding(dst)
	}

	fh.SetFlags(flags)
	return dst
}
