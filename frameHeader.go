package http2

import (
	"sync"

	"github.com/arlyon/h2engine/h2util"
)

const (
	// FrameHeaderLen is the fixed size of the common frame header.
	// https://httpwg.org/specs/rfc9113.html#FrameHeader
	FrameHeaderLen = 9

	defaultMaxFrameSize = 1 << 14
)

var frameHeaderPool = sync.Pool{
	New: func() interface{} {
		return &FrameHeader{}
	},
}

// FrameHeader is the 9-byte common header shared by every frame, paired
// with the typed Frame body it was (or will be) deserialized into.
//
// Use AcquireFrameHeader/ReleaseFrameHeader to pool instances; a
// FrameHeader must not be used from more than one goroutine at a time.
//
// https://httpwg.org/specs/rfc9113.html#FrameHeader
type FrameHeader struct {
	length int        // 24 bits
	kind   FrameType  // 8 bits
	flags  FrameFlags // 8 bits
	stream uint32     // 31 bits

	maxLen uint32
	fr     Frame
}

// AcquireFrameHeader gets a FrameHeader from the pool.
func AcquireFrameHeader() *FrameHeader {
	fh := frameHeaderPool.Get().(*FrameHeader)
	fh.Reset()
	return fh
}

// ReleaseFrameHeader releases fh's body back to its pool and returns fh
// itself to the FrameHeader pool.
func ReleaseFrameHeader(fh *FrameHeader) {
	if fh.fr != nil {
		ReleaseFrame(fh.fr)
	}
	frameHeaderPool.Put(fh)
}

func (fh *FrameHeader) Reset() {
	fh.kind = 0
	fh.flags = 0
	fh.stream = 0
	fh.length = 0
	fh.maxLen = defaultMaxFrameSize
	fh.fr = nil
}

func (fh *FrameHeader) Type() FrameType    { return fh.kind }
func (fh *FrameHeader) Flags() FrameFlags  { return fh.flags }
func (fh *FrameHeader) Stream() uint32     { return fh.stream }
func (fh *FrameHeader) Len() int           { return fh.length }
func (fh *FrameHeader) MaxLen() uint32     { return fh.maxLen }
func (fh *FrameHeader) Body() Frame        { return fh.fr }

func (fh *FrameHeader) SetFlags(flags FrameFlags) { fh.flags = flags }
func (fh *FrameHeader) SetStream(stream uint32)   { fh.stream = stream & (1<<31 - 1) }
func (fh *FrameHeader) SetMaxLen(n uint32)        { fh.maxLen = n }

func (fh *FrameHeader) SetBody(fr Frame) {
	if fr == nil {
		panic("http2: FrameHeader.SetBody called with nil")
	}
	fh.kind = fr.Type()
	fh.fr = fr
}

// peekFrameHeader parses the 9-byte common header from the front of b
// without consuming anything from a reassembly buffer; the caller decides
// how many bytes were used.
func peekFrameHeader(fh *FrameHeader, b []byte) {
	fh.length = int(h2util.BytesToUint24(b[:3]))
	fh.kind = FrameType(b[3])
	fh.flags = FrameFlags(b[4])
	fh.stream = h2util.BytesToUint32(b[5:9]) & (1<<31 - 1)
}

// appendHeader serializes fh's 9-byte common header (length already set by
// the caller to len(payload)) to dst.
func (fh *FrameHeader) appendHeader(dst []byte) []byte {
	var b [FrameHeaderLen]byte
	h2util.Uint24ToBytes(b[:3], uint32(fh.length))
	b[3] = byte(fh.kind)
	b[4] = byte(fh.flags)
	h2util.Uint32ToBytes(b[5:9], fh.stream)
	return append(dst, b[:]...)
}
