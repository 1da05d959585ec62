package http2

import (
	"sync"

	"github.com/arlyon/h2engine/h2util"
)

var rstStreamPool = sync.Pool{New: func() interface{} { return &RSTStream{} }}

// RSTStream immediately terminates a stream. Exactly 4 bytes.
//
// https://httpwg.org/specs/rfc9113.html#rfc.section.6.4
type RSTStream struct {
	code ErrorCode
}

func AcquireRSTStream() *RSTStream {
	r := rstStreamPool.Get().(*RSTStream)
	r.Reset()
	return r
}

func ReleaseRSTStream(r *RSTStream) {
	rstStreamPool.Put(r)
}

func (r *RSTStream) Type() FrameType { return FrameRSTStream }
func (r *RSTStream) Reset()          { r.code = 0 }
func (r *RSTStream) Code() ErrorCode { return r.code }
func (r *RSTStream) SetCode(c ErrorCode) { r.code = c }

func (r *RSTStream) Deserialize(fh *FrameHeader, payload []byte) error {
	if len(payload) != 4 {
		return ErrInvalidFrameSize
	}
	r.code = ErrorCode(h2util.BytesToUint32(payload))
	return nil
}

func (r *RSTStream) Serialize(dst []byte, fh *FrameHeader) []byte {
	return h2util.AppendUint32Bytes(dst, uint32(r.code))
}
