package http2

import (
	"fmt"
	"sync"

	"github.com/arlyon/h2engine/h2util"
)

var goAwayPool = sync.Pool{New: func() interface{} { return &GoAway{} }}

// GoAway begins graceful shutdown, reporting the last stream id the sender
// will process. At least 8 bytes.
//
// https://httpwg.org/specs/rfc9113.html#rfc.section.6.8
type GoAway struct {
	lastStreamID uint32
	code         ErrorCode
	debugData    []byte
}

func AcquireGoAway() *GoAway {
	ga := goAwayPool.Get().(*GoAway)
	ga.Reset()
	return ga
}

func ReleaseGoAway(ga *GoAway) {
	goAwayPool.Put(ga)
}

func (ga *GoAway) Type() FrameType { return FrameGoAway }

func (ga *GoAway) Reset() {
	ga.lastStreamID = 0
	ga.code = 0
	ga.debugData = ga.debugData[:0]
}

func (ga *GoAway) String() string {
	return fmt.Sprintf("last_stream_id=%d code=%s", ga.lastStreamID, ga.code)
}

func (ga *GoAway) LastStreamID() uint32     { return ga.lastStreamID }
func (ga *GoAway) SetLastStreamID(id uint32) { ga.lastStreamID = id & (1<<31 - 1) }
func (ga *GoAway) Code() ErrorCode          { return ga.code }
func (ga *GoAway) SetCode(code ErrorCode)   { ga.code = code }
func (ga *GoAway) DebugData() []byte        { return ga.debugData }
func (ga *GoAway) SetDebugData(b []byte)    { ga.debugData = append(ga.debugData[:0], b...) }

func (ga *GoAway) Deserialize(fh *FrameHeader, payload []byte) error {
	if len(payload) < 8 {
		return ErrInvalidFrameSize
	}

	ga.lastStreamID = h2util.BytesToUint32(payload[:4]) & (1<<31 - 1)
	ga.code = ErrorCode(h2util.BytesToUint32(payload[4:8]))

	if len(payload) > 8 {
		ga.debugData = append(ga.debugData[:0], payload[8:]...)
	}

	return nil
}

func (ga *GoAway) Serialize(dst []byte, fh *FrameHeader) []byte {
	dst = h2util.AppendUint32Bytes(dst, ga.lastStreamID)
	dst = h2util.AppendUint32Bytes(dst, uint32(ga.code))
	return append(dst, ga.debugData...)
}
