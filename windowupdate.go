package http2

import (
	"sync"

	"github.com/arlyon/h2engine/h2util"
)

var windowUpdatePool = sync.Pool{New: func() interface{} { return &WindowUpdate{} }}

// WindowUpdate replenishes a flow-control window, stream-scoped or (on
// stream id 0) connection-scoped. Exactly 4 bytes; increment must be > 0.
//
// https://httpwg.org/specs/rfc9113.html#rfc.section.6.9
type WindowUpdate struct {
	increment uint32
}

func AcquireWindowUpdate() *WindowUpdate {
	wu := windowUpdatePool.Get().(*WindowUpdate)
	wu.Reset()
	return wu
}

func ReleaseWindowUpdate(wu *WindowUpdate) {
	windowUpdatePool.Put(wu)
}

func (wu *WindowUpdate) Type() FrameType { return FrameWindowUpdate }
func (wu *WindowUpdate) Reset()          { wu.increment = 0 }
func (wu *WindowUpdate) Increment() uint32 { return wu.increment }
func (wu *WindowUpdate) SetIncrement(n uint32) { wu.increment = n & (1<<31 - 1) }

func (wu *WindowUpdate) Deserialize(fh *FrameHeader, payload []byte) error {
	if len(payload) != 4 {
		return ErrInvalidFrameSize
	}

	wu.increment = h2util.BytesToUint32(payload) & (1<<31 - 1)
	if wu.increment == 0 {
		return ErrInvalidWindow
	}

	return nil
}

func (wu *WindowUpdate) Serialize(dst []byte, fh *FrameHeader) []byte {
	return h2util.AppendUint32Bytes(dst, wu.increment)
}
