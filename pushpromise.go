package http2

import (
	"sync"

	"github.com/arlyon/h2engine/h2util"
)

var pushPromisePool = sync.Pool{New: func() interface{} { return &PushPromise{} }}

// PushPromise reserves a stream for a server-initiated push. Parsed and
// stored per §4.6; the driver never generates one (server push generation
// is out of scope).
//
// Flags: END_HEADERS, PADDED.
//
// https://httpwg.org/specs/rfc9113.html#rfc.section.6.6
type PushPromise struct {
	padded      bool
	endHeaders  bool
	promisedID  uint32
	rawHeaders  []byte
}

func AcquirePushPromise() *PushPromise {
	pp := pushPromisePool.Get().(*PushPromise)
	pp.Reset()
	return pp
}

func ReleasePushPromise(pp *PushPromise) {
	pushPromisePool.Put(pp)
}

func (pp *PushPromise) Type() FrameType { return FramePushPromise }

func (pp *PushPromise) Reset() {
	pp.padded = false
	pp.endHeaders = false
	pp.promisedID = 0
	pp.rawHeaders = pp.rawHeaders[:0]
}

func (pp *PushPromise) PromisedStreamID() uint32     { return pp.promisedID }
func (pp *PushPromise) SetPromisedStreamID(id uint32) { pp.promisedID = id & (1<<31 - 1) }
func (pp *PushPromise) EndHeaders() bool             { return pp.endHeaders }
func (pp *PushPromise) SetEndHeaders(v bool)         { pp.endHeaders = v }
func (pp *PushPromise) HeaderBlockFragment() []byte  { return pp.rawHeaders }
func (pp *PushPromise) SetHeaderBlockFragment(b []byte) {
	pp.rawHeaders = append(pp.rawHeaders[:0], b...)
}

func (pp *PushPromise) Deserialize(fh *FrameHeader, payload []byte) error {
	if fh.Flags().Has(FlagPadded) {
		var err error
		payload, err = h2util.StripPadding(payload)
		if err != nil {
			return err
		}
	}

	if len(payload) < 4 {
		return ErrInvalidFrameSize
	}

	pp.promisedID = h2util.BytesToUint32(payload[:4]) & (1<<31 - 1)
	pp.rawHeaders = append(pp.rawHeaders[:0], payload[4:]...)
	pp.endHeaders = fh.Flags().Has(FlagEndHeaders)

	return nil
}

func (pp *PushPromise) Serialize(dst []byte, fh *FrameHeader) []byte {
	flags := fh.Flags()
	if pp.endHeaders {
		flags |= FlagEndHeaders
	}

	dst = h2util.AppendUint32Bytes(dst, pp.promisedID)
	dst = append(dst, pp.rawHeaders...)

	if pp.padded {
		flags |= FlagPadded
		dst = h2util.AddPadding(dst)
	}

	fh.SetFlags(flags)
	return dst
}
