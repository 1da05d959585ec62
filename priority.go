package http2

import (
	"sync"

	"github.com/arlyon/h2engine/h2util"
)

var priorityPool = sync.Pool{New: func() interface{} { return &Priority{} }}

// Priority advises a stream's relative ordering. Exactly 5 bytes.
//
// https://httpwg.org/specs/rfc9113.html#rfc.section.6.3
type Priority struct {
	streamDep uint32
	exclusive bool
	weight    byte
}

func AcquirePriority() *Priority {
	p := priorityPool.Get().(*Priority)
	p.Reset()
	return p
}

func ReleasePriority(p *Priority) {
	priorityPool.Put(p)
}

func (p *Priority) Type() FrameType { return FramePriority }

func (p *Priority) Reset() {
	p.streamDep = 0
	p.exclusive = false
	p.weight = 0
}

func (p *Priority) StreamDep() uint32   { return p.streamDep }
func (p *Priority) Exclusive() bool     { return p.exclusive }
func (p *Priority) Weight() byte        { return p.weight }
func (p *Priority) SetWeight(w byte)    { p.weight = w }
func (p *Priority) SetStreamDep(s uint32, excl bool) {
	p.streamDep = s & (1<<31 - 1)
	p.exclusive = excl
}

func (p *Priority) Deserialize(fh *FrameHeader, payload []byte) error {
	if len(payload) != 5 {
		return ErrInvalidFrameSize
	}

	dep := h2util.BytesToUint32(payload[:4])
	p.exclusive = dep&0x80000000 != 0
	p.streamDep = dep & (1<<31 - 1)
	p.weight = payload[4]

	return nil
}

func (p *Priority) Serialize(dst []byte, fh *FrameHeader) []byte {
	dep := p.streamDep
	if p.exclusive {
		dep |= 0x80000000
	}
	dst = h2util.AppendUint32Bytes(dst, dep)
	return append(dst, p.weight)
}
