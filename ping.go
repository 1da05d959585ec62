package http2

import "sync"

var pingPool = sync.Pool{New: func() interface{} { return &Ping{} }}

// Ping measures round-trip time and sanity-checks the connection. Always
// exactly 8 bytes of opaque data.
//
// Flags: ACK.
//
// https://httpwg.org/specs/rfc9113.html#rfc.section.6.7
type Ping struct {
	ack  bool
	data [8]byte
}

func AcquirePing() *Ping {
	p := pingPool.Get().(*Ping)
	p.Reset()
	return p
}

func ReleasePing(p *Ping) {
	pingPool.Put(p)
}

func (p *Ping) Type() FrameType { return FramePing }

func (p *Ping) Reset() {
	p.ack = false
	p.data = [8]byte{}
}

func (p *Ping) IsAck() bool   { return p.ack }
func (p *Ping) SetAck(v bool) { p.ack = v }
func (p *Ping) Data() []byte  { return p.data[:] }
func (p *Ping) SetData(b []byte) {
	copy(p.data[:], b)
}

func (p *Ping) Deserialize(fh *FrameHeader, payload []byte) error {
	if len(payload) != 8 {
		return ErrInvalidFrameSize
	}
	p.ack = fh.Flags().Has(FlagAck)
	copy(p.data[:], payload)
	return nil
}

func (p *Ping) Serialize(dst []byte, fh *FrameHeader) []byte {
	flags := fh.Flags()
	if p.ack {
		flags |= FlagAck
	}
	fh.SetFlags(flags)
	return append(dst, p.data[:]...)
}
