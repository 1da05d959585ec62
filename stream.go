package http2

import "github.com/valyala/bytebufferpool"

// StreamState is one of the seven states of RFC 9113 §5.1's stream state
// machine (§4.8).
type StreamState int8

const (
	StreamIdle StreamState = iota
	StreamReservedLocal
	StreamReservedRemote
	StreamOpen
	StreamHalfClosedLocal
	StreamHalfClosedRemote
	StreamClosed
)

func (ss StreamState) String() string {
	switch ss {
	case StreamIdle:
		return "Idle"
	case StreamReservedLocal:
		return "ReservedLocal"
	case StreamReservedRemote:
		return "ReservedRemote"
	case StreamOpen:
		return "Open"
	case StreamHalfClosedLocal:
		return "HalfClosedLocal"
	case StreamHalfClosedRemote:
		return "HalfClosedRemote"
	case StreamClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// StreamPriority is the RFC 9113 §5.3 stream-dependency triple. Weight is
// stored as the byte on the wire (effective weight = Weight+1); DependsOn
// == 0 means "depends on the root".
type StreamPriority struct {
	Weight    uint8
	DependsOn uint32
	Exclusive bool
}

// Stream is one bidirectional, independent sequence of frames sharing a
// non-zero stream id within a Connection.
type Stream struct {
	id    uint32
	state StreamState

	recvWindow int64
	sendWindow int64

	priority StreamPriority

	method, path, authority, scheme string
	headers                         []HeaderField

	body *bytebufferpool.ByteBuffer

	headerBlock []byte // not used by the driver; CONTINUATION reassembly uses Connection.contBuf

	pendingBody []byte // response body bytes not yet flushed as DATA
}

// NewStream creates an Idle stream with windows seeded from our own
// (recv) and the peer's (send) INITIAL_WINDOW_SIZE.
func NewStream(id uint32, recvWindow, sendWindow uint32) *Stream {
	return &Stream{
		id:         id,
		state:      StreamIdle,
		recvWindow: int64(recvWindow),
		sendWindow: int64(sendWindow),
		priority:   StreamPriority{Weight: 15},
		body:       bytebufferpool.Get(),
	}
}

func (s *Stream) ID() uint32          { return s.id }
func (s *Stream) State() StreamState  { return s.state }
func (s *Stream) SetState(st StreamState) { s.state = st }

func (s *Stream) RecvWindow() int64 { return s.recvWindow }
func (s *Stream) SendWindow() int64 { return s.sendWindow }

// AdjustRecvWindow decrements the receive window by n (n may be negative to
// account for a WINDOW_UPDATE-driven increase via a different path).
func (s *Stream) AdjustRecvWindow(n int64) { s.recvWindow -= n }

// AdjustSendWindow applies delta (positive from WINDOW_UPDATE, or a signed
// delta from an INITIAL_WINDOW_SIZE change) to the send window.
func (s *Stream) AdjustSendWindow(delta int64) { s.sendWindow += delta }

// ConsumeSendWindow decrements the send window by n bytes of outbound DATA.
func (s *Stream) ConsumeSendWindow(n int64) { s.sendWindow -= n }

func (s *Stream) Priority() StreamPriority     { return s.priority }
func (s *Stream) SetPriority(p StreamPriority) { s.priority = p }

func (s *Stream) Method() string    { return s.method }
func (s *Stream) Path() string      { return s.path }
func (s *Stream) Authority() string { return s.authority }
func (s *Stream) Scheme() string    { return s.scheme }
func (s *Stream) Headers() []HeaderField { return s.headers }

func (s *Stream) Body() []byte { return s.body.B }

func (s *Stream) AppendBody(b []byte) {
	s.body.Write(b)
}

// Release returns owned buffers to their pools; call once a stream reaches
// StreamClosed and is removed from the connection's stream map.
func (s *Stream) Release() {
	bytebufferpool.Put(s.body)
	s.body = nil
	s.headerBlock = nil
}
