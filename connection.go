package http2

import (
	"bytes"
	"errors"

	"github.com/arlyon/h2engine/h2util"
	"github.com/arlyon/h2engine/hpack"
)

// ConnState is one of the five states of the connection lifecycle (§4.9).
type ConnState int8

const (
	ConnWaitingPreface ConnState = iota
	ConnWaitingSettings
	ConnActive
	ConnGoingAway
	ConnClosed
)

func (cs ConnState) String() string {
	switch cs {
	case ConnWaitingPreface:
		return "WaitingPreface"
	case ConnWaitingSettings:
		return "WaitingSettings"
	case ConnActive:
		return "Active"
	case ConnGoingAway:
		return "GoingAway"
	case ConnClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}

const defaultConnWindow = 65535

// Connection is the core, I/O-free server-side HTTP/2 state machine. The
// embedder drives it exclusively through Feed; Out drains the bytes it
// has queued to be written to the socket.
type Connection struct {
	state    ConnState
	Settings *SettingsContext

	streams      Streams
	lastStreamID uint32 // highest client-initiated stream id accepted

	recvWindow int64
	sendWindow int64

	contExpected  bool
	contStreamID  uint32
	contBuf       []byte
	contEndStream bool

	enc *hpack.Encoder
	dec *hpack.Decoder

	out []byte

	Handler RequestHandler
}

// NewConnection builds a server-role connection ready to receive a preface.
func NewConnection(handler RequestHandler) *Connection {
	sc := NewServerSettingsContext()
	return &Connection{
		state:      ConnWaitingPreface,
		Settings:   sc,
		recvWindow: defaultConnWindow,
		sendWindow: defaultConnWindow,
		enc:        hpack.NewEncoder(sc.Local.HeaderTableSize),
		dec:        hpack.NewDecoder(sc.Local.HeaderTableSize),
		Handler:    handler,
	}
}

func (c *Connection) State() ConnState { return c.state }

// Out returns the bytes queued for the transport to write, and clears the
// internal buffer. The transport owns the returned slice.
func (c *Connection) Out() []byte {
	b := c.out
	c.out = nil
	return b
}

// Feed consumes as many complete frames as are present at the front of
// data, applies them, and returns the number of bytes consumed along with
// any events produced. The caller must re-present data[consumed:] (plus
// any newly arrived bytes appended) on the next call; Feed never blocks
// and performs no I/O itself (§5).
func (c *Connection) Feed(data []byte) (consumed int, events []Event, err error) {
	for {
		if c.state == ConnClosed {
			return consumed, events, nil
		}

		rest := data[consumed:]

		if c.state == ConnWaitingPreface {
			if len(rest) < PrefaceLen {
				return consumed, events, nil
			}
			if !bytes.Equal(rest[:PrefaceLen], Preface) {
				c.state = ConnClosed
				events = append(events, ConnectionClosedEvent{Code: errCode(ProtocolError)})
				return consumed, events, NewConnError(ProtocolError, "invalid connection preface")
			}
			consumed += PrefaceLen
			c.state = ConnWaitingSettings
			continue
		}

		fh, n, rerr := ReadFrame(rest, c.Settings.Local.MaxFrameSize)
		if rerr == ErrNeedMore {
			return consumed, events, nil
		}
		if rerr != nil {
			consumed += n
			events = c.closeWithError(rerr, events)
			return consumed, events, nil
		}

		consumed += n
		if fh == nil {
			// unknown frame type, already discarded by ReadFrame.
			continue
		}

		var evs []Event
		var derr error
		evs, derr = c.dispatch(fh)
		events = append(events, evs...)
		ReleaseFrameHeader(fh)

		if derr != nil {
			events = c.closeWithError(derr, events)
			return consumed, events, nil
		}

		if c.state == ConnClosed {
			return consumed, events, nil
		}
	}
}

// classifyErr promotes a bare codec-internal sentinel error (returned by a
// frame's Deserialize, or by settings validation) to the ConnError the
// driver is required to emit, per §7's "lower layers return typed error
// kinds; the driver translates each". Errors already classified pass
// through unchanged.
func classifyErr(err error) error {
	switch {
	case errors.Is(err, ErrInvalidFrameSize):
		return NewConnError(FrameSizeError, err.Error())
	case errors.Is(err, ErrInvalidWindow):
		return NewConnError(FlowControlError, err.Error())
	case errors.Is(err, ErrInvalidSetting):
		return NewConnError(ProtocolError, err.Error())
	case errors.Is(err, ErrInvalidStreamID):
		return NewConnError(ProtocolError, err.Error())
	case errors.Is(err, h2util.ErrPaddingTooLarge):
		return NewConnError(ProtocolError, err.Error())
	default:
		return err
	}
}

// closeWithError classifies err as a ConnError or StreamError and reacts
// accordingly, appending any resulting events.
func (c *Connection) closeWithError(err error, events []Event) []Event {
	switch e := classifyErr(err).(type) {
	case *ConnError:
		c.emitGoAway(e.Code)
		events = c.sweepStreamsAbove(c.lastStreamID, events)
	case *StreamError:
		c.resetStream(e.StreamID, e.Code)
		events = append(events, StreamClosedEvent{StreamID: e.StreamID, Code: errCode(e.Code)})
	default:
		c.emitGoAway(InternalError)
		events = c.sweepStreamsAbove(c.lastStreamID, events)
	}
	return events
}

func (c *Connection) dispatch(fh *FrameHeader) ([]Event, error) {
	if c.contExpected {
		if fh.Type() != FrameContinuation || fh.Stream() != c.contStreamID {
			return nil, NewConnError(ProtocolError, "expected CONTINUATION")
		}
		return c.handleContinuation(fh)
	}

	if c.state == ConnWaitingSettings {
		if fh.Type() != FrameSettings || fh.Flags().Has(FlagAck) {
			return nil, NewConnError(ProtocolError, "first frame must be SETTINGS")
		}
		return c.handleFirstSettings(fh)
	}

	switch fh.Type() {
	case FrameData:
		return c.handleData(fh)
	case FrameHeaders:
		return c.handleHeaders(fh)
	case FramePriority:
		return c.handlePriority(fh)
	case FrameRSTStream:
		return c.handleRSTStream(fh)
	case FrameSettings:
		return c.handleSettings(fh)
	case FramePushPromise:
		return nil, NewConnError(ProtocolError, "server does not accept PUSH_PROMISE")
	case FramePing:
		return c.handlePing(fh)
	case FrameGoAway:
		return c.handleGoAway(fh)
	case FrameWindowUpdate:
		return c.handleWindowUpdate(fh)
	case FrameContinuation:
		return nil, NewConnError(ProtocolError, "unexpected CONTINUATION")
	default:
		return nil, nil
	}
}

func (c *Connection) handleFirstSettings(fh *FrameHeader) ([]Event, error) {
	events, err := c.applySettings(fh)
	if err != nil {
		return events, err
	}

	c.queueFrame(c.Settings.BuildSettingsFrame(), 0)
	c.queueFrame(c.Settings.BuildAck(), 0)
	c.state = ConnActive

	return events, nil
}

func (c *Connection) handleSettings(fh *FrameHeader) ([]Event, error) {
	sf := fh.Body().(*SettingsFrame)
	if sf.IsAck() {
		c.Settings.LocalAcked = true
		return nil, nil
	}

	events, err := c.applySettings(fh)
	if err != nil {
		return events, err
	}

	c.queueFrame(c.Settings.BuildAck(), 0)
	return events, nil
}

// applySettings validates and applies every parameter in fh's SETTINGS
// frame, propagating INITIAL_WINDOW_SIZE changes to open streams' send
// windows per RFC 9113 §6.9.2.
func (c *Connection) applySettings(fh *FrameHeader) ([]Event, error) {
	sf := fh.Body().(*SettingsFrame)

	prevInitialWindow := int64(c.Settings.Remote.InitialWindowSize)

	for _, st := range sf.Settings() {
		if err := c.Settings.ApplyRemote(st.ID, st.Value); err != nil {
			return nil, err
		}
		if st.ID == SettingHeaderTableSize {
			c.enc.SetMaxDynamicTableSize(st.Value)
		}
	}

	delta := int64(c.Settings.Remote.InitialWindowSize) - prevInitialWindow
	if delta != 0 {
		c.streams.Each(func(s *Stream) bool {
			s.AdjustSendWindow(delta)
			return true
		})
	}

	return nil, nil
}

func (c *Connection) handlePing(fh *FrameHeader) ([]Event, error) {
	if fh.Stream() != 0 {
		return nil, NewConnError(ProtocolError, "PING on non-zero stream")
	}

	p := fh.Body().(*Ping)
	if p.IsAck() {
		return nil, nil
	}

	reply := AcquirePing()
	reply.SetAck(true)
	reply.SetData(p.Data())
	c.queueFrame(reply, 0)

	return nil, nil
}

func (c *Connection) handleGoAway(fh *FrameHeader) ([]Event, error) {
	ga := fh.Body().(*GoAway)
	var events []Event
	events = c.sweepStreamsAbove(ga.LastStreamID(), events)
	c.state = ConnGoingAway
	return events, nil
}

func (c *Connection) handlePriority(fh *FrameHeader) ([]Event, error) {
	p := fh.Body().(*Priority)
	if p.StreamDep() == fh.Stream() {
		return nil, NewStreamError(fh.Stream(), ProtocolError, "stream cannot depend on itself")
	}

	if s := c.streams.Get(fh.Stream()); s != nil {
		s.SetPriority(StreamPriority{Weight: p.Weight(), DependsOn: p.StreamDep(), Exclusive: p.Exclusive()})
	}

	return nil, nil
}

func (c *Connection) handleRSTStream(fh *FrameHeader) ([]Event, error) {
	rst := fh.Body().(*RSTStream)
	s := c.streams.Get(fh.Stream())
	if s == nil {
		return nil, nil
	}

	s.SetState(StreamClosed)
	c.streams.Del(s.ID())
	s.Release()

	return []Event{StreamClosedEvent{StreamID: fh.Stream(), Code: errCode(rst.Code())}}, nil
}

func (c *Connection) handleWindowUpdate(fh *FrameHeader) ([]Event, error) {
	wu := fh.Body().(*WindowUpdate)

	if fh.Stream() == 0 {
		next := c.sendWindow + int64(wu.Increment())
		if next > 1<<31-1 {
			return nil, NewConnError(FlowControlError, "connection send window overflow")
		}
		c.sendWindow = next
		c.flushAllPending()
		return nil, nil
	}

	s := c.streams.Get(fh.Stream())
	if s == nil {
		return nil, nil
	}

	next := s.SendWindow() + int64(wu.Increment())
	if next > 1<<31-1 {
		return nil, NewStreamError(fh.Stream(), FlowControlError, "stream send window overflow")
	}
	s.AdjustSendWindow(int64(wu.Increment()))
	c.flushPending(s)

	return nil, nil
}

func (c *Connection) handleData(fh *FrameHeader) ([]Event, error) {
	s := c.streams.Get(fh.Stream())
	if s == nil {
		return nil, NewConnError(ProtocolError, "DATA on unknown/idle stream")
	}
	if s.State() != StreamOpen && s.State() != StreamHalfClosedLocal {
		return nil, NewStreamError(fh.Stream(), StreamClosedError, "DATA on closed stream")
	}

	n := int64(fh.Len())

	if s.RecvWindow()-n < 0 {
		return nil, NewStreamError(fh.Stream(), FlowControlError, "stream recv window exceeded")
	}
	if c.recvWindow-n < 0 {
		return nil, NewConnError(FlowControlError, "connection recv window exceeded")
	}

	s.AdjustRecvWindow(n)
	c.recvWindow -= n

	d := fh.Body().(*Data)
	s.AppendBody(d.Data())

	var events []Event

	if d.EndStream() {
		s.SetState(nextStateOnRecvEndStream(s.State()))
		events = append(events, c.completeRequest(s)...)
	}

	return events, nil
}

func nextStateOnRecvEndStream(cur StreamState) StreamState {
	if cur == StreamHalfClosedLocal {
		return StreamClosed
	}
	return StreamHalfClosedRemote
}

func (c *Connection) handleHeaders(fh *FrameHeader) ([]Event, error) {
	h := fh.Body().(*Headers)

	s := c.streams.Get(fh.Stream())
	if s == nil {
		var err error
		s, err = c.createStream(fh.Stream())
		if err != nil {
			return nil, err
		}
	} else if s.State() == StreamClosed {
		return nil, NewStreamError(fh.Stream(), StreamClosedError, "HEADERS on closed stream")
	}

	if h.HasPriority() {
		s.SetPriority(StreamPriority{Weight: h.Weight(), DependsOn: h.StreamDep(), Exclusive: h.Exclusive()})
	}

	if !h.EndHeaders() {
		c.contExpected = true
		c.contStreamID = fh.Stream()
		c.contBuf = append(c.contBuf[:0], h.HeaderBlockFragment()...)
		c.contEndStream = h.EndStream()
		return nil, nil
	}

	return c.finishHeaderBlock(s, h.HeaderBlockFragment(), h.EndStream())
}

func (c *Connection) handleContinuation(fh *FrameHeader) ([]Event, error) {
	cont := fh.Body().(*Continuation)
	c.contBuf = append(c.contBuf, cont.HeaderBlockFragment()...)

	if !cont.EndHeaders() {
		return nil, nil
	}

	c.contExpected = false
	s := c.streams.Get(c.contStreamID)
	block := c.contBuf
	c.contBuf = nil
	endStream := c.contEndStream

	if s == nil {
		return nil, NewConnError(ProtocolError, "CONTINUATION for vanished stream")
	}

	return c.finishHeaderBlock(s, block, endStream)
}

// finishHeaderBlock decodes a complete header block (possibly reassembled
// across CONTINUATION frames), populates the stream, and if endStream is
// set, completes the request.
func (c *Connection) finishHeaderBlock(s *Stream, block []byte, endStream bool) ([]Event, error) {
	c.dec.SetMaxHeaderListSize(c.Settings.Local.MaxHeaderListSize)

	fields, err := c.dec.DecodeFragment(block)
	if err != nil {
		return nil, NewConnError(CompressionError, "HPACK decode failure")
	}

	if err := applyHeaderFields(s, fields); err != nil {
		return nil, err
	}

	s.SetState(nextStateOnRecvHeaders(s.State()))

	if endStream {
		s.SetState(nextStateOnRecvEndStream(s.State()))
		return c.completeRequest(s), nil
	}

	return nil, nil
}

func nextStateOnRecvHeaders(cur StreamState) StreamState {
	switch cur {
	case StreamIdle:
		return StreamOpen
	case StreamReservedRemote:
		return StreamHalfClosedLocal
	default:
		return cur
	}
}

// applyHeaderFields splits decoded fields into pseudo-headers and regular
// headers per RFC 9113 §8.3, rejecting a pseudo-header seen after a
// regular one.
func applyHeaderFields(s *Stream, fields []hpack.HeaderField) error {
	seenRegular := false

	for _, f := range fields {
		if len(f.Name) > 0 && f.Name[0] == ':' {
			if seenRegular {
				return NewStreamError(s.ID(), ProtocolError, "pseudo-header after regular header")
			}
			switch f.Name {
			case ":method":
				s.method = f.Value
			case ":path":
				s.path = f.Value
			case ":authority":
				s.authority = f.Value
			case ":scheme":
				s.scheme = f.Value
			default:
				return NewStreamError(s.ID(), ProtocolError, "unknown pseudo-header")
			}
			continue
		}

		seenRegular = true
		s.headers = append(s.headers, HeaderField{Name: f.Name, Value: f.Value, Sensitive: f.Sensitive})
	}

	return nil
}

// createStream builds a new stream for a HEADERS-initiated id, enforcing
// concurrency cap, parity, and monotonicity (§4.9).
func (c *Connection) createStream(id uint32) (*Stream, error) {
	if id%2 == 0 {
		return nil, NewConnError(ProtocolError, "client-initiated stream id must be odd")
	}
	if id <= c.lastStreamID {
		return nil, NewConnError(ProtocolError, "stream id not monotonically increasing")
	}

	max := c.Settings.Local.MaxConcurrentStreams
	if max != 0 {
		var active uint32
		c.streams.Each(func(s *Stream) bool {
			if s.State() != StreamClosed {
				active++
			}
			return true
		})
		if active >= max {
			c.queueFrame(rstStreamFrame(RefusedStream), id)
			return nil, NewStreamError(id, RefusedStream, "max concurrent streams exceeded")
		}
	}

	s := NewStream(id, c.Settings.Local.InitialWindowSize, c.Settings.Remote.InitialWindowSize)
	c.streams.Insert(s)
	c.lastStreamID = id

	return s, nil
}

func rstStreamFrame(code ErrorCode) *RSTStream {
	r := AcquireRSTStream()
	r.SetCode(code)
	return r
}

// completeRequest invokes the handler and queues the response frames. The
// request body handed to requestFromStream is, from this point on, the
// application's to hold; the receive windows it occupied are free to be
// restored.
func (c *Connection) completeRequest(s *Stream) []Event {
	req := requestFromStream(s)
	events := []Event{RequestReadyEvent{Request: req}}

	c.maybeReplenishStream(s)
	c.maybeReplenishConn()

	if c.Handler != nil {
		resp := c.Handler(req)
		if resp != nil {
			c.writeResponse(s, resp)
		}
	}

	return events
}

// writeResponse HPACK-encodes resp's headers into one HEADERS frame (plus
// CONTINUATION if it exceeds the peer's MAX_FRAME_SIZE) and queues resp's
// body as DATA frames respecting both send windows (§6).
func (c *Connection) writeResponse(s *Stream, resp *Response) {
	var block []byte
	for _, f := range resp.headerFields() {
		block = c.enc.EncodeField(block, hpack.HeaderField{Name: f.Name, Value: f.Value, Sensitive: f.Sensitive})
	}

	maxFrame := int(c.Settings.Remote.MaxFrameSize)
	if maxFrame == 0 {
		maxFrame = defaultMaxFrameSize
	}

	noBody := len(resp.Body) == 0

	h := AcquireHeaders()
	h.SetEndHeaders(len(block) <= maxFrame)
	h.SetEndStream(noBody)
	if len(block) <= maxFrame {
		h.SetHeaderBlockFragment(block)
		block = nil
	} else {
		h.SetHeaderBlockFragment(block[:maxFrame])
		block = block[maxFrame:]
	}
	c.queueFrame(h, s.ID())

	for len(block) > 0 {
		n := len(block)
		if n > maxFrame {
			n = maxFrame
		}
		cont := AcquireContinuation()
		cont.SetHeaderBlockFragment(block[:n])
		cont.SetEndHeaders(n == len(block))
		c.queueFrame(cont, s.ID())
		block = block[n:]
	}

	if noBody {
		s.SetState(nextStateOnSendEndStream(s.State()))
		return
	}

	s.pendingBody = append(s.pendingBody, resp.Body...)
	c.flushPending(s)
}

func nextStateOnSendEndStream(cur StreamState) StreamState {
	if cur == StreamHalfClosedRemote {
		return StreamClosed
	}
	return StreamHalfClosedLocal
}

// flushPending writes as much of s's queued response body as the stream
// and connection send windows and the peer's MAX_FRAME_SIZE allow.
func (c *Connection) flushPending(s *Stream) {
	maxFrame := int64(c.Settings.Remote.MaxFrameSize)
	if maxFrame == 0 {
		maxFrame = defaultMaxFrameSize
	}

	for len(s.pendingBody) > 0 {
		avail := s.SendWindow()
		if c.sendWindow < avail {
			avail = c.sendWindow
		}
		if avail > maxFrame {
			avail = maxFrame
		}
		if avail <= 0 {
			return
		}

		n := int64(len(s.pendingBody))
		if n > avail {
			n = avail
		}

		chunk := s.pendingBody[:n]
		s.pendingBody = s.pendingBody[n:]

		d := AcquireData()
		d.SetData(chunk)
		d.SetEndStream(len(s.pendingBody) == 0)
		c.queueFrame(d, s.ID())

		s.ConsumeSendWindow(n)
		c.sendWindow -= n
	}

	if len(s.pendingBody) == 0 {
		s.SetState(nextStateOnSendEndStream(s.State()))
	}
}

func (c *Connection) flushAllPending() {
	c.streams.Each(func(s *Stream) bool {
		if len(s.pendingBody) > 0 {
			c.flushPending(s)
		}
		return true
	})
}

// maybeReplenishStream emits a WINDOW_UPDATE restoring s's receive window
// to our advertised INITIAL_WINDOW_SIZE, if it has dropped below half of
// it. Called once a request's buffered body has been handed to the
// application, not on every intermediate DATA frame: this engine holds a
// stream's body in full until END_STREAM, so the window it occupies isn't
// actually free until then.
func (c *Connection) maybeReplenishStream(s *Stream) {
	initial := int64(c.Settings.Local.InitialWindowSize)
	if s.RecvWindow() >= initial/2 {
		return
	}

	inc := initial - s.RecvWindow()
	s.AdjustRecvWindow(-inc)

	wu := AcquireWindowUpdate()
	wu.SetIncrement(uint32(inc))
	c.queueFrame(wu, s.ID())
}

func (c *Connection) maybeReplenishConn() {
	const initial = defaultConnWindow
	if c.recvWindow >= initial/2 {
		return
	}

	inc := int64(initial) - c.recvWindow
	c.recvWindow += inc

	wu := AcquireWindowUpdate()
	wu.SetIncrement(uint32(inc))
	c.queueFrame(wu, 0)
}

// resetStream closes a stream with a locally-originated RST_STREAM.
func (c *Connection) resetStream(id uint32, code ErrorCode) {
	if s := c.streams.Del(id); s != nil {
		s.SetState(StreamClosed)
		s.Release()
	}
	c.queueFrame(rstStreamFrame(code), id)
}

// emitGoAway queues a GOAWAY reporting the last stream id this connection
// successfully processed, and moves to GoingAway.
func (c *Connection) emitGoAway(code ErrorCode) {
	ga := AcquireGoAway()
	ga.SetLastStreamID(c.lastStreamID)
	ga.SetCode(code)
	c.queueFrame(ga, 0)
	c.state = ConnGoingAway
}

// sweepStreamsAbove closes every stream whose id exceeds last, per GOAWAY
// semantics (§4.9, §8): streams at or below last are unaffected.
func (c *Connection) sweepStreamsAbove(last uint32, events []Event) []Event {
	var toClose []uint32
	c.streams.Each(func(s *Stream) bool {
		if s.ID() > last {
			toClose = append(toClose, s.ID())
		}
		return true
	})

	for _, id := range toClose {
		if s := c.streams.Del(id); s != nil {
			s.SetState(StreamClosed)
			s.Release()
			events = append(events, StreamClosedEvent{StreamID: id, Code: errCode(Cancel)})
		}
	}

	return events
}

// queueFrame serializes fr (setting its stream id) onto the outbound
// buffer and releases it back to its pool.
func (c *Connection) queueFrame(fr Frame, streamID uint32) {
	fh := AcquireFrameHeader()
	fh.SetStream(streamID)
	fh.SetBody(fr)
	c.out = WriteFrame(c.out, fh)
	ReleaseFrameHeader(fh)
}
