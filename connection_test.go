package http2

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func appendFrame(dst []byte, fr Frame, streamID uint32) []byte {
	fh := AcquireFrameHeader()
	fh.SetStream(streamID)
	fh.SetBody(fr)
	dst = WriteFrame(dst, fh)
	ReleaseFrameHeader(fh)
	return dst
}

func TestPrefaceHappyPath(t *testing.T) {
	c := NewConnection(nil)

	data := append([]byte{}, Preface...)
	sf := AcquireSettingsFrame()
	sf.Add(SettingMaxConcurrentStreams, 50)
	data = appendFrame(data, sf, 0)

	consumed, _, err := c.Feed(data)
	require.NoError(t, err)
	assert.Equal(t, len(data), consumed)
	assert.Equal(t, ConnActive, c.State())
	assert.EqualValues(t, 50, c.Settings.Remote.MaxConcurrentStreams)

	out := c.Out()
	fh1, n1, err := ReadFrame(out, 0)
	require.NoError(t, err)
	require.NotNil(t, fh1)
	assert.Equal(t, FrameSettings, fh1.Type())
	assert.False(t, fh1.Body().(*SettingsFrame).IsAck())

	fh2, _, err := ReadFrame(out[n1:], 0)
	require.NoError(t, err)
	require.NotNil(t, fh2)
	assert.Equal(t, FrameSettings, fh2.Type())
	assert.True(t, fh2.Body().(*SettingsFrame).IsAck())
}

func TestInvalidPreface(t *testing.T) {
	c := NewConnection(nil)

	data := append([]byte("GET / HTTP/1.1\r\n\r\n"), make([]byte, 6)...)
	_, events, err := c.Feed(data)

	require.Error(t, err)
	assert.Equal(t, ConnClosed, c.State())
	assert.Empty(t, c.Out())
	require.Len(t, events, 1)
	ce, ok := events[0].(ConnectionClosedEvent)
	require.True(t, ok)
	require.NotNil(t, ce.Code)
	assert.Equal(t, ProtocolError, *ce.Code)
}

func establishedConn(t *testing.T) *Connection {
	t.Helper()
	c := NewConnection(nil)

	data := append([]byte{}, Preface...)
	sf := AcquireSettingsFrame()
	data = appendFrame(data, sf, 0)

	_, _, err := c.Feed(data)
	require.NoError(t, err)
	require.Equal(t, ConnActive, c.State())
	c.Out()

	return c
}

func TestStaticIndexedGet(t *testing.T) {
	c := establishedConn(t)

	var captured *Request
	c.Handler = func(r *Request) *Response {
		captured = r
		cp := *r
		captured = &cp
		captured.Headers = append([]HeaderField{}, r.Headers...)
		return nil
	}

	block := []byte{0x82, 0x86, 0x84, 0x01, 0x0f}
	block = append(block, []byte("www.example.com")...)

	h := AcquireHeaders()
	h.SetEndHeaders(true)
	h.SetEndStream(true)
	h.SetHeaderBlockFragment(block)

	_, events, err := c.Feed(appendFrame(nil, h, 1))
	require.NoError(t, err)

	require.NotNil(t, captured)
	assert.Equal(t, "GET", captured.Method)
	assert.Equal(t, "/", captured.Path)
	assert.Equal(t, "www.example.com", captured.Authority)

	var foundReady bool
	for _, e := range events {
		if _, ok := e.(RequestReadyEvent); ok {
			foundReady = true
		}
	}
	assert.True(t, foundReady)

	s := c.streams.Get(1)
	require.NotNil(t, s)
	assert.Equal(t, StreamHalfClosedRemote, s.State())
}

func TestHuffmanRoundTripWwwExampleCom(t *testing.T) {
	c := establishedConn(t)

	var got string
	c.Handler = func(r *Request) *Response {
		got = r.Authority
		return nil
	}

	block := []byte{0x82, 0x86, 0x84, 0x01, 0x8c}
	block = append(block, 0xf1, 0xe3, 0xc2, 0xe5, 0xf2, 0x3a, 0x6b, 0xa0, 0xab, 0x90, 0xf4, 0xff)

	h := AcquireHeaders()
	h.SetEndHeaders(true)
	h.SetEndStream(true)
	h.SetHeaderBlockFragment(block)

	_, _, err := c.Feed(appendFrame(nil, h, 1))
	require.NoError(t, err)
	assert.Equal(t, "www.example.com", got)
}

func TestContinuationInterleaveIsConnError(t *testing.T) {
	c := establishedConn(t)

	h := AcquireHeaders()
	h.SetEndHeaders(false)
	h.SetHeaderBlockFragment([]byte{0x82})

	data := appendFrame(nil, h, 3)

	d := AcquireData()
	d.SetData([]byte("x"))
	data = appendFrame(data, d, 3)

	var gotReady bool
	c.Handler = func(r *Request) *Response {
		gotReady = true
		return nil
	}

	_, events, err := c.Feed(data)
	require.NoError(t, err)
	assert.False(t, gotReady)
	assert.Equal(t, ConnGoingAway, c.State())

	out := c.Out()
	fh, _, rerr := ReadFrame(out, 0)
	require.NoError(t, rerr)
	require.NotNil(t, fh)
	assert.Equal(t, FrameGoAway, fh.Type())
	assert.Equal(t, ProtocolError, fh.Body().(*GoAway).Code())

	_ = events
}

// feedDataChunks splits n bytes of payload across as many DATA frames as
// needed to stay within MAX_FRAME_SIZE and feeds them one frame at a time,
// none carrying END_STREAM.
func feedDataChunks(t *testing.T, c *Connection, streamID uint32, n int) {
	t.Helper()
	const chunk = defaultMaxFrameSize
	for n > 0 {
		sz := n
		if sz > chunk {
			sz = chunk
		}
		d := AcquireData()
		d.SetData(make([]byte, sz))
		_, _, err := c.Feed(appendFrame(nil, d, streamID))
		require.NoError(t, err)
		n -= sz
	}
}

func TestFlowControlExhaustThenReplenish(t *testing.T) {
	c := establishedConn(t)
	c.Handler = func(r *Request) *Response { return nil }

	block := []byte{0x82, 0x86, 0x84, 0x01, 0x0f}
	block = append(block, []byte("www.example.com")...)
	h := AcquireHeaders()
	h.SetEndHeaders(true)
	h.SetHeaderBlockFragment(block)
	_, _, err := c.Feed(appendFrame(nil, h, 1))
	require.NoError(t, err)
	c.Out()

	feedDataChunks(t, c, 1, 65535)

	extra := AcquireData()
	extra.SetData([]byte("x"))
	_, events, err := c.Feed(appendFrame(nil, extra, 1))
	require.NoError(t, err)

	var sawStreamErr bool
	for _, e := range events {
		if sc, ok := e.(StreamClosedEvent); ok && sc.Code != nil && *sc.Code == FlowControlError {
			sawStreamErr = true
		}
	}
	assert.True(t, sawStreamErr)

	c2 := establishedConn(t)
	c2.Handler = func(r *Request) *Response { return nil }
	h2 := AcquireHeaders()
	h2.SetEndHeaders(true)
	h2.SetHeaderBlockFragment(block)
	_, _, err = c2.Feed(appendFrame(nil, h2, 1))
	require.NoError(t, err)
	c2.Out()

	feedDataChunks(t, c2, 1, 65535)

	wu1 := AcquireWindowUpdate()
	wu1.SetIncrement(32768)
	wu0 := AcquireWindowUpdate()
	wu0.SetIncrement(32768)
	buf := appendFrame(nil, wu1, 1)
	buf = appendFrame(buf, wu0, 0)
	_, _, err = c2.Feed(buf)
	require.NoError(t, err)

	small := make([]byte, 32768)
	d2 := AcquireData()
	d2.SetData(small)
	_, events2, err := c2.Feed(appendFrame(nil, d2, 1))
	require.NoError(t, err)

	for _, e := range events2 {
		if sc, ok := e.(StreamClosedEvent); ok {
			t.Fatalf("unexpected stream closure after replenish: %v", sc.Code)
		}
	}
}
