package http2

import (
	"errors"
	"fmt"
)

// ErrorCode is the RFC 9113 §7 error code carried by RST_STREAM and GOAWAY.
type ErrorCode uint32

const (
	NoError            ErrorCode = 0x0
	ProtocolError      ErrorCode = 0x1
	InternalError      ErrorCode = 0x2
	FlowControlError   ErrorCode = 0x3
	SettingsTimeout    ErrorCode = 0x4
	StreamClosedError  ErrorCode = 0x5
	FrameSizeError     ErrorCode = 0x6
	RefusedStream      ErrorCode = 0x7
	Cancel             ErrorCode = 0x8
	CompressionError   ErrorCode = 0x9
	ConnectError       ErrorCode = 0xa
	EnhanceYourCalm    ErrorCode = 0xb
	InadequateSecurity ErrorCode = 0xc
	HTTP11Required     ErrorCode = 0xd
)

func (e ErrorCode) String() string {
	switch e {
	case NoError:
		return "NO_ERROR"
	case ProtocolError:
		return "PROTOCOL_ERROR"
	case InternalError:
		return "INTERNAL_ERROR"
	case FlowControlError:
		return "FLOW_CONTROL_ERROR"
	case SettingsTimeout:
		return "SETTINGS_TIMEOUT"
	case StreamClosedError:
		return "STREAM_CLOSED"
	case FrameSizeError:
		return "FRAME_SIZE_ERROR"
	case RefusedStream:
		return "REFUSED_STREAM"
	case Cancel:
		return "CANCEL"
	case CompressionError:
		return "COMPRESSION_ERROR"
	case ConnectError:
		return "CONNECT_ERROR"
	case EnhanceYourCalm:
		return "ENHANCE_YOUR_CALM"
	case InadequateSecurity:
		return "INADEQUATE_SECURITY"
	case HTTP11Required:
		return "HTTP_1_1_REQUIRED"
	default:
		return "UNKNOWN_ERROR"
	}
}

// ErrNeedMore signals the frame/connection codec ran out of bytes mid-frame;
// it is not a protocol error, the caller is expected to feed more data and
// retry with the same (plus newly arrived) bytes.
var ErrNeedMore = errors.New("http2: need more data")

// Codec-internal error kinds, surfaced by the frame codec, HPACK layer and
// settings validation before the driver classifies them as a ConnError or
// a StreamError.
var (
	ErrInvalidFrameSize = errors.New("http2: invalid frame size")
	ErrInvalidStreamID  = errors.New("http2: invalid stream id")
	ErrInvalidSetting   = errors.New("http2: invalid settings value")
	ErrInvalidWindow    = errors.New("http2: invalid window update")
	ErrUnknownFrameType = errors.New("http2: unknown frame type")
)

// ConnError is a connection-level (fatal) error: the driver replies with
// GOAWAY carrying Code and moves the connection to GoingAway; it does not
// move the connection to Closed itself.
type ConnError struct {
	Code ErrorCode
	Msg  string
}

func (e *ConnError) Error() string {
	return fmt.Sprintf("http2: connection error %s: %s", e.Code, e.Msg)
}

func NewConnError(code ErrorCode, msg string) *ConnError {
	return &ConnError{Code: code, Msg: msg}
}

// StreamError is a stream-level (recoverable) error: the driver replies
// with RST_STREAM carrying Code on StreamID and closes only that stream.
type StreamError struct {
	StreamID uint32
	Code     ErrorCode
	Msg      string
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("http2: stream %d error %s: %s", e.StreamID, e.Code, e.Msg)
}

func NewStreamError(streamID uint32, code ErrorCode, msg string) *StreamError {
	return &StreamError{StreamID: streamID, Code: code, Msg: msg}
}
