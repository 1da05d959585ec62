package http2

// Frame is the per-type payload behind a FrameHeader. The set is closed at
// ten members (§4.6); dispatch is a switch over FrameType, never open
// polymorphism.
type Frame interface {
	Type() FrameType
	Reset()
	// Deserialize parses payload (exactly fh.Len() bytes) into the frame,
	// validating shape per its own rules (§4.6).
	Deserialize(fh *FrameHeader, payload []byte) error
	// Serialize appends the frame's wire payload to dst and returns it.
	Serialize(dst []byte, fh *FrameHeader) []byte
}

// AcquireFrame returns a pooled, reset Frame body for kind. Callers that
// receive a frame of unknown type should not call this; unknown types are
// discarded by the caller per RFC 9113 §4.1.
func AcquireFrame(kind FrameType) Frame {
	switch kind {
	case FrameData:
		return AcquireData()
	case FrameHeaders:
		return AcquireHeaders()
	case FramePriority:
		return AcquirePriority()
	case FrameRSTStream:
		return AcquireRSTStream()
	case FrameSettings:
		return AcquireSettingsFrame()
	case FramePushPromise:
		return AcquirePushPromise()
	case FramePing:
		return AcquirePing()
	case FrameGoAway:
		return AcquireGoAway()
	case FrameWindowUpdate:
		return AcquireWindowUpdate()
	case FrameContinuation:
		return AcquireContinuation()
	default:
		return nil
	}
}

// ReleaseFrame returns fr to its type's pool.
func ReleaseFrame(fr Frame) {
	if fr == nil {
		return
	}
	switch fr.Type() {
	case FrameData:
		ReleaseData(fr.(*Data))
	case FrameHeaders:
		ReleaseHeaders(fr.(*Headers))
	case FramePriority:
		ReleasePriority(fr.(*Priority))
	case FrameRSTStream:
		ReleaseRSTStream(fr.(*RSTStream))
	case FrameSettings:
		ReleaseSettingsFrame(fr.(*SettingsFrame))
	case FramePushPromise:
		ReleasePushPromise(fr.(*PushPromise))
	case FramePing:
		ReleasePing(fr.(*Ping))
	case FrameGoAway:
		ReleaseGoAway(fr.(*GoAway))
	case FrameWindowUpdate:
		ReleaseWindowUpdate(fr.(*WindowUpdate))
	case FrameContinuation:
		ReleaseContinuation(fr.(*Continuation))
	}
}

// ReadFrame parses one complete frame from the front of b. It returns the
// populated FrameHeader (caller owns it; ReleaseFrameHeader when done), the
// number of bytes consumed from b, and an error.
//
// ErrNeedMore means b does not yet contain a complete frame; the caller
// must buffer more bytes and retry with them prepended to the unconsumed
// remainder. frameMaxLen is the local MAX_FRAME_SIZE; SETTINGS frames are
// exempt from it per §4.9.
func ReadFrame(b []byte, frameMaxLen uint32) (fh *FrameHeader, consumed int, err error) {
	if len(b) < FrameHeaderLen {
		return nil, 0, ErrNeedMore
	}

	fh = AcquireFrameHeader()
	peekFrameHeader(fh, b)

	if fh.kind != FrameSettings && frameMaxLen != 0 && fh.length > int(frameMaxLen) {
		ReleaseFrameHeader(fh)
		return nil, 0, NewConnError(FrameSizeError, "frame length exceeds MAX_FRAME_SIZE")
	}

	total := FrameHeaderLen + fh.length
	if len(b) < total {
		ReleaseFrameHeader(fh)
		return nil, 0, ErrNeedMore
	}

	payload := b[FrameHeaderLen:total]

	body := AcquireFrame(fh.kind)
	if body == nil {
		// unknown frame type: RFC 9113 §4.1 mandates silent discard.
		ReleaseFrameHeader(fh)
		return nil, total, nil
	}

	fh.fr = body
	if err := body.Deserialize(fh, payload); err != nil {
		ReleaseFrameHeader(fh)
		return nil, 0, err
	}

	return fh, total, nil
}

// WriteFrame serializes fh (header + body) to dst and returns it. The body
// is serialized first so the header's length field can be filled in
// correctly before it is written.
func WriteFrame(dst []byte, fh *FrameHeader) []byte {
	payload := fh.fr.Serialize(nil, fh)
	fh.length = len(payload)

	dst = fh.appendHeader(dst)
	return append(dst, payload...)
}
