package http2

// SettingsContext holds the negotiated parameters for both directions of a
// connection, plus whether each side's settings have been acknowledged.
//
// Defaults per RFC 9113 §6.5.2.
type SettingsContext struct {
	Local  Settings
	Remote Settings

	LocalAcked  bool
	RemoteAcked bool
}

// Settings is one direction's negotiated SETTINGS parameters.
type Settings struct {
	HeaderTableSize      uint32
	EnablePush           bool
	MaxConcurrentStreams uint32
	InitialWindowSize    uint32
	MaxFrameSize         uint32
	MaxHeaderListSize    uint32 // 0 == unlimited
}

// NewServerSettingsContext builds the context a server-role connection
// starts with: push disabled locally (servers never receive PUSH_PROMISE),
// a concurrency cap of 100 streams, and RFC defaults otherwise.
func NewServerSettingsContext() *SettingsContext {
	defaults := Settings{
		HeaderTableSize:      4096,
		EnablePush:           false,
		MaxConcurrentStreams: 100,
		InitialWindowSize:    65535,
		MaxFrameSize:         defaultMaxFrameSize,
		MaxHeaderListSize:    0,
	}

	remote := defaults
	remote.EnablePush = true
	remote.MaxConcurrentStreams = 0 // unlimited until peer says otherwise

	return &SettingsContext{Local: defaults, Remote: remote}
}

// ApplyRemote validates and applies one (id, value) pair received from the
// peer, per §4.7. Unknown ids are silently ignored per RFC 9113 §6.5.2.
func (sc *SettingsContext) ApplyRemote(id SettingID, v uint32) error {
	return sc.Remote.apply(id, v)
}

// ApplyLocal validates and applies one (id, value) pair before we advertise
// it to the peer.
func (sc *SettingsContext) ApplyLocal(id SettingID, v uint32) error {
	return sc.Local.apply(id, v)
}

func (s *Settings) apply(id SettingID, v uint32) error {
	switch id {
	case SettingHeaderTableSize:
		s.HeaderTableSize = v
	case SettingEnablePush:
		if v > 1 {
			return ErrInvalidSetting
		}
		s.EnablePush = v == 1
	case SettingMaxConcurrentStreams:
		s.MaxConcurrentStreams = v
	case SettingInitialWindowSize:
		if v > 1<<31-1 {
			return NewConnError(FlowControlError, "SETTINGS_INITIAL_WINDOW_SIZE exceeds 2^31-1")
		}
		s.InitialWindowSize = v
	case SettingMaxFrameSize:
		if v < 1<<14 || v > 1<<24-1 {
			return NewConnError(FrameSizeError, "SETTINGS_MAX_FRAME_SIZE out of range")
		}
		s.MaxFrameSize = v
	case SettingMaxHeaderListSize:
		s.MaxHeaderListSize = v
	default:
		// unknown setting id: ignored per RFC 9113 §6.5.2.
	}

	return nil
}

// BuildSettingsFrame emits all six local parameters (36 bytes of payload).
func (sc *SettingsContext) BuildSettingsFrame() *SettingsFrame {
	sf := AcquireSettingsFrame()

	push := uint32(0)
	if sc.Local.EnablePush {
		push = 1
	}

	sf.Add(SettingHeaderTableSize, sc.Local.HeaderTableSize)
	sf.Add(SettingEnablePush, push)
	sf.Add(SettingMaxConcurrentStreams, sc.Local.MaxConcurrentStreams)
	sf.Add(SettingInitialWindowSize, sc.Local.InitialWindowSize)
	sf.Add(SettingMaxFrameSize, sc.Local.MaxFrameSize)
	sf.Add(SettingMaxHeaderListSize, sc.Local.MaxHeaderListSize)

	return sf
}

// BuildAck emits a SETTINGS frame with the ACK flag and an empty payload.
func (sc *SettingsContext) BuildAck() *SettingsFrame {
	sf := AcquireSettingsFrame()
	sf.SetAck(true)
	return sf
}
