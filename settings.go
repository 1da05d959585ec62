package http2

import (
	"sync"

	"github.com/arlyon/h2engine/h2util"
)

// Setting ids, RFC 9113 §11.3.
type SettingID uint16

const (
	SettingHeaderTableSize      SettingID = 0x1
	SettingEnablePush           SettingID = 0x2
	SettingMaxConcurrentStreams SettingID = 0x3
	SettingInitialWindowSize    SettingID = 0x4
	SettingMaxFrameSize         SettingID = 0x5
	SettingMaxHeaderListSize    SettingID = 0x6
)

// Setting is one (id, value) pair carried by a SETTINGS frame.
type Setting struct {
	ID    SettingID
	Value uint32
}

var settingsFramePool = sync.Pool{New: func() interface{} { return &SettingsFrame{} }}

// SettingsFrame communicates configuration parameters, or acknowledges the
// peer's. An ACK frame always has an empty payload.
//
// Flags: ACK.
//
// https://httpwg.org/specs/rfc9113.html#rfc.section.6.5
type SettingsFrame struct {
	ack      bool
	settings []Setting
}

func AcquireSettingsFrame() *SettingsFrame {
	s := settingsFramePool.Get().(*SettingsFrame)
	s.Reset()
	return s
}

func ReleaseSettingsFrame(s *SettingsFrame) {
	settingsFramePool.Put(s)
}

func (s *SettingsFrame) Type() FrameType { return FrameSettings }

func (s *SettingsFrame) Reset() {
	s.ack = false
	s.settings = s.settings[:0]
}

func (s *SettingsFrame) IsAck() bool      { return s.ack }
func (s *SettingsFrame) SetAck(v bool)    { s.ack = v }
func (s *SettingsFrame) Settings() []Setting { return s.settings }

func (s *SettingsFrame) Add(id SettingID, value uint32) {
	s.settings = append(s.settings, Setting{ID: id, Value: value})
}

func (s *SettingsFrame) Deserialize(fh *FrameHeader, payload []byte) error {
	s.ack = fh.Flags().Has(FlagAck)

	if s.ack {
		if len(payload) != 0 {
			return ErrInvalidFrameSize
		}
		return nil
	}

	if len(payload)%6 != 0 {
		return ErrInvalidFrameSize
	}

	for len(payload) > 0 {
		id := SettingID(uint16(payload[0])<<8 | uint16(payload[1]))
		value := h2util.BytesToUint32(payload[2:6])
		s.settings = append(s.settings, Setting{ID: id, Value: value})
		payload = payload[6:]
	}

	return nil
}

func (s *SettingsFrame) Serialize(dst []byte, fh *FrameHeader) []byte {
	flags := fh.Flags()
	if s.ack {
		flags |= FlagAck
		fh.SetFlags(flags)
		return dst
	}

	fh.SetFlags(flags)
	for _, st := range s.settings {
		dst = h2util.AppendUint16Bytes(dst, uint16(st.ID))
		dst = h2util.AppendUint32Bytes(dst, st.Value)
	}

	return dst
}
