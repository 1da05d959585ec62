package http2

import (
	"sync"

	"github.com/arlyon/h2engine/h2util"
)

var dataPool = sync.Pool{New: func() interface{} { return &Data{} }}

// Data carries request/response body bytes.
//
// Flags: END_STREAM, PADDED.
//
// https://httpwg.org/specs/rfc9113.html#rfc.section.6.1
type Data struct {
	endStream bool
	padded    bool
	b         []byte
}

func AcquireData() *Data {
	d := dataPool.Get().(*Data)
	d.Reset()
	return d
}

func ReleaseData(d *Data) {
	dataPool.Put(d)
}

func (d *Data) Type() FrameType { return FrameData }

func (d *Data) Reset() {
	d.endStream = false
	d.padded = false
	d.b = d.b[:0]
}

func (d *Data) EndStream() bool     { return d.endStream }
func (d *Data) SetEndStream(v bool) { d.endStream = v }
func (d *Data) Data() []byte        { return d.b }
func (d *Data) SetData(b []byte)    { d.b = append(d.b[:0], b...) }
func (d *Data) SetPadding(v bool)   { d.padded = v }

func (d *Data) Deserialize(fh *FrameHeader, payload []byte) error {
	if fh.Flags().Has(FlagPadded) {
		var err error
		payload, err = h2util.StripPadding(payload)
		if err != nil {
			return err
		}
	}

	d.endStream = fh.Flags().Has(FlagEndStream)
	d.b = append(d.b[:0], payload...)
	return nil
}

func (d *Data) Serialize(dst []byte, fh *FrameHeader) []byte {
	flags := fh.Flags()
	if d.endStream {
		flags |= FlagEndStream
	}

	body := d.b
	if d.padded {
		flags |= FlagPadded
		body = h2util.AddPadding(body)
	}
	fh.SetFlags(flags)

	return append(dst, body...)
}
