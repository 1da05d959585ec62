package http2

// Preface is the fixed 24-byte connection preface a client sends before
// any frame: "PRI * HTTP/2.0\r\n\r\nSM\r\n\r\n".
//
// https://httpwg.org/specs/rfc9113.html#ConnectionHeader
var Preface = []byte{
	0x50, 0x52, 0x49, 0x20, 0x2a, 0x20, 0x48, 0x54, 0x54, 0x50,
	0x2f, 0x32, 0x2e, 0x30, 0x0d, 0x0a, 0x0d, 0x0a, 0x53, 0x4d,
	0x0d, 0x0a, 0x0d, 0x0a,
}

const PrefaceLen = len(Preface)
