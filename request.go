package http2

import "sync"

var requestPool = sync.Pool{New: func() interface{} { return new(Request) }}

// Request is the application-facing view of a completed stream: the
// decoded pseudo-headers, the remaining regular headers, and the
// accumulated body. Produced by the driver's RequestReady event.
type Request struct {
	StreamID uint32

	Method    string
	Path      string
	Authority string
	Scheme    string

	Headers []HeaderField
	Body    []byte
}

// AcquireRequest gets a pooled, reset Request.
func AcquireRequest() *Request {
	r := requestPool.Get().(*Request)
	r.Reset()
	return r
}

func ReleaseRequest(r *Request) {
	requestPool.Put(r)
}

func (r *Request) Reset() {
	r.StreamID = 0
	r.Method = ""
	r.Path = ""
	r.Authority = ""
	r.Scheme = ""
	r.Headers = r.Headers[:0]
	r.Body = nil
}

// requestFromStream builds a Request from the pseudo-headers and regular
// headers that applyHeaderFields stored on s, plus its accumulated body.
// Misplaced or unknown pseudo-headers have already been rejected by
// applyHeaderFields.
func requestFromStream(s *Stream) *Request {
	r := AcquireRequest()
	r.StreamID = s.ID()
	r.Method = s.method
	r.Path = s.path
	r.Authority = s.authority
	r.Scheme = s.scheme
	r.Headers = append(r.Headers, s.headers...)
	r.Body = s.Body()
	return r
}
