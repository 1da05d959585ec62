package http2

import (
	"strconv"
	"sync"
)

var responsePool = sync.Pool{New: func() interface{} { return new(Response) }}

// Response is what RequestHandler returns for a completed Request. The
// driver encodes Status/Headers via HPACK and Body as DATA frames.
type Response struct {
	Status  int
	Headers []HeaderField
	Body    []byte
}

func AcquireResponse() *Response {
	r := responsePool.Get().(*Response)
	r.Reset()
	return r
}

func ReleaseResponse(r *Response) {
	responsePool.Put(r)
}

func (r *Response) Reset() {
	r.Status = 0
	r.Headers = r.Headers[:0]
	r.Body = nil
}

func (r *Response) Add(name, value string) {
	r.Headers = append(r.Headers, HeaderField{Name: name, Value: value})
}

// headerFields builds the full ordered field list for encode_headers,
// with :status first and content-length synthesized from Body.
func (r *Response) headerFields() []HeaderField {
	status := r.Status
	if status <= 0 {
		status = 200
	}

	fields := make([]HeaderField, 0, len(r.Headers)+2)
	fields = append(fields, HeaderField{Name: ":status", Value: strconv.Itoa(status)})

	if len(r.Body) > 0 {
		fields = append(fields, HeaderField{Name: "content-length", Value: strconv.Itoa(len(r.Body))})
	}

	return append(fields, r.Headers...)
}

// RequestHandler is the embedder-supplied application surface: the driver
// calls it once a stream's Request is fully assembled (§6).
type RequestHandler func(*Request) *Response
