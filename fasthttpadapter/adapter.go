// Package fasthttpadapter bridges this module's Request/Response types to
// fasthttp's, so an embedder already running a fasthttp.RequestHandler can
// reuse it verbatim as an HTTP/2 RequestHandler.
package fasthttpadapter

import (
	"github.com/valyala/fasthttp"

	h2 "github.com/arlyon/h2engine"
)

// New wraps a fasthttp.RequestHandler into an h2.RequestHandler, translating
// the pseudo-headers and header list into a fasthttp.RequestCtx and copying
// the resulting status/headers/body back out.
func New(handler fasthttp.RequestHandler) h2.RequestHandler {
	return func(req *h2.Request) *h2.Response {
		var ctx fasthttp.RequestCtx

		ctx.Request.Header.SetMethod(req.Method)
		ctx.Request.Header.SetRequestURI(req.Path)
		ctx.Request.Header.SetHost(req.Authority)
		for _, f := range req.Headers {
			ctx.Request.Header.Set(f.Name, f.Value)
		}
		if len(req.Body) > 0 {
			ctx.Request.SetBody(req.Body)
		}

		handler(&ctx)

		resp := h2.AcquireResponse()
		resp.Status = ctx.Response.StatusCode()

		ctx.Response.Header.VisitAll(func(k, v []byte) {
			resp.Add(string(k), string(v))
		})
		resp.Body = append(resp.Body, ctx.Response.Body()...)

		return resp
	}
}
