package middleware

import (
	"context"

	"github.com/dchest/uniuri"
	"github.com/ketzal-web/ketzal/http"
	"github.com/ketzal-web/ketzal/router"
)

const RequestIDHeader = "X-Request-Id"

type requestIDKey struct{}

// RequestID tags the request with an identifier, either passed by the client in the
// X-Request-Id header or a random one, and echoes it back in the response.
func RequestID(next router.Handler, request *http.Request) *http.Response {
	id := request.Headers.Value(RequestIDHeader)
	if len(id) == 0 {
		id = uniuri.NewLen(20)
	}

	request.Ctx = context.WithValue(request.Ctx, requestIDKey{}, id)

	return call(next, request).
		Header(RequestIDHeader, id)
}

// GetRequestID returns the identifier assigned by RequestID, if any.
func GetRequestID(request *http.Request) string {
	id, _ := request.Ctx.Value(requestIDKey{}).(string)
	return id
}
