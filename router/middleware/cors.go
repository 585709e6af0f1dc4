package middleware

import (
	"github.com/ketzal-web/ketzal/http"
	"github.com/ketzal-web/ketzal/http/method"
	"github.com/ketzal-web/ketzal/http/status"
	"github.com/ketzal-web/ketzal/router"
)

const (
	AllowOrigin  = "*"
	AllowMethods = "GET, POST, PUT, DELETE, PATCH, OPTIONS"
	AllowHeaders = "Content-Type, Authorization"
)

// CORS answers preflight (OPTIONS) requests by itself with 204 No Content, never reaching
// the handler. Responses to other requests are marked as accessible from any origin.
func CORS(next router.Handler, request *http.Request) *http.Response {
	if request.Method == method.OPTIONS {
		return request.Respond().
			Code(status.NoContent).
			Header("Access-Control-Allow-Origin", AllowOrigin).
			Header("Access-Control-Allow-Methods", AllowMethods).
			Header("Access-Control-Allow-Headers", AllowHeaders)
	}

	return call(next, request).
		Header("Access-Control-Allow-Origin", AllowOrigin)
}
