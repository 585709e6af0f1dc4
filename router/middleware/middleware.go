package middleware

import (
	"github.com/ketzal-web/ketzal/http"
	"github.com/ketzal-web/ketzal/router"
)

// call runs the next handler, substituting the nil response with an empty 200.
func call(next router.Handler, request *http.Request) *http.Response {
	if response := next(request); response != nil {
		return response
	}

	return request.Respond()
}
