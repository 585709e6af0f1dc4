package middleware

import (
	"github.com/ketzal-web/ketzal/http"
	"github.com/ketzal-web/ketzal/http/status"
	"github.com/ketzal-web/ketzal/router"
	"go.uber.org/zap"
)

// Recover catches panics, returning 500 Internal Server Error instead. Whatever was
// built up in the response by the moment of panic is discarded, avoiding a half-cooked
// response being sent.
func Recover(logger *zap.Logger) router.Middleware {
	return func(next router.Handler, request *http.Request) (response *http.Response) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error(
					"handler panicked",
					zap.Stringer("method", request.Method),
					zap.String("path", request.Path),
					zap.Any("panic", r),
					zap.StackSkip("stack", 2),
				)

				response = http.Error(request, status.ErrInternalServerError)
			}
		}()

		return call(next, request)
	}
}
