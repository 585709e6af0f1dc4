package middleware

import (
	"time"

	"github.com/ketzal-web/ketzal/http"
	"github.com/ketzal-web/ketzal/router"
	"go.uber.org/zap"
)

// LogRequests logs the start of every request and its completion, along with the
// resulting status and time taken.
func LogRequests(logger *zap.Logger) router.Middleware {
	return func(next router.Handler, request *http.Request) *http.Response {
		start := time.Now()
		logger.Debug(
			"request started",
			zap.Stringer("method", request.Method),
			zap.String("path", request.Path),
		)

		response := call(next, request)

		logger.Info(
			"request completed",
			zap.Stringer("method", request.Method),
			zap.String("path", request.Path),
			zap.Uint16("status", uint16(response.Reveal().Code)),
			zap.Duration("duration", time.Since(start)),
		)

		return response
	}
}
