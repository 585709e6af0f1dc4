package server

import (
	"errors"
	"net"
	"time"

	"github.com/ketzal-web/ketzal/config"
	"github.com/ketzal-web/ketzal/http"
	"github.com/ketzal-web/ketzal/http/status"
	"github.com/ketzal-web/ketzal/internal/logging"
	"github.com/ketzal-web/ketzal/internal/strutil"
	"github.com/ketzal-web/ketzal/internal/transport/http1"
	"github.com/ketzal-web/ketzal/metrics"
	"github.com/ketzal-web/ketzal/transport"
	"go.uber.org/zap"
)

// Router produces responses for decoded requests and for requests failed to be decoded.
type Router interface {
	OnRequest(request *http.Request) *http.Response
	OnError(request *http.Request, err error) *http.Response
}

// HTTP serves HTTP/1.x connections: decodes requests, passes them to the router and
// writes the responses back.
type HTTP struct {
	router  Router
	cfg     *config.Config
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func NewHTTP(cfg *config.Config, router Router, logger *zap.Logger, m *metrics.Metrics) *HTTP {
	return &HTTP{
		router:  router,
		cfg:     cfg,
		logger:  logger,
		metrics: m,
	}
}

// HandleConn serves the connection until it's time to close it.
func (h *HTTP) HandleConn(conn net.Conn) {
	h.Serve(transport.NewClient(
		conn,
		h.cfg.NET.ReadTimeout,
		h.cfg.NET.WriteTimeout,
		make([]byte, h.cfg.NET.ReadBufferSize),
	))
}

// Serve runs the requests processing loop over the client and closes it afterward. Unless
// keep-alive is enabled, the only request is served.
func (h *HTTP) Serve(client transport.Client) {
	defer func() {
		_ = client.Close()
	}()

	request := http.NewRequest(h.cfg, http.NewResponse(), client.Remote())
	decoder := http1.NewDecoder(h.cfg, request, client)
	serializer := http1.NewSerializer(make([]byte, 0, 1024), h.cfg.Headers.Default)

	for h.HandleRequest(client, request, decoder, serializer) {
		decoder.Reset()
	}
}

// HandleRequest serves a single request and tells whether the connection may carry
// the next one.
func (h *HTTP) HandleRequest(
	client transport.Client, request *http.Request, decoder *http1.Decoder, serializer *http1.Serializer,
) (keepAlive bool) {
	if err := decoder.Decode(); err != nil {
		if errors.Is(err, status.ErrCloseConnection) {
			return false
		}

		start := time.Now()
		response := h.router.OnError(request, err)
		code := response.Reveal().Code

		if werr := serializer.Write(request, response, false, client); werr != nil {
			h.writeFailed(request, client, werr)
			return false
		}

		took := time.Since(start)
		h.logger.Info(
			"request",
			zap.Stringer("method", request.Method),
			zap.String("path", request.Path),
			zap.String("peer", peer(client.Remote())),
			zap.Uint16("status", uint16(code)),
			zap.Duration("duration", took),
			zap.Error(err),
		)
		h.metrics.ObserveRequest(request.Method.String(), uint16(code), took)

		return false
	}

	start := time.Now()
	response := h.dispatch(request)
	keepAlive = h.cfg.NET.KeepAlive && persistent(request)

	if keepAlive {
		// whatever the handler didn't read must be gone before the next request
		if err := request.Body.Discard(); err != nil {
			keepAlive = false
		}
	}

	code := response.Reveal().Code
	if err := serializer.Write(request, response, keepAlive, client); err != nil {
		h.writeFailed(request, client, err)
		return false
	}

	took := time.Since(start)
	h.logger.Info(
		"request",
		zap.Stringer("method", request.Method),
		zap.String("path", request.Path),
		zap.String("peer", peer(client.Remote())),
		zap.Uint16("status", uint16(code)),
		zap.Duration("duration", took),
	)

	if ce := h.logger.Check(zap.DebugLevel, "request headers"); ce != nil {
		ce.Write(zap.String("headers", logging.SafeHeaders(request.Headers)))
	}

	h.metrics.ObserveRequest(request.Method.String(), uint16(code), took)

	return keepAlive
}

func (h *HTTP) writeFailed(request *http.Request, client transport.Client, err error) {
	h.logger.Warn(
		"failed to write the response",
		zap.Stringer("method", request.Method),
		zap.String("path", request.Path),
		zap.String("peer", peer(client.Remote())),
		zap.Error(err),
	)
	h.metrics.WriteFailed()
}

// dispatch routes the request. Panics are turned into 500 Internal Server Error.
func (h *HTTP) dispatch(request *http.Request) (response *http.Response) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error(
				"handler panicked",
				zap.Stringer("method", request.Method),
				zap.String("path", request.Path),
				zap.Any("panic", r),
				zap.Stack("stack"),
			)

			response = http.Error(request, status.ErrInternalServerError)
		}
	}()

	if response = h.router.OnRequest(request); response == nil {
		response = request.Respond()
	}

	return response
}

// persistent tells whether the client is willing to send more requests over the
// connection. HTTP/1.1 connections are persistent unless closed explicitly, HTTP/1.0 ones
// must ask for it.
func persistent(request *http.Request) bool {
	connection := request.Headers.Value("Connection")

	if request.Proto == "HTTP/1.0" {
		return strutil.ContainsToken(connection, "keep-alive")
	}

	return !strutil.ContainsToken(connection, "close")
}

func peer(addr net.Addr) string {
	if addr == nil {
		return "unknown"
	}

	return addr.String()
}
