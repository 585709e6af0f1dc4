package ketzal

import (
	"context"
	"net"
	"sync"

	"github.com/ketzal-web/ketzal/config"
	"github.com/ketzal-web/ketzal/internal/server"
	"github.com/ketzal-web/ketzal/metrics"
	"github.com/ketzal-web/ketzal/router"
	"github.com/ketzal-web/ketzal/transport"
	"go.uber.org/zap"
)

// App glues the acceptor, the connection handler and the router together. The router is
// embedded, so routes and middlewares are registered right on the App.
type App struct {
	*router.Router
	cfg     *config.Config
	logger  *zap.Logger
	metrics *metrics.Metrics
	tcp     *transport.TCP
	hooks   hooks
	once    sync.Once
}

// New returns a new App instance. Nil config means config.Default().
func New(cfg *config.Config) *App {
	if cfg == nil {
		cfg = config.Default()
	}

	return &App{
		Router: router.New(cfg),
		cfg:    cfg,
		logger: zap.NewNop(),
	}
}

// Config returns the config the App is running with. It mustn't be modified once Serve
// is called.
func (a *App) Config() *config.Config {
	return a.cfg
}

// Logger replaces the default no-op logger.
func (a *App) Logger(logger *zap.Logger) *App {
	if logger != nil {
		a.logger = logger
	}

	return a
}

// Metrics enables collecting the connections and requests metrics.
func (a *App) Metrics(m *metrics.Metrics) *App {
	a.metrics = m
	return a
}

// NotifyOnStart calls the callback as soon as the listener is bound, so the App is ready
// to accept connections.
func (a *App) NotifyOnStart(cb func()) *App {
	a.hooks.OnStart = cb
	return a
}

// NotifyOnStop calls the callback when no more connections are accepted and all the
// clients are disconnected.
func (a *App) NotifyOnStop(cb func()) *App {
	a.hooks.OnStop = cb
	return a
}

// Serve binds the configured address and serves until Stop is called or the context is
// done. Connections being handled at that moment are waited for. Failing to bind the
// address is returned immediately.
func (a *App) Serve(ctx context.Context) error {
	tcp := a.acceptor()
	if err := tcp.Bind(a.cfg.Addr()); err != nil {
		return err
	}

	defer func() {
		_ = tcp.Close()
	}()

	a.logger.Info("listening", zap.Stringer("addr", tcp.Addr()))
	callIfNotNil(a.hooks.OnStart)

	srv := server.NewHTTP(a.cfg, a.Router, a.logger, a.metrics)
	err := tcp.Listen(ctx, srv.HandleConn)
	tcp.Wait()
	a.logger.Info("stopped", zap.Error(err))
	callIfNotNil(a.hooks.OnStop)

	return err
}

// Addr returns the address the App is bound to. Valid only after the start hook fired.
func (a *App) Addr() net.Addr {
	return a.acceptor().Addr()
}

// Stop stops accepting new connections. Serve returns as soon as the currently served
// ones are done.
//
// NOTE: the call isn't blocking.
func (a *App) Stop() {
	a.acceptor().Stop()
}

func (a *App) acceptor() *transport.TCP {
	a.once.Do(func() {
		var observer transport.Observer
		if a.metrics != nil {
			observer = a.metrics
		}

		a.tcp = transport.NewTCP(a.cfg.NET, observer)
	})

	return a.tcp
}

type hooks struct {
	OnStart, OnStop func()
}

func callIfNotNil(f func()) {
	if f != nil {
		f()
	}
}
