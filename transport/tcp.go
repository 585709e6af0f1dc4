package transport

import (
	"context"
	"errors"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ketzal-web/ketzal/config"
	"golang.org/x/sync/semaphore"
)

// Observer is notified about the connections lifecycle.
type Observer interface {
	// ConnOpened is called when a connection gets its slot and starts being handled.
	ConnOpened()
	// ConnClosed is called when the handling is done and the slot is released.
	ConnClosed()
	// ConnDeferred is called when an accepted connection has to wait for a slot.
	ConnDeferred()
}

type nopObserver struct{}

func (nopObserver) ConnOpened()   {}
func (nopObserver) ConnClosed()   {}
func (nopObserver) ConnDeferred() {}

type listener interface {
	net.Listener
	SetDeadline(t time.Time) error
}

// TCP accepts connections and runs a callback for each of them in a separate goroutine.
// At most NET.MaxConnections callbacks run simultaneously: a connection accepted beyond
// that waits until some other is done, so the load is deferred rather than rejected.
type TCP struct {
	l        listener
	sem      *semaphore.Weighted
	wg       sync.WaitGroup
	stop     atomic.Bool
	cancel   atomic.Pointer[context.CancelFunc]
	observer Observer
	cfg      config.NET
}

func NewTCP(cfg config.NET, observer Observer) *TCP {
	if observer == nil {
		observer = nopObserver{}
	}

	return &TCP{
		sem:      semaphore.NewWeighted(cfg.MaxConnections),
		observer: observer,
		cfg:      cfg,
	}
}

func (t *TCP) Bind(addr string) error {
	tcpaddr, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return err
	}

	t.l, err = net.ListenTCP("tcp", tcpaddr)
	return err
}

// Addr returns the bound address. Useful when bound to the port 0.
func (t *TCP) Addr() net.Addr {
	return t.l.Addr()
}

// Listen runs the accept loop until Stop is called or the context is done. Errors other
// than those are fatal and returned.
func (t *TCP) Listen(ctx context.Context, cb func(conn net.Conn)) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	t.cancel.Store(&cancel)

	for !t.stop.Load() {
		err := t.l.SetDeadline(time.Now().Add(t.cfg.AcceptLoopInterruptPeriod))
		if err != nil {
			return err
		}

		conn, err := t.l.Accept()
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				if ctx.Err() != nil {
					return nil
				}

				continue
			}

			if t.stop.Load() {
				return nil
			}

			return err
		}

		if err = t.acquire(ctx); err != nil {
			_ = conn.Close()
			return nil
		}

		t.wg.Add(1)
		go t.handle(conn, cb)
	}

	return nil
}

func (t *TCP) acquire(ctx context.Context) error {
	if t.sem.TryAcquire(1) {
		return nil
	}

	t.observer.ConnDeferred()
	return t.sem.Acquire(ctx, 1)
}

func (t *TCP) handle(conn net.Conn, cb func(conn net.Conn)) {
	t.observer.ConnOpened()

	defer func() {
		_ = conn.Close()
		t.sem.Release(1)
		t.observer.ConnClosed()
		t.wg.Done()
	}()

	cb(conn)
}

// Stop makes the accept loop exit, including the case it waits for a free slot.
// Connections being handled aren't interrupted.
func (t *TCP) Stop() {
	t.stop.Store(true)

	if cancel := t.cancel.Load(); cancel != nil {
		(*cancel)()
	}
}

func (t *TCP) Close() error {
	return t.l.Close()
}

// Wait blocks until every connection being handled is done.
func (t *TCP) Wait() {
	t.wg.Wait()
}
