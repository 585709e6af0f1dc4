package transport

import (
	"context"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ketzal-web/ketzal/config"
	"github.com/stretchr/testify/require"
)

type countingObserver struct {
	opened, closed, deferred atomic.Int32
}

func (c *countingObserver) ConnOpened()   { c.opened.Add(1) }
func (c *countingObserver) ConnClosed()   { c.closed.Add(1) }
func (c *countingObserver) ConnDeferred() { c.deferred.Add(1) }

func newTCP(t *testing.T, maxConns int64, observer Observer) *TCP {
	cfg := config.Default().NET
	cfg.MaxConnections = maxConns
	cfg.AcceptLoopInterruptPeriod = 20 * time.Millisecond
	tcp := NewTCP(cfg, observer)
	require.NoError(t, tcp.Bind("127.0.0.1:0"))

	return tcp
}

func TestTCP(t *testing.T) {
	t.Run("admission control", func(t *testing.T) {
		const limit = 2
		observer := new(countingObserver)
		tcp := newTCP(t, limit, observer)

		var active, peak atomic.Int32
		started := make(chan struct{}, limit+1)
		release := make(chan struct{})

		done := make(chan error)
		go func() {
			done <- tcp.Listen(context.Background(), func(net.Conn) {
				n := active.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}

				started <- struct{}{}
				<-release
				active.Add(-1)
			})
		}()

		var conns []net.Conn
		for range limit + 1 {
			conn, err := net.Dial("tcp", tcp.Addr().String())
			require.NoError(t, err)
			conns = append(conns, conn)
		}

		for range limit {
			<-started
		}

		select {
		case <-started:
			t.Fatal("connection over the limit got handled")
		case <-time.After(100 * time.Millisecond):
		}

		require.Equal(t, int32(limit), active.Load())
		require.Eventually(t, func() bool {
			return observer.deferred.Load() == 1
		}, time.Second, 10*time.Millisecond)

		close(release)
		select {
		case <-started:
		case <-time.After(time.Second):
			t.Fatal("deferred connection was never handled")
		}

		tcp.Stop()
		require.NoError(t, <-done)
		tcp.Wait()
		require.NoError(t, tcp.Close())

		require.Equal(t, int32(limit), peak.Load())
		require.Equal(t, int32(limit+1), observer.opened.Load())
		require.Equal(t, int32(limit+1), observer.closed.Load())

		for _, conn := range conns {
			_ = conn.Close()
		}
	})

	t.Run("connection is closed after the callback", func(t *testing.T) {
		tcp := newTCP(t, 10, nil)
		done := make(chan error)
		go func() {
			done <- tcp.Listen(context.Background(), func(conn net.Conn) {
				_, _ = conn.Write([]byte("bye"))
			})
		}()

		conn, err := net.Dial("tcp", tcp.Addr().String())
		require.NoError(t, err)
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))

		buff := make([]byte, 16)
		n, err := conn.Read(buff)
		require.NoError(t, err)
		require.Equal(t, "bye", string(buff[:n]))

		_, err = conn.Read(buff)
		require.Error(t, err)

		tcp.Stop()
		require.NoError(t, <-done)
		require.NoError(t, tcp.Close())
	})

	t.Run("context cancellation", func(t *testing.T) {
		tcp := newTCP(t, 1, nil)
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error)
		go func() {
			done <- tcp.Listen(ctx, func(net.Conn) {})
		}()

		cancel()
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(time.Second):
			t.Fatal("listener did not stop")
		}

		require.NoError(t, tcp.Close())
	})

	t.Run("bind error", func(t *testing.T) {
		tcp := NewTCP(config.Default().NET, nil)
		require.Error(t, tcp.Bind("not an address"))
	})
}
