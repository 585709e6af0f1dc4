package dummy

import (
	"io"
	"net"

	"github.com/ketzal-web/ketzal/transport"
)

var _ transport.Client = new(Client)

// Client serves the data it was initialised with piece by piece, looping it over unless
// set to shoot once. Everything written is journaled, and writes can be made failing.
type Client struct {
	closed   bool
	once     bool
	pointer  int
	writes   int
	tmp      []byte
	written  []byte
	data     [][]byte
	writeErr error
	remote   net.Addr
}

func NewMockClient(data ...[]byte) *Client {
	return &Client{
		data:   data,
		remote: &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 54321},
	}
}

func (c *Client) Read() (data []byte, err error) {
	if c.closed {
		return nil, io.EOF
	}

	if len(c.tmp) > 0 {
		data, c.tmp = c.tmp, nil

		return data, nil
	}

	if c.pointer >= len(c.data) {
		if c.once || len(c.data) == 0 {
			c.closed = true
			return nil, io.EOF
		}

		c.pointer = 0
	}

	piece := c.data[c.pointer]
	c.pointer++

	return piece, nil
}

func (c *Client) Pushback(takeback []byte) {
	c.tmp = takeback
}

func (c *Client) Write(p []byte) (int, error) {
	c.writes++
	if c.writeErr != nil {
		return 0, c.writeErr
	}

	c.written = append(c.written, p...)
	return len(p), nil
}

func (c *Client) Remote() net.Addr {
	return c.remote
}

func (c *Client) Close() error {
	c.closed = true
	return nil
}

// Once makes the client return io.EOF after all the pieces were served.
func (c *Client) Once() *Client {
	c.once = true
	return c
}

// FailWrites makes every write return the error.
func (c *Client) FailWrites(err error) *Client {
	c.writeErr = err
	return c
}

func (c *Client) WithRemote(addr net.Addr) *Client {
	c.remote = addr
	return c
}

func (c *Client) Written() string {
	return string(c.written)
}

// Writes returns how many times Write was called.
func (c *Client) Writes() int {
	return c.writes
}

func (c *Client) Closed() bool {
	return c.closed
}
