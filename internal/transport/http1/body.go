package http1

import (
	"errors"
	"io"

	"github.com/indigo-web/chunkedbody"
	"github.com/ketzal-web/ketzal/http/status"
	"github.com/ketzal-web/ketzal/transport"
)

// plainBody streams exactly the declared number of bytes. If the peer closes the
// connection earlier, the body ends early without an error.
type plainBody struct {
	client transport.Client
	left   int64
}

func newPlainBody(client transport.Client) *plainBody {
	return &plainBody{client: client}
}

func (p *plainBody) Reset(length int64) {
	p.left = length
}

func (p *plainBody) Retrieve() ([]byte, error) {
	if p.left <= 0 {
		return nil, io.EOF
	}

	data, err := p.client.Read()
	if int64(len(data)) > p.left {
		p.client.Pushback(data[p.left:])
		data = data[:p.left]
	}

	p.left -= int64(len(data))

	switch {
	case errors.Is(err, io.EOF):
		p.left = 0
		return data, io.EOF
	case err != nil:
		return data, err
	case p.left == 0:
		return data, io.EOF
	default:
		return data, nil
	}
}

// chunkedBody streams a body sent with the chunked transfer encoding, limiting its total
// length.
type chunkedBody struct {
	client           transport.Client
	parser           *chunkedbody.Parser
	received, limit  int64
	trailer, drained bool
}

func newChunkedBody(client transport.Client, limit int64) *chunkedBody {
	return &chunkedBody{
		client: client,
		parser: chunkedbody.NewParser(chunkedbody.DefaultSettings()),
		limit:  limit,
	}
}

func (c *chunkedBody) Reset(trailer bool) {
	c.received = 0
	c.trailer = trailer
	c.drained = false
}

func (c *chunkedBody) Retrieve() ([]byte, error) {
	if c.drained {
		return nil, io.EOF
	}

	data, err := c.client.Read()
	if len(data) == 0 && err != nil {
		if errors.Is(err, io.EOF) {
			// the stream is broken in the middle of a chunk
			return nil, status.ErrBadChunk
		}

		return nil, err
	}

	chunk, extra, err := c.parser.Parse(data, c.trailer)
	switch {
	case errors.Is(err, io.EOF):
		c.drained = true
	case err != nil:
		return nil, status.ErrBadChunk
	}

	c.received += int64(len(chunk))
	if c.received > c.limit {
		return nil, status.ErrBodyTooLarge
	}

	c.client.Pushback(extra)

	return chunk, err
}
