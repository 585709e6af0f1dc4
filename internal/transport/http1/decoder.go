package http1

import (
	"errors"
	"io"
	"os"

	"github.com/ketzal-web/ketzal/config"
	"github.com/ketzal-web/ketzal/http"
	"github.com/ketzal-web/ketzal/http/status"
	"github.com/ketzal-web/ketzal/internal/buffer"
	"github.com/ketzal-web/ketzal/internal/formdata"
	"github.com/ketzal-web/ketzal/transport"
)

// Decoder reads requests off a client: the head by the Parser, and then the body by the
// strategy its framing and length dictate.
//
// Bodies declaring up to Body.BufferThreshold bytes are read at once. Multipart ones are
// also parsed right away, filling the request's Form and Files. Longer and chunked bodies
// are left on the wire for the handler to consume lazily.
type Decoder struct {
	*Parser
	client   transport.Client
	request  *http.Request
	plain    *plainBody
	chunked  *chunkedBody
	bodyBuff []byte
	cfg      *config.Config
}

func NewDecoder(cfg *config.Config, request *http.Request, client transport.Client) *Decoder {
	buff := buffer.New(int(cfg.Headers.InitialSpace), int(cfg.Headers.MaxSpace))

	return &Decoder{
		Parser:  NewParser(request, buff, cfg),
		client:  client,
		request: request,
		plain:   newPlainBody(client),
		chunked: newChunkedBody(client, int64(cfg.Body.MaxSize)),
		cfg:     cfg,
	}
}

// Decode reads the next request. The peer closing the connection (or going silent for
// longer than the read timeout) before sending a single byte results in
// status.ErrCloseConnection: there is no request to answer.
func (d *Decoder) Decode() error {
	received := false

	for {
		data, err := d.client.Read()
		if len(data) > 0 {
			received = true

			state, extra, perr := d.Parse(data)
			switch state {
			case Error:
				return perr
			case HeadersCompleted:
				d.client.Pushback(extra)
				return d.decodeBody()
			}
		}

		if err != nil {
			return headReadErr(err, received)
		}
	}
}

func headReadErr(err error, received bool) error {
	switch {
	case !received:
		return status.ErrCloseConnection
	case errors.Is(err, io.EOF):
		return status.ErrTruncatedHead
	case errors.Is(err, os.ErrDeadlineExceeded):
		return status.ErrRequestTimeout
	default:
		return status.ErrCloseConnection
	}
}

func (d *Decoder) decodeBody() error {
	request := d.request

	switch {
	case request.Chunked:
		d.chunked.Reset(request.Headers.Has("Trailer"))
		request.Body.Stream(d.chunked)
	case request.ContentLength == 0:
		request.Body.Buffered(nil)
	case request.ContentLength <= int64(d.cfg.Body.BufferThreshold):
		body, err := d.readEager(request.ContentLength)
		if err != nil {
			return err
		}

		request.Body.Buffered(body)

		if boundary, ok := formdata.Boundary(request.Headers.Value("Content-Type")); ok {
			request.Form, request.Files, err = formdata.ParseMultipart(
				body, boundary, d.cfg.Body.Form.StrictMultipart,
			)

			return err
		}
	default:
		d.plain.Reset(request.ContentLength)
		request.Body.Stream(d.plain)
	}

	return nil
}

// readEager reads the body until the declared length is collected or the peer closes the
// connection, whichever happens first.
func (d *Decoder) readEager(length int64) ([]byte, error) {
	if int64(cap(d.bodyBuff)) < length {
		d.bodyBuff = make([]byte, 0, length)
	}

	d.plain.Reset(length)
	body := d.bodyBuff[:0]

	for {
		data, err := d.plain.Retrieve()
		body = append(body, data...)

		switch {
		case errors.Is(err, io.EOF):
			return body, nil
		case errors.Is(err, os.ErrDeadlineExceeded):
			return nil, status.ErrRequestTimeout
		case err != nil:
			return nil, err
		}
	}
}

// Reset prepares the decoder for the next request on the same connection.
func (d *Decoder) Reset() {
	d.Parser.Reset()
	d.request.Reset()
}
