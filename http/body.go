package http

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/indigo-web/utils/uf"
	json "github.com/json-iterator/go"
	"github.com/ketzal-web/ketzal/http/form"
	"github.com/ketzal-web/ketzal/http/mime"
	"github.com/ketzal-web/ketzal/http/status"
	"github.com/ketzal-web/ketzal/internal/formdata"
)

// Retriever delivers a body piece by piece. The returned data is valid until the next
// call. The end of the body is signalled by io.EOF, possibly along with the last piece.
type Retriever interface {
	Retrieve() ([]byte, error)
}

// Body is either fully read (eager) or a one-shot stream (lazy). An eager body can be read
// any number of times. A lazy one is consumed by the first of Bytes, String, Reader, JSON,
// Form or Multipart, and every further attempt fails with status.ErrBodyConsumed.
type Body struct {
	request *Request
	eager   []byte
	source  Retriever
	taken   bool
}

func NewBody(request *Request) *Body {
	return &Body{request: request}
}

// Buffered turns the body into an eager one holding data.
func (b *Body) Buffered(data []byte) {
	b.eager, b.source, b.taken = data, nil, false
}

// Stream turns the body into a lazy one, reading from the source on demand.
func (b *Body) Stream(source Retriever) {
	b.eager, b.source, b.taken = nil, source, false
}

// IsLazy tells whether the body is still on the wire.
func (b *Body) IsLazy() bool {
	return b.source != nil
}

// Bytes returns the whole body. The returned slice must not be retained after the request
// is done.
func (b *Body) Bytes() ([]byte, error) {
	if err := b.take(); err != nil {
		return nil, err
	}

	if !b.IsLazy() {
		return b.eager, nil
	}

	var buff []byte

	for {
		data, err := b.source.Retrieve()
		buff = append(buff, data...)

		switch {
		case errors.Is(err, io.EOF):
			return buff, nil
		case err != nil:
			return buff, err
		}
	}
}

// String returns the whole body as a string.
func (b *Body) String() (string, error) {
	data, err := b.Bytes()
	return uf.B2S(data), err
}

// Reader returns the body as an io.Reader, without reading it at once.
func (b *Body) Reader() (io.Reader, error) {
	if err := b.take(); err != nil {
		return nil, err
	}

	if !b.IsLazy() {
		return bytes.NewReader(b.eager), nil
	}

	return &retrieverReader{source: b.source}, nil
}

// JSON unmarshals the body into the model.
func (b *Body) JSON(model any) error {
	data, err := b.Bytes()
	if err != nil {
		return err
	}

	if err = json.ConfigDefault.Unmarshal(data, model); err != nil {
		return fmt.Errorf("%w: %s", status.ErrBadJSON, err)
	}

	return nil
}

// Form parses the body as either multipart/form-data or x-www-form-urlencoded, depending on
// the request's Content-Type, and stores the result into the request's Form and Files.
// An eagerly read multipart body is parsed during the decoding, so in this case the
// already parsed values are returned.
func (b *Body) Form() (form.Fields, form.Files, error) {
	r := b.request
	contentType := r.Headers.Value("Content-Type")

	switch {
	case mime.Is(mime.Multipart, contentType):
		if !b.IsLazy() && r.Form != nil {
			return r.Form, r.Files, nil
		}

		return b.Multipart()
	case mime.Complies(mime.FormUrlencoded, contentType):
		data, err := b.String()
		if err != nil {
			return nil, nil, err
		}

		r.Form, err = formdata.ParseURLEncoded(data)
		return r.Form, r.Files, err
	default:
		return nil, nil, status.ErrUnsupportedMediaType
	}
}

// Multipart reads and parses a multipart/form-data body, storing the result into the
// request's Form and Files.
func (b *Body) Multipart() (form.Fields, form.Files, error) {
	r := b.request

	boundary, ok := formdata.Boundary(r.Headers.Value("Content-Type"))
	if !ok {
		return nil, nil, status.ErrBadMultipart
	}

	data, err := b.Bytes()
	if err != nil {
		return nil, nil, err
	}

	r.Form, r.Files, err = formdata.ParseMultipart(data, boundary, r.cfg.Body.Form.StrictMultipart)
	return r.Form, r.Files, err
}

// Discard drains the rest of a lazy body, so the connection can carry a next request.
func (b *Body) Discard() error {
	if !b.IsLazy() {
		return nil
	}

	b.taken = true

	for {
		_, err := b.source.Retrieve()
		switch {
		case errors.Is(err, io.EOF):
			return nil
		case err != nil:
			return err
		}
	}
}

// Reset detaches the body from its previous content.
func (b *Body) Reset() {
	b.eager, b.source, b.taken = nil, nil, false
}

func (b *Body) take() error {
	if !b.IsLazy() {
		return nil
	}

	if b.taken {
		return status.ErrBodyConsumed
	}

	b.taken = true
	return nil
}

type retrieverReader struct {
	source  Retriever
	pending []byte
	err     error
}

func (r *retrieverReader) Read(p []byte) (n int, err error) {
	for len(r.pending) == 0 {
		if r.err != nil {
			return 0, r.err
		}

		r.pending, r.err = r.source.Retrieve()
	}

	n = copy(p, r.pending)
	r.pending = r.pending[n:]

	return n, nil
}
