package http1

import (
	"io"
	"strconv"

	"github.com/indigo-web/utils/strcomp"
	"github.com/ketzal-web/ketzal/http"
	"github.com/ketzal-web/ketzal/http/method"
	"github.com/ketzal-web/ketzal/http/status"
)

const (
	protocol        = "HTTP/1.1 "
	contentType     = "Content-Type: "
	contentLength   = "Content-Length: "
	connectionClose = "Connection: close\r\n"
)

var crlf = []byte("\r\n")

type defaultHeader struct {
	key, full string
}

// Serializer renders responses. The whole response is rendered into a single buffer and
// written at once.
//
// Content-Length is always computed from the body, whatever the response headers say.
// Responses that can't have a body (1xx, 204, 304) carry neither the body nor the
// Content-Length, and the body of a response to HEAD is omitted while its Content-Length
// is kept.
type Serializer struct {
	buff           []byte
	defaultHeaders []defaultHeader
}

func NewSerializer(buff []byte, defaultHeaders map[string]string) *Serializer {
	s := &Serializer{buff: buff[:0]}

	for key, value := range defaultHeaders {
		s.defaultHeaders = append(s.defaultHeaders, defaultHeader{
			key:  key,
			full: key + ": " + value + "\r\n",
		})
	}

	return s
}

// Write renders the response and writes it. Connection: close is announced unless
// keepAlive is set. The error is the one of the writer, it's never retried.
func (s *Serializer) Write(request *http.Request, response *http.Response, keepAlive bool, w io.Writer) error {
	defer s.clear()

	fields := response.Reveal()
	s.renderResponseLine(fields.Code)

	for key, value := range fields.Headers.Pairs() {
		s.renderHeader(key, value)
	}

	for _, header := range s.defaultHeaders {
		if !fields.Headers.Has(header.key) {
			s.buff = append(s.buff, header.full...)
		}
	}

	if !keepAlive {
		s.buff = append(s.buff, connectionClose...)
	}

	bodyless := isBodyless(fields.Code)
	if !bodyless {
		s.buff = append(s.buff, contentType...)
		s.buff = append(s.buff, fields.ContentType...)
		s.crlf()
		s.buff = strconv.AppendInt(append(s.buff, contentLength...), int64(len(fields.Body)), 10)
		s.crlf()
	}

	s.crlf()

	if !bodyless && request.Method != method.HEAD {
		s.buff = append(s.buff, fields.Body...)
	}

	_, err := w.Write(s.buff)
	return err
}

func (s *Serializer) renderResponseLine(code status.Code) {
	s.buff = append(s.buff, protocol...)
	s.buff = strconv.AppendUint(s.buff, uint64(code), 10)
	s.buff = append(s.buff, ' ')
	s.buff = append(s.buff, status.Text(code)...)
	s.crlf()
}

func (s *Serializer) renderHeader(key, value string) {
	if strcomp.EqualFold(key, "content-length") {
		return
	}

	s.buff = append(s.buff, key...)
	s.buff = append(s.buff, ": "...)
	s.buff = append(s.buff, value...)
	s.crlf()
}

func (s *Serializer) crlf() {
	s.buff = append(s.buff, crlf...)
}

func (s *Serializer) clear() {
	s.buff = s.buff[:0]
}

func isBodyless(code status.Code) bool {
	return code < 200 || code == status.NoContent || code == status.NotModified
}
