package http1

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/indigo-web/utils/strcomp"
	"github.com/indigo-web/utils/uf"
	"github.com/ketzal-web/ketzal/config"
	"github.com/ketzal-web/ketzal/http"
	"github.com/ketzal-web/ketzal/http/method"
	"github.com/ketzal-web/ketzal/http/status"
	"github.com/ketzal-web/ketzal/internal/buffer"
	"github.com/ketzal-web/ketzal/internal/formdata"
	"github.com/ketzal-web/ketzal/internal/strutil"
	"github.com/ketzal-web/ketzal/internal/urlencoded"
)

type RequestState uint8

const (
	Pending RequestState = iota
	HeadersCompleted
	Error
)

type parserState uint8

const (
	eRequestLine parserState = iota
	eHeaders
)

// Parser is a stream-based parser of request heads. It is fed with arbitrary pieces of
// the stream and fills the request by pointer. Once the empty line terminating the headers
// is met, it returns HeadersCompleted along with the bytes that follow it, which belong to
// the body or to the next request. The body is not the Parser's concern.
//
// Lines are accumulated in the buffer, so every string the request gets from the parser
// points into it and stays valid until Reset.
type Parser struct {
	request       *http.Request
	buff          *buffer.Buffer
	cfg           *config.Config
	headersNumber int
	state         parserState
}

func NewParser(request *http.Request, buff *buffer.Buffer, cfg *config.Config) *Parser {
	return &Parser{
		request: request,
		buff:    buff,
		cfg:     cfg,
		state:   eRequestLine,
	}
}

func (p *Parser) Parse(data []byte) (state RequestState, extra []byte, err error) {
	for {
		lf := bytes.IndexByte(data, '\n')
		if lf == -1 {
			if !p.buff.Append(data) {
				return Error, nil, p.overflowErr()
			}

			return Pending, nil, nil
		}

		if !p.buff.Append(data[:lf]) {
			return Error, nil, p.overflowErr()
		}

		line := uf.B2S(bytes.TrimSuffix(p.buff.Finish(), []byte{'\r'}))
		data = data[lf+1:]

		switch p.state {
		case eRequestLine:
			if len(line) == 0 {
				// empty lines preceding the request line are tolerated
				continue
			}

			if err = p.parseRequestLine(line); err != nil {
				return Error, nil, err
			}

			p.state = eHeaders
		case eHeaders:
			if len(line) == 0 {
				if err = p.finalize(); err != nil {
					return Error, nil, err
				}

				p.state = eRequestLine
				p.headersNumber = 0

				return HeadersCompleted, data, nil
			}

			if err = p.parseHeader(line); err != nil {
				return Error, nil, err
			}
		}
	}
}

func (p *Parser) parseRequestLine(line string) error {
	request := p.request

	sp := strings.IndexByte(line, ' ')
	if sp == -1 {
		return status.ErrBadRequestLine
	}

	request.Method = method.Parse(line[:sp])
	if request.Method == method.Unknown {
		return status.ErrUnknownMethod
	}

	line = line[sp+1:]
	sp = strings.LastIndexByte(line, ' ')
	if sp == -1 {
		return status.ErrBadRequestLine
	}

	target, proto := line[:sp], line[sp+1:]
	switch proto {
	case "HTTP/1.1", "HTTP/1.0":
		request.Proto = proto
	default:
		if strings.HasPrefix(proto, "HTTP/") {
			return status.ErrHTTPVersionNotSupported
		}

		return status.ErrBadRequestLine
	}

	if len(target) > int(p.cfg.URI.MaxLength) {
		return status.ErrURITooLong
	}

	if len(target) == 0 || (target[0] != '/' && target != "*") {
		return status.ErrBadRequestLine
	}

	path, query, _ := strings.Cut(target, "?")
	path, err := urlencoded.DecodePath(path)
	if err != nil {
		return err
	}

	request.Path = path

	return formdata.WalkURLEncoded(query, func(key, value string) {
		request.Query.Set(key, value)
	})
}

func (p *Parser) parseHeader(line string) error {
	p.headersNumber++
	if p.headersNumber > p.cfg.Headers.MaxNumber {
		return status.ErrTooManyHeaders
	}

	colon := strings.IndexByte(line, ':')
	if colon == -1 {
		return nil
	}

	key := strutil.StripWS(line[:colon])
	if len(key) == 0 {
		return nil
	}

	p.request.Headers.Set(key, strutil.StripWS(line[colon+1:]))
	return nil
}

// finalize processes the headers affecting the body framing.
func (p *Parser) finalize() error {
	request := p.request

	if te, found := request.Headers.Get("Transfer-Encoding"); found {
		if !isChunked(te) {
			return status.ErrUnsupportedEncoding
		}

		// Content-Length must be ignored if Transfer-Encoding is present
		request.Chunked = true
		request.ContentLength = 0
		return nil
	}

	if cl, found := request.Headers.Get("Content-Length"); found {
		length, err := strconv.ParseInt(cl, 10, 64)
		if err != nil || length < 0 {
			return status.ErrBadContentLength
		}

		request.ContentLength = length
	}

	if request.ContentLength > int64(p.cfg.Body.MaxSize) {
		return status.ErrBodyTooLarge
	}

	return nil
}

// isChunked tells whether chunked is the only coding. Others are not supported.
func isChunked(te string) bool {
	return strcomp.EqualFold(strutil.StripWS(te), "chunked")
}

func (p *Parser) overflowErr() error {
	if p.state == eRequestLine {
		return status.ErrURITooLong
	}

	return status.ErrHeaderFieldsTooLarge
}

// Reset prepares the parser for the next request, invalidating the strings of the
// previous one.
func (p *Parser) Reset() {
	p.state = eRequestLine
	p.headersNumber = 0
	p.buff.Clear()
}
