package codec

import (
	"bytes"
	"strconv"
	"strings"
	"sync"

	"github.com/ketzal-web/ketzal/internal/strutil"
)

type pooledCodec struct {
	Codec
	pool *sync.Pool
}

// Negotiator chooses a codec acceptable by the client and compresses bodies with it. It is
// safe for concurrent use: compressors are pooled per codec.
type Negotiator struct {
	codecs []pooledCodec
}

// NewNegotiator returns a negotiator preferring the codecs in the order they are passed.
func NewNegotiator(codecs ...Codec) *Negotiator {
	n := new(Negotiator)

	for _, c := range codecs {
		n.codecs = append(n.codecs, pooledCodec{
			Codec: c,
			pool: &sync.Pool{
				New: func() any {
					return c.New()
				},
			},
		})
	}

	return n
}

// Default returns a negotiator over gzip, deflate and zstd.
func Default() *Negotiator {
	return NewNegotiator(NewGZIP(), NewDeflate(), NewZSTD())
}

// Negotiate returns the first codec the Accept-Encoding header value permits.
func (n *Negotiator) Negotiate(acceptEncoding string) (Codec, bool) {
	for _, c := range n.codecs {
		if Accepts(acceptEncoding, c.Token()) {
			return c.Codec, true
		}
	}

	return nil, false
}

// Compress returns src compressed by the codec. The codec must be one of the
// negotiator's own.
func (n *Negotiator) Compress(c Codec, src []byte) ([]byte, error) {
	for _, pc := range n.codecs {
		if pc.Token() == c.Token() {
			return compress(pc.pool, src)
		}
	}

	return compress(&sync.Pool{New: func() any { return c.New() }}, src)
}

func compress(pool *sync.Pool, src []byte) ([]byte, error) {
	comp := pool.Get().(Compressor)
	defer pool.Put(comp)

	buff := bytes.NewBuffer(make([]byte, 0, len(src)/2))
	comp.Reset(buff)

	if _, err := comp.Write(src); err != nil {
		return nil, err
	}

	if err := comp.Close(); err != nil {
		return nil, err
	}

	return buff.Bytes(), nil
}

// Accepts tells whether the Accept-Encoding header value lists the token (or a wildcard)
// with non-zero quality.
func Accepts(acceptEncoding, token string) bool {
	for len(acceptEncoding) > 0 {
		var elem string
		elem, acceptEncoding, _ = strings.Cut(acceptEncoding, ",")

		coding, params := strutil.CutHeader(elem)
		coding = strutil.StripWS(coding)
		if coding != "*" && !strings.EqualFold(coding, token) {
			continue
		}

		if q, found := strutil.Param(params, "q"); found {
			if weight, err := strconv.ParseFloat(q, 64); err != nil || weight == 0 {
				return false
			}
		}

		return true
	}

	return false
}
