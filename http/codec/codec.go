package codec

import (
	"io"
)

type Codec interface {
	// Token returns a coding token associated with the codec itself.
	Token() string
	// New returns a fresh compressor. Compressors aren't safe for concurrent use.
	New() Compressor
}

type Compressor interface {
	io.WriteCloser
	// Reset discards the compressor's state and makes it write into dst.
	Reset(dst io.Writer)
}

var _ Codec = baseCodec{}

type baseCodec struct {
	token   string
	newComp func() Compressor
}

func newBaseCodec(token string, newComp func() Compressor) baseCodec {
	return baseCodec{
		token:   token,
		newComp: newComp,
	}
}

func (b baseCodec) Token() string {
	return b.token
}

func (b baseCodec) New() Compressor {
	return b.newComp()
}
