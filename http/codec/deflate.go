package codec

import (
	"github.com/klauspost/compress/zlib"
)

// NewDeflate returns the codec of the `deflate` content coding, which, despite the name,
// is the zlib format.
func NewDeflate() Codec {
	return newBaseCodec("deflate", func() Compressor {
		return zlib.NewWriter(nil)
	})
}
