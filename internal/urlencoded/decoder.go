package urlencoded

import (
	"strings"

	"github.com/ketzal-web/ketzal/http/status"
	"github.com/ketzal-web/ketzal/internal/hexconv"
)

// DecodePath decodes percent-escapes of a request path. Escapes resulting in a slash or
// an ASCII control character stay encoded (lower-cased), so decoding can never change how
// the path splits into segments.
func DecodePath(src string) (string, error) {
	return decode(src, false, true)
}

// DecodeQuery decodes a query or x-www-form-urlencoded key or value. On top of the
// percent-escapes, pluses are decoded as spaces.
func DecodeQuery(src string) (string, error) {
	return decode(src, true, false)
}

func decode(src string, plusAsSpace, keepUnsafe bool) (string, error) {
	if strings.IndexByte(src, '%') == -1 && (!plusAsSpace || strings.IndexByte(src, '+') == -1) {
		return src, nil
	}

	var b strings.Builder
	b.Grow(len(src))

	for i := 0; i < len(src); i++ {
		switch c := src[i]; c {
		case '+':
			if plusAsSpace {
				c = ' '
			}

			b.WriteByte(c)
		case '%':
			if i+2 >= len(src) {
				return "", status.ErrURLDecoding
			}

			x, y := hexconv.Halfbyte[src[i+1]], hexconv.Halfbyte[src[i+2]]
			if x|y > 0x0f {
				return "", status.ErrURLDecoding
			}

			char := (x << 4) | y
			if keepUnsafe && isUnsafe(char) {
				b.WriteByte('%')
				b.WriteByte(src[i+1] | 0x20)
				b.WriteByte(src[i+2] | 0x20)
			} else {
				b.WriteByte(char)
			}

			i += 2
		default:
			b.WriteByte(c)
		}
	}

	return b.String(), nil
}

func isUnsafe(c byte) bool {
	return c == '/' || c < 0x20 || c == 0x7f
}
