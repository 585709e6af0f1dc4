package mime

import (
	"github.com/indigo-web/utils/strcomp"
	"github.com/ketzal-web/ketzal/internal/strutil"
)

type MIME = string

const (
	OctetStream    MIME = "application/octet-stream"
	Plain          MIME = "text/plain"
	HTML           MIME = "text/html"
	JSON           MIME = "application/json"
	FormUrlencoded MIME = "application/x-www-form-urlencoded"
	Multipart      MIME = "multipart/form-data"
	EventStream    MIME = "text/event-stream"
)

// DefaultResponse is the content type of responses that never set one explicitly.
const DefaultResponse = HTML + "; charset=utf-8"

// Complies returns whether two MIMEs are compatible. Empty MIME is
// considered compatible with any other MIME
func Complies(mime MIME, with string) bool {
	with, _ = strutil.CutHeader(with)
	return len(with) == 0 || strcomp.EqualFold(mime, strutil.RStripWS(with))
}

// Is is the strict version of Complies: an empty value doesn't match anything.
func Is(mime MIME, value string) bool {
	return len(value) > 0 && Complies(mime, value)
}
