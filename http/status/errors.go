package status

// HTTPError is an error carrying the status code it must be answered with.
type HTTPError struct {
	Message string
	Code    Code
}

func NewError(code Code, message string) error {
	return HTTPError{
		Code:    code,
		Message: message,
	}
}

func (h HTTPError) Error() string {
	return h.Message
}

var (
	ErrCloseConnection = NewError(CloseConnection, "actively closing the connection")

	ErrBadRequestLine       = NewError(BadRequest, "malformed request line")
	ErrTruncatedHead        = NewError(BadRequest, "connection closed in the middle of the request head")
	ErrUnknownMethod        = NewError(BadRequest, "unsupported request method")
	ErrURLDecoding          = NewError(BadRequest, "invalid urlencoded sequence")
	ErrBadParams            = NewError(BadRequest, "bad URI params")
	ErrBadContentLength     = NewError(BadRequest, "invalid content length")
	ErrBadChunk             = NewError(BadRequest, "malformed chunk-encoded data")
	ErrBadMultipart         = NewError(BadRequest, "malformed multipart part")
	ErrBadJSON              = NewError(BadRequest, "malformed JSON body")
	ErrNotFound             = NewError(NotFound, "not found")
	ErrMethodNotAllowed     = NewError(MethodNotAllowed, "method not allowed")
	ErrBodyTooLarge         = NewError(RequestEntityTooLarge, "request body is too large")
	ErrHeaderFieldsTooLarge = NewError(HeaderFieldsTooLarge, "too large headers section")
	ErrTooManyHeaders       = NewError(HeaderFieldsTooLarge, "too many headers")
	ErrURITooLong           = NewError(RequestURITooLong, "request URI too long")
	ErrUnsupportedEncoding  = NewError(NotImplemented, "transfer encoding is not supported")
	ErrUnsupportedMediaType = NewError(UnsupportedMediaType, "unsupported media type")
	ErrTooManyRequests      = NewError(TooManyRequests, "too many requests")
	ErrRequestTimeout       = NewError(RequestTimeout, "request timeout")

	ErrInternalServerError     = NewError(InternalServerError, "internal server error")
	ErrBodyConsumed            = NewError(InternalServerError, "body already consumed")
	ErrHTTPVersionNotSupported = NewError(HTTPVersionNotSupported, "HTTP version not supported")
)
