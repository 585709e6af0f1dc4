package status

type (
	Code   uint16
	Status string
)

const (
	// CloseConnection is not a real status code. It signals that the connection must be
	// closed without writing anything back.
	CloseConnection Code = 1

	Continue           Code = 100
	SwitchingProtocols Code = 101

	OK        Code = 200
	Created   Code = 201
	Accepted  Code = 202
	NoContent Code = 204

	MovedPermanently  Code = 301
	Found             Code = 302
	SeeOther          Code = 303
	NotModified       Code = 304
	TemporaryRedirect Code = 307
	PermanentRedirect Code = 308

	BadRequest            Code = 400
	Unauthorized          Code = 401
	Forbidden             Code = 403
	NotFound              Code = 404
	MethodNotAllowed      Code = 405
	NotAcceptable         Code = 406
	RequestTimeout        Code = 408
	Conflict              Code = 409
	LengthRequired        Code = 411
	RequestEntityTooLarge Code = 413
	RequestURITooLong     Code = 414
	UnsupportedMediaType  Code = 415
	UnprocessableEntity   Code = 422
	TooManyRequests       Code = 429
	HeaderFieldsTooLarge  Code = 431

	InternalServerError     Code = 500
	NotImplemented          Code = 501
	BadGateway              Code = 502
	ServiceUnavailable      Code = 503
	GatewayTimeout          Code = 504
	HTTPVersionNotSupported Code = 505
)

var texts = map[Code]Status{
	Continue:           "Continue",
	SwitchingProtocols: "Switching Protocols",

	OK:        "OK",
	Created:   "Created",
	Accepted:  "Accepted",
	NoContent: "No Content",

	MovedPermanently:  "Moved Permanently",
	Found:             "Found",
	SeeOther:          "See Other",
	NotModified:       "Not Modified",
	TemporaryRedirect: "Temporary Redirect",
	PermanentRedirect: "Permanent Redirect",

	BadRequest:            "Bad Request",
	Unauthorized:          "Unauthorized",
	Forbidden:             "Forbidden",
	NotFound:              "Not Found",
	MethodNotAllowed:      "Method Not Allowed",
	NotAcceptable:         "Not Acceptable",
	RequestTimeout:        "Request Timeout",
	Conflict:              "Conflict",
	LengthRequired:        "Length Required",
	RequestEntityTooLarge: "Request Entity Too Large",
	RequestURITooLong:     "Request URI Too Long",
	UnsupportedMediaType:  "Unsupported Media Type",
	UnprocessableEntity:   "Unprocessable Entity",
	TooManyRequests:       "Too Many Requests",
	HeaderFieldsTooLarge:  "Request Header Fields Too Large",

	InternalServerError:     "Internal Server Error",
	NotImplemented:          "Not Implemented",
	BadGateway:              "Bad Gateway",
	ServiceUnavailable:      "Service Unavailable",
	GatewayTimeout:          "Gateway Timeout",
	HTTPVersionNotSupported: "HTTP Version Not Supported",
}

// Text returns the reason phrase for the code. Unregistered codes have an empty phrase,
// which is still a valid status line.
func Text(code Code) Status {
	return texts[code]
}
