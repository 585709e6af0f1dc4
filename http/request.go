package http

import (
	"context"
	"net"
	"strconv"
	"strings"

	json "github.com/json-iterator/go"
	"github.com/ketzal-web/ketzal/config"
	"github.com/ketzal-web/ketzal/http/form"
	"github.com/ketzal-web/ketzal/http/method"
	"github.com/ketzal-web/ketzal/http/mime"
	"github.com/ketzal-web/ketzal/http/status"
	"github.com/ketzal-web/ketzal/kv"
)

var zeroContext = context.Background()

type (
	Headers      = *kv.Storage
	Query        = *kv.Storage
	Params       = *kv.Storage
	UploadedFile = form.File
)

// Request represents HTTP request.
//
// WARNING: the request is reused across requests of a single connection. Strings held by it
// (path, headers, parameters) are valid only until the handler returns. Clone them if they
// must be retained.
type Request struct {
	// Method is an enum representing the request method.
	Method method.Method
	// Path is the decoded request path without the query. Escaped slashes stay escaped.
	Path string
	// Query holds decoded query pairs. A repeated key keeps its last value.
	Query Query
	// Params are dynamic path segments bound by the router.
	Params Params
	// Proto is the protocol version from the request line, e.g. HTTP/1.1.
	Proto string
	// Headers holds non-normalized header pairs, even though lookup is case-insensitive. A
	// repeated header keeps its last value.
	Headers Headers
	// ContentLength is the declared body length. Zero for absent and for chunked bodies.
	ContentLength int64
	// Chunked tells whether the body is sent with the chunked transfer encoding.
	Chunked bool
	// Body is a dedicated entity providing access to the message body.
	Body *Body
	// Form and Files are filled from a multipart body read eagerly, or on Body.Form().
	Form  form.Fields
	Files form.Files
	// Remote holds the remote address. Please note that this is generally not a good parameter to identify
	// a user, because there might be proxies in the middle.
	Remote net.Addr
	// Ctx is user-managed context which lives as long as the request does.
	Ctx      context.Context
	response *Response
	cfg      *config.Config
}

func NewRequest(cfg *config.Config, response *Response, remote net.Addr) *Request {
	r := &Request{
		Method:   method.Unknown,
		Query:    kv.New(),
		Params:   kv.New(),
		Headers:  kv.NewPrealloc(10),
		Remote:   remote,
		Ctx:      zeroContext,
		response: response,
		cfg:      cfg,
	}
	r.Body = NewBody(r)

	return r
}

// Config returns the server config the request was decoded with.
func (r *Request) Config() *config.Config {
	return r.cfg
}

// Respond returns Response object.
//
// WARNING: this method clears the response builder under the hood. As it is passed
// by reference, it'll be cleared EVERYWHERE along a handler
func (r *Request) Respond() *Response {
	return r.response.Clear()
}

// Param returns a dynamic path segment by its name.
func (r *Request) Param(name string) string {
	return r.Params.Value(name)
}

// ParamInt returns a dynamic path segment as a signed integer. Absent or malformed
// segment results in status.ErrBadParams.
func (r *Request) ParamInt(name string) (int64, error) {
	n, err := strconv.ParseInt(r.Params.Value(name), 10, 64)
	if err != nil {
		return 0, status.ErrBadParams
	}

	return n, nil
}

// ParamUint is the same as ParamInt, but for non-negative integers.
func (r *Request) ParamUint(name string) (uint64, error) {
	n, err := strconv.ParseUint(r.Params.Value(name), 10, 64)
	if err != nil {
		return 0, status.ErrBadParams
	}

	return n, nil
}

// QueryOr returns the query value or the fallback, if there's no such key.
func (r *Request) QueryOr(key, fallback string) string {
	return r.Query.ValueOr(key, fallback)
}

// Header returns the value of the header, empty if absent.
func (r *Request) Header(key string) string {
	return r.Headers.Value(key)
}

// BearerToken returns the token of `Authorization: Bearer <token>`.
func (r *Request) BearerToken() (token string, ok bool) {
	const prefix = "bearer "

	auth := r.Headers.Value("Authorization")
	if len(auth) <= len(prefix) || !strings.EqualFold(auth[:len(prefix)], prefix) {
		return "", false
	}

	return strings.TrimSpace(auth[len(prefix):]), true
}

func (r *Request) IsJSON() bool {
	return mime.Is(mime.JSON, r.Headers.Value("Content-Type"))
}

// IsForm tells whether the body is either a multipart or an urlencoded form.
func (r *Request) IsForm() bool {
	contentType := r.Headers.Value("Content-Type")
	return mime.Is(mime.FormUrlencoded, contentType) || mime.Is(mime.Multipart, contentType)
}

// FullURL reconstructs the requested URL from the Host header, the path and the query.
func (r *Request) FullURL() string {
	var b strings.Builder
	b.WriteString("http://")
	b.WriteString(r.Headers.ValueOr("Host", "localhost"))
	b.WriteString(r.Path)

	sep := byte('?')
	for key, value := range r.Query.Pairs() {
		b.WriteByte(sep)
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(value)
		sep = '&'
	}

	return b.String()
}

// Inputs merges every input of the request into a single map: query values first, then
// form fields and at last members of a JSON object body, each overriding the previous.
// Reading a form or a JSON body consumes it.
func (r *Request) Inputs() (map[string]any, error) {
	inputs := make(map[string]any, r.Query.Len())
	for key, value := range r.Query.Pairs() {
		inputs[key] = value
	}

	switch {
	case r.IsForm():
		fields, _, err := r.Body.Form()
		if err != nil {
			return nil, err
		}

		for key, value := range fields {
			inputs[key] = value
		}
	case r.IsJSON():
		data, err := r.Body.Bytes()
		if err != nil {
			return nil, err
		}

		if len(data) > 0 {
			var object map[string]any
			if err = json.ConfigDefault.Unmarshal(data, &object); err != nil {
				return nil, status.ErrBadJSON
			}

			for key, value := range object {
				inputs[key] = value
			}
		}
	}

	return inputs, nil
}

// Only returns the inputs restricted to the given keys.
func (r *Request) Only(keys ...string) (map[string]any, error) {
	inputs, err := r.Inputs()
	if err != nil {
		return nil, err
	}

	only := make(map[string]any, len(keys))
	for _, key := range keys {
		if value, found := inputs[key]; found {
			only[key] = value
		}
	}

	return only, nil
}

// Except returns the inputs without the given keys.
func (r *Request) Except(keys ...string) (map[string]any, error) {
	inputs, err := r.Inputs()
	if err != nil {
		return nil, err
	}

	for _, key := range keys {
		delete(inputs, key)
	}

	return inputs, nil
}

// Reset the request
func (r *Request) Reset() {
	r.Method = method.Unknown
	r.Path = ""
	r.Proto = ""
	r.Query.Clear()
	r.Params.Clear()
	r.Headers.Clear()
	r.ContentLength = 0
	r.Chunked = false
	r.Body.Reset()
	r.Form, r.Files = nil, nil
	r.Ctx = zeroContext
}
