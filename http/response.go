package http

import (
	"errors"

	"github.com/indigo-web/utils/strcomp"
	"github.com/indigo-web/utils/uf"
	json "github.com/json-iterator/go"
	"github.com/ketzal-web/ketzal/http/mime"
	"github.com/ketzal-web/ketzal/http/sse"
	"github.com/ketzal-web/ketzal/http/status"
	"github.com/ketzal-web/ketzal/kv"
)

const preallocRespHeaders = 7

// Fields are the values collected by the Response builder.
type Fields struct {
	Code        status.Code
	ContentType string
	Headers     *kv.Storage
	Body        []byte
}

func (f *Fields) Clear() {
	f.Code = status.OK
	f.ContentType = mime.DefaultResponse
	f.Headers.Clear()
	f.Body = nil
}

type Response struct {
	fields *Fields
}

// NewResponse returns a new instance of the Response object with status code set to 200 OK,
// pre-allocated space for response headers and text/html content-type.
// NOTE: it's recommended to use Request.Respond() method inside of handlers, if there's no
// clear reason otherwise
func NewResponse() *Response {
	return &Response{
		&Fields{
			Code:        status.OK,
			ContentType: mime.DefaultResponse,
			Headers:     kv.NewPrealloc(preallocRespHeaders),
		},
	}
}

// Code sets the response status code.
func (r *Response) Code(code status.Code) *Response {
	r.fields.Code = code
	return r
}

// ContentType sets a custom Content-Type header value.
func (r *Response) ContentType(value mime.MIME) *Response {
	r.fields.ContentType = value
	return r
}

// Header sets the header, replacing its previous values. Content-Length can't be set, it's
// always computed from the body.
func (r *Response) Header(key, value string) *Response {
	switch {
	case strcomp.EqualFold(key, "content-type"):
		return r.ContentType(value)
	case strcomp.EqualFold(key, "content-length"):
		return r
	}

	r.fields.Headers.Set(key, value)
	return r
}

// AddHeader adds the values to the header, keeping the previous ones.
func (r *Response) AddHeader(key string, values ...string) *Response {
	if strcomp.EqualFold(key, "content-length") {
		return r
	}

	for _, value := range values {
		r.fields.Headers.Add(key, value)
	}

	return r
}

// String sets the response's body to the passed string
func (r *Response) String(body string) *Response {
	return r.Bytes(uf.S2B(body))
}

// Bytes sets the response's body to passed slice WITHOUT COPYING. Changing
// the passed slice later will affect the response by itself
func (r *Response) Bytes(body []byte) *Response {
	r.fields.Body = body
	return r
}

// Write implements io.Writer interface. It always returns n=len(b) and err=nil
func (r *Response) Write(b []byte) (n int, err error) {
	r.fields.Body = append(r.fields.Body, b...)
	return len(b), nil
}

// TryJSON serializes the model into the body and returns the encoding error, if any.
func (r *Response) TryJSON(model any) (*Response, error) {
	r.fields.Body = nil
	stream := json.ConfigDefault.BorrowStream(r)
	stream.WriteVal(model)
	err := stream.Flush()
	if err == nil {
		err = stream.Error
	}
	json.ConfigDefault.ReturnStream(stream)

	return r.ContentType(mime.JSON), err
}

// JSON does the same as TryJSON does, except returned error is being implicitly wrapped
// by Error
func (r *Response) JSON(model any) *Response {
	resp, err := r.TryJSON(model)
	if err != nil {
		return r.Error(err)
	}

	return resp
}

// Error fills the response from the error. A status.HTTPError (wrapped ones too) sets its
// own code, other errors result in 500 unless a custom code is passed. The error message
// becomes a plain text body. Nil error leaves the response as is.
func (r *Response) Error(err error, code ...status.Code) *Response {
	if err == nil {
		return r
	}

	c := status.InternalServerError
	if len(code) > 0 {
		c = code[0]
	}

	var httpErr status.HTTPError
	if errors.As(err, &httpErr) && len(code) == 0 {
		c = httpErr.Code
	}

	return r.
		Code(c).
		ContentType(mime.Plain).
		String(err.Error())
}

type validationFailure struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

// ValidationFailed renders 422 Unprocessable Entity with the validation errors mapped by
// field names: {"message": "Validation failed", "errors": {"field": ["message"]}}
func (r *Response) ValidationFailed(errs map[string][]string) *Response {
	if errs == nil {
		errs = map[string][]string{}
	}

	return r.
		JSON(validationFailure{
			Message: "Validation failed",
			Errors:  errs,
		}).
		Code(status.UnprocessableEntity)
}

// SSE renders the events as a text/event-stream body.
func (r *Response) SSE(events ...sse.Event) *Response {
	var body []byte
	for _, event := range events {
		body = event.AppendTo(body)
	}
	r.fields.Body = body

	return r.
		ContentType(mime.EventStream).
		Header("Cache-Control", "no-cache")
}

// Reveal returns a struct with values, filled by builder. Used mostly in internal purposes
func (r *Response) Reveal() *Fields {
	return r.fields
}

// Clear discards everything was done with Response object before
func (r *Response) Clear() *Response {
	r.fields.Clear()
	return r
}

// Respond is a predicate to request.Respond(). May be used as a dummy handler
func Respond(request *Request) *Response {
	return request.Respond()
}

// Code is a predicate to request.Respond().Code(...)
func Code(request *Request, code status.Code) *Response {
	return request.Respond().Code(code)
}

// String is a predicate to request.Respond().String(...)
func String(request *Request, str string) *Response {
	return request.Respond().String(str)
}

// Bytes is a predicate to request.Respond().Bytes(...)
func Bytes(request *Request, b []byte) *Response {
	return request.Respond().Bytes(b)
}

// JSON is a predicate to request.Respond().JSON(...)
func JSON(request *Request, model any) *Response {
	return request.Respond().JSON(model)
}

// Error is a predicate to request.Respond().Error(...)
func Error(request *Request, err error, code ...status.Code) *Response {
	return request.Respond().Error(err, code...)
}

// ValidationFailed is a predicate to request.Respond().ValidationFailed(...)
func ValidationFailed(request *Request, errs map[string][]string) *Response {
	return request.Respond().ValidationFailed(errs)
}
