package formdata

import (
	"bytes"
	"strings"

	"github.com/indigo-web/utils/strcomp"
	"github.com/indigo-web/utils/uf"
	"github.com/ketzal-web/ketzal/http/form"
	"github.com/ketzal-web/ketzal/http/mime"
	"github.com/ketzal-web/ketzal/http/status"
	"github.com/ketzal-web/ketzal/internal/strutil"
)

var (
	crlf          = []byte("\r\n")
	headersEnd    = []byte("\r\n\r\n")
	closingSuffix = []byte("--")
)

// ParseMultipart splits a multipart/form-data body into text fields and uploaded files.
// Parts with a filename are files, the rest are fields. Part content has its trailing
// CRLF trimmed, file content is copied out of data.
//
// A malformed part (no empty line after its headers, or no name) is skipped, unless
// strict is set, in which case the whole body is rejected with status.ErrBadMultipart.
func ParseMultipart(data []byte, boundary string, strict bool) (form.Fields, form.Files, error) {
	fields, files := make(form.Fields), make(form.Files)
	if len(boundary) == 0 {
		return fields, files, status.ErrBadMultipart
	}

	delim := []byte("--" + boundary)

	start := bytes.Index(data, delim)
	if start == -1 {
		if strict {
			return fields, files, status.ErrBadMultipart
		}

		return fields, files, nil
	}

	data = data[start+len(delim):]

	for len(data) > 0 && !bytes.HasPrefix(data, closingSuffix) {
		data = trimLeadingNewline(data)

		var part []byte
		if next := bytes.Index(data, delim); next == -1 {
			part, data = data, nil
		} else {
			part, data = data[:next], data[next+len(delim):]
		}

		if err := parsePart(part, fields, files); err != nil && strict {
			return fields, files, err
		}
	}

	return fields, files, nil
}

func parsePart(part []byte, fields form.Fields, files form.Files) error {
	var headers, content []byte

	if bytes.HasPrefix(part, crlf) {
		content = part[len(crlf):]
	} else {
		sep := bytes.Index(part, headersEnd)
		if sep == -1 {
			return status.ErrBadMultipart
		}

		headers, content = part[:sep], part[sep+len(headersEnd):]
	}

	content = bytes.TrimSuffix(content, crlf)

	p := parseHeaders(uf.B2S(headers))
	if len(p.name) == 0 {
		return status.ErrBadMultipart
	}

	if !p.isFile {
		fields[p.name] = strings.ToValidUTF8(string(content), "\uFFFD")
		return nil
	}

	if len(p.contentType) == 0 {
		p.contentType = mime.Plain
	}

	files[p.name] = form.File{
		Filename:    p.filename,
		ContentType: p.contentType,
		Data:        bytes.Clone(content),
	}

	return nil
}

type partHeaders struct {
	name, filename, contentType string
	isFile                      bool
}

// parseHeaders returns strings cloned from the headers, as they outlive the request.
func parseHeaders(headers string) (p partHeaders) {
	for len(headers) > 0 {
		var line string
		line, headers, _ = strings.Cut(headers, "\r\n")

		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}

		key, value = strutil.StripWS(key), strutil.StripWS(value)

		switch {
		case strcomp.EqualFold(key, "content-disposition"):
			for param, paramValue := range strutil.WalkParams(strutil.CutParams(value)) {
				switch {
				case strcomp.EqualFold(param, "name"):
					p.name = strings.Clone(paramValue)
				case strcomp.EqualFold(param, "filename"):
					p.filename = strings.Clone(paramValue)
					p.isFile = true
				}
			}
		case strcomp.EqualFold(key, "content-type"):
			p.contentType = strings.Clone(value)
		}
	}

	return p
}

func trimLeadingNewline(data []byte) []byte {
	if bytes.HasPrefix(data, crlf) {
		return data[len(crlf):]
	}

	return bytes.TrimPrefix(data, []byte{'\n'})
}

// Boundary extracts the boundary parameter of a multipart Content-Type.
func Boundary(contentType string) (string, bool) {
	if !mime.Is(mime.Multipart, contentType) {
		return "", false
	}

	return strutil.Param(strutil.CutParams(contentType), "boundary")
}
