package strutil

import "strings"

func LStripWS(str string) string {
	for i, c := range str {
		switch c {
		case ' ', '\t':
		default:
			return str[i:]
		}
	}

	return ""
}

func RStripWS(str string) string {
	for i := len(str); i > 0; i-- {
		switch str[i-1] {
		case ' ', '\t':
		default:
			return str[:i]
		}
	}

	return ""
}

func StripWS(str string) string {
	return RStripWS(LStripWS(str))
}

// CutParams returns everything after the first semicolon with leading whitespaces stripped.
func CutParams(header string) (params string) {
	_, params = CutHeader(header)
	return params
}

// CutHeader splits a header value into the value itself and its parameters.
func CutHeader(header string) (value, params string) {
	sep := strings.IndexByte(header, ';')
	if sep == -1 {
		return header, ""
	}

	return header[:sep], LStripWS(header[sep+1:])
}

func Unquote(str string) string {
	if len(str) > 1 && str[0] == '"' && str[len(str)-1] == '"' {
		return str[1 : len(str)-1]
	}

	return str
}

// ContainsToken reports whether a comma-separated header value lists the token. Parameters
// (e.g. q-values) are ignored and the comparison is case-insensitive.
func ContainsToken(header, token string) bool {
	for len(header) > 0 {
		var elem string
		comma := strings.IndexByte(header, ',')
		if comma == -1 {
			elem, header = header, ""
		} else {
			elem, header = header[:comma], header[comma+1:]
		}

		elem, _ = CutHeader(elem)
		if strings.EqualFold(StripWS(elem), token) {
			return true
		}
	}

	return false
}
