package strutil

import (
	"iter"
	"strings"
)

// WalkParams iterates over semicolon-separated `key=value` header parameters, as in
// `form-data; name="field"; filename="a;b.txt"`. Values are unquoted, semicolons inside
// quotes don't split. The walk stops at the first key containing non-token characters.
func WalkParams(params string) iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for len(params) > 0 {
			var pair string
			pair, params = cutParam(params)

			key, value, _ := strings.Cut(pair, "=")
			key = StripWS(key)
			if len(key) == 0 {
				continue
			}

			if !isToken(key) {
				return
			}

			if !yield(key, Unquote(StripWS(value))) {
				return
			}
		}
	}
}

// Param returns the value of the named parameter, case-insensitively.
func Param(params, name string) (value string, found bool) {
	for key, value := range WalkParams(params) {
		if strings.EqualFold(key, name) {
			return value, true
		}
	}

	return "", false
}

func cutParam(str string) (param, rest string) {
	quoted := false

	for i := 0; i < len(str); i++ {
		switch str[i] {
		case '"':
			quoted = !quoted
		case ';':
			if !quoted {
				return str[:i], str[i+1:]
			}
		}
	}

	return str, ""
}

func isToken(str string) bool {
	for i := 0; i < len(str); i++ {
		switch c := str[i]; {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case strings.IndexByte("!#$%&'*+-.^_`|~", c) != -1:
		default:
			return false
		}
	}

	return true
}
