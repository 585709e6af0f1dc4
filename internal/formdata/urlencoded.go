package formdata

import (
	"strings"

	"github.com/ketzal-web/ketzal/http/form"
	"github.com/ketzal-web/ketzal/internal/urlencoded"
)

// WalkURLEncoded decodes `key=value` pairs separated by ampersands, as query strings and
// x-www-form-urlencoded bodies are. Pairs without an equality sign are skipped.
func WalkURLEncoded(data string, cb func(key, value string)) error {
	for len(data) > 0 {
		var pair string
		pair, data, _ = strings.Cut(data, "&")

		key, value, found := strings.Cut(pair, "=")
		if !found || len(key) == 0 {
			continue
		}

		key, err := urlencoded.DecodeQuery(key)
		if err != nil {
			return err
		}

		value, err = urlencoded.DecodeQuery(value)
		if err != nil {
			return err
		}

		cb(key, value)
	}

	return nil
}

// ParseURLEncoded collects the pairs into fields, where the last value of a key wins.
func ParseURLEncoded(data string) (form.Fields, error) {
	fields := make(form.Fields)
	err := WalkURLEncoded(data, func(key, value string) {
		fields[key] = value
	})

	return fields, err
}
