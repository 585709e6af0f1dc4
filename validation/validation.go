package validation

import (
	"sort"
	"strings"
)

// Errors maps field names to the messages of the rules they failed.
type Errors map[string][]string

func (e Errors) Add(field, message string) {
	e[field] = append(e[field], message)
}

// Fields returns the failed fields in alphabetical order.
func (e Errors) Fields() []string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}

	sort.Strings(fields)
	return fields
}

func (e Errors) Error() string {
	var b strings.Builder
	for i, field := range e.Fields() {
		if i > 0 {
			b.WriteString("; ")
		}

		b.WriteString(strings.Join(e[field], " "))
	}

	return b.String()
}

// Validator checks the input against rules keyed by field names. On success, only the fields
// having rules are returned. Otherwise, the errors are non-nil.
type Validator interface {
	Validate(input map[string]any, rules map[string]string) (map[string]any, Errors)
}
