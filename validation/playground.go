package validation

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
)

// tags translate rules into validator tags. The ones not listed here are checked by
// Playground itself.
var tags = map[string]func(param string) string{
	"required":  constTag("required"),
	"numeric":   constTag("numeric"),
	"email":     constTag("email"),
	"url":       constTag("url"),
	"uuid":      constTag("uuid"),
	"alpha":     constTag("alpha"),
	"alpha_num": constTag("alphanum"),
	"ip":        constTag("ip"),
	"min":       paramTag("min"),
	"max":       paramTag("max"),
	"size":      paramTag("len"),
	"between": func(param string) string {
		low, high, _ := strings.Cut(param, ",")
		return "min=" + low + ",max=" + high
	},
	"in": func(param string) string {
		return "oneof=" + strings.ReplaceAll(param, ",", " ")
	},
}

func constTag(tag string) func(string) string {
	return func(string) string {
		return tag
	}
}

func paramTag(tag string) func(string) string {
	return func(param string) string {
		return tag + "=" + param
	}
}

// Playground is the Validator backed by go-playground/validator. Rules are separated by
// pipes, and parametrized ones are written as name:param, e.g. "required|string|max:255".
//
// Supported rules: required, nullable, string, integer, boolean, numeric, email, url, uuid,
// alpha, alpha_num, ip, min, max, size, between and in. Lengths are checked for strings,
// values for numbers. Absent or null fields are only checked by required, the rest of
// their rules is skipped.
type Playground struct {
	validate *validator.Validate
}

var _ Validator = new(Playground)

func NewPlayground() *Playground {
	return &Playground{
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (p *Playground) Validate(input map[string]any, rules map[string]string) (map[string]any, Errors) {
	validated := make(map[string]any, len(rules))
	errs := make(Errors)

	for field, rulesStr := range rules {
		set := parseRules(rulesStr)
		value, present := input[field]

		if !present || value == nil {
			switch {
			case set.required:
				errs.Add(field, message(field, value, rule{name: "required"}))
			case present && set.nullable:
				validated[field] = nil
			}

			continue
		}

		passed := true
		for _, r := range set.rules {
			if !p.check(value, r) {
				errs.Add(field, message(field, value, r))
				passed = false
			}
		}

		if passed {
			validated[field] = value
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}

	return validated, nil
}

func (p *Playground) check(value any, r rule) bool {
	switch r.name {
	case "string":
		_, ok := value.(string)
		return ok
	case "integer":
		return isInteger(value)
	case "boolean":
		_, ok := value.(bool)
		return ok
	}

	tag, known := tags[r.name]
	if !known {
		return false
	}

	return p.validateVar(value, tag(r.param))
}

// validateVar reports failure instead of panicking, which the validator does when a
// tag doesn't apply to the value type, e.g. min to a bool.
func (p *Playground) validateVar(value any, tag string) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	return p.validate.Var(value, tag) == nil
}

func isInteger(value any) bool {
	switch v := value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	case float64:
		return v == math.Trunc(v) && !math.IsInf(v, 0)
	case float32:
		return float64(v) == math.Trunc(float64(v))
	}

	return false
}

func message(field string, value any, r rule) string {
	name := strings.ReplaceAll(field, "_", " ")

	switch r.name {
	case "required":
		return fmt.Sprintf("The %s field is required.", name)
	case "string":
		return fmt.Sprintf("The %s field must be a string.", name)
	case "integer":
		return fmt.Sprintf("The %s field must be an integer.", name)
	case "boolean":
		return fmt.Sprintf("The %s field must be true or false.", name)
	case "numeric":
		return fmt.Sprintf("The %s field must be a number.", name)
	case "email":
		return fmt.Sprintf("The %s field must be a valid email address.", name)
	case "url":
		return fmt.Sprintf("The %s field must be a valid URL.", name)
	case "uuid":
		return fmt.Sprintf("The %s field must be a valid UUID.", name)
	case "alpha":
		return fmt.Sprintf("The %s field must only contain letters.", name)
	case "alpha_num":
		return fmt.Sprintf("The %s field must only contain letters and numbers.", name)
	case "ip":
		return fmt.Sprintf("The %s field must be a valid IP address.", name)
	case "in":
		return fmt.Sprintf("The selected %s is invalid.", name)
	case "min":
		return fmt.Sprintf("The %s field must be at least %s%s.", name, r.param, unit(value))
	case "max":
		return fmt.Sprintf("The %s field must not be greater than %s%s.", name, r.param, unit(value))
	case "size":
		return fmt.Sprintf("The %s field must be %s%s.", name, r.param, unit(value))
	case "between":
		low, high, _ := strings.Cut(r.param, ",")
		return fmt.Sprintf("The %s field must be between %s and %s%s.", name, low, high, unit(value))
	}

	return fmt.Sprintf("The %s field has an unsupported rule %s.", name, r.name)
}

func unit(value any) string {
	if _, ok := value.(string); ok {
		return " characters"
	}

	return ""
}
