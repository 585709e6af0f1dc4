package validation

import "strings"

type rule struct {
	name, param string
}

type ruleset struct {
	rules    []rule
	required bool
	nullable bool
}

// parseRules parses rules in form of "required|string|max:255".
func parseRules(str string) (set ruleset) {
	for _, token := range strings.Split(str, "|") {
		token = strings.TrimSpace(token)
		if len(token) == 0 {
			continue
		}

		name, param, _ := strings.Cut(token, ":")
		switch name {
		case "nullable":
			set.nullable = true
			continue
		case "required":
			set.required = true
		}

		set.rules = append(set.rules, rule{name: name, param: param})
	}

	return set
}
