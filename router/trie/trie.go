package trie

import (
	"errors"
	"strings"

	"github.com/ketzal-web/ketzal/http/method"
	"github.com/ketzal-web/ketzal/kv"
)

var (
	ErrConflictingParams = errors.New(
		"different parameter names at the same position of a common prefix aren't supported",
	)
	ErrNoLeadingSlash = errors.New("route pattern must start with a slash")
	ErrEmptyParam     = errors.New("route parameter name must not be empty")
	ErrUnknownMethod  = errors.New("route method is unknown")
)

// Node is a path segment. Static children are keyed by their exact text, and there might be
// at most a single dynamic child, binding any segment to its parameter name. Paths and
// patterns are split into non-empty segments only, so repeated and trailing slashes don't
// matter, and the root node itself stands for "/".
type Node[T any] struct {
	static  map[string]*Node[T]
	dynamic *Node[T]
	param   string
	values  [method.Count + 1]T
	present [method.Count + 1]bool
}

func New[T any]() *Node[T] {
	return &Node[T]{static: make(map[string]*Node[T])}
}

// Insert registers the value under the pattern and method, overriding the previous one, if
// any. Segments in form of {name} are dynamic.
func (n *Node[T]) Insert(pattern string, m method.Method, value T) error {
	if len(pattern) == 0 || pattern[0] != '/' {
		return ErrNoLeadingSlash
	}

	if m == method.Unknown || m > method.Count {
		return ErrUnknownMethod
	}

	node, err := n.insert(pattern[1:])
	if err != nil {
		return err
	}

	node.values[m] = value
	node.present[m] = true

	return nil
}

func (n *Node[T]) insert(path string) (*Node[T], error) {
	segment, rest := nextSegment(path)
	if len(segment) == 0 {
		return n, nil
	}

	var next *Node[T]

	if name, isParam := paramName(segment); isParam {
		if len(name) == 0 {
			return nil, ErrEmptyParam
		}

		switch {
		case n.dynamic == nil:
			n.dynamic = New[T]()
			n.dynamic.param = name
		case n.dynamic.param != name:
			return nil, ErrConflictingParams
		}

		next = n.dynamic
	} else {
		var found bool
		if next, found = n.static[segment]; !found {
			next = New[T]()
			n.static[segment] = next
		}
	}

	return next.insert(rest)
}

// nextSegment returns the first non-empty segment of the path and whatever follows it.
// Empty segment means the path is exhausted.
func nextSegment(path string) (segment, rest string) {
	for len(path) > 0 {
		segment, path, _ = strings.Cut(path, "/")
		if len(segment) > 0 {
			return segment, path
		}
	}

	return "", ""
}

func paramName(segment string) (name string, ok bool) {
	if len(segment) < 2 || segment[0] != '{' || segment[len(segment)-1] != '}' {
		return "", false
	}

	return segment[1 : len(segment)-1], true
}

// Find returns the value registered for the method under a pattern matching the path.
// Static segments are preferred over the dynamic ones, falling back to the latter if the
// static branch leads to nowhere. Parameters are added to params, and only the ones
// of the matched pattern are left there.
func (n *Node[T]) Find(path string, m method.Method, params *kv.Storage) (value T, found bool) {
	if len(path) == 0 || path[0] != '/' {
		return value, false
	}

	node := n.find(path[1:], m, params)
	if node == nil {
		return value, false
	}

	return node.values[m], true
}

// Allowed returns methods that have a value under a pattern matching the path. Empty if
// there's no such pattern.
func (n *Node[T]) Allowed(path string) (methods []method.Method) {
	if len(path) == 0 || path[0] != '/' {
		return nil
	}

	node := n.find(path[1:], method.Unknown, kv.New())
	if node == nil {
		return nil
	}

	for _, m := range method.List {
		if node.present[m] {
			methods = append(methods, m)
		}
	}

	return methods
}

// find descends recursively. The method Unknown accepts any node having at least one value.
func (n *Node[T]) find(path string, m method.Method, params *kv.Storage) *Node[T] {
	segment, rest := nextSegment(path)
	if len(segment) == 0 {
		if n.accepts(m) {
			return n
		}

		return nil
	}

	if child, found := n.static[segment]; found {
		if match := child.find(rest, m, params); match != nil {
			return match
		}
	}

	if n.dynamic == nil {
		return nil
	}

	bound := params.Len()
	params.Add(n.dynamic.param, segment)

	if match := n.dynamic.find(rest, m, params); match != nil {
		return match
	}

	params.Truncate(bound)

	return nil
}

func (n *Node[T]) accepts(m method.Method) bool {
	if m != method.Unknown {
		return n.present[m]
	}

	for _, present := range n.present {
		if present {
			return true
		}
	}

	return false
}
