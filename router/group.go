package router

import (
	"slices"

	"github.com/ketzal-web/ketzal/http/method"
)

// registrar registers routes under a common prefix, wrapping them in its middlewares.
type registrar struct {
	router      *Router
	prefix      string
	middlewares []Middleware
}

// Group is a set of routes sharing a prefix and middlewares. Middlewares of the parent are
// inherited at the moment of creation, later additions to either of them don't affect
// the other.
type Group struct {
	registrar
}

// Group creates a subgroup.
func (r *registrar) Group(prefix string) *Group {
	return &Group{registrar{
		router:      r.router,
		prefix:      r.prefix + prefix,
		middlewares: slices.Clone(r.middlewares),
	}}
}

// Use adds middlewares to routes of the group registered afterward.
func (g *Group) Use(middlewares ...Middleware) {
	g.middlewares = append(g.middlewares, middlewares...)
}

// Route registers the handler. Middlewares passed are the innermost ones, wrapped by
// the group's and the global ones.
func (r *registrar) Route(m method.Method, pattern string, handler Handler, middlewares ...Middleware) error {
	mws := append(slices.Clone(r.middlewares), middlewares...)
	return r.router.insert(r.prefix+pattern, m, route{
		handler:     handler,
		middlewares: mws,
	})
}

func (r *registrar) mustRoute(m method.Method, pattern string, handler Handler, middlewares []Middleware) {
	if err := r.Route(m, pattern, handler, middlewares...); err != nil {
		panic(err)
	}
}

// Get is a shortcut for Route(method.GET, ...), panicking on an invalid pattern.
func (r *registrar) Get(pattern string, handler Handler, middlewares ...Middleware) {
	r.mustRoute(method.GET, pattern, handler, middlewares)
}

// Head is a shortcut for Route(method.HEAD, ...), panicking on an invalid pattern.
func (r *registrar) Head(pattern string, handler Handler, middlewares ...Middleware) {
	r.mustRoute(method.HEAD, pattern, handler, middlewares)
}

// Post is a shortcut for Route(method.POST, ...), panicking on an invalid pattern.
func (r *registrar) Post(pattern string, handler Handler, middlewares ...Middleware) {
	r.mustRoute(method.POST, pattern, handler, middlewares)
}

// Put is a shortcut for Route(method.PUT, ...), panicking on an invalid pattern.
func (r *registrar) Put(pattern string, handler Handler, middlewares ...Middleware) {
	r.mustRoute(method.PUT, pattern, handler, middlewares)
}

// Patch is a shortcut for Route(method.PATCH, ...), panicking on an invalid pattern.
func (r *registrar) Patch(pattern string, handler Handler, middlewares ...Middleware) {
	r.mustRoute(method.PATCH, pattern, handler, middlewares)
}

// Delete is a shortcut for Route(method.DELETE, ...), panicking on an invalid pattern.
func (r *registrar) Delete(pattern string, handler Handler, middlewares ...Middleware) {
	r.mustRoute(method.DELETE, pattern, handler, middlewares)
}

// Options is a shortcut for Route(method.OPTIONS, ...), panicking on an invalid pattern.
func (r *registrar) Options(pattern string, handler Handler, middlewares ...Middleware) {
	r.mustRoute(method.OPTIONS, pattern, handler, middlewares)
}
