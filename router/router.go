package router

import (
	"slices"
	"strings"
	"sync"

	"github.com/ketzal-web/ketzal/config"
	"github.com/ketzal-web/ketzal/http"
	"github.com/ketzal-web/ketzal/http/codec"
	"github.com/ketzal-web/ketzal/http/method"
	"github.com/ketzal-web/ketzal/http/status"
	"github.com/ketzal-web/ketzal/router/trie"
)

type (
	Handler func(*http.Request) *http.Response
	// Middleware works like a chain of nested calls: next is either the next middleware,
	// partially applied, or the handler itself. Not calling next short-circuits the chain.
	Middleware func(next Handler, request *http.Request) *http.Response
)

type route struct {
	handler     Handler
	middlewares []Middleware
}

// Router resolves requests into handlers by the method and path. Routes may be registered
// at any time, including while serving: the routes tree and the lookups cache are guarded
// by a read-write lock, and every registration drops the cache.
//
// Handlers run with no lock held.
type Router struct {
	registrar
	mu          sync.RWMutex
	tree        *trie.Node[route]
	cache       *cache
	middlewares []Middleware
	negotiator  *codec.Negotiator
	threshold   int
}

// New returns a router compressing responses with the default codecs.
func New(cfg *config.Config) *Router {
	r := &Router{
		tree:       trie.New[route](),
		cache:      newCache(cfg.Router.CacheSize),
		negotiator: codec.Default(),
		threshold:  int(cfg.NET.CompressionThreshold),
	}
	r.registrar = registrar{router: r}

	return r
}

// Codecs replaces the compression codecs. The order is the order of preference. No codecs
// disable the compression.
func (r *Router) Codecs(codecs ...codec.Codec) *Router {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(codecs) == 0 {
		r.negotiator = nil
	} else {
		r.negotiator = codec.NewNegotiator(codecs...)
	}

	return r
}

// Use adds global middlewares. They wrap every route, including the ones registered before,
// and the not found and method not allowed responses too. The first one is the outermost.
func (r *Router) Use(middlewares ...Middleware) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.middlewares = append(r.middlewares, middlewares...)
	r.cache.Clear()
}

func (r *Router) insert(pattern string, m method.Method, rt route) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.tree.Insert(pattern, m, rt); err != nil {
		return err
	}

	r.cache.Clear()
	return nil
}

// OnRequest routes the request and runs its handler, post-processing the response.
func (r *Router) OnRequest(request *http.Request) *http.Response {
	response := r.resolve(request)(request)
	if response == nil {
		response = request.Respond()
	}

	r.mu.RLock()
	negotiator := r.negotiator
	r.mu.RUnlock()

	return compress(negotiator, r.threshold, request, response)
}

// compress encodes the body with a codec the client accepts, if the body is longer than
// the threshold and isn't encoded yet. Failing compression leaves the body as is.
func compress(negotiator *codec.Negotiator, threshold int, request *http.Request, response *http.Response) *http.Response {
	fields := response.Reveal()
	if negotiator == nil || len(fields.Body) <= threshold || fields.Headers.Has("Content-Encoding") {
		return response
	}

	c, ok := negotiator.Negotiate(request.Headers.Value("Accept-Encoding"))
	if !ok {
		return response
	}

	compressed, err := negotiator.Compress(c, fields.Body)
	if err != nil {
		return response
	}

	fields.Body = compressed

	return response.
		Header("Content-Encoding", c.Token()).
		AddHeader("Vary", "Accept-Encoding")
}

// OnError renders the error occurred while the request was being decoded. HTTP errors
// keep their codes, and the body is prefixed with the status text. Everything else is 500.
func (r *Router) OnError(request *http.Request, err error) *http.Response {
	response := request.Respond().Error(err)
	fields := response.Reveal()
	if fields.Code == status.InternalServerError {
		return response.String(string(status.Text(status.InternalServerError)))
	}

	return response.String(string(status.Text(fields.Code)) + ": " + err.Error())
}

// resolve returns the handler with every middleware applied, binding the path params.
func (r *Router) resolve(request *http.Request) Handler {
	r.mu.RLock()

	if entry, hit := r.cache.Get(request.Method, request.Path); hit {
		r.mu.RUnlock()

		for _, param := range entry.params {
			request.Params.Add(param.Key, param.Value)
		}

		return entry.handler
	}

	generation := r.cache.Generation()
	global := r.middlewares
	rt, found := r.tree.Find(request.Path, request.Method, request.Params)

	var allowed []method.Method
	if !found {
		allowed = r.tree.Allowed(request.Path)
	}

	r.mu.RUnlock()

	if !found {
		// misses aren't cached, so junk paths can't flood the cache
		return compose(fallback(allowed), global)
	}

	handler := compose(rt.handler, append(slices.Clip(global), rt.middlewares...))

	r.mu.Lock()
	r.cache.Put(generation, request.Method, request.Path, cacheEntry{
		handler: handler,
		params:  request.Params.Expose(),
	})
	r.mu.Unlock()

	return handler
}

func fallback(allowed []method.Method) Handler {
	if len(allowed) == 0 {
		return func(request *http.Request) *http.Response {
			return http.Error(request, status.ErrNotFound)
		}
	}

	names := make([]string, len(allowed))
	for i, m := range allowed {
		names[i] = m.String()
	}

	allow := strings.Join(names, ", ")

	return func(request *http.Request) *http.Response {
		return http.Error(request, status.ErrMethodNotAllowed).Header("Allow", allow)
	}
}

// compose builds a single handler out of the chain. The first middleware is the outermost.
func compose(handler Handler, middlewares []Middleware) Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		mw, next := middlewares[i], handler
		handler = func(request *http.Request) *http.Response {
			return mw(next, request)
		}
	}

	return handler
}
