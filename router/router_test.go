package router

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/ketzal-web/ketzal/config"
	"github.com/ketzal-web/ketzal/http"
	"github.com/ketzal-web/ketzal/http/codec"
	"github.com/ketzal-web/ketzal/http/method"
	"github.com/ketzal-web/ketzal/http/status"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"
)

func getRequest(m method.Method, path string) *http.Request {
	request := http.NewRequest(config.Default(), http.NewResponse(), nil)
	request.Method = m
	request.Path = path

	return request
}

func serve(r *Router, m method.Method, path string) (*http.Request, *http.Fields) {
	request := getRequest(m, path)
	return request, r.OnRequest(request).Reveal()
}

func echo(text string) Handler {
	return func(request *http.Request) *http.Response {
		return request.Respond().String(text)
	}
}

func echoParam(name string) Handler {
	return func(request *http.Request) *http.Response {
		return request.Respond().String(name + "=" + request.Param(name))
	}
}

func TestRouting(t *testing.T) {
	r := New(config.Default())
	r.Get("/", echo("root"))
	r.Get("/users", echo("users"))
	r.Get("/users/{id}", echoParam("id"))
	r.Post("/users", echo("created"))

	t.Run("static", func(t *testing.T) {
		request, resp := serve(r, method.GET, "/users")
		require.Equal(t, status.OK, resp.Code)
		require.Equal(t, "users", string(resp.Body))
		require.True(t, request.Params.Empty())
	})

	t.Run("dynamic", func(t *testing.T) {
		_, resp := serve(r, method.GET, "/users/42")
		require.Equal(t, "id=42", string(resp.Body))
	})

	t.Run("not found", func(t *testing.T) {
		_, resp := serve(r, method.GET, "/users/42/extra")
		require.Equal(t, status.NotFound, resp.Code)
	})

	t.Run("trailing and repeated slashes", func(t *testing.T) {
		_, resp := serve(r, method.GET, "/users/42/")
		require.Equal(t, "id=42", string(resp.Body))
		_, resp = serve(r, method.GET, "/users//42")
		require.Equal(t, "id=42", string(resp.Body))
		_, resp = serve(r, method.GET, "/users/")
		require.Equal(t, "users", string(resp.Body))
	})

	t.Run("group prefix with a trailing slash", func(t *testing.T) {
		r := New(config.Default())
		r.Group("/api/").Get("/items", echo("items"))

		_, resp := serve(r, method.GET, "/api/items")
		require.Equal(t, status.OK, resp.Code)
		require.Equal(t, "items", string(resp.Body))
	})

	t.Run("method not allowed", func(t *testing.T) {
		_, resp := serve(r, method.DELETE, "/users")
		require.Equal(t, status.MethodNotAllowed, resp.Code)
		require.Equal(t, "GET, POST", resp.Headers.Value("Allow"))
	})

	t.Run("cached lookups bind params", func(t *testing.T) {
		for _, id := range []string{"1", "1", "2", "1"} {
			_, resp := serve(r, method.GET, "/users/"+id)
			require.Equal(t, "id="+id, string(resp.Body))
		}
	})

	t.Run("nil response", func(t *testing.T) {
		r := New(config.Default())
		r.Get("/nil", func(*http.Request) *http.Response {
			return nil
		})

		_, resp := serve(r, method.GET, "/nil")
		require.Equal(t, status.OK, resp.Code)
		require.Empty(t, resp.Body)
	})

	t.Run("invalid patterns", func(t *testing.T) {
		r := New(config.Default())
		require.Error(t, r.Route(method.GET, "users", echo("")))
		require.NoError(t, r.Route(method.GET, "/users/{id}", echo("")))
		require.Panics(t, func() {
			r.Get("/users/{name}", echo(""))
		})
	})
}

func TestCache(t *testing.T) {
	t.Run("registration clears the cache", func(t *testing.T) {
		r := New(config.Default())
		r.Get("/users/{id}", echoParam("id"))

		_, resp := serve(r, method.GET, "/users/me")
		require.Equal(t, "id=me", string(resp.Body))
		require.Equal(t, 1, r.cache.Len())

		r.Get("/users/me", echo("myself"))
		require.Zero(t, r.cache.Len())

		request, resp := serve(r, method.GET, "/users/me")
		require.Equal(t, "myself", string(resp.Body))
		require.True(t, request.Params.Empty())
	})

	t.Run("keys are cloned", func(t *testing.T) {
		r := New(config.Default())
		r.Get("/users/{id}", echoParam("id"))

		path := []byte("/users/42")
		request := getRequest(method.GET, string(path))
		r.OnRequest(request)

		entry, found := r.cache.Get(method.GET, "/users/42")
		require.True(t, found)
		require.Equal(t, "42", entry.params[0].Value)

		// requests are reused, so the cached value must not depend on them
		request.Reset()
		request.Params.Add("id", "garbage")
		entry, _ = r.cache.Get(method.GET, "/users/42")
		require.Equal(t, "42", entry.params[0].Value)
	})

	t.Run("limit", func(t *testing.T) {
		cfg := config.Default()
		cfg.Router.CacheSize = 2
		r := New(cfg)
		r.Get("/{a}", echoParam("a"))

		for _, path := range []string{"/1", "/2", "/3"} {
			_, resp := serve(r, method.GET, path)
			require.Equal(t, "a="+path[1:], string(resp.Body))
		}

		require.Equal(t, 1, r.cache.Len())
	})

	t.Run("disabled", func(t *testing.T) {
		cfg := config.Default()
		cfg.Router.CacheSize = 0
		r := New(cfg)
		r.Get("/", echo("root"))
		_, resp := serve(r, method.GET, "/")
		require.Equal(t, "root", string(resp.Body))
		require.Zero(t, r.cache.Len())
	})

	t.Run("misses aren't cached", func(t *testing.T) {
		r := New(config.Default())
		serve(r, method.GET, "/nowhere")
		require.Zero(t, r.cache.Len())
	})

	t.Run("stale generation", func(t *testing.T) {
		c := newCache(10)
		generation := c.Generation()
		c.Clear()
		c.Put(generation, method.GET, "/", cacheEntry{})
		require.Zero(t, c.Len())
	})
}

func TestMiddlewares(t *testing.T) {
	var trace []string

	mark := func(name string) Middleware {
		return func(next Handler, request *http.Request) *http.Response {
			trace = append(trace, name+":in")
			response := next(request)
			trace = append(trace, name+":out")

			return response
		}
	}

	r := New(config.Default())
	r.Use(mark("global"))
	api := r.Group("/api")
	api.Use(mark("group"))
	api.Get("/hello", func(request *http.Request) *http.Response {
		trace = append(trace, "handler")
		return request.Respond()
	}, mark("route"))

	t.Run("onion order", func(t *testing.T) {
		trace = nil
		_, resp := serve(r, method.GET, "/api/hello")
		require.Equal(t, status.OK, resp.Code)
		require.Equal(t, []string{
			"global:in", "group:in", "route:in", "handler", "route:out", "group:out", "global:out",
		}, trace)
	})

	t.Run("global middlewares added later", func(t *testing.T) {
		r.Use(mark("late"))
		trace = nil
		serve(r, method.GET, "/api/hello")
		require.Equal(t, "global:in", trace[0])
		require.Equal(t, "late:in", trace[1])
	})

	t.Run("global middlewares wrap misses", func(t *testing.T) {
		trace = nil
		_, resp := serve(r, method.GET, "/missing")
		require.Equal(t, status.NotFound, resp.Code)
		require.Equal(t, []string{"global:in", "late:in", "late:out", "global:out"}, trace)
	})

	t.Run("group isolation", func(t *testing.T) {
		parent := r.Group("/v1")
		child := parent.Group("/admin")
		child.Use(mark("admin"))
		parent.Get("/ping", echo("pong"))

		trace = nil
		_, resp := serve(r, method.GET, "/v1/ping")
		require.Equal(t, "pong", string(resp.Body))
		require.NotContains(t, trace, "admin:in")
	})

	t.Run("short circuit", func(t *testing.T) {
		r := New(config.Default())
		called := false
		r.Use(func(_ Handler, request *http.Request) *http.Response {
			return request.Respond().Code(status.Forbidden)
		})
		r.Get("/", func(request *http.Request) *http.Response {
			called = true
			return request.Respond()
		})

		_, resp := serve(r, method.GET, "/")
		require.Equal(t, status.Forbidden, resp.Code)
		require.False(t, called)
	})
}

func gunzip(t *testing.T, data []byte) string {
	reader, err := gzip.NewReader(bytes.NewReader(data))
	require.NoError(t, err)
	plain, err := io.ReadAll(reader)
	require.NoError(t, err)

	return string(plain)
}

func TestCompression(t *testing.T) {
	long := strings.Repeat("compressible ", 200)
	r := New(config.Default())
	r.Get("/long", echo(long))
	r.Get("/short", echo("short"))
	r.Get("/encoded", func(request *http.Request) *http.Response {
		return request.Respond().Header("Content-Encoding", "br").String(long)
	})

	request := func(path, acceptEncoding string) *http.Fields {
		req := getRequest(method.GET, path)
		if len(acceptEncoding) > 0 {
			req.Headers.Add("Accept-Encoding", acceptEncoding)
		}

		return r.OnRequest(req).Reveal()
	}

	t.Run("accepted", func(t *testing.T) {
		resp := request("/long", "gzip, deflate")
		require.Equal(t, "gzip", resp.Headers.Value("Content-Encoding"))
		require.Equal(t, "Accept-Encoding", resp.Headers.Value("Vary"))
		require.Less(t, len(resp.Body), len(long))
		require.Equal(t, long, gunzip(t, resp.Body))
	})

	t.Run("server order", func(t *testing.T) {
		resp := request("/long", "zstd, deflate")
		require.Equal(t, "deflate", resp.Headers.Value("Content-Encoding"))
	})

	t.Run("not accepted", func(t *testing.T) {
		resp := request("/long", "")
		require.False(t, resp.Headers.Has("Content-Encoding"))
		require.Equal(t, long, string(resp.Body))

		resp = request("/long", "gzip;q=0, br")
		require.False(t, resp.Headers.Has("Content-Encoding"))
	})

	t.Run("below the threshold", func(t *testing.T) {
		resp := request("/short", "gzip")
		require.False(t, resp.Headers.Has("Content-Encoding"))
		require.Equal(t, "short", string(resp.Body))
	})

	t.Run("already encoded", func(t *testing.T) {
		resp := request("/encoded", "gzip")
		require.Equal(t, "br", resp.Headers.Value("Content-Encoding"))
		require.Equal(t, long, string(resp.Body))
	})

	t.Run("disabled", func(t *testing.T) {
		r := New(config.Default()).Codecs()
		r.Get("/long", echo(long))
		req := getRequest(method.GET, "/long")
		req.Headers.Add("Accept-Encoding", "gzip")
		resp := r.OnRequest(req).Reveal()
		require.False(t, resp.Headers.Has("Content-Encoding"))
	})

	t.Run("custom codecs", func(t *testing.T) {
		r := New(config.Default()).Codecs(codec.NewZSTD())
		r.Get("/long", echo(long))
		req := getRequest(method.GET, "/long")
		req.Headers.Add("Accept-Encoding", "gzip, zstd")
		resp := r.OnRequest(req).Reveal()
		require.Equal(t, "zstd", resp.Headers.Value("Content-Encoding"))
	})
}

func TestOnError(t *testing.T) {
	r := New(config.Default())

	t.Run("parse error", func(t *testing.T) {
		resp := r.OnError(getRequest(method.GET, "/"), status.ErrBadRequestLine).Reveal()
		require.Equal(t, status.BadRequest, resp.Code)
		require.Equal(t, "Bad Request: malformed request line", string(resp.Body))
	})

	t.Run("other HTTP error", func(t *testing.T) {
		resp := r.OnError(getRequest(method.GET, "/"), status.ErrURITooLong).Reveal()
		require.Equal(t, status.RequestURITooLong, resp.Code)
		require.True(t, strings.HasSuffix(string(resp.Body), ": request URI too long"))
	})

	t.Run("arbitrary error", func(t *testing.T) {
		resp := r.OnError(getRequest(method.GET, "/"), errors.New("secret details")).Reveal()
		require.Equal(t, status.InternalServerError, resp.Code)
		require.NotContains(t, string(resp.Body), "secret")
	})
}
