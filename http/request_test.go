package http

import (
	"testing"

	"github.com/ketzal-web/ketzal/http/status"
	"github.com/stretchr/testify/require"
)

func TestRequest(t *testing.T) {
	t.Run("typed params", func(t *testing.T) {
		request := getRequest()
		request.Params.Set("id", "42").Set("offset", "-5").Set("name", "abc")

		id, err := request.ParamUint("id")
		require.NoError(t, err)
		require.Equal(t, uint64(42), id)

		offset, err := request.ParamInt("offset")
		require.NoError(t, err)
		require.Equal(t, int64(-5), offset)

		_, err = request.ParamUint("offset")
		require.ErrorIs(t, err, status.ErrBadParams)

		_, err = request.ParamInt("name")
		require.ErrorIs(t, err, status.ErrBadParams)

		_, err = request.ParamInt("missing")
		require.ErrorIs(t, err, status.ErrBadParams)
	})

	t.Run("bearer token", func(t *testing.T) {
		request := getRequest()
		_, ok := request.BearerToken()
		require.False(t, ok)

		request.Headers.Set("Authorization", "Bearer abc.def")
		token, ok := request.BearerToken()
		require.True(t, ok)
		require.Equal(t, "abc.def", token)

		request.Headers.Set("Authorization", "Basic dXNlcjpwYXNz")
		_, ok = request.BearerToken()
		require.False(t, ok)
	})

	t.Run("full url", func(t *testing.T) {
		request := getRequest()
		request.Path = "/search"
		request.Headers.Add("Host", "example.com")
		request.Query.Set("q", "go").Set("page", "2")
		require.Equal(t, "http://example.com/search?q=go&page=2", request.FullURL())
	})

	t.Run("inputs", func(t *testing.T) {
		request := getRequest()
		request.Query.Set("page", "1").Set("name", "from-query")
		request.Headers.Add("Content-Type", "application/json")
		request.Body.Buffered([]byte(`{"name": "from-body", "admin": true}`))

		inputs, err := request.Inputs()
		require.NoError(t, err)
		require.Equal(t, map[string]any{"page": "1", "name": "from-body", "admin": true}, inputs)

		only, err := request.Only("name", "missing")
		require.NoError(t, err)
		require.Equal(t, map[string]any{"name": "from-body"}, only)

		except, err := request.Except("admin")
		require.NoError(t, err)
		require.Equal(t, map[string]any{"page": "1", "name": "from-body"}, except)
	})

	t.Run("content type predicates", func(t *testing.T) {
		request := getRequest()
		request.Headers.Set("Content-Type", "application/json; charset=utf-8")
		require.True(t, request.IsJSON())
		require.False(t, request.IsForm())

		request.Headers.Set("Content-Type", "multipart/form-data; boundary=x")
		require.True(t, request.IsForm())
	})

	t.Run("reset", func(t *testing.T) {
		request := getRequest()
		request.Path = "/"
		request.Headers.Add("Host", "localhost")
		request.Params.Add("id", "1")
		request.Body.Buffered([]byte("data"))
		request.Reset()

		require.Empty(t, request.Path)
		require.True(t, request.Headers.Empty())
		require.True(t, request.Params.Empty())
		data, err := request.Body.Bytes()
		require.NoError(t, err)
		require.Empty(t, data)
	})
}
