package main

import (
	"encoding/json"
	"testing"

	"github.com/ketzal-web/ketzal"
	"github.com/ketzal-web/ketzal/config"
	"github.com/ketzal-web/ketzal/http"
	"github.com/ketzal-web/ketzal/http/method"
	"github.com/ketzal-web/ketzal/http/status"
	"github.com/stretchr/testify/require"
)

func getApp() *ketzal.App {
	app := ketzal.New(config.Default())
	registerRoutes(app)

	return app
}

func getRequest(m method.Method, path string) *http.Request {
	request := http.NewRequest(config.Default(), http.NewResponse(), nil)
	request.Method = m
	request.Path = path

	return request
}

func TestRoutes(t *testing.T) {
	app := getApp()

	t.Run("index", func(t *testing.T) {
		resp := app.OnRequest(getRequest(method.GET, "/")).Reveal()
		require.Equal(t, status.OK, resp.Code)
		require.Equal(t, "Hello, world!", string(resp.Body))
	})

	t.Run("user by id", func(t *testing.T) {
		resp := app.OnRequest(getRequest(method.GET, "/api/users/7")).Reveal()
		require.Equal(t, status.OK, resp.Code)
		require.JSONEq(t, `{"id":7,"request_id":""}`, string(resp.Body))
	})

	t.Run("malformed id", func(t *testing.T) {
		resp := app.OnRequest(getRequest(method.GET, "/api/users/seven")).Reveal()
		require.Equal(t, status.BadRequest, resp.Code)
	})

	t.Run("create user", func(t *testing.T) {
		request := getRequest(method.POST, "/api/users")
		request.Headers.Add("Content-Type", "application/json")
		request.Body.Buffered([]byte(`{"name":"Ada","email":"ada@example.com","role":"admin"}`))

		resp := app.OnRequest(request).Reveal()
		require.Equal(t, status.Created, resp.Code)
		require.JSONEq(t, `{"name":"Ada","email":"ada@example.com"}`, string(resp.Body))
	})

	t.Run("invalid user", func(t *testing.T) {
		request := getRequest(method.POST, "/api/users")
		request.Headers.Add("Content-Type", "application/json")
		request.Body.Buffered([]byte(`{"email":"ada","age":200}`))

		resp := app.OnRequest(request).Reveal()
		require.Equal(t, status.UnprocessableEntity, resp.Code)

		var failure struct {
			Errors map[string][]string `json:"errors"`
		}
		require.NoError(t, json.Unmarshal(resp.Body, &failure))
		require.ElementsMatch(t, []string{"name", "email", "age"}, keys(failure.Errors))
	})

	t.Run("clock", func(t *testing.T) {
		resp := app.OnRequest(getRequest(method.GET, "/api/clock")).Reveal()
		require.Equal(t, status.OK, resp.Code)
		require.Contains(t, string(resp.Body), "event: tick\n")
	})
}

func keys(m map[string][]string) []string {
	result := make([]string, 0, len(m))
	for key := range m {
		result = append(result, key)
	}

	return result
}
