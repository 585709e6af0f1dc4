package main

import (
	"time"

	"github.com/ketzal-web/ketzal"
	"github.com/ketzal-web/ketzal/http"
	"github.com/ketzal-web/ketzal/http/sse"
	"github.com/ketzal-web/ketzal/http/status"
	"github.com/ketzal-web/ketzal/router/middleware"
	"github.com/ketzal-web/ketzal/validation"
)

var userRules = map[string]string{
	"name":  "required|string|max:64",
	"email": "required|email",
	"age":   "nullable|integer|between:0,150",
}

func registerRoutes(app *ketzal.App) {
	validator := validation.NewPlayground()

	app.Get("/", func(request *http.Request) *http.Response {
		return request.Respond().String("Hello, world!")
	})

	api := app.Group("/api")
	api.Get("/users/{id}", func(request *http.Request) *http.Response {
		id, err := request.ParamUint("id")
		if err != nil {
			return request.Respond().Error(err)
		}

		return request.Respond().JSON(map[string]any{
			"id":         id,
			"request_id": middleware.GetRequestID(request),
		})
	})
	api.Post("/users", func(request *http.Request) *http.Response {
		inputs, err := request.Only("name", "email", "age")
		if err != nil {
			return request.Respond().Error(err)
		}

		user, errs := validator.Validate(inputs, userRules)
		if errs != nil {
			return request.Respond().ValidationFailed(errs)
		}

		return request.Respond().Code(status.Created).JSON(user)
	})
	api.Get("/clock", func(request *http.Request) *http.Response {
		now := time.Now().UTC()

		return request.Respond().SSE(
			sse.New(now.Format(time.RFC3339)).WithName("tick").WithRetry(time.Second),
		)
	})
}
