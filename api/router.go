package api

import (
	"io"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter mounts liveness, readiness and metrics endpoints next to a huma
// API rooted at prefix. opts register middlewares and operations on it.
func NewRouter(
	title, version, prefix string,
	readiness http.HandlerFunc,
	writeMetrics func(io.Writer),
	opts ...func(huma.API),
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)

	r.Get("/liveness", func(http.ResponseWriter, *http.Request) {})
	r.Get("/readiness", readiness)
	r.Get("/metrics", func(w http.ResponseWriter, _ *http.Request) { writeMetrics(w) })

	root := humachi.New(r, huma.DefaultConfig(title, version))
	api := huma.API(root)
	if prefix != "" && prefix != "/" {
		api = huma.NewGroup(root, prefix)
	}
	for _, opt := range opts {
		opt(api)
	}

	return r
}

// OptUseMiddleware adds middlewares to the API.
func OptUseMiddleware(mws ...func(huma.Context, func(huma.Context))) func(huma.API) {
	return func(api huma.API) { api.UseMiddleware(mws...) }
}
